package media

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Use(authMiddleware)

	r.Post("/assets", func(c *fiber.Ctx) error {
		var a Asset
		if err := c.BodyParser(&a); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid asset payload")
		}
		if a.PublicID == "" || a.SecureURL == "" {
			return fiber.NewError(fiber.StatusBadRequest, "public_id and secure_url required")
		}
		rec, err := svc.RegisterAsset(c.Context(), creatorID(c), a)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	})

	r.Get("/assets", func(c *fiber.Ctx) error {
		records, err := svc.Assets(c.Context(), creatorID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(records)
	})

	r.Delete("/assets/:id", func(c *fiber.Ctx) error {
		if err := svc.DeleteAsset(c.Context(), creatorID(c), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func creatorID(c *fiber.Ctx) string {
	id, _ := c.Locals("creator_id").(string)
	return id
}
