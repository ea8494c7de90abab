package quest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var p Payload
		if err := c.BodyParser(&p); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if p.Metadata.Title == "" {
			return fiber.NewError(fiber.StatusBadRequest, "metadata.title required")
		}
		createdBy, _ := c.Locals("creator_id").(string)
		res, err := svc.CreateQuest(c.Context(), createdBy, p)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		details, err := svc.GetQuest(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "quest not found")
		}
		return c.JSON(details)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		perPage, _ := strconv.Atoi(c.Query("per_page", "20"))
		quests, pagination, err := svc.ListQuests(c.Context(), ListParams{
			Page:      page,
			PerPage:   perPage,
			Status:    c.Query("status"),
			CreatedBy: c.Query("created_by"),
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"quests": quests, "pagination": pagination})
	})

	r.Put("/:id/status", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Status string `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil || body.Status == "" {
			return fiber.NewError(fiber.StatusBadRequest, "status required")
		}
		switch body.Status {
		case "Draft", "Published", "Archived":
		default:
			return fiber.NewError(fiber.StatusBadRequest, "unknown status")
		}
		if err := svc.UpdateStatus(c.Context(), c.Params("id"), body.Status); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		hard := c.Query("hard_delete") == "true"
		if err := svc.DeleteQuest(c.Context(), c.Params("id"), hard); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
