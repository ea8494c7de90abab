package wizard

import (
	"context"
	"errors"
	"strconv"

	"github.com/seekkrr/creator-portal/internal/route"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, ctrl *Controller, authMiddleware fiber.Handler) {
	r.Use(authMiddleware)

	r.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.Resume(c.Context(), creatorID(c)))
	})

	r.Post("/advance", func(c *fiber.Ctx) error {
		owner := creatorID(c)
		session := ctrl.Resume(c.Context(), owner)

		data, err := parseStepData(c, session)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		s, fieldErrs, err := ctrl.Advance(c.Context(), owner, data)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if len(fieldErrs) > 0 {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": fieldErrs})
		}
		return c.JSON(s)
	})

	r.Post("/back", func(c *fiber.Ctx) error {
		owner := creatorID(c)

		var data StepData
		if len(c.Body()) > 0 {
			session := ctrl.Resume(c.Context(), owner)
			// Review has no step payload; a body there is ignored so
			// back-navigation always succeeds.
			if session.CurrentStep != StepReview {
				parsed, err := parseStepData(c, session)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, err.Error())
				}
				data = parsed
			}
		}

		s, err := ctrl.Back(c.Context(), owner, data)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(s)
	})

	r.Post("/waypoints", func(c *fiber.Ctx) error {
		owner := creatorID(c)
		wp, err := parseWaypoint(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		needsLookup := wp.PlaceName == ""
		s, stamp, err := ctrl.AddWaypoint(c.Context(), owner, wp)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if needsLookup && stamp != "" {
			go ctrl.EnrichWaypoint(context.Background(), owner, stamp, wp.Latitude, wp.Longitude)
		}
		return c.Status(fiber.StatusCreated).JSON(s)
	})

	r.Put("/waypoints/:index", func(c *fiber.Ctx) error {
		owner := creatorID(c)
		i, err := strconv.Atoi(c.Params("index"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid index")
		}
		wp, err := parseWaypoint(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		// Drag relocation: the place name is refreshed for the new coordinates.
		needsLookup := wp.PlaceName == ""
		s, stamp, err := ctrl.UpdateWaypoint(c.Context(), owner, i, wp)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if needsLookup && stamp != "" {
			go ctrl.EnrichWaypoint(context.Background(), owner, stamp, wp.Latitude, wp.Longitude)
		}
		return c.JSON(s)
	})

	r.Delete("/waypoints/:index", func(c *fiber.Ctx) error {
		owner := creatorID(c)
		i, err := strconv.Atoi(c.Params("index"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid index")
		}
		s, err := ctrl.RemoveWaypoint(c.Context(), owner, i)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(s)
	})

	r.Post("/waypoints/reorder", func(c *fiber.Ctx) error {
		owner := creatorID(c)
		var body struct {
			Source int `json:"source"`
			Target int `json:"target"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "source and target required")
		}
		s, err := ctrl.ReorderWaypoints(c.Context(), owner, body.Source, body.Target)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(s)
	})

	r.Post("/submit", func(c *fiber.Ctx) error {
		owner := creatorID(c)
		res, err := ctrl.Submit(c.Context(), owner)
		if err != nil {
			if errors.Is(err, ErrNotReady) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			// The draft slot is preserved; the creator can resubmit.
			return fiber.NewError(fiber.StatusBadGateway, "failed to create quest")
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	})

	r.Delete("/", func(c *fiber.Ctx) error {
		if err := ctrl.Abandon(c.Context(), creatorID(c)); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func creatorID(c *fiber.Ctx) string {
	id, _ := c.Locals("creator_id").(string)
	return id
}

// parseStepData decodes the request body as the payload for the session's
// current step. Step 3 with an empty body validates the waypoints already
// accumulated on the draft.
func parseStepData(c *fiber.Ctx, session Session) (StepData, error) {
	switch session.CurrentStep {
	case StepLocation:
		var d LocationData
		if err := c.BodyParser(&d); err != nil {
			return nil, errors.New("invalid location payload")
		}
		return d, nil
	case StepDetails:
		var d DetailsData
		if err := c.BodyParser(&d); err != nil {
			return nil, errors.New("invalid details payload")
		}
		return d, nil
	case StepWaypoints:
		if len(c.Body()) == 0 {
			return WaypointsData{Waypoints: session.Draft.Waypoints}, nil
		}
		var d WaypointsData
		if err := c.BodyParser(&d); err != nil {
			return nil, errors.New("invalid waypoints payload")
		}
		return d, nil
	default:
		return nil, errors.New("already at review")
	}
}

func parseWaypoint(c *fiber.Ctx) (route.Waypoint, error) {
	var wp route.Waypoint
	if err := c.BodyParser(&wp); err != nil {
		return route.Waypoint{}, errors.New("invalid waypoint payload")
	}
	if wp.Latitude < -90 || wp.Latitude > 90 || wp.Longitude < -180 || wp.Longitude > 180 {
		return route.Waypoint{}, errors.New("coordinates out of range")
	}
	return wp, nil
}
