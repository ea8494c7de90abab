package wizard

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(sub Submitter) (*fiber.App, *Controller) {
	ctrl := NewController(NewMemoryStore(), nil, sub)
	app := fiber.New()
	asCreator := func(c *fiber.Ctx) error {
		c.Locals("creator_id", "creator-1")
		return c.Next()
	}
	RegisterRoutes(app.Group("/wizard"), ctrl, asCreator)
	return app, ctrl
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, path, err)
	}
	return resp
}

func decodeSessionBody(t *testing.T, resp *http.Response) Session {
	t.Helper()
	var s Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return s
}

func TestWizardResumeEmpty(t *testing.T) {
	app, _ := newTestApp(&fakeSubmitter{})

	resp := doJSON(t, app, http.MethodGet, "/wizard/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	s := decodeSessionBody(t, resp)
	if s.CurrentStep != StepLocation {
		t.Fatalf("expected step 1, got %d", s.CurrentStep)
	}
}

func TestWizardAdvanceFlow(t *testing.T) {
	app, _ := newTestApp(&fakeSubmitter{})

	resp := doJSON(t, app, http.MethodPost, "/wizard/advance", fiber.Map{
		"locationType": "city", "city": "Mumbai", "latitude": 18.93, "longitude": 72.83,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("advance step 1: got %d", resp.StatusCode)
	}
	s := decodeSessionBody(t, resp)
	if s.CurrentStep != StepDetails {
		t.Fatalf("expected step 2, got %d", s.CurrentStep)
	}

	resp = doJSON(t, app, http.MethodPost, "/wizard/advance", fiber.Map{
		"title": "Hidden Gems", "description": "A walking tour of old Mumbai",
		"theme": "Culture", "difficulty": "Medium",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("advance step 2: got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPost, "/wizard/waypoints", fiber.Map{
		"latitude": 18.93, "longitude": 72.83, "place_name": "Gateway of India",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add waypoint: got %d", resp.StatusCode)
	}

	// Step 3 advance with no body validates the accumulated waypoints.
	resp = doJSON(t, app, http.MethodPost, "/wizard/advance", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("advance step 3: got %d", resp.StatusCode)
	}
	s = decodeSessionBody(t, resp)
	if s.CurrentStep != StepReview {
		t.Fatalf("expected review, got %d", s.CurrentStep)
	}

	resp = doJSON(t, app, http.MethodPost, "/wizard/submit", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: got %d", resp.StatusCode)
	}
	var res SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil || res.QuestID != "quest-1" {
		t.Fatalf("unexpected submit result: %+v %v", res, err)
	}
}

func TestWizardAdvanceValidationErrors(t *testing.T) {
	app, _ := newTestApp(&fakeSubmitter{})

	resp := doJSON(t, app, http.MethodPost, "/wizard/advance", fiber.Map{
		"locationType": "city", "city": "",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode errors: %v", err)
	}
	if body.Errors["locationType"] == "" {
		t.Fatalf("expected locationType error, got %v", body.Errors)
	}
}

func TestWizardBack(t *testing.T) {
	app, _ := newTestApp(&fakeSubmitter{})

	resp := doJSON(t, app, http.MethodPost, "/wizard/advance", fiber.Map{
		"locationType": "url", "sourceUrl": "https://example.com/tour",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("advance: got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPost, "/wizard/back", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("back: got %d", resp.StatusCode)
	}
	s := decodeSessionBody(t, resp)
	if s.CurrentStep != StepLocation {
		t.Fatalf("expected step 1 after back, got %d", s.CurrentStep)
	}
	if s.Draft.SourceURL != "https://example.com/tour" {
		t.Fatalf("draft lost on back")
	}
}

func TestWizardBackFromReviewIgnoresBody(t *testing.T) {
	app, ctrl := newTestApp(&fakeSubmitter{})
	advanceToReview(t, ctrl, "creator-1")

	resp := doJSON(t, app, http.MethodPost, "/wizard/back", fiber.Map{"scratch": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("back from review: got %d", resp.StatusCode)
	}
	s := decodeSessionBody(t, resp)
	if s.CurrentStep != StepWaypoints {
		t.Fatalf("expected waypoints step, got %d", s.CurrentStep)
	}
	if s.Draft.Title != "Hidden Gems" {
		t.Fatalf("draft lost on back")
	}
}

func TestWizardWaypointRoutes(t *testing.T) {
	app, _ := newTestApp(&fakeSubmitter{})

	for _, wp := range []fiber.Map{
		{"latitude": 18.93, "longitude": 72.83, "place_name": "A"},
		{"latitude": 18.94, "longitude": 72.84, "place_name": "B"},
		{"latitude": 18.95, "longitude": 72.85, "place_name": "C"},
	} {
		resp := doJSON(t, app, http.MethodPost, "/wizard/waypoints", wp)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("add waypoint: got %d", resp.StatusCode)
		}
	}

	resp := doJSON(t, app, http.MethodPost, "/wizard/waypoints/reorder", fiber.Map{"source": 0, "target": 2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reorder: got %d", resp.StatusCode)
	}
	s := decodeSessionBody(t, resp)
	if s.Draft.Waypoints[0].PlaceName != "B" || s.Draft.Waypoints[2].PlaceName != "A" {
		t.Fatalf("unexpected order: %+v", s.Draft.Waypoints)
	}

	resp = doJSON(t, app, http.MethodPut, "/wizard/waypoints/1", fiber.Map{
		"latitude": 19.0, "longitude": 73.0, "place_name": "C2",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: got %d", resp.StatusCode)
	}
	s = decodeSessionBody(t, resp)
	if s.Draft.Waypoints[1].PlaceName != "C2" {
		t.Fatalf("update not applied: %+v", s.Draft.Waypoints)
	}

	resp = doJSON(t, app, http.MethodDelete, "/wizard/waypoints/0", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: got %d", resp.StatusCode)
	}
	s = decodeSessionBody(t, resp)
	if len(s.Draft.Waypoints) != 2 {
		t.Fatalf("expected 2 waypoints, got %d", len(s.Draft.Waypoints))
	}
}

func TestWizardWaypointBadRequests(t *testing.T) {
	app, _ := newTestApp(&fakeSubmitter{})

	resp := doJSON(t, app, http.MethodPost, "/wizard/waypoints", fiber.Map{"latitude": 91.0, "longitude": 0.0})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range coordinates, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodDelete, "/wizard/waypoints/not-a-number", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad index, got %d", resp.StatusCode)
	}
}

func TestWizardSubmitNotReady(t *testing.T) {
	app, _ := newTestApp(&fakeSubmitter{})

	resp := doJSON(t, app, http.MethodPost, "/wizard/submit", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestWizardSubmitFailureKeepsDraft(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("backend down")}
	app, ctrl := newTestApp(sub)
	advanceToReview(t, ctrl, "creator-1")

	resp := doJSON(t, app, http.MethodPost, "/wizard/submit", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, "/wizard/", nil)
	s := decodeSessionBody(t, resp)
	if s.CurrentStep != StepReview || s.Draft.Title == "" {
		t.Fatalf("draft lost after failed submit: %+v", s)
	}
}

func TestWizardAbandon(t *testing.T) {
	app, ctrl := newTestApp(&fakeSubmitter{})
	advanceToReview(t, ctrl, "creator-1")

	resp := doJSON(t, app, http.MethodDelete, "/wizard/", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, "/wizard/", nil)
	s := decodeSessionBody(t, resp)
	if s.CurrentStep != StepLocation {
		t.Fatalf("expected fresh session after abandon")
	}
}

func TestWizardUnauthorized(t *testing.T) {
	ctrl := NewController(NewMemoryStore(), nil, &fakeSubmitter{})
	app := fiber.New()
	deny := func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}
	RegisterRoutes(app.Group("/wizard"), ctrl, deny)

	resp := doJSON(t, app, http.MethodGet, "/wizard/", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
