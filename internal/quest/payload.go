package quest

import (
	"context"
	"fmt"

	"github.com/seekkrr/creator-portal/internal/media"
	"github.com/seekkrr/creator-portal/internal/wizard"
)

const (
	defaultDurationMinutes = 60
	defaultZoomLevel       = 14
	defaultMapStyle        = "standard"
)

// BuildPayload is the one-way transformation of a completed draft into the
// quest store's wire shape. Waypoints are renumbered 1..N; the last waypoint
// (or the step-1 location when there are none) becomes the end location.
// Status and booking are fixed at creation time and not creator-editable.
func BuildPayload(d wizard.Draft) Payload {
	start := GeoPoint{
		Type:        "Point",
		Coordinates: [2]float64{deref(d.Longitude), deref(d.Latitude)},
	}
	end := start
	if n := len(d.Waypoints); n > 0 {
		last := d.Waypoints[n-1]
		end = GeoPoint{Type: "Point", Coordinates: [2]float64{last.Longitude, last.Latitude}}
	}

	region := d.City
	if region == "" {
		region = "Unknown"
	}

	duration := defaultDurationMinutes
	if d.Duration != nil {
		duration = *d.Duration
	}

	waypoints := make([]RouteWaypoint, 0, len(d.Waypoints))
	steps := make([]StepPayload, 0, len(d.Waypoints))
	for i, wp := range d.Waypoints {
		waypoints = append(waypoints, RouteWaypoint{
			Order: i + 1,
			Location: GeoPoint{
				Type:        "Point",
				Coordinates: [2]float64{wp.Longitude, wp.Latitude},
			},
		})

		title := wp.PlaceName
		if title == "" {
			title = fmt.Sprintf("Step %d", i+1)
		}
		target := wp.PlaceName
		if target == "" {
			target = fmt.Sprintf("location %d", i+1)
		}
		steps = append(steps, StepPayload{
			Title:       title,
			Description: fmt.Sprintf("Visit %s", target),
		})
	}

	return Payload{
		Metadata: Metadata{
			Title:           d.Title,
			Description:     []string{d.Description},
			Theme:           string(d.Theme),
			Difficulty:      string(d.Difficulty),
			DurationMinutes: duration,
		},
		Location: Location{
			Region:         region,
			StartLocation:  start,
			EndLocation:    end,
			RouteWaypoints: waypoints,
			DistanceKm:     d.Waypoints.TotalDistanceKm(),
			MapData:        MapData{ZoomLevel: defaultZoomLevel, MapStyle: defaultMapStyle},
		},
		Media: Media{
			CloudinaryAssets: []media.Asset{},
			SourceURL:        d.SourceURL,
		},
		Steps:          steps,
		Status:         "Draft",
		BookingEnabled: false,
	}
}

// Creator is the quest-creation collaborator the submission adapter calls.
type Creator interface {
	CreateQuest(ctx context.Context, createdBy string, p Payload) (CreateResponse, error)
}

// Adapter implements wizard.Submitter: build the payload, dispatch once.
type Adapter struct {
	creator Creator
}

func NewAdapter(creator Creator) *Adapter {
	return &Adapter{creator: creator}
}

func (a *Adapter) Submit(ctx context.Context, ownerID string, d wizard.Draft) (wizard.SubmitResult, error) {
	res, err := a.creator.CreateQuest(ctx, ownerID, BuildPayload(d))
	if err != nil {
		return wizard.SubmitResult{}, err
	}
	return wizard.SubmitResult{QuestID: res.QuestID, StepIDs: res.StepIDs}, nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
