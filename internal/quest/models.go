package quest

import (
	"time"

	"github.com/seekkrr/creator-portal/internal/media"
)

// GeoPoint is a GeoJSON-style point: coordinates are [lng, lat].
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type RouteWaypoint struct {
	Order    int      `json:"order"`
	Location GeoPoint `json:"location"`
}

type MapData struct {
	ZoomLevel int    `json:"zoom_level"`
	MapStyle  string `json:"map_style"`
}

type Metadata struct {
	Title           string   `json:"title"`
	Description     []string `json:"description"`
	Theme           string   `json:"theme"`
	Difficulty      string   `json:"difficulty"`
	DurationMinutes int      `json:"duration_minutes"`
}

type Location struct {
	Region         string          `json:"region"`
	StartLocation  GeoPoint        `json:"start_location"`
	EndLocation    GeoPoint        `json:"end_location"`
	RouteWaypoints []RouteWaypoint `json:"route_waypoints"`
	DistanceKm     float64         `json:"distance_km"`
	MapData        MapData         `json:"map_data"`
}

type Media struct {
	CloudinaryAssets []media.Asset `json:"cloudinary_assets"`
	SourceURL        string        `json:"source_url,omitempty"`
}

type StepPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Payload is the wire shape the quest store accepts at creation time.
type Payload struct {
	Metadata       Metadata      `json:"metadata"`
	Location       Location      `json:"location"`
	Media          Media         `json:"media"`
	Steps          []StepPayload `json:"steps"`
	Status         string        `json:"status"`
	BookingEnabled bool          `json:"booking_enabled"`
}

type CreateResponse struct {
	QuestID string   `json:"quest_id"`
	StepIDs []string `json:"step_ids"`
}

type Quest struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Difficulty     string    `json:"difficulty"`
	Theme          string    `json:"theme"`
	Region         string    `json:"region"`
	Status         string    `json:"status"`
	BookingEnabled bool      `json:"booking_enabled"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

type Step struct {
	ID          string `json:"id"`
	QuestID     string `json:"quest_id"`
	Order       int    `json:"order"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type QuestDetails struct {
	Quest    Quest    `json:"quest"`
	Metadata Metadata `json:"metadata"`
	Location Location `json:"location"`
	Media    Media    `json:"media"`
	Steps    []Step   `json:"steps"`
}

type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

type ListParams struct {
	Page      int
	PerPage   int
	Status    string
	CreatedBy string
}
