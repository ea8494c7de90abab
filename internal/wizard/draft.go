package wizard

import "github.com/seekkrr/creator-portal/internal/route"

// Step is the wizard's position: Location(1) -> Details(2) -> Waypoints(3) -> Review(4).
type Step int

const (
	StepLocation Step = iota + 1
	StepDetails
	StepWaypoints
	StepReview
)

type LocationType string

const (
	LocationCity LocationType = "city"
	LocationURL  LocationType = "url"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
	DifficultyExpert Difficulty = "Expert"
)

type Theme string

const (
	ThemeAdventure Theme = "Adventure"
	ThemeRomance   Theme = "Romance"
	ThemeCulture   Theme = "Culture"
	ThemeFood      Theme = "Food"
	ThemeHistory   Theme = "History"
	ThemeNature    Theme = "Nature"
	ThemeCustom    Theme = "Custom"
)

// Draft is the single accumulating quest record edited across the wizard's
// steps. Field names in JSON match the persisted envelope.
type Draft struct {
	LocationType LocationType `json:"locationType"`
	City         string       `json:"city"`
	SourceURL    string       `json:"sourceUrl"`
	Latitude     *float64     `json:"latitude,omitempty"`
	Longitude    *float64     `json:"longitude,omitempty"`

	Title       string     `json:"title"`
	Description string     `json:"description"`
	Theme       Theme      `json:"theme"`
	Difficulty  Difficulty `json:"difficulty"`
	// Duration is in minutes.
	Duration *int `json:"duration,omitempty"`

	Waypoints route.List `json:"waypoints"`
}

// Session is the persisted envelope for one in-progress wizard flow.
type Session struct {
	Draft       Draft `json:"formData"`
	CurrentStep Step  `json:"currentStep"`
}

func DefaultDraft() Draft {
	duration := 60
	return Draft{
		LocationType: LocationCity,
		Theme:        ThemeAdventure,
		Difficulty:   DifficultyMedium,
		Duration:     &duration,
		Waypoints:    route.List{},
	}
}

func DefaultSession() Session {
	return Session{Draft: DefaultDraft(), CurrentStep: StepLocation}
}
