package wizard

import (
	"fmt"
	"strings"

	"github.com/seekkrr/creator-portal/internal/route"
)

// FieldErrors maps a field path to a human-readable message. An empty map
// means the input is valid.
type FieldErrors map[string]string

// StepData is one step's typed payload. Validate gates advancement; Apply
// shallow-merges the step's fields into the draft.
type StepData interface {
	Step() Step
	Validate() FieldErrors
	Apply(d *Draft)
}

// LocationData is step 1: either a city name or a source URL, never both
// required at once.
type LocationData struct {
	LocationType LocationType `json:"locationType"`
	City         string       `json:"city"`
	SourceURL    string       `json:"sourceUrl"`
	Latitude     *float64     `json:"latitude,omitempty"`
	Longitude    *float64     `json:"longitude,omitempty"`
}

func (LocationData) Step() Step { return StepLocation }

func (d LocationData) Validate() FieldErrors {
	errs := FieldErrors{}
	switch d.LocationType {
	case LocationCity:
		if len(strings.TrimSpace(d.City)) < 2 {
			errs["locationType"] = "please provide a city name or a valid URL"
		}
	case LocationURL:
		if strings.TrimSpace(d.SourceURL) == "" {
			errs["locationType"] = "please provide a city name or a valid URL"
		}
	default:
		errs["locationType"] = "please provide a city name or a valid URL"
	}
	return errs
}

func (d LocationData) Apply(draft *Draft) {
	draft.LocationType = d.LocationType
	draft.City = d.City
	draft.SourceURL = d.SourceURL
	draft.Latitude = d.Latitude
	draft.Longitude = d.Longitude
}

// DetailsData is step 2: quest metadata.
type DetailsData struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Theme       Theme      `json:"theme"`
	Difficulty  Difficulty `json:"difficulty"`
	Duration    *int       `json:"duration,omitempty"`
}

func (DetailsData) Step() Step { return StepDetails }

func (d DetailsData) Validate() FieldErrors {
	errs := FieldErrors{}
	if n := len(d.Title); n < 3 || n > 100 {
		errs["title"] = "title must be between 3 and 100 characters"
	}
	if n := len(d.Description); n < 10 || n > 1000 {
		errs["description"] = "description must be between 10 and 1000 characters"
	}
	if !validTheme(d.Theme) {
		errs["theme"] = "unknown theme"
	}
	if !validDifficulty(d.Difficulty) {
		errs["difficulty"] = "unknown difficulty"
	}
	if d.Duration != nil && (*d.Duration < 30 || *d.Duration > 1440) {
		errs["duration"] = "duration must be between 30 and 1440 minutes"
	}
	return errs
}

func (d DetailsData) Apply(draft *Draft) {
	draft.Title = d.Title
	draft.Description = d.Description
	draft.Theme = d.Theme
	draft.Difficulty = d.Difficulty
	draft.Duration = d.Duration
}

// WaypointsData is step 3: the ordered route.
type WaypointsData struct {
	Waypoints route.List `json:"waypoints"`
}

func (WaypointsData) Step() Step { return StepWaypoints }

func (d WaypointsData) Validate() FieldErrors {
	errs := FieldErrors{}
	if len(d.Waypoints) == 0 {
		errs["waypoints"] = "add at least one waypoint"
		return errs
	}
	for i, wp := range d.Waypoints {
		if wp.Latitude < -90 || wp.Latitude > 90 {
			errs[fmt.Sprintf("waypoints[%d].latitude", i)] = "latitude must be between -90 and 90"
		}
		if wp.Longitude < -180 || wp.Longitude > 180 {
			errs[fmt.Sprintf("waypoints[%d].longitude", i)] = "longitude must be between -180 and 180"
		}
	}
	return errs
}

func (d WaypointsData) Apply(draft *Draft) {
	draft.Waypoints = d.Waypoints
}

// ValidateDraft checks submit-eligibility: all three data steps must pass.
func ValidateDraft(d Draft) FieldErrors {
	errs := FieldErrors{}
	merge := func(more FieldErrors) {
		for k, v := range more {
			errs[k] = v
		}
	}
	merge(LocationData{
		LocationType: d.LocationType,
		City:         d.City,
		SourceURL:    d.SourceURL,
		Latitude:     d.Latitude,
		Longitude:    d.Longitude,
	}.Validate())
	merge(DetailsData{
		Title:       d.Title,
		Description: d.Description,
		Theme:       d.Theme,
		Difficulty:  d.Difficulty,
		Duration:    d.Duration,
	}.Validate())
	merge(WaypointsData{Waypoints: d.Waypoints}.Validate())
	return errs
}

func validDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}

func validTheme(t Theme) bool {
	switch t {
	case ThemeAdventure, ThemeRomance, ThemeCulture, ThemeFood, ThemeHistory, ThemeNature, ThemeCustom:
		return true
	}
	return false
}
