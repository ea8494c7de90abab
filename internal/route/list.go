package route

import (
	"github.com/seekkrr/creator-portal/internal/shared/geo"

	"github.com/google/uuid"
)

// Waypoint is one geo-located stop on a quest route. Position in the list is
// semantic: it defines the visit order.
type Waypoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PlaceName string  `json:"place_name,omitempty"`
	Address   string  `json:"address,omitempty"`
	City      string  `json:"city,omitempty"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country,omitempty"`

	// Stamp identifies the slot for asynchronous place lookups. It is
	// regenerated whenever the waypoint is added or relocated, so a lookup
	// issued against an older stamp can be recognized as stale.
	Stamp string `json:"stamp,omitempty"`
}

// PlaceDetails is the result of a reverse-geocode lookup.
type PlaceDetails struct {
	PlaceName string
	Address   string
	City      string
	Region    string
	Country   string
}

// List is an ordered waypoint sequence. All mutation methods return a fresh
// slice and leave the receiver untouched.
type List []Waypoint

// Add appends wp and returns the new list together with the stamp assigned to
// the appended slot.
func (l List) Add(wp Waypoint) (List, string) {
	wp.Stamp = uuid.NewString()
	out := make(List, 0, len(l)+1)
	out = append(out, l...)
	out = append(out, wp)
	return out, wp.Stamp
}

// Update replaces the waypoint at index i, keeping its position. A fresh stamp
// is assigned so pending lookups for the old coordinates are dropped.
// Out-of-range indices are a no-op.
func (l List) Update(i int, wp Waypoint) (List, string) {
	if i < 0 || i >= len(l) {
		return l, ""
	}
	wp.Stamp = uuid.NewString()
	out := make(List, len(l))
	copy(out, l)
	out[i] = wp
	return out, wp.Stamp
}

// Remove deletes the waypoint at index i; later elements shift down by one.
// Out-of-range indices are a no-op.
func (l List) Remove(i int) List {
	if i < 0 || i >= len(l) {
		return l
	}
	out := make(List, 0, len(l)-1)
	out = append(out, l[:i]...)
	out = append(out, l[i+1:]...)
	return out
}

// Reorder moves the waypoint at src to dst, shifting intervening elements.
// This is the only operation that changes route semantics without changing
// membership. Out-of-range indices are a no-op.
func (l List) Reorder(src, dst int) List {
	if src < 0 || src >= len(l) || dst < 0 || dst >= len(l) || src == dst {
		return l
	}
	out := make(List, 0, len(l))
	out = append(out, l...)
	wp := out[src]
	out = append(out[:src], out[src+1:]...)

	tail := make(List, len(out[dst:]))
	copy(tail, out[dst:])
	out = append(out[:dst], wp)
	out = append(out, tail...)
	return out
}

// ApplyGeocode applies an asynchronous lookup result to the slot still
// carrying stamp. A result whose stamp no longer matches any slot is stale and
// is dropped; the second return reports whether the result was applied.
func (l List) ApplyGeocode(stamp string, place PlaceDetails) (List, bool) {
	if stamp == "" {
		return l, false
	}
	for i := range l {
		if l[i].Stamp != stamp {
			continue
		}
		out := make(List, len(l))
		copy(out, l)
		out[i].PlaceName = place.PlaceName
		out[i].Address = place.Address
		out[i].City = place.City
		out[i].Region = place.Region
		out[i].Country = place.Country
		return out, true
	}
	return l, false
}

// TotalDistanceKm sums the great-circle distance over consecutive waypoints.
func (l List) TotalDistanceKm() float64 {
	var total float64
	for i := 1; i < len(l); i++ {
		total += geo.HaversineKm(l[i-1].Latitude, l[i-1].Longitude, l[i].Latitude, l[i].Longitude)
	}
	return total
}
