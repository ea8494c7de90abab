package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seekkrr/creator-portal/internal/route"
)

var ErrNoResults = errors.New("geocode: no results")

// Client talks to a Mapbox-style forward/reverse geocoding API. Lookup
// failures are expected to be swallowed by callers and replaced with a
// coordinate fallback; they are never user-facing errors.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Candidate is one ranked result of a forward search.
type Candidate struct {
	PlaceName string  `json:"place_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country,omitempty"`
}

type feature struct {
	PlaceName string     `json:"place_name"`
	Text      string     `json:"text"`
	Center    [2]float64 `json:"center"`
	Context   []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"context"`
}

type response struct {
	Features []feature `json:"features"`
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Reverse resolves coordinates to a place name and administrative hierarchy.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (route.PlaceDetails, error) {
	endpoint := fmt.Sprintf("%s/%f,%f.json?access_token=%s", c.baseURL, lng, lat, url.QueryEscape(c.token))
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return route.PlaceDetails{}, err
	}
	if len(resp.Features) == 0 {
		return route.PlaceDetails{}, ErrNoResults
	}

	f := resp.Features[0]
	place := route.PlaceDetails{
		PlaceName: f.PlaceName,
		Address:   f.Text,
	}
	for _, c := range f.Context {
		switch {
		case strings.HasPrefix(c.ID, "place"):
			place.City = c.Text
		case strings.HasPrefix(c.ID, "region"):
			place.Region = c.Text
		case strings.HasPrefix(c.ID, "country"):
			place.Country = c.Text
		}
	}
	return place, nil
}

// Search returns ranked place candidates for a free-text query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 5
	}
	endpoint := fmt.Sprintf("%s/%s.json?access_token=%s&limit=%d",
		c.baseURL, url.PathEscape(query), url.QueryEscape(c.token), limit)
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(resp.Features))
	for _, f := range resp.Features {
		cand := Candidate{
			PlaceName: f.PlaceName,
			Longitude: f.Center[0],
			Latitude:  f.Center[1],
		}
		for _, c := range f.Context {
			switch {
			case strings.HasPrefix(c.ID, "place"):
				cand.City = c.Text
			case strings.HasPrefix(c.ID, "region"):
				cand.Region = c.Text
			case strings.HasPrefix(c.ID, "country"):
				cand.Country = c.Text
			}
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: status %d", res.StatusCode)
	}

	var parsed response
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// FallbackName renders coordinates as the display name used when a lookup
// fails or returns nothing.
func FallbackName(lat, lng float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lng)
}
