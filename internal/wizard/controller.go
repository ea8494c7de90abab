package wizard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/seekkrr/creator-portal/internal/geocode"
	"github.com/seekkrr/creator-portal/internal/route"
)

var (
	// ErrNotReady means the draft has not passed every step yet.
	ErrNotReady = errors.New("complete all steps before submitting")
)

// Geocoder resolves coordinates to a place. *geocode.Client satisfies it.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (route.PlaceDetails, error)
}

type SubmitResult struct {
	QuestID string   `json:"quest_id"`
	StepIDs []string `json:"step_ids"`
}

// Submitter performs the one-shot quest creation. No automatic retry: a
// failed submission is retried only by the caller invoking Submit again.
type Submitter interface {
	Submit(ctx context.Context, ownerID string, d Draft) (SubmitResult, error)
}

// Controller drives the linear step machine over a creator's session. Every
// successful mutation persists the session before returning.
type Controller struct {
	store     SessionStore
	geo       Geocoder
	submitter Submitter

	mu      sync.Mutex
	seq     uint64
	pending map[string]pendingLookup
	locks   map[string]*sync.Mutex
}

type pendingLookup struct {
	seq    uint64
	cancel context.CancelFunc
}

func NewController(store SessionStore, geo Geocoder, submitter Submitter) *Controller {
	return &Controller{
		store:     store,
		geo:       geo,
		submitter: submitter,
		pending:   map[string]pendingLookup{},
		locks:     map[string]*sync.Mutex{},
	}
}

// ownerLock serializes the load-mutate-save cycles against one owner's slot.
// Without it an asynchronous lookup application could write back a snapshot
// taken before a concurrent mutation saved, resurrecting removed waypoints.
func (c *Controller) ownerLock(ownerID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[ownerID]
	if !ok {
		l = new(sync.Mutex)
		c.locks[ownerID] = l
	}
	return l
}

// Resume loads the owner's session, defaulting to an empty draft at step 1.
func (c *Controller) Resume(ctx context.Context, ownerID string) Session {
	return c.store.Load(ctx, ownerID)
}

// Advance validates data for the current step. On failure the session is
// untouched and the field errors are returned; on success the data is merged,
// the step bumped (capped at review) and the session persisted.
func (c *Controller) Advance(ctx context.Context, ownerID string, data StepData) (Session, FieldErrors, error) {
	lock := c.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	s := c.store.Load(ctx, ownerID)
	if data.Step() != s.CurrentStep {
		return s, nil, fmt.Errorf("got step %d data while at step %d", data.Step(), s.CurrentStep)
	}
	if errs := data.Validate(); len(errs) > 0 {
		return s, errs, nil
	}

	data.Apply(&s.Draft)
	if s.CurrentStep < StepReview {
		s.CurrentStep++
	}
	if err := c.store.Save(ctx, ownerID, s); err != nil {
		return s, nil, err
	}
	return s, nil, nil
}

// Back retreats one step without validation, merging any partial data the
// caller supplies so work in progress is not lost.
func (c *Controller) Back(ctx context.Context, ownerID string, data StepData) (Session, error) {
	lock := c.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	s := c.store.Load(ctx, ownerID)
	if data != nil {
		data.Apply(&s.Draft)
	}
	if s.CurrentStep > StepLocation {
		s.CurrentStep--
	}
	if err := c.store.Save(ctx, ownerID, s); err != nil {
		return s, err
	}
	return s, nil
}

// AddWaypoint appends wp to the route. When no place name is supplied the
// coordinate fallback is shown until a reverse lookup resolves.
func (c *Controller) AddWaypoint(ctx context.Context, ownerID string, wp route.Waypoint) (Session, string, error) {
	lock := c.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	s := c.store.Load(ctx, ownerID)
	if wp.PlaceName == "" {
		wp.PlaceName = geocode.FallbackName(wp.Latitude, wp.Longitude)
	}
	list, stamp := s.Draft.Waypoints.Add(wp)
	s.Draft.Waypoints = list
	if err := c.store.Save(ctx, ownerID, s); err != nil {
		return s, "", err
	}
	return s, stamp, nil
}

// UpdateWaypoint replaces the waypoint at index i in place (drag relocation).
// Out-of-range indices are a no-op.
func (c *Controller) UpdateWaypoint(ctx context.Context, ownerID string, i int, wp route.Waypoint) (Session, string, error) {
	lock := c.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	s := c.store.Load(ctx, ownerID)
	if wp.PlaceName == "" {
		wp.PlaceName = geocode.FallbackName(wp.Latitude, wp.Longitude)
	}
	list, stamp := s.Draft.Waypoints.Update(i, wp)
	if stamp == "" {
		return s, "", nil
	}
	s.Draft.Waypoints = list
	if err := c.store.Save(ctx, ownerID, s); err != nil {
		return s, "", err
	}
	return s, stamp, nil
}

// RemoveWaypoint deletes the waypoint at index i. Out-of-range is a no-op.
func (c *Controller) RemoveWaypoint(ctx context.Context, ownerID string, i int) (Session, error) {
	lock := c.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	s := c.store.Load(ctx, ownerID)
	list := s.Draft.Waypoints.Remove(i)
	if len(list) == len(s.Draft.Waypoints) {
		return s, nil
	}
	s.Draft.Waypoints = list
	if err := c.store.Save(ctx, ownerID, s); err != nil {
		return s, err
	}
	return s, nil
}

// ReorderWaypoints moves the waypoint at src to dst.
func (c *Controller) ReorderWaypoints(ctx context.Context, ownerID string, src, dst int) (Session, error) {
	lock := c.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	s := c.store.Load(ctx, ownerID)
	s.Draft.Waypoints = s.Draft.Waypoints.Reorder(src, dst)
	if err := c.store.Save(ctx, ownerID, s); err != nil {
		return s, err
	}
	return s, nil
}

// EnrichWaypoint resolves a place name for the slot identified by stamp and
// applies it only if that slot is still current. Issuing a new lookup for the
// same owner cancels any pending one, so a stale response cannot overwrite a
// newer action. Lookup failures are swallowed; the coordinate fallback set at
// add/update time remains on display.
func (c *Controller) EnrichWaypoint(ctx context.Context, ownerID, stamp string, lat, lng float64) {
	if c.geo == nil || stamp == "" {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.seq++
	mine := c.seq
	if prev, ok := c.pending[ownerID]; ok {
		prev.cancel()
	}
	c.pending[ownerID] = pendingLookup{seq: mine, cancel: cancel}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if p, ok := c.pending[ownerID]; ok && p.seq == mine {
			delete(c.pending, ownerID)
		}
		c.mu.Unlock()
		cancel()
	}()

	place, err := c.geo.Reverse(ctx, lat, lng)
	if err != nil {
		return
	}
	if place.PlaceName == "" {
		place.PlaceName = geocode.FallbackName(lat, lng)
	}

	// The stamp match must run against the stored session under the owner
	// lock, never against a snapshot a concurrent mutation may have replaced.
	lock := c.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	s := c.store.Load(ctx, ownerID)
	list, applied := s.Draft.Waypoints.ApplyGeocode(stamp, place)
	if !applied {
		return
	}
	s.Draft.Waypoints = list
	if err := c.store.Save(ctx, ownerID, s); err != nil {
		log.Printf("apply geocode result: %v", err)
	}
}

// Submit converts the draft into a quest. The slot is cleared only on
// success; on failure it is preserved so the creator can resubmit without
// re-entering anything.
func (c *Controller) Submit(ctx context.Context, ownerID string) (SubmitResult, error) {
	lock := c.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	s := c.store.Load(ctx, ownerID)
	if s.CurrentStep != StepReview {
		return SubmitResult{}, ErrNotReady
	}
	if errs := ValidateDraft(s.Draft); len(errs) > 0 {
		return SubmitResult{}, ErrNotReady
	}

	res, err := c.submitter.Submit(ctx, ownerID, s.Draft)
	if err != nil {
		return SubmitResult{}, err
	}
	if err := c.store.Clear(ctx, ownerID); err != nil {
		log.Printf("clear draft slot after submit: %v", err)
	}
	return res, nil
}

// Abandon discards the in-progress draft.
func (c *Controller) Abandon(ctx context.Context, ownerID string) error {
	lock := c.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	return c.store.Clear(ctx, ownerID)
}
