package tracking

import (
	"context"
	"sync"
	"time"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/general/logger"
	"trip-tracker/internal/ports"
)

// AddressUnavailable is shown when reverse geocoding fails.
const AddressUnavailable = "address unavailable"

// addressTracker reverse-geocodes the traveler's position with at most one
// request in flight, started no sooner than interval after the previous one.
// Only the newest submitted coordinate is ever geocoded.
type addressTracker struct {
	geocoder ports.Geocoder
	interval time.Duration
	clock    Clock
	logger   *logger.Logger
	onResult func(string)

	ctx context.Context
	wg  sync.WaitGroup

	mu        sync.Mutex
	inFlight  bool
	pending   *geo.Coordinate
	lastStart time.Time
	timer     Timer
	closed    bool
}

func newAddressTracker(ctx context.Context, geocoder ports.Geocoder, interval time.Duration, clock Clock, log *logger.Logger, onResult func(string)) *addressTracker {
	return &addressTracker{
		geocoder: geocoder,
		interval: interval,
		clock:    clock,
		logger:   log,
		onResult: onResult,
		ctx:      ctx,
	}
}

// submit queues c, replacing any coordinate not yet sent.
func (tracker *addressTracker) submit(c geo.Coordinate) {
	if tracker == nil || tracker.geocoder == nil {
		return
	}
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	if tracker.closed {
		return
	}
	tracker.pending = &c
	tracker.pumpLocked()
}

func (tracker *addressTracker) pumpLocked() {
	if tracker.closed || tracker.inFlight || tracker.pending == nil || tracker.timer != nil {
		return
	}

	now := tracker.clock.Now()
	if !tracker.lastStart.IsZero() {
		if wait := tracker.interval - now.Sub(tracker.lastStart); wait > 0 {
			tracker.timer = tracker.clock.AfterFunc(wait, func() {
				tracker.mu.Lock()
				defer tracker.mu.Unlock()
				tracker.timer = nil
				tracker.pumpLocked()
			})
			return
		}
	}

	c := *tracker.pending
	tracker.pending = nil
	tracker.inFlight = true
	tracker.lastStart = now

	tracker.wg.Add(1)
	go tracker.run(c)
}

func (tracker *addressTracker) run(c geo.Coordinate) {
	defer tracker.wg.Done()

	addr, err := tracker.geocoder.ReverseGeocode(tracker.ctx, c)
	if err != nil || addr == "" {
		if err != nil && tracker.ctx.Err() == nil {
			tracker.logger.Error(tracker.ctx, "reverse_geocode_failed", "Failed to reverse geocode location", err,
				map[string]any{"lat": c.Latitude, "lng": c.Longitude})
		}
		addr = AddressUnavailable
	}

	if tracker.ctx.Err() == nil {
		tracker.onResult(addr)
	}

	tracker.mu.Lock()
	tracker.inFlight = false
	tracker.pumpLocked()
	tracker.mu.Unlock()
}

// close stops scheduling and waits for the request in flight.
func (tracker *addressTracker) close() {
	if tracker == nil {
		return
	}
	tracker.mu.Lock()
	tracker.closed = true
	tracker.pending = nil
	if tracker.timer != nil {
		tracker.timer.Stop()
		tracker.timer = nil
	}
	tracker.mu.Unlock()
	tracker.wg.Wait()
}
