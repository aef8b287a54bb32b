package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/general/logger"
)

type gatedGeocoder struct {
	mu      sync.Mutex
	calls   []geo.Coordinate
	release chan struct{}
	err     error
}

func (g *gatedGeocoder) ReverseGeocode(ctx context.Context, c geo.Coordinate) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, c)
	g.mu.Unlock()

	select {
	case <-g.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if g.err != nil {
		return "", g.err
	}
	return c.String(), nil
}

func (g *gatedGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func TestAddressTracker_NewestSupersedesAndRateLimits(t *testing.T) {
	clock := newFakeClock()
	geocoder := &gatedGeocoder{release: make(chan struct{})}
	results := make(chan string, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tracker := newAddressTracker(ctx, geocoder, time.Second, clock, logger.Discard(), func(s string) { results <- s })
	defer tracker.close()

	a := geo.Coordinate{Latitude: 1, Longitude: 1}
	b := geo.Coordinate{Latitude: 2, Longitude: 2}
	c := geo.Coordinate{Latitude: 3, Longitude: 3}

	tracker.submit(a)
	waitFor(t, "first request", func() bool { return geocoder.callCount() == 1 })
	tracker.submit(b)
	tracker.submit(c)

	geocoder.release <- struct{}{}
	if got := <-results; got != a.String() {
		t.Fatalf("first result = %q, want %q", got, a.String())
	}

	// the next request waits for the interval
	waitFor(t, "rate-limit timer", func() bool { return clock.pending() == 1 })
	if geocoder.callCount() != 1 {
		t.Fatalf("calls = %d before the interval elapsed", geocoder.callCount())
	}

	clock.Advance(time.Second)
	waitFor(t, "second request", func() bool { return geocoder.callCount() == 2 })
	geocoder.release <- struct{}{}
	if got := <-results; got != c.String() {
		t.Errorf("second result = %q, want newest %q", got, c.String())
	}

	geocoder.mu.Lock()
	defer geocoder.mu.Unlock()
	for _, call := range geocoder.calls {
		if call == b {
			t.Error("superseded coordinate must not be geocoded")
		}
	}
}

func TestAddressTracker_FailureDegrades(t *testing.T) {
	clock := newFakeClock()
	geocoder := &gatedGeocoder{release: make(chan struct{}), err: errUnavailable}
	results := make(chan string, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tracker := newAddressTracker(ctx, geocoder, time.Second, clock, logger.Discard(), func(s string) { results <- s })
	defer tracker.close()

	tracker.submit(geo.Coordinate{Latitude: 1, Longitude: 1})
	geocoder.release <- struct{}{}
	if got := <-results; got != AddressUnavailable {
		t.Errorf("result = %q, want %q", got, AddressUnavailable)
	}
}
