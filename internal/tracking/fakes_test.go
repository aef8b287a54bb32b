package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/domain/trip"
)

// ----- clock -----

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward and runs due timers on the calling goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// ----- route provider -----

type fakeRoutes struct {
	mu          sync.Mutex
	calls       [][]geo.Coordinate
	err         error
	gate        chan struct{}
	badPolyline bool
}

func (f *fakeRoutes) ComputeRoute(ctx context.Context, origin geo.Coordinate, stops []geo.Coordinate) (trip.RouteInfo, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]geo.Coordinate(nil), stops...))
	err, gate, bad := f.err, f.gate, f.badPolyline
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return trip.RouteInfo{}, ctx.Err()
		}
	}
	if err != nil {
		return trip.RouteInfo{}, err
	}

	route := trip.RouteInfo{Duration: "0s"}
	prev := origin
	for _, stop := range stops {
		mid := geo.Coordinate{Latitude: (prev.Latitude + stop.Latitude) / 2, Longitude: (prev.Longitude + stop.Longitude) / 2}
		legMeters := int(geo.DistanceMeters(prev, stop))
		encoded := geo.EncodePolyline([]geo.Coordinate{prev, mid, stop})
		if bad {
			encoded = "_p~iF~ps|"
		}
		route.Legs = append(route.Legs, trip.Leg{
			DistanceMeters:  legMeters,
			Duration:        "600s",
			EncodedPolyline: encoded,
			Steps: []trip.Step{
				{
					DistanceMeters:        legMeters / 2,
					StartLocation:         prev,
					EndLocation:           mid,
					NavigationInstruction: trip.NavigationInstruction{Maneuver: "DEPART", Instructions: "Head north"},
				},
				{
					DistanceMeters:        legMeters - legMeters/2,
					StartLocation:         mid,
					EndLocation:           stop,
					NavigationInstruction: trip.NavigationInstruction{Maneuver: "TURN_LEFT", Instructions: "Turn left"},
				},
			},
		})
		route.DistanceMeters += legMeters
		prev = stop
	}
	return route, nil
}

func (f *fakeRoutes) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRoutes) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeRoutes) setBadPolyline(bad bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.badPolyline = bad
}

// ----- place search -----

type fakePlaces map[string]geo.Coordinate

func (f fakePlaces) SearchPlace(_ context.Context, keyword string) (trip.PlaceDestination, error) {
	c, ok := f[keyword]
	if !ok {
		return trip.PlaceDestination{}, trip.ErrPlaceNotFound
	}
	return trip.PlaceDestination{Location: c, DisplayName: keyword, FormattedAddress: keyword + " street"}, nil
}

// ----- key-value store -----

type fakeKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	putErr error
}

func newFakeKV() *fakeKV { return &fakeKV{data: map[string][]byte{}} }

func (kv *fakeKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.getErr != nil {
		return nil, false, kv.getErr
	}
	v, ok := kv.data[key]
	return v, ok, nil
}

func (kv *fakeKV) Put(_ context.Context, key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.putErr != nil {
		return kv.putErr
	}
	kv.data[key] = append([]byte(nil), value...)
	return nil
}

func (kv *fakeKV) get(key string) string {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return string(kv.data[key])
}

var errUnavailable = errors.New("service unavailable")

// ----- helpers -----

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
