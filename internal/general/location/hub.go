// Package location fans device positions out to the tracking sessions that
// subscribed to a trip.
package location

import (
	"context"
	"errors"
	"strings"
	"sync"

	"trip-tracker/internal/ports"
)

const defaultBuffer = 16

var (
	ErrHubClosed   = errors.New("location hub closed")
	ErrEmptyTripID = errors.New("trip id is required")
)

type subscriber struct {
	ch   chan ports.LocationUpdate
	once sync.Once
}

// Hub is an in-process LocationStream. Each subscriber gets a buffered
// channel; when it is full the oldest update is dropped so the newest
// position always gets through. The last fix per trip is replayed to new
// subscribers.
type Hub struct {
	buffer int

	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	last   map[string]ports.LocationUpdate
	closed bool
}

var (
	_ ports.LocationStream    = (*Hub)(nil)
	_ ports.LocationPublisher = (*Hub)(nil)
)

// NewHub returns a hub whose subscriber channels hold buffer updates.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		buffer: buffer,
		subs:   make(map[string]map[*subscriber]struct{}),
		last:   make(map[string]ports.LocationUpdate),
	}
}

// Subscribe registers for tripID. The channel is closed by the returned
// func or when ctx ends.
func (hub *Hub) Subscribe(ctx context.Context, tripID string) (<-chan ports.LocationUpdate, func(), error) {
	tripID = strings.TrimSpace(tripID)
	if tripID == "" {
		return nil, nil, ErrEmptyTripID
	}

	sub := &subscriber{ch: make(chan ports.LocationUpdate, hub.buffer)}

	hub.mu.Lock()
	if hub.closed {
		hub.mu.Unlock()
		return nil, nil, ErrHubClosed
	}
	if hub.subs[tripID] == nil {
		hub.subs[tripID] = make(map[*subscriber]struct{})
	}
	hub.subs[tripID][sub] = struct{}{}
	if last, ok := hub.last[tripID]; ok {
		sub.ch <- last
	}
	hub.mu.Unlock()

	unsubscribe := func() { hub.remove(tripID, sub) }

	stop := context.AfterFunc(ctx, unsubscribe)
	return sub.ch, func() {
		stop()
		unsubscribe()
	}, nil
}

func (hub *Hub) remove(tripID string, sub *subscriber) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if set, ok := hub.subs[tripID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(hub.subs, tripID)
		}
	}
	sub.once.Do(func() { close(sub.ch) })
}

// Publish delivers update to every subscriber of tripID without blocking.
func (hub *Hub) Publish(_ context.Context, tripID string, update ports.LocationUpdate) error {
	tripID = strings.TrimSpace(tripID)
	if tripID == "" {
		return ErrEmptyTripID
	}

	// a write lock keeps drop-oldest and send atomic per subscriber
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.closed {
		return ErrHubClosed
	}
	if update.Err == nil {
		hub.last[tripID] = update
	}
	for sub := range hub.subs[tripID] {
		deliver(sub.ch, update)
	}
	return nil
}

func deliver(ch chan ports.LocationUpdate, update ports.LocationUpdate) {
	for {
		select {
		case ch <- update:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Subscribers reports how many subscriptions tripID has.
func (hub *Hub) Subscribers(tripID string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.subs[tripID])
}

// Forget drops the replayed fix of tripID.
func (hub *Hub) Forget(tripID string) {
	hub.mu.Lock()
	delete(hub.last, tripID)
	hub.mu.Unlock()
}

// Close ends every subscription.
func (hub *Hub) Close() {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.closed {
		return
	}
	hub.closed = true
	for tripID, set := range hub.subs {
		for sub := range set {
			sub.once.Do(func() { close(sub.ch) })
		}
		delete(hub.subs, tripID)
	}
}
