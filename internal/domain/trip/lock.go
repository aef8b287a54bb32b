package trip

import (
	"errors"
	"time"
)

// LockState is the tag of the controller's processing lock.
type LockState string

const (
	LockIdle              LockState = "IDLE"
	LockRouteUpdating     LockState = "ROUTE_UPDATING"
	LockProcessingArrival LockState = "PROCESSING_ARRIVAL"
)

var (
	ErrFetchInFlight   = errors.New("route fetch already in flight")
	ErrArrivalBlocked  = errors.New("arrival cannot be processed in current lock state")
	ErrInvalidLockFlow = errors.New("invalid lock transition")
)

// Lock is the single processing lock of a tracking session.
// ProcessingArrival carries the time it was entered and whether the
// post-arrival route fetch is still running.
type Lock struct {
	State    LockState `json:"state"`
	Since    time.Time `json:"since,omitempty"`
	Fetching bool      `json:"fetching,omitempty"`
}

// Idle returns the idle lock.
func Idle() Lock { return Lock{State: LockIdle} }

// CanTransitionTo specifies if the lock can move to the next state.
func (state LockState) CanTransitionTo(next LockState) bool {
	switch state {
	case LockIdle:
		return next == LockRouteUpdating || next == LockProcessingArrival
	case LockRouteUpdating:
		return next == LockIdle
	case LockProcessingArrival:
		return next == LockIdle || next == LockRouteUpdating || next == LockProcessingArrival
	default:
		return false
	}
}

// String returns the string representation of the LockState.
func (state LockState) String() string {
	return string(state)
}

// Suppressed reports whether proximity and step evaluation must be skipped.
func (l Lock) Suppressed() bool {
	return l.State != LockIdle
}

// InFlight reports whether a route fetch is running.
func (l Lock) InFlight() bool {
	return l.State == LockRouteUpdating || (l.State == LockProcessingArrival && l.Fetching)
}

// BeginFetch marks a route fetch as started.
func (l Lock) BeginFetch() (Lock, error) {
	if l.InFlight() {
		return l, ErrFetchInFlight
	}
	switch l.State {
	case LockIdle:
		return Lock{State: LockRouteUpdating}, nil
	case LockProcessingArrival:
		return Lock{State: LockProcessingArrival, Since: l.Since, Fetching: true}, nil
	default:
		return l, ErrInvalidLockFlow
	}
}

// EndFetch marks the running route fetch as resolved or rejected.
func (l Lock) EndFetch() Lock {
	switch {
	case l.State == LockRouteUpdating:
		return Idle()
	case l.State == LockProcessingArrival && l.Fetching:
		return Lock{State: LockProcessingArrival, Since: l.Since}
	default:
		return l
	}
}

// BeginArrival enters ProcessingArrival. Only an idle lock may do so.
func (l Lock) BeginArrival(now time.Time) (Lock, error) {
	if l.State != LockIdle {
		return l, ErrArrivalBlocked
	}
	return Lock{State: LockProcessingArrival, Since: now}, nil
}

// EndCooldown leaves ProcessingArrival. A fetch still in flight keeps the
// lock in RouteUpdating until it resolves.
func (l Lock) EndCooldown() Lock {
	if l.State != LockProcessingArrival {
		return l
	}
	if l.Fetching {
		return Lock{State: LockRouteUpdating}
	}
	return Idle()
}
