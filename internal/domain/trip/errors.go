package trip

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrPlaceNotFound    = errors.New("place not found")
	ErrNoDestinations   = errors.New("no destinations could be resolved")
)

// RouteError is a failed route computation. The previous route stays in use.
type RouteError struct {
	Reason string
	Err    error
}

func (e *RouteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("route: %s: %v", e.Reason, e.Err)
	}
	return "route: " + e.Reason
}

func (e *RouteError) Unwrap() error { return e.Err }

// PersistenceError is a failed read or write of completed-stop state.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NoticeKind classifies a user-visible notice.
type NoticeKind string

const (
	NoticePermissionDenied NoticeKind = "permission_denied"
	NoticeRouteError       NoticeKind = "route_error"
	NoticeDecodeError      NoticeKind = "decode_error"
	NoticePlaceNotFound    NoticeKind = "place_not_found"
	NoticePersistenceError NoticeKind = "persistence_error"
)

// Notice is a non-blocking message surfaced to the traveler.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	At      time.Time  `json:"at"`
}
