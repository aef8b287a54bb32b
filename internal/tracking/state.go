package tracking

import (
	"slices"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/ports"
)

const maxNotices = 5

// State is a consistent copy of a tracking session, safe to read without locks.
// Projections derive every view from it and nothing else.
type State struct {
	TripID  string
	Version uint64

	Places    []trip.PlaceDestination
	Completed []int

	Location         *geo.Fix
	Address          string
	PermissionDenied bool

	Route *trip.RouteInfo
	// RouteBase is len(Completed) when Route was requested: leg i leads to Places[RouteBase+i].
	RouteBase int
	Polylines []trip.PolylineSegment

	CurrentStepIndex             int
	CurrentDestinationDistanceKm *float64

	Focus   trip.FocusMode
	ShowAll bool
	Camera  *ports.CameraCommand
	Lock    trip.Lock

	Notices []trip.Notice
}

// CurrentIndex is the index of the destination being travelled to.
func (s State) CurrentIndex() int {
	return len(s.Completed)
}

// CurrentDestination returns the destination being travelled to, if any remain.
func (s State) CurrentDestination() (trip.PlaceDestination, bool) {
	i := s.CurrentIndex()
	if i >= len(s.Places) {
		return trip.PlaceDestination{}, false
	}
	return s.Places[i], true
}

// Finished reports whether every destination was reached.
func (s State) Finished() bool {
	return len(s.Places) > 0 && s.CurrentIndex() >= len(s.Places)
}

// CurrentLeg returns the route leg leading to the current destination.
func (s State) CurrentLeg() (trip.Leg, int, bool) {
	if s.Route == nil {
		return trip.Leg{}, -1, false
	}
	i := s.CurrentIndex() - s.RouteBase
	if i < 0 || i >= len(s.Route.Legs) {
		return trip.Leg{}, -1, false
	}
	return s.Route.Legs[i], i, true
}

// StatusOf classifies destination index i against the completed set.
func (s State) StatusOf(i int) ports.ProgressStatus {
	switch {
	case i < s.CurrentIndex():
		return ports.StatusCompleted
	case i == s.CurrentIndex():
		return ports.StatusCurrent
	default:
		return ports.StatusUpcoming
	}
}

func (s State) clone() State {
	out := s
	out.Places = slices.Clone(s.Places)
	out.Completed = slices.Clone(s.Completed)
	out.Notices = slices.Clone(s.Notices)
	if s.Location != nil {
		fix := *s.Location
		out.Location = &fix
	}
	if s.CurrentDestinationDistanceKm != nil {
		d := *s.CurrentDestinationDistanceKm
		out.CurrentDestinationDistanceKm = &d
	}
	if s.Camera != nil {
		cmd := *s.Camera
		out.Camera = &cmd
	}
	// routes and polylines are replaced wholesale, never mutated, so sharing is safe
	out.Polylines = slices.Clone(s.Polylines)
	return out
}
