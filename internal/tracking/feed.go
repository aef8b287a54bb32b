package tracking

import (
	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/domain/maneuver"
	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/ports"
)

// RouteDetail derives the step-by-step itinerary from s. Destinations are
// classified against the completed set; steps of the current leg against
// CurrentStepIndex; steps of later legs are upcoming.
func RouteDetail(s State) ports.RouteDetailView {
	view := ports.RouteDetailView{
		TripID:         s.TripID,
		Version:        s.Version,
		CurrentAddress: s.Address,
		CompletedCount: len(s.Completed),
		TotalCount:     len(s.Places),
		Legs:           make([]ports.LegEntry, 0, len(s.Places)),
	}
	if s.Route != nil {
		km := float64(s.Route.DistanceMeters) / 1000
		view.TotalDistance = geo.FormatDistance(&km)
		view.TotalDuration = geo.FormatDuration(s.Route.DurationSeconds())
	}

	current := s.CurrentIndex()
	for i, place := range s.Places {
		entry := ports.LegEntry{
			DestinationIndex: i,
			Name:             place.DisplayName,
			Address:          place.FormattedAddress,
			ScheduledTime:    place.Destination.ScheduledTime,
			Status:           s.StatusOf(i),
		}

		// completed legs belong to a superseded route
		if leg, ok := legFor(s, i); ok && i >= current {
			km := leg.DistanceKm()
			entry.Distance = geo.FormatDistance(&km)
			entry.Duration = geo.FormatDuration(leg.DurationSeconds())
			entry.Steps = stepEntries(leg.Steps, i == current, s.CurrentStepIndex)
		}
		view.Legs = append(view.Legs, entry)
	}
	return view
}

func legFor(s State, dest int) (trip.Leg, bool) {
	if s.Route == nil {
		return trip.Leg{}, false
	}
	i := dest - s.RouteBase
	if i < 0 || i >= len(s.Route.Legs) {
		return trip.Leg{}, false
	}
	return s.Route.Legs[i], true
}

func stepEntries(steps []trip.Step, isCurrentLeg bool, currentStep int) []ports.StepEntry {
	entries := make([]ports.StepEntry, 0, len(steps))
	for i, step := range steps {
		status := ports.StatusUpcoming
		if isCurrentLeg {
			switch {
			case i < currentStep:
				status = ports.StatusCompleted
			case i == currentStep:
				status = ports.StatusCurrent
			}
		}
		km := float64(step.DistanceMeters) / 1000
		entries = append(entries, ports.StepEntry{
			Index:       i,
			Status:      status,
			Instruction: maneuver.Classify(step.NavigationInstruction.Maneuver),
			Text:        step.NavigationInstruction.Instructions,
			Distance:    geo.FormatDistance(&km),
		})
	}
	return entries
}
