package tracking

import (
	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/domain/trip"
)

// stepIndex picks the step the traveler is on: walking the steps in order
// while accumulating their lengths, it selects the first step whose cumulative
// distance covers the straight-line distance from loc to that step's end.
// The result never goes below from, so progress along one route only moves forward.
func stepIndex(steps []trip.Step, loc geo.Coordinate, from int) int {
	if len(steps) == 0 {
		return 0
	}
	if from >= len(steps) {
		return len(steps) - 1
	}

	cumulative := 0.0
	for i, step := range steps {
		cumulative += float64(step.DistanceMeters)
		if i < from {
			continue
		}
		if cumulative >= geo.DistanceMeters(loc, step.EndLocation) {
			return i
		}
	}
	return from
}
