package tracking

import (
	"fmt"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/domain/maneuver"
	"trip-tracker/internal/ports"
)

// Markers derives the map markers from s. With ShowAll unset only
// destinations up to and including the current one are shown; with it set
// every destination is shown and completed ones are dimmed.
func Markers(s State) []ports.MarkerView {
	markers := make([]ports.MarkerView, 0, len(s.Places)+1)

	if s.Location != nil {
		title := s.Address
		if title == "" {
			title = "Current location"
		}
		markers = append(markers, ports.MarkerView{
			ID:         "user",
			Kind:       ports.MarkerUser,
			Index:      -1,
			Coordinate: s.Location.Coordinate,
			Title:      title,
			Heading:    s.Location.HeadingDegrees,
		})
	}

	current := s.CurrentIndex()
	for i, place := range s.Places {
		if !s.ShowAll && i > current {
			break
		}
		status := s.StatusOf(i)
		markers = append(markers, ports.MarkerView{
			ID:         fmt.Sprintf("destination-%d", i),
			Kind:       ports.MarkerDestination,
			Index:      i,
			Coordinate: place.Location,
			Title:      place.DisplayName,
			Subtitle:   place.FormattedAddress,
			Status:     status,
			Dimmed:     s.ShowAll && status == ports.StatusCompleted,
		})
	}
	return markers
}

// Polylines derives one drawable line per leg of the current route. The
// current leg is trimmed to start at the traveler. Legs to completed stops
// and upcoming legs are only drawn with ShowAll; completed ones dimmed.
func Polylines(s State) []ports.PolylineView {
	lines := make([]ports.PolylineView, 0, len(s.Polylines))
	current := s.CurrentIndex()

	for i, seg := range s.Polylines {
		dest := s.RouteBase + i
		status := s.StatusOf(dest)
		if !s.ShowAll && dest != current {
			continue
		}

		coords := seg.Coordinates
		if dest == current && s.Location != nil {
			coords = trimToLocation(coords, s.Location.Coordinate)
		} else {
			coords = append([]geo.Coordinate(nil), coords...)
		}

		lines = append(lines, ports.PolylineView{
			LegIndex:         i,
			DestinationIndex: dest,
			Coordinates:      coords,
			Color:            seg.Color,
			Status:           status,
			Dimmed:           status == ports.StatusCompleted,
		})
	}
	return lines
}

// trimToLocation drops the part of path already behind loc.
func trimToLocation(path []geo.Coordinate, loc geo.Coordinate) []geo.Coordinate {
	nearest := geo.NearestIndex(path, loc)
	if nearest < 0 {
		return []geo.Coordinate{}
	}
	out := make([]geo.Coordinate, 0, len(path)-nearest+1)
	out = append(out, loc)
	rest := path[nearest:]
	// the nearest vertex is replaced by loc unless it is the leg end
	if len(rest) > 1 {
		rest = rest[1:]
	}
	return append(out, rest...)
}

// Panel derives the floating next-maneuver panel for the current step.
func Panel(s State) *ports.InstructionPanel {
	leg, _, ok := s.CurrentLeg()
	if !ok || len(leg.Steps) == 0 {
		return nil
	}
	idx := s.CurrentStepIndex
	if idx < 0 || idx >= len(leg.Steps) {
		return nil
	}
	step := leg.Steps[idx]
	km := float64(step.DistanceMeters) / 1000

	return &ports.InstructionPanel{
		Instruction: maneuver.Classify(step.NavigationInstruction.Maneuver),
		Text:        step.NavigationInstruction.Instructions,
		Distance:    geo.FormatDistance(&km),
	}
}

// MapView assembles the complete renderable map state.
func MapView(s State) ports.MapView {
	return ports.MapView{
		TripID:                     s.TripID,
		Version:                    s.Version,
		Markers:                    Markers(s),
		Polylines:                  Polylines(s),
		Camera:                     s.Camera,
		Panel:                      Panel(s),
		Focus:                      s.Focus,
		ShowAll:                    s.ShowAll,
		Address:                    s.Address,
		CurrentDestinationDistance: geo.FormatDistance(s.CurrentDestinationDistanceKm),
		Finished:                   s.Finished(),
		Notices:                    s.Notices,
	}
}
