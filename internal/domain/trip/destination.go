package trip

import (
	"errors"
	"strings"

	"trip-tracker/internal/domain/geo"
)

var ErrEmptyKeyword = errors.New("destination keyword is required")

// Destination is one stop of the itinerary as the traveler entered it.
type Destination struct {
	Keyword       string `json:"keyword" validate:"required"`
	ScheduledTime string `json:"scheduled_time,omitempty"`
}

// Validate checks that the destination can be searched for.
func (d Destination) Validate() error {
	if strings.TrimSpace(d.Keyword) == "" {
		return ErrEmptyKeyword
	}
	return nil
}

// PlaceDestination is a Destination resolved to a concrete place.
// Completed-stop indices refer to positions in the resolved list.
type PlaceDestination struct {
	Destination      Destination    `json:"destination"`
	Location         geo.Coordinate `json:"location"`
	DisplayName      string         `json:"display_name"`
	FormattedAddress string         `json:"formatted_address"`
}

// Locations returns the coordinates of places in order.
func Locations(places []PlaceDestination) []geo.Coordinate {
	out := make([]geo.Coordinate, len(places))
	for i, p := range places {
		out[i] = p.Location
	}
	return out
}
