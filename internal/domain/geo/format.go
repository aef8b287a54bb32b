package geo

import (
	"fmt"
	"math"
)

// Units holds the unit labels used when rendering distances and durations.
// Translating them is left to the presentation layer.
type Units struct {
	Meters     string
	Kilometers string
	Hours      string
	Minutes    string
	Seconds    string
	Unknown    string
}

// DefaultUnits are the labels used by FormatDistance and FormatDuration.
var DefaultUnits = Units{
	Meters:     "m",
	Kilometers: "km",
	Hours:      "h",
	Minutes:    "m",
	Seconds:    "s",
	Unknown:    "unknown",
}

// FormatDistance renders km with DefaultUnits.
func FormatDistance(km *float64) string { return DefaultUnits.FormatDistance(km) }

// FormatDuration renders seconds with DefaultUnits.
func FormatDuration(seconds *float64) string { return DefaultUnits.FormatDuration(seconds) }

// FormatDistance: nil -> "", below 1 km -> whole meters, otherwise kilometers with 2 decimals.
func (u Units) FormatDistance(km *float64) string {
	if km == nil {
		return ""
	}
	if *km < 1 {
		return fmt.Sprintf("%d%s", int(math.Round(*km*1000)), u.Meters)
	}
	return fmt.Sprintf("%.2f%s", *km, u.Kilometers)
}

// FormatDuration: nil or negative -> Unknown, below a minute -> seconds,
// below an hour -> minutes and seconds, otherwise hours and minutes.
func (u Units) FormatDuration(seconds *float64) string {
	if seconds == nil || *seconds < 0 || math.IsNaN(*seconds) {
		return u.Unknown
	}

	total := int(*seconds)
	switch {
	case total < 60:
		return fmt.Sprintf("%d%s", total, u.Seconds)
	case total < 3600:
		return fmt.Sprintf("%d%s %d%s", total/60, u.Minutes, total%60, u.Seconds)
	default:
		return fmt.Sprintf("%d%s %d%s", total/3600, u.Hours, (total%3600)/60, u.Minutes)
	}
}
