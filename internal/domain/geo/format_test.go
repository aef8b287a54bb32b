package geo

import "testing"

func ptr(v float64) *float64 { return &v }

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		name string
		km   *float64
		want string
	}{
		{name: "nil", km: nil, want: ""},
		{name: "zero", km: ptr(0), want: "0m"},
		{name: "just under a kilometer", km: ptr(0.999), want: "999m"},
		{name: "rounds meters", km: ptr(0.1234), want: "123m"},
		{name: "exactly a kilometer", km: ptr(1.0), want: "1.00km"},
		{name: "two decimals", km: ptr(12.3456), want: "12.35km"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDistance(tt.km); got != tt.want {
				t.Errorf("FormatDistance() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds *float64
		want    string
	}{
		{name: "nil", seconds: nil, want: "unknown"},
		{name: "negative", seconds: ptr(-1), want: "unknown"},
		{name: "seconds", seconds: ptr(45), want: "45s"},
		{name: "minutes and seconds", seconds: ptr(330), want: "5m 30s"},
		{name: "exactly one hour", seconds: ptr(3600), want: "1h 0m"},
		{name: "hours and minutes", seconds: ptr(8130), want: "2h 15m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.want {
				t.Errorf("FormatDuration() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnits_Custom(t *testing.T) {
	u := Units{Meters: " meters", Kilometers: " kilometers", Unknown: "?"}
	if got := u.FormatDistance(ptr(0.5)); got != "500 meters" {
		t.Errorf("FormatDistance() = %q", got)
	}
	if got := u.FormatDuration(nil); got != "?" {
		t.Errorf("FormatDuration() = %q", got)
	}
}
