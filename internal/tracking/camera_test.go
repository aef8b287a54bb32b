package tracking

import (
	"testing"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/ports"
)

func TestCamera_FollowModes(t *testing.T) {
	heading := 90.0
	fix := &geo.Fix{Coordinate: startPoint, HeadingDegrees: &heading}

	tests := []struct {
		name   string
		cycles int
		check  func(t *testing.T, cmd *ports.CameraCommand)
	}{
		{
			name:   "off fits location and destination once",
			cycles: 0,
			check: func(t *testing.T, cmd *ports.CameraCommand) {
				if cmd == nil || cmd.Kind != ports.CameraFit || cmd.Bounds == nil {
					t.Fatalf("camera = %+v, want fit", cmd)
				}
				b := cmd.Bounds
				for _, p := range []geo.Coordinate{startPoint, museum} {
					if p.Latitude < b.SouthWest.Latitude || p.Latitude > b.NorthEast.Latitude ||
						p.Longitude < b.SouthWest.Longitude || p.Longitude > b.NorthEast.Longitude {
						t.Errorf("%v outside fitted bounds %+v", p, b)
					}
				}
			},
		},
		{
			name:   "center",
			cycles: 1,
			check: func(t *testing.T, cmd *ports.CameraCommand) {
				if cmd.Kind != ports.CameraAnimate || *cmd.Center != startPoint || cmd.Zoom != centerZoom || cmd.Pitch != 0 || cmd.Heading != 0 {
					t.Errorf("camera = %+v", cmd)
				}
			},
		},
		{
			name:   "forward looks ahead along heading",
			cycles: 2,
			check: func(t *testing.T, cmd *ports.CameraCommand) {
				if cmd.Kind != ports.CameraAnimate || cmd.Pitch != forwardPitch || cmd.Heading != heading {
					t.Fatalf("camera = %+v", cmd)
				}
				if want := geo.ForwardPosition(startPoint, heading); *cmd.Center != want {
					t.Errorf("center = %v, want %v", *cmd.Center, want)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := newCamera()
			for i := 0; i < tt.cycles; i++ {
				cam.cycle()
			}
			cam.follow(fix, []geo.Coordinate{museum})
			tt.check(t, cam.last)
		})
	}
}

func TestCamera_OffFitsOnlyOnce(t *testing.T) {
	cam := newCamera()
	fix := &geo.Fix{Coordinate: startPoint}

	cam.follow(fix, []geo.Coordinate{museum})
	first := cam.last.Seq
	cam.follow(fix, []geo.Coordinate{museum})
	if cam.last.Seq != first {
		t.Error("off mode must not keep refitting")
	}

	// off -> center -> forward -> off re-arms the one-shot fit
	cam.cycle()
	cam.cycle()
	cam.cycle()
	if cam.focus != trip.FocusOff {
		t.Fatalf("focus = %s, want off", cam.focus)
	}
	cam.follow(fix, []geo.Coordinate{museum})
	if cam.last.Kind != ports.CameraFit || cam.last.Seq == first {
		t.Errorf("re-entering off should fit again, got %+v", cam.last)
	}
}

func TestCamera_Gesture(t *testing.T) {
	fix := &geo.Fix{Coordinate: startPoint}

	t.Run("ignored while converging", func(t *testing.T) {
		cam := newCamera()
		cam.cycle()
		if cam.gesture() || cam.focus != trip.FocusCenter {
			t.Errorf("gesture before first center should be ignored, focus = %s", cam.focus)
		}
	})

	t.Run("forces off after centering", func(t *testing.T) {
		cam := newCamera()
		cam.cycle()
		cam.follow(fix, nil)
		if !cam.gesture() || cam.focus != trip.FocusOff {
			t.Fatalf("gesture should force off, focus = %s", cam.focus)
		}
		seq := cam.last.Seq
		cam.follow(fix, []geo.Coordinate{museum})
		if cam.last.Seq != seq {
			t.Error("the map placed by the user must not be refitted")
		}
	})

	t.Run("no-op when already off", func(t *testing.T) {
		cam := newCamera()
		if cam.gesture() {
			t.Error("gesture in off mode should not report a change")
		}
	})
}
