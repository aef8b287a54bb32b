package tracking

import (
	"github.com/paulmach/orb"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/ports"
)

const (
	centerZoom   = 17
	forwardZoom  = 18
	forwardPitch = 60
	// keeps fitted markers off the screen edge
	fitPaddingDeg = 0.002
)

// camera is the focus-mode sub-machine. hasCenteredOnce is cleared whenever
// focus returns to off through the cycle.
type camera struct {
	focus           trip.FocusMode
	hasCenteredOnce bool
	seq             uint64
	last            *ports.CameraCommand
}

func newCamera() camera {
	return camera{focus: trip.FocusOff}
}

// cycle advances off -> center -> forward -> off.
func (cam *camera) cycle() trip.FocusMode {
	cam.focus = cam.focus.Next()
	cam.hasCenteredOnce = false
	return cam.focus
}

// gesture handles a manual pan or zoom. It reports whether focus changed.
func (cam *camera) gesture() bool {
	if cam.focus == trip.FocusOff {
		return false
	}
	if !cam.hasCenteredOnce {
		// still converging on the first follow
		return false
	}
	cam.focus = trip.FocusOff
	// the user placed the map; do not fit over it
	cam.hasCenteredOnce = true
	return true
}

// follow emits the camera command for the current location, if any.
// fitTargets are the points the one-shot fit in off mode must include.
func (cam *camera) follow(fix *geo.Fix, fitTargets []geo.Coordinate) {
	if fix == nil {
		return
	}

	switch cam.focus {
	case trip.FocusCenter:
		cam.hasCenteredOnce = true
		center := fix.Coordinate
		cam.emit(ports.CameraCommand{Kind: ports.CameraAnimate, Center: &center, Zoom: centerZoom})
	case trip.FocusForward:
		cam.hasCenteredOnce = true
		heading := fix.Heading()
		ahead := geo.ForwardPosition(fix.Coordinate, heading)
		cam.emit(ports.CameraCommand{Kind: ports.CameraAnimate, Center: &ahead, Zoom: forwardZoom, Pitch: forwardPitch, Heading: heading})
	default:
		if cam.hasCenteredOnce {
			return
		}
		cam.hasCenteredOnce = true
		cam.fit(append([]geo.Coordinate{fix.Coordinate}, fitTargets...))
	}
}

// fit emits a fit-to-bounds command over points.
func (cam *camera) fit(points []geo.Coordinate) {
	if len(points) == 0 {
		return
	}
	b := boundsOf(points)
	cam.emit(ports.CameraCommand{Kind: ports.CameraFit, Bounds: &b})
}

func (cam *camera) emit(cmd ports.CameraCommand) {
	cam.seq++
	cmd.Seq = cam.seq
	cam.last = &cmd
}

func boundsOf(points []geo.Coordinate) ports.Bounds {
	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		mp = append(mp, orb.Point{p.Longitude, p.Latitude})
	}
	bound := mp.Bound().Pad(fitPaddingDeg)
	return ports.Bounds{
		SouthWest: geo.Coordinate{Latitude: bound.Min.Lat(), Longitude: bound.Min.Lon()},
		NorthEast: geo.Coordinate{Latitude: bound.Max.Lat(), Longitude: bound.Max.Lon()},
	}
}
