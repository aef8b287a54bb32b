package tracking

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"trip-tracker/internal/domain/geo"
)

// FeatureCollection renders the map projection of s as GeoJSON: one Point per
// marker and one LineString per polyline, with the view fields as properties.
func FeatureCollection(s State) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, m := range Markers(s) {
		f := geojson.NewFeature(toPoint(m.Coordinate))
		f.ID = m.ID
		f.Properties["kind"] = string(m.Kind)
		f.Properties["index"] = m.Index
		f.Properties["title"] = m.Title
		if m.Subtitle != "" {
			f.Properties["subtitle"] = m.Subtitle
		}
		if m.Status != "" {
			f.Properties["status"] = string(m.Status)
		}
		f.Properties["dimmed"] = m.Dimmed
		fc.Append(f)
	}

	for _, p := range Polylines(s) {
		line := make(orb.LineString, 0, len(p.Coordinates))
		for _, c := range p.Coordinates {
			line = append(line, toPoint(c))
		}
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route_leg"
		f.Properties["leg_index"] = p.LegIndex
		f.Properties["destination_index"] = p.DestinationIndex
		f.Properties["stroke"] = p.Color
		f.Properties["status"] = string(p.Status)
		f.Properties["dimmed"] = p.Dimmed
		fc.Append(f)
	}

	return fc
}

func toPoint(c geo.Coordinate) orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}
