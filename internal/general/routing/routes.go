package routing

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/ports"
)

var _ ports.RouteProvider = (*Client)(nil)

const routesFieldMask = "routes.distanceMeters,routes.duration,routes.polyline.encodedPolyline," +
	"routes.legs.distanceMeters,routes.legs.duration,routes.legs.polyline.encodedPolyline," +
	"routes.legs.steps.distanceMeters,routes.legs.steps.staticDuration," +
	"routes.legs.steps.startLocation,routes.legs.steps.endLocation,routes.legs.steps.navigationInstruction"

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type waypoint struct {
	Location struct {
		LatLng latLng `json:"latLng"`
	} `json:"location"`
}

func toWaypoint(c geo.Coordinate) waypoint {
	var w waypoint
	w.Location.LatLng = latLng{Latitude: c.Latitude, Longitude: c.Longitude}
	return w
}

type computeRoutesRequest struct {
	Origin                waypoint   `json:"origin"`
	Destination           waypoint   `json:"destination"`
	Intermediates         []waypoint `json:"intermediates,omitempty"`
	TravelMode            string     `json:"travelMode"`
	RoutingPreference     string     `json:"routingPreference,omitempty"`
	OptimizeWaypointOrder bool       `json:"optimizeWaypointOrder"`
	PolylineEncoding      string     `json:"polylineEncoding"`
	LanguageCode          string     `json:"languageCode,omitempty"`
}

type location struct {
	LatLng latLng `json:"latLng"`
}

type polyline struct {
	EncodedPolyline string `json:"encodedPolyline"`
}

type computeRoutesResponse struct {
	Routes []struct {
		DistanceMeters int      `json:"distanceMeters"`
		Duration       string   `json:"duration"`
		Polyline       polyline `json:"polyline"`
		Legs           []struct {
			DistanceMeters int      `json:"distanceMeters"`
			Duration       string   `json:"duration"`
			Polyline       polyline `json:"polyline"`
			Steps          []struct {
				DistanceMeters        int      `json:"distanceMeters"`
				StaticDuration        string   `json:"staticDuration"`
				StartLocation         location `json:"startLocation"`
				EndLocation           location `json:"endLocation"`
				NavigationInstruction struct {
					Maneuver     string `json:"maneuver"`
					Instructions string `json:"instructions"`
				} `json:"navigationInstruction"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// ComputeRoute requests a route from origin through stops in order, with
// waypoint optimization off so leg i always ends at stops[i].
func (client *Client) ComputeRoute(ctx context.Context, origin geo.Coordinate, stops []geo.Coordinate) (trip.RouteInfo, error) {
	if len(stops) == 0 {
		return trip.RouteInfo{}, &trip.RouteError{Reason: "no stops to route to"}
	}

	mode := strings.ToUpper(client.cfg.TravelMode)
	body := computeRoutesRequest{
		Origin:                toWaypoint(origin),
		Destination:           toWaypoint(stops[len(stops)-1]),
		TravelMode:            mode,
		OptimizeWaypointOrder: false,
		PolylineEncoding:      "ENCODED_POLYLINE",
		LanguageCode:          client.cfg.Language,
	}
	if mode == "DRIVE" || mode == "TWO_WHEELER" {
		body.RoutingPreference = "TRAFFIC_AWARE"
	}
	for _, s := range stops[:len(stops)-1] {
		body.Intermediates = append(body.Intermediates, toWaypoint(s))
	}

	var resp computeRoutesResponse
	err := client.do(ctx, "compute_routes", request{
		method:  http.MethodPost,
		url:     client.cfg.RoutesURL,
		headers: client.googHeaders(routesFieldMask),
		body:    body,
	}, &resp)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return trip.RouteInfo{}, err
		}
		return trip.RouteInfo{}, &trip.RouteError{Reason: "directions request failed", Err: err}
	}

	if len(resp.Routes) == 0 {
		return trip.RouteInfo{}, &trip.RouteError{Reason: "no route found"}
	}
	r := resp.Routes[0]
	if len(r.Legs) != len(stops) {
		return trip.RouteInfo{}, &trip.RouteError{Reason: "route legs do not match stops"}
	}

	info := trip.RouteInfo{
		DistanceMeters:  r.DistanceMeters,
		Duration:        r.Duration,
		EncodedPolyline: r.Polyline.EncodedPolyline,
		Legs:            make([]trip.Leg, 0, len(r.Legs)),
	}
	for _, l := range r.Legs {
		leg := trip.Leg{
			DistanceMeters:  l.DistanceMeters,
			Duration:        l.Duration,
			EncodedPolyline: l.Polyline.EncodedPolyline,
			Steps:           make([]trip.Step, 0, len(l.Steps)),
		}
		for _, s := range l.Steps {
			leg.Steps = append(leg.Steps, trip.Step{
				DistanceMeters: s.DistanceMeters,
				Duration:       s.StaticDuration,
				StartLocation:  geo.Coordinate{Latitude: s.StartLocation.LatLng.Latitude, Longitude: s.StartLocation.LatLng.Longitude},
				EndLocation:    geo.Coordinate{Latitude: s.EndLocation.LatLng.Latitude, Longitude: s.EndLocation.LatLng.Longitude},
				NavigationInstruction: trip.NavigationInstruction{
					Maneuver:     s.NavigationInstruction.Maneuver,
					Instructions: s.NavigationInstruction.Instructions,
				},
			})
		}
		info.Legs = append(info.Legs, leg)
	}
	return info, nil
}
