package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"trip-tracker/internal/general/contracts"
	"trip-tracker/internal/ports"
)

var ErrUnknownFrame = errors.New("unknown message type")

// TripView is the data of a trip_view frame.
type TripView struct {
	Map   ports.MapView         `json:"map"`
	Route ports.RouteDetailView `json:"route"`
}

type tripViewFrame struct {
	Type string   `json:"type"`
	Data TripView `json:"data"`
}

func (ws *WebSocket) pushView(ctx context.Context, conn *websocket.Conn, tripID string) error {
	mapView, err := ws.svc.Map(ctx, tripID)
	if err != nil {
		return err
	}
	route, err := ws.svc.RouteDetail(ctx, tripID)
	if err != nil {
		return err
	}
	return ws.writeJSON(conn, tripViewFrame{
		Type: contracts.WSTypeTripView,
		Data: TripView{Map: mapView, Route: route},
	})
}

// handleFrame applies one client frame to the session of tripID.
func (ws *WebSocket) handleFrame(ctx context.Context, tripID string, payload []byte) error {
	var msg contracts.WSEnvelope
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("bad json: %w", err)
	}

	switch msg.Type {
	case contracts.WSTypeLocation:
		var loc contracts.WSLocation
		if err := json.Unmarshal(msg.Data, &loc); err != nil {
			return fmt.Errorf("bad location: %w", err)
		}
		in := ports.PushLocationInput{
			TripID:           tripID,
			Latitude:         loc.Latitude,
			Longitude:        loc.Longitude,
			AccuracyMeters:   loc.AccuracyMeters,
			SpeedKMH:         loc.SpeedKMH,
			HeadingDegrees:   loc.HeadingDegrees,
			PermissionDenied: loc.PermissionDenied,
		}
		if loc.Timestamp != nil {
			in.RecordedAt = loc.Timestamp.UTC()
		} else {
			in.RecordedAt = time.Now().UTC()
		}
		return ws.svc.PushLocation(ctx, in)

	case contracts.WSTypeFocusToggle:
		_, err := ws.svc.CycleFocus(ctx, tripID)
		return err

	case contracts.WSTypeShowAll:
		var body contracts.WSShowAll
		if err := json.Unmarshal(msg.Data, &body); err != nil {
			return fmt.Errorf("bad show_all: %w", err)
		}
		return ws.svc.SetShowAll(ctx, tripID, body.ShowAll)

	case contracts.WSTypeGesture:
		_, err := ws.svc.Gesture(ctx, tripID)
		return err

	default:
		return fmt.Errorf("%w: %q", ErrUnknownFrame, msg.Type)
	}
}
