package locationsimulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/general/config"
	"trip-tracker/internal/general/contracts"
	"trip-tracker/internal/general/logger"
	"trip-tracker/internal/general/rabbitmq"
	"trip-tracker/internal/general/routing"
	"trip-tracker/internal/ports"
)

// Options describe one simulated drive. From and To are "lat,lng" pairs or
// place search keywords.
type Options struct {
	ConfigPath string
	TripID     string
	From       string
	To         string
	// Deny publishes a single permission denial instead of a drive.
	Deny bool
}

func Run(ctx context.Context, opts Options) error {
	logger := logger.New(contracts.ProducerLocationSimulator)
	ctx = logger.WithTripID(logger.WithRequestID(ctx, "startup-001"), opts.TripID)

	cfg, err := config.LoadFromFile(opts.ConfigPath)
	if err != nil {
		logger.Error(ctx, "config_load_failed", "Failed to load config", err, map[string]any{"path": opts.ConfigPath})
		return err
	}

	rmq, err := rabbitmq.ConnectRabbitMQ(ctx, cfg.RabbitMQ, logger)
	if err != nil {
		logger.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
		return err
	}
	defer rmq.Close()
	pub := rabbitmq.NewEventPublisher(rmq, contracts.ProducerLocationSimulator)

	if opts.Deny {
		return pub.PublishLocation(ctx, contracts.LocationUpdateMessage{
			TripID:           opts.TripID,
			PermissionDenied: true,
			Timestamp:        time.Now().UTC(),
		})
	}

	routes := routing.NewClient(cfg.Routing, nil, logger)
	from, err := resolve(ctx, routes, opts.From)
	if err != nil {
		return fmt.Errorf("resolve --from: %w", err)
	}
	to, err := resolve(ctx, routes, opts.To)
	if err != nil {
		return fmt.Errorf("resolve --to: %w", err)
	}

	route, err := routes.ComputeRoute(ctx, from, []geo.Coordinate{to})
	if err != nil {
		logger.Error(ctx, "route_fetch_failed", "Failed to fetch route to simulate", err, nil)
		return err
	}
	path, err := trace(route)
	if err != nil {
		return err
	}

	frequency := cfg.Simulator.Frequency()
	logger.Info(ctx, "simulation_started", "Publishing simulated fixes",
		map[string]any{"points": len(path), "frequency": frequency.String()})

	return drive(ctx, path, frequency, func(ctx context.Context, msg contracts.LocationUpdateMessage) error {
		msg.TripID = opts.TripID
		return pub.PublishLocation(ctx, msg)
	})
}

// resolve parses "lat,lng" or searches for a place.
func resolve(ctx context.Context, places ports.PlaceSearcher, in string) (geo.Coordinate, error) {
	if c, err := geo.ParseCoordinate(in); err == nil {
		return c, nil
	}
	place, err := places.SearchPlace(ctx, in)
	if err != nil {
		return geo.Coordinate{}, err
	}
	return place.Location, nil
}

// trace joins the decoded leg polylines into one path.
func trace(route trip.RouteInfo) ([]geo.Coordinate, error) {
	var path []geo.Coordinate
	for i, leg := range route.Legs {
		points, err := geo.DecodePolyline(leg.EncodedPolyline)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}
		if len(path) > 0 && len(points) > 0 && path[len(path)-1] == points[0] {
			points = points[1:]
		}
		path = append(path, points...)
	}
	if len(path) == 0 {
		return nil, errors.New("route has no geometry")
	}
	return path, nil
}

// fixes turns a path into timed position reports, heading towards the next
// point and moving at the speed needed to cover each hop in one tick.
func fixes(path []geo.Coordinate, start time.Time, tick time.Duration) []contracts.LocationUpdateMessage {
	out := make([]contracts.LocationUpdateMessage, len(path))
	accuracy := 5.0
	for i, c := range path {
		msg := contracts.LocationUpdateMessage{
			Location:       contracts.GeoPoint{Lat: c.Latitude, Lng: c.Longitude},
			AccuracyMeters: &accuracy,
			Timestamp:      start.Add(time.Duration(i) * tick),
		}
		if i+1 < len(path) {
			heading := geo.Bearing(c, path[i+1])
			speed := geo.DistanceKm(c, path[i+1]) / tick.Hours()
			msg.HeadingDegrees = &heading
			msg.SpeedKMH = &speed
		} else if i > 0 {
			msg.HeadingDegrees = out[i-1].HeadingDegrees
		}
		out[i] = msg
	}
	return out
}

// drive publishes one fix per tick until the path ends or ctx is done.
func drive(ctx context.Context, path []geo.Coordinate, tick time.Duration, publish func(context.Context, contracts.LocationUpdateMessage) error) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for i, msg := range fixes(path, time.Now().UTC(), tick) {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
		if err := publish(ctx, msg); err != nil {
			return fmt.Errorf("publish fix %d: %w", i, err)
		}
	}
	return nil
}
