package tracking

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/general/contracts"
	"trip-tracker/internal/general/logger"
	"trip-tracker/internal/ports"
)

var (
	ErrClosed         = errors.New("tracking session closed")
	ErrAlreadyStarted = errors.New("tracking session already started")
)

// Config holds the tunables of a session.
type Config struct {
	ArrivalRadiusKm     float64
	ArrivalCooldown     time.Duration
	RerouteThresholdDeg float64
	GeocodeInterval     time.Duration
	// ResolveConcurrency bounds parallel place searches at start.
	ResolveConcurrency int
}

// DefaultConfig is a 100 m arrival radius, 5 s cooldown and ~11 m reroute threshold.
func DefaultConfig() Config {
	return Config{
		ArrivalRadiusKm:     0.1,
		ArrivalCooldown:     5 * time.Second,
		RerouteThresholdDeg: 0.0001,
		GeocodeInterval:     1500 * time.Millisecond,
		ResolveConcurrency:  4,
	}
}

// Deps are the collaborators of a session. Geocoder, Events and Stream may be nil.
type Deps struct {
	Places   ports.PlaceSearcher
	Routes   ports.RouteProvider
	Geocoder ports.Geocoder
	Stream   ports.LocationStream
	Store    *CompletedStore
	Events   ports.TripEventPublisher
	Logger   *logger.Logger
	Clock    Clock
}

// Controller is the tracking state machine of one trip. All state lives
// behind mu; route fetches, persistence and event publishing run in
// goroutines and only take mu to apply their results.
type Controller struct {
	tripID string
	cfg    Config
	deps   Deps
	logCtx context.Context

	ctx    context.Context
	cancel context.CancelFunc

	pumps   sync.WaitGroup // location pump
	fetches sync.WaitGroup // route fetches
	bg      sync.WaitGroup // persistence and events

	address *addressTracker

	mu          sync.Mutex
	st          State
	cam         camera
	started     bool
	closed      bool
	unsubscribe func()
	cooldown    Timer

	fetchSeq        uint64
	lastFetchOrigin *geo.Coordinate
	placesVersion   int
	routedVersion   int
	lastFixAt       time.Time

	watchers map[int]chan struct{}
	nextW    int
}

// NewController builds an unstarted controller for tripID.
func NewController(tripID string, cfg Config, deps Deps) *Controller {
	if deps.Clock == nil {
		deps.Clock = SystemClock()
	}
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	if cfg.ResolveConcurrency <= 0 {
		cfg.ResolveConcurrency = 4
	}

	ctx, cancel := context.WithCancel(context.Background())
	ctrl := &Controller{
		tripID:   tripID,
		cfg:      cfg,
		deps:     deps,
		logCtx:   deps.Logger.WithTripID(context.Background(), tripID),
		ctx:      ctx,
		cancel:   cancel,
		cam:      newCamera(),
		watchers: make(map[int]chan struct{}),
		st: State{
			TripID:    tripID,
			Completed: []int{},
			Focus:     trip.FocusOff,
			Lock:      trip.Idle(),
		},
	}
	ctrl.address = newAddressTracker(ctx, deps.Geocoder, cfg.GeocodeInterval, deps.Clock, deps.Logger, ctrl.setAddress)
	return ctrl
}

// TripID returns the trip this controller tracks.
func (ctrl *Controller) TripID() string { return ctrl.tripID }

// Start resolves destinations, restores completed stops and subscribes to the
// location stream. Destinations that cannot be resolved are dropped and
// returned by keyword; only losing all of them is an error.
func (ctrl *Controller) Start(ctx context.Context, destinations []trip.Destination) (dropped []string, err error) {
	ctrl.mu.Lock()
	if ctrl.closed {
		ctrl.mu.Unlock()
		return nil, ErrClosed
	}
	if ctrl.started {
		ctrl.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	ctrl.started = true
	ctrl.mu.Unlock()

	places, dropped := ctrl.resolve(ctx, destinations)
	if len(places) == 0 && len(destinations) > 0 {
		return dropped, trip.ErrNoDestinations
	}

	completed := []int{}
	if ctrl.deps.Store != nil {
		completed = ctrl.deps.Store.Load(ctx, ctrl.tripID)
	}
	if len(completed) > len(places) {
		ctrl.deps.Logger.Info(ctrl.logCtx, "completed_truncated", "Persisted progress exceeds resolved destinations",
			map[string]any{"completed": len(completed), "places": len(places)})
		completed = completed[:len(places)]
	}

	var updates <-chan ports.LocationUpdate
	var unsubscribe func()
	if ctrl.deps.Stream != nil {
		updates, unsubscribe, err = ctrl.deps.Stream.Subscribe(ctrl.ctx, ctrl.tripID)
		if err != nil {
			return dropped, fmt.Errorf("subscribe location stream: %w", err)
		}
	}

	ctrl.mu.Lock()
	if ctrl.closed {
		ctrl.mu.Unlock()
		if unsubscribe != nil {
			unsubscribe()
		}
		return dropped, ErrClosed
	}
	ctrl.st.Places = places
	ctrl.st.Completed = completed
	ctrl.placesVersion++
	ctrl.unsubscribe = unsubscribe
	for _, keyword := range dropped {
		ctrl.noticeLocked(trip.NoticePlaceNotFound, fmt.Sprintf("Could not find %q; it was removed from the itinerary", keyword))
	}
	ctrl.notifyLocked()
	ctrl.mu.Unlock()

	if updates != nil {
		ctrl.pumps.Add(1)
		go ctrl.pump(updates)
	}

	ctrl.deps.Logger.Info(ctrl.logCtx, "tracking_started", "Tracking session started",
		map[string]any{"places": len(places), "dropped": len(dropped), "completed": len(completed)})
	return dropped, nil
}

// resolve searches every destination concurrently. A failed search drops only that destination.
func (ctrl *Controller) resolve(ctx context.Context, destinations []trip.Destination) ([]trip.PlaceDestination, []string) {
	results := make([]*trip.PlaceDestination, len(destinations))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(ctrl.cfg.ResolveConcurrency)
	for i, dest := range destinations {
		group.Go(func() error {
			if err := dest.Validate(); err != nil {
				ctrl.logDropped(dest, i, err)
				return nil
			}
			place, err := ctrl.deps.Places.SearchPlace(gctx, dest.Keyword)
			if err != nil {
				ctrl.logDropped(dest, i, err)
				return nil
			}
			place.Destination = dest
			results[i] = &place
			return nil
		})
	}
	_ = group.Wait()

	places := make([]trip.PlaceDestination, 0, len(destinations))
	var dropped []string
	for i, r := range results {
		if r == nil {
			dropped = append(dropped, destinations[i].Keyword)
			continue
		}
		places = append(places, *r)
	}
	return places, dropped
}

func (ctrl *Controller) logDropped(dest trip.Destination, index int, err error) {
	ctrl.deps.Logger.Error(ctrl.logCtx, "destination_dropped", "Destination could not be resolved and was dropped", err,
		map[string]any{"keyword": dest.Keyword, "index": index})
}

func (ctrl *Controller) pump(updates <-chan ports.LocationUpdate) {
	defer ctrl.pumps.Done()
	for {
		select {
		case <-ctrl.ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			ctrl.HandleLocation(ctrl.ctx, upd)
		}
	}
}

// Close releases the subscription and timers and waits for background work.
func (ctrl *Controller) Close() {
	ctrl.mu.Lock()
	if ctrl.closed {
		ctrl.mu.Unlock()
		return
	}
	ctrl.closed = true
	unsubscribe := ctrl.unsubscribe
	ctrl.unsubscribe = nil
	if ctrl.cooldown != nil {
		ctrl.cooldown.Stop()
		ctrl.cooldown = nil
	}
	ctrl.mu.Unlock()

	ctrl.cancel()
	if unsubscribe != nil {
		unsubscribe()
	}
	ctrl.address.close()
	ctrl.pumps.Wait()
	ctrl.fetches.Wait()
	ctrl.bg.Wait()

	ctrl.mu.Lock()
	for id, ch := range ctrl.watchers {
		close(ch)
		delete(ctrl.watchers, id)
	}
	ctrl.mu.Unlock()

	ctrl.deps.Logger.Info(ctrl.logCtx, "tracking_closed", "Tracking session closed", nil)
}

// HandleLocation applies one location-stream event.
func (ctrl *Controller) HandleLocation(ctx context.Context, update ports.LocationUpdate) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if ctrl.closed {
		return
	}

	if update.Err != nil {
		if errors.Is(update.Err, trip.ErrPermissionDenied) {
			if !ctrl.st.PermissionDenied {
				ctrl.st.PermissionDenied = true
				ctrl.noticeLocked(trip.NoticePermissionDenied, "Location permission was denied; live tracking is unavailable")
				ctrl.deps.Logger.Error(ctrl.logCtx, "location_permission_denied", "Location permission denied", update.Err, nil)
				ctrl.notifyLocked()
			}
			return
		}
		ctrl.deps.Logger.Error(ctrl.logCtx, "location_stream_error", "Location stream reported an error", update.Err, nil)
		return
	}

	// a denied session never initialises its location
	if ctrl.st.PermissionDenied {
		return
	}

	fix := update.Fix
	if err := fix.Validate(); err != nil {
		ctrl.deps.Logger.Debug(ctrl.logCtx, "location_rejected", "Invalid fix dropped",
			map[string]any{"reason": err.Error()})
		return
	}
	if !ctrl.lastFixAt.IsZero() && fix.RecordedAt.Before(ctrl.lastFixAt) {
		ctrl.deps.Logger.Debug(ctrl.logCtx, "location_stale", "Out-of-order fix dropped",
			map[string]any{"recorded_at": fix.RecordedAt, "last": ctrl.lastFixAt})
		return
	}
	ctrl.lastFixAt = fix.RecordedAt
	ctrl.st.Location = &fix

	ctrl.address.submit(fix.Coordinate)

	ctrl.evaluateLocked()
	ctrl.maybeFetchLocked("location")
	ctrl.cam.follow(ctrl.st.Location, ctrl.currentTargetLocked())

	ctrl.notifyLocked()
}

// evaluateLocked runs arrival detection and step tracking for the current location.
func (ctrl *Controller) evaluateLocked() {
	// ticks that arrive while locked are dropped, not queued
	if ctrl.st.Lock.Suppressed() {
		return
	}

	current, ok := ctrl.st.CurrentDestination()
	if !ok || ctrl.st.Location == nil {
		return
	}

	loc := ctrl.st.Location.Coordinate
	distance := geo.DistanceKm(loc, current.Location)
	ctrl.st.CurrentDestinationDistanceKm = &distance

	if distance <= ctrl.cfg.ArrivalRadiusKm {
		ctrl.arriveLocked(current, distance)
		return
	}

	if leg, _, ok := ctrl.st.CurrentLeg(); ok {
		ctrl.st.CurrentStepIndex = stepIndex(leg.Steps, loc, ctrl.st.CurrentStepIndex)
	}
}

func (ctrl *Controller) arriveLocked(current trip.PlaceDestination, distance float64) {
	now := ctrl.deps.Clock.Now()
	lock, err := ctrl.st.Lock.BeginArrival(now)
	if err != nil {
		return
	}
	ctrl.st.Lock = lock

	index := len(ctrl.st.Completed)
	completed := make([]int, index, index+1)
	copy(completed, ctrl.st.Completed)
	ctrl.st.Completed = append(completed, index)
	ctrl.st.CurrentStepIndex = 0

	remaining := len(ctrl.st.Places) - len(ctrl.st.Completed)
	if next, ok := ctrl.st.CurrentDestination(); ok {
		d := geo.DistanceKm(ctrl.st.Location.Coordinate, next.Location)
		ctrl.st.CurrentDestinationDistanceKm = &d
	} else {
		ctrl.st.CurrentDestinationDistanceKm = nil
	}

	ctrl.deps.Logger.Info(ctrl.logCtx, "arrival_detected", "Traveler arrived at destination",
		map[string]any{"index": index, "name": current.DisplayName, "distance_m": distance * 1000, "remaining": remaining})

	ctrl.persistLocked()
	ctrl.publishArrivalLocked(index, current, remaining, now)

	if remaining > 0 {
		ctrl.startFetchLocked("arrival")
	}

	ctrl.cooldown = ctrl.deps.Clock.AfterFunc(ctrl.cfg.ArrivalCooldown, ctrl.endCooldown)
}

func (ctrl *Controller) endCooldown() {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if ctrl.closed {
		return
	}
	ctrl.cooldown = nil
	ctrl.st.Lock = ctrl.st.Lock.EndCooldown()
	ctrl.notifyLocked()
}

// persistLocked saves the completed indices without blocking the caller.
// A failed write keeps the in-memory progress and surfaces a notice.
func (ctrl *Controller) persistLocked() {
	if ctrl.deps.Store == nil {
		return
	}
	indices := append([]int(nil), ctrl.st.Completed...)

	ctrl.bg.Add(1)
	go func() {
		defer ctrl.bg.Done()
		ctx, cancel := context.WithTimeout(ctrl.logCtx, 5*time.Second)
		defer cancel()

		if err := ctrl.deps.Store.Save(ctx, ctrl.tripID, indices); err != nil {
			ctrl.deps.Logger.Error(ctrl.logCtx, "completed_save_failed", "Failed to persist completed destinations", err,
				map[string]any{"completed": indices})
			ctrl.mu.Lock()
			ctrl.noticeLocked(trip.NoticePersistenceError, "Progress could not be saved; it is kept for this session only")
			ctrl.notifyLocked()
			ctrl.mu.Unlock()
		}
	}()
}

func (ctrl *Controller) publishArrivalLocked(index int, place trip.PlaceDestination, remaining int, at time.Time) {
	if ctrl.deps.Events == nil {
		return
	}
	msg := contracts.ArrivalMessage{
		TripID:           ctrl.tripID,
		DestinationIndex: index,
		DisplayName:      place.DisplayName,
		Location:         contracts.GeoPoint{Lat: place.Location.Latitude, Lng: place.Location.Longitude, Address: place.FormattedAddress},
		Remaining:        remaining,
		ArrivedAt:        at,
		Envelope:         contracts.Envelope{Producer: contracts.ProducerTrackingService, SentAt: at},
	}

	ctrl.bg.Add(1)
	go func() {
		defer ctrl.bg.Done()
		if err := ctrl.deps.Events.PublishArrival(ctrl.logCtx, msg); err != nil {
			ctrl.deps.Logger.Error(ctrl.logCtx, "arrival_publish_failed", "Failed to publish arrival event", err,
				map[string]any{"index": index})
		}
	}()
}

// maybeFetchLocked requests a route when none was requested yet, the traveler
// moved past the reroute threshold since the last request, or the
// destination set changed.
func (ctrl *Controller) maybeFetchLocked(reason string) {
	if ctrl.st.Location == nil || ctrl.st.Lock.InFlight() {
		return
	}
	if ctrl.st.CurrentIndex() >= len(ctrl.st.Places) {
		return
	}

	loc := ctrl.st.Location.Coordinate
	switch {
	case ctrl.lastFetchOrigin == nil:
		reason = "initial"
	case ctrl.placesVersion != ctrl.routedVersion:
		reason = "destinations_changed"
	case loc.MovedMoreThan(*ctrl.lastFetchOrigin, ctrl.cfg.RerouteThresholdDeg):
	default:
		return
	}
	ctrl.startFetchLocked(reason)
}

func (ctrl *Controller) startFetchLocked(reason string) {
	lock, err := ctrl.st.Lock.BeginFetch()
	if err != nil {
		return
	}
	ctrl.st.Lock = lock

	ctrl.fetchSeq++
	seq := ctrl.fetchSeq
	origin := ctrl.st.Location.Coordinate
	base := ctrl.st.CurrentIndex()
	stops := trip.Locations(ctrl.st.Places[base:])

	ctrl.lastFetchOrigin = &origin
	ctrl.routedVersion = ctrl.placesVersion

	ctrl.deps.Logger.Debug(ctrl.logCtx, "route_fetch_started", "Requesting route",
		map[string]any{"seq": seq, "reason": reason, "stops": len(stops)})

	ctrl.fetches.Add(1)
	go func() {
		defer ctrl.fetches.Done()

		route, err := ctrl.deps.Routes.ComputeRoute(ctrl.ctx, origin, stops)
		var segments []trip.PolylineSegment
		if err == nil && len(route.Legs) != len(stops) {
			err = &trip.RouteError{Reason: fmt.Sprintf("expected %d legs, got %d", len(stops), len(route.Legs))}
		}
		if err == nil {
			segments, err = trip.BuildPolylines(route, trip.RouteColors(ctrl.colorSeed(seq), len(route.Legs)))
		}
		ctrl.applyRoute(seq, base, route, segments, err)
	}()
}

// applyRoute installs a fetched route, or keeps the previous one on failure.
func (ctrl *Controller) applyRoute(seq uint64, base int, route trip.RouteInfo, segments []trip.PolylineSegment, err error) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	ctrl.st.Lock = ctrl.st.Lock.EndFetch()
	if ctrl.closed {
		return
	}

	if seq != ctrl.fetchSeq {
		ctrl.deps.Logger.Debug(ctrl.logCtx, "route_stale", "Discarding superseded route",
			map[string]any{"seq": seq, "latest": ctrl.fetchSeq})
		return
	}

	if err != nil {
		var decodeErr *geo.DecodeError
		if errors.As(err, &decodeErr) {
			ctrl.noticeLocked(trip.NoticeDecodeError, "The route could not be drawn; showing the previous route")
		} else {
			ctrl.noticeLocked(trip.NoticeRouteError, "The route could not be updated; showing the previous route")
		}
		ctrl.deps.Logger.Error(ctrl.logCtx, "route_fetch_failed", "Route update failed, keeping previous route", err,
			map[string]any{"seq": seq})
		ctrl.notifyLocked()
		return
	}

	ctrl.st.Route = &route
	ctrl.st.Polylines = segments
	ctrl.st.RouteBase = base
	ctrl.st.CurrentStepIndex = 0
	if leg, _, ok := ctrl.st.CurrentLeg(); ok && ctrl.st.Location != nil && !ctrl.st.Lock.Suppressed() {
		ctrl.st.CurrentStepIndex = stepIndex(leg.Steps, ctrl.st.Location.Coordinate, 0)
	}

	ctrl.deps.Logger.Info(ctrl.logCtx, "route_updated", "Route updated",
		map[string]any{"seq": seq, "legs": len(route.Legs), "distance_m": route.DistanceMeters})
	ctrl.publishRouteLocked(route)
	ctrl.notifyLocked()
}

func (ctrl *Controller) publishRouteLocked(route trip.RouteInfo) {
	if ctrl.deps.Events == nil {
		return
	}
	now := ctrl.deps.Clock.Now()
	msg := contracts.RouteUpdatedMessage{
		TripID:          ctrl.tripID,
		Legs:            len(route.Legs),
		DistanceMeters:  route.DistanceMeters,
		Duration:        route.Duration,
		EncodedPolyline: route.EncodedPolyline,
		ComputedAt:      now,
		Envelope:        contracts.Envelope{Producer: contracts.ProducerTrackingService, SentAt: now},
	}

	ctrl.bg.Add(1)
	go func() {
		defer ctrl.bg.Done()
		if err := ctrl.deps.Events.PublishRouteUpdated(ctrl.logCtx, msg); err != nil {
			ctrl.deps.Logger.Error(ctrl.logCtx, "route_publish_failed", "Failed to publish route update", err, nil)
		}
	}()
}

// colorSeed makes route colors stable per trip and fetch.
func (ctrl *Controller) colorSeed(seq uint64) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(ctrl.tripID))
	return h.Sum64() ^ seq
}

// CycleFocus moves the camera focus off -> center -> forward -> off.
func (ctrl *Controller) CycleFocus() trip.FocusMode {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	mode := ctrl.cam.cycle()
	ctrl.st.Focus = mode
	ctrl.cam.follow(ctrl.st.Location, ctrl.currentTargetLocked())
	ctrl.notifyLocked()
	return mode
}

// ManualGesture reports a user pan or zoom of the map and returns the resulting focus.
func (ctrl *Controller) ManualGesture() trip.FocusMode {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if ctrl.cam.gesture() {
		ctrl.st.Focus = ctrl.cam.focus
		ctrl.notifyLocked()
	}
	return ctrl.cam.focus
}

// SetShowAll toggles rendering of every destination and refits the camera.
func (ctrl *Controller) SetShowAll(showAll bool) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	ctrl.st.ShowAll = showAll

	var points []geo.Coordinate
	if ctrl.st.Location != nil {
		points = append(points, ctrl.st.Location.Coordinate)
	}
	if showAll {
		points = append(points, trip.Locations(ctrl.st.Places)...)
	} else {
		points = append(points, ctrl.currentTargetLocked()...)
	}
	ctrl.cam.fit(points)
	ctrl.notifyLocked()
}

func (ctrl *Controller) currentTargetLocked() []geo.Coordinate {
	if cur, ok := ctrl.st.CurrentDestination(); ok {
		return []geo.Coordinate{cur.Location}
	}
	return nil
}

func (ctrl *Controller) setAddress(addr string) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if ctrl.closed || ctrl.st.Address == addr {
		return
	}
	ctrl.st.Address = addr
	ctrl.notifyLocked()
}

// Snapshot returns a copy of the current state.
func (ctrl *Controller) Snapshot() State {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	ctrl.st.Camera = ctrl.cam.last
	ctrl.st.Focus = ctrl.cam.focus
	return ctrl.st.clone()
}

// Watch returns a channel signalled (coalesced) after every state change.
// The channel is closed when the controller closes.
func (ctrl *Controller) Watch() (<-chan struct{}, func()) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	ch := make(chan struct{}, 1)
	if ctrl.closed {
		close(ch)
		return ch, func() {}
	}
	id := ctrl.nextW
	ctrl.nextW++
	ctrl.watchers[id] = ch

	return ch, func() {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		if w, ok := ctrl.watchers[id]; ok {
			close(w)
			delete(ctrl.watchers, id)
		}
	}
}

func (ctrl *Controller) noticeLocked(kind trip.NoticeKind, msg string) {
	ctrl.st.Notices = append(ctrl.st.Notices, trip.Notice{Kind: kind, Message: msg, At: ctrl.deps.Clock.Now()})
	if n := len(ctrl.st.Notices); n > maxNotices {
		ctrl.st.Notices = append([]trip.Notice(nil), ctrl.st.Notices[n-maxNotices:]...)
	}
}

func (ctrl *Controller) notifyLocked() {
	ctrl.st.Version++
	for _, ch := range ctrl.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
