package service

import (
	"errors"
	"sync"

	"trip-tracker/internal/general/logger"
	"trip-tracker/internal/general/rabbitmq"
	"trip-tracker/internal/ports"
	"trip-tracker/internal/tracking"
)

var (
	ErrSessionNotFound = errors.New("no tracking session for trip")
	ErrInvalidInput    = errors.New("invalid input")
)

// Deps are the collaborators shared by every session. History, Events,
// Geocoder and MQ may be nil.
type Deps struct {
	Places   ports.PlaceSearcher
	Routes   ports.RouteProvider
	Geocoder ports.Geocoder
	Hub      LocationHub
	KV       ports.KeyValueStore
	History  ports.LocationHistoryRepository
	Events   ports.TripEventPublisher
	MQ       *rabbitmq.Client
	Clock    tracking.Clock
}

// LocationHub is both ends of the in-process location stream.
type LocationHub interface {
	ports.LocationStream
	ports.LocationPublisher
	Forget(tripID string)
}

// session is one running controller.
type session struct {
	id     string
	result ports.SessionResult
	ctrl   *tracking.Controller
}

// trackingService owns one tracking controller per trip.
type trackingService struct {
	logger *logger.Logger
	cfg    tracking.Config
	deps   Deps
	store  *tracking.CompletedStore

	mu       sync.Mutex
	sessions map[string]*session
}

// NewTrackingService constructs the service with required dependencies.
func NewTrackingService(logger *logger.Logger, cfg tracking.Config, deps Deps) ports.TrackingService {
	if deps.Clock == nil {
		deps.Clock = tracking.SystemClock()
	}
	var store *tracking.CompletedStore
	if deps.KV != nil {
		store = tracking.NewCompletedStore(deps.KV, logger)
	}
	return &trackingService{
		logger:   logger,
		cfg:      cfg,
		deps:     deps,
		store:    store,
		sessions: make(map[string]*session),
	}
}

func (service *trackingService) lookup(tripID string) (*session, error) {
	service.mu.Lock()
	defer service.mu.Unlock()
	sess, ok := service.sessions[tripID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}
