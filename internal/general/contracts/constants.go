package contracts

// Exchanges
const (
	ExchangeTripTopic      = "trip_topic"
	ExchangeLocationFanout = "location_fanout"
)

// Queues
const (
	QueueTripLocationUpdates = "trip_location_updates"
	QueueTripEvents          = "trip_events"
)

// Routing patterns
const (
	RouteTripArrivalPrefix = "trip.arrival." // {trip_id}
	RouteTripRoutePrefix   = "trip.route."   // {trip_id}
	RouteTripAll           = "trip.#"
)

// Producers
const (
	ProducerTrackingService   = "tracking-service"
	ProducerLocationSimulator = "location-simulator"
)
