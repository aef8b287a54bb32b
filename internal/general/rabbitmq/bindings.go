package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"trip-tracker/internal/general/contracts"
)

type exchangeDecl struct {
	name string
	kind string
}

type bindingDecl struct {
	queue      string
	exchange   string
	routingKey string
}

// topology is what every connection (re)declares.
var (
	topologyExchanges = []exchangeDecl{
		{contracts.ExchangeTripTopic, amqp.ExchangeTopic},
		{contracts.ExchangeLocationFanout, amqp.ExchangeFanout},
	}
	topologyQueues = []string{
		contracts.QueueTripLocationUpdates,
		contracts.QueueTripEvents,
	}
	topologyBindings = []bindingDecl{
		{contracts.QueueTripLocationUpdates, contracts.ExchangeLocationFanout, ""},
		{contracts.QueueTripEvents, contracts.ExchangeTripTopic, contracts.RouteTripAll},
	}
)

func declareTopology(ch *amqp.Channel) error {
	for _, ex := range topologyExchanges {
		if err := ch.ExchangeDeclare(ex.name, ex.kind, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	for _, q := range topologyQueues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	for _, b := range topologyBindings {
		if err := ch.QueueBind(b.queue, b.routingKey, b.exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}
