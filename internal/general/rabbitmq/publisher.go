package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"trip-tracker/internal/general/contracts"
	"trip-tracker/internal/ports"
)

var _ ports.TripEventPublisher = (*EventPublisher)(nil)

const publishTimeout = 5 * time.Second

// EventPublisher publishes trip progress on the trip topic exchange.
type EventPublisher struct {
	client   *Client
	producer string
}

// NewEventPublisher constructs an EventPublisher stamping producer on every envelope.
func NewEventPublisher(client *Client, producer string) *EventPublisher {
	return &EventPublisher{client: client, producer: producer}
}

// PublishArrival sends msg with routing key trip.arrival.{trip_id}.
func (publisher *EventPublisher) PublishArrival(ctx context.Context, msg contracts.ArrivalMessage) error {
	msg.Envelope = stamp(msg.Envelope, publisher.producer)
	return publisher.client.PublishJSON(ctx, contracts.ExchangeTripTopic, contracts.RouteTripArrivalPrefix+msg.TripID, msg)
}

// PublishRouteUpdated sends msg with routing key trip.route.{trip_id}.
func (publisher *EventPublisher) PublishRouteUpdated(ctx context.Context, msg contracts.RouteUpdatedMessage) error {
	msg.Envelope = stamp(msg.Envelope, publisher.producer)
	return publisher.client.PublishJSON(ctx, contracts.ExchangeTripTopic, contracts.RouteTripRoutePrefix+msg.TripID, msg)
}

// PublishLocation sends a device fix to the location fanout exchange.
func (publisher *EventPublisher) PublishLocation(ctx context.Context, msg contracts.LocationUpdateMessage) error {
	msg.Envelope = stamp(msg.Envelope, publisher.producer)
	return publisher.client.PublishJSON(ctx, contracts.ExchangeLocationFanout, "", msg)
}

func stamp(env contracts.Envelope, producer string) contracts.Envelope {
	if env.CorrelationID == "" {
		env.CorrelationID = uuid.NewString()
	}
	if env.Producer == "" {
		env.Producer = producer
	}
	if env.SentAt.IsZero() {
		env.SentAt = time.Now().UTC()
	}
	return env
}

// PublishJSON marshals v and publishes it with PublishMessage.
func (client *Client) PublishJSON(ctx context.Context, exchange, routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("rabbitmq: encode %s: %w", routingKey, err)
	}
	return client.PublishMessage(ctx, exchange, routingKey, body)
}

// PublishMessage publishes a persistent JSON message and waits for the broker confirm.
func (client *Client) PublishMessage(ctx context.Context, exchange, routingKey string, body []byte) error {
	client.mu.RLock()
	ch := client.pubChan
	conn := client.conn
	client.mu.RUnlock()

	if conn == nil || conn.IsClosed() {
		return errors.New("rabbitmq: connection is not open")
	}
	if ch == nil || ch.IsClosed() {
		return errors.New("rabbitmq: publish channel is not open")
	}

	client.pubMu.Lock()
	defer client.pubMu.Unlock()
	confirms := client.pubConfirms

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := ch.PublishWithContext(ctx, exchange, routingKey, true /* mandatory */, false, /* immediate */
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	); err != nil {
		return err
	}

	select {
	case c, ok := <-confirms:
		if !ok {
			return errors.New("rabbitmq: confirm stream closed")
		}
		if !c.Ack {
			return fmt.Errorf("rabbitmq: publish not acknowledged")
		}
	case <-ctx.Done():
		// consume one confirm so the stream stays aligned with publishes
		select {
		case c, ok := <-confirms:
			if ok && !c.Ack {
				return fmt.Errorf("rabbitmq: publish not acknowledged after timeout")
			}
		case <-time.After(2 * time.Second):
		}
		return ctx.Err()
	}

	return nil
}
