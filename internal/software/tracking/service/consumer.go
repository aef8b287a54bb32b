package service

import (
	"context"
	"time"

	"trip-tracker/internal/general/rabbitmq"
)

const consumerRetryDelay = 5 * time.Second

// RunBackgroundConsumers consumes device fixes from the message broker until
// ctx is done. Without a broker it returns immediately.
func (service *trackingService) RunBackgroundConsumers(ctx context.Context) {
	if service.deps.MQ == nil {
		return
	}
	sink := ingestSink{service: service}

	go func() {
		for {
			err := rabbitmq.ConsumeLocations(ctx, service.deps.MQ, sink, service.logger)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				service.logger.Error(ctx, "location_consumer_failed", "Location consumer stopped, retrying", err,
					map[string]any{"retry_in": consumerRetryDelay.String()})
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(consumerRetryDelay):
			}
		}
	}()
}
