// Package worker consumes gateway events off the queue and processes each one
// under the identifier of the request that produced it.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/edgehook/event-gateway/internal/events"
	"github.com/edgehook/event-gateway/internal/requestid"
)

// Source is anything that yields AMQP deliveries.
type Source interface {
	Consume() (<-chan amqp.Delivery, error)
}

// Consumer drains the events queue.
type Consumer struct {
	source Source
	logger *zap.Logger
}

// New creates a new consumer.
func New(source Source, logger *zap.Logger) *Consumer {
	return &Consumer{
		source: source,
		logger: logger,
	}
}

// Start consumes deliveries until ctx is cancelled or the channel closes.
func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.source.Consume()
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("worker started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.Handle(ctx, d)
		}
	}
}

// Handle processes one delivery inside an identifier scope seeded from the
// message's correlation id (generated when the producer did not set one), so
// the worker's logs line up with the originating request's.
func (c *Consumer) Handle(ctx context.Context, d amqp.Delivery) {
	err := requestid.Run(ctx, d.CorrelationId, func(ctx context.Context) error {
		return c.process(ctx, d.Body)
	})
	if err != nil {
		c.logger.Error("event processing failed",
			zap.Error(err),
			zap.String("request_id", d.CorrelationId),
		)
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.Warn("failed to nack delivery", zap.Error(nackErr))
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		c.logger.Warn("failed to ack delivery", zap.Error(ackErr))
	}
}

func (c *Consumer) process(ctx context.Context, body []byte) error {
	var envelope events.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}

	c.logger.Info("event processed",
		zap.String("request_id", requestid.FromContext(ctx)),
		zap.String("source", envelope.Source),
		zap.String("type", envelope.Type),
		zap.Time("received_at", envelope.ReceivedAt),
	)
	return nil
}
