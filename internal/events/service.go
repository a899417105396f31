// Package events implements the gateway's event ingest: validate, dedupe on
// the request identifier, publish to the queue.
package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edgehook/event-gateway/internal/requestid"
)

// Store is the slice of the Redis client the service needs.
type Store interface {
	SeenRequest(ctx context.Context, requestID string) (bool, error)
	MarkSeen(ctx context.Context, requestID string) error
}

// Publisher is the slice of the RabbitMQ client the service needs.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// Service handles the business logic for event ingestion.
type Service struct {
	store     Store
	publisher Publisher
	logger    *zap.Logger
}

// NewService creates a new events service.
func NewService(store Store, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// ValidationError represents a payload validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidatePayload validates the ingest payload.
func (s *Service) ValidatePayload(payload *IngestPayload) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(payload.Source) == "" {
		errors = append(errors, ValidationError{Field: "source", Message: "required"})
	}
	if strings.TrimSpace(payload.Type) == "" {
		errors = append(errors, ValidationError{Field: "type", Message: "required"})
	}

	return errors
}

// Ingest processes one validated payload under the request identifier carried
// by ctx. Re-submissions with the same identifier are deduplicated; a store
// failure fails open (the event is published rather than dropped).
func (s *Service) Ingest(ctx context.Context, payload IngestPayload) IngestResponse {
	id := requestid.FromContext(ctx)

	seen, err := s.store.SeenRequest(ctx, id)
	if err != nil {
		s.logger.Warn("duplicate check failed, failing open",
			zap.Error(err),
			zap.String("request_id", id),
		)
	}
	if seen {
		s.logger.Info("duplicate event ignored",
			zap.String("request_id", id),
			zap.String("source", payload.Source),
		)
		return IngestResponse{
			Status:    StatusDuplicate,
			RequestID: id,
			Message:   "event with this request id already ingested",
		}
	}

	envelope := Envelope{
		RequestID:  id,
		Source:     payload.Source,
		Type:       payload.Type,
		Data:       payload.Data,
		ReceivedAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, envelope); err != nil {
		s.logger.Error("failed to publish event",
			zap.Error(err),
			zap.String("request_id", id),
			zap.String("source", payload.Source),
		)
		return IngestResponse{
			Status:    StatusError,
			RequestID: id,
			Message:   "event could not be queued",
		}
	}

	if err := s.store.MarkSeen(ctx, id); err != nil {
		// The event is already queued; a failed marker only weakens dedupe.
		s.logger.Warn("failed to record seen marker",
			zap.Error(err),
			zap.String("request_id", id),
		)
	}

	s.logger.Info("event accepted",
		zap.String("request_id", id),
		zap.String("source", payload.Source),
		zap.String("type", payload.Type),
	)

	return IngestResponse{
		Status:    StatusAccepted,
		RequestID: id,
	}
}
