package events_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/edgehook/event-gateway/internal/events"
	"github.com/edgehook/event-gateway/internal/requestid"
)

// mockStore implements events.Store for testing.
type mockStore struct {
	seen    bool
	seenErr error
	markErr error

	markedIDs []string
}

func (m *mockStore) SeenRequest(_ context.Context, _ string) (bool, error) {
	return m.seen, m.seenErr
}

func (m *mockStore) MarkSeen(_ context.Context, requestID string) error {
	m.markedIDs = append(m.markedIDs, requestID)
	return m.markErr
}

// mockPublisher implements events.Publisher for testing.
type mockPublisher struct {
	err       error
	published []any
}

func (m *mockPublisher) Publish(_ context.Context, event any) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, event)
	return nil
}

func scopedContext(t *testing.T, id string) context.Context {
	t.Helper()
	ctx, scope := requestid.Enter(context.Background(), map[string]any{requestid.Key: id})
	t.Cleanup(func() { _ = scope.Exit() })
	return ctx
}

func TestIngest_Accepted(t *testing.T) {
	store := &mockStore{}
	publisher := &mockPublisher{}
	svc := events.NewService(store, publisher, zap.NewNop())

	resp := svc.Ingest(scopedContext(t, "r-1"), events.IngestPayload{
		Source: "billing",
		Type:   "invoice.created",
	})

	if resp.Status != events.StatusAccepted {
		t.Errorf("expected status=accepted, got %s", resp.Status)
	}
	if resp.RequestID != "r-1" {
		t.Errorf("expected request_id=r-1, got %s", resp.RequestID)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}
	envelope, ok := publisher.published[0].(events.Envelope)
	if !ok {
		t.Fatalf("expected Envelope, got %T", publisher.published[0])
	}
	if envelope.RequestID != "r-1" {
		t.Errorf("expected envelope request_id=r-1, got %s", envelope.RequestID)
	}
	if len(store.markedIDs) != 1 || store.markedIDs[0] != "r-1" {
		t.Errorf("expected seen marker for r-1, got %v", store.markedIDs)
	}
}

func TestIngest_Duplicate(t *testing.T) {
	store := &mockStore{seen: true}
	publisher := &mockPublisher{}
	svc := events.NewService(store, publisher, zap.NewNop())

	resp := svc.Ingest(scopedContext(t, "r-1"), events.IngestPayload{
		Source: "billing",
		Type:   "invoice.created",
	})

	if resp.Status != events.StatusDuplicate {
		t.Errorf("expected status=duplicate, got %s", resp.Status)
	}
	if len(publisher.published) != 0 {
		t.Errorf("expected no publish for duplicate, got %d", len(publisher.published))
	}
}

func TestIngest_FailOpenOnStoreError(t *testing.T) {
	store := &mockStore{seenErr: errors.New("redis connection refused")}
	publisher := &mockPublisher{}
	svc := events.NewService(store, publisher, zap.NewNop())

	resp := svc.Ingest(scopedContext(t, "r-1"), events.IngestPayload{
		Source: "billing",
		Type:   "invoice.created",
	})

	if resp.Status != events.StatusAccepted {
		t.Errorf("expected fail-open accept on store error, got %s", resp.Status)
	}
	if len(publisher.published) != 1 {
		t.Errorf("expected event published despite store error, got %d", len(publisher.published))
	}
}

func TestIngest_PublishError(t *testing.T) {
	store := &mockStore{}
	publisher := &mockPublisher{err: errors.New("channel closed")}
	svc := events.NewService(store, publisher, zap.NewNop())

	resp := svc.Ingest(scopedContext(t, "r-1"), events.IngestPayload{
		Source: "billing",
		Type:   "invoice.created",
	})

	if resp.Status != events.StatusError {
		t.Errorf("expected status=error on publish failure, got %s", resp.Status)
	}
	if len(store.markedIDs) != 0 {
		t.Errorf("expected no seen marker when publish failed, got %v", store.markedIDs)
	}
}

func TestValidatePayload(t *testing.T) {
	svc := events.NewService(&mockStore{}, &mockPublisher{}, zap.NewNop())

	errs := svc.ValidatePayload(&events.IngestPayload{Source: " ", Type: ""})
	if len(errs) != 2 {
		t.Fatalf("expected 2 validation errors, got %d", len(errs))
	}

	errs = svc.ValidatePayload(&events.IngestPayload{Source: "billing", Type: "invoice.created"})
	if len(errs) != 0 {
		t.Errorf("expected no validation errors, got %v", errs)
	}
}
