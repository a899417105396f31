package events

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/edgehook/event-gateway/internal/requestid"
)

// Handler handles HTTP requests for event ingestion.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new events handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleIngest handles POST /api/v1/events.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := requestid.FromContext(ctx)

	var payload IngestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn("failed to decode ingest payload",
			zap.Error(err),
			zap.String("request_id", id),
		)
		h.respondJSON(w, http.StatusBadRequest, IngestResponse{
			Status:    StatusError,
			RequestID: id,
			Message:   "invalid JSON payload",
		})
		return
	}

	if validationErrors := h.service.ValidatePayload(&payload); len(validationErrors) > 0 {
		messages := make([]string, len(validationErrors))
		for i, ve := range validationErrors {
			messages[i] = ve.Error()
		}
		h.respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Status:    StatusError,
			RequestID: id,
			Errors:    messages,
		})
		return
	}

	resp := h.service.Ingest(ctx, payload)
	switch resp.Status {
	case StatusAccepted:
		h.respondJSON(w, http.StatusAccepted, resp)
	case StatusDuplicate:
		h.respondJSON(w, http.StatusOK, resp)
	default:
		h.respondJSON(w, http.StatusInternalServerError, resp)
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
