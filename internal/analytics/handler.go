package analytics

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ilhamdjango/ecommerce-core/internal/domain"
	"github.com/ilhamdjango/ecommerce-core/internal/openapi"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleOrderCompleted is the HTTP ingestion path for order snapshots. A new
// order answers 201; re-ingesting a known order is idempotent and answers 200
// to signal "already processed".
func (h *Handler) HandleOrderCompleted(w http.ResponseWriter, r *http.Request) {
	var event domain.OrderCompletedEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.service.ProcessOrderCompleted(r.Context(), event)
	if err != nil {
		if errors.Is(err, ErrMissingField) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to ingest order", "error", err, "order_id", event.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := http.StatusOK
	message := "order already processed"
	if created {
		status = http.StatusCreated
		message = "order successfully processed"
	}

	h.writeJSON(w, status, map[string]string{
		"status":   "success",
		"message":  message,
		"order_id": event.ID,
		"user_id":  event.UserID,
	})
}

func Manifest() *openapi.Document {
	doc := openapi.NewDocument("Analytics Service", "1.0.0", "")
	doc.AddOperation("post", "/api/v1/analytics/order-completed", openapi.Operation{Summary: "Ingest a completed order"})
	return doc
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"status": "error", "message": message})
}
