package users

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ilhamdjango/ecommerce-core/internal/domain"
	"github.com/ilhamdjango/ecommerce-core/internal/messaging"
	"github.com/ilhamdjango/ecommerce-core/internal/openapi"
)

type Handler struct {
	repo      *UserRepository
	publisher *messaging.Publisher
	logger    *slog.Logger
}

func NewHandler(repo *UserRepository, publisher *messaging.Publisher, logger *slog.Logger) *Handler {
	return &Handler{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	IsActive *bool  `json:"is_active"`
}

// HandleRegister creates a user and emits user.created. The publish happens
// after the local commit and is best-effort: a broker outage is logged, not
// surfaced, and never rolls the user back.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		h.writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user, err := h.repo.Create(r.Context(), req.Email, isActive)
	if err != nil {
		h.logger.Error("failed to create user", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.publisher != nil {
		event := domain.UserCreatedEvent{
			Envelope: domain.NewEnvelope(domain.EventUserCreated),
			UserUUID: user.UUID,
			Email:    user.Email,
			IsActive: user.IsActive,
		}
		if err := h.publisher.Publish(r.Context(), domain.EventUserCreated, event); err != nil {
			h.logger.Error("failed to publish user created event", "error", err, "user_uuid", user.UUID)
		}
	}

	h.logger.Info("user registered", "user_uuid", user.UUID, "email", user.Email)
	h.writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userUUID := r.PathValue("uuid")
	if userUUID == "" {
		h.writeError(w, http.StatusBadRequest, "missing user uuid")
		return
	}

	user, err := h.repo.GetByUUID(r.Context(), userUUID)
	if err != nil {
		h.logger.Error("failed to get user", "error", err, "user_uuid", userUUID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if user == nil {
		h.writeError(w, http.StatusNotFound, "user not found")
		return
	}

	h.writeJSON(w, http.StatusOK, user)
}

func Manifest() *openapi.Document {
	doc := openapi.NewDocument("User Service", "1.0.0", "")
	doc.AddOperation("post", "/api/v1/users", openapi.Operation{Summary: "Register a user"})
	doc.AddOperation("get", "/api/v1/users/{uuid}", openapi.Operation{Summary: "Get a user"})
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
