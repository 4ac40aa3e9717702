package shops

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ilhamdjango/ecommerce-core/internal/domain"
	"github.com/ilhamdjango/ecommerce-core/internal/messaging"
	"github.com/ilhamdjango/ecommerce-core/internal/openapi"
)

type Handler struct {
	repo      *ShopRepository
	publisher *messaging.Publisher
	logger    *slog.Logger
}

func NewHandler(repo *ShopRepository, publisher *messaging.Publisher, logger *slog.Logger) *Handler {
	return &Handler{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

type createShopRequest struct {
	UserUUID string `json:"user_uuid"`
	Name     string `json:"name"`
}

// HandleCreate creates a shop and emits shop.created, which downstream flips
// the owner's role and deletes their cart. Publishing is post-commit and
// best-effort.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createShopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserUUID == "" || req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "user_uuid and name are required")
		return
	}

	shop, err := h.repo.Create(r.Context(), req.UserUUID, req.Name)
	if err != nil {
		h.logger.Error("failed to create shop", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.publisher != nil {
		event := domain.ShopCreatedEvent{
			Envelope: domain.NewEnvelope(domain.EventShopCreated),
			UserUUID: shop.OwnerUUID,
			ShopID:   shop.ID,
		}
		if err := h.publisher.Publish(r.Context(), domain.EventShopCreated, event); err != nil {
			h.logger.Error("failed to publish shop created event", "error", err, "shop_id", shop.ID)
		}
	}

	h.logger.Info("shop created", "shop_id", shop.ID, "owner_uuid", shop.OwnerUUID)
	h.writeJSON(w, http.StatusCreated, shop)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing shop id")
		return
	}

	shop, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get shop", "error", err, "shop_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if shop == nil {
		h.writeError(w, http.StatusNotFound, "shop not found")
		return
	}

	h.writeJSON(w, http.StatusOK, shop)
}

func Manifest() *openapi.Document {
	doc := openapi.NewDocument("Shop Service", "1.0.0", "")
	doc.AddOperation("post", "/api/v1/shops", openapi.Operation{Summary: "Create a shop"})
	doc.AddOperation("get", "/api/v1/shops/{id}", openapi.Operation{Summary: "Get a shop"})
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
