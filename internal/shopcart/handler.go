package shopcart

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ilhamdjango/ecommerce-core/internal/openapi"
)

type Handler struct {
	repo   *CartRepository
	logger *slog.Logger
}

func NewHandler(repo *CartRepository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	userUUID := r.PathValue("userUUID")
	if userUUID == "" {
		h.writeError(w, http.StatusBadRequest, "missing user uuid")
		return
	}

	cart, err := h.repo.GetByUser(r.Context(), userUUID)
	if err != nil {
		h.logger.Error("failed to get cart", "error", err, "user_uuid", userUUID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if cart == nil {
		h.writeError(w, http.StatusNotFound, "cart not found")
		return
	}

	h.writeJSON(w, http.StatusOK, cart)
}

type addItemRequest struct {
	ProductVariationID string `json:"product_variation_id"`
	Quantity           int    `json:"quantity"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	userUUID := r.PathValue("userUUID")
	if userUUID == "" {
		h.writeError(w, http.StatusBadRequest, "missing user uuid")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductVariationID == "" || req.Quantity <= 0 {
		h.writeError(w, http.StatusBadRequest, "product_variation_id and positive quantity are required")
		return
	}

	cart, err := h.repo.GetByUser(r.Context(), userUUID)
	if err != nil {
		h.logger.Error("failed to get cart", "error", err, "user_uuid", userUUID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if cart == nil {
		h.writeError(w, http.StatusNotFound, "cart not found")
		return
	}

	item, err := h.repo.AddItem(r.Context(), cart.ID, req.ProductVariationID, req.Quantity)
	if err != nil {
		h.logger.Error("failed to add cart item", "error", err, "cart_id", cart.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("cart item added", "cart_id", cart.ID, "product_variation_id", req.ProductVariationID)
	h.writeJSON(w, http.StatusCreated, item)
}

// Manifest is the machine-readable route listing the gateway discovers at
// startup.
func Manifest() *openapi.Document {
	doc := openapi.NewDocument("Shopcart Service", "1.0.0", "")
	doc.AddOperation("get", "/api/v1/carts/{user_uuid}", openapi.Operation{Summary: "Get a user's cart"})
	doc.AddOperation("post", "/api/v1/carts/{user_uuid}/items", openapi.Operation{Summary: "Add an item to a user's cart"})
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
