package orders

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ilhamdjango/ecommerce-core/internal/domain"
	"github.com/ilhamdjango/ecommerce-core/internal/messaging"
	"github.com/ilhamdjango/ecommerce-core/internal/openapi"
)

type Handler struct {
	repo      *OrderRepository
	publisher *messaging.Publisher
	logger    *slog.Logger
}

func NewHandler(repo *OrderRepository, publisher *messaging.Publisher, logger *slog.Logger) *Handler {
	return &Handler{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

type createOrderRequest struct {
	UserUUID string             `json:"user_uuid"`
	CartID   string             `json:"cart_id"`
	Items    []domain.OrderItem `json:"items"`
}

// HandleCreate persists the order and emits order.created so the shopcart
// service clears the ordered cart. The publish is post-commit, best-effort.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserUUID == "" || req.CartID == "" {
		h.writeError(w, http.StatusBadRequest, "user_uuid and cart_id are required")
		return
	}

	order := &domain.Order{
		UserUUID:  req.UserUUID,
		CartID:    req.CartID,
		Items:     req.Items,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.repo.Create(r.Context(), order); err != nil {
		h.logger.Error("failed to create order", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.publisher != nil {
		event := domain.OrderCreatedEvent{
			Envelope: domain.NewEnvelope(domain.EventOrderCreated),
			Data: domain.OrderCreatedData{
				UserUUID: order.UserUUID,
				CartID:   order.CartID,
				OrderID:  order.ID,
			},
		}
		if err := h.publisher.Publish(r.Context(), domain.EventOrderCreated, event); err != nil {
			h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	h.logger.Info("order created", "order_id", order.ID, "user_uuid", order.UserUUID)
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// HandleUpdateStatus transitions the order. Reaching completed emits
// order.completed with a full snapshot so analytics can ingest without
// calling back.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		h.writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	order, err := h.repo.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update order status", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if order.Status == domain.OrderStatusCompleted && h.publisher != nil {
		event := snapshotEvent(order)
		if err := h.publisher.Publish(r.Context(), domain.EventOrderCompleted, event); err != nil {
			h.logger.Error("failed to publish order completed event", "error", err, "order_id", order.ID)
		}
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	h.writeJSON(w, http.StatusOK, order)
}

func snapshotEvent(order *domain.Order) domain.OrderCompletedEvent {
	items := make([]domain.OrderCompletedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, domain.OrderCompletedItem{
			ID:               item.ID,
			ProductVariation: item.ProductVariationID,
			Quantity:         item.Quantity,
			Price:            item.Price,
		})
	}
	return domain.OrderCompletedEvent{
		Envelope:  domain.NewEnvelope(domain.EventOrderCompleted),
		ID:        order.ID,
		UserID:    order.UserUUID,
		CreatedAt: order.CreatedAt,
		Items:     items,
	}
}

func Manifest() *openapi.Document {
	doc := openapi.NewDocument("Order Service", "1.0.0", "")
	doc.AddOperation("post", "/api/v1/orders", openapi.Operation{Summary: "Create an order"})
	doc.AddOperation("get", "/api/v1/orders/{id}", openapi.Operation{Summary: "Get an order"})
	doc.AddOperation("patch", "/api/v1/orders/{id}/status", openapi.Operation{Summary: "Update an order's status"})
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
