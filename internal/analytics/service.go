package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ilhamdjango/ecommerce-core/internal/domain"
)

// ErrMissingField marks snapshots that lack required identifiers.
var ErrMissingField = errors.New("missing required field")

// Store is the slice of analytics persistence the ingestion service writes.
type Store interface {
	UpsertOrder(ctx context.Context, order domain.AnalyticsOrder) (bool, error)
	UpsertItem(ctx context.Context, item domain.AnalyticsOrderItem) error
}

// VariationFetcher looks up product variation details for enrichment.
type VariationFetcher interface {
	GetVariation(ctx context.Context, variationID string) (*ProductVariation, error)
}

// Service ingests completed-order snapshots: an upsert keyed by the domain
// order id, then per-item synchronous enrichment from the product service.
// Enrichment is best-effort; a failed lookup leaves the fields blank instead
// of failing the whole ingestion.
type Service struct {
	store    Store
	products VariationFetcher
	logger   *slog.Logger
}

func NewService(store Store, products VariationFetcher, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		products: products,
		logger:   logger,
	}
}

// ProcessOrderCompleted ingests one snapshot and reports whether the order
// was new. Replaying the same snapshot refreshes the existing rows.
func (s *Service) ProcessOrderCompleted(ctx context.Context, event domain.OrderCompletedEvent) (bool, error) {
	if event.ID == "" || event.UserID == "" {
		return false, fmt.Errorf("%w: order.completed needs id and user_id", ErrMissingField)
	}

	created, err := s.store.UpsertOrder(ctx, domain.AnalyticsOrder{
		OrderID:   event.ID,
		UserID:    event.UserID,
		CreatedAt: event.CreatedAt,
	})
	if err != nil {
		return false, fmt.Errorf("upsert order %s: %w", event.ID, err)
	}

	for _, item := range event.Items {
		record := domain.AnalyticsOrderItem{
			ItemID:             item.ID,
			OrderID:            event.ID,
			ProductVariationID: item.ProductVariation,
			Quantity:           item.Quantity,
			Price:              item.Price,
		}

		variation, err := s.products.GetVariation(ctx, item.ProductVariation)
		if err != nil {
			s.logger.Warn("product enrichment failed, storing item without it",
				"error", err, "order_id", event.ID, "product_variation_id", item.ProductVariation)
		} else {
			record.BasePrice = variation.BasePrice
			record.OriginalPrice = variation.OriginalPrice
			record.Size = variation.Size
			record.Color = variation.Color
			record.ProductTitle = variation.ProductTitle
			record.ProductSKU = variation.ProductSKU
			record.ShopID = variation.ShopID
		}

		if err := s.store.UpsertItem(ctx, record); err != nil {
			return false, fmt.Errorf("upsert item %s of order %s: %w", item.ID, event.ID, err)
		}
	}

	s.logger.Info("order ingested", "order_id", event.ID, "user_id", event.UserID, "items", len(event.Items), "created", created)
	return created, nil
}
