package analytics

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ilhamdjango/ecommerce-core/internal/domain"
)

type AnalyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// UpsertOrder inserts or refreshes the order keyed by its domain order id,
// reporting whether a new row was created. Duplicate ingestion of the same
// order is a success, not a conflict.
func (r *AnalyticsRepository) UpsertOrder(ctx context.Context, order domain.AnalyticsOrder) (bool, error) {
	var created bool
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO analytics_orders (id, order_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id)
		DO UPDATE SET user_id = EXCLUDED.user_id, created_at = EXCLUDED.created_at
		RETURNING (xmax = 0)
	`, uuid.New().String(), order.OrderID, order.UserID, order.CreatedAt).Scan(&created)
	if err != nil {
		return false, err
	}
	return created, nil
}

// UpsertItem inserts or refreshes an order item keyed by its domain item id,
// including whatever enrichment the product lookup produced.
func (r *AnalyticsRepository) UpsertItem(ctx context.Context, item domain.AnalyticsOrderItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analytics_order_items (
			id, item_id, order_id, product_variation_id, quantity, price,
			base_price, original_price, size, color, product_title, product_sku, shop_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''))
		ON CONFLICT (item_id)
		DO UPDATE SET
			quantity = EXCLUDED.quantity,
			price = EXCLUDED.price,
			base_price = EXCLUDED.base_price,
			original_price = EXCLUDED.original_price,
			size = EXCLUDED.size,
			color = EXCLUDED.color,
			product_title = EXCLUDED.product_title,
			product_sku = EXCLUDED.product_sku,
			shop_id = EXCLUDED.shop_id
	`, uuid.New().String(), item.ItemID, item.OrderID, item.ProductVariationID, item.Quantity, item.Price,
		item.BasePrice, item.OriginalPrice, item.Size, item.Color, item.ProductTitle, item.ProductSKU, item.ShopID)
	return err
}

// GetOrder loads an ingested order with its items, or nil when unknown.
func (r *AnalyticsRepository) GetOrder(ctx context.Context, orderID string) (*domain.AnalyticsOrder, []domain.AnalyticsOrderItem, error) {
	order := &domain.AnalyticsOrder{}

	err := r.db.QueryRowContext(ctx, `
		SELECT order_id, user_id, created_at
		FROM analytics_orders
		WHERE order_id = $1
	`, orderID).Scan(&order.OrderID, &order.UserID, &order.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT item_id, product_variation_id, quantity, price,
			base_price, original_price, size, color, product_title, product_sku, COALESCE(shop_id::text, '')
		FROM analytics_order_items
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []domain.AnalyticsOrderItem
	for rows.Next() {
		item := domain.AnalyticsOrderItem{OrderID: orderID}
		if err := rows.Scan(&item.ItemID, &item.ProductVariationID, &item.Quantity, &item.Price,
			&item.BasePrice, &item.OriginalPrice, &item.Size, &item.Color,
			&item.ProductTitle, &item.ProductSKU, &item.ShopID); err != nil {
			return nil, nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return order, items, nil
}
