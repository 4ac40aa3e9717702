package domain

import "time"

// AnalyticsOrder is the denormalized copy of a completed order kept by the
// analytics service, keyed by the domain order id for idempotent ingestion.
type AnalyticsOrder struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AnalyticsOrderItem holds the purchased item plus fields denormalized from
// the product service at ingestion time. Enrichment fields stay blank when
// the product lookup fails.
type AnalyticsOrderItem struct {
	ItemID             string  `json:"item_id"`
	OrderID            string  `json:"order_id"`
	ProductVariationID string  `json:"product_variation_id"`
	Quantity           int     `json:"quantity"`
	Price              float64 `json:"price"`

	BasePrice     float64 `json:"base_price,omitempty"`
	OriginalPrice float64 `json:"original_price,omitempty"`
	Size          string  `json:"size,omitempty"`
	Color         string  `json:"color,omitempty"`
	ProductTitle  string  `json:"product_title,omitempty"`
	ProductSKU    string  `json:"product_sku,omitempty"`
	ShopID        string  `json:"shop_id,omitempty"`
}
