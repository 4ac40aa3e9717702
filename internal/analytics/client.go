package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ProductVariation is the slice of the product service's variation resource
// that analytics denormalizes onto order items.
type ProductVariation struct {
	BasePrice     float64
	OriginalPrice float64
	Size          string
	Color         string
	ProductTitle  string
	ProductSKU    string
	ShopID        string
}

// ProductClient fetches variation details from the product service.
type ProductClient struct {
	baseURL string
	client  *http.Client
}

func NewProductClient(baseURL string, client *http.Client) *ProductClient {
	return &ProductClient{
		baseURL: baseURL,
		client:  client,
	}
}

func (c *ProductClient) GetVariation(ctx context.Context, variationID string) (*ProductVariation, error) {
	url := fmt.Sprintf("%s/api/v1/products/variations/%s", c.baseURL, variationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch product variation %s: %w", variationID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product service returned status %d for variation %s", resp.StatusCode, variationID)
	}

	var payload struct {
		BasePrice     float64 `json:"base_price"`
		OriginalPrice float64 `json:"original_price"`
		Size          string  `json:"size"`
		Color         string  `json:"color"`
		Product       struct {
			Title  string `json:"title"`
			SKU    string `json:"sku"`
			ShopID string `json:"shop_id"`
		} `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode product variation %s: %w", variationID, err)
	}

	basePrice := payload.BasePrice
	if basePrice == 0 {
		basePrice = payload.OriginalPrice
	}

	return &ProductVariation{
		BasePrice:     basePrice,
		OriginalPrice: payload.OriginalPrice,
		Size:          payload.Size,
		Color:         payload.Color,
		ProductTitle:  payload.Product.Title,
		ProductSKU:    payload.Product.SKU,
		ShopID:        payload.Product.ShopID,
	}, nil
}
