package domain

import "time"

// Cart is the shopcart service's aggregate. At most one cart exists per
// user_uuid; a user who owns a shop has none.
type Cart struct {
	ID        string     `json:"id"`
	UserUUID  string     `json:"user_uuid"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
}

type CartItem struct {
	ID                 string `json:"id"`
	ProductVariationID string `json:"product_variation_id"`
	Quantity           int    `json:"quantity"`
}
