package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID        string      `json:"id"`
	UserUUID  string      `json:"user_uuid"`
	CartID    string      `json:"cart_id"`
	Status    OrderStatus `json:"status"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
}

type OrderItem struct {
	ID                 string  `json:"id"`
	ProductVariationID string  `json:"product_variation_id"`
	Quantity           int     `json:"quantity"`
	Price              float64 `json:"price"`
}
