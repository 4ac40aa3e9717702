package domain

import "time"

type User struct {
	UUID        string    `json:"uuid"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	IsShopOwner bool      `json:"is_shop_owner"`
	CreatedAt   time.Time `json:"created_at"`
}

type Shop struct {
	ID        string    `json:"id"`
	OwnerUUID string    `json:"owner_uuid"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
