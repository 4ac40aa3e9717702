package shopcart

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ilhamdjango/ecommerce-core/internal/domain"
)

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetByUser loads the user's cart with its items in insertion order, or nil
// when the user has no cart.
func (r *CartRepository) GetByUser(ctx context.Context, userUUID string) (*domain.Cart, error) {
	cart := &domain.Cart{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_uuid, created_at
		FROM carts
		WHERE user_uuid = $1
	`, userUUID).Scan(&cart.ID, &cart.UserUUID, &cart.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_variation_id, quantity
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at
	`, cart.ID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.ProductVariationID, &item.Quantity); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cart, nil
}

func (r *CartRepository) Create(ctx context.Context, userUUID string) (*domain.Cart, error) {
	cart := &domain.Cart{
		ID:       uuid.New().String(),
		UserUUID: userUUID,
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO carts (id, user_uuid, created_at)
		VALUES ($1, $2, NOW())
		RETURNING created_at
	`, cart.ID, cart.UserUUID).Scan(&cart.CreatedAt)
	if err != nil {
		return nil, err
	}

	return cart, nil
}

// DeleteByUser removes the user's cart and its items, reporting whether a
// cart existed.
func (r *CartRepository) DeleteByUser(ctx context.Context, userUUID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM carts WHERE user_uuid = $1
	`, userUUID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// ClearItems deletes every item of the cart and returns how many were
// removed. Clearing an already empty cart is not an error.
func (r *CartRepository) ClearItems(ctx context.Context, cartID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items WHERE cart_id = $1
	`, cartID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// AddItem inserts an item or bumps the quantity when the variation is already
// in the cart.
func (r *CartRepository) AddItem(ctx context.Context, cartID, productVariationID string, quantity int) (*domain.CartItem, error) {
	item := &domain.CartItem{
		ProductVariationID: productVariationID,
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_variation_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (cart_id, product_variation_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, quantity
	`, uuid.New().String(), cartID, productVariationID, quantity).Scan(&item.ID, &item.Quantity)
	if err != nil {
		return nil, err
	}

	return item, nil
}
