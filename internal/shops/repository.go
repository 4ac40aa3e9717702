package shops

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ilhamdjango/ecommerce-core/internal/domain"
)

type ShopRepository struct {
	db *sql.DB
}

func NewShopRepository(db *sql.DB) *ShopRepository {
	return &ShopRepository{db: db}
}

func (r *ShopRepository) Create(ctx context.Context, ownerUUID, name string) (*domain.Shop, error) {
	shop := &domain.Shop{
		ID:        uuid.New().String(),
		OwnerUUID: ownerUUID,
		Name:      name,
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO shops (id, owner_uuid, name, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`, shop.ID, shop.OwnerUUID, shop.Name).Scan(&shop.CreatedAt)
	if err != nil {
		return nil, err
	}

	return shop, nil
}

func (r *ShopRepository) GetByID(ctx context.Context, id string) (*domain.Shop, error) {
	shop := &domain.Shop{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_uuid, name, created_at
		FROM shops
		WHERE id = $1
	`, id).Scan(&shop.ID, &shop.OwnerUUID, &shop.Name, &shop.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return shop, nil
}
