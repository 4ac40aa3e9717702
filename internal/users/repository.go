package users

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ilhamdjango/ecommerce-core/internal/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, email string, isActive bool) (*domain.User, error) {
	user := &domain.User{
		UUID:     uuid.New().String(),
		Email:    email,
		IsActive: isActive,
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (uuid, email, is_active, is_shop_owner, created_at)
		VALUES ($1, $2, $3, FALSE, NOW())
		RETURNING created_at
	`, user.UUID, user.Email, user.IsActive).Scan(&user.CreatedAt)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *UserRepository) GetByUUID(ctx context.Context, userUUID string) (*domain.User, error) {
	user := &domain.User{}

	err := r.db.QueryRowContext(ctx, `
		SELECT uuid, email, is_active, is_shop_owner, created_at
		FROM users
		WHERE uuid = $1
	`, userUUID).Scan(&user.UUID, &user.Email, &user.IsActive, &user.IsShopOwner, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}

// MarkShopOwner flips the shop-owner flag, reporting whether the user exists.
// The flip is idempotent.
func (r *UserRepository) MarkShopOwner(ctx context.Context, userUUID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_shop_owner = TRUE
		WHERE uuid = $1
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
