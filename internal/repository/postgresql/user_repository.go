package postgresql

import (
	"context"
	"fmt"

	entity "game-exchange/internal/domain"
	"game-exchange/internal/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository persists users through gorm.
type UserRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewUserRepository scopes the logger to the repository.
func NewUserRepository(db *gorm.DB, baseLog *logger.Logger) *UserRepository {
	return &UserRepository{db: db, log: baseLog.With("repo", "UserRepository")}
}

// CreateUser inserts a user. A taken email maps to a conflict.
func (r *UserRepository) CreateUser(ctx context.Context, user *entity.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return mapError("user", err)
	}
	return nil
}

// GetUser loads one user by id.
func (r *UserRepository) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, mapError(fmt.Sprintf("user %s", id), err)
	}
	return &user, nil
}

// ListUsers returns every user, oldest first.
func (r *UserRepository) ListUsers(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&users).Error; err != nil {
		return nil, mapError("users", err)
	}
	return users, nil
}

// UpdateUser writes name, email and address of an existing user.
func (r *UserRepository) UpdateUser(ctx context.Context, user *entity.User) error {
	res := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"name":    user.Name,
			"email":   user.Email,
			"address": user.Address,
		})
	if res.Error != nil {
		return mapError("user", res.Error)
	}
	if res.RowsAffected == 0 {
		return entity.NotFoundError(fmt.Sprintf("user %s not found", user.ID))
	}
	return nil
}
