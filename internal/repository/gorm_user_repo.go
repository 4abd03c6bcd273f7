package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/domain"
)

// GormUserRepository implements UserRepository as a read-only view over
// the platform users table.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByID retrieves a user by ID. Soft-deleted accounts are not found.
func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var model domain.UserModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// GetByIDs resolves a batch of user IDs in one query. IDs that do not
// resolve (unknown or deleted accounts) are absent from the result.
func (r *GormUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	users := make(map[string]*domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var models []domain.UserModel
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	for i := range models {
		users[models[i].ID] = models[i].ToDomain()
	}
	return users, nil
}
