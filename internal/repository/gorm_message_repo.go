package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/domain"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Append persists a new message. ID is assigned here; Seq and CreatedAt
// are assigned by the database at insert.
func (r *GormMessageRepository) Append(ctx context.Context, msg *domain.Message) error {
	msg.ID = uuid.New().String()
	msg.Read = false

	model := domain.MessageToModel(msg)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}

	msg.Seq = model.Seq
	msg.CreatedAt = model.CreatedAt
	return nil
}

// GetByID retrieves a message by its public identifier.
func (r *GormMessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	var model domain.MessageModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// FindBetween returns all messages between the unordered pair {userA, userB}
// ordered by created_at with the insert sequence as tie-break.
func (r *GormMessageRepository) FindBetween(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	var models []domain.MessageModel
	result := r.db.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC, seq ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toDomainMessages(models), nil
}

// ListByUser returns all messages the user sent or received, in
// transcript order.
func (r *GormMessageRepository) ListByUser(ctx context.Context, userID string) ([]domain.Message, error) {
	var models []domain.MessageModel
	result := r.db.WithContext(ctx).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at ASC, seq ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	return toDomainMessages(models), nil
}

// MarkRead flags all unread messages from fromUserID to toUserID as read.
func (r *GormMessageRepository) MarkRead(ctx context.Context, toUserID, fromUserID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.MessageModel{}).
		Where("to_user_id = ? AND from_user_id = ? AND is_read = ?", toUserID, fromUserID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteByID hard-deletes a message by its public identifier.
func (r *GormMessageRepository) DeleteByID(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.MessageModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func toDomainMessages(models []domain.MessageModel) []domain.Message {
	messages := make([]domain.Message, 0, len(models))
	for i := range models {
		messages = append(messages, *models[i].ToDomain())
	}
	return messages
}
