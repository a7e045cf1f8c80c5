package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessagePostgreSQL(db *gorm.DB) repositories.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, tx *gorm.DB, msg *models.Message) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(msg).Error; err != nil {
		return handleDBError(err, "create message")
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Message, error) {
	db := getDB(r.db, tx)
	var msg models.Message
	if err := db.WithContext(ctx).Preload("Author").First(&msg, id).Error; err != nil {
		return nil, handleDBError(err, "get message by id")
	}
	return &msg, nil
}

func (r *messageRepository) GetAll(ctx context.Context, tx *gorm.DB) ([]*models.Message, error) {
	db := getDB(r.db, tx)
	var msgs []*models.Message
	if err := db.WithContext(ctx).Order("created_at DESC").Find(&msgs).Error; err != nil {
		return nil, handleDBError(err, "get all messages")
	}
	return msgs, nil
}

func (r *messageRepository) Update(ctx context.Context, tx *gorm.DB, msg *models.Message) error {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).Save(msg)
	if result.Error != nil {
		return handleDBError(result.Error, "update message")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update message")
	}
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(r.db, tx)
	// The schema cascades from messages to the owning question/answer/
	// private-message/announcement/staff-message row.
	if err := db.WithContext(ctx).Delete(&models.Message{}, id).Error; err != nil {
		return handleDBError(err, "delete message")
	}
	return nil
}
