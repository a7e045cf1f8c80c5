package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

type readMessageRepository struct {
	db *gorm.DB
}

func NewReadMessagePostgreSQL(db *gorm.DB) repositories.ReadMessageRepository {
	return &readMessageRepository{db: db}
}

func (r *readMessageRepository) Mark(ctx context.Context, tx *gorm.DB, userID, messageID uint) error {
	db := getDB(r.db, tx)
	marker := models.ReadMessage{UserID: userID, MessageID: messageID, ReadAt: time.Now()}
	// Marking twice is idempotent.
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&marker).Error
	if err != nil {
		return handleDBError(err, "mark message read")
	}
	return nil
}

func (r *readMessageRepository) GetByKey(ctx context.Context, tx *gorm.DB, userID, messageID uint) (*models.ReadMessage, error) {
	db := getDB(r.db, tx)
	var marker models.ReadMessage
	err := db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		First(&marker).Error
	if err != nil {
		return nil, handleDBError(err, "get read marker by key")
	}
	return &marker, nil
}

func (r *readMessageRepository) GetByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.ReadMessage, error) {
	db := getDB(r.db, tx)
	var markers []*models.ReadMessage
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("message_id ASC").
		Find(&markers).Error
	if err != nil {
		return nil, handleDBError(err, "get read markers by user")
	}
	return markers, nil
}

func (r *readMessageRepository) DeleteByKey(ctx context.Context, tx *gorm.DB, userID, messageID uint) error {
	db := getDB(r.db, tx)
	err := db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Delete(&models.ReadMessage{}).Error
	if err != nil {
		return handleDBError(err, "delete read marker by key")
	}
	return nil
}

// GetByID is not meaningful for the composite-key read_messages table.
func (r *readMessageRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ReadMessage, error) {
	return nil, repositories.ErrUnsupported
}

// Delete by single id is not meaningful for the composite-key read_messages table.
func (r *readMessageRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return repositories.ErrUnsupported
}
