package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

// Private messages, announcements and staff messages share the same thin
// ownership shape over a message row, so their repositories live together.

type privateMessageRepository struct {
	db *gorm.DB
}

func NewPrivateMessagePostgreSQL(db *gorm.DB) repositories.PrivateMessageRepository {
	return &privateMessageRepository{db: db}
}

func (r *privateMessageRepository) Create(ctx context.Context, tx *gorm.DB, pm *models.PrivateMessage) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(pm).Error; err != nil {
		return handleDBError(err, "create private message")
	}
	return nil
}

func (r *privateMessageRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PrivateMessage, error) {
	db := getDB(r.db, tx)
	var pm models.PrivateMessage
	if err := db.WithContext(ctx).
		Preload("Message").
		Preload("Message.Author").
		First(&pm, id).Error; err != nil {
		return nil, handleDBError(err, "get private message by id")
	}
	return &pm, nil
}

func (r *privateMessageRepository) GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.PrivateMessage, error) {
	db := getDB(r.db, tx)
	var pms []*models.PrivateMessage
	err := db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Preload("Message").
		Preload("Message.Author").
		Order("id ASC").
		Find(&pms).Error
	if err != nil {
		return nil, handleDBError(err, "get private messages by question")
	}
	return pms, nil
}

func (r *privateMessageRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Delete(&models.PrivateMessage{}, id).Error; err != nil {
		return handleDBError(err, "delete private message")
	}
	return nil
}

type announcementRepository struct {
	db *gorm.DB
}

func NewAnnouncementPostgreSQL(db *gorm.DB) repositories.AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(ctx context.Context, tx *gorm.DB, a *models.Announcement) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return handleDBError(err, "create announcement")
	}
	return nil
}

func (r *announcementRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Announcement, error) {
	db := getDB(r.db, tx)
	var a models.Announcement
	if err := db.WithContext(ctx).
		Preload("Message").
		Preload("Message.Author").
		First(&a, id).Error; err != nil {
		return nil, handleDBError(err, "get announcement by id")
	}
	return &a, nil
}

func (r *announcementRepository) GetAll(ctx context.Context, tx *gorm.DB) ([]*models.Announcement, error) {
	db := getDB(r.db, tx)
	var as []*models.Announcement
	err := db.WithContext(ctx).
		Preload("Message").
		Preload("Message.Author").
		Order("id DESC").
		Find(&as).Error
	if err != nil {
		return nil, handleDBError(err, "get all announcements")
	}
	return as, nil
}

func (r *announcementRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Delete(&models.Announcement{}, id).Error; err != nil {
		return handleDBError(err, "delete announcement")
	}
	return nil
}

type staffMessageRepository struct {
	db *gorm.DB
}

func NewStaffMessagePostgreSQL(db *gorm.DB) repositories.StaffMessageRepository {
	return &staffMessageRepository{db: db}
}

func (r *staffMessageRepository) Create(ctx context.Context, tx *gorm.DB, sm *models.StaffMessage) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(sm).Error; err != nil {
		return handleDBError(err, "create staff message")
	}
	return nil
}

func (r *staffMessageRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StaffMessage, error) {
	db := getDB(r.db, tx)
	var sm models.StaffMessage
	if err := db.WithContext(ctx).
		Preload("Message").
		Preload("Message.Author").
		First(&sm, id).Error; err != nil {
		return nil, handleDBError(err, "get staff message by id")
	}
	return &sm, nil
}

func (r *staffMessageRepository) GetAll(ctx context.Context, tx *gorm.DB) ([]*models.StaffMessage, error) {
	db := getDB(r.db, tx)
	var sms []*models.StaffMessage
	err := db.WithContext(ctx).
		Preload("Message").
		Preload("Message.Author").
		Order("id DESC").
		Find(&sms).Error
	if err != nil {
		return nil, handleDBError(err, "get all staff messages")
	}
	return sms, nil
}

func (r *staffMessageRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Delete(&models.StaffMessage{}, id).Error; err != nil {
		return handleDBError(err, "delete staff message")
	}
	return nil
}
