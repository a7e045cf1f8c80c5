package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

type inviteRepository struct {
	db *gorm.DB
}

func NewInvitePostgreSQL(db *gorm.DB) repositories.InviteRepository {
	return &inviteRepository{db: db}
}

func (r *inviteRepository) Create(ctx context.Context, tx *gorm.DB, inv *models.Invite) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(inv).Error; err != nil {
		return handleDBError(err, "create invite")
	}
	return nil
}

func (r *inviteRepository) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*models.Invite, error) {
	db := getDB(r.db, tx)
	var inv models.Invite
	if err := db.WithContext(ctx).Where("code = ?", code).First(&inv).Error; err != nil {
		return nil, handleDBError(err, "get invite by code")
	}
	return &inv, nil
}

func (r *inviteRepository) GetAll(ctx context.Context, tx *gorm.DB) ([]*models.Invite, error) {
	db := getDB(r.db, tx)
	var invs []*models.Invite
	if err := db.WithContext(ctx).Order("id DESC").Find(&invs).Error; err != nil {
		return nil, handleDBError(err, "get all invites")
	}
	return invs, nil
}

func (r *inviteRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Delete(&models.Invite{}, id).Error; err != nil {
		return handleDBError(err, "delete invite")
	}
	return nil
}

func (r *inviteRepository) ConsumeIfUnused(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).
		Model(&models.Invite{}).
		Where("id = ? AND is_used = false", id).
		Update("is_used", true)
	if result.Error != nil {
		return false, handleDBError(result.Error, "consume invite")
	}
	return result.RowsAffected > 0, nil
}
