package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

type oneTimePasswordRepository struct {
	db *gorm.DB
}

func NewOneTimePasswordPostgreSQL(db *gorm.DB) repositories.OneTimePasswordRepository {
	return &oneTimePasswordRepository{db: db}
}

func (r *oneTimePasswordRepository) Create(ctx context.Context, tx *gorm.DB, otp *models.OneTimePassword) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(otp).Error; err != nil {
		return handleDBError(err, "create one-time password")
	}
	return nil
}

func (r *oneTimePasswordRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.OneTimePassword, error) {
	db := getDB(r.db, tx)
	var otp models.OneTimePassword
	if err := db.WithContext(ctx).First(&otp, id).Error; err != nil {
		return nil, handleDBError(err, "get one-time password by id")
	}
	return &otp, nil
}

func (r *oneTimePasswordRepository) GetActiveByTarget(ctx context.Context, tx *gorm.DB, targetID uint) ([]*models.OneTimePassword, error) {
	db := getDB(r.db, tx)
	var otps []*models.OneTimePassword
	err := db.WithContext(ctx).
		Where("target_id = ? AND is_used = false", targetID).
		Order("id DESC").
		Find(&otps).Error
	if err != nil {
		return nil, handleDBError(err, "get active one-time passwords")
	}
	return otps, nil
}

func (r *oneTimePasswordRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Delete(&models.OneTimePassword{}, id).Error; err != nil {
		return handleDBError(err, "delete one-time password")
	}
	return nil
}

// ConsumeIfUnused closes the double-redemption race: the conditional update
// is the only check-and-mark step, so two concurrent redeemers cannot both
// observe an unused row.
func (r *oneTimePasswordRepository) ConsumeIfUnused(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).
		Model(&models.OneTimePassword{}).
		Where("id = ? AND is_used = false", id).
		Update("is_used", true)
	if result.Error != nil {
		return false, handleDBError(result.Error, "consume one-time password")
	}
	return result.RowsAffected > 0, nil
}
