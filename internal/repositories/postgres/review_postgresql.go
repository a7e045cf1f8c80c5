package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewPostgreSQL(db *gorm.DB) repositories.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(review).Error; err != nil {
		return handleDBError(err, "create review")
	}
	return nil
}

func (r *reviewRepository) GetByKey(ctx context.Context, tx *gorm.DB, reviewerID, userID uint) (*models.Review, error) {
	db := getDB(r.db, tx)
	var review models.Review
	err := db.WithContext(ctx).
		Where("reviewer_id = ? AND user_id = ?", reviewerID, userID).
		First(&review).Error
	if err != nil {
		return nil, handleDBError(err, "get review by key")
	}
	return &review, nil
}

func (r *reviewRepository) GetByReviewer(ctx context.Context, tx *gorm.DB, reviewerID uint) ([]*models.Review, error) {
	db := getDB(r.db, tx)
	var reviews []*models.Review
	err := db.WithContext(ctx).
		Where("reviewer_id = ?", reviewerID).
		Order("user_id ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, handleDBError(err, "get reviews by reviewer")
	}
	return reviews, nil
}

func (r *reviewRepository) GetByOwner(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.Review, error) {
	db := getDB(r.db, tx)
	var reviews []*models.Review
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("rating ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, handleDBError(err, "get reviews by owner")
	}
	return reviews, nil
}

func (r *reviewRepository) Update(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).
		Model(&models.Review{}).
		Where("reviewer_id = ? AND user_id = ?", review.ReviewerID, review.UserID).
		Updates(map[string]interface{}{
			"rating":     review.Rating,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return handleDBError(result.Error, "update review")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update review")
	}
	return nil
}

func (r *reviewRepository) DeleteByKey(ctx context.Context, tx *gorm.DB, reviewerID, userID uint) error {
	db := getDB(r.db, tx)
	err := db.WithContext(ctx).
		Where("reviewer_id = ? AND user_id = ?", reviewerID, userID).
		Delete(&models.Review{}).Error
	if err != nil {
		return handleDBError(err, "delete review by key")
	}
	return nil
}

func (r *reviewRepository) CountByOwner(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	db := getDB(r.db, tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Review{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, handleDBError(err, "count reviews by owner")
	}
	return count, nil
}

// GetByID is not meaningful for the composite-key reviews table.
func (r *reviewRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Review, error) {
	return nil, repositories.ErrUnsupported
}

// Delete by single id is not meaningful for the composite-key reviews table.
func (r *reviewRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return repositories.ErrUnsupported
}
