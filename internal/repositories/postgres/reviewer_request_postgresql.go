package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

type reviewerRequestRepository struct {
	db *gorm.DB
}

func NewReviewerRequestPostgreSQL(db *gorm.DB) repositories.ReviewerRequestRepository {
	return &reviewerRequestRepository{db: db}
}

func (r *reviewerRequestRepository) Create(ctx context.Context, tx *gorm.DB, req *models.ReviewerRequest) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(req).Error; err != nil {
		return handleDBError(err, "create reviewer request")
	}
	return nil
}

func (r *reviewerRequestRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ReviewerRequest, error) {
	db := getDB(r.db, tx)
	var req models.ReviewerRequest
	if err := db.WithContext(ctx).
		Preload("Requester").
		Preload("Instructor").
		First(&req, id).Error; err != nil {
		return nil, handleDBError(err, "get reviewer request by id")
	}
	return &req, nil
}

func (r *reviewerRequestRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.ReviewerRequestFilters) ([]*models.ReviewerRequest, int64, error) {
	db := getDB(r.db, tx)
	var reqs []*models.ReviewerRequest
	var total int64

	query := db.WithContext(ctx).Model(&models.ReviewerRequest{})

	if filters.RequesterID != nil {
		query = query.Where("requester_id = ?", *filters.RequesterID)
	}
	if filters.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filters.InstructorID)
	}
	if filters.Pending != nil {
		if *filters.Pending {
			query = query.Where("status IS NULL")
		} else {
			query = query.Where("status IS NOT NULL")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count reviewer requests")
	}

	query = applyPaginationAndSort(query, "created_at", "DESC", filters.Limit, filters.Offset)

	if err := query.Preload("Requester").Preload("Instructor").Find(&reqs).Error; err != nil {
		return nil, 0, handleDBError(err, "list reviewer requests")
	}

	return reqs, total, nil
}

func (r *reviewerRequestRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Delete(&models.ReviewerRequest{}, id).Error; err != nil {
		return handleDBError(err, "delete reviewer request")
	}
	return nil
}

func (r *reviewerRequestRepository) SetStatusIfPending(ctx context.Context, tx *gorm.DB, id uint, approved bool) (bool, error) {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).
		Model(&models.ReviewerRequest{}).
		Where("id = ? AND status IS NULL", id).
		Updates(map[string]interface{}{
			"status":     approved,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, handleDBError(result.Error, "transition reviewer request status")
	}
	return result.RowsAffected > 0, nil
}
