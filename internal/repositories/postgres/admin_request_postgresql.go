package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

type adminRequestRepository struct {
	db *gorm.DB
}

func NewAdminRequestPostgreSQL(db *gorm.DB) repositories.AdminRequestRepository {
	return &adminRequestRepository{db: db}
}

func (r *adminRequestRepository) Create(ctx context.Context, tx *gorm.DB, req *models.AdminRequest) error {
	db := getDB(r.db, tx)
	if req.State == "" {
		req.State = models.RequestPending
	}
	if err := db.WithContext(ctx).Create(req).Error; err != nil {
		return handleDBError(err, "create admin request")
	}
	return nil
}

func (r *adminRequestRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.AdminRequest, error) {
	db := getDB(r.db, tx)
	var req models.AdminRequest
	if err := db.WithContext(ctx).
		Preload("Requester").
		Preload("Target").
		First(&req, id).Error; err != nil {
		return nil, handleDBError(err, "get admin request by id")
	}
	return &req, nil
}

func (r *adminRequestRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.AdminRequestFilters) ([]*models.AdminRequest, int64, error) {
	db := getDB(r.db, tx)
	var reqs []*models.AdminRequest
	var total int64

	query := db.WithContext(ctx).Model(&models.AdminRequest{})

	// Exact-match conjunctions only.
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.State != nil {
		query = query.Where("state = ?", *filters.State)
	}
	if filters.RequesterID != nil {
		query = query.Where("requester_id = ?", *filters.RequesterID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count admin requests")
	}

	query = applyPaginationAndSort(query, "created_at", "DESC", filters.Limit, filters.Offset)

	if err := query.Preload("Requester").Preload("Target").Find(&reqs).Error; err != nil {
		return nil, 0, handleDBError(err, "list admin requests")
	}

	return reqs, total, nil
}

func (r *adminRequestRepository) Update(ctx context.Context, tx *gorm.DB, req *models.AdminRequest) error {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).Save(req)
	if result.Error != nil {
		return handleDBError(result.Error, "update admin request")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update admin request")
	}
	return nil
}

func (r *adminRequestRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Delete(&models.AdminRequest{}, id).Error; err != nil {
		return handleDBError(err, "delete admin request")
	}
	return nil
}

func (r *adminRequestRepository) SetStateIfPending(ctx context.Context, tx *gorm.DB, id uint, newState models.AdminRequestState) (bool, error) {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).
		Model(&models.AdminRequest{}).
		Where("id = ? AND state = ?", id, models.RequestPending).
		Updates(map[string]interface{}{
			"state":      newState,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, handleDBError(result.Error, "transition admin request state")
	}
	return result.RowsAffected > 0, nil
}
