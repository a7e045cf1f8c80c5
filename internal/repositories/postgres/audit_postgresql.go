package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

type auditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogPostgreSQL(db *gorm.DB) repositories.AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Append(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(entry).Error; err != nil {
		return handleDBError(err, "append audit log")
	}
	return nil
}

func (r *auditLogRepository) GetByActor(ctx context.Context, tx *gorm.DB, actorID uint, limit int) ([]*models.AuditLog, error) {
	db := getDB(r.db, tx)
	var entries []*models.AuditLog
	query := db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, handleDBError(err, "get audit log by actor")
	}
	return entries, nil
}
