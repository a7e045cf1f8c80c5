package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

// getDB prefers the caller's transaction handle over the pooled connection.
func getDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// handleDBError maps driver misses onto the repository error taxonomy and
// wraps everything else as a storage failure.
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", operation, repositories.ErrNotFound)
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}

// applyPaginationAndSort whitelists sort columns before interpolating them.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"id":         true,
		"title":      true,
		"state":      true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
