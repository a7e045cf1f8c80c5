package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

type reportService struct {
	repo    repositories.Repository
	db      *gorm.DB
	ratings RatingService
	logger  *slog.Logger
}

func NewReportService(repo repositories.Repository, db *gorm.DB, ratings RatingService, logger *slog.Logger) ReportService {
	return &reportService{
		repo:    repo,
		db:      db,
		ratings: ratings,
		logger:  logger,
	}
}

// ExportRatings renders every reviewer's aggregated rating as an xlsx
// workbook. Restricted to admins and instructors.
func (s *reportService) ExportRatings(ctx context.Context, actor *models.User) ([]byte, error) {
	if !actor.Roles.HasAny(models.RoleAdmin, models.RoleInstructor) {
		return nil, NewPermissionError(actor.ID, 0, "report", "export_ratings", "admin or instructor role required")
	}

	reviewerRole := models.RoleReviewer
	reviewers, _, err := s.repo.User().List(ctx, nil, repositories.UserFilters{
		Role:  &reviewerRole,
		Limit: 1000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reviewers: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Reviewer Ratings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "User Name", "Full Name", "Rating", "Lists"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, reviewer := range reviewers {
		rating, err := s.ratings.GetRating(ctx, reviewer.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to rate reviewer %d: %w", reviewer.ID, err)
		}

		fullName := ""
		if reviewer.FullName != nil {
			fullName = *reviewer.FullName
		}
		values := []interface{}{reviewer.ID, reviewer.UserName, fullName, rating.Rating, rating.ListCount}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("Ratings exported", "actor_id", actor.ID, "reviewer_count", len(reviewers))
	return buf.Bytes(), nil
}
