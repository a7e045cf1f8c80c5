package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(q).Error; err != nil {
		return handleDBError(err, "create question")
	}
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := getDB(r.db, tx)
	var q models.Question
	if err := db.WithContext(ctx).
		Preload("Message").
		Preload("Message.Author").
		First(&q, id).Error; err != nil {
		return nil, handleDBError(err, "get question by id")
	}
	return &q, nil
}

func (r *questionRepository) GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := getDB(r.db, tx)
	var q models.Question
	if err := db.WithContext(ctx).
		Preload("Message").
		Preload("Message.Author").
		Preload("Answers").
		Preload("Answers.Message").
		First(&q, id).Error; err != nil {
		return nil, handleDBError(err, "get question with answers")
	}
	return &q, nil
}

func (r *questionRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	db := getDB(r.db, tx)
	var questions []*models.Question
	var total int64

	query := db.WithContext(ctx).
		Model(&models.Question{}).
		Joins("INNER JOIN messages ON messages.id = questions.message_id")

	if filters.UserID != nil {
		query = query.Where("messages.user_id = ?", *filters.UserID)
	}
	if filters.Resolved != nil {
		query = query.Where("questions.is_resolved = ?", *filters.Resolved)
	}
	if filters.DateFrom != nil {
		query = query.Where("messages.created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("messages.created_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count questions")
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Message").Preload("Message.Author").Find(&questions).Error; err != nil {
		return nil, 0, handleDBError(err, "list questions")
	}

	return questions, total, nil
}

func (r *questionRepository) Update(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).Save(q)
	if result.Error != nil {
		return handleDBError(result.Error, "update question")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update question")
	}
	return nil
}

func (r *questionRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Delete(&models.Question{}, id).Error; err != nil {
		return handleDBError(err, "delete question")
	}
	return nil
}
