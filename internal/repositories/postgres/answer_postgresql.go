package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(ctx context.Context, tx *gorm.DB, a *models.Answer) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return handleDBError(err, "create answer")
	}
	return nil
}

func (r *answerRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error) {
	db := getDB(r.db, tx)
	var a models.Answer
	if err := db.WithContext(ctx).
		Preload("Message").
		Preload("Message.Author").
		First(&a, id).Error; err != nil {
		return nil, handleDBError(err, "get answer by id")
	}
	return &a, nil
}

func (r *answerRepository) GetByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.Answer, error) {
	db := getDB(r.db, tx)
	var answers []*models.Answer
	err := db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Preload("Message").
		Preload("Message.Author").
		Order("is_pinned DESC, id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, handleDBError(err, "get answers by question")
	}
	return answers, nil
}

func (r *answerRepository) Update(ctx context.Context, tx *gorm.DB, a *models.Answer) error {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).Save(a)
	if result.Error != nil {
		return handleDBError(result.Error, "update answer")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update answer")
	}
	return nil
}

func (r *answerRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Delete(&models.Answer{}, id).Error; err != nil {
		return handleDBError(err, "delete answer")
	}
	return nil
}

func (r *answerRepository) UnpinAllForQuestion(ctx context.Context, tx *gorm.DB, questionID uint) error {
	db := getDB(r.db, tx)
	err := db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("question_id = ? AND is_pinned = true", questionID).
		Update("is_pinned", false).Error
	if err != nil {
		return handleDBError(err, "unpin answers for question")
	}
	return nil
}

func (r *answerRepository) SetPinned(ctx context.Context, tx *gorm.DB, answerID uint, pinned bool) error {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("id = ?", answerID).
		Update("is_pinned", pinned)
	if result.Error != nil {
		return handleDBError(result.Error, "set answer pinned")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "set answer pinned")
	}
	return nil
}
