package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"live-poll/internal/domain/question"
	poll_errors "live-poll/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresQuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &PostgresQuestionRepository{db: db}
}

func (r *PostgresQuestionRepository) Create(ctx context.Context, q *question.Question) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = q.CreatedAt
	}
	rec := toQuestionRecord(*q)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isDuplicate(err) {
			return poll_errors.ErrAlreadyExists
		}
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

func (r *PostgresQuestionRepository) GetByID(ctx context.Context, id string) (question.Question, error) {
	var rec questionRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return question.Question{}, poll_errors.ErrNotFound
		}
		return question.Question{}, fmt.Errorf("get question: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *PostgresQuestionRepository) Update(ctx context.Context, q question.Question) error {
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = time.Now().UTC()
	}
	rec := toQuestionRecord(q)
	res := r.db.WithContext(ctx).
		Model(&questionRecord{}).
		Where("id = ?", q.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&rec)
	if res.Error != nil {
		return fmt.Errorf("update question: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return poll_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresQuestionRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&questionRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete question: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return poll_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresQuestionRepository) List(ctx context.Context) ([]question.Question, error) {
	var recs []questionRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	out := make([]question.Question, len(recs))
	for i, rec := range recs {
		out[i] = rec.toDomain()
	}
	return out, nil
}
