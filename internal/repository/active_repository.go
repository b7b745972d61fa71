package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"live-poll/internal/domain/active"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresActiveRepository struct {
	db *gorm.DB
}

func NewActiveRepository(db *gorm.DB) ActiveRepository {
	return &PostgresActiveRepository{db: db}
}

func (r *PostgresActiveRepository) Get(ctx context.Context) (active.Pointer, error) {
	var rec activeRecord
	err := r.db.WithContext(ctx).Where("id = ?", active.DocumentID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return active.Pointer{}, nil
		}
		return active.Pointer{}, fmt.Errorf("get active pointer: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *PostgresActiveRepository) Set(ctx context.Context, questionID string) error {
	return r.write(ctx, &questionID)
}

func (r *PostgresActiveRepository) Clear(ctx context.Context) error {
	return r.write(ctx, nil)
}

// write overwrites the singleton row; last writer wins.
func (r *PostgresActiveRepository) write(ctx context.Context, questionID *string) error {
	rec := activeRecord{
		ID:         active.DocumentID,
		QuestionID: questionID,
		UpdatedAt:  time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"question_id", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("write active pointer: %w", err)
	}
	return nil
}
