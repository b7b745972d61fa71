package repository

import (
	"context"
	"errors"
	"fmt"

	"live-poll/internal/domain/response"
	poll_errors "live-poll/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresResponseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &PostgresResponseRepository{db: db}
}

func (r *PostgresResponseRepository) Upsert(ctx context.Context, resp response.Response) error {
	rec := toResponseRecord(resp)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("upsert response: %w", err)
	}
	return nil
}

func (r *PostgresResponseRepository) GetByID(ctx context.Context, id string) (response.Response, error) {
	var rec responseRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Response{}, poll_errors.ErrNotFound
		}
		return response.Response{}, fmt.Errorf("get response: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *PostgresResponseRepository) ListAll(ctx context.Context) ([]response.Response, error) {
	var recs []responseRecord
	if err := r.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return responsesToDomain(recs), nil
}

func responsesToDomain(recs []responseRecord) []response.Response {
	out := make([]response.Response, len(recs))
	for i, rec := range recs {
		out[i] = rec.toDomain()
	}
	return out
}
