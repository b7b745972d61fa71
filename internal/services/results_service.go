package services

import (
	"context"

	"live-poll/internal/aggregate"
	"live-poll/internal/repository"
)

type ResultsService struct {
	store *repository.Store
}

func NewResultsService(store *repository.Store) *ResultsService {
	return &ResultsService{store: store}
}

// Current aggregates the full response collection for the active question.
// With nothing active the result is empty with a zero total.
func (s *ResultsService) Current(ctx context.Context) (aggregate.Result, error) {
	q, err := resolveActive(ctx, s.store)
	if err != nil {
		return aggregate.Result{}, err
	}
	if q == nil {
		return aggregate.Result{}, nil
	}

	all, err := s.store.Responses.ListAll(ctx)
	if err != nil {
		return aggregate.Result{}, err
	}
	return aggregate.Compute(q, all), nil
}
