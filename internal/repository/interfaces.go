package repository

import (
	"context"

	"live-poll/internal/domain/active"
	"live-poll/internal/domain/question"
	"live-poll/internal/domain/response"
)

type QuestionRepository interface {
	// Create assigns the ID when q.ID is empty.
	Create(ctx context.Context, q *question.Question) error
	GetByID(ctx context.Context, id string) (question.Question, error)
	Update(ctx context.Context, q question.Question) error
	Delete(ctx context.Context, id string) error
	// List returns every question, newest first.
	List(ctx context.Context) ([]question.Question, error)
}

// ActiveRepository stores the singleton active pointer. Get on a missing
// document returns an empty Pointer and no error.
type ActiveRepository interface {
	Get(ctx context.Context) (active.Pointer, error)
	Set(ctx context.Context, questionID string) error
	Clear(ctx context.Context) error
}

type ResponseRepository interface {
	// Upsert writes the response under its deterministic ID, replacing any
	// earlier document with the same ID.
	Upsert(ctx context.Context, r response.Response) error
	GetByID(ctx context.Context, id string) (response.Response, error)
	ListAll(ctx context.Context) ([]response.Response, error)
}

// Store bundles the three collections behind one backend.
type Store struct {
	Questions QuestionRepository
	Active    ActiveRepository
	Responses ResponseRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
