package database

import (
	"context"
	"fmt"
	"log"

	"live-poll/internal/domain/question"
	"live-poll/internal/repository"
)

// SeedResult holds the result of the seeding operation
type SeedResult struct {
	Questions []question.Question
	ActiveID  string
}

// sampleQuestions covers every kind so each view can be exercised locally.
func sampleQuestions() []question.Question {
	return []question.Question{
		{Domain: question.DomainTruth, Payload: question.Truth{Statements: []string{
			"I have run a marathon",
			"I have never seen snow",
			"I once met a president",
		}}},
		{Domain: question.DomainInfo, Payload: question.Info{
			Title:       "Welcome",
			Description: "Grab a coffee, the poll starts in five minutes.",
		}},
		{Domain: "HR", Payload: question.Rating{
			Text:    "How useful were these sessions?",
			Options: []string{"Onboarding", "Benefits overview", "Career paths"},
		}},
		{Domain: "Finance", Payload: question.Rating{
			Text:    "Rate the quarterly updates",
			Options: []string{"Budget review", "Forecast"},
		}},
	}
}

// SeedDevelopment writes the sample questions and activates the last one.
func SeedDevelopment(ctx context.Context, store *repository.Store) (*SeedResult, error) {
	log.Println("Starting database seeding...")

	result := &SeedResult{}
	for _, q := range sampleQuestions() {
		if err := store.Questions.Create(ctx, &q); err != nil {
			return nil, fmt.Errorf("failed to seed question %s: %w", q.Domain, err)
		}
		result.Questions = append(result.Questions, q)
	}

	last := result.Questions[len(result.Questions)-1]
	if err := store.Active.Set(ctx, last.ID); err != nil {
		return nil, fmt.Errorf("failed to activate seeded question: %w", err)
	}
	result.ActiveID = last.ID
	return result, nil
}
