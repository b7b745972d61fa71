package services

import (
	"context"

	"live-poll/internal/domain/question"
	"live-poll/internal/events"
	"live-poll/internal/repository"
	"live-poll/pkg/logger"

	"go.uber.org/zap"
)

// EventPublisher announces store writes on the change bus. The store is the
// source of truth, so a failed publish is logged and the write still counts.
type EventPublisher struct {
	bus    events.Publisher
	logger *logger.Logger
}

func NewEventPublisher(bus events.Publisher, l *logger.Logger) *EventPublisher {
	if l == nil {
		l = logger.NewNop()
	}
	return &EventPublisher{bus: bus, logger: l}
}

func (p *EventPublisher) publish(ctx context.Context, change events.Change) {
	if p == nil || p.bus == nil {
		return
	}
	if err := p.bus.Publish(ctx, change); err != nil {
		p.logger.WithContext(ctx).Warn("failed to publish change",
			zap.String("type", change.Type),
			zap.String("question_id", change.QuestionID),
			zap.Error(err),
		)
	}
}

func (p *EventPublisher) ActiveChanged(ctx context.Context, questionID string) {
	p.publish(ctx, events.NewChange(events.TypeActiveChanged, questionID))
}

func (p *EventPublisher) QuestionCreated(ctx context.Context, questionID string) {
	p.publish(ctx, events.NewChange(events.TypeQuestionCreated, questionID))
}

func (p *EventPublisher) QuestionUpdated(ctx context.Context, questionID string) {
	p.publish(ctx, events.NewChange(events.TypeQuestionUpdated, questionID))
}

func (p *EventPublisher) QuestionDeleted(ctx context.Context, questionID string) {
	p.publish(ctx, events.NewChange(events.TypeQuestionDeleted, questionID))
}

func (p *EventPublisher) ResponseWritten(ctx context.Context, questionID, clientID string) {
	change := events.NewChange(events.TypeResponseWritten, questionID)
	change.ClientID = clientID
	p.publish(ctx, change)
}

// resolveActive follows the active pointer. A null pointer or a pointer to
// a deleted question both resolve to nil without error.
func resolveActive(ctx context.Context, store *repository.Store) (*question.Question, error) {
	p, err := store.Active.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !p.IsActive() {
		return nil, nil
	}
	q, err := store.Questions.GetByID(ctx, p.QuestionID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}
