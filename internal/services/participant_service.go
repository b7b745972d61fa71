package services

import (
	"context"
	"strings"
	"time"

	"live-poll/internal/domain/question"
	"live-poll/internal/domain/response"
	"live-poll/internal/repository"
	poll_errors "live-poll/pkg/errors"
	"live-poll/pkg/logger"

	"go.uber.org/zap"
)

type ParticipantState string

const (
	StateNoActiveQuestion ParticipantState = "no_active_question"
	StateQuestionLoaded   ParticipantState = "question_loaded"
	StateSubmitted        ParticipantState = "submitted"
)

type ParticipantView struct {
	State        ParticipantState
	Question     *question.Question
	Response     *response.Response
	Employees    []string
	RatingLabels []string
}

// SubmitInput is one participant answer. Statement is the 1-based index of
// the chosen Truth statement; 0 means nothing was chosen.
type SubmitInput struct {
	QuestionID string
	Statement  int
	Employee   string
	Ratings    []int
}

type ParticipantService struct {
	store     *repository.Store
	events    *EventPublisher
	employees []string
	logger    *logger.Logger
	now       func() time.Time
}

func NewParticipantService(store *repository.Store, events *EventPublisher, employees []string, l *logger.Logger) *ParticipantService {
	if l == nil {
		l = logger.NewNop()
	}
	return &ParticipantService{
		store:     store,
		events:    events,
		employees: employees,
		logger:    l,
		now:       time.Now,
	}
}

func (s *ParticipantService) Employees() []string {
	return s.employees
}

// View evaluates the participant state machine for clientID against the
// current store contents.
func (s *ParticipantService) View(ctx context.Context, clientID string) (ParticipantView, error) {
	view := ParticipantView{
		State:        StateNoActiveQuestion,
		Employees:    s.employees,
		RatingLabels: question.RatingLabels,
	}

	q, err := resolveActive(ctx, s.store)
	if err != nil {
		return view, err
	}
	if q == nil {
		return view, nil
	}
	view.Question = q
	view.State = StateQuestionLoaded

	if clientID == "" {
		return view, nil
	}
	r, err := s.store.Responses.GetByID(ctx, response.DocumentID(q.ID, clientID))
	if err != nil {
		if isNotFound(err) {
			return view, nil
		}
		return view, err
	}
	view.State = StateSubmitted
	view.Response = &r
	return view, nil
}

// Submit validates the answer against the active question and writes the
// client's single response document.
func (s *ParticipantService) Submit(ctx context.Context, clientID string, in SubmitInput) (ParticipantView, error) {
	if clientID == "" {
		return ParticipantView{}, poll_errors.ErrUnauthorized
	}

	view, err := s.View(ctx, clientID)
	if err != nil {
		return view, err
	}
	switch {
	case view.State == StateNoActiveQuestion:
		return view, poll_errors.ErrNoActiveQuestion
	case in.QuestionID != "" && in.QuestionID != view.Question.ID:
		return view, poll_errors.ErrQuestionChanged
	case view.State == StateSubmitted:
		return view, poll_errors.ErrAlreadySubmitted
	}

	q := view.Question
	ratings, employee, err := s.validateAnswer(q, in)
	if err != nil {
		return view, err
	}

	r := response.New(q.ID, clientID, ratings, employee, s.now().UTC())
	if err := s.store.Responses.Upsert(ctx, r); err != nil {
		return view, err
	}
	s.events.ResponseWritten(ctx, q.ID, clientID)

	s.logger.WithContext(ctx).Info("response submitted",
		zap.String("question_id", q.ID),
		zap.String("kind", string(q.Kind())),
	)

	view.State = StateSubmitted
	view.Response = &r
	return view, nil
}

func (s *ParticipantService) validateAnswer(q *question.Question, in SubmitInput) ([]int, string, error) {
	switch p := q.Payload.(type) {
	case question.Truth:
		if in.Statement < 1 || in.Statement > len(p.Statements) {
			return nil, "", poll_errors.NewValidationError("statement", "Please select a statement.")
		}
		return []int{in.Statement}, "", nil

	case question.Meme:
		employee := strings.TrimSpace(in.Employee)
		if employee == "" || !s.isEmployee(employee) {
			return nil, "", poll_errors.NewValidationError("employee", "Please select an employee.")
		}
		return nil, employee, nil

	case question.Info:
		return nil, "", nil

	case question.Rating:
		var missing []int
		ratings := make([]int, len(p.Options))
		for i := range p.Options {
			if i >= len(in.Ratings) || in.Ratings[i] < question.MinRating || in.Ratings[i] > question.MaxRating {
				missing = append(missing, i)
				continue
			}
			ratings[i] = in.Ratings[i]
		}
		if len(missing) > 0 {
			v := poll_errors.NewValidationError("ratings", "Please rate every option.")
			v.MissingIndices = missing
			return nil, "", v
		}
		return ratings, "", nil
	}
	return nil, "", poll_errors.ErrInvalidInput
}

func (s *ParticipantService) isEmployee(name string) bool {
	for _, e := range s.employees {
		if e == name {
			return true
		}
	}
	return false
}
