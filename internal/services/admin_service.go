package services

import (
	"context"
	"io"
	"time"

	"live-poll/internal/domain/question"
	"live-poll/internal/repository"
	poll_errors "live-poll/pkg/errors"
	"live-poll/pkg/logger"

	"go.uber.org/zap"
)

type AdminService struct {
	store         *repository.Store
	events        *EventPublisher
	uploader      MediaUploader
	maxMediaBytes int64
	logger        *logger.Logger
}

func NewAdminService(store *repository.Store, events *EventPublisher, uploader MediaUploader, maxMediaBytes int64, l *logger.Logger) *AdminService {
	if l == nil {
		l = logger.NewNop()
	}
	return &AdminService{
		store:         store,
		events:        events,
		uploader:      uploader,
		maxMediaBytes: maxMediaBytes,
		logger:        l,
	}
}

// CreateQuestionInput carries the fields of every kind; only those of the
// kind selected by Domain are read.
type CreateQuestionInput struct {
	Domain string

	Media     io.Reader
	MediaName string
	Caption   string

	Statements []string

	Title       string
	Description string

	Text    string
	Options []string
}

type EditQuestionInput struct {
	Domain  string
	Text    string
	Options []string
}

// CreateAndActivate validates the input, uploads Meme media, stores the
// question and points the active pointer at it.
func (s *AdminService) CreateAndActivate(ctx context.Context, in CreateQuestionInput) (question.Question, error) {
	domain, err := question.ValidateDomain(in.Domain)
	if err != nil {
		return question.Question{}, err
	}

	payload, err := s.buildPayload(ctx, question.KindOf(domain), in)
	if err != nil {
		return question.Question{}, err
	}

	q := question.Question{Domain: domain, Payload: payload}
	if err := s.store.Questions.Create(ctx, &q); err != nil {
		return question.Question{}, err
	}
	s.events.QuestionCreated(ctx, q.ID)

	if err := s.store.Active.Set(ctx, q.ID); err != nil {
		return q, err
	}
	s.events.ActiveChanged(ctx, q.ID)

	s.logger.WithContext(ctx).Info("question created and activated",
		zap.String("question_id", q.ID),
		zap.String("kind", string(q.Kind())),
	)
	return q, nil
}

func (s *AdminService) buildPayload(ctx context.Context, kind question.Kind, in CreateQuestionInput) (question.Payload, error) {
	switch kind {
	case question.KindMeme:
		return s.uploadMeme(ctx, in)
	case question.KindTruth:
		return question.NewTruth(in.Statements)
	case question.KindInfo:
		return question.NewInfo(in.Title, in.Description)
	default:
		return question.NewRating(in.Text, in.Options)
	}
}

// uploadMeme enforces the size ceiling and media type before calling the
// uploader; an upload failure aborts creation.
func (s *AdminService) uploadMeme(ctx context.Context, in CreateQuestionInput) (question.Payload, error) {
	file, err := ReadMedia(in.Media, in.MediaName, s.maxMediaBytes)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, poll_errors.ErrServiceUnavailable
	}

	result, err := s.uploader.Upload(ctx, file)
	if err != nil {
		s.logger.WithContext(ctx).Error("media upload failed", zap.String("file", file.Name), zap.Error(err))
		return nil, err
	}
	return question.NewMeme(file.Type, result.URL, in.Caption)
}

func (s *AdminService) ActivateExisting(ctx context.Context, id string) error {
	if _, err := s.store.Questions.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.Active.Set(ctx, id); err != nil {
		return err
	}
	s.events.ActiveChanged(ctx, id)
	return nil
}

func (s *AdminService) Deactivate(ctx context.Context) error {
	if err := s.store.Active.Clear(ctx); err != nil {
		return err
	}
	s.events.ActiveChanged(ctx, "")
	return nil
}

// DeleteQuestion clears the active pointer first when it references id.
// Responses to the question are kept.
func (s *AdminService) DeleteQuestion(ctx context.Context, id string) error {
	p, err := s.store.Active.Get(ctx)
	if err != nil {
		return err
	}
	if p.QuestionID == id {
		if err := s.store.Active.Clear(ctx); err != nil {
			return err
		}
		s.events.ActiveChanged(ctx, "")
	}

	if err := s.store.Questions.Delete(ctx, id); err != nil {
		return err
	}
	s.events.QuestionDeleted(ctx, id)
	return nil
}

// SaveEdit rewrites the domain, text and options of a rating question.
func (s *AdminService) SaveEdit(ctx context.Context, id string, in EditQuestionInput) (question.Question, error) {
	domain, err := question.ValidateDomain(in.Domain)
	if err != nil {
		return question.Question{}, err
	}
	if question.KindOf(domain) != question.KindRating {
		return question.Question{}, poll_errors.NewValidationError("domain", "Domain must be a custom rating domain.")
	}
	rating, err := question.NewRating(in.Text, in.Options)
	if err != nil {
		return question.Question{}, err
	}

	q, err := s.store.Questions.GetByID(ctx, id)
	if err != nil {
		return question.Question{}, err
	}
	if q.Kind() != question.KindRating {
		return question.Question{}, poll_errors.NewValidationError("domain", "Only rating questions can be edited.")
	}

	q.Domain = domain
	q.Payload = rating
	q.UpdatedAt = time.Now().UTC()
	if err := s.store.Questions.Update(ctx, q); err != nil {
		return question.Question{}, err
	}
	s.events.QuestionUpdated(ctx, q.ID)
	return q, nil
}

func (s *AdminService) ListQuestions(ctx context.Context) ([]question.Question, error) {
	return s.store.Questions.List(ctx)
}

// ActiveQuestionID returns "" when nothing is active.
func (s *AdminService) ActiveQuestionID(ctx context.Context) (string, error) {
	p, err := s.store.Active.Get(ctx)
	if err != nil {
		return "", err
	}
	return p.QuestionID, nil
}
