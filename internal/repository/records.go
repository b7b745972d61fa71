package repository

import (
	"time"

	"live-poll/internal/domain/active"
	"live-poll/internal/domain/question"
	"live-poll/internal/domain/response"
)

// questionRecord flattens the payload variants into one row; only the
// columns of the row's kind are populated.
type questionRecord struct {
	ID          string    `gorm:"type:varchar(64);primaryKey"`
	Domain      string    `gorm:"type:varchar(120);not null"`
	Kind        string    `gorm:"type:varchar(16);not null;index"`
	MediaType   string    `gorm:"type:varchar(16)"`
	MediaURL    string    `gorm:"type:text"`
	Caption     string    `gorm:"type:text"`
	Statements  []string  `gorm:"type:text;serializer:json"`
	Title       string    `gorm:"type:text"`
	Description string    `gorm:"type:text"`
	Text        string    `gorm:"type:text"`
	Options     []string  `gorm:"type:text;serializer:json"`
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time
}

func (questionRecord) TableName() string { return "questions" }

type activeRecord struct {
	ID         string  `gorm:"type:varchar(32);primaryKey"`
	QuestionID *string `gorm:"type:varchar(64)"`
	UpdatedAt  time.Time
}

func (activeRecord) TableName() string { return "active" }

type responseRecord struct {
	ID               string    `gorm:"type:varchar(160);primaryKey"`
	QuestionID       string    `gorm:"type:varchar(64);not null;index"`
	ClientID         string    `gorm:"type:varchar(64);not null"`
	Ratings          []int     `gorm:"type:text;serializer:json"`
	SelectedEmployee string    `gorm:"type:varchar(120)"`
	CreatedAt        time.Time `gorm:"not null"`
}

func (responseRecord) TableName() string { return "responses" }

func toQuestionRecord(q question.Question) questionRecord {
	rec := questionRecord{
		ID:        q.ID,
		Domain:    q.Domain,
		Kind:      string(q.Kind()),
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
	switch p := q.Payload.(type) {
	case question.Meme:
		rec.MediaType = string(p.MediaType)
		rec.MediaURL = p.MediaURL
		rec.Caption = p.Caption
	case question.Truth:
		rec.Statements = p.Statements
	case question.Info:
		rec.Title = p.Title
		rec.Description = p.Description
	case question.Rating:
		rec.Text = p.Text
		rec.Options = p.Options
	}
	return rec
}

func (r questionRecord) toDomain() question.Question {
	q := question.Question{
		ID:        r.ID,
		Domain:    r.Domain,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	switch question.Kind(r.Kind) {
	case question.KindMeme:
		q.Payload = question.Meme{MediaType: question.MediaType(r.MediaType), MediaURL: r.MediaURL, Caption: r.Caption}
	case question.KindTruth:
		q.Payload = question.Truth{Statements: r.Statements}
	case question.KindInfo:
		q.Payload = question.Info{Title: r.Title, Description: r.Description}
	default:
		q.Payload = question.Rating{Text: r.Text, Options: r.Options}
	}
	return q
}

func (r activeRecord) toDomain() active.Pointer {
	p := active.Pointer{UpdatedAt: r.UpdatedAt}
	if r.QuestionID != nil {
		p.QuestionID = *r.QuestionID
	}
	return p
}

func toResponseRecord(r response.Response) responseRecord {
	return responseRecord{
		ID:               r.ID,
		QuestionID:       r.QuestionID,
		ClientID:         r.ClientID,
		Ratings:          r.Ratings,
		SelectedEmployee: r.SelectedEmployee,
		CreatedAt:        r.CreatedAt,
	}
}

func (r responseRecord) toDomain() response.Response {
	return response.Response{
		ID:               r.ID,
		QuestionID:       r.QuestionID,
		ClientID:         r.ClientID,
		Ratings:          r.Ratings,
		SelectedEmployee: r.SelectedEmployee,
		CreatedAt:        r.CreatedAt,
	}
}
