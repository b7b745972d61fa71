package httpdto

import (
	"time"

	"live-poll/internal/domain/question"
)

// CreateQuestionRequest is bound from the multipart form of POST /questions.
// The media file itself travels in the "media" form file.
type CreateQuestionRequest struct {
	Domain      string   `form:"domain" json:"domain"`
	Caption     string   `form:"caption" json:"caption"`
	Statements  []string `form:"statements" json:"statements"`
	Title       string   `form:"title" json:"title"`
	Description string   `form:"description" json:"description"`
	Text        string   `form:"text" json:"text"`
	Options     []string `form:"options" json:"options"`
}

// EditQuestionRequest is used for PUT /questions/:id
type EditQuestionRequest struct {
	Domain  string   `json:"domain"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type QuestionDTO struct {
	ID     string `json:"id"`
	Domain string `json:"domain"`
	Kind   string `json:"kind"`

	MediaType string `json:"media_type,omitempty"`
	MediaURL  string `json:"media_url,omitempty"`
	Caption   string `json:"caption,omitempty"`

	Statements []string `json:"statements,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	Text    string   `json:"text,omitempty"`
	Options []string `json:"options,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func NewQuestionDTO(q question.Question) QuestionDTO {
	dto := QuestionDTO{
		ID:        q.ID,
		Domain:    q.Domain,
		Kind:      string(q.Kind()),
		CreatedAt: formatTime(q.CreatedAt),
		UpdatedAt: formatTime(q.UpdatedAt),
	}
	switch p := q.Payload.(type) {
	case question.Meme:
		dto.MediaType = string(p.MediaType)
		dto.MediaURL = p.MediaURL
		dto.Caption = p.Caption
	case question.Truth:
		dto.Statements = p.Statements
	case question.Info:
		dto.Title = p.Title
		dto.Description = p.Description
	case question.Rating:
		dto.Text = p.Text
		dto.Options = p.Options
	}
	return dto
}

func NewQuestionDTOs(qs []question.Question) []QuestionDTO {
	out := make([]QuestionDTO, 0, len(qs))
	for _, q := range qs {
		out = append(out, NewQuestionDTO(q))
	}
	return out
}

// AdminView is the admin dashboard: every question plus the active pointer.
type AdminView struct {
	Questions        []QuestionDTO `json:"questions"`
	ActiveQuestionID string        `json:"active_question_id,omitempty"`
	PresetDomains    []string      `json:"preset_domains"`
	RatingDomains    []string      `json:"rating_domains"`
}

func NewAdminView(qs []question.Question, activeID string) AdminView {
	return AdminView{
		Questions:        NewQuestionDTOs(qs),
		ActiveQuestionID: activeID,
		PresetDomains:    question.PresetDomains,
		RatingDomains:    question.PresetRatingDomains,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
