package httpdto

import (
	"live-poll/internal/domain/response"
	"live-poll/internal/services"
)

// SubmitResponseRequest is used for POST /poll/responses. Statement is
// 1-based; Ratings holds one value per rating option in option order.
type SubmitResponseRequest struct {
	QuestionID string `json:"question_id"`
	Statement  int    `json:"statement"`
	Employee   string `json:"employee"`
	Ratings    []int  `json:"ratings"`
}

func (r SubmitResponseRequest) ToInput() services.SubmitInput {
	return services.SubmitInput{
		QuestionID: r.QuestionID,
		Statement:  r.Statement,
		Employee:   r.Employee,
		Ratings:    r.Ratings,
	}
}

type ClientIdentityResponse struct {
	ClientID string `json:"client_id"`
	Token    string `json:"token"`
}

type ResponseDTO struct {
	ID               string `json:"id"`
	QuestionID       string `json:"question_id"`
	Ratings          []int  `json:"ratings,omitempty"`
	SelectedEmployee string `json:"selected_employee,omitempty"`
	CreatedAt        string `json:"created_at"`
}

func NewResponseDTO(r response.Response) ResponseDTO {
	return ResponseDTO{
		ID:               r.ID,
		QuestionID:       r.QuestionID,
		Ratings:          r.Ratings,
		SelectedEmployee: r.SelectedEmployee,
		CreatedAt:        formatTime(r.CreatedAt),
	}
}

// ParticipantView is what one participant sees. Question is nil in the
// no_active_question state; Response is set once the client submitted.
type ParticipantView struct {
	State        string       `json:"state"`
	Question     *QuestionDTO `json:"question,omitempty"`
	Response     *ResponseDTO `json:"response,omitempty"`
	Employees    []string     `json:"employees"`
	RatingLabels []string     `json:"rating_labels"`
}

func NewParticipantView(v services.ParticipantView) ParticipantView {
	out := ParticipantView{
		State:        string(v.State),
		Employees:    v.Employees,
		RatingLabels: v.RatingLabels,
	}
	if v.Question != nil {
		q := NewQuestionDTO(*v.Question)
		out.Question = &q
	}
	if v.Response != nil {
		r := NewResponseDTO(*v.Response)
		out.Response = &r
	}
	return out
}
