package response

import (
	"time"
)

// Response represents the responses collection. One document per
// (question, client) pair; the ID is derived from both so a second write
// from the same client replaces the first.
type Response struct {
	ID               string
	QuestionID       string
	ClientID         string
	Ratings          []int
	SelectedEmployee string
	CreatedAt        time.Time
}

// DocumentID builds the deterministic response id.
func DocumentID(questionID, clientID string) string {
	return questionID + "_" + clientID
}

func New(questionID, clientID string, ratings []int, employee string, now time.Time) Response {
	return Response{
		ID:               DocumentID(questionID, clientID),
		QuestionID:       questionID,
		ClientID:         clientID,
		Ratings:          ratings,
		SelectedEmployee: employee,
		CreatedAt:        now,
	}
}
