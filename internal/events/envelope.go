package events

import (
	"time"
)

// Change notifies subscribers that a collection was written. It carries
// ids only; views reread the store to build their snapshot.
type Change struct {
	Type       string    `json:"type"`
	QuestionID string    `json:"question_id,omitempty"`
	ClientID   string    `json:"client_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewChange(changeType, questionID string) Change {
	return Change{
		Type:       changeType,
		QuestionID: questionID,
		OccurredAt: time.Now().UTC(),
	}
}
