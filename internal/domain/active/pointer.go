package active

import "time"

// DocumentID is the id of the singleton active-pointer document.
const DocumentID = "question"

// Pointer references the question currently shown to participants.
// An empty QuestionID means nothing is active.
type Pointer struct {
	QuestionID string
	UpdatedAt  time.Time
}

func (p Pointer) IsActive() bool {
	return p.QuestionID != ""
}
