package events

// Change types follow the format: collection.action
const (
	TypeActiveChanged   = "active.changed"
	TypeQuestionCreated = "question.created"
	TypeQuestionUpdated = "question.updated"
	TypeQuestionDeleted = "question.deleted"
	TypeResponseWritten = "response.written"
)

// AllTypes lists every change type a subscriber can receive.
var AllTypes = []string{
	TypeActiveChanged,
	TypeQuestionCreated,
	TypeQuestionUpdated,
	TypeQuestionDeleted,
	TypeResponseWritten,
}
