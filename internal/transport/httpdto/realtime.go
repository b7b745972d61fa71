package httpdto

// Message types pushed over the realtime sockets.
const (
	MessageAdmin       = "admin"
	MessageResults     = "results"
	MessageParticipant = "participant"
)

// Message is the frame written to every realtime socket. Each frame carries
// the full view so a client never has to merge partial updates.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
