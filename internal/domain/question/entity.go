package question

import (
	"time"
)

// Kind is the closed set of question shapes. Every domain string maps onto
// exactly one kind; free-text domains are rating questions.
type Kind string

const (
	KindMeme   Kind = "meme"
	KindTruth  Kind = "truth"
	KindInfo   Kind = "info"
	KindRating Kind = "rating"
)

const (
	DomainMeme  = "Meme"
	DomainTruth = "Truth"
	DomainInfo  = "Info"
)

// PresetDomains are the typed domains offered by the admin create form.
var PresetDomains = []string{DomainMeme, DomainTruth, DomainInfo}

// PresetRatingDomains are suggested domains for rating questions.
var PresetRatingDomains = []string{"Finance", "Marketing", "HR", "Operations", "Management"}

// RatingLabels name the five rating values, 1 through 5.
var RatingLabels = []string{"Not useful", "Slightly useful", "Useful", "Very useful", "Most useful"}

const (
	MinRating = 1
	MaxRating = 5
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Payload is the kind-specific body of a question.
type Payload interface {
	Kind() Kind
	isPayload()
}

// Meme shows an image or video and asks participants to pick an employee.
type Meme struct {
	MediaType MediaType
	MediaURL  string
	Caption   string
}

// Truth asks participants to pick one of several statements.
type Truth struct {
	Statements []string
}

// Info is a slide; participants only acknowledge it.
type Info struct {
	Title       string
	Description string
}

// Rating asks for a 1..5 rating on every option.
type Rating struct {
	Text    string
	Options []string
}

func (Meme) Kind() Kind   { return KindMeme }
func (Truth) Kind() Kind  { return KindTruth }
func (Info) Kind() Kind   { return KindInfo }
func (Rating) Kind() Kind { return KindRating }

func (Meme) isPayload()   {}
func (Truth) isPayload()  {}
func (Info) isPayload()   {}
func (Rating) isPayload() {}

// Question represents the questions collection
type Question struct {
	ID        string
	Domain    string
	Payload   Payload
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q Question) Kind() Kind {
	if q.Payload == nil {
		return KindRating
	}
	return q.Payload.Kind()
}

// ChoiceCount is the number of statements (truth) or options (rating).
func (q Question) ChoiceCount() int {
	switch p := q.Payload.(type) {
	case Truth:
		return len(p.Statements)
	case Rating:
		return len(p.Options)
	default:
		return 0
	}
}

// KindOf maps an already normalized domain onto its kind.
func KindOf(domain string) Kind {
	switch domain {
	case DomainMeme:
		return KindMeme
	case DomainTruth:
		return KindTruth
	case DomainInfo:
		return KindInfo
	default:
		return KindRating
	}
}
