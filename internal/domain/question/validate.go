package question

import (
	"strings"
	"unicode"
	"unicode/utf8"

	poll_errors "live-poll/pkg/errors"
)

const MinChoices = 2

// NormalizeDomain keeps short acronyms upper case (HR, IT) and title-cases
// everything else. Blank input normalizes to "".
func NormalizeDomain(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	if utf8.RuneCountInString(s) <= 3 {
		return strings.ToUpper(s)
	}
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// CleanList trims every entry and drops the blank ones, keeping order.
func CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := strings.TrimSpace(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func ValidateDomain(input string) (string, error) {
	domain := NormalizeDomain(input)
	if domain == "" {
		return "", poll_errors.NewValidationError("domain", "Domain is required.")
	}
	return domain, nil
}

func NewMeme(mediaType MediaType, mediaURL, caption string) (Meme, error) {
	if mediaType != MediaImage && mediaType != MediaVideo {
		return Meme{}, poll_errors.NewValidationError("media", "Media must be an image or a video.")
	}
	if strings.TrimSpace(mediaURL) == "" {
		return Meme{}, poll_errors.NewValidationError("media", "Please upload an image or video.")
	}
	return Meme{MediaType: mediaType, MediaURL: mediaURL, Caption: strings.TrimSpace(caption)}, nil
}

func NewTruth(statements []string) (Truth, error) {
	cleaned := CleanList(statements)
	if len(cleaned) < MinChoices {
		return Truth{}, poll_errors.NewValidationError("statements", "Please add at least 2 statements.")
	}
	return Truth{Statements: cleaned}, nil
}

func NewInfo(title, description string) (Info, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return Info{}, poll_errors.NewValidationError("title", "Please enter a title.")
	}
	if description == "" {
		return Info{}, poll_errors.NewValidationError("description", "Please enter a description.")
	}
	return Info{Title: title, Description: description}, nil
}

func NewRating(text string, options []string) (Rating, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Rating{}, poll_errors.NewValidationError("text", "Question text required.")
	}
	cleaned := CleanList(options)
	if len(cleaned) < MinChoices {
		return Rating{}, poll_errors.NewValidationError("options", "Provide at least 2 options.")
	}
	return Rating{Text: text, Options: cleaned}, nil
}
