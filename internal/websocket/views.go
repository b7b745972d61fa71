package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"live-poll/internal/services"
	"live-poll/internal/transport/httpdto"
)

// Snapshotter renders the full frame for a view.
type Snapshotter interface {
	Render(ctx context.Context, view, clientID string) ([]byte, error)
}

// Views renders frames straight from the services, so a socket always shows
// the same data the HTTP endpoints return.
type Views struct {
	admin       *services.AdminService
	participant *services.ParticipantService
	results     *services.ResultsService
}

func NewViews(admin *services.AdminService, participant *services.ParticipantService, results *services.ResultsService) *Views {
	return &Views{admin: admin, participant: participant, results: results}
}

func (v *Views) Render(ctx context.Context, view, clientID string) ([]byte, error) {
	switch view {
	case ViewAdmin:
		return v.renderAdmin(ctx)
	case ViewResults:
		return v.renderResults(ctx)
	case ViewParticipant:
		return v.renderParticipant(ctx, clientID)
	}
	return nil, fmt.Errorf("unknown view %q", view)
}

func (v *Views) renderAdmin(ctx context.Context) ([]byte, error) {
	qs, err := v.admin.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	activeID, err := v.admin.ActiveQuestionID(ctx)
	if err != nil {
		return nil, err
	}
	return encode(httpdto.MessageAdmin, httpdto.NewAdminView(qs, activeID))
}

func (v *Views) renderResults(ctx context.Context) ([]byte, error) {
	res, err := v.results.Current(ctx)
	if err != nil {
		return nil, err
	}
	return encode(httpdto.MessageResults, res)
}

func (v *Views) renderParticipant(ctx context.Context, clientID string) ([]byte, error) {
	view, err := v.participant.View(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return encode(httpdto.MessageParticipant, httpdto.NewParticipantView(view))
}

func encode(kind string, data any) ([]byte, error) {
	return json.Marshal(httpdto.Message{Type: kind, Data: data})
}
