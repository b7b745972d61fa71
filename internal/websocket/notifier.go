package websocket

import (
	"context"
	"time"

	"live-poll/internal/events"
	"live-poll/pkg/logger"

	"go.uber.org/zap"
)

// Notifier turns store changes into fresh frames for every connected view.
// Changes are coalesced: a burst of writes inside the debounce window costs
// one recompute.
type Notifier struct {
	hub        *Hub
	views      Snapshotter
	subscriber events.Subscriber
	debounce   time.Duration
	trigger    chan struct{}
	logger     *logger.Logger
}

func NewNotifier(hub *Hub, views Snapshotter, subscriber events.Subscriber, debounce time.Duration, l *logger.Logger) *Notifier {
	if l == nil {
		l = logger.NewNop()
	}
	return &Notifier{
		hub:        hub,
		views:      views,
		subscriber: subscriber,
		debounce:   debounce,
		trigger:    make(chan struct{}, 1),
		logger:     l.Named("notifier"),
	}
}

// Trigger schedules a refresh. It never blocks.
func (n *Notifier) Trigger() {
	select {
	case n.trigger <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done.
func (n *Notifier) Run(ctx context.Context) error {
	sub, err := n.subscriber.Subscribe(ctx, func(change events.Change) {
		n.logger.Logger.Debug("change received",
			zap.String("type", change.Type),
			zap.String("question_id", change.QuestionID),
		)
		n.Trigger()
	})
	if err != nil {
		return err
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-n.trigger:
		}

		if n.debounce > 0 {
			timer := time.NewTimer(n.debounce)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
			// Whatever arrived during the wait is covered by this refresh.
			select {
			case <-n.trigger:
			default:
			}
		}

		n.Refresh(ctx)
	}
}

// Refresh recomputes and pushes every view that has at least one viewer.
func (n *Notifier) Refresh(ctx context.Context) {
	for _, view := range []string{ViewAdmin, ViewResults} {
		if n.hub.GetViewerCount(view) == 0 {
			continue
		}
		payload, err := n.views.Render(ctx, view, "")
		if err != nil {
			n.logger.Logger.Warn("render view failed", zap.String("view", view), zap.Error(err))
			continue
		}
		n.hub.Broadcast(view, payload)
	}

	for _, clientID := range n.hub.ClientIDs(ViewParticipant) {
		payload, err := n.views.Render(ctx, ViewParticipant, clientID)
		if err != nil {
			n.logger.Logger.Warn("render participant view failed", zap.String("client_id", clientID), zap.Error(err))
			continue
		}
		n.hub.BroadcastToClient(ViewParticipant, clientID, payload)
	}
}
