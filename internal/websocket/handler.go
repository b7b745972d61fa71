package websocket

import (
	"context"
	"net/http"
	"time"

	"live-poll/internal/services"
	"live-poll/internal/transport/httpdto"
	"live-poll/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const maxInboundMessage = 512

type Handler struct {
	hub      *Hub
	views    Snapshotter
	identity *services.ClientIdentityService
	notifier *Notifier
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

func NewHandler(hub *Hub, views Snapshotter, identity *services.ClientIdentityService, notifier *Notifier, l *logger.Logger) *Handler {
	if l == nil {
		l = logger.NewNop()
	}
	return &Handler{
		hub:      hub,
		views:    views,
		identity: identity,
		notifier: notifier,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: l.Named("websocket"),
	}
}

func (h *Handler) Admin(c *gin.Context) {
	h.serve(c, ViewAdmin, "")
}

func (h *Handler) Results(c *gin.Context) {
	h.serve(c, ViewResults, "")
}

// Participant requires the client token issued by POST /clients.
func (h *Handler) Participant(c *gin.Context) {
	clientID, err := h.identity.Parse(c.Query("client_token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	h.serve(c, ViewParticipant, clientID)
}

func (h *Handler) serve(c *gin.Context, view, clientID string) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Logger.Debug("upgrade failed", zap.String("view", view), zap.Error(err))
		return
	}

	client := NewClient(conn, view, clientID)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	defer h.hub.Unregister(client)
	go client.WriteLoop(ctx)

	log := h.logger.Logger.With(
		zap.String("view", view),
		zap.String("connection_id", client.ID),
		zap.String("client_id", clientID),
	)
	log.Info("websocket_event", zap.String("event", "connected"))
	defer log.Info("websocket_event", zap.String("event", "disconnected"))

	payload, err := h.views.Render(ctx, view, clientID)
	if err != nil {
		log.Warn("websocket_error", zap.String("event", "snapshot"), zap.Error(err))
	} else {
		h.hub.Deliver(client, payload)
	}
	// Writes that landed while the snapshot was rendering are picked up by
	// the next refresh.
	if h.notifier != nil {
		h.notifier.Trigger()
	}

	conn.SetReadLimit(maxInboundMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
