package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"live-poll/internal/events"
	"live-poll/internal/repository"
	"live-poll/internal/services"
	"live-poll/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type participantFrame struct {
	State    string `json:"state"`
	Question *struct {
		ID   string `json:"id"`
		Kind string `json:"kind"`
	} `json:"question"`
}

// nextParticipantState reads frames from ch until one carries want.
func nextParticipantState(t *testing.T, ch <-chan []byte, want string) participantFrame {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case raw, ok := <-ch:
			if !ok {
				t.Fatalf("send channel closed while waiting for %s", want)
			}
			var f frame
			if err := json.Unmarshal(raw, &f); err != nil {
				t.Fatalf("decode frame: %v", err)
			}
			if f.Type != "participant" {
				continue
			}
			var p participantFrame
			if err := json.Unmarshal(f.Data, &p); err != nil {
				t.Fatalf("decode participant view: %v", err)
			}
			if p.State == want {
				return p
			}
		case <-timeout:
			t.Fatalf("no participant frame with state %s", want)
		}
	}
}

func TestHubRoutesByView(t *testing.T) {
	hub := startHub(t)

	admin := NewClient(nil, ViewAdmin, "")
	alice := NewClient(nil, ViewParticipant, "alice")
	aliceTab := NewClient(nil, ViewParticipant, "alice")
	bob := NewClient(nil, ViewParticipant, "bob")
	for _, c := range []*Client{admin, alice, aliceTab, bob} {
		hub.Register(c)
	}
	waitFor(t, "registration", func() bool { return hub.GetClientCount() == 4 })

	if got := hub.GetViewerCount(ViewParticipant); got != 3 {
		t.Fatalf("expected 3 participant viewers, got %d", got)
	}
	if ids := hub.ClientIDs(ViewParticipant); len(ids) != 2 {
		t.Fatalf("expected 2 distinct participants, got %v", ids)
	}

	hub.Broadcast(ViewAdmin, []byte("a"))
	hub.BroadcastToClient(ViewParticipant, "alice", []byte("p"))

	if len(admin.Send) != 1 || len(bob.Send) != 0 {
		t.Fatalf("broadcast leaked across views: admin=%d bob=%d", len(admin.Send), len(bob.Send))
	}
	if len(alice.Send) != 1 || len(aliceTab.Send) != 1 {
		t.Fatalf("expected both alice tabs to receive, got %d/%d", len(alice.Send), len(aliceTab.Send))
	}

	hub.Unregister(bob)
	waitFor(t, "unregister", func() bool { return hub.GetClientCount() == 3 })
	if _, ok := <-bob.Send; ok {
		t.Fatal("expected send channel of unregistered client to be closed")
	}
	// Must not panic on a closed channel.
	hub.Deliver(bob, []byte("late"))
	hub.Unregister(bob)
}

func TestHubMembershipAfterStop(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	early := NewClient(nil, ViewResults, "")
	hub.Register(early)
	waitFor(t, "registration", func() bool { return hub.GetClientCount() == 1 })

	cancel()
	<-stopped
	if _, ok := <-early.Send; ok {
		t.Fatal("expected shutdown to close registered clients")
	}

	// More calls than the membership buffer holds; none may block.
	finished := make(chan struct{})
	go func() {
		for i := 0; i < 2*cap(hub.membership); i++ {
			hub.Unregister(early)
		}
		late := NewClient(nil, ViewParticipant, "late")
		hub.Register(late)
		hub.Unregister(late)
		if _, ok := <-late.Send; ok {
			t.Error("expected client registered after stop to be released")
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("membership calls blocked after the hub stopped")
	}
	if hub.GetClientCount() != 0 {
		t.Fatalf("expected no clients after stop, got %d", hub.GetClientCount())
	}
}

func TestSendMessageKeepsNewestFrame(t *testing.T) {
	c := NewClient(nil, ViewResults, "")
	for i := 0; i < cap(c.Send)+10; i++ {
		c.SendMessage([]byte{byte(i)})
	}
	if len(c.Send) != cap(c.Send) {
		t.Fatalf("expected full buffer, got %d", len(c.Send))
	}
	var last []byte
	for len(c.Send) > 0 {
		last = <-c.Send
	}
	if last[0] != byte(cap(c.Send)+9) {
		t.Fatalf("expected newest frame last, got %d", last[0])
	}
}

type countingViews struct {
	mu    sync.Mutex
	calls map[string]int
}

func (v *countingViews) Render(_ context.Context, view, clientID string) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls[view]++
	return []byte(`{"type":"x","data":null}`), nil
}

func (v *countingViews) count(view string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls[view]
}

func TestNotifierCoalescesBursts(t *testing.T) {
	hub := startHub(t)
	results := NewClient(nil, ViewResults, "")
	hub.Register(results)
	waitFor(t, "registration", func() bool { return hub.GetClientCount() == 1 })

	bus := events.NewLocalBus()
	views := &countingViews{calls: map[string]int{}}
	n := NewNotifier(hub, views, bus, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()
	waitFor(t, "subscription", func() bool { return bus.SubscriberCount() == 1 })

	for i := 0; i < 20; i++ {
		_ = bus.Publish(ctx, events.NewChange(events.TypeResponseWritten, "q1"))
	}
	waitFor(t, "refresh", func() bool { return views.count(ViewResults) >= 1 })
	time.Sleep(120 * time.Millisecond)

	if got := views.count(ViewResults); got != 1 {
		t.Fatalf("expected one coalesced render, got %d", got)
	}
	if got := views.count(ViewAdmin); got != 0 {
		t.Fatalf("expected views without viewers to be skipped, got %d admin renders", got)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
	if bus.SubscriberCount() != 0 {
		t.Fatal("expected subscription to be released on shutdown")
	}
}

type pollEnv struct {
	admin    *services.AdminService
	identity *services.ClientIdentityService
	views    *Views
	bus      *events.LocalBus
}

func newPollEnv(t *testing.T) *pollEnv {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store := repository.NewGormStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	bus := events.NewLocalBus()
	pub := services.NewEventPublisher(bus, nil)
	admin := services.NewAdminService(store, pub, nil, 1024, nil)
	participant := services.NewParticipantService(store, pub, []string{"John Doe"}, nil)
	results := services.NewResultsService(store)
	return &pollEnv{
		admin:    admin,
		identity: services.NewClientIdentityService("test-secret"),
		views:    NewViews(admin, participant, results),
		bus:      bus,
	}
}

func TestDeactivationReachesParticipants(t *testing.T) {
	env := newPollEnv(t)
	hub := startHub(t)

	n := NewNotifier(hub, env.views, env.bus, 5*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = n.Run(ctx) }()
	waitFor(t, "subscription", func() bool { return env.bus.SubscriberCount() == 1 })

	participant := NewClient(nil, ViewParticipant, "client-1")
	hub.Register(participant)
	waitFor(t, "registration", func() bool { return hub.GetClientCount() == 1 })

	q, err := env.admin.CreateAndActivate(ctx, services.CreateQuestionInput{
		Domain:      "Info",
		Title:       "Welcome",
		Description: "Grab a coffee",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	loaded := nextParticipantState(t, participant.Send, "question_loaded")
	if loaded.Question == nil || loaded.Question.ID != q.ID || loaded.Question.Kind != "info" {
		t.Fatalf("unexpected loaded frame %+v", loaded)
	}

	if err := env.admin.Deactivate(ctx); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	idle := nextParticipantState(t, participant.Send, "no_active_question")
	if idle.Question != nil {
		t.Fatalf("expected no question after deactivation, got %+v", idle.Question)
	}
}

func TestParticipantSocket(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := newPollEnv(t)
	hub := startHub(t)
	h := NewHandler(hub, env.views, env.identity, nil, nil)

	r := gin.New()
	r.GET("/ws/participant", h.Participant)
	r.GET("/ws/results", h.Results)
	srv := httptest.NewServer(r)
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(base+"/ws/participant?client_token=bogus", nil)
	if err == nil {
		t.Fatal("expected handshake to fail without a valid token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}

	id, err := env.identity.Issue()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(base+"/ws/participant?client_token="+id.Token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var p participantFrame
	_ = json.Unmarshal(f.Data, &p)
	if f.Type != "participant" || p.State != "no_active_question" {
		t.Fatalf("unexpected snapshot %s %+v", f.Type, p)
	}
	waitFor(t, "hub registration", func() bool { return len(hub.ClientIDs(ViewParticipant)) == 1 })
	if got := hub.ClientIDs(ViewParticipant)[0]; got != id.ClientID {
		t.Fatalf("expected socket bound to %s, got %s", id.ClientID, got)
	}

	results, _, err := websocket.DefaultDialer.Dial(base+"/ws/results", nil)
	if err != nil {
		t.Fatalf("dial results: %v", err)
	}
	defer results.Close()
	_ = results.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := results.ReadJSON(&f); err != nil || f.Type != "results" {
		t.Fatalf("unexpected results snapshot %s: %v", f.Type, err)
	}
}
