package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"live-poll/config"
	"live-poll/internal/events"
	"live-poll/internal/handler"
	"live-poll/internal/redis"
	"live-poll/internal/repository"
	"live-poll/internal/services"
	"live-poll/pkg/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type stubUploader struct{}

func (stubUploader) Upload(_ context.Context, f services.MediaFile) (services.UploadResult, error) {
	return services.UploadResult{URL: "https://cdn.test/" + f.Name, ResourceType: string(f.Type), Bytes: int64(len(f.Data))}, nil
}

type envelope struct {
	Success        bool            `json:"success"`
	Data           json.RawMessage `json:"data"`
	Error          string          `json:"error"`
	Code           string          `json:"code"`
	Field          string          `json:"field"`
	MissingIndices []int           `json:"missing_indices"`
}

type testServer struct {
	engine *gin.Engine
}

type testOptions struct {
	uploader services.MediaUploader
	limiter  *redis.RateLimiter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, testOptions{uploader: stubUploader{}})
}

func newTestServerWith(t *testing.T, opts testOptions) *testServer {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store := repository.NewGormStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	pub := services.NewEventPublisher(events.NewLocalBus(), nil)
	admin := services.NewAdminService(store, pub, opts.uploader, 1024, nil)
	participant := services.NewParticipantService(store, pub, []string{"John Doe", "Jane Smith"}, nil)
	results := services.NewResultsService(store)
	identity := services.NewClientIdentityService("test-secret")

	cfg := &config.Config{AppPort: "0", AppMode: TestMode, UploadMaxBytes: 1024}
	s := New(cfg, nil)
	s.SetupRoutes(&Handlers{
		Admin:       handler.NewAdminHandler(admin, nil),
		Participant: handler.NewParticipantHandler(participant, identity, nil),
		Results:     handler.NewResultsHandler(results, nil),
	}, Dependencies{Identity: identity, Limiter: opts.limiter, Health: store.Ping})
	return &testServer{engine: s.Engine()}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return s.serve(t, req)
}

func (s *testServer) serve(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode response %q: %v", req.Method, req.URL.Path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode data %s: %v", raw, err)
	}
	return v
}

func (s *testServer) registerClient(t *testing.T) map[string]string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/v1/clients", nil, nil)
	if code != http.StatusCreated {
		t.Fatalf("register client: %d %+v", code, env)
	}
	id := decode[struct {
		Token string `json:"token"`
	}](t, env.Data)
	return map[string]string{"X-Client-Token": id.Token}
}

type questionData struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	Domain  string   `json:"domain"`
	Options []string `json:"options"`
}

type pollData struct {
	State    string        `json:"state"`
	Question *questionData `json:"question"`
}

func TestPingAndHealth(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/ping", "/health"} {
		if code, env := s.do(t, http.MethodGet, path, nil, nil); code != http.StatusOK || !env.Success {
			t.Fatalf("%s: %d %+v", path, code, env)
		}
	}
}

func TestCreateQuestionValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing domain", map[string]any{"text": "Q"}, "domain"},
		{"rating one option", map[string]any{"domain": "hr", "text": "Q", "options": []string{"A", " "}}, "options"},
		{"truth one statement", map[string]any{"domain": "Truth", "statements": []string{"only"}}, "statements"},
		{"info no title", map[string]any{"domain": "Info", "description": "d"}, "title"},
		{"meme without media", map[string]any{"domain": "Meme"}, "media"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(t, http.MethodPost, "/v1/questions", tt.body, nil)
			if code != http.StatusBadRequest || env.Code != "VALIDATION_FAILED" || env.Field != tt.field {
				t.Fatalf("expected validation failure on %s, got %d %+v", tt.field, code, env)
			}
		})
	}

	if code, env := s.do(t, http.MethodGet, "/v1/questions", nil, nil); code != http.StatusOK {
		t.Fatalf("list: %d %+v", code, env)
	} else if view := decode[struct {
		Questions []questionData `json:"questions"`
	}](t, env.Data); len(view.Questions) != 0 {
		t.Fatalf("expected nothing stored after failed creates, got %d", len(view.Questions))
	}
}

func TestParticipantRatingFlow(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/v1/questions", map[string]any{
		"domain":  "hr",
		"text":    "How useful were these?",
		"options": []string{"Onboarding", "Payroll"},
	}, nil)
	if code != http.StatusCreated {
		t.Fatalf("create: %d %+v", code, env)
	}
	q := decode[questionData](t, env.Data)
	if q.Domain != "HR" || q.Kind != "rating" || len(q.Options) != 2 {
		t.Fatalf("unexpected question %+v", q)
	}

	if code, _ := s.do(t, http.MethodGet, "/v1/poll", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("expected poll without token to be rejected, got %d", code)
	}

	client := s.registerClient(t)
	code, env = s.do(t, http.MethodGet, "/v1/poll", nil, client)
	if view := decode[pollData](t, env.Data); code != http.StatusOK || view.State != "question_loaded" || view.Question.ID != q.ID {
		t.Fatalf("unexpected poll view %d %+v", code, view)
	}

	code, env = s.do(t, http.MethodPost, "/v1/poll/responses", map[string]any{
		"question_id": q.ID,
		"ratings":     []int{4},
	}, client)
	if code != http.StatusBadRequest || env.Field != "ratings" || len(env.MissingIndices) != 1 || env.MissingIndices[0] != 1 {
		t.Fatalf("expected missing index 1, got %d %+v", code, env)
	}

	code, env = s.do(t, http.MethodPost, "/v1/poll/responses", map[string]any{
		"question_id": q.ID,
		"ratings":     []int{4, 5},
	}, client)
	if view := decode[pollData](t, env.Data); code != http.StatusCreated || view.State != "submitted" {
		t.Fatalf("submit: %d %+v", code, env)
	}

	code, env = s.do(t, http.MethodPost, "/v1/poll/responses", map[string]any{
		"question_id": q.ID,
		"ratings":     []int{1, 1},
	}, client)
	if code != http.StatusConflict || env.Code != "ALREADY_SUBMITTED" {
		t.Fatalf("expected second submit to conflict, got %d %+v", code, env)
	}

	code, env = s.do(t, http.MethodGet, "/v1/results", nil, nil)
	res := decode[struct {
		Total   int `json:"total"`
		Options []struct {
			Average    float64 `json:"average"`
			Percentage int     `json:"percentage"`
		} `json:"options"`
	}](t, env.Data)
	if code != http.StatusOK || res.Total != 1 || len(res.Options) != 2 || res.Options[1].Percentage != 100 {
		t.Fatalf("unexpected results %d %+v", code, res)
	}
}

func TestStaleQuestionAndDeactivation(t *testing.T) {
	s := newTestServer(t)
	client := s.registerClient(t)

	_, env := s.do(t, http.MethodPost, "/v1/questions", map[string]any{"domain": "Info", "title": "One", "description": "first"}, nil)
	first := decode[questionData](t, env.Data)
	_, env = s.do(t, http.MethodPost, "/v1/questions", map[string]any{"domain": "Info", "title": "Two", "description": "second"}, nil)
	second := decode[questionData](t, env.Data)

	code, env := s.do(t, http.MethodPost, "/v1/poll/responses", map[string]any{"question_id": first.ID}, client)
	if code != http.StatusConflict || env.Code != "QUESTION_CHANGED" {
		t.Fatalf("expected stale submit to be rejected, got %d %+v", code, env)
	}

	if code, env := s.do(t, http.MethodPost, "/v1/questions/"+first.ID+"/activate", nil, nil); code != http.StatusOK {
		t.Fatalf("activate: %d %+v", code, env)
	}
	_, env = s.do(t, http.MethodGet, "/v1/active", nil, nil)
	if active := decode[map[string]string](t, env.Data); active["active_question_id"] != first.ID {
		t.Fatalf("expected %s active, got %v", first.ID, active)
	}

	if code, _ := s.do(t, http.MethodDelete, "/v1/active", nil, nil); code != http.StatusOK {
		t.Fatalf("deactivate: %d", code)
	}
	_, env = s.do(t, http.MethodGet, "/v1/poll", nil, client)
	if view := decode[pollData](t, env.Data); view.State != "no_active_question" || view.Question != nil {
		t.Fatalf("expected idle participant, got %+v", view)
	}
	code, env = s.do(t, http.MethodPost, "/v1/poll/responses", map[string]any{"question_id": second.ID}, client)
	if code != http.StatusConflict || env.Code != "NO_ACTIVE_QUESTION" {
		t.Fatalf("expected submit without active question to conflict, got %d %+v", code, env)
	}

	if code, env := s.do(t, http.MethodPost, "/v1/questions/missing/activate", nil, nil); code != http.StatusNotFound || env.Code != "NOT_FOUND" {
		t.Fatalf("expected not found, got %d %+v", code, env)
	}
}

func TestEditAndDelete(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(t, http.MethodPost, "/v1/questions", map[string]any{"domain": "Finance", "text": "Q", "options": []string{"A", "B"}}, nil)
	q := decode[questionData](t, env.Data)

	code, env := s.do(t, http.MethodPut, "/v1/questions/"+q.ID, map[string]any{"domain": "ops team", "text": "Q2", "options": []string{"A", "B", "C"}}, nil)
	if edited := decode[questionData](t, env.Data); code != http.StatusOK || edited.Domain != "Ops Team" || len(edited.Options) != 3 {
		t.Fatalf("edit: %d %+v", code, env)
	}

	if code, env := s.do(t, http.MethodPut, "/v1/questions/nope", map[string]any{"domain": "HR", "text": "Q", "options": []string{"A", "B"}}, nil); code != http.StatusNotFound {
		t.Fatalf("expected edit of unknown question to 404, got %d %+v", code, env)
	}

	if code, _ := s.do(t, http.MethodDelete, "/v1/questions/"+q.ID, nil, nil); code != http.StatusOK {
		t.Fatalf("delete: %d", code)
	}
	_, env = s.do(t, http.MethodGet, "/v1/active", nil, nil)
	if active := decode[map[string]string](t, env.Data); active["active_question_id"] != "" {
		t.Fatalf("expected deleting the active question to clear the pointer, got %v", active)
	}
}

func multipartMeme(t *testing.T, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("domain", "meme")
	_ = w.WriteField("caption", "Who did this?")
	part, err := w.CreateFormFile("media", "cat.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write(data)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/questions", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestMemeUpload(t *testing.T) {
	s := newTestServer(t)

	code, env := s.serve(t, multipartMeme(t, pngHeader))
	if code != http.StatusCreated {
		t.Fatalf("create meme: %d %+v", code, env)
	}
	meme := decode[struct {
		Kind      string `json:"kind"`
		MediaType string `json:"media_type"`
		MediaURL  string `json:"media_url"`
	}](t, env.Data)
	if meme.Kind != "meme" || meme.MediaType != "image" || meme.MediaURL != "https://cdn.test/cat.png" {
		t.Fatalf("unexpected meme %+v", meme)
	}

	client := s.registerClient(t)
	code, env = s.do(t, http.MethodPost, "/v1/poll/responses", map[string]any{"employee": "Nobody"}, client)
	if code != http.StatusBadRequest || env.Field != "employee" {
		t.Fatalf("expected unknown employee to be rejected, got %d %+v", code, env)
	}
	if code, env := s.do(t, http.MethodPost, "/v1/poll/responses", map[string]any{"employee": "Jane Smith"}, client); code != http.StatusCreated {
		t.Fatalf("vote: %d %+v", code, env)
	}

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2048)...)
	code, env = s.serve(t, multipartMeme(t, big))
	if code != http.StatusRequestEntityTooLarge || env.Code != "TOO_LARGE" {
		t.Fatalf("expected oversized media to be rejected, got %d %+v", code, env)
	}
}

func TestMemeUploadWithoutUploader(t *testing.T) {
	s := newTestServerWith(t, testOptions{})

	code, env := s.serve(t, multipartMeme(t, pngHeader))
	if code != http.StatusServiceUnavailable || env.Code != "UNAVAILABLE" {
		t.Fatalf("expected 503 UNAVAILABLE, got %d %+v", code, env)
	}
	_, env = s.do(t, http.MethodGet, "/v1/questions", nil, nil)
	if view := decode[struct {
		Questions []questionData `json:"questions"`
	}](t, env.Data); len(view.Questions) != 0 {
		t.Fatalf("expected no question to be stored, got %+v", view.Questions)
	}
}

func TestSubmitRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	limiter := redis.NewRateLimiter(rdb, redis.RateLimitConfig{SubmitLimit: 2, SubmitWindow: time.Minute})
	s := newTestServerWith(t, testOptions{uploader: stubUploader{}, limiter: limiter})

	code, env := s.do(t, http.MethodPost, "/v1/questions", map[string]any{
		"domain":  "hr",
		"text":    "Rate it",
		"options": []string{"One", "Two"},
	}, nil)
	if code != http.StatusCreated {
		t.Fatalf("create: %d %+v", code, env)
	}
	q := decode[questionData](t, env.Data)
	body := map[string]any{"question_id": q.ID, "ratings": []int{3, 4}}

	client := s.registerClient(t)
	want := []struct {
		code int
		err  string
	}{
		{code: http.StatusCreated},
		{code: http.StatusConflict, err: "ALREADY_SUBMITTED"},
		{code: http.StatusTooManyRequests, err: "RATE_LIMITED"},
		{code: http.StatusTooManyRequests, err: "RATE_LIMITED"},
	}
	for i, w := range want {
		code, env := s.do(t, http.MethodPost, "/v1/poll/responses", body, client)
		if code != w.code || env.Code != w.err {
			t.Fatalf("attempt %d: got %d %+v, want %d %s", i+1, code, env, w.code, w.err)
		}
	}

	// The limit is per participant.
	other := s.registerClient(t)
	if code, env := s.do(t, http.MethodPost, "/v1/poll/responses", body, other); code != http.StatusCreated {
		t.Fatalf("other client: %d %+v", code, env)
	}
}
