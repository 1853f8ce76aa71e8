package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/memento/pkg/memento"
	"github.com/tendant/memento/pkg/memento/backend/memory"
	"github.com/tendant/memento/pkg/memento/game/eventloop"
	"github.com/tendant/memento/pkg/memento/game/matching"
	"github.com/tendant/memento/pkg/memento/metrics"
	"github.com/tendant/memento/pkg/memento/objectkey"
)

type testServer struct {
	handler  http.Handler
	records  *memory.RecordStore
	blobs    *memory.BlobStore
	sessions *memory.Sessions
	metrics  *metrics.Collector
}

func newTestServer(t *testing.T, configure ...func(*Config)) *testServer {
	t.Helper()

	loop := eventloop.New()
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(cancel)

	s := &testServer{
		records:  memory.NewRecordStore(),
		blobs:    memory.NewBlobStore(""),
		sessions: memory.NewSessions(),
		metrics:  metrics.NewCollector("memento_test"),
	}
	cfg := Config{
		Options: []memento.Option{
			memento.WithRecordStore(s.records),
			memento.WithBlobStore(s.blobs),
			memento.WithSessions(s.sessions),
			memento.WithKeyGenerator(objectkey.StaticGenerator{TokenValue: "tok"}),
		},
		Blobs:    s.blobs,
		Loop:     loop,
		Metrics:  s.metrics,
		Symbols:  []string{"A", "B"},
		Shuffler: matching.NoShuffle(),
	}
	for _, f := range configure {
		f(&cfg)
	}

	handler, err := NewRouter(cfg)
	require.NoError(t, err)
	s.handler = handler
	return s
}

func newRequest(method, path, contentType string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func serve(s *testServer, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

// request sends a request as client; an empty client gets a new workspace.
func (s *testServer) request(method, path, client, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := newRequest(method, path, contentType, body)
	if client != "" {
		req.Header.Set(ClientIDHeader, client)
	}
	return serve(s, req)
}

func (s *testServer) postJSON(path, client, body string) *httptest.ResponseRecorder {
	return s.request(http.MethodPost, path, client, "application/json", strings.NewReader(body))
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestNewRouter_RequiresCollaborators(t *testing.T) {
	loop := eventloop.New()

	_, err := NewRouter(Config{Loop: loop, Options: []memento.Option{memento.WithBlobStore(memory.NewBlobStore(""))}})
	assert.ErrorIs(t, err, memento.ErrNotConfigured)

	_, err = NewRouter(Config{Loop: loop, Options: []memento.Option{memento.WithRecordStore(memory.NewRecordStore())}})
	assert.ErrorIs(t, err, memento.ErrNotConfigured)

	_, err = NewRouter(Config{Options: []memento.Option{
		memento.WithRecordStore(memory.NewRecordStore()),
		memento.WithBlobStore(memory.NewBlobStore("")),
	}})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/healthz/ready"} {
		w := s.request(http.MethodGet, path, "", "", nil)

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "OK", w.Body.String(), path)
	}
}

func TestAPIKey(t *testing.T) {
	// sha256("memento-key")
	digest := "36eef20cad29bc809ebd9f31be6c499bc356c0668223be2a7e17be45e560b234"
	s := newTestServer(t, func(c *Config) { c.APIKeys = map[string]string{"web": digest} })

	w := s.request(http.MethodGet, "/api/v1/games/quiz", "client-1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := newRequest(http.MethodGet, "/api/v1/games/quiz", "", nil)
	req.Header.Set(ClientIDHeader, "client-1")
	req.Header.Set(APIKeyHeader, "memento-key")
	w = serve(s, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.request(http.MethodGet, "/healthz", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKey_InvalidDigest(t *testing.T) {
	loop := eventloop.New()
	_, err := NewRouter(Config{
		Loop: loop,
		Options: []memento.Option{
			memento.WithRecordStore(memory.NewRecordStore()),
			memento.WithBlobStore(memory.NewBlobStore("")),
		},
		APIKeys: map[string]string{"web": "not-hex"},
	})
	assert.Error(t, err)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.request(http.MethodGet, "/api/v1/contents/types", "client-1", "", nil)

	w := s.request(http.MethodGet, "/metrics", "", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "memento_test_http_requests_total")
	assert.Contains(t, w.Body.String(), "memento_test_workspaces 1")
}

func TestWorkspace_NewClientGetsCookie(t *testing.T) {
	s := newTestServer(t)

	w := s.request(http.MethodGet, "/api/v1/games/quiz", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	id := w.Header().Get(ClientIDHeader)
	require.NotEmpty(t, id)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ClientCookie, cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)

	// The cookie alone selects the same workspace.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/games/quiz", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	assert.Equal(t, id, w.Header().Get(ClientIDHeader))
	assert.Empty(t, w.Result().Cookies())
}

func TestWorkspace_ClientsAreIsolated(t *testing.T) {
	s := newTestServer(t)

	w := s.postJSON("/api/v1/games/quiz/answers", "alice", `{"answer":"Blue"}`)
	require.Equal(t, http.StatusOK, w.Code)

	alice := decode[QuizView](t, s.request(http.MethodGet, "/api/v1/games/quiz", "alice", "", nil))
	bob := decode[QuizView](t, s.request(http.MethodGet, "/api/v1/games/quiz", "bob", "", nil))

	assert.Equal(t, 1, alice.State.Index)
	assert.Equal(t, 0, bob.State.Index)
}

func TestHub_EvictsLeastRecentlyUsed(t *testing.T) {
	created := 0
	var size int
	hub, err := NewHub(2, func(id string) (*Workspace, error) {
		created++
		return &Workspace{ID: id}, nil
	}, func(n int) { size = n })
	require.NoError(t, err)

	a, err := hub.Get("a")
	require.NoError(t, err)
	_, _ = hub.Get("b")
	again, _ := hub.Get("a")
	assert.Same(t, a, again)
	assert.Equal(t, 2, created)

	_, _ = hub.Get("c")
	assert.Equal(t, 2, hub.Len())
	assert.Equal(t, 2, size)

	_, _ = hub.Get("b")
	assert.Equal(t, 4, created, "b was evicted and rebuilt")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, func(c *Config) { c.AllowedOrigins = []string{"https://memento.example"} })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/contents", nil)
	req.Header.Set("Origin", "https://memento.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	assert.Equal(t, "https://memento.example", w.Header().Get("Access-Control-Allow-Origin"))
}
