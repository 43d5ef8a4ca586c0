package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austiecodes/vera/internal/engine"
	"github.com/austiecodes/vera/internal/engine/enginetest"
	"github.com/austiecodes/vera/internal/memory/memtypes"
	"github.com/austiecodes/vera/internal/memory/store"
	"github.com/austiecodes/vera/internal/session"
	"github.com/austiecodes/vera/internal/types"
)

const testKey = "secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type appendFailingStore struct {
	store.ConversationStore
}

func (appendFailingStore) Append(context.Context, string, string) error {
	return errors.New("disk full")
}

type fixture struct {
	server  *Server
	metrics *Metrics
}

func setup(t *testing.T, apiKey string, st store.ConversationStore, chat *enginetest.QueryClient) fixture {
	t.Helper()
	if st == nil {
		st = enginetest.NewStore(t)
	}
	if chat == nil {
		chat = &enginetest.QueryClient{}
	}
	tool := &enginetest.QueryClient{Reply: func(context.Context, []types.Message) (string, error) {
		return "no", nil
	}}

	metrics := NewMetrics()
	factory := func(ctx context.Context) (*engine.Engine, memtypes.RebuildResult) {
		opts := append(enginetest.Options(), engine.WithRecallObserver(metrics.ObserveRecall))
		return engine.New(ctx, enginetest.Deps(st, chat, tool), opts...)
	}
	sessions, err := session.NewManager(factory, session.Config{
		TTL:         time.Minute,
		MaxSessions: 16,
		OnCreate:    func(*session.Session) { metrics.SessionCreated() },
		OnEvict:     func(*session.Session) { metrics.SessionEvicted() },
	})
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	return fixture{server: New(sessions, apiKey, metrics), metrics: metrics}
}

func (f fixture) do(method, path, auth string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, _ := json.Marshal(b)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func decodeChat(t *testing.T, w *httptest.ResponseRecorder) ChatResponse {
	t.Helper()
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthzNeedsNoAuth(t *testing.T) {
	f := setup(t, testKey, nil, nil)
	w := f.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChatAuth(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		header string
		want   int
	}{
		{"missing header", testKey, "", http.StatusUnauthorized},
		{"wrong scheme", testKey, "Basic " + testKey, http.StatusUnauthorized},
		{"empty token", testKey, "Bearer ", http.StatusUnauthorized},
		{"wrong key", testKey, "Bearer nope", http.StatusForbidden},
		{"no key configured", "", "Bearer " + testKey, http.StatusInternalServerError},
		{"lowercase scheme", testKey, "bearer " + testKey, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, tt.apiKey, nil, nil)
			w := f.do(http.MethodPost, "/chat", tt.header, ChatRequest{Message: "hi"})
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestChatContinuesSession(t *testing.T) {
	f := setup(t, testKey, nil, nil)
	auth := "Bearer " + testKey

	w := f.do(http.MethodPost, "/chat", auth, ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	first := decodeChat(t, w)
	assert.NotEmpty(t, first.SessionID)
	assert.Equal(t, "echo: hello", first.Response)
	assert.Empty(t, first.Warning)

	w = f.do(http.MethodPost, "/chat", auth, ChatRequest{SessionID: first.SessionID, Message: "again"})
	require.Equal(t, http.StatusOK, w.Code)
	second := decodeChat(t, w)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, "echo: again", second.Response)

	sess, err := f.server.sessions.Get(context.Background(), first.SessionID)
	require.NoError(t, err)
	assert.Len(t, sess.Engine().Window(), 5)
}

func TestChatRejectsBadBody(t *testing.T) {
	f := setup(t, testKey, nil, nil)
	auth := "Bearer " + testKey

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/chat", auth, "{not json").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/chat", auth, map[string]string{"session_id": "x"}).Code)
}

func TestChatGenerationFailure(t *testing.T) {
	chat := &enginetest.QueryClient{Reply: func(context.Context, []types.Message) (string, error) {
		return "", errors.New("model offline")
	}}
	f := setup(t, testKey, nil, chat)

	w := f.do(http.MethodPost, "/chat", "Bearer "+testKey, ChatRequest{Message: "hi"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestChatPersistFailureStillReplies(t *testing.T) {
	st := appendFailingStore{ConversationStore: enginetest.NewStore(t)}
	f := setup(t, testKey, st, nil)

	w := f.do(http.MethodPost, "/chat", "Bearer "+testKey, ChatRequest{Message: "hi"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeChat(t, w)
	assert.Equal(t, "echo: hi", resp.Response)
	assert.NotEmpty(t, resp.Warning)
}

func TestChatBusySession(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	chat := &enginetest.QueryClient{Reply: func(_ context.Context, msgs []types.Message) (string, error) {
		if msgs[len(msgs)-1].Content == "slow" {
			close(started)
			<-release
		}
		return "ok", nil
	}}
	f := setup(t, testKey, nil, chat)
	auth := "Bearer " + testKey

	w := f.do(http.MethodPost, "/chat", auth, ChatRequest{SessionID: "s1", Message: "warm up"})
	require.Equal(t, http.StatusOK, w.Code)

	done := make(chan int, 1)
	go func() {
		done <- f.do(http.MethodPost, "/chat", auth, ChatRequest{SessionID: "s1", Message: "slow"}).Code
	}()
	<-started

	w = f.do(http.MethodPost, "/chat", auth, ChatRequest{SessionID: "s1", Message: "fast"})
	assert.Equal(t, http.StatusConflict, w.Code)

	close(release)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestDeleteSession(t *testing.T) {
	f := setup(t, testKey, nil, nil)
	auth := "Bearer " + testKey

	w := f.do(http.MethodPost, "/chat", auth, ChatRequest{SessionID: "doomed", Message: "hi"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/sessions/doomed", auth, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/sessions/doomed", auth, nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := setup(t, testKey, nil, nil)

	w := f.do(http.MethodPost, "/chat", "Bearer "+testKey, ChatRequest{Message: "hi"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `vera_http_requests_total{route="/chat",status="200"} 1`)
	assert.Contains(t, body, "vera_recall_memories_count 1")
	assert.Contains(t, body, "vera_sessions_active 1")
}
