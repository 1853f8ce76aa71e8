package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/memento/pkg/memento"
	"github.com/tendant/memento/pkg/memento/backend/memory"
	"github.com/tendant/memento/pkg/memento/config"
)

func TestNew_MemoryStack(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.EventSink = config.SinkNone

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Close(context.Background())) }()

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contents",
		strings.NewReader(`{"title":"t","content_type":"story","content":"once upon a time"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	records := a.Services.Records.(*memory.RecordStore).Records(memento.TableUserContent)
	require.Len(t, records, 1)
	assert.Equal(t, memento.ContentTypeStory, records[0].ContentType)

	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/games/quiz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var quiz map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quiz))
	assert.Equal(t, "Question 1 of 4", quiz["progress"])
}

func TestNewLogger(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	logger := NewLogger(&buf, cfg)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
