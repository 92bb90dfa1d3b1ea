package server_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/shaharia-lab/emailnotify/internal/api"
	"github.com/shaharia-lab/emailnotify/internal/metrics"
	"github.com/shaharia-lab/emailnotify/internal/server"
	svcmocks "github.com/shaharia-lab/emailnotify/internal/service/mocks"
	"github.com/shaharia-lab/emailnotify/internal/storage"
)

func newTestServer(t *testing.T) (*server.Server, *svcmocks.MockStatusService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := new(svcmocks.MockStatusService)
	m := metrics.New()
	return server.New(api.New(svc, logger), m.Handler(), 0, logger), svc
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestServer_Metrics(t *testing.T) {
	s, _ := newTestServer(t)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestServer_MountsAPI(t *testing.T) {
	s, svc := newTestServer(t)
	svc.On("ListRecent", mock.Anything, 0).Return([]storage.StatusLogEntry{}, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/statuses", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
