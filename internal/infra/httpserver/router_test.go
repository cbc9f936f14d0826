package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/bearer-mcp/internal/domain/audit"
	"github.com/bryanwahyu/bearer-mcp/internal/middleware"
)

type fakeAudit struct {
	list      []*audit.Invocation
	err       error
	lastLimit int
}

func (f *fakeAudit) Save(context.Context, *audit.Invocation) error { return nil }

func (f *fakeAudit) Latest(_ context.Context, limit int) ([]*audit.Invocation, error) {
	f.lastLimit = limit
	return f.list, f.err
}

func named(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})
}

func newTestRouter(a audit.Repository, keys map[string]string, limiter *middleware.RateLimiter) http.Handler {
	return NewRouter(Deps{
		Stream:      named("stream"),
		Messages:    named("message"),
		Audit:       a,
		Limiter:     limiter,
		APIKeys:     keys,
		CORSOrigins: []string{"*"},
		Info: StatusInfo{
			Name: "bearer-mcp-server", Version: "1.0.1", Addr: "localhost:8000",
			SSEEndpoint: "/sse", MessageEndpoint: "/messages/",
		},
	})
}

func get(h http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if len(header) == 1 {
		req.Header.Set("Authorization", header[0])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_StatusPage(t *testing.T) {
	rec := get(newTestRouter(nil, nil, nil), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Bearer MCP Server</h1>")
	assert.Contains(t, body, "1.0.1")
	assert.Contains(t, body, "localhost:8000")
	assert.Contains(t, body, "/messages/")
}

func TestRouter_Probes(t *testing.T) {
	h := newTestRouter(nil, nil, nil)
	assert.Equal(t, http.StatusOK, get(h, "/health").Code)
	assert.Equal(t, "ok", get(h, "/livez").Body.String())
	assert.Equal(t, http.StatusOK, get(h, "/readyz").Code)
}

func TestRouter_SSEEndpoints(t *testing.T) {
	h := newTestRouter(nil, nil, nil)
	assert.Equal(t, "stream", get(h, "/sse").Body.String())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/messages/?sessionId=abc", strings.NewReader("{}")))
	assert.Equal(t, "message", rec.Body.String())
}

func TestRouter_AuthGuardsSSE(t *testing.T) {
	h := newTestRouter(nil, map[string]string{"ci": "k1"}, nil)
	assert.Equal(t, http.StatusUnauthorized, get(h, "/sse").Code)
	assert.Equal(t, http.StatusOK, get(h, "/sse", "Bearer k1").Code)
	assert.Equal(t, http.StatusOK, get(h, "/health").Code)
	assert.Equal(t, http.StatusOK, get(h, "/").Code)
}

func TestRouter_RateLimitsMessages(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, 0)
	defer limiter.Close()
	h := newTestRouter(nil, nil, limiter)

	post := func() int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/messages/", nil))
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
	assert.Equal(t, http.StatusOK, get(h, "/sse").Code, "stream is not limited")
}

func TestRouter_Invocations(t *testing.T) {
	a := &fakeAudit{list: []*audit.Invocation{{
		ID: "id-1", Operation: "bearer_version", Command: "bearer version",
		ResultKind: "output", CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}}}
	h := newTestRouter(a, nil, nil)

	rec := get(h, "/v1/invocations?limit=500")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, a.lastLimit)

	var got []audit.Invocation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "bearer_version", got[0].Operation)

	get(h, "/v1/invocations")
	assert.Equal(t, 20, a.lastLimit)
}

func TestRouter_InvocationsEmptyAndError(t *testing.T) {
	rec := get(newTestRouter(nil, nil, nil), "/v1/invocations")
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = get(newTestRouter(&fakeAudit{err: errors.New("db down")}, nil, nil), "/v1/invocations")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	h := newTestRouter(nil, nil, nil)
	get(h, "/livez")

	rec := get(h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Contains(t, snap, "requests_total")
	assert.Contains(t, snap, "tool_calls_total")
}
