package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func echoClient() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetClientFromContext(r.Context())))
	})
}

func TestAPIKeyAuth(t *testing.T) {
	h := APIKeyAuth(map[string]string{"ci": "s3cret"})(echoClient())

	cases := []struct {
		name   string
		target string
		header string
		status int
		body   string
	}{
		{"missing", "/sse", "", http.StatusUnauthorized, ""},
		{"invalid", "/sse", "Bearer nope", http.StatusUnauthorized, ""},
		{"bearer prefix", "/sse", "Bearer s3cret", http.StatusOK, "ci"},
		{"bare key", "/messages/", "s3cret", http.StatusOK, "ci"},
		{"query param", "/sse?api_key=s3cret", "", http.StatusOK, "ci"},
		{"health is public", "/health", "", http.StatusOK, ""},
		{"status page is public", "/", "", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, tc.body, rec.Body.String())
			}
		})
	}
}

func TestAPIKeyAuth_DisabledWithoutKeys(t *testing.T) {
	h := APIKeyAuth(nil)(echoClient())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sse", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(2, 0)
	defer limiter.Close()
	h := RateLimitMiddleware(limiter)(echoClient())

	do := func(path string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, do("/messages/"))
	assert.Equal(t, http.StatusOK, do("/messages/"))
	assert.Equal(t, http.StatusTooManyRequests, do("/messages/"))
	assert.Equal(t, http.StatusOK, do("/health"), "health is never limited")
}

func TestRateLimitMiddleware_KeysOnHostNotPort(t *testing.T) {
	limiter := NewRateLimiter(1, 0)
	defer limiter.Close()
	h := RateLimitMiddleware(limiter)(echoClient())

	do := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/messages/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, do("10.0.0.2:5000"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.2:5001"), "new connection, same host")
	assert.Equal(t, http.StatusOK, do("[2001:db8::1]:443"))
	assert.Equal(t, http.StatusOK, do("10.0.0.3:5000"))
}

func TestRemoteHost(t *testing.T) {
	assert.Equal(t, "10.0.0.2", remoteHost("10.0.0.2:5000"))
	assert.Equal(t, "2001:db8::1", remoteHost("[2001:db8::1]:443"))
	assert.Equal(t, "unix-socket", remoteHost("unix-socket"))
}

func TestTokenBucket_Refills(t *testing.T) {
	tb := NewTokenBucket(1, 1000)
	assert.True(t, tb.Allow())
	time.Sleep(5 * time.Millisecond)
	assert.True(t, tb.Allow())
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			http.Error(w, "no", http.StatusBadRequest)
			return
		}
		w.(http.Flusher).Flush()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))

	m.ToolStarted("bearer_version")
	m.ToolFinished("bearer_version", false, 20*time.Millisecond)
	m.ToolStarted("bearer_scan")
	m.ToolFinished("bearer_scan", true, time.Second)

	rec := httptest.NewRecorder()
	m.Handler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	var snap map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.EqualValues(t, 2, snap["requests_total"])
	assert.EqualValues(t, 1, snap["requests_success"])
	assert.EqualValues(t, 1, snap["requests_failed"])
	assert.EqualValues(t, 2, snap["tool_calls_total"])
	assert.EqualValues(t, 0, snap["tool_calls_running"])
	assert.EqualValues(t, 1, snap["tool_calls_failed"])

	tools := snap["tools"].(map[string]any)
	scan := tools["bearer_scan"].(map[string]any)
	assert.EqualValues(t, 1, scan["failures"])
	assert.EqualValues(t, 1000, scan["total_ms"])
}

func TestLoggingMiddleware_PreservesStatus(t *testing.T) {
	h := LoggingMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

type checkerFunc func(context.Context) error

func (f checkerFunc) Check(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	ok := checkerFunc(func(context.Context) error { return nil })
	down := checkerFunc(func(context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{"a": ok})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{"a": ok, "db": down})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "down", status.Checks["db"].Message)
	assert.Equal(t, "healthy", status.Checks["a"].Status)
}

func TestBinaryHealthChecker(t *testing.T) {
	err := (&BinaryHealthChecker{Binary: "definitely-not-a-bearer-binary"}).Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in PATH")
}

func TestValidators(t *testing.T) {
	assert.Equal(t, 20, ParseLimit(""))
	assert.Equal(t, 20, ParseLimit("abc"))
	assert.Equal(t, 5, ParseLimit("5"))
	assert.Equal(t, 100, ParseLimit("1000"))

	assert.NoError(t, ValidateClientID("ci-runner_1"))
	assert.Error(t, ValidateClientID(""))
	assert.Error(t, ValidateClientID("has space"))

	assert.NoError(t, ValidateAPIKeys(map[string]string{"ci": "k"}))
	assert.Error(t, ValidateAPIKeys(map[string]string{"ci": " "}))
	assert.Error(t, ValidateAPIKeys(map[string]string{"bad name": "k"}))
}
