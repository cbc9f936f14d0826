package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics. The zero value is not usable; call
// NewMetrics.
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	ToolCallsTotal     uint64
	ToolCallsRunning   uint64
	ToolCallsFailed    uint64
	StartTime          time.Time

	mu     sync.Mutex
	byTool map[string]*toolStats
}

type toolStats struct {
	Calls      uint64  `json:"calls"`
	Failures   uint64  `json:"failures"`
	TotalMilli float64 `json:"total_ms"`
}

func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now(), byTool: make(map[string]*toolStats)}
}

// ToolStarted counts a tool call entering the registry.
func (m *Metrics) ToolStarted(string) {
	atomic.AddUint64(&m.ToolCallsTotal, 1)
	atomic.AddUint64(&m.ToolCallsRunning, 1)
}

// ToolFinished records the result of a call previously passed to ToolStarted.
func (m *Metrics) ToolFinished(name string, isError bool, d time.Duration) {
	atomic.AddUint64(&m.ToolCallsRunning, ^uint64(0))
	if isError {
		atomic.AddUint64(&m.ToolCallsFailed, 1)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.byTool[name]
	if !ok {
		st = &toolStats{}
		m.byTool[name] = st
	}
	st.Calls++
	if isError {
		st.Failures++
	}
	st.TotalMilli += float64(d) / float64(time.Millisecond)
}

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]interface{} {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	m.mu.Lock()
	tools := make(map[string]toolStats, len(m.byTool))
	for name, st := range m.byTool {
		tools[name] = *st
	}
	m.mu.Unlock()

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&m.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&m.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&m.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&m.RequestsFailed),
		"tool_calls_total":     atomic.LoadUint64(&m.ToolCallsTotal),
		"tool_calls_running":   atomic.LoadUint64(&m.ToolCallsRunning),
		"tool_calls_failed":    atomic.LoadUint64(&m.ToolCallsFailed),
		"tools":                tools,
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddUint64(&m.RequestsTotal, 1)
		atomic.AddUint64(&m.RequestsInProgress, 1)
		defer atomic.AddUint64(&m.RequestsInProgress, ^uint64(0))

		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			atomic.AddUint64(&m.RequestsSuccess, 1)
		} else {
			atomic.AddUint64(&m.RequestsFailed, 1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m.Snapshot())
}
