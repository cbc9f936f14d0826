package httpserver

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bryanwahyu/bearer-mcp/internal/domain/audit"
	"github.com/bryanwahyu/bearer-mcp/internal/middleware"
)

// StatusInfo is rendered on the root status page.
type StatusInfo struct {
	Name            string
	Version         string
	Addr            string
	SSEEndpoint     string
	MessageEndpoint string
}

// Deps are the collaborators the HTTP surface needs. Stream and Messages are
// the MCP SSE handlers; Audit may be nil.
type Deps struct {
	Stream      http.Handler
	Messages    http.Handler
	Audit       audit.Repository
	Metrics     *middleware.Metrics
	Limiter     *middleware.RateLimiter
	Checkers    map[string]middleware.HealthChecker
	APIKeys     map[string]string
	CORSOrigins []string
	Info        StatusInfo
	Logger      *zap.Logger
}

type Router struct {
	audit  audit.Repository
	info   StatusInfo
	logger *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	if d.Audit == nil {
		d.Audit = audit.Nop{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = middleware.NewMetrics()
	}
	r := &Router{audit: d.Audit, info: d.Info, logger: d.Logger}

	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware(d.Logger))
	mux.Use(d.Metrics.Middleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Mcp-Session-Id"},
		MaxAge:         300,
	}))

	mux.Get("/", r.handleRoot)
	mux.Get("/health", middleware.HealthHandler(d.Checkers))
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler)

	mux.Group(func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(d.APIKeys))

		rt.Get("/metrics", d.Metrics.Handler)
		rt.Get("/v1/invocations", r.wrap(r.handleInvocations))
		if d.Stream != nil {
			rt.Get(r.info.SSEEndpoint, d.Stream.ServeHTTP)
		}
		if d.Messages != nil {
			msg := d.Messages
			if d.Limiter != nil {
				msg = middleware.RateLimitMiddleware(d.Limiter)(msg)
			}
			rt.Post(r.info.MessageEndpoint, msg.ServeHTTP)
		}
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			r.logger.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// GET /v1/invocations?limit=20
func (r *Router) handleInvocations(w http.ResponseWriter, req *http.Request) error {
	limit := middleware.ParseLimit(req.URL.Query().Get("limit"))

	list, err := r.audit.Latest(req.Context(), limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*audit.Invocation{}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Bearer MCP Server</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
               max-width: 800px; margin: 50px auto; padding: 20px; background: #f5f5f5; }
        .container { background: white; border-radius: 8px; padding: 30px;
                     box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #333; border-bottom: 2px solid #4CAF50; padding-bottom: 10px; }
        .status { background: #4CAF50; color: white; padding: 5px 10px;
                  border-radius: 4px; display: inline-block; }
        .endpoint { background: #f0f0f0; padding: 5px 10px; border-radius: 4px; font-family: monospace; }
        .info { margin: 20px 0; line-height: 1.6; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Bearer MCP Server</h1>
        <div class="info">
            <p><strong>Status:</strong> <span class="status">Running</span></p>
            <p><strong>Version:</strong> {{.Version}}</p>
            <p><strong>Transport:</strong> SSE (Server-Sent Events)</p>
            <p><strong>Host:</strong> {{.Addr}}</p>
        </div>
        <div class="info">
            <h3>Endpoints</h3>
            <p>SSE endpoint: <span class="endpoint">{{.SSEEndpoint}}</span></p>
            <p>Messages endpoint: <span class="endpoint">{{.MessageEndpoint}}</span></p>
        </div>
        <div class="info">
            <h3>Description</h3>
            <p>This is an MCP server that wraps the Bearer CLI security scanning tool,
            providing tools to scan code for security vulnerabilities and sensitive data leaks.</p>
        </div>
    </div>
</body>
</html>
`))

func (r *Router) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statusPage.Execute(w, r.info); err != nil {
		r.logger.Error("render status page", zap.Error(err))
	}
}
