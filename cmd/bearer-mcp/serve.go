package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/bearer-mcp/internal/config"
	"github.com/bryanwahyu/bearer-mcp/internal/infra/httpserver"
	"github.com/bryanwahyu/bearer-mcp/internal/infra/mcpserver"
	"github.com/bryanwahyu/bearer-mcp/internal/middleware"
)

var transportFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP tools over stdio or SSE",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	if transportFlag != "" {
		cfg.Transport.Type = transportFlag
	}
	if !cfg.ValidTransport() {
		logger.Error("invalid transport, falling back to stdio",
			zap.String("transport", cfg.Transport.Type))
		cfg.Transport.Type = config.TransportStdio
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Transport.Type == config.TransportSSE {
		return serveSSE(ctx, a)
	}
	return a.mcp.ServeStdio()
}

func serveSSE(ctx context.Context, a *app) error {
	sseCfg := a.cfg.Transport.SSE
	if err := middleware.ValidateAPIKeys(sseCfg.APIKeys); err != nil {
		return err
	}

	sse := a.mcp.NewSSE(a.cfg.SSEBaseURL())
	limiter := middleware.NewRateLimiter(sseCfg.RateLimit.Capacity, sseCfg.RateLimit.RefillRate)
	defer limiter.Close()

	handler := httpserver.NewRouter(httpserver.Deps{
		Stream:      sse.StreamHandler(),
		Messages:    sse.MessageHandler(),
		Audit:       a.audit,
		Metrics:     a.metrics,
		Limiter:     limiter,
		Checkers:    a.healthCheckers(),
		APIKeys:     sseCfg.APIKeys,
		CORSOrigins: sseCfg.CORSOrigins,
		Logger:      a.logger.Named("http"),
		Info: httpserver.StatusInfo{
			Name:            a.cfg.Server.Name,
			Version:         a.cfg.Server.Version,
			Addr:            a.cfg.SSEAddr(),
			SSEEndpoint:     mcpserver.SSEEndpoint,
			MessageEndpoint: mcpserver.MessageEndpoint,
		},
	})

	// no WriteTimeout: event streams stay open for the whole session
	srv := &http.Server{
		Addr:              a.cfg.SSEAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting SSE server", zap.String("addr", srv.Addr), zap.String("base_url", a.cfg.SSEBaseURL()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("sse shutdown error", zap.Error(err))
		}
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
