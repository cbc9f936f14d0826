package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/bryanwahyu/bearer-mcp/internal/application"
	"github.com/bryanwahyu/bearer-mcp/internal/application/operations"
	"github.com/bryanwahyu/bearer-mcp/internal/config"
	"github.com/bryanwahyu/bearer-mcp/internal/domain/audit"
	mysqlp "github.com/bryanwahyu/bearer-mcp/internal/infra/db/mysql"
	"github.com/bryanwahyu/bearer-mcp/internal/infra/db/postgres"
	"github.com/bryanwahyu/bearer-mcp/internal/infra/executor/local"
	"github.com/bryanwahyu/bearer-mcp/internal/infra/mcpserver"
	"github.com/bryanwahyu/bearer-mcp/internal/middleware"
)

// app holds everything built from config for one process.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *sql.DB
	audit    audit.Repository
	runner   *local.Runner
	registry *operations.Registry
	metrics  *middleware.Metrics
	mcp      *mcpserver.Server
}

type auditStore interface {
	audit.Repository
	EnsureSchema(ctx context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, audit: audit.Nop{}, metrics: middleware.NewMetrics()}

	if cfg.Audit.Driver != "" {
		var (
			db    *sql.DB
			store auditStore
			err   error
		)
		switch cfg.Audit.Driver {
		case "mysql":
			if db, err = mysqlp.Connect(ctx, cfg.Audit.DSN); err == nil {
				store = mysqlp.NewInvocationRepository(db)
			}
		case "postgres":
			if db, err = postgres.Connect(ctx, cfg.Audit.DSN); err == nil {
				store = postgres.NewInvocationRepository(db)
			}
		default:
			err = fmt.Errorf("unknown audit driver: %s", cfg.Audit.Driver)
		}
		if err != nil {
			return nil, fmt.Errorf("%s connect error: %w", cfg.Audit.Driver, err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("audit schema: %w", err)
		}
		a.db, a.audit = db, store
		logger.Info("invocation audit enabled", zap.String("driver", cfg.Audit.Driver))
	}

	a.runner = local.NewRunner(cfg.Bearer.Binary, cfg.Bearer.Timeout, logger.Named("executor"))
	paths := operations.NewResolver(cfg.Bearer.SandboxRoot, cfg.Bearer.WorkingDirectory)
	a.registry = operations.NewRegistry(operations.Options{
		Paths:    paths,
		Executor: a.runner,
		Audit:    a.audit,
		Clock:    application.SystemClock{},
		Logger:   logger.Named("registry"),
	})
	a.mcp = mcpserver.New(cfg.Server.Name, cfg.Server.Version, a.registry, a.metrics, logger.Named("mcp"))

	logger.Info("bearer mcp server initialized",
		zap.String("version", cfg.Server.Version),
		zap.String("working_directory", paths.WorkDir()),
		zap.String("bearer_binary", a.runner.Binary()),
	)
	return a, nil
}

func (a *app) healthCheckers() map[string]middleware.HealthChecker {
	checks := map[string]middleware.HealthChecker{
		"bearer": &middleware.BinaryHealthChecker{Binary: a.runner.Binary()},
	}
	if a.db != nil {
		checks["audit_db"] = &middleware.DatabaseHealthChecker{DB: a.db}
	}
	return checks
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
