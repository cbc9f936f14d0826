package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/bryanwahyu/bearer-mcp/internal/domain/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS bearer_invocations (
  id          UUID         PRIMARY KEY,
  operation   VARCHAR(64)  NOT NULL,
  command     TEXT         NOT NULL,
  work_dir    TEXT         NOT NULL,
  exit_code   INTEGER      NOT NULL,
  result_kind VARCHAR(32)  NOT NULL,
  duration_ms BIGINT       NOT NULL,
  created_at  TIMESTAMPTZ  NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bearer_invocations_created ON bearer_invocations (created_at);`

type InvocationRepository struct{ db *sql.DB }

func NewInvocationRepository(db *sql.DB) *InvocationRepository {
	return &InvocationRepository{db: db}
}

// EnsureSchema creates the audit table when missing.
func (r *InvocationRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Save inserts one invocation; a repeated ID is ignored.
func (r *InvocationRepository) Save(ctx context.Context, inv *audit.Invocation) error {
	const q = `
INSERT INTO bearer_invocations
(id, operation, command, work_dir, exit_code, result_kind, duration_ms, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO NOTHING;`

	created := inv.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		inv.ID,
		stringOrDash(inv.Operation),
		stringOrDash(inv.Command),
		stringOrDash(inv.WorkDir),
		inv.ExitCode,
		stringOrDash(inv.ResultKind),
		inv.DurationMS,
		created,
	)
	return err
}

// Latest invocations, newest first
func (r *InvocationRepository) Latest(ctx context.Context, limit int) ([]*audit.Invocation, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	const q = `
SELECT id, operation, command, work_dir, exit_code, result_kind, duration_ms, created_at
FROM bearer_invocations
ORDER BY created_at DESC
LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*audit.Invocation
	for rows.Next() {
		var inv audit.Invocation
		if err := rows.Scan(&inv.ID, &inv.Operation, &inv.Command, &inv.WorkDir,
			&inv.ExitCode, &inv.ResultKind, &inv.DurationMS, &inv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &inv)
	}
	return out, rows.Err()
}

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
