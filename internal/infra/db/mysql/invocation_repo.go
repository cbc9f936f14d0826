package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/bryanwahyu/bearer-mcp/internal/domain/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS bearer_invocations (
  id          CHAR(36)     NOT NULL PRIMARY KEY,
  operation   VARCHAR(64)  NOT NULL,
  command     TEXT         NOT NULL,
  work_dir    VARCHAR(1024) NOT NULL,
  exit_code   INT          NOT NULL,
  result_kind VARCHAR(32)  NOT NULL,
  duration_ms BIGINT       NOT NULL,
  created_at  DATETIME(3)  NOT NULL,
  INDEX idx_bearer_invocations_created (created_at)
)`

type InvocationRepository struct {
	db *sql.DB
}

func NewInvocationRepository(db *sql.DB) *InvocationRepository {
	return &InvocationRepository{db: db}
}

// EnsureSchema creates the audit table when missing.
func (r *InvocationRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *InvocationRepository) Save(ctx context.Context, inv *audit.Invocation) error {
	const q = `
INSERT INTO bearer_invocations
  (id, operation, command, work_dir, exit_code, result_kind, duration_ms, created_at)
VALUES (?,?,?,?,?,?,?,?)
`
	created := inv.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		inv.ID,
		dashIfEmpty(inv.Operation),
		dashIfEmpty(inv.Command),
		dashIfEmpty(inv.WorkDir),
		inv.ExitCode,
		dashIfEmpty(inv.ResultKind),
		inv.DurationMS,
		created.UTC(),
	)
	return err
}

func (r *InvocationRepository) Latest(ctx context.Context, limit int) ([]*audit.Invocation, error) {
	const q = `
SELECT id, operation, command, work_dir, exit_code, result_kind, duration_ms, created_at
FROM bearer_invocations
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, clampLimit(limit))
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
