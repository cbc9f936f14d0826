package audit

import "context"

// Repository defines persistence for invocation records
type Repository interface {
	Save(ctx context.Context, inv *Invocation) error
	Latest(ctx context.Context, limit int) ([]*Invocation, error)
}

// Nop discards every record. Used when no audit driver is configured.
type Nop struct{}

func (Nop) Save(context.Context, *Invocation) error            { return nil }
func (Nop) Latest(context.Context, int) ([]*Invocation, error) { return nil, nil }
