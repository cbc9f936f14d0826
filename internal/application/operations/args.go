package operations

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cast"

	domain "github.com/bryanwahyu/bearer-mcp/internal/domain/bearer"
)

// ValidateArgs checks raw against the operation schema and fills defaults.
// Unknown keys are ignored; empty strings count as absent.
func ValidateArgs(op domain.Operation, raw map[string]any) (domain.ArgumentSet, error) {
	out := domain.ArgumentSet{}
	for _, p := range op.Params {
		v, present := raw[p.Name]
		if present && v != nil {
			val, err := coerce(p, v)
			if err != nil {
				return nil, err
			}
			if val != nil {
				out[p.Name] = val
				continue
			}
		}
		switch {
		case p.Default != nil:
			out[p.Name] = p.Default
		case p.Required:
			return nil, fmt.Errorf("%w: %q is required", domain.ErrInvalidArgument, p.Name)
		}
	}
	return out, nil
}

// coerce returns nil for an empty string so the caller falls back to defaults.
func coerce(p domain.ParamSpec, v any) (any, error) {
	switch p.Type {
	case domain.TypeBoolean:
		b, err := cast.ToBoolE(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q must be a boolean", domain.ErrInvalidArgument, p.Name)
		}
		return b, nil
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q must be a string", domain.ErrInvalidArgument, p.Name)
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, s) {
			return nil, fmt.Errorf("%w: %q must be one of %s", domain.ErrInvalidArgument, p.Name, strings.Join(p.Enum, ", "))
		}
		return s, nil
	}
}
