package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/bancharampur/infogate/internal/users"
)

// ErrAccessDenied is returned when the principal lacks an admin role.
var ErrAccessDenied = errors.New("rbac: access denied")

// RoleReader looks up the stored role of a principal.
type RoleReader interface {
	RoleOf(ctx context.Context, principalID string) (string, error)
}

// Gate authorizes administrative commands.
type Gate struct {
	roles RoleReader
}

// NewGate constructs a Gate backed by the provided role reader.
func NewGate(roles RoleReader) *Gate {
	return &Gate{roles: roles}
}

// Authorize resolves principalID's role and fails with ErrAccessDenied unless
// it is admin or localAdmin. Lookup failures other than a missing principal
// are returned wrapped so callers can report them.
func (g *Gate) Authorize(ctx context.Context, principalID string) (Principal, error) {
	if g == nil || g.roles == nil {
		return Principal{}, errors.New("rbac: gate not configured")
	}
	if principalID == "" {
		return Principal{}, ErrAccessDenied
	}
	name, err := g.roles.RoleOf(ctx, principalID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Principal{ID: principalID, Role: RoleUser}, ErrAccessDenied
		}
		return Principal{}, fmt.Errorf("rbac: lookup role: %w", err)
	}
	principal := Principal{ID: principalID, Role: ParseRole(name)}
	if !principal.Role.Privileged() {
		return principal, ErrAccessDenied
	}
	return principal, nil
}
