package service

import (
	"fmt"

	"alertline/internal/domain"
	"alertline/pkg/e"
)

// requireRole is the single authorization gate for facility-side mutations.
// Handlers also role-gate routes, but every mutating service path checks
// again so no caller can bypass it.
func requireRole(actor domain.Identity, role domain.Role) error {
	if actor.Role != role {
		return fmt.Errorf("service.requireRole: role %q required, have %q: %w", role, actor.Role, e.ErrUnauthorized)
	}
	return nil
}
