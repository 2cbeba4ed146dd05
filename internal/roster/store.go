package roster

import (
	"context"

	"complyd/pkg/domain"
)

// Store persists roster entries. Implementations return sentinel errors for
// factual states (not found, conflict); services translate to domain errors.
type Store interface {
	Create(ctx context.Context, employee *Employee) error
	Get(ctx context.Context, employeeID string) (*Employee, error)
	GetByEmail(ctx context.Context, email string) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
	// ListByRoles returns entries whose role is in roles, for fan-out and
	// compliance counting.
	ListByRoles(ctx context.Context, roles ...domain.Role) ([]*Employee, error)
	Update(ctx context.Context, employee *Employee) error
	Delete(ctx context.Context, employeeID string) error
}
