package policy

import "context"

// Store persists policy documents.
type Store interface {
	Create(ctx context.Context, policy *Policy) error
	Get(ctx context.Context, policyID string) (*Policy, error)
	List(ctx context.Context) ([]*Policy, error)
	ListByStatus(ctx context.Context, status Status) ([]*Policy, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
	Update(ctx context.Context, policy *Policy) error
	Delete(ctx context.Context, policyID string) error
}
