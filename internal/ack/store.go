package ack

import (
	"context"
	"time"
)

// Store persists ledger records. Implementations must make EnsurePending and
// Acknowledge atomic per (policyID, employeeID) pair: concurrent callers may
// never produce two records for one pair.
type Store interface {
	// EnsurePending inserts a Pending record for each pair that has no record
	// yet and reports how many it created. Existing records — Pending or
	// Acknowledged — are left untouched.
	EnsurePending(ctx context.Context, policyID string, employeeIDs []string, now time.Time) (int, error)
	// Acknowledge upserts the pair's record to Acknowledged with the given
	// timestamp. Re-acknowledging refreshes the timestamp; it never errors
	// and never duplicates.
	Acknowledge(ctx context.Context, policyID, employeeID string, at time.Time) (*Record, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*Record, error)
	// CountByStatus counts records across all policies, published or not —
	// acknowledgment history is sticky.
	CountByStatus(ctx context.Context, status Status) (int, error)
	// DeleteForPolicy removes every record of a policy (cascade on policy
	// delete).
	DeleteForPolicy(ctx context.Context, policyID string) error
}
