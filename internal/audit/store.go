package audit

import "context"

// Store persists audit events. Append-only: no implementation exposes update
// or delete.
type Store interface {
	Append(ctx context.Context, event Event) error
	// List returns events newest-first. page is 1-based.
	List(ctx context.Context, filters Filters, page, pageSize int) (Page, error)
}
