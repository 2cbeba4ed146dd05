// Package otp stores short-lived one-time passcodes keyed by email address.
package otp

import (
	"context"
	"time"
)

// Store holds issued codes until they are consumed or expire. A code is
// single-use: a successful Consume removes it.
type Store interface {
	// Put stores a code for the email, replacing any outstanding one.
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	// Consume verifies the code for the email and removes it. It returns
	// sentinel.ErrNotFound when no code matches and sentinel.ErrExpired when
	// an expired code is still present.
	Consume(ctx context.Context, email, code string) error
}
