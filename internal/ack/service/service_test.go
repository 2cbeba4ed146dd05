package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complyd/internal/ack"
	"complyd/internal/audit"
	"complyd/internal/policy"
	dErrors "complyd/pkg/domain-errors"
	"complyd/pkg/requestcontext"
)

type fakeAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (f *fakeAuditor) Record(_ context.Context, event audit.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeAuditor) last() audit.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

func newFixture(t *testing.T) (*Service, *policy.InMemoryStore, *ack.InMemoryStore, *fakeAuditor) {
	t.Helper()
	policies := policy.NewInMemoryStore()
	ledger := ack.NewInMemoryStore()
	auditor := &fakeAuditor{}
	return New(ledger, policies, auditor), policies, ledger, auditor
}

func seedPolicy(t *testing.T, policies *policy.InMemoryStore, id string, status policy.Status) {
	t.Helper()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := &policy.Policy{
		PolicyID:    id,
		Title:       "Security Policy",
		Subtitle:    "All staff",
		Description: "Keep secrets secret.",
		Status:      status,
		Version:     "1.0",
		CreatedAt:   now,
	}
	if status == policy.StatusPublished {
		p.PublishedAt = &now
	}
	require.NoError(t, policies.Create(context.Background(), p))
}

func TestAcknowledge(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("records acknowledgment for a published policy", func(t *testing.T) {
		svc, policies, _, auditor := newFixture(t)
		seedPolicy(t, policies, "POL-1", policy.StatusPublished)

		record, err := svc.Acknowledge(ctx, "POL-1", "emp-1")
		require.NoError(t, err)
		assert.Equal(t, ack.StatusAcknowledged, record.Status)
		require.NotNil(t, record.AcknowledgedAt)
		assert.Equal(t, now, *record.AcknowledgedAt)

		event := auditor.last()
		assert.Equal(t, audit.ActionPolicyAcknowledge, event.Action)
		assert.Equal(t, audit.StatusSuccess, event.Status)
	})

	t.Run("repeat acknowledgment refreshes instead of failing", func(t *testing.T) {
		svc, policies, _, _ := newFixture(t)
		seedPolicy(t, policies, "POL-1", policy.StatusPublished)

		_, err := svc.Acknowledge(ctx, "POL-1", "emp-1")
		require.NoError(t, err)

		later := requestcontext.WithTime(context.Background(), now.Add(time.Hour))
		record, err := svc.Acknowledge(later, "POL-1", "emp-1")
		require.NoError(t, err)
		require.NotNil(t, record.AcknowledgedAt)
		assert.Equal(t, now.Add(time.Hour), *record.AcknowledgedAt)
	})

	t.Run("rejects a draft policy", func(t *testing.T) {
		svc, policies, ledger, auditor := newFixture(t)
		seedPolicy(t, policies, "POL-1", policy.StatusDraft)

		_, err := svc.Acknowledge(ctx, "POL-1", "emp-1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

		count, err := ledger.CountByStatus(ctx, ack.StatusAcknowledged)
		require.NoError(t, err)
		assert.Zero(t, count)

		assert.Equal(t, audit.StatusFail, auditor.last().Status)
	})

	t.Run("rejects an unknown policy", func(t *testing.T) {
		svc, _, _, _ := newFixture(t)

		_, err := svc.Acknowledge(ctx, "POL-404", "emp-1")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestPoliciesWithStatus(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("defaults to pending when no record exists", func(t *testing.T) {
		svc, policies, ledger, _ := newFixture(t)
		seedPolicy(t, policies, "POL-1", policy.StatusPublished)

		annotated, err := svc.PoliciesWithStatus(ctx, "emp-1")
		require.NoError(t, err)
		require.Len(t, annotated, 1)
		assert.Equal(t, ack.StatusPending, annotated[0].MyAckStatus)
		assert.Nil(t, annotated[0].MyAcknowledgedAt)

		// Reading must not create a ledger record.
		records, err := ledger.ListByEmployee(ctx, "emp-1")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("reflects acknowledged records", func(t *testing.T) {
		svc, policies, _, _ := newFixture(t)
		seedPolicy(t, policies, "POL-1", policy.StatusPublished)
		seedPolicy(t, policies, "POL-2", policy.StatusPublished)

		_, err := svc.Acknowledge(ctx, "POL-2", "emp-1")
		require.NoError(t, err)

		annotated, err := svc.PoliciesWithStatus(ctx, "emp-1")
		require.NoError(t, err)
		require.Len(t, annotated, 2)

		byID := make(map[string]ack.Status, len(annotated))
		for _, entry := range annotated {
			byID[entry.PolicyID] = entry.MyAckStatus
		}
		assert.Equal(t, ack.StatusPending, byID["POL-1"])
		assert.Equal(t, ack.StatusAcknowledged, byID["POL-2"])
	})

	t.Run("excludes draft policies", func(t *testing.T) {
		svc, policies, _, _ := newFixture(t)
		seedPolicy(t, policies, "POL-1", policy.StatusPublished)
		seedPolicy(t, policies, "POL-2", policy.StatusDraft)

		annotated, err := svc.PoliciesWithStatus(ctx, "emp-1")
		require.NoError(t, err)
		require.Len(t, annotated, 1)
		assert.Equal(t, "POL-1", annotated[0].PolicyID)
	})
}
