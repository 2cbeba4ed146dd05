package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complyd/internal/platform/metrics"
	"complyd/pkg/domain"
	"complyd/pkg/requestcontext"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitForEvents(t *testing.T, store *InMemoryStore, want int) Page {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		page, err := store.List(context.Background(), Filters{}, 1, 100)
		require.NoError(t, err)
		if page.Total >= want {
			return page
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d audit events", want)
	return Page{}
}

func TestRecordEnrichesFromContext(t *testing.T) {
	store := NewInMemoryStore()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	rec := NewRecorder(store, discardLogger(), m, 8)

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go rec.Run(runCtx)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithActor(ctx, domain.Actor{ID: "admin-1", Email: "hr@corp.example", Role: domain.RoleAdmin})
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", "curl/8.0")
	ctx = requestcontext.WithRequestLine(ctx, "POST", "/policies")

	rec.Record(ctx, Event{
		Action:       ActionPolicyCreate,
		ResourceType: ResourcePolicy,
		ResourceID:   "POL-1",
		Status:       StatusSuccess,
	})

	page := waitForEvents(t, store, 1)
	event := page.Items[0]
	assert.Equal(t, "admin-1", event.ActorID)
	assert.Equal(t, "hr@corp.example", event.ActorEmail)
	assert.Equal(t, string(domain.RoleAdmin), event.ActorRole)
	assert.Equal(t, "203.0.113.9", event.IP)
	assert.Equal(t, "curl/8.0", event.UserAgent)
	assert.Equal(t, "POST", event.Method)
	assert.Equal(t, "/policies", event.Route)
	assert.Equal(t, now, event.CreatedAt)
	assert.NotEmpty(t, event.ID)
}

type failingStore struct{}

func (failingStore) Append(context.Context, Event) error {
	return errors.New("disk full")
}

func (failingStore) List(context.Context, Filters, int, int) (Page, error) {
	return Page{}, nil
}

func TestPersistFailureIsSwallowed(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	rec := NewRecorder(failingStore{}, discardLogger(), m, 1)

	// Record must not panic or surface the store error.
	rec.Record(context.Background(), Event{Action: ActionLoginSuccess})

	runCtx, stop := context.WithCancel(context.Background())
	stop()
	rec.Run(runCtx) // drains synchronously after cancel
}

func TestShutdownWaitsForBufferedEvents(t *testing.T) {
	store := NewInMemoryStore()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	rec := NewRecorder(store, discardLogger(), m, 8)

	for i := 0; i < 5; i++ {
		rec.Record(context.Background(), Event{Action: ActionPolicyCreate, ResourceID: "POL-1"})
	}

	runCtx, stop := context.WithCancel(context.Background())
	go rec.Run(runCtx)
	stop()
	rec.Wait()

	// No polling: after Wait returns, everything buffered must be persisted.
	page, err := store.List(context.Background(), Filters{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.AuditEventsDropped))
}

func TestFullBufferDropsAndCounts(t *testing.T) {
	store := NewInMemoryStore()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	// No Run loop consuming: the buffer of one fills immediately.
	rec := NewRecorder(store, discardLogger(), m, 1)

	rec.Record(context.Background(), Event{Action: ActionLoginSuccess})
	rec.Record(context.Background(), Event{Action: ActionLoginSuccess})
	rec.Record(context.Background(), Event{Action: ActionLoginSuccess})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.AuditEventsDropped))
}

func TestListFiltersAndPagination(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, Event{
			Action:       ActionPolicyAcknowledge,
			ResourceType: ResourcePolicy,
			ResourceID:   "POL-1",
			Status:       StatusSuccess,
			ActorEmail:   "pat@corp.example",
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.Append(ctx, Event{
		Action:       ActionLoginFail,
		ResourceType: ResourceAuth,
		Status:       StatusFail,
		ActorEmail:   "ghost@corp.example",
		CreatedAt:    base.Add(time.Hour),
	}))

	t.Run("newest first", func(t *testing.T) {
		page, err := store.List(ctx, Filters{}, 1, 10)
		require.NoError(t, err)
		require.Equal(t, 6, page.Total)
		assert.Equal(t, ActionLoginFail, page.Items[0].Action)
	})

	t.Run("action filter", func(t *testing.T) {
		page, err := store.List(ctx, Filters{Action: ActionLoginFail}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
	})

	t.Run("status and email filters combine", func(t *testing.T) {
		page, err := store.List(ctx, Filters{Status: StatusSuccess, ActorEmail: "pat@corp.example"}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 5, page.Total)
	})

	t.Run("pagination windows", func(t *testing.T) {
		page, err := store.List(ctx, Filters{}, 2, 4)
		require.NoError(t, err)
		assert.Equal(t, 6, page.Total)
		assert.Len(t, page.Items, 2)

		page, err = store.List(ctx, Filters{}, 9, 4)
		require.NoError(t, err)
		assert.Empty(t, page.Items, "pages past the end are empty, not an error")
	})
}
