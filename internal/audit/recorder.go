package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"complyd/internal/platform/metrics"
	"complyd/pkg/requestcontext"
)

// Recorder is the fire-and-forget front of the audit sink. Record enriches an
// event from the request context and hands it to a background worker; it
// never blocks the calling operation and never returns an error. A persist
// failure is an operational problem, not the caller's.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	inbox   chan Event
	done    chan struct{}
}

func NewRecorder(store Store, logger *slog.Logger, m *metrics.Metrics, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	return &Recorder{
		store:   store,
		logger:  logger,
		metrics: m,
		inbox:   make(chan Event, buffer),
		done:    make(chan struct{}),
	}
}

// Record enqueues an event. Actor attribution, client metadata, the request
// line, and the request-scoped timestamp come from ctx; the caller only fills
// the what (action, resource, status, message, meta). When the buffer is full
// the event is dropped and counted — backpressure must never reach the
// triggering business operation.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Status == "" {
		event.Status = StatusInfo
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = requestcontext.Now(ctx)
	}

	actor := requestcontext.Actor(ctx)
	if event.ActorID == "" {
		event.ActorID = actor.ID
	}
	if event.ActorEmail == "" {
		event.ActorEmail = actor.Email
	}
	if event.ActorRole == "" {
		event.ActorRole = string(actor.Role)
	}
	if event.IP == "" {
		event.IP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
	if event.Method == "" {
		event.Method = requestcontext.Method(ctx)
	}
	if event.Route == "" {
		event.Route = requestcontext.Route(ctx)
	}

	select {
	case r.inbox <- event:
	default:
		r.metrics.AuditEventsDropped.Inc()
		r.logger.Warn("audit buffer full, event dropped",
			"action", event.Action,
			"resource_id", event.ResourceID,
		)
	}
}

// Run consumes the inbox until ctx is canceled, draining what remains before
// returning. Store failures are logged and swallowed; the trail is
// best-effort by contract.
func (r *Recorder) Run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case event := <-r.inbox:
			r.persist(event)
		}
	}
}

// Wait blocks until Run has returned, which includes draining the inbox.
// Call it after canceling Run's context so the process does not exit with
// buffered events unpersisted.
func (r *Recorder) Wait() {
	<-r.done
}

func (r *Recorder) drain() {
	for {
		select {
		case event := <-r.inbox:
			r.persist(event)
		default:
			return
		}
	}
}

func (r *Recorder) persist(event Event) {
	// Detached context: the originating request is long gone by the time the
	// event lands.
	if err := r.store.Append(context.Background(), event); err != nil {
		r.logger.Error("audit write failed",
			"error", err,
			"action", event.Action,
			"resource_id", event.ResourceID,
		)
	}
}
