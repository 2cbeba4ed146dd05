//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"complyd/internal/audit"
	"complyd/pkg/testutil/containers"
)

type PostgresAuditSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
}

func TestPostgresAuditSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresAuditSuite))
}

func (s *PostgresAuditSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = audit.NewPostgres(s.postgres.DB)
}

func (s *PostgresAuditSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_events"))
}

func (s *PostgresAuditSuite) newEvent(action string, status audit.Status, at time.Time) audit.Event {
	return audit.Event{
		ID:           uuid.New(),
		Action:       action,
		ResourceType: audit.ResourcePolicy,
		ResourceID:   "POL-1",
		Status:       status,
		ActorID:      "adm-1",
		ActorEmail:   "hr@corp.example",
		ActorRole:    "Admin",
		IP:           "203.0.113.9",
		UserAgent:    "curl/8.0",
		Method:       "POST",
		Route:        "/policies",
		CreatedAt:    at,
	}
}

func (s *PostgresAuditSuite) TestAppendAndListNewestFirst() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i := 0; i < 3; i++ {
		event := s.newEvent(audit.ActionPolicyCreate, audit.StatusSuccess, base.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(s.store.Append(ctx, event))
	}

	page, err := s.store.List(ctx, audit.Filters{}, 1, 10)
	s.Require().NoError(err)
	s.Equal(3, page.Total)
	s.Require().Len(page.Items, 3)
	s.True(page.Items[0].CreatedAt.After(page.Items[2].CreatedAt))
}

func (s *PostgresAuditSuite) TestMetaRoundTrip() {
	ctx := context.Background()

	event := s.newEvent(audit.ActionHTTPError, audit.StatusFail, time.Now().UTC().Truncate(time.Microsecond))
	event.Meta = map[string]any{"statusCode": float64(404), "durationMs": float64(3)}
	s.Require().NoError(s.store.Append(ctx, event))

	page, err := s.store.List(ctx, audit.Filters{Action: audit.ActionHTTPError}, 1, 10)
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal(event.Meta, page.Items[0].Meta)
}

func (s *PostgresAuditSuite) TestFiltersAndPagination() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i := 0; i < 5; i++ {
		s.Require().NoError(s.store.Append(ctx, s.newEvent(audit.ActionPolicyAcknowledge, audit.StatusSuccess, base.Add(time.Duration(i)*time.Second))))
	}
	fail := s.newEvent(audit.ActionLoginFail, audit.StatusFail, base.Add(time.Minute))
	fail.ActorEmail = "ghost@corp.example"
	s.Require().NoError(s.store.Append(ctx, fail))

	page, err := s.store.List(ctx, audit.Filters{Status: audit.StatusFail}, 1, 10)
	s.Require().NoError(err)
	s.Equal(1, page.Total)
	s.Equal(audit.ActionLoginFail, page.Items[0].Action)

	page, err = s.store.List(ctx, audit.Filters{Action: audit.ActionPolicyAcknowledge}, 2, 3)
	s.Require().NoError(err)
	s.Equal(5, page.Total)
	s.Len(page.Items, 2)
}
