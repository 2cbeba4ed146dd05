package ack

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type LedgerStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func (s *LedgerStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

// SetupSubTest gives every s.Run subtest a fresh store; each subtest seeds
// its own records and assumes an empty ledger.
func (s *LedgerStoreSuite) SetupSubTest() {
	s.store = NewInMemoryStore()
}

func TestLedgerStoreSuite(t *testing.T) {
	suite.Run(t, new(LedgerStoreSuite))
}

// TestEnsurePending verifies fan-out seeding only creates missing pairs.
func (s *LedgerStoreSuite) TestEnsurePending() {
	s.Run("creates a pending record per employee", func() {
		created, err := s.store.EnsurePending(s.ctx, "POL-1", []string{"emp-1", "emp-2"}, s.now)
		s.Require().NoError(err)
		s.Equal(2, created)

		records, err := s.store.ListByEmployee(s.ctx, "emp-1")
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal(StatusPending, records[0].Status)
		s.Nil(records[0].AcknowledgedAt)
	})

	s.Run("is idempotent for existing pairs", func() {
		_, err := s.store.EnsurePending(s.ctx, "POL-1", []string{"emp-1"}, s.now)
		s.Require().NoError(err)

		created, err := s.store.EnsurePending(s.ctx, "POL-1", []string{"emp-1", "emp-2"}, s.now.Add(time.Hour))
		s.Require().NoError(err)
		s.Equal(1, created, "only the new pair should be created")
	})

	s.Run("does not overwrite an acknowledged record", func() {
		_, err := s.store.Acknowledge(s.ctx, "POL-2", "emp-1", s.now)
		s.Require().NoError(err)

		created, err := s.store.EnsurePending(s.ctx, "POL-2", []string{"emp-1"}, s.now.Add(time.Hour))
		s.Require().NoError(err)
		s.Equal(0, created)

		records, err := s.store.ListByEmployee(s.ctx, "emp-1")
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal(StatusAcknowledged, records[0].Status)
	})
}

// TestAcknowledge verifies acknowledgment upsert semantics.
func (s *LedgerStoreSuite) TestAcknowledge() {
	s.Run("flips a pending record", func() {
		_, err := s.store.EnsurePending(s.ctx, "POL-1", []string{"emp-1"}, s.now)
		s.Require().NoError(err)

		record, err := s.store.Acknowledge(s.ctx, "POL-1", "emp-1", s.now.Add(time.Minute))
		s.Require().NoError(err)
		s.Equal(StatusAcknowledged, record.Status)
		s.Require().NotNil(record.AcknowledgedAt)
		s.Equal(s.now.Add(time.Minute), *record.AcknowledgedAt)
	})

	s.Run("creates the record when none was seeded", func() {
		record, err := s.store.Acknowledge(s.ctx, "POL-1", "late-hire", s.now)
		s.Require().NoError(err)
		s.Equal(StatusAcknowledged, record.Status)
		s.Equal(s.now, record.CreatedAt)
	})

	s.Run("repeat acknowledgment refreshes the timestamp", func() {
		first, err := s.store.Acknowledge(s.ctx, "POL-1", "emp-1", s.now)
		s.Require().NoError(err)

		later := s.now.Add(2 * time.Hour)
		second, err := s.store.Acknowledge(s.ctx, "POL-1", "emp-1", later)
		s.Require().NoError(err)

		s.Equal(first.CreatedAt, second.CreatedAt)
		s.Require().NotNil(second.AcknowledgedAt)
		s.Equal(later, *second.AcknowledgedAt)

		count, err := s.store.CountByStatus(s.ctx, StatusAcknowledged)
		s.Require().NoError(err)
		s.Equal(1, count, "upsert must not duplicate the pair")
	})
}

// TestCounting verifies the counts the compliance summary is built from.
func (s *LedgerStoreSuite) TestCounting() {
	_, err := s.store.EnsurePending(s.ctx, "POL-1", []string{"emp-1", "emp-2", "emp-3"}, s.now)
	s.Require().NoError(err)
	_, err = s.store.Acknowledge(s.ctx, "POL-1", "emp-1", s.now)
	s.Require().NoError(err)

	pending, err := s.store.CountByStatus(s.ctx, StatusPending)
	s.Require().NoError(err)
	s.Equal(2, pending)

	acknowledged, err := s.store.CountByStatus(s.ctx, StatusAcknowledged)
	s.Require().NoError(err)
	s.Equal(1, acknowledged)
}

// TestDeleteForPolicy verifies cascade removal of a policy's ledger rows.
func (s *LedgerStoreSuite) TestDeleteForPolicy() {
	_, err := s.store.EnsurePending(s.ctx, "POL-1", []string{"emp-1", "emp-2"}, s.now)
	s.Require().NoError(err)
	_, err = s.store.EnsurePending(s.ctx, "POL-2", []string{"emp-1"}, s.now)
	s.Require().NoError(err)

	s.Require().NoError(s.store.DeleteForPolicy(s.ctx, "POL-1"))

	records, err := s.store.ListByEmployee(s.ctx, "emp-1")
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("POL-2", records[0].PolicyID)

	records, err = s.store.ListByEmployee(s.ctx, "emp-2")
	s.Require().NoError(err)
	s.Empty(records)
}
