package roster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"complyd/pkg/domain"
	"complyd/pkg/platform/sentinel"
)

type RosterStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *RosterStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func TestRosterStoreSuite(t *testing.T) {
	suite.Run(t, new(RosterStoreSuite))
}

func (s *RosterStoreSuite) newEmployee(id, emailAddr string, role domain.Role) *Employee {
	return &Employee{
		ID:           id,
		FirstName:    "Test",
		LastName:     "Person",
		Email:        emailAddr,
		PasswordHash: "$2a$10$hash",
		Role:         role,
		CreatedAt:    time.Now(),
	}
}

func (s *RosterStoreSuite) TestCreateAndLookups() {
	s.Run("creates and finds by id", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newEmployee("emp-1", "a@corp.example", domain.RoleEmployee)))

		found, err := s.store.Get(s.ctx, "emp-1")
		s.Require().NoError(err)
		s.Equal("a@corp.example", found.Email)
	})

	s.Run("finds by email case-insensitively", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newEmployee("emp-2", "Mixed.Case@Corp.example", domain.RoleManager)))

		found, err := s.store.GetByEmail(s.ctx, "mixed.case@corp.example")
		s.Require().NoError(err)
		s.Equal("emp-2", found.ID)
	})

	s.Run("unknown id returns ErrNotFound", func() {
		_, err := s.store.Get(s.ctx, "emp-404")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *RosterStoreSuite) TestUniqueness() {
	s.Require().NoError(s.store.Create(s.ctx, s.newEmployee("emp-1", "a@corp.example", domain.RoleEmployee)))

	s.Run("duplicate id conflicts", func() {
		err := s.store.Create(s.ctx, s.newEmployee("emp-1", "b@corp.example", domain.RoleEmployee))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("duplicate email conflicts regardless of case", func() {
		err := s.store.Create(s.ctx, s.newEmployee("emp-2", "A@CORP.EXAMPLE", domain.RoleEmployee))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *RosterStoreSuite) TestListByRoles() {
	s.Require().NoError(s.store.Create(s.ctx, s.newEmployee("emp-1", "a@corp.example", domain.RoleEmployee)))
	s.Require().NoError(s.store.Create(s.ctx, s.newEmployee("emp-2", "b@corp.example", domain.RoleManager)))
	s.Require().NoError(s.store.Create(s.ctx, s.newEmployee("adm-1", "c@corp.example", domain.RoleAdmin)))

	eligible, err := s.store.ListByRoles(s.ctx, domain.RoleEmployee, domain.RoleManager)
	s.Require().NoError(err)
	s.Require().Len(eligible, 2)
	for _, e := range eligible {
		s.NotEqual(domain.RoleAdmin, e.Role, "admins never count toward compliance")
	}
}

func (s *RosterStoreSuite) TestUpdateAndDelete() {
	s.Require().NoError(s.store.Create(s.ctx, s.newEmployee("emp-1", "a@corp.example", domain.RoleEmployee)))

	s.Run("update persists changes", func() {
		employee, err := s.store.Get(s.ctx, "emp-1")
		s.Require().NoError(err)
		employee.Email = "renamed@corp.example"
		s.Require().NoError(s.store.Update(s.ctx, employee))

		found, err := s.store.GetByEmail(s.ctx, "renamed@corp.example")
		s.Require().NoError(err)
		s.Equal("emp-1", found.ID)

		_, err = s.store.GetByEmail(s.ctx, "a@corp.example")
		s.Require().ErrorIs(err, sentinel.ErrNotFound, "old email no longer resolves")
	})

	s.Run("delete removes the record", func() {
		s.Require().NoError(s.store.Delete(s.ctx, "emp-1"))
		_, err := s.store.Get(s.ctx, "emp-1")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		s.Require().ErrorIs(s.store.Delete(s.ctx, "emp-1"), sentinel.ErrNotFound)
	})
}
