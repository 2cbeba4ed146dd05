// Package service implements policy lifecycle operations, including the
// publish fan-out that seeds the acknowledgment ledger.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Roster,Ledger,Auditor

import (
	"context"
	"errors"

	"complyd/internal/audit"
	"complyd/internal/policy"
	dErrors "complyd/pkg/domain-errors"
	"complyd/pkg/platform/sentinel"
	"complyd/pkg/requestcontext"
)

// Roster yields the employee IDs that must hold a ledger record: roles
// Employee and Manager, never Admin.
type Roster interface {
	EligibleIDs(ctx context.Context) ([]string, error)
}

// Ledger is the slice of the acknowledgment ledger this service drives.
type Ledger interface {
	// EnsurePending inserts a Pending record for every (policyID, employeeID)
	// pair that has none. Existing records are untouched.
	EnsurePending(ctx context.Context, policyID string, employeeIDs []string) (created int, err error)
	// DeleteForPolicy removes every ledger record of a policy.
	DeleteForPolicy(ctx context.Context, policyID string) error
}

// Auditor is the slice of the audit recorder this service needs.
type Auditor interface {
	Record(ctx context.Context, event audit.Event)
}

// Service owns policy mutations and the fan-out trigger. Reads pass through
// to the store.
type Service struct {
	store  policy.Store
	roster Roster
	ledger Ledger
	audit  Auditor
}

func New(store policy.Store, roster Roster, ledger Ledger, auditor Auditor) *Service {
	return &Service{store: store, roster: roster, ledger: ledger, audit: auditor}
}

// CreatePolicyInput carries the fields for a new policy. PolicyID, Title,
// Subtitle, and Description are required; Status defaults to Published and
// Version to "1.0", matching how administrators actually use the form.
type CreatePolicyInput struct {
	PolicyID    string
	Title       string
	Subtitle    string
	Description string
	Status      string
	Version     string
}

func (s *Service) Create(ctx context.Context, input CreatePolicyInput) (*policy.Policy, error) {
	p, err := s.create(ctx, input)
	s.recordOutcome(ctx, audit.ActionPolicyCreate, input.PolicyID, err)
	return p, err
}

func (s *Service) create(ctx context.Context, input CreatePolicyInput) (*policy.Policy, error) {
	if input.PolicyID == "" || input.Title == "" || input.Subtitle == "" || input.Description == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "policyId, title, subtitle, and description are required")
	}

	status := policy.StatusPublished
	if input.Status != "" {
		parsed, ok := policy.ParseStatus(input.Status)
		if !ok {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid status: %s", input.Status)
		}
		status = parsed
	}

	version := input.Version
	if version == "" {
		version = "1.0"
	}

	now := requestcontext.Now(ctx)
	p := &policy.Policy{
		PolicyID:    input.PolicyID,
		Title:       input.Title,
		Subtitle:    input.Subtitle,
		Description: input.Description,
		Status:      status,
		Version:     version,
		CreatedBy:   requestcontext.Actor(ctx).ID,
		CreatedAt:   now,
	}
	if status == policy.StatusPublished {
		p.PublishedAt = &now
	}

	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "policy %s already exists", input.PolicyID)
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create policy", err)
	}

	if status == policy.StatusPublished {
		if err := s.fanOut(ctx, p.PolicyID); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, policyID string) (*policy.Policy, error) {
	p, err := s.store.Get(ctx, policyID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "policy not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to fetch policy", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]*policy.Policy, error) {
	policies, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list policies", err)
	}
	return policies, nil
}

// UpdatePolicyInput carries optional field edits. The policyId itself is
// immutable; status changes go through SetStatus so fan-out cannot be skipped.
type UpdatePolicyInput struct {
	Title       *string
	Subtitle    *string
	Description *string
	Version     *string
}

func (s *Service) Update(ctx context.Context, policyID string, input UpdatePolicyInput) (*policy.Policy, error) {
	p, err := s.update(ctx, policyID, input)
	s.recordOutcome(ctx, audit.ActionPolicyUpdate, policyID, err)
	return p, err
}

func (s *Service) update(ctx context.Context, policyID string, input UpdatePolicyInput) (*policy.Policy, error) {
	p, err := s.Get(ctx, policyID)
	if err != nil {
		return nil, err
	}

	for _, field := range []struct {
		value  *string
		target *string
		name   string
	}{
		{input.Title, &p.Title, "title"},
		{input.Subtitle, &p.Subtitle, "subtitle"},
		{input.Description, &p.Description, "description"},
		{input.Version, &p.Version, "version"},
	} {
		if field.value == nil {
			continue
		}
		if *field.value == "" {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "%s must not be empty", field.name)
		}
		*field.target = *field.value
	}

	if err := s.store.Update(ctx, p); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update policy", err)
	}
	return p, nil
}

// SetStatus transitions a policy between Draft and Published. Setting
// Published stamps publishedAt and always triggers fan-out, including when
// the policy was already Published — republish is how employees hired since
// the last publish get their Pending records.
func (s *Service) SetStatus(ctx context.Context, policyID string, status string) (*policy.Policy, error) {
	p, err := s.setStatus(ctx, policyID, status)
	s.recordOutcome(ctx, audit.ActionPolicyStatus, policyID, err)
	return p, err
}

func (s *Service) setStatus(ctx context.Context, policyID string, status string) (*policy.Policy, error) {
	parsed, ok := policy.ParseStatus(status)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid status: %s", status)
	}

	p, err := s.Get(ctx, policyID)
	if err != nil {
		return nil, err
	}

	p.Status = parsed
	switch parsed {
	case policy.StatusPublished:
		now := requestcontext.Now(ctx)
		p.PublishedAt = &now
	case policy.StatusDraft:
		p.PublishedAt = nil
	}

	if err := s.store.Update(ctx, p); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update policy status", err)
	}

	if parsed == policy.StatusPublished {
		if err := s.fanOut(ctx, p.PolicyID); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Delete removes a policy and all of its ledger records in the same logical
// operation. Leaving ledger rows behind would permanently skew compliance
// figures, so the cascade is correctness, not cleanup.
func (s *Service) Delete(ctx context.Context, policyID string) error {
	err := s.delete(ctx, policyID)
	s.recordOutcome(ctx, audit.ActionPolicyDelete, policyID, err)
	return err
}

func (s *Service) delete(ctx context.Context, policyID string) error {
	err := s.store.Delete(ctx, policyID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "policy not found")
	}
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to delete policy", err)
	}

	if err := s.ledger.DeleteForPolicy(ctx, policyID); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to delete acknowledgment records", err)
	}
	return nil
}

// fanOut guarantees every current eligible employee has a ledger record for
// the policy. It re-scans the full roster on every publish rather than
// diffing against a subscriber list; the ledger's pair uniqueness makes the
// redundant inserts no-ops, and there is no subscription structure to drift.
// Employees hired after a publish receive their record on the next
// publish/republish, not automatically.
func (s *Service) fanOut(ctx context.Context, policyID string) error {
	ids, err := s.roster.EligibleIDs(ctx)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to load eligible roster", err)
	}
	if _, err := s.ledger.EnsurePending(ctx, policyID, ids); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to seed pending acknowledgments", err)
	}
	return nil
}

func (s *Service) recordOutcome(ctx context.Context, action, policyID string, err error) {
	event := audit.Event{
		Action:       action,
		ResourceType: audit.ResourcePolicy,
		ResourceID:   policyID,
		Status:       audit.StatusSuccess,
	}
	if err != nil {
		event.Status = audit.StatusFail
		event.Message = err.Error()
	}
	s.audit.Record(ctx, event)
}
