// Package service implements acknowledgment ledger operations: recording an
// employee's acknowledgment, seeding Pending records on publish, and joining
// the ledger onto the published catalog for an employee's own view.
package service

import (
	"context"
	"errors"
	"time"

	"complyd/internal/ack"
	"complyd/internal/audit"
	"complyd/internal/policy"
	dErrors "complyd/pkg/domain-errors"
	"complyd/pkg/platform/sentinel"
	"complyd/pkg/requestcontext"
)

// PolicyCatalog is the slice of the policy store this service reads.
type PolicyCatalog interface {
	Get(ctx context.Context, policyID string) (*policy.Policy, error)
	ListByStatus(ctx context.Context, status policy.Status) ([]*policy.Policy, error)
}

// Auditor is the slice of the audit recorder this service needs.
type Auditor interface {
	Record(ctx context.Context, event audit.Event)
}

type Service struct {
	store   ack.Store
	catalog PolicyCatalog
	audit   Auditor
}

func New(store ack.Store, catalog PolicyCatalog, auditor Auditor) *Service {
	return &Service{store: store, catalog: catalog, audit: auditor}
}

// Acknowledge records that employeeID has acknowledged policyID. The write is
// an upsert: acknowledging twice refreshes the timestamp instead of failing,
// and an employee without a seeded Pending record (hired after the last
// publish) gets a record created on the spot.
func (s *Service) Acknowledge(ctx context.Context, policyID, employeeID string) (*ack.Record, error) {
	record, err := s.acknowledge(ctx, policyID, employeeID)

	event := audit.Event{
		Action:       audit.ActionPolicyAcknowledge,
		ResourceType: audit.ResourcePolicy,
		ResourceID:   policyID,
		Status:       audit.StatusSuccess,
	}
	if err != nil {
		event.Status = audit.StatusFail
		event.Message = err.Error()
	}
	s.audit.Record(ctx, event)

	return record, err
}

func (s *Service) acknowledge(ctx context.Context, policyID, employeeID string) (*ack.Record, error) {
	p, err := s.catalog.Get(ctx, policyID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "policy not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to fetch policy", err)
	}
	if p.Status != policy.StatusPublished {
		return nil, dErrors.New(dErrors.CodeNotFound, "policy is not published")
	}

	record, err := s.store.Acknowledge(ctx, policyID, employeeID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to record acknowledgment", err)
	}
	return record, nil
}

// PolicyWithStatus is a published policy annotated with the calling
// employee's own ledger state.
type PolicyWithStatus struct {
	*policy.Policy
	MyAckStatus      ack.Status `json:"myAckStatus"`
	MyAcknowledgedAt *time.Time `json:"myAcknowledgedAt,omitempty"`
}

// PoliciesWithStatus returns every Published policy annotated with the
// employee's acknowledgment state. A policy with no ledger record reads as
// Pending; the read never materializes a record.
func (s *Service) PoliciesWithStatus(ctx context.Context, employeeID string) ([]*PolicyWithStatus, error) {
	published, err := s.catalog.ListByStatus(ctx, policy.StatusPublished)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list published policies", err)
	}

	records, err := s.store.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list acknowledgments", err)
	}
	byPolicy := make(map[string]*ack.Record, len(records))
	for _, record := range records {
		byPolicy[record.PolicyID] = record
	}

	annotated := make([]*PolicyWithStatus, 0, len(published))
	for _, p := range published {
		entry := &PolicyWithStatus{Policy: p, MyAckStatus: ack.StatusPending}
		if record, ok := byPolicy[p.PolicyID]; ok {
			entry.MyAckStatus = record.Status
			entry.MyAcknowledgedAt = record.AcknowledgedAt
		}
		annotated = append(annotated, entry)
	}
	return annotated, nil
}

// EnsurePending seeds Pending records for a just-published policy. It exists
// so the policy service can drive fan-out without depending on the store
// package directly.
func (s *Service) EnsurePending(ctx context.Context, policyID string, employeeIDs []string) (int, error) {
	return s.store.EnsurePending(ctx, policyID, employeeIDs, requestcontext.Now(ctx))
}

// DeleteForPolicy removes every ledger record of a deleted policy.
func (s *Service) DeleteForPolicy(ctx context.Context, policyID string) error {
	return s.store.DeleteForPolicy(ctx, policyID)
}
