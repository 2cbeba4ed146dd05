// Package compliance computes the organization-wide acknowledgment summary
// shown on the back-office dashboard.
package compliance

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"complyd/internal/ack"
	"complyd/internal/platform/metrics"
	"complyd/internal/policy"
	dErrors "complyd/pkg/domain-errors"
)

// Roster is the slice of the employee roster this service counts.
type Roster interface {
	EligibleIDs(ctx context.Context) ([]string, error)
}

// Catalog is the slice of the policy store this service counts.
type Catalog interface {
	CountByStatus(ctx context.Context, status policy.Status) (int, error)
}

// Ledger is the slice of the acknowledgment ledger this service counts.
type Ledger interface {
	CountByStatus(ctx context.Context, status ack.Status) (int, error)
}

// Alert flags a compliance condition that needs attention.
type Alert struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Summary is the dashboard aggregate. TotalRequiredAcks is the product of
// tracked employees and published policies; AcknowledgedCount counts every
// Acknowledged ledger record, including records of policies later moved back
// to Draft. The two can therefore diverge, and PendingCount is floored at
// zero rather than allowed to go negative.
type Summary struct {
	EmployeesTracked  int     `json:"employeesTracked"`
	PublishedPolicies int     `json:"publishedPolicies"`
	TotalRequiredAcks int     `json:"totalRequiredAcks"`
	AcknowledgedCount int     `json:"acknowledgedCount"`
	PendingCount      int     `json:"pendingCount"`
	CompliancePercent int     `json:"compliancePercent"`
	Alerts            []Alert `json:"alerts"`
}

type Service struct {
	roster  Roster
	catalog Catalog
	ledger  Ledger
	metrics *metrics.Metrics
}

func NewService(roster Roster, catalog Catalog, ledger Ledger, m *metrics.Metrics) *Service {
	return &Service{roster: roster, catalog: catalog, ledger: ledger, metrics: m}
}

// Summarize gathers the three counts concurrently and derives the summary.
func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	var (
		employees    int
		published    int
		acknowledged int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.roster.EligibleIDs(gctx)
		if err != nil {
			return err
		}
		employees = len(ids)
		return nil
	})
	g.Go(func() error {
		var err error
		published, err = s.catalog.CountByStatus(gctx, policy.StatusPublished)
		return err
	})
	g.Go(func() error {
		var err error
		acknowledged, err = s.ledger.CountByStatus(gctx, ack.StatusAcknowledged)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to gather compliance counts", err)
	}

	required := employees * published
	pending := required - acknowledged
	if pending < 0 {
		pending = 0
	}

	percent := 0
	if required > 0 {
		percent = int(math.Round(float64(acknowledged) / float64(required) * 100))
	}

	summary := &Summary{
		EmployeesTracked:  employees,
		PublishedPolicies: published,
		TotalRequiredAcks: required,
		AcknowledgedCount: acknowledged,
		PendingCount:      pending,
		CompliancePercent: percent,
		Alerts:            buildAlerts(pending),
	}

	s.metrics.PendingAcknowledgments.Set(float64(pending))

	return summary, nil
}

func buildAlerts(pending int) []Alert {
	alerts := []Alert{}
	if pending > 0 {
		alerts = append(alerts, Alert{
			Severity: "medium",
			Message:  "There are pending policy acknowledgments.",
		})
	}
	return alerts
}
