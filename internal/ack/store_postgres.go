package ack

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresStore persists ledger records in the acknowledgments table. The
// UNIQUE (policy_id, employee_id) constraint — not application logic — is
// what keeps concurrent publishes from duplicating a pair: EnsurePending is
// a single INSERT ... ON CONFLICT DO NOTHING and Acknowledge a single
// INSERT ... ON CONFLICT DO UPDATE.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsurePending(ctx context.Context, policyID string, employeeIDs []string, now time.Time) (int, error) {
	if len(employeeIDs) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO acknowledgments (policy_id, employee_id, status, created_at, updated_at)
		SELECT $1, unnest($2::text[]), $3, $4, $4
		ON CONFLICT (policy_id, employee_id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query, policyID, pq.Array(employeeIDs), string(StatusPending), now)
	if err != nil {
		return 0, fmt.Errorf("ensure pending acknowledgments: %w", err)
	}

	created, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(created), nil
}

func (s *PostgresStore) Acknowledge(ctx context.Context, policyID, employeeID string, at time.Time) (*Record, error) {
	query := `
		INSERT INTO acknowledgments (policy_id, employee_id, status, acknowledged_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4, $4)
		ON CONFLICT (policy_id, employee_id) DO UPDATE
		SET status = EXCLUDED.status,
		    acknowledged_at = EXCLUDED.acknowledged_at,
		    updated_at = EXCLUDED.updated_at
		RETURNING policy_id, employee_id, status, acknowledged_at, created_at, updated_at
	`
	return scanRecord(s.db.QueryRowContext(ctx, query, policyID, employeeID, string(StatusAcknowledged), at))
}

func (s *PostgresStore) ListByEmployee(ctx context.Context, employeeID string) ([]*Record, error) {
	query := `
		SELECT policy_id, employee_id, status, acknowledged_at, created_at, updated_at
		FROM acknowledgments
		WHERE employee_id = $1
		ORDER BY policy_id
	`
	rows, err := s.db.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("query acknowledgments: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecordFrom(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate acknowledgments: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM acknowledgments WHERE status = $1`, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count acknowledgments: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) DeleteForPolicy(ctx context.Context, policyID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM acknowledgments WHERE policy_id = $1`, policyID)
	if err != nil {
		return fmt.Errorf("delete acknowledgments: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row *sql.Row) (*Record, error) {
	return scanRecordFrom(row)
}

func scanRecordFrom(scanner rowScanner) (*Record, error) {
	var (
		record         Record
		status         string
		acknowledgedAt sql.NullTime
	)
	err := scanner.Scan(
		&record.PolicyID,
		&record.EmployeeID,
		&status,
		&acknowledgedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan acknowledgment: %w", err)
	}

	record.Status = Status(status)
	if acknowledgedAt.Valid {
		t := acknowledgedAt.Time
		record.AcknowledgedAt = &t
	}
	return &record, nil
}
