package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"complyd/pkg/platform/sentinel"
)

// PostgresStore persists policies in the policies table. Ledger rows cascade
// on delete via the acknowledgments foreign key.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const policyColumns = `policy_id, title, subtitle, description, status, version, created_by, created_at, published_at`

func (s *PostgresStore) Create(ctx context.Context, policy *Policy) error {
	query := `
		INSERT INTO policies (` + policyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		policy.PolicyID,
		policy.Title,
		policy.Subtitle,
		policy.Description,
		string(policy.Status),
		policy.Version,
		policy.CreatedBy,
		policy.CreatedAt,
		policy.PublishedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert policy: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, policyID string) (*Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE policy_id = $1`
	return scanPolicy(s.db.QueryRowContext(ctx, query, policyID))
}

func (s *PostgresStore) List(ctx context.Context) ([]*Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies ORDER BY created_at DESC, policy_id`
	return s.queryPolicies(ctx, query)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]*Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE status = $1 ORDER BY created_at DESC, policy_id`
	return s.queryPolicies(ctx, query, string(status))
}

func (s *PostgresStore) CountByStatus(ctx context.Context, status Status) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM policies WHERE status = $1`, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count policies: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Update(ctx context.Context, policy *Policy) error {
	query := `
		UPDATE policies
		SET title = $2, subtitle = $3, description = $4, status = $5,
		    version = $6, published_at = $7
		WHERE policy_id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		policy.PolicyID,
		policy.Title,
		policy.Subtitle,
		policy.Description,
		string(policy.Status),
		policy.Version,
		policy.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("update policy: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, policyID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM policies WHERE policy_id = $1`, policyID)
	if err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) queryPolicies(ctx context.Context, query string, args ...any) ([]*Policy, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query policies: %w", err)
	}
	defer rows.Close()

	var policies []*Policy
	for rows.Next() {
		policy, err := scanPolicyFrom(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policies: %w", err)
	}
	return policies, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row *sql.Row) (*Policy, error) {
	policy, err := scanPolicyFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return policy, err
}

func scanPolicyFrom(scanner rowScanner) (*Policy, error) {
	var (
		policy      Policy
		status      string
		publishedAt sql.NullTime
	)
	err := scanner.Scan(
		&policy.PolicyID,
		&policy.Title,
		&policy.Subtitle,
		&policy.Description,
		&status,
		&policy.Version,
		&policy.CreatedBy,
		&policy.CreatedAt,
		&publishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan policy: %w", err)
	}

	policy.Status = Status(status)
	if publishedAt.Valid {
		t := publishedAt.Time
		policy.PublishedAt = &t
	}
	return &policy, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
