package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"complyd/pkg/domain"
	"complyd/pkg/platform/sentinel"
)

// PostgresStore persists roster entries in the employees table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const employeeColumns = `id, first_name, last_name, email, password_hash, phone, address, role, created_at`

func (s *PostgresStore) Create(ctx context.Context, employee *Employee) error {
	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		employee.ID,
		employee.FirstName,
		employee.LastName,
		strings.ToLower(employee.Email),
		employee.PasswordHash,
		employee.Phone,
		employee.Address,
		string(employee.Role),
		employee.CreatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, employeeID string) (*Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, employeeID))
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE email = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, strings.ToLower(email)))
}

func (s *PostgresStore) List(ctx context.Context) ([]*Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()
	return scanEmployees(rows)
}

func (s *PostgresStore) ListByRoles(ctx context.Context, roles ...domain.Role) ([]*Employee, error) {
	roleStrings := make([]string, len(roles))
	for i, role := range roles {
		roleStrings[i] = string(role)
	}

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE role = ANY($1) ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(roleStrings))
	if err != nil {
		return nil, fmt.Errorf("query employees by role: %w", err)
	}
	defer rows.Close()
	return scanEmployees(rows)
}

func (s *PostgresStore) Update(ctx context.Context, employee *Employee) error {
	query := `
		UPDATE employees
		SET first_name = $2, last_name = $3, email = $4, password_hash = $5,
		    phone = $6, address = $7, role = $8
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		employee.ID,
		employee.FirstName,
		employee.LastName,
		strings.ToLower(employee.Email),
		employee.PasswordHash,
		employee.Phone,
		employee.Address,
		string(employee.Role),
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, employeeID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, employeeID)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) scanOne(row *sql.Row) (*Employee, error) {
	var (
		employee Employee
		role     string
	)
	err := row.Scan(
		&employee.ID,
		&employee.FirstName,
		&employee.LastName,
		&employee.Email,
		&employee.PasswordHash,
		&employee.Phone,
		&employee.Address,
		&role,
		&employee.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan employee: %w", err)
	}
	employee.Role = domain.Role(role)
	return &employee, nil
}

func scanEmployees(rows *sql.Rows) ([]*Employee, error) {
	var employees []*Employee
	for rows.Next() {
		var (
			employee Employee
			role     string
		)
		err := rows.Scan(
			&employee.ID,
			&employee.FirstName,
			&employee.LastName,
			&employee.Email,
			&employee.PasswordHash,
			&employee.Phone,
			&employee.Address,
			&role,
			&employee.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employee.Role = domain.Role(role)
		employees = append(employees, &employee)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return employees, nil
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
