package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PostgresStore implements Store on the audit_events table. The table has no
// UPDATE or DELETE path anywhere in this codebase; append-only is a property
// of the code, enforced at review, not a database trigger.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var meta []byte
	if event.Meta != nil {
		var err error
		meta, err = json.Marshal(event.Meta)
		if err != nil {
			return fmt.Errorf("marshal audit meta: %w", err)
		}
	}

	query := `
		INSERT INTO audit_events (
			id, action, resource_type, resource_id, status, message,
			actor_id, actor_email, actor_role,
			ip, user_agent, method, route, meta, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.Action,
		event.ResourceType,
		event.ResourceID,
		string(event.Status),
		event.Message,
		event.ActorID,
		event.ActorEmail,
		event.ActorRole,
		event.IP,
		event.UserAgent,
		event.Method,
		event.Route,
		nullableJSON(meta),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filters Filters, page, pageSize int) (Page, error) {
	where, args := buildFilterClause(filters)

	var total int
	countQuery := "SELECT COUNT(*) FROM audit_events" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("count audit events: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, action, resource_type, resource_id, status, message,
		       actor_id, actor_email, actor_role,
		       ip, user_agent, method, route, meta, created_at
		FROM audit_events%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Page{}, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	items, err := scanEvents(rows)
	if err != nil {
		return Page{}, err
	}

	return Page{Items: items, Page: page, PageSize: pageSize, Total: total}, nil
}

// buildFilterClause turns set filters into an AND-combined WHERE clause with
// positional args.
func buildFilterClause(f Filters) (string, []any) {
	var conds []string
	var args []any

	add := func(column, value string) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if f.Action != "" {
		add("action", f.Action)
	}
	if f.ResourceType != "" {
		add("resource_type", f.ResourceType)
	}
	if f.ActorEmail != "" {
		add("actor_email", f.ActorEmail)
	}
	if f.IP != "" {
		add("ip", f.IP)
	}
	if f.Status != "" {
		add("status", string(f.Status))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event

	for rows.Next() {
		var (
			event  Event
			status string
			meta   []byte
		)

		err := rows.Scan(
			&event.ID,
			&event.Action,
			&event.ResourceType,
			&event.ResourceID,
			&status,
			&event.Message,
			&event.ActorID,
			&event.ActorEmail,
			&event.ActorRole,
			&event.IP,
			&event.UserAgent,
			&event.Method,
			&event.Route,
			&meta,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.Status = Status(status)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &event.Meta); err != nil {
				return nil, fmt.Errorf("unmarshal audit meta: %w", err)
			}
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return events, nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
