package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PostgresStore persists events in the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append inserts event. Re-appending the same ID is a no-op.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("encode audit details: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			id, occurred_at, actor, action, resource, resource_id,
			outcome, request_id, client_ip, user_agent, details
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`,
		event.ID,
		event.OccurredAt,
		event.Actor,
		string(event.Action),
		event.Resource,
		event.ResourceID,
		string(event.Outcome),
		event.RequestID,
		event.ClientIP,
		event.UserAgent,
		details,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]Event, error) {
	var (
		where []string
		args  []any
	)
	if filter.Resource != "" {
		args = append(args, filter.Resource)
		where = append(where, "resource = $"+strconv.Itoa(len(args)))
	}
	if filter.ResourceID != "" {
		args = append(args, filter.ResourceID)
		where = append(where, "resource_id = $"+strconv.Itoa(len(args)))
	}
	query := `
		SELECT id, occurred_at, actor, action, resource, resource_id,
		       outcome, request_id, client_ip, user_agent, details
		FROM audit_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filter.limit())
	query += " ORDER BY occurred_at DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e       Event
			action  string
			outcome string
			details []byte
		)
		if err := rows.Scan(
			&e.ID,
			&e.OccurredAt,
			&e.Actor,
			&action,
			&e.Resource,
			&e.ResourceID,
			&outcome,
			&e.RequestID,
			&e.ClientIP,
			&e.UserAgent,
			&details,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		e.Outcome = Outcome(outcome)
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
