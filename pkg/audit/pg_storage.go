package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, user_id, action, resource, resource_id, result, error, request_id, ip, metadata, created_at`

// PostgresStorage writes events to the audit_events table created by the
// application migrations.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

func (p *PostgresStorage) Store(ctx context.Context, events ...Event) error {
	batch := &pgx.Batch{}
	for _, e := range events {
		metadata := e.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		batch.Queue(`INSERT INTO audit_events (`+eventColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			e.ID, e.UserID, e.Action, e.Resource, e.ResourceID, string(e.Result),
			e.Error, e.RequestID, e.IP, metadata, e.CreatedAt,
		)
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (p *PostgresStorage) Query(ctx context.Context, criteria Criteria) ([]Event, error) {
	var (
		where []string
		args  []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s $%d", column, len(args)))
	}
	if criteria.UserID != "" {
		add("user_id =", criteria.UserID)
	}
	if criteria.Action != "" {
		add("action =", criteria.Action)
	}
	if criteria.ResourceID != "" {
		add("resource_id =", criteria.ResourceID)
	}
	if criteria.Result != "" {
		add("result =", string(criteria.Result))
	}
	if !criteria.Since.IsZero() {
		add("created_at >=", criteria.Since)
	}

	query := `SELECT ` + eventColumns + ` FROM audit_events`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, criteria.limit())
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e      Event
			result string
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Action, &e.Resource, &e.ResourceID, &result,
			&e.Error, &e.RequestID, &e.IP, &e.Metadata, &e.CreatedAt,
		); err != nil {
			return nil, errors.Join(ErrStorage, err)
		}
		e.Result = Result(result)
		e.CreatedAt = e.CreatedAt.UTC()
		if len(e.Metadata) == 0 {
			e.Metadata = nil
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return out, nil
}
