package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lyftr/lyftr/internal/model"
)

// MaxListLimit is the largest page size List accepts.
const MaxListLimit = 100

var (
	// ErrInvalidLimit is returned when List is called with a limit
	// outside [1, MaxListLimit]. The handler validates before calling;
	// hitting this is a contract violation, not a user error.
	ErrInvalidLimit = errors.New("limit out of range")
	// ErrInvalidOffset is returned when List is called with a negative offset.
	ErrInvalidOffset = errors.New("offset must not be negative")
)

// ListFilter narrows and paginates a List call. Filters are AND-combined.
type ListFilter struct {
	Limit  int
	Offset int
	// From filters on exact sender match when non-empty.
	From string
	// Since keeps messages with ts >= Since (lexicographic compare;
	// all timestamps share the same Z-suffixed ISO-8601 format).
	Since string
	// Query keeps messages whose text contains Query case-insensitively.
	// Messages without text never match a non-empty Query.
	Query string
}

// Insert adds a message keyed by message_id. When the id already exists
// the stored row is left untouched and duplicate is true; a duplicate is
// a normal outcome, not an error. created_at is generated here.
func (r *Repository) Insert(ctx context.Context, msg *model.Message) (duplicate bool, err error) {
	createdAt := time.Now().UTC().Format(time.RFC3339)

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (message_id, from_msisdn, to_msisdn, ts, text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (message_id) DO NOTHING`,
		msg.MessageID, msg.From, msg.To, msg.TS, nullableText(msg.Text), createdAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert message: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert message: rows affected: %w", err)
	}

	return affected == 0, nil
}

// List returns messages matching filter ordered by (ts, message_id)
// ascending, plus the total match count before pagination.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*model.Message, int64, error) {
	if filter.Limit < 1 || filter.Limit > MaxListLimit {
		return nil, 0, ErrInvalidLimit
	}
	if filter.Offset < 0 {
		return nil, 0, ErrInvalidOffset
	}

	var conds []string
	var args []any

	if filter.From != "" {
		conds = append(conds, "from_msisdn = ?")
		args = append(args, filter.From)
	}
	if filter.Since != "" {
		conds = append(conds, "ts >= ?")
		args = append(args, filter.Since)
	}
	if filter.Query != "" {
		conds = append(conds, "instr(lower(text), lower(?)) > 0")
		args = append(args, filter.Query)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	query := `SELECT message_id, from_msisdn, to_msisdn, ts, text, created_at
		FROM messages` + where + `
		ORDER BY ts ASC, message_id ASC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*model.Message, 0)
	for rows.Next() {
		var msg model.Message
		var text sql.NullString
		if err := rows.Scan(&msg.MessageID, &msg.From, &msg.To, &msg.TS, &text, &msg.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan message: %w", err)
		}
		if text.Valid {
			msg.Text = &text.String
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, total, nil
}

// Stats aggregates the whole messages table: total count, distinct
// senders, the top 10 senders by message count (ties broken by sender
// ascending) and the min/max timestamps.
func (r *Repository) Stats(ctx context.Context) (*model.Stats, error) {
	stats := &model.Stats{
		MessagesPerSender: make([]model.SenderCount, 0),
	}

	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&stats.TotalMessages); err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT from_msisdn) FROM messages").Scan(&stats.SendersCount); err != nil {
		return nil, fmt.Errorf("count senders: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT from_msisdn, COUNT(*) AS n
		 FROM messages
		 GROUP BY from_msisdn
		 ORDER BY n DESC, from_msisdn ASC
		 LIMIT 10`,
	)
	if err != nil {
		return nil, fmt.Errorf("query top senders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc model.SenderCount
		if err := rows.Scan(&sc.From, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan sender count: %w", err)
		}
		stats.MessagesPerSender = append(stats.MessagesPerSender, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top senders: %w", err)
	}

	var first, last sql.NullString
	if err := r.db.QueryRowContext(ctx, "SELECT MIN(ts), MAX(ts) FROM messages").Scan(&first, &last); err != nil {
		return nil, fmt.Errorf("query timestamp range: %w", err)
	}
	if first.Valid {
		stats.FirstMessageTS = &first.String
	}
	if last.Valid {
		stats.LastMessageTS = &last.String
	}

	return stats, nil
}

// nullableText maps an absent text to NULL.
func nullableText(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
