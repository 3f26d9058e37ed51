package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// QueryOpts configures attempt queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	After   int64  // sequence > After
	Before  int64  // sequence < Before
	QuizKey string // exact quiz key match (empty = all)
}

// AttemptData captures one submitted quiz attempt.
type AttemptData struct {
	AttemptID   string
	QuizKey     string
	QuizTitle   string
	UserID      string
	Score       int
	Percentage  int
	Passed      bool
	Mode        string // "local" or "remote"
	SubmittedAt time.Time
}

// AttemptRecord is a persisted attempt with its global sequence number.
type AttemptRecord struct {
	Sequence int64
	AttemptData
}

// AttemptRepo is an append-only log of quiz submissions. It is history
// only; the progress record keeps the latest score per quiz.
type AttemptRepo interface {
	// Append records a submitted attempt.
	Append(ctx context.Context, data AttemptData) error

	// Query returns attempts newest first.
	Query(ctx context.Context, opts QueryOpts) ([]AttemptRecord, error)

	// Clear deletes every attempt.
	Clear(ctx context.Context) error
}

type attemptRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var attemptColumns = []string{
	"sequence", "attempt_id", "quiz_key", "quiz_title", "user_id",
	"score", "percentage", "passed", "mode", "submitted_at",
}

func (r *attemptRepo) Append(ctx context.Context, data AttemptData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	submitted := data.SubmittedAt
	if submitted.IsZero() {
		submitted = time.Now()
	}

	query, args := builder().
		Insert(attemptTable).
		Columns(attemptColumns...).
		Values(
			seqNum, data.AttemptID, data.QuizKey, data.QuizTitle, data.UserID,
			data.Score, data.Percentage, data.Passed, data.Mode, submitted.UTC(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) Query(ctx context.Context, opts QueryOpts) ([]AttemptRecord, error) {
	sel := builder().
		Select(attemptColumns...).
		From(entsql.Table(attemptTable)).
		OrderBy(entsql.Desc("sequence"))

	if opts.After > 0 {
		sel = sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel = sel.Where(entsql.LT("sequence", opts.Before))
	}
	if opts.QuizKey != "" {
		sel = sel.Where(entsql.EQ("quiz_key", opts.QuizKey))
	}
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		var rec AttemptRecord
		if err := rows.Scan(
			&rec.Sequence, &rec.AttemptID, &rec.QuizKey, &rec.QuizTitle, &rec.UserID,
			&rec.Score, &rec.Percentage, &rec.Passed, &rec.Mode, &rec.SubmittedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

func (r *attemptRepo) Clear(ctx context.Context) error {
	query, args := builder().Delete(attemptTable).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear attempts: %w", err)
	}
	return nil
}
