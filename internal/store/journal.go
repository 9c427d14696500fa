// Package store persists conversation sessions (expenses, budget limits
// and turns) in SQLite so a session can be resumed later.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/budgetbot/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Journal is a SQLite-backed write-through log of session state.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at dbPath and migrates it.
func Open(dbPath string) (*Journal, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating journal dir: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// SaveExpense stores one expense for the session.
func (j *Journal) SaveExpense(ctx context.Context, sessionID string, e model.Expense) error {
	_, err := j.db.ExecContext(ctx, `INSERT OR REPLACE INTO expenses
		(session_id, id, amount, description, category, created_at, month)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, e.ID, e.Amount.String(), e.Description, string(e.Category),
		e.CreatedAt.UTC().Format(time.RFC3339Nano), e.Month,
	)
	if err != nil {
		return fmt.Errorf("save expense %d: %w", e.ID, err)
	}
	return nil
}

// Expenses loads every expense of the session in ID order.
func (j *Journal) Expenses(ctx context.Context, sessionID string) ([]model.Expense, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT id, amount, description, category, created_at, month
		FROM expenses WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Expense
	for rows.Next() {
		var e model.Expense
		var amount, category, createdAt string
		if err := rows.Scan(&e.ID, &amount, &e.Description, &category, &createdAt, &e.Month); err != nil {
			return nil, err
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("expense %d: bad amount %q: %w", e.ID, amount, err)
		}
		e.Category = model.CategoryOrOther(category)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveLimits replaces the stored budget limits for the session.
func (j *Journal) SaveLimits(ctx context.Context, sessionID string, limits map[model.Category]decimal.Decimal) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM budget_limits WHERE session_id = ?", sessionID); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, c := range model.Categories {
		amt, ok := limits[c]
		if !ok {
			continue
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO budget_limits (session_id, category, amount, updated_at)
			VALUES (?, ?, ?, ?)`, sessionID, string(c), amt.String(), now)
		if err != nil {
			return fmt.Errorf("save limit %s: %w", c, err)
		}
	}
	return tx.Commit()
}

// Limits loads the stored budget limits. ok is false when the session has
// never saved any.
func (j *Journal) Limits(ctx context.Context, sessionID string) (limits map[model.Category]decimal.Decimal, ok bool, err error) {
	rows, err := j.db.QueryContext(ctx, "SELECT category, amount FROM budget_limits WHERE session_id = ?", sessionID)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = rows.Close() }()

	limits = make(map[model.Category]decimal.Decimal)
	for rows.Next() {
		var category, amount string
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, false, err
		}
		c, err := model.ParseCategory(category)
		if err != nil {
			continue
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, false, fmt.Errorf("limit %s: bad amount %q: %w", c, amount, err)
		}
		limits[c] = amt
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return limits, len(limits) > 0, nil
}

// AppendTurn adds one conversation turn.
func (j *Journal) AppendTurn(ctx context.Context, sessionID string, t model.Turn) error {
	var intent sql.NullString
	var confidence sql.NullFloat64
	if t.Speaker == model.SpeakerUser {
		intent = sql.NullString{String: t.Intent.String(), Valid: true}
		confidence = sql.NullFloat64{Float64: t.Confidence, Valid: true}
	}
	_, err := j.db.ExecContext(ctx, `INSERT INTO turns (session_id, speaker, text, intent, confidence, at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, string(t.Speaker), t.Text, intent, confidence, t.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// Turns returns the last limit turns of the session, oldest first. A limit
// <= 0 returns all of them.
func (j *Journal) Turns(ctx context.Context, sessionID string, limit int) ([]model.Turn, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `SELECT speaker, text, intent, confidence, at FROM (
			SELECT seq, speaker, text, intent, confidence, at FROM turns
			WHERE session_id = ? ORDER BY seq DESC LIMIT ?
		) ORDER BY seq`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Turn
	for rows.Next() {
		var t model.Turn
		var speaker, at string
		var intent sql.NullString
		var confidence sql.NullFloat64
		if err := rows.Scan(&speaker, &t.Text, &intent, &confidence, &at); err != nil {
			return nil, err
		}
		t.Speaker = model.Speaker(speaker)
		if intent.Valid {
			t.Intent = model.ParseIntent(intent.String)
		}
		if confidence.Valid {
			t.Confidence = confidence.Float64
		}
		t.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, t)
	}
	return out, rows.Err()
}

// ExpenseCount returns the number of stored expenses for the session.
func (j *Journal) ExpenseCount(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses WHERE session_id = ?", sessionID).Scan(&count)
	return count, err
}
