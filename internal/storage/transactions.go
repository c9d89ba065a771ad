package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
)

const transactionColumns = `id, description, amount, category_id, paid_by, type,
	is_increment, is_recurring, is_credit_card, exclude_from_split, is_forecast, date, created_at`

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Description, t.Amount, t.CategoryID, t.PaidBy, string(t.Type),
		t.IsIncrement, t.IsRecurring, t.IsCreditCard, t.ExcludeFromSplit, t.IsForecast,
		t.Date.String(), t.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns the transactions of one reporting period ordered
// by date, then creation time.
func (r *Repository) ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error) {
	from := fmt.Sprintf("%04d-%02d-01", year, month)
	next := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	to := next.Format("2006-01-02")

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE date >= ? AND date < ? ORDER BY date, created_at`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTransactionsSince returns every transaction dated on or after the
// given day, the statistics service's trailing window.
func (r *Repository) ListTransactionsSince(ctx context.Context, from core.Date) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE date >= ? ORDER BY date, created_at`, from.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions since %s: %w", from, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET description = ?, amount = ?, category_id = ?, paid_by = ?,
		 type = ?, is_increment = ?, is_recurring = ?, is_credit_card = ?,
		 exclude_from_split = ?, is_forecast = ?, date = ? WHERE id = ?`,
		t.Description, t.Amount, t.CategoryID, t.PaidBy, string(t.Type),
		t.IsIncrement, t.IsRecurring, t.IsCreditCard, t.ExcludeFromSplit, t.IsForecast,
		t.Date.String(), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		typ     string
		dateStr string
	)
	err := row.Scan(&t.ID, &t.Description, &t.Amount, &t.CategoryID, &t.PaidBy, &typ,
		&t.IsIncrement, &t.IsRecurring, &t.IsCreditCard, &t.ExcludeFromSplit, &t.IsForecast,
		&dateStr, &t.CreatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Date, err = core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", dateStr, err)
	}
	return t, nil
}
