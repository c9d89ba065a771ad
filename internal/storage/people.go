package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"contas/internal/core"
)

// CreatePerson inserts a person, assigning a UUID when none is set.
func (r *Repository) CreatePerson(ctx context.Context, p core.Person) (core.Person, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO people (id, name, income, linked_user_id) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.Income, p.LinkedUserID)
	if err != nil {
		return core.Person{}, fmt.Errorf("insert person: %w", err)
	}

	slog.InfoContext(ctx, "Person created", "id", p.ID, "name", p.Name)
	return p, nil
}

func (r *Repository) GetPerson(ctx context.Context, id string) (core.Person, error) {
	var p core.Person
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, income, linked_user_id FROM people WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Income, &p.LinkedUserID)
	if err == sql.ErrNoRows {
		return core.Person{}, ErrNotFound
	}
	if err != nil {
		return core.Person{}, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

// ListPeople returns all household members ordered by name.
func (r *Repository) ListPeople(ctx context.Context) ([]core.Person, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, income, linked_user_id FROM people ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var people []core.Person
	for rows.Next() {
		var p core.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Income, &p.LinkedUserID); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

func (r *Repository) UpdatePerson(ctx context.Context, p core.Person) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE people SET name = ?, income = ?, linked_user_id = ? WHERE id = ?`,
		p.Name, p.Income, p.LinkedUserID, p.ID)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	return requireRow(res)
}

// DeletePerson removes a person after reassigning their transactions to a
// replacement. When replacementID is empty the most frequent remaining payer
// is chosen; with no other person in the household the deletion fails with
// core.ErrNoReplacementPerson.
func (r *Repository) DeletePerson(ctx context.Context, id, replacementID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete person: %w", err)
	}
	defer tx.Rollback()

	var hasTransactions bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE paid_by = ?)`, id).
		Scan(&hasTransactions); err != nil {
		return fmt.Errorf("check person transactions: %w", err)
	}

	if hasTransactions {
		if replacementID == "" {
			err := tx.QueryRowContext(ctx,
				`SELECT p.id FROM people p WHERE p.id != ?
				 ORDER BY (SELECT COUNT(*) FROM transactions t WHERE t.paid_by = p.id) DESC, p.created_at
				 LIMIT 1`, id).Scan(&replacementID)
			if err == sql.ErrNoRows {
				return core.ErrNoReplacementPerson
			}
			if err != nil {
				return fmt.Errorf("pick replacement person: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE transactions SET paid_by = ? WHERE paid_by = ?`, replacementID, id); err != nil {
			return fmt.Errorf("reassign transactions: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete person: %w", err)
	}

	slog.InfoContext(ctx, "Person deleted", "id", id, "replacement", replacementID)
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
