package storage

import (
	"context"
	"fmt"
	"time"

	"contas/internal/core"
)

// GetStatistics returns the stored per-category historical statistics.
func (r *Repository) GetStatistics(ctx context.Context) ([]core.CategoryStatistics, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_id, mean, std_dev FROM category_statistics`)
	if err != nil {
		return nil, fmt.Errorf("list statistics: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryStatistics
	for rows.Next() {
		var s core.CategoryStatistics
		if err := rows.Scan(&s.CategoryID, &s.Mean, &s.StandardDeviation); err != nil {
			return nil, fmt.Errorf("scan statistics: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ReplaceStatistics swaps the statistics table for a freshly computed set.
func (r *Repository) ReplaceStatistics(ctx context.Context, stats []core.CategoryStatistics) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace statistics: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM category_statistics`); err != nil {
		return fmt.Errorf("clear statistics: %w", err)
	}

	now := time.Now().UTC()
	for _, s := range stats {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO category_statistics (category_id, mean, std_dev, computed_at)
			 VALUES (?, ?, ?, ?)`,
			s.CategoryID, s.Mean, s.StandardDeviation, now); err != nil {
			return fmt.Errorf("insert statistics for %s: %w", s.CategoryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace statistics: %w", err)
	}
	return nil
}
