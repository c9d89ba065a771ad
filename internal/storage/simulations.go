package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
)

// SaveSimulation stores a named scenario. Only the parameters are persisted;
// re-running the simulation later uses whatever data exists at that time.
func (r *Repository) SaveSimulation(ctx context.Context, sim core.SavedSimulation) (core.SavedSimulation, error) {
	if sim.ID == "" {
		sim.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	sim.CreatedAt = now
	sim.UpdatedAt = now

	params, err := json.Marshal(sim)
	if err != nil {
		return core.SavedSimulation{}, fmt.Errorf("marshal simulation params: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO saved_simulations (id, name, params, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		sim.ID, sim.Name, string(params), sim.CreatedAt, sim.UpdatedAt)
	if err != nil {
		return core.SavedSimulation{}, fmt.Errorf("insert simulation: %w", err)
	}

	slog.InfoContext(ctx, "Simulation saved", "id", sim.ID, "name", sim.Name)
	return sim, nil
}

func (r *Repository) GetSimulation(ctx context.Context, id string) (core.SavedSimulation, error) {
	var (
		params               string
		createdAt, updatedAt time.Time
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT params, created_at, updated_at FROM saved_simulations WHERE id = ?`, id).
		Scan(&params, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return core.SavedSimulation{}, ErrNotFound
	}
	if err != nil {
		return core.SavedSimulation{}, fmt.Errorf("get simulation: %w", err)
	}
	return decodeSimulation(params, createdAt, updatedAt)
}

// ListSimulations returns all saved scenarios, newest first.
func (r *Repository) ListSimulations(ctx context.Context) ([]core.SavedSimulation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT params, created_at, updated_at FROM saved_simulations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list simulations: %w", err)
	}
	defer rows.Close()

	var sims []core.SavedSimulation
	for rows.Next() {
		var (
			params               string
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&params, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan simulation: %w", err)
		}
		sim, err := decodeSimulation(params, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		sims = append(sims, sim)
	}
	return sims, rows.Err()
}

func (r *Repository) UpdateSimulation(ctx context.Context, sim core.SavedSimulation) error {
	sim.UpdatedAt = time.Now().UTC()
	params, err := json.Marshal(sim)
	if err != nil {
		return fmt.Errorf("marshal simulation params: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE saved_simulations SET name = ?, params = ?, updated_at = ? WHERE id = ?`,
		sim.Name, string(params), sim.UpdatedAt, sim.ID)
	if err != nil {
		return fmt.Errorf("update simulation: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteSimulation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_simulations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete simulation: %w", err)
	}
	return requireRow(res)
}

func decodeSimulation(params string, createdAt, updatedAt time.Time) (core.SavedSimulation, error) {
	var sim core.SavedSimulation
	if err := json.Unmarshal([]byte(params), &sim); err != nil {
		return core.SavedSimulation{}, fmt.Errorf("decode simulation params: %w", err)
	}
	// Column values win over whatever the JSON blob carried.
	sim.CreatedAt = createdAt
	sim.UpdatedAt = updatedAt
	return sim, nil
}
