package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golf/internal/server/golf"
)

// EnsureInstance inserts the instance if absent and returns the stored row.
// Concurrent callers with the same parameters observe the same id.
func (s *Store) EnsureInstance(ctx context.Context, numGroups, groupSize int) (golf.Instance, error) {
	const insert = `INSERT INTO instances (num_groups, group_size) VALUES (?, ?)
		ON CONFLICT(num_groups, group_size) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, insert, numGroups, groupSize); err != nil {
		return golf.Instance{}, fmt.Errorf("failed to insert instance: %w", err)
	}
	return s.GetInstance(ctx, numGroups, groupSize)
}

// GetInstance returns the instance with the given parameters or ErrNotFound
func (s *Store) GetInstance(ctx context.Context, numGroups, groupSize int) (golf.Instance, error) {
	const query = `SELECT instance_id, num_groups, group_size FROM instances
		WHERE num_groups = ? AND group_size = ?`

	var inst golf.Instance
	err := s.db.QueryRowContext(ctx, query, numGroups, groupSize).
		Scan(&inst.ID, &inst.NumGroups, &inst.GroupSize)
	if errors.Is(err, sql.ErrNoRows) {
		return golf.Instance{}, ErrNotFound
	}
	if err != nil {
		return golf.Instance{}, fmt.Errorf("failed to query instance: %w", err)
	}
	return inst, nil
}

// ListInstances returns all instances ordered by group count then size
func (s *Store) ListInstances(ctx context.Context) ([]golf.Instance, error) {
	const query = `SELECT instance_id, num_groups, group_size FROM instances
		ORDER BY num_groups, group_size`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query instances: %w", err)
	}
	defer rows.Close()

	var instances []golf.Instance
	for rows.Next() {
		var inst golf.Instance
		if err := rows.Scan(&inst.ID, &inst.NumGroups, &inst.GroupSize); err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}
