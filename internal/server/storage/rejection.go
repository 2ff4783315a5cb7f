package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RecordRejection queues an audit row for a rejected solution. The write is
// asynchronous and silently dropped while storage is degraded.
func (s *Store) RecordRejection(record RejectionRecord) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.DetailsJSON == "" {
		record.DetailsJSON = "{}"
	}

	s.enqueue("rejection", func(tx *sql.Tx) error {
		const insert = `INSERT INTO rejections (
			instance_id, num_rounds, error_kind, message, details_json, submitter_ref, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(insert,
			record.InstanceID, record.NumRounds, record.ErrorKind, record.Message,
			record.DetailsJSON, record.SubmitterRef, record.CreatedAt,
		)
		return err
	})
}

// ListRejections returns the most recent rejections for an instance, newest
// first. A zero instanceID lists all instances; a non-positive limit lists
// every row.
func (s *Store) ListRejections(ctx context.Context, instanceID int64, limit int) ([]RejectionRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	query := `SELECT rejection_id, instance_id, num_rounds, error_kind, message,
		details_json, submitter_ref, created_at FROM rejections`
	args := []any{}
	if instanceID != 0 {
		query += ` WHERE instance_id = ?`
		args = append(args, instanceID)
	}
	query += ` ORDER BY rejection_id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rejections: %w", err)
	}
	defer rows.Close()

	var records []RejectionRecord
	for rows.Next() {
		var r RejectionRecord
		if err := rows.Scan(
			&r.RejectionID, &r.InstanceID, &r.NumRounds, &r.ErrorKind, &r.Message,
			&r.DetailsJSON, &r.SubmitterRef, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rejection: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
