package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"golf/internal/server/golf"
)

// CreateSubmission stores submission provenance, assigning an id and
// timestamp when absent. A referenced construction row is created on demand.
func (s *Store) CreateSubmission(ctx context.Context, info golf.SubmissionInfo) (golf.SubmissionInfo, error) {
	if info.ID == "" {
		info.ID = uuid.New().String()
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return golf.SubmissionInfo{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var constructionID sql.NullString
	var constructionVersion sql.NullInt64
	if c := info.Construction; c != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO constructions (construction_id, version) VALUES (?, ?)`,
			c.ID, c.Version); err != nil {
			return golf.SubmissionInfo{}, fmt.Errorf("failed to insert construction: %w", err)
		}
		constructionID = sql.NullString{String: c.ID, Valid: true}
		constructionVersion = sql.NullInt64{Int64: int64(c.Version), Valid: true}
	}

	const insert = `INSERT INTO submissions (
		submission_id, citation, submitter_name, submitter_email,
		construction_id, construction_version, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)`

	if _, err := tx.ExecContext(ctx, insert,
		info.ID, info.Citation, info.SubmitterName, info.SubmitterEmail,
		constructionID, constructionVersion, info.CreatedAt,
	); err != nil {
		return golf.SubmissionInfo{}, fmt.Errorf("failed to insert submission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return golf.SubmissionInfo{}, fmt.Errorf("failed to commit submission: %w", err)
	}
	return info, nil
}

// GetSubmission returns the submission with the given id or ErrNotFound
func (s *Store) GetSubmission(ctx context.Context, id string) (golf.SubmissionInfo, error) {
	const query = `SELECT submission_id, citation, submitter_name, submitter_email,
		construction_id, construction_version, created_at
		FROM submissions WHERE submission_id = ?`

	var (
		info golf.SubmissionInfo
		cID  sql.NullString
		cVer sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&info.ID, &info.Citation, &info.SubmitterName, &info.SubmitterEmail,
		&cID, &cVer, &info.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return golf.SubmissionInfo{}, ErrNotFound
	}
	if err != nil {
		return golf.SubmissionInfo{}, fmt.Errorf("failed to query submission: %w", err)
	}
	info.Construction = constructionInfo(cID, cVer)
	return info, nil
}

// DeleteConstruction removes every version of a construction together with
// all submissions, bounds and solutions it produced. It returns the number of
// bounds removed.
func (s *Store) DeleteConstruction(ctx context.Context, constructionID string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var removed int64
	const count = `SELECT COUNT(*) FROM bounds b
		JOIN submissions s ON s.submission_id = b.submission_id
		WHERE s.construction_id = ?`
	if err := tx.QueryRowContext(ctx, count, constructionID).Scan(&removed); err != nil {
		return 0, fmt.Errorf("failed to count construction bounds: %w", err)
	}

	// Submissions, bounds and solutions follow through ON DELETE CASCADE
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM constructions WHERE construction_id = ?`, constructionID); err != nil {
		return 0, fmt.Errorf("failed to delete construction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit construction delete: %w", err)
	}
	return removed, nil
}

func constructionInfo(id sql.NullString, version sql.NullInt64) *golf.ConstructionInfo {
	if !id.Valid {
		return nil
	}
	return &golf.ConstructionInfo{ID: id.String, Version: int(version.Int64)}
}
