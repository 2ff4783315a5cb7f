package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golf/internal/server/golf"
)

const boundColumns = `b.bound_id, b.instance_id, b.kind, b.num_rounds,
	s.submission_id, s.citation, s.submitter_name, s.submitter_email,
	s.construction_id, s.construction_version, s.created_at,
	sol.solution_text, sol.normalised_text`

const boundJoins = `FROM bounds b
	JOIN submissions s ON s.submission_id = b.submission_id
	LEFT JOIN solutions sol ON sol.bound_id = b.bound_id`

// InsertBound appends a bound, and its solution payload when present, in one
// transaction. The submission must already exist.
func (s *Store) InsertBound(ctx context.Context, b golf.Bound) (golf.Bound, error) {
	if b.Solution != nil && b.Kind != golf.KindLower {
		return golf.Bound{}, fmt.Errorf("solution attached to %s bound", b.Kind)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return golf.Bound{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const insert = `INSERT INTO bounds (instance_id, submission_id, kind, num_rounds)
		VALUES (?, ?, ?, ?)`

	res, err := tx.ExecContext(ctx, insert, b.InstanceID, b.Submission.ID, b.Kind.String(), b.NumRounds)
	if err != nil {
		return golf.Bound{}, fmt.Errorf("failed to insert bound: %w", err)
	}
	if b.ID, err = res.LastInsertId(); err != nil {
		return golf.Bound{}, fmt.Errorf("failed to read bound id: %w", err)
	}

	if b.Solution != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO solutions (bound_id, solution_text, normalised_text) VALUES (?, ?, ?)`,
			b.ID, b.Solution.Text, b.Solution.NormalisedText); err != nil {
			return golf.Bound{}, fmt.Errorf("failed to insert solution: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return golf.Bound{}, fmt.Errorf("failed to commit bound: %w", err)
	}
	return b, nil
}

// ListBounds returns every bound recorded for an instance in insertion order
func (s *Store) ListBounds(ctx context.Context, instanceID int64) ([]golf.Bound, error) {
	query := `SELECT ` + boundColumns + ` ` + boundJoins + `
		WHERE b.instance_id = ? ORDER BY b.bound_id`

	rows, err := s.db.QueryContext(ctx, query, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bounds: %w", err)
	}
	defer rows.Close()

	var bounds []golf.Bound
	for rows.Next() {
		b, err := scanBound(rows)
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, b)
	}
	return bounds, rows.Err()
}

// ListAllBounds returns every bound grouped by instance id
func (s *Store) ListAllBounds(ctx context.Context) (map[int64][]golf.Bound, error) {
	query := `SELECT ` + boundColumns + ` ` + boundJoins + ` ORDER BY b.bound_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bounds: %w", err)
	}
	defer rows.Close()

	byInstance := make(map[int64][]golf.Bound)
	for rows.Next() {
		b, err := scanBound(rows)
		if err != nil {
			return nil, err
		}
		byInstance[b.InstanceID] = append(byInstance[b.InstanceID], b)
	}
	return byInstance, rows.Err()
}

// FindSolutionFor returns the solution payload of a bound, or nil if the
// bound carries none
func (s *Store) FindSolutionFor(ctx context.Context, boundID int64) (*golf.Solution, error) {
	var text, normalised string
	err := s.db.QueryRowContext(ctx,
		`SELECT solution_text, normalised_text FROM solutions WHERE bound_id = ?`, boundID).
		Scan(&text, &normalised)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query solution: %w", err)
	}
	return storedSolution(text, normalised)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBound(row scanner) (golf.Bound, error) {
	var (
		b          golf.Bound
		kind       string
		cID        sql.NullString
		cVer       sql.NullInt64
		text       sql.NullString
		normalised sql.NullString
	)
	if err := row.Scan(
		&b.ID, &b.InstanceID, &kind, &b.NumRounds,
		&b.Submission.ID, &b.Submission.Citation, &b.Submission.SubmitterName, &b.Submission.SubmitterEmail,
		&cID, &cVer, &b.Submission.CreatedAt,
		&text, &normalised,
	); err != nil {
		return golf.Bound{}, fmt.Errorf("failed to scan bound: %w", err)
	}

	var err error
	if b.Kind, err = golf.ParseBoundKind(kind); err != nil {
		return golf.Bound{}, fmt.Errorf("bound %d: %w", b.ID, err)
	}
	b.Submission.Construction = constructionInfo(cID, cVer)

	if text.Valid {
		if b.Solution, err = storedSolution(text.String, normalised.String); err != nil {
			return golf.Bound{}, fmt.Errorf("bound %d: %w", b.ID, err)
		}
	}
	return b, nil
}

// storedSolution rebuilds a payload from its persisted text. Only validated
// schedules are ever written.
func storedSolution(text, normalised string) (*golf.Solution, error) {
	schedule, err := golf.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("corrupt stored solution: %w", err)
	}
	return &golf.Solution{
		Text:           text,
		NormalisedText: normalised,
		Schedule:       schedule,
		Validated:      true,
	}, nil
}
