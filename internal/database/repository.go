package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/ZanzyTHEbar/teamconstructor/internal/errors"
)

const (
	stmtInsertResult = "insert_result"
	stmtGetResult    = "get_result"
	stmtListResults  = "list_results"

	resultColumns = `id, uid, email, full_name, test_result, duration_ms, tags, created_at, updated_at`

	// DefaultPageSize is the admin listing size when none is given
	DefaultPageSize = 50
	// MaxPageSize caps a single listing
	MaxPageSize = 500
)

// Repository handles database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTestResult(row rowScanner) (*TestResult, error) {
	var (
		result TestResult
		tags   string
	)
	err := row.Scan(
		&result.ID, &result.UID, &result.Email, &result.FullName, &result.TestResult,
		&result.DurationMs, &tags, &result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	result.Tags = splitTags(tags)
	return &result, nil
}

// SaveTestResult inserts a result and fills in its id
func (r *Repository) SaveTestResult(ctx context.Context, result *TestResult) error {
	stmt, err := r.db.GetPreparedStatement(stmtInsertResult)
	if err != nil {
		return err
	}

	res, err := stmt.ExecContext(ctx,
		result.UID, result.Email, result.FullName, result.TestResult,
		result.DurationMs, joinTags(result.Tags), result.CreatedAt, result.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save test result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read test result id: %w", err)
	}
	result.ID = id

	return nil
}

// GetTestResult fetches one result; a missing id is a not-found error
func (r *Repository) GetTestResult(ctx context.Context, id int64) (*TestResult, error) {
	stmt, err := r.db.GetPreparedStatement(stmtGetResult)
	if err != nil {
		return nil, err
	}

	result, err := scanTestResult(stmt.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("test result", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get test result %d: %w", id, err)
	}

	return result, nil
}

// ListTestResults returns results newest first
func (r *Repository) ListTestResults(ctx context.Context, limit, offset int) ([]*TestResult, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	stmt, err := r.db.GetPreparedStatement(stmtListResults)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list test results: %w", err)
	}
	defer rows.Close()

	results := make([]*TestResult, 0, limit)
	for rows.Next() {
		result, err := scanTestResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test result: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate test results: %w", err)
	}

	return results, nil
}

// CountTestResults returns how many results are stored
func (r *Repository) CountTestResults(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM test_results`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count test results: %w", err)
	}
	return count, nil
}

// DeleteTestResult removes one result
func (r *Repository) DeleteTestResult(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM test_results WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete test result %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete test result %d: %w", id, err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("test result", id)
	}

	return nil
}

// PurgeOlderThan deletes results created before the cutoff
func (r *Repository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM test_results WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge test results: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to purge test results: %w", err)
	}

	return affected, nil
}
