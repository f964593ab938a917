package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/hpungsan/prodsynth/internal/dataset"
	"github.com/hpungsan/prodsynth/internal/errors"
)

const runColumns = `
	id, path, row_count, user_count, seed, sha256, bytes,
	summary_json, created_at, deleted_at
`

const itemColumns = `
	id, path, row_count, user_count, seed, sha256, bytes,
	created_at, deleted_at
`

// Insert stores a new run in the ledger.
func Insert(ctx context.Context, db *sql.DB, r *dataset.Run) error {
	summaryJSON, err := json.Marshal(r.Summary)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO runs (
			id, path, row_count, user_count, seed, sha256, bytes,
			summary_json, created_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = db.ExecContext(ctx, query,
		r.ID, r.Path, r.Rows, r.Users, int64(r.Seed), r.SHA256, r.Bytes,
		string(summaryJSON), r.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// GetByID retrieves a run by its ULID.
// If includeDeleted is false, soft-deleted runs are excluded.
func GetByID(ctx context.Context, db *sql.DB, id string, includeDeleted bool) (*dataset.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	r, err := scanRun(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return r, nil
}

// GetLatest returns the most recently created run, or nil if the ledger is empty.
func GetLatest(ctx context.Context, db *sql.DB, includeDeleted bool) (*dataset.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT 1"

	r, err := scanRun(db.QueryRowContext(ctx, query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return r, nil
}

// ListRuns returns one page of runs newest first, and the total matching count.
func ListRuns(ctx context.Context, db *sql.DB, limit, offset int, includeDeleted bool) ([]dataset.RunItem, int, error) {
	where := ""
	if !includeDeleted {
		where = " WHERE deleted_at IS NULL"
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`+where).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `SELECT ` + itemColumns + ` FROM runs` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	items := make([]dataset.RunItem, 0)
	for rows.Next() {
		var (
			item      dataset.RunItem
			seed      int64
			deletedAt sql.NullInt64
		)
		if err := rows.Scan(
			&item.ID, &item.Path, &item.Rows, &item.Users, &seed, &item.SHA256, &item.Bytes,
			&item.CreatedAt, &deletedAt,
		); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		item.Seed = uint64(seed)
		if deletedAt.Valid {
			item.DeletedAt = &deletedAt.Int64
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	return items, total, nil
}

// SoftDelete marks a run as deleted by setting deleted_at.
func SoftDelete(ctx context.Context, db *sql.DB, id string) error {
	now := time.Now().Unix()

	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := db.ExecContext(ctx, query, now, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// PurgeDeleted permanently removes soft-deleted runs.
// If olderThanDays is set, only runs deleted more than that many days ago are removed.
func PurgeDeleted(ctx context.Context, db *sql.DB, olderThanDays *int) (int, error) {
	query := `DELETE FROM runs WHERE deleted_at IS NOT NULL`
	args := []any{}

	if olderThanDays != nil {
		cutoff := time.Now().Add(-time.Duration(*olderThanDays) * 24 * time.Hour).Unix()
		query += " AND deleted_at < ?"
		args = append(args, cutoff)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	return int(n), nil
}

// scanRun scans a single row into a Run struct.
func scanRun(row *sql.Row) (*dataset.Run, error) {
	var (
		r           dataset.Run
		seed        int64
		summaryJSON string
		deletedAt   sql.NullInt64
	)

	err := row.Scan(
		&r.ID, &r.Path, &r.Rows, &r.Users, &seed, &r.SHA256, &r.Bytes,
		&summaryJSON, &r.CreatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	// Seeds are stored as the int64 with the same bits
	r.Seed = uint64(seed)

	if deletedAt.Valid {
		r.DeletedAt = &deletedAt.Int64
	}

	if err := json.Unmarshal([]byte(summaryJSON), &r.Summary); err != nil {
		return nil, err
	}

	return &r, nil
}
