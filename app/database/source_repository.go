package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ SourceRepository = (*SQLiteSourceRepository)(nil)

type SQLiteSourceRepository struct {
	db *DB
}

func NewSourceRepository(db *DB) *SQLiteSourceRepository {
	return &SQLiteSourceRepository{db: db}
}

const sourceColumns = `name, url, format, title, last_modified, last_fetched_at, next_fetch_at, created_at, updated_at`

// UpsertSource registers a source or updates its URL and format. Changing
// either drops the stored fetch state so the next read is unconditional.
func (r *SQLiteSourceRepository) UpsertSource(ctx context.Context, name, url, format string) error {
	now := time.Now().Unix()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sources (name, url, format, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			last_modified = CASE WHEN sources.url = excluded.url AND sources.format = excluded.format THEN sources.last_modified ELSE NULL END,
			next_fetch_at = CASE WHEN sources.url = excluded.url AND sources.format = excluded.format THEN sources.next_fetch_at ELSE NULL END,
			url = excluded.url,
			format = excluded.format,
			updated_at = excluded.updated_at
	`, name, url, format, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}

	return nil
}

// GetSource returns nil without error when the source is unknown.
func (r *SQLiteSourceRepository) GetSource(ctx context.Context, name string) (*Source, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM sources WHERE name = ?`, name)

	source, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	return source, nil
}

func (r *SQLiteSourceRepository) GetSources(ctx context.Context) ([]Source, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sourceColumns+` FROM sources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, *source)
	}

	return sources, rows.Err()
}

func (r *SQLiteSourceRepository) GetSourceCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sources`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sources: %w", err)
	}
	return count, nil
}

// UpdateFetchState records a completed fetch. An empty title or a zero
// lastModified keeps the stored value.
func (r *SQLiteSourceRepository) UpdateFetchState(ctx context.Context, name, title string, lastModified, nextFetchAt time.Time) error {
	now := time.Now().Unix()

	res, err := r.db.ExecContext(ctx, `
		UPDATE sources
		SET title = COALESCE(NULLIF(?, ''), title),
			last_modified = COALESCE(?, last_modified),
			last_fetched_at = ?,
			next_fetch_at = ?,
			updated_at = ?
		WHERE name = ?
	`, title, toUnix(lastModified), now, toUnix(nextFetchAt), now, name)
	if err != nil {
		return fmt.Errorf("failed to update fetch state: %w", err)
	}

	return expectOneRow(res, name)
}

// ScheduleNow makes the source due on the next scheduler tick.
func (r *SQLiteSourceRepository) ScheduleNow(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sources SET next_fetch_at = NULL, updated_at = ? WHERE name = ?`, time.Now().Unix(), name)
	if err != nil {
		return fmt.Errorf("failed to schedule source: %w", err)
	}

	return expectOneRow(res, name)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSource(row scanner) (*Source, error) {
	var (
		s                                      Source
		lastModified, lastFetchedAt, nextFetch sql.NullInt64
		createdAt, updatedAt                   int64
	)

	err := row.Scan(&s.Name, &s.URL, &s.Format, &s.Title, &lastModified, &lastFetchedAt, &nextFetch, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	s.LastModified = fromUnix(lastModified)
	s.LastFetchedAt = fromUnix(lastFetchedAt)
	s.NextFetchAt = fromUnix(nextFetch)
	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	s.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &s, nil
}

func expectOneRow(res sql.Result, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("source '%s' not found", name)
	}
	return nil
}
