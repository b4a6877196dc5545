package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ DocumentRepository = (*SQLiteDocumentRepository)(nil)

type SQLiteDocumentRepository struct {
	db *DB
}

func NewDocumentRepository(db *DB) *SQLiteDocumentRepository {
	return &SQLiteDocumentRepository{db: db}
}

// SaveDocument replaces the stored rendering of doc.SourceName.
func (r *SQLiteDocumentRepository) SaveDocument(ctx context.Context, doc Document) error {
	updatedAt := doc.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (source_name, content_type, body, item_count, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (source_name) DO UPDATE SET
			content_type = excluded.content_type,
			body = excluded.body,
			item_count = excluded.item_count,
			updated_at = excluded.updated_at
	`, doc.SourceName, doc.ContentType, doc.Body, doc.ItemCount, updatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}

// GetDocument returns nil without error when nothing was rendered yet.
func (r *SQLiteDocumentRepository) GetDocument(ctx context.Context, sourceName string) (*Document, error) {
	var (
		doc       Document
		updatedAt int64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT source_name, content_type, body, item_count, updated_at
		FROM documents WHERE source_name = ?
	`, sourceName).Scan(&doc.SourceName, &doc.ContentType, &doc.Body, &doc.ItemCount, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &doc, nil
}
