package database

import (
	"context"
	"time"
)

type SourceRepository interface {
	GetSource(ctx context.Context, name string) (*Source, error)
	GetSources(ctx context.Context) ([]Source, error)
	GetSourceCount(ctx context.Context) (int, error)

	UpsertSource(ctx context.Context, name, url, format string) error
	UpdateFetchState(ctx context.Context, name, title string, lastModified, nextFetchAt time.Time) error
	ScheduleNow(ctx context.Context, name string) error
}

type DocumentRepository interface {
	GetDocument(ctx context.Context, sourceName string) (*Document, error)
	SaveDocument(ctx context.Context, doc Document) error
}
