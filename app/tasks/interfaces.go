package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/feedio/app/feed"
	"github.com/lysyi3m/feedio/app/formatter"
	"github.com/lysyi3m/feedio/app/reader"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to manage background processing.
//
//	scheduler := NewScheduler(configCache, pipeline, interval, workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.RefreshSource("news")
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	RefreshSource(ctx context.Context, name string) error
}

// FeedService reads remote feeds and renders them. Implemented by feedio.FeedIo.
type FeedService interface {
	ReadSince(ctx context.Context, url string, modifiedSince time.Time) (*reader.Result, error)
	Format(fd *feed.Feed, name string) (*formatter.Document, error)
}
