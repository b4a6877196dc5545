package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/feedio/app/database"
	"github.com/lysyi3m/feedio/app/feed"
	"github.com/lysyi3m/feedio/app/reader"
	"github.com/lysyi3m/feedio/app/source"
)

const contentElement = "content:encoded"

// Pipeline bundles the collaborators of a ProcessSourceTask.
type Pipeline struct {
	Feeds     FeedService
	Client    reader.Client
	Filterer  *source.Filterer
	Extractor *source.ContentExtractor
	Sources   database.SourceRepository
	Documents database.DocumentRepository
}

type ProcessSourceTask struct {
	Task
	Config   *source.Config
	pipeline *Pipeline
}

func NewProcessSourceTask(config *source.Config, pipeline *Pipeline) *ProcessSourceTask {
	return &ProcessSourceTask{
		Task:     NewTask(TaskTypeProcessSource, config.Name),
		Config:   config,
		pipeline: pipeline,
	}
}

// Execute reads the source conditionally and, when it changed, stores a fresh
// rendering in the configured format.
func (t *ProcessSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Config.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	state, err := t.pipeline.Sources.GetSource(ctx, t.SourceName)
	if err != nil {
		return err
	}
	if state == nil {
		return fmt.Errorf("source '%s' is not registered", t.SourceName)
	}

	var since time.Time
	if doc, err := t.pipeline.Documents.GetDocument(ctx, t.SourceName); err != nil {
		return err
	} else if doc != nil {
		since = state.LastModified
	}

	readCtx, cancel := context.WithTimeout(ctx, time.Duration(t.Config.Settings.Timeout)*time.Second)
	defer cancel()

	result, err := t.pipeline.Feeds.ReadSince(readCtx, t.Config.URL, since)
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}

	nextFetch := time.Now().UTC().Add(time.Duration(t.Config.Settings.RefreshInterval) * time.Second)

	if !result.Modified {
		if err := t.pipeline.Sources.UpdateFetchState(ctx, t.SourceName, "", time.Time{}, nextFetch); err != nil {
			return fmt.Errorf("failed to update fetch state: %w", err)
		}
		slog.Info("Task completed",
			"type", "ProcessSource",
			"source", t.SourceName,
			"duration", t.GetDuration(),
			"modified", false)
		return nil
	}

	fd := result.Feed
	total := len(fd.Items)

	rejected := t.pipeline.Filterer.Run(fd, t.Config.Filters)
	for _, r := range rejected {
		slog.Debug("Item filtered", "source", t.SourceName, "item", r.Item.PublicID, "reason", r.Reason)
	}

	if maxItems := t.Config.Settings.MaxItems; maxItems > 0 && len(fd.Items) > maxItems {
		fd.Items = fd.Items[:maxItems]
	}

	extracted := 0
	if t.Config.Settings.ExtractContent {
		extracted = t.extractContent(readCtx, fd)
	}

	doc, err := t.pipeline.Feeds.Format(fd, t.Config.Format)
	if err != nil {
		return fmt.Errorf("failed to format source: %w", err)
	}

	err = t.pipeline.Documents.SaveDocument(ctx, database.Document{
		SourceName:  t.SourceName,
		ContentType: doc.ContentType,
		Body:        doc.Body,
		ItemCount:   len(fd.Items),
	})
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}

	lastModified := result.Date
	if lastModified.IsZero() {
		lastModified = fd.LastModified
	}
	if err := t.pipeline.Sources.UpdateFetchState(ctx, t.SourceName, fd.Title, lastModified, nextFetch); err != nil {
		return fmt.Errorf("failed to update fetch state: %w", err)
	}

	slog.Info("Task completed",
		"type", "ProcessSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"standard", result.Standard,
		"total", total,
		"filtered", len(rejected),
		"extracted", extracted,
		"kept", len(fd.Items))

	return nil
}

// extractContent fetches each item page and appends the readable article as
// a content:encoded element. Failures are logged and skipped.
func (t *ProcessSourceTask) extractContent(ctx context.Context, fd *feed.Feed) int {
	extracted := 0
	for _, item := range fd.Items {
		if item == nil || item.Link == "" || item.HasElement(contentElement) {
			continue
		}

		resp, err := t.pipeline.Client.Fetch(ctx, item.Link, nil)
		if err != nil {
			slog.Warn("Failed to fetch item page", "source", t.SourceName, "link", item.Link, "error", err)
			continue
		}

		content, err := t.pipeline.Extractor.Run(resp.Body, item.Link)
		if err != nil {
			slog.Warn("Failed to extract content", "source", t.SourceName, "link", item.Link, "error", err)
			continue
		}

		if err := item.AddElement(feed.NewElement(contentElement, content, nil)); err != nil {
			slog.Warn("Failed to attach content", "source", t.SourceName, "link", item.Link, "error", err)
			continue
		}
		extracted++
	}
	return extracted
}
