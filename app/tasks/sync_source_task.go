package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/feedio/app/database"
	"github.com/lysyi3m/feedio/app/source"
)

type SyncSourceTask struct {
	Task
	Config     *source.Config
	sourceRepo database.SourceRepository
}

func NewSyncSourceTask(config *source.Config, sourceRepo database.SourceRepository) *SyncSourceTask {
	return &SyncSourceTask{
		Task:       NewTask(TaskTypeSyncSource, config.Name),
		Config:     config,
		sourceRepo: sourceRepo,
	}
}

func (t *SyncSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.sourceRepo.UpsertSource(ctx, t.Config.Name, t.Config.URL, t.Config.Format); err != nil {
		return fmt.Errorf("failed to sync source config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncSource",
		"source", t.SourceName,
		"duration", t.GetDuration())

	return nil
}
