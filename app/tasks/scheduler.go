package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/feedio/app/source"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	taskQueueSize = 300
	taskTimeout   = 5 * time.Minute
	maxRetryDelay = 30 * time.Second
)

type Scheduler struct {
	configCache *source.ConfigCache
	pipeline    *Pipeline
	interval    time.Duration
	workerCount int
	retryDelay  func(retry int) time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface

	mu       sync.Mutex
	inFlight map[string]int // queued or running process tasks per source
}

func NewScheduler(configCache *source.ConfigCache, pipeline *Pipeline, interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		configCache: configCache,
		pipeline:    pipeline,
		interval:    interval,
		workerCount: workerCount,
		retryDelay:  backoff,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, taskQueueSize),
		inFlight:    make(map[string]int),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

// Stop cancels running tasks and waits for the workers to exit. Tasks still
// queued are dropped.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if s.ctx.Err() != nil {
		return s.ctx.Err()
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// RefreshSource makes name due and queues it for processing right away.
func (s *Scheduler) RefreshSource(ctx context.Context, name string) error {
	config, err := s.configCache.GetConfig(name)
	if err != nil {
		return err
	}

	if err := s.pipeline.Sources.ScheduleNow(ctx, name); err != nil {
		return err
	}

	_, err = s.enqueueProcess(config, false)
	return err
}

// enqueueProcess queues a ProcessSourceTask for config. With exclusive set,
// nothing is queued while another one for the same source is pending.
func (s *Scheduler) enqueueProcess(config *source.Config, exclusive bool) (bool, error) {
	s.mu.Lock()
	if exclusive && s.inFlight[config.Name] > 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.inFlight[config.Name]++
	s.mu.Unlock()

	if err := s.EnqueueTask(NewProcessSourceTask(config, s.pipeline)); err != nil {
		s.release(config.Name)
		return false, err
	}
	return true, nil
}

func (s *Scheduler) release(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[name] <= 1 {
		delete(s.inFlight, name)
		return
	}
	s.inFlight[name]--
}

// finish releases a process task that will not run again.
func (s *Scheduler) finish(task TaskInterface) {
	if task.GetType() == TaskTypeProcessSource {
		s.release(task.GetSourceName())
	}
}

// enqueueStartupTasks registers every configured source before any of them
// is processed.
func (s *Scheduler) enqueueStartupTasks() {
	configs := s.configCache.GetConfigs()
	if len(configs) == 0 {
		slog.Debug("No source configurations found")
		return
	}

	slog.Debug("Processing source configurations", "count", len(configs))

	for _, config := range configs {
		s.executeTask(-1, NewSyncSourceTask(config, s.pipeline.Sources))
	}

	for _, config := range configs {
		if !config.Settings.Enabled {
			slog.Debug("Source disabled, skipping ProcessSourceTask", "source", config.Name)
			continue
		}

		if _, err := s.enqueueProcess(config, true); err != nil {
			slog.Warn("Failed to enqueue ProcessSourceTask", "source", config.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	configs := s.configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		slog.Debug("No enabled source configurations found")
		return
	}

	slog.Debug("Processing enabled source configurations for task scheduling", "count", len(configs))

	now := time.Now().UTC()
	for _, config := range configs {
		state, err := s.pipeline.Sources.GetSource(s.ctx, config.Name)
		if err != nil {
			slog.Warn("Failed to get source from database, skipping", "source", config.Name, "error", err)
			continue
		}
		if state == nil {
			slog.Warn("Source not found in database, syncing", "source", config.Name)
			if err := s.EnqueueTask(NewSyncSourceTask(config, s.pipeline.Sources)); err != nil {
				slog.Warn("Failed to enqueue SyncSourceTask", "source", config.Name, "error", err)
			}
			continue
		}

		if !state.IsDue(now) {
			slog.Debug("Source not due for refresh yet", "source", config.Name, "next_fetch_at", state.NextFetchAt)
			continue
		}

		queued, err := s.enqueueProcess(config, true)
		if err != nil {
			slog.Warn("Failed to enqueue ProcessSourceTask", "source", config.Name, "error", err)
			continue
		}
		if !queued {
			slog.Debug("Source already queued or processing", "source", config.Name)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		s.finish(task)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		s.finish(task)
		return
	}

	task.IncrementRetryCount()
	retryDelay := s.retryDelay(task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		select {
		case <-time.After(retryDelay):
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			s.finish(task)
			return
		}
		if retryErr := s.EnqueueTask(task); retryErr != nil {
			slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			s.finish(task)
		}
	}()
}

// backoff doubles from one second per retry, capped at maxRetryDelay.
func backoff(retry int) time.Duration {
	delay := time.Duration(1<<uint(retry-1)) * time.Second
	return min(delay, maxRetryDelay)
}
