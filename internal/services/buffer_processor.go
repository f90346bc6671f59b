package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/internal/infrastructure/buffer"
	"github.com/fastygo/carecircle/repository"
)

// ConnectionHealth abstracts the connection monitor.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how often the buffer is drained and pruned.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// Repositories are the primary stores buffered writes are replayed into.
type Repositories struct {
	Users    repository.UserRepository
	Tasks    repository.TaskRepository
	Statuses repository.StatusRepository
}

// BufferProcessor replays buffered writes once the stores come back.
type BufferProcessor struct {
	store   *buffer.Store
	monitor ConnectionHealth
	repos   Repositories
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	repos Repositories,
	logger *zap.Logger,
	cfg ProcessorConfig,
) (*BufferProcessor, error) {
	if cfg.Interval < time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:   store,
		monitor: monitor,
		repos:   repos,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	drainSpec := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := bp.cron.AddFunc(drainSpec, bp.scheduledDrain); err != nil {
		return nil, fmt.Errorf("schedule buffer drain: %w", err)
	}
	if _, err := bp.cron.AddFunc("@hourly", bp.prune); err != nil {
		return nil, fmt.Errorf("schedule buffer prune: %w", err)
	}
	return bp, nil
}

func (bp *BufferProcessor) Start() {
	bp.cron.Start()
	bp.logger.Info("buffer processor started", zap.Duration("interval", bp.cfg.Interval))
}

// Stop halts the scheduler and waits for a running drain to finish.
func (bp *BufferProcessor) Stop(ctx context.Context) error {
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	bp.logger.Info("buffer processor stopped")
	return nil
}

func (bp *BufferProcessor) scheduledDrain() {
	ctx, cancel := context.WithTimeout(context.Background(), bp.cfg.Interval)
	defer cancel()
	if _, err := bp.Drain(ctx); err != nil {
		bp.logger.Error("buffer drain failed", zap.Error(err))
	}
}

func (bp *BufferProcessor) prune() {
	removed, err := bp.store.Cleanup(time.Now().Add(-bp.cfg.Retention))
	if err != nil {
		bp.logger.Error("buffer prune failed", zap.Error(err))
		return
	}
	if removed > 0 {
		bp.logger.Warn("expired buffered writes dropped", zap.Int("count", removed))
	}
}

// Drain replays one batch and reports how many items were applied.
func (bp *BufferProcessor) Drain(ctx context.Context) (int, error) {
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return 0, nil
	}

	items, err := bp.store.Peek(bp.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		if err := bp.processItem(ctx, item); err != nil {
			bp.logger.Error("failed to replay buffered write",
				zap.String("item_id", item.ID),
				zap.String("entity", item.Entity),
				zap.String("operation", item.Operation),
				zap.Error(err))

			if item.Retries+1 >= bp.cfg.MaxRetries {
				bp.logger.Warn("dropping buffered write (max retries reached)", zap.String("item_id", item.ID))
				if err := bp.store.Remove(item); err != nil {
					bp.logger.Warn("failed to remove buffered write", zap.Error(err))
				}
				continue
			}
			if err := bp.store.Retry(item); err != nil {
				bp.logger.Error("failed to requeue buffered write", zap.Error(err))
			}
			continue
		}

		applied++
		if err := bp.store.Remove(item); err != nil {
			bp.logger.Warn("failed to purge replayed write", zap.Error(err))
		}
	}
	if applied > 0 {
		bp.logger.Info("buffered writes replayed", zap.Int("count", applied))
	}
	return applied, nil
}

// BufferOperation retries the write once when the stores look healthy and
// persists it otherwise.
func (bp *BufferProcessor) BufferOperation(ctx context.Context, item buffer.Item) error {
	if bp.monitor != nil && bp.monitor.IsOnline() {
		err := bp.processItem(ctx, item)
		if err == nil {
			return nil
		}
		bp.logger.Warn("immediate processing failed, buffering", zap.Error(err))
	}
	return bp.store.Enqueue(item)
}

func (bp *BufferProcessor) Size() int {
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) processItem(ctx context.Context, item buffer.Item) error {
	switch item.Entity {
	case buffer.EntityProfile:
		var user domain.User
		if err := json.Unmarshal(item.Data, &user); err != nil {
			return err
		}
		return bp.repos.Users.Upsert(ctx, &user)

	case buffer.EntityStatus:
		var entry domain.StatusEntry
		if err := json.Unmarshal(item.Data, &entry); err != nil {
			return err
		}
		_, err := bp.repos.Statuses.Create(ctx, &entry)
		return err

	case buffer.EntityTask:
		var task domain.Task
		if err := json.Unmarshal(item.Data, &task); err != nil {
			return err
		}
		return bp.replayTask(ctx, item, &task)

	default:
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
}

// replayTask applies a task write and its lifecycle event.
func (bp *BufferProcessor) replayTask(ctx context.Context, item buffer.Item, task *domain.Task) error {
	switch item.Operation {
	case buffer.OperationCreate:
		created, err := bp.repos.Tasks.Create(ctx, task)
		if err != nil {
			return err
		}
		task = created
	case buffer.OperationUpdate:
		if err := bp.repos.Tasks.Update(ctx, task); err != nil {
			return err
		}
	case buffer.OperationDelete:
		return bp.repos.Tasks.Delete(ctx, task.ID)
	default:
		return fmt.Errorf("unsupported operation %s", item.Operation)
	}

	event := task.EventFor(item.UserID)
	if err := bp.repos.Tasks.AppendEvent(ctx, &event); err != nil {
		bp.logger.Warn("replayed task without lifecycle event", zap.String("task_id", task.ID), zap.Error(err))
	}
	return nil
}
