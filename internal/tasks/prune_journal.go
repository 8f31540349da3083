package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/coursecatalog/internal/entities"
	"github.com/mrlokans/coursecatalog/internal/logger"
)

const defaultJournalRetentionDays = 30

// JournalPruner deletes journal rows past retention. A failed mutation row is
// the only trace of a write that may have left the stores diverged, so the
// failed rows are listed before anything is deleted.
type JournalPruner interface {
	FailedSince(since time.Time) ([]entities.AuditEvent, error)
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// PruneJournalTask removes journal rows older than RetentionDays.
type PruneJournalTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for journal pruning.
func (t PruneJournalTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "journal_prune",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PruneJournalProcessor creates a processor function for PruneJournalTask.
// With the journal disabled (nil pruner) the task is a no-op.
func PruneJournalProcessor(pruner JournalPruner, log *logger.Logger) backlite.QueueProcessor[PruneJournalTask] {
	return func(ctx context.Context, task PruneJournalTask) error {
		if pruner == nil {
			log.Debug("journal disabled, nothing to prune")
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		days := task.RetentionDays
		if days <= 0 {
			days = defaultJournalRetentionDays
		}
		retention := time.Duration(days) * 24 * time.Hour
		cutoff := time.Now().Add(-retention)

		failed, err := pruner.FailedSince(time.Time{})
		if err != nil {
			return fmt.Errorf("list failed journal entries: %w", err)
		}
		var expiring []string
		for _, event := range failed {
			if event.CreatedAt.Before(cutoff) {
				expiring = append(expiring, event.OperationID)
			}
		}
		if len(expiring) > 0 {
			log.Warn("pruning failed mutations from the journal", "count", len(expiring), "op_ids", expiring)
		}

		deleted, err := pruner.DeleteOldEvents(retention)
		if err != nil {
			return fmt.Errorf("prune journal: %w", err)
		}

		log.Info("journal pruned",
			"deleted", deleted,
			"failed_pruned", len(expiring),
			"failed_kept", len(failed)-len(expiring),
			"retention_days", days)
		return nil
	}
}

// NewPruneJournalQueue creates a backlite queue for journal pruning.
func NewPruneJournalQueue(pruner JournalPruner, log *logger.Logger) backlite.Queue {
	return backlite.NewQueue(PruneJournalProcessor(pruner, log))
}
