package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/coursecatalog/internal/consistency"
	"github.com/mrlokans/coursecatalog/internal/logger"
)

// ConsistencyRunner checks and repairs the catalog files.
type ConsistencyRunner interface {
	Check(ctx context.Context) (*consistency.Report, error)
	Repair(ctx context.Context) (*consistency.RepairResult, error)
}

// ConsistencyJournal records check and repair outcomes. May be nil.
type ConsistencyJournal interface {
	LogCheck(operationID string, report *consistency.Report, err error)
	LogRepair(operationID string, res *consistency.RepairResult, err error)
}

// ConsistencyCheckTask runs a consistency check and, when Repair is set and
// the check found errors, a repair.
type ConsistencyCheckTask struct {
	Reason      string `json:"reason"`
	OperationID string `json:"operation_id,omitempty"`
	Repair      bool   `json:"repair"`
}

// Config returns the queue configuration for consistency checks.
func (t ConsistencyCheckTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "consistency_check",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ConsistencyCheckProcessor creates a processor function for ConsistencyCheckTask.
func ConsistencyCheckProcessor(runner ConsistencyRunner, journal ConsistencyJournal, log *logger.Logger) backlite.QueueProcessor[ConsistencyCheckTask] {
	return func(ctx context.Context, task ConsistencyCheckTask) error {
		if runner == nil {
			return fmt.Errorf("consistency runner not configured")
		}

		report, err := runner.Check(ctx)
		if journal != nil {
			journal.LogCheck(task.OperationID, report, err)
		}
		if err != nil {
			return fmt.Errorf("consistency check: %w", err)
		}

		log.Info("consistency check task finished",
			"reason", task.Reason, "op_id", task.OperationID, "issues", len(report.Issues), "errors", report.Errors())

		if report.Consistent() || !task.Repair {
			return nil
		}

		res, err := runner.Repair(ctx)
		if journal != nil {
			journal.LogRepair(task.OperationID, res, err)
		}
		if err != nil {
			return fmt.Errorf("consistency repair: %w", err)
		}

		log.Info("consistency repair task finished", "reason", task.Reason, "files", res.FilesWritten)
		return nil
	}
}

// NewConsistencyCheckQueue creates a backlite queue for consistency checks.
func NewConsistencyCheckQueue(runner ConsistencyRunner, journal ConsistencyJournal, log *logger.Logger) backlite.Queue {
	return backlite.NewQueue(ConsistencyCheckProcessor(runner, journal, log))
}
