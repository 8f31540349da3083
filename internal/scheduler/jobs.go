package scheduler

import (
	"context"

	"github.com/google/uuid"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/coursecatalog/internal/tasks"
)

// Enqueuer hands a task to the background queue.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// DefaultAuditCleanupSchedule prunes the journal daily at 03:00.
const DefaultAuditCleanupSchedule = "0 3 * * *"

// ConsistencyCheckJob enqueues a consistency check on schedule.
func ConsistencyCheckJob(schedule string, queue Enqueuer, autoRepair bool) Job {
	return Job{
		Name:     "consistency_check",
		Schedule: schedule,
		Run: func(context.Context) error {
			_, err := queue.Enqueue(tasks.ConsistencyCheckTask{
				Reason:      "schedule",
				OperationID: uuid.NewString(),
				Repair:      autoRepair,
			})
			return err
		},
	}
}

// PruneJournalJob enqueues journal pruning on schedule.
func PruneJournalJob(schedule string, queue Enqueuer, retentionDays int) Job {
	return Job{
		Name:     "journal_prune",
		Schedule: schedule,
		Run: func(context.Context) error {
			_, err := queue.Enqueue(tasks.PruneJournalTask{RetentionDays: retentionDays})
			return err
		},
	}
}
