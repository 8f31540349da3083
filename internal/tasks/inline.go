package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/coursecatalog/internal/logger"
)

// Inline runs tasks in a background goroutine without persisting them. It
// stands in for Client when the queue is disabled: there are no retries and
// pending tasks are lost on exit.
type Inline struct {
	check   backlite.QueueProcessor[ConsistencyCheckTask]
	prune   backlite.QueueProcessor[PruneJournalTask]
	log     *logger.Logger
	wg      sync.WaitGroup
}

// NewInline builds the processors the same way the queues do. pruner may be
// nil when the journal is disabled.
func NewInline(runner ConsistencyRunner, journal ConsistencyJournal, pruner JournalPruner, log *logger.Logger) *Inline {
	log = log.Named("tasks")
	return &Inline{
		check:   ConsistencyCheckProcessor(runner, journal, log),
		prune:   PruneJournalProcessor(pruner, log),
		log:     log,
	}
}

// Enqueue starts the task and returns a generated id.
func (i *Inline) Enqueue(task backlite.Task) (string, error) {
	var run func(ctx context.Context) error
	switch t := task.(type) {
	case ConsistencyCheckTask:
		run = func(ctx context.Context) error { return i.check(ctx, t) }
	case PruneJournalTask:
		run = func(ctx context.Context) error { return i.prune(ctx, t) }
	default:
		return "", fmt.Errorf("enqueue %s: unsupported task", task.Config().Name)
	}

	id := uuid.NewString()
	name := task.Config().Name
	timeout := task.Config().Timeout

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := run(ctx); err != nil {
			i.log.Error("inline task failed", "task", name, "id", id, "error", err)
		}
	}()
	return id, nil
}

// Wait blocks until every started task returned.
func (i *Inline) Wait() {
	i.wg.Wait()
}
