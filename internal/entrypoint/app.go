package entrypoint

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/coursecatalog/internal/audit"
	"github.com/mrlokans/coursecatalog/internal/catalog"
	"github.com/mrlokans/coursecatalog/internal/config"
	"github.com/mrlokans/coursecatalog/internal/consistency"
	"github.com/mrlokans/coursecatalog/internal/database"
	auditrepo "github.com/mrlokans/coursecatalog/internal/database/audit"
	http_controllers "github.com/mrlokans/coursecatalog/internal/http"
	"github.com/mrlokans/coursecatalog/internal/jsonstore"
	"github.com/mrlokans/coursecatalog/internal/logger"
	"github.com/mrlokans/coursecatalog/internal/scheduler"
	"github.com/mrlokans/coursecatalog/internal/tasks"
	"github.com/mrlokans/coursecatalog/internal/watcher"
)

// NewLogger builds the application logger from the LOG_* settings.
func NewLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Mode:       string(cfg.Log.Mode),
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

// CatalogPaths maps the DATA_* settings to the collection files.
func CatalogPaths(cfg *config.Config) catalog.Paths {
	return catalog.Paths{
		Courses:   cfg.Data.CoursesPath,
		Modules:   cfg.Data.ModulesPath,
		Lessons:   cfg.Data.LessonsPath,
		Sequences: cfg.Data.SequencesPath,
	}
}

// InitData creates every missing collection file holding an empty array and
// returns the files it created. The sequences file is created on first use.
func InitData(paths catalog.Paths, log *logger.Logger) ([]string, error) {
	var created []string
	for _, path := range []string{paths.Courses, paths.Modules, paths.Lessons} {
		ok, err := jsonstore.EnsureFile(path)
		if err != nil {
			return created, err
		}
		if ok {
			log.Info("created data file", "path", path)
			created = append(created, path)
		}
	}
	return created, nil
}

// App holds the wired components of a running service.
type App struct {
	cfg *config.Config
	log *logger.Logger

	Paths   catalog.Paths
	Catalog *catalog.Catalog
	Checker *consistency.Checker

	db       *database.Database
	journal  *audit.Service
	queue    scheduler.Enqueuer
	client   *tasks.Client
	inline   *tasks.Inline
	sched    *scheduler.Scheduler
	watch    *watcher.Watcher
	cancelFn context.CancelFunc
}

// NewApp opens the journal, the task queue and the catalog. Nothing runs in
// the background until Start.
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	app := &App{cfg: cfg, log: log, Paths: CatalogPaths(cfg)}

	if cfg.Data.InitMissing {
		if _, err := InitData(app.Paths, log); err != nil {
			return nil, err
		}
	}

	var opts []catalog.Option
	opts = append(opts, catalog.WithLogger(log.Named("catalog")))

	// Mutation journal
	var (
		journal tasks.ConsistencyJournal
		pruner  tasks.JournalPruner
	)
	if cfg.Audit.Enabled {
		db, err := database.NewDatabase(cfg.Audit.DatabasePath, log.Named("database"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		app.db = db
		app.journal = audit.NewService(auditrepo.NewRepository(db.DB), log)
		app.journal.OnDivergence(app.onDivergence)
		journal, pruner = app.journal, app.journal
		opts = append(opts, catalog.WithRecorder(app.journal))
	} else {
		opts = append(opts, catalog.WithRecorder(divergenceRecorder(app.onDivergence)))
	}

	// Data watcher
	if cfg.Data.WatchEnabled {
		w, err := watcher.New(
			[]string{app.Paths.Courses, app.Paths.Modules, app.Paths.Lessons},
			cfg.Data.WatchDebounce,
			app.onFilesChanged,
			log,
		)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.watch = w
		opts = append(opts, catalog.WithWriteHook(w.MarkOwnWrite))
	}

	app.Catalog = catalog.New(app.Paths, opts...)
	checkerOpts := []consistency.Option{
		consistency.WithLocker(app.Catalog),
		consistency.WithLogger(log.Named("consistency")),
	}
	if cfg.Audit.BackupDir != "" {
		checkerOpts = append(checkerOpts, consistency.WithBackup(audit.NewAuditor(cfg.Audit.BackupDir)))
	}
	app.Checker = consistency.NewChecker(app.Paths, checkerOpts...)

	// Background tasks
	if cfg.Tasks.Enabled {
		client, err := tasks.NewClient(cfg.Audit.DatabasePath, tasks.Config{
			Workers:            cfg.Tasks.Workers,
			ReleaseAfter:       cfg.Tasks.ReleaseAfter,
			CleanupInterval:    cfg.Tasks.CleanupInterval,
			AuditRetentionDays: cfg.Audit.RetentionDays,
		}, log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		queues := []backlite.Queue{tasks.NewConsistencyCheckQueue(app.Checker, journal, log)}
		if pruner != nil {
			queues = append(queues, tasks.NewPruneJournalQueue(pruner, log))
		}
		client.Register(queues...)
		app.client = client
		app.queue = client
	} else {
		app.inline = tasks.NewInline(app.Checker, journal, pruner, log)
		app.queue = app.inline
	}

	// Scheduled jobs
	var jobs []scheduler.Job
	if cfg.Consistency.CheckEnabled {
		jobs = append(jobs, scheduler.ConsistencyCheckJob(cfg.Consistency.CheckSchedule, app.queue, cfg.Consistency.AutoRepair))
	}
	if cfg.Audit.Enabled && cfg.Audit.RetentionDays > 0 {
		schedule := cfg.Audit.CleanupSchedule
		if schedule == "" {
			schedule = scheduler.DefaultAuditCleanupSchedule
		}
		jobs = append(jobs, scheduler.PruneJournalJob(schedule, app.queue, cfg.Audit.RetentionDays))
	}
	app.sched = scheduler.New(log, jobs...)

	return app, nil
}

// Start launches the task workers, the scheduler and the watcher.
func (a *App) Start(ctx context.Context) error {
	ctx, a.cancelFn = context.WithCancel(ctx)

	if a.client != nil {
		go a.client.Start(ctx)
	}
	if err := a.sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	if a.watch != nil {
		if err := a.watch.Start(); err != nil {
			return fmt.Errorf("failed to start data watcher: %w", err)
		}
	}
	return nil
}

// Stop halts the background components, waiting for running tasks until ctx
// expires.
func (a *App) Stop(ctx context.Context) {
	if a.watch != nil {
		if err := a.watch.Stop(); err != nil {
			a.log.Warn("failed to stop data watcher", "error", err)
		}
	}
	a.sched.Stop()
	if a.client != nil {
		a.client.Stop(ctx)
	}
	if a.inline != nil {
		a.inline.Wait()
	}
	if a.journal != nil {
		a.journal.Wait()
	}
	if a.cancelFn != nil {
		a.cancelFn()
	}
}

// Close releases the databases. Call after Stop.
func (a *App) Close() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.log.Warn("error closing task client", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("error closing database", "error", err)
		}
	}
}

// RouterConfig collects the dependencies of the HTTP layer.
func (a *App) RouterConfig(version string) http_controllers.RouterConfig {
	cfg := http_controllers.RouterConfig{
		Catalog: a.Catalog,
		Logger:  a.log,
		Checker: a.Checker,
		Queue:   a.queue,
		DataFiles: map[string]string{
			"courses": a.Paths.Courses,
			"modules": a.Paths.Modules,
			"lessons": a.Paths.Lessons,
		},
		AllowedOrigins: a.cfg.CORS.AllowedOrigins,
		DefaultLimit:   a.cfg.Pagination.DefaultLimit,
		Version:        version,
	}
	if a.journal != nil {
		cfg.Journal = a.journal
	}
	if a.db != nil {
		cfg.Database = a.db
	}
	return cfg
}

// onDivergence queues a check after a mutation that may have written only
// part of its files.
func (a *App) onDivergence(_ context.Context, m catalog.Mutation) {
	a.enqueueCheck("divergence", m.OperationID)
}

func (a *App) onFilesChanged(paths []string) {
	a.log.Info("data files changed outside the service", "files", paths)
	a.enqueueCheck("file_change", uuid.NewString())
}

func (a *App) enqueueCheck(reason, opID string) {
	if a.queue == nil {
		return
	}
	id, err := a.queue.Enqueue(tasks.ConsistencyCheckTask{
		Reason:      reason,
		OperationID: opID,
		Repair:      a.cfg.Consistency.AutoRepair,
	})
	if err != nil {
		a.log.Error("failed to queue consistency check", "reason", reason, "op_id", opID, "error", err)
		return
	}
	a.log.Info("consistency check queued", "reason", reason, "op_id", opID, "task_id", id)
}

// divergenceRecorder triggers the divergence hook without a journal.
type divergenceRecorder func(ctx context.Context, m catalog.Mutation)

func (r divergenceRecorder) RecordMutation(ctx context.Context, m catalog.Mutation) {
	if m.MayHaveDiverged() {
		r(ctx, m)
	}
}
