package app

import (
	"context"
	"fmt"
	"time"

	"github.com/custodianhq/custos/internal/adapter/archive"
	"github.com/custodianhq/custos/internal/adapter/runner"
	"github.com/custodianhq/custos/internal/config"
	"github.com/custodianhq/custos/internal/domain"
	"github.com/custodianhq/custos/internal/infrastructure/logger"
	"github.com/custodianhq/custos/internal/infrastructure/scheduler"
	"github.com/custodianhq/custos/internal/usecase"
)

type App struct {
	config    *config.Config
	logger    *logger.Logger
	jobs      []domain.Job
	backupUC  *usecase.Backup
	retention *usecase.Retention
	scheduler *scheduler.Scheduler
	sweeper   *scheduler.Sweeper
}

func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	jobs := cfg.EnabledJobs()
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no enabled jobs found")
	}

	log.Infof("Starting %s", cfg.App.Name)
	for _, job := range jobs {
		log.Infof("✓ Job %d %q: every %s anchored at %s, folder %s",
			job.ID, job.Name, job.Frequency, job.Anchor, job.Folder)
	}

	archiver := archive.NewZip()
	comparator := usecase.NewComparator(archiver, log)
	retention := usecase.NewRetention(comparator, log)
	backupUC := usecase.NewBackup(runner.NewExec(), archiver, retention, log)

	return &App{
		config:    cfg,
		logger:    log,
		jobs:      jobs,
		backupUC:  backupUC,
		retention: retention,
		scheduler: scheduler.New(backupUC, log),
		sweeper:   scheduler.NewSweeper(retention, log),
	}, nil
}

// Run arms every job and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("Application started with %d backup job(s)", len(a.jobs))

	a.scheduler.Start(ctx, a.jobs)

	a.logger.Infof("Scheduling retention sweep: %s", a.config.SweepSchedule)
	if err := a.sweeper.Schedule(a.config.SweepSchedule, a.jobs); err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}
	a.sweeper.Start()

	<-ctx.Done()
	return nil
}

// Shutdown stops scheduling and waits until no run is in flight.
func (a *App) Shutdown() {
	a.logger.Infof("Shutting down application...")
	a.sweeper.Stop()
	a.scheduler.Shutdown()
	a.logger.Close()
}

// RunJobOnce executes a single job immediately, outside its schedule.
func (a *App) RunJobOnce(ctx context.Context, name string) error {
	for _, job := range a.jobs {
		if job.Name == name {
			return a.backupUC.Execute(ctx, job, time.Now())
		}
	}
	return fmt.Errorf("no enabled job named %q", name)
}

// PruneOnce runs a retention pass for one job, or for every job when name
// is empty.
func (a *App) PruneOnce(name string) error {
	matched := false
	for _, job := range a.jobs {
		if name != "" && job.Name != name {
			continue
		}
		matched = true
		if _, err := a.retention.Apply(job); err != nil {
			return fmt.Errorf("[%s] retention: %w", job.Name, err)
		}
	}
	if !matched {
		return fmt.Errorf("no enabled job named %q", name)
	}
	return nil
}
