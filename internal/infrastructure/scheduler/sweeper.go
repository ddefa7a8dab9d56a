package scheduler

import (
	"github.com/robfig/cron/v3"

	"github.com/custodianhq/custos/internal/domain"
)

// Pruner runs one retention pass over a job's folder.
type Pruner interface {
	Apply(job domain.Job) (bool, error)
}

// Sweeper periodically re-runs retention for every job, so folders stay
// bounded even when a job fails repeatedly or fires rarely.
type Sweeper struct {
	cron   *cron.Cron
	pruner Pruner
	logger Logger
}

func NewSweeper(pruner Pruner, logger Logger) *Sweeper {
	return &Sweeper{
		cron:   cron.New(cron.WithSeconds()),
		pruner: pruner,
		logger: logger,
	}
}

func (s *Sweeper) Schedule(spec string, jobs []domain.Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.logger.Infof("Starting retention sweep for %d job(s)", len(jobs))
		for _, job := range jobs {
			if _, err := s.pruner.Apply(job); err != nil {
				s.logger.Errorf("[%s] Retention sweep failed: %v", job.Name, err)
			}
		}
		s.logger.Infof("Retention sweep completed")
	})
	return err
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop waits for a sweep already in progress to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
