package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"ecobazaar/internal/queue"
)

const DefaultCleanupSchedule = "0 0 3 * * *"

type TaskQueue interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

// Scheduler enqueues periodic worker tasks. It never runs the work itself.
type Scheduler struct {
	cron     *cron.Cron
	tasks    TaskQueue
	schedule string
	log      zerolog.Logger
}

func NewScheduler(tasks TaskQueue, schedule string, log zerolog.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultCleanupSchedule
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		tasks:    tasks,
		schedule: schedule,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.tasks == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.enqueueCleanup); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("orphan image cleanup scheduled")
	return nil
}

// Stop waits up to five seconds for a running enqueue to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.tasks.Enqueue(ctx, queue.Task{Type: queue.TaskCleanup}); err != nil {
		s.log.Error().Err(err).Msg("enqueue cleanup failed")
	}
}
