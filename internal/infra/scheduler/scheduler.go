package scheduler

import (
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic fixture verification pass.
type Scheduler struct {
	c *cron.Cron
}

func New() *Scheduler {
	return &Scheduler{c: cron.New()}
}

// Start registers the job under the given cron expression and starts the
// scheduler. An empty expression defaults to a daily pass.
func (s *Scheduler) Start(schedule string, job func()) error {
	if schedule == "" {
		schedule = "@daily"
	}
	if _, err := s.c.AddFunc(schedule, job); err != nil {
		return err
	}
	s.c.Start()
	log.Printf("fixture verification scheduled: %s", schedule)
	return nil
}

func (s *Scheduler) Stop() {
	s.c.Stop()
}
