package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/taskflow/marketplace-api/internal/services"
)

// Scheduler runs the daily deadline reminder sweep.
type Scheduler struct {
	cron      *cron.Cron
	reminders *services.ReminderService
}

// New creates a scheduler that runs the reminder sweep on the given cron
// expression.
func New(reminders *services.ReminderService, spec string) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(),
		reminders: reminders,
	}

	_, err := s.cron.AddFunc(spec, func() {
		summary, err := s.reminders.RunSweep(time.Now())
		if err != nil {
			log.Printf("reminder sweep failed: %v", err)
			return
		}
		log.Printf("reminder sweep: %d urgent, %d upcoming, %d overdue",
			summary.Urgent, summary.Upcoming, summary.Overdue)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
