package services

import (
	"fmt"
	"log"
	"time"

	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/repository"
)

// SweepSummary reports how many reminders a sweep produced per bucket.
type SweepSummary struct {
	Urgent   int `json:"urgent"`
	Upcoming int `json:"upcoming"`
	Overdue  int `json:"overdue"`
}

// ReminderService sends deadline reminders for in-progress tasks.
type ReminderService struct {
	taskRepo      repository.TaskRepository
	notifications *NotificationService
	mailer        Mailer

	urgentDays   int
	upcomingDays int
}

// NewReminderService creates a new reminder service
func NewReminderService(taskRepo repository.TaskRepository, notifications *NotificationService, mailer Mailer, urgentDays, upcomingDays int) *ReminderService {
	return &ReminderService{
		taskRepo:      taskRepo,
		notifications: notifications,
		mailer:        mailer,
		urgentDays:    urgentDays,
		upcomingDays:  upcomingDays,
	}
}

// RunSweep scans in-progress tasks relative to the given time and sends
// deadline reminders. The three buckets do not overlap, so a task gets at
// most one freelancer reminder per sweep.
func (s *ReminderService) RunSweep(now time.Time) (SweepSummary, error) {
	var summary SweepSummary
	today := now.Truncate(24 * time.Hour)

	urgent, err := s.taskRepo.ListInProgressDeadlineOn(today.AddDate(0, 0, s.urgentDays))
	if err != nil {
		return summary, err
	}
	for i := range urgent {
		task := &urgent[i]
		message := fmt.Sprintf("Task %q is due tomorrow", task.Title)
		s.remindFreelancer(task, message)
		summary.Urgent++
	}

	upcoming, err := s.taskRepo.ListInProgressDeadlineOn(today.AddDate(0, 0, s.upcomingDays))
	if err != nil {
		return summary, err
	}
	for i := range upcoming {
		task := &upcoming[i]
		message := fmt.Sprintf("Task %q is due in %d days", task.Title, s.upcomingDays)
		s.remindFreelancer(task, message)
		summary.Upcoming++
	}

	overdue, err := s.taskRepo.ListInProgressOverdue(today)
	if err != nil {
		return summary, err
	}
	for i := range overdue {
		task := &overdue[i]
		message := fmt.Sprintf("Task %q is past its deadline", task.Title)
		s.remindFreelancer(task, message)

		clientMsg := fmt.Sprintf("Task %q is overdue and still in progress", task.Title)
		if err := s.notifications.Notify(task.ClientID, &task.ID, models.NotificationDeadlineReminder, clientMsg); err != nil {
			log.Printf("reminder for client %d on task %d failed: %v", task.ClientID, task.ID, err)
		}
		summary.Overdue++
	}

	return summary, nil
}

func (s *ReminderService) remindFreelancer(task *models.Task, message string) {
	if task.FreelancerID == nil {
		return
	}
	if err := s.notifications.Notify(*task.FreelancerID, &task.ID, models.NotificationDeadlineReminder, message); err != nil {
		log.Printf("reminder for freelancer %d on task %d failed: %v", *task.FreelancerID, task.ID, err)
		return
	}
	if task.Freelancer != nil {
		if err := s.mailer.Send(task.Freelancer.Email, "Deadline reminder", message); err != nil {
			log.Printf("reminder mail for task %d failed: %v", task.ID, err)
		}
	}
}
