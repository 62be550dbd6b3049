package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/repository"
)

type ReminderServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	mailer  *recordingMailer
	service *ReminderService

	client     *models.User
	freelancer *models.User

	now time.Time
}

func (s *ReminderServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.mailer = &recordingMailer{}

	taskRepo := repository.NewGormTaskRepository(s.db)
	notifications := NewNotificationService(repository.NewGormNotificationRepository(s.db))
	s.service = NewReminderService(taskRepo, notifications, s.mailer, 1, 3)

	s.client = createUser(s.T(), s.db, "remclient", models.RoleClient)
	s.freelancer = createUser(s.T(), s.db, "remfreelancer", models.RoleFreelancer)

	s.now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
}

func (s *ReminderServiceTestSuite) taskDue(status models.TaskStatus, daysFromNow int) *models.Task {
	deadline := s.now.Truncate(24 * time.Hour).AddDate(0, 0, daysFromNow)
	task := &models.Task{
		Title:        "Task due in " + deadline.Format("2006-01-02"),
		Status:       status,
		Deadline:     deadline,
		ClientID:     s.client.ID,
		FreelancerID: &s.freelancer.ID,
	}
	s.Require().NoError(s.db.Create(task).Error)
	return task
}

func (s *ReminderServiceTestSuite) reminderCount(userID uint64) int64 {
	var count int64
	s.Require().NoError(s.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", userID, models.NotificationDeadlineReminder).
		Count(&count).Error)
	return count
}

func (s *ReminderServiceTestSuite) TestSweepBuckets() {
	s.taskDue(models.TaskStatusInProgress, 1)  // urgent
	s.taskDue(models.TaskStatusInProgress, 3)  // upcoming
	s.taskDue(models.TaskStatusInProgress, -2) // overdue
	s.taskDue(models.TaskStatusInProgress, 10) // too far out
	s.taskDue(models.TaskStatusOpen, 1)        // not started, no reminder
	s.taskDue(models.TaskStatusCompleted, -1)  // done, no reminder

	summary, err := s.service.RunSweep(s.now)
	s.Require().NoError(err)
	s.Equal(1, summary.Urgent)
	s.Equal(1, summary.Upcoming)
	s.Equal(1, summary.Overdue)

	// One reminder per bucketed task for the freelancer, plus one overdue
	// notice for the client.
	s.Equal(int64(3), s.reminderCount(s.freelancer.ID))
	s.Equal(int64(1), s.reminderCount(s.client.ID))
	s.Len(s.mailer.sent(), 3)
}

func (s *ReminderServiceTestSuite) TestSweepIsEmptyWhenNothingDue() {
	s.taskDue(models.TaskStatusInProgress, 5)

	summary, err := s.service.RunSweep(s.now)
	s.Require().NoError(err)
	s.Equal(SweepSummary{}, summary)
	s.Equal(int64(0), s.reminderCount(s.freelancer.ID))
}

func (s *ReminderServiceTestSuite) TestBucketsDoNotOverlap() {
	s.taskDue(models.TaskStatusInProgress, 1)

	summary, err := s.service.RunSweep(s.now)
	s.Require().NoError(err)
	s.Equal(1, summary.Urgent)
	s.Equal(0, summary.Upcoming)
	s.Equal(0, summary.Overdue)
	s.Equal(int64(1), s.reminderCount(s.freelancer.ID))
}

func TestReminderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReminderServiceTestSuite))
}
