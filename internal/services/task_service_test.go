package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/repository"
)

type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	mailer  *recordingMailer
	service *TaskService

	client     *models.User
	freelancer *models.User
}

func (s *TaskServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.mailer = &recordingMailer{}

	taskRepo := repository.NewGormTaskRepository(s.db)
	categoryRepo := repository.NewGormCategoryRepository(s.db)
	userRepo := repository.NewGormUserRepository(s.db)
	paymentRepo := repository.NewGormPaymentRepository(s.db)
	proposalRepo := repository.NewGormProposalRepository(s.db)
	notifications := NewNotificationService(repository.NewGormNotificationRepository(s.db))

	payments := NewPaymentService(paymentRepo, taskRepo, proposalRepo, notifications,
		s.mailer, SyncDispatcher{}, &stubProcessor{}, "usd", decimal.NewFromInt(15))
	s.service = NewTaskService(taskRepo, categoryRepo, userRepo, payments, s.mailer, SyncDispatcher{})

	s.client = createUser(s.T(), s.db, "taskclient", models.RoleClient)
	s.freelancer = createUser(s.T(), s.db, "taskfreelancer", models.RoleFreelancer)
}

func (s *TaskServiceTestSuite) assignTask(task *models.Task, freelancerID uint64) {
	s.Require().NoError(s.db.Model(task).Updates(map[string]interface{}{
		"status":        models.TaskStatusInProgress,
		"freelancer_id": freelancerID,
	}).Error)
}

func (s *TaskServiceTestSuite) holdPayment(task *models.Task) *models.Payment {
	payment := &models.Payment{
		Amount:       decimal.NewFromInt(250),
		Currency:     "usd",
		Status:       models.PaymentStatusHeld,
		PaymentDate:  time.Now(),
		TaskID:       task.ID,
		ClientID:     s.client.ID,
		FreelancerID: s.freelancer.ID,
	}
	s.Require().NoError(s.db.Create(payment).Error)
	return payment
}

func (s *TaskServiceTestSuite) TestCreateTaskAnnouncesToFreelancers() {
	createUser(s.T(), s.db, "anotherfreelancer", models.RoleFreelancer)

	task, err := s.service.CreateTask(s.client.ID, CreateTaskInput{
		Title:    "Design a logo",
		Deadline: time.Now().AddDate(0, 0, 7),
	})
	s.Require().NoError(err)
	s.Equal(models.TaskStatusOpen, task.Status)
	s.Equal(s.client.ID, task.ClientID)

	sent := s.mailer.sent()
	s.Len(sent, 2)
}

func (s *TaskServiceTestSuite) TestCreateTaskRejectsPastDeadline() {
	_, err := s.service.CreateTask(s.client.ID, CreateTaskInput{
		Title:    "Too late",
		Deadline: time.Now().AddDate(0, 0, -1),
	})
	s.ErrorIs(err, ErrInvalidDeadline)
}

func (s *TaskServiceTestSuite) TestCreateTaskWithCategory() {
	_, err := s.service.CreateCategory("Design", "Visual design work")
	s.Require().NoError(err)

	task, err := s.service.CreateTask(s.client.ID, CreateTaskInput{
		Title:    "Design a logo",
		Deadline: time.Now().AddDate(0, 0, 7),
		Category: "Design",
	})
	s.Require().NoError(err)
	s.Require().NotNil(task.CategoryID)

	_, err = s.service.CreateTask(s.client.ID, CreateTaskInput{
		Title:    "Mystery work",
		Deadline: time.Now().AddDate(0, 0, 7),
		Category: "Nonexistent",
	})
	s.ErrorIs(err, ErrCategoryNotFound)
}

func (s *TaskServiceTestSuite) TestSubmitWorkCompletesAndReleases() {
	task := createTask(s.T(), s.db, s.client.ID, models.TaskStatusOpen)
	s.assignTask(task, s.freelancer.ID)
	s.holdPayment(task)

	completed, err := s.service.SubmitWork(s.freelancer.ID, task.ID, "https://github.com/acme/landing")
	s.Require().NoError(err)
	s.Equal(models.TaskStatusCompleted, completed.Status)
	s.Require().NotNil(completed.WorkURL)
	s.Equal("https://github.com/acme/landing", *completed.WorkURL)

	var payment models.Payment
	s.Require().NoError(s.db.Where("task_id = ?", task.ID).First(&payment).Error)
	s.Equal(models.PaymentStatusCompleted, payment.Status)

	var released int64
	s.Require().NoError(s.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", s.freelancer.ID, models.NotificationPaymentReleased).
		Count(&released).Error)
	s.Equal(int64(1), released)
}

func (s *TaskServiceTestSuite) TestSubmitWorkRequiresAssignedFreelancer() {
	other := createUser(s.T(), s.db, "interloper", models.RoleFreelancer)
	task := createTask(s.T(), s.db, s.client.ID, models.TaskStatusOpen)
	s.assignTask(task, s.freelancer.ID)

	_, err := s.service.SubmitWork(other.ID, task.ID, "https://example.com/work")
	s.ErrorIs(err, ErrNotAssignedFreelancer)
}

func (s *TaskServiceTestSuite) TestSubmitWorkTwice() {
	task := createTask(s.T(), s.db, s.client.ID, models.TaskStatusOpen)
	s.assignTask(task, s.freelancer.ID)
	s.holdPayment(task)

	_, err := s.service.SubmitWork(s.freelancer.ID, task.ID, "https://example.com/v1")
	s.Require().NoError(err)

	_, err = s.service.SubmitWork(s.freelancer.ID, task.ID, "https://example.com/v2")
	s.ErrorIs(err, ErrTaskNotInProgress)

	var reloaded models.Task
	s.Require().NoError(s.db.First(&reloaded, task.ID).Error)
	s.Equal("https://example.com/v1", *reloaded.WorkURL)
}

func (s *TaskServiceTestSuite) TestSubmitWorkWithoutEscrow() {
	task := createTask(s.T(), s.db, s.client.ID, models.TaskStatusOpen)
	s.assignTask(task, s.freelancer.ID)

	completed, err := s.service.SubmitWork(s.freelancer.ID, task.ID, "https://example.com/work")
	s.ErrorIs(err, ErrPaymentReleaseFailed)

	// The completion sticks even though the release could not happen.
	s.Require().NotNil(completed)
	s.Equal(models.TaskStatusCompleted, completed.Status)
}

func (s *TaskServiceTestSuite) TestCompleteTaskByAssignedFreelancer() {
	task := createTask(s.T(), s.db, s.client.ID, models.TaskStatusOpen)
	s.assignTask(task, s.freelancer.ID)
	s.holdPayment(task)

	completed, err := s.service.CompleteTask(s.freelancer.ID, task.ID)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusCompleted, completed.Status)
	s.Nil(completed.WorkURL)

	var payment models.Payment
	s.Require().NoError(s.db.Where("task_id = ?", task.ID).First(&payment).Error)
	s.Equal(models.PaymentStatusCompleted, payment.Status)
}

func (s *TaskServiceTestSuite) TestCompleteTaskRequiresAssignedFreelancer() {
	other := createUser(s.T(), s.db, "otherfreelancer", models.RoleFreelancer)
	task := createTask(s.T(), s.db, s.client.ID, models.TaskStatusOpen)
	s.assignTask(task, s.freelancer.ID)

	_, err := s.service.CompleteTask(other.ID, task.ID)
	s.ErrorIs(err, ErrNotAssignedFreelancer)

	// The client owns the task but is not the assigned freelancer either.
	_, err = s.service.CompleteTask(s.client.ID, task.ID)
	s.ErrorIs(err, ErrNotAssignedFreelancer)

	var reloaded models.Task
	s.Require().NoError(s.db.First(&reloaded, task.ID).Error)
	s.Equal(models.TaskStatusInProgress, reloaded.Status)
}

func (s *TaskServiceTestSuite) TestCompleteOpenTask() {
	task := createTask(s.T(), s.db, s.client.ID, models.TaskStatusOpen)

	_, err := s.service.CompleteTask(s.freelancer.ID, task.ID)
	s.ErrorIs(err, ErrNotAssignedFreelancer)
}

func (s *TaskServiceTestSuite) TestUpdateTaskOnlyWhileOpen() {
	task := createTask(s.T(), s.db, s.client.ID, models.TaskStatusOpen)

	title := "Refined title"
	updated, err := s.service.UpdateTask(s.client.ID, task.ID, UpdateTaskInput{Title: &title})
	s.Require().NoError(err)
	s.Equal("Refined title", updated.Title)

	s.assignTask(task, s.freelancer.ID)
	_, err = s.service.UpdateTask(s.client.ID, task.ID, UpdateTaskInput{Title: &title})
	s.ErrorIs(err, ErrTaskNotOpen)
}

func (s *TaskServiceTestSuite) TestUpdateTaskRequiresOwner() {
	other := createUser(s.T(), s.db, "updclient", models.RoleClient)
	task := createTask(s.T(), s.db, s.client.ID, models.TaskStatusOpen)

	title := "Hijacked"
	_, err := s.service.UpdateTask(other.ID, task.ID, UpdateTaskInput{Title: &title})
	s.ErrorIs(err, ErrNotTaskOwner)
}

func (s *TaskServiceTestSuite) TestDeleteTaskRemovesProposals() {
	task := createTask(s.T(), s.db, s.client.ID, models.TaskStatusOpen)
	createProposal(s.T(), s.db, task.ID, s.freelancer.ID, models.ProposalStatusPending, "100")

	s.Require().NoError(s.service.DeleteTask(s.client.ID, models.RoleClient, task.ID))

	_, err := s.service.GetTask(task.ID)
	s.ErrorIs(err, ErrTaskNotFound)

	var count int64
	s.Require().NoError(s.db.Model(&models.Proposal{}).
		Where("task_id = ?", task.ID).Count(&count).Error)
	s.Equal(int64(0), count)
}

func (s *TaskServiceTestSuite) TestDeleteInProgressTask() {
	task := createTask(s.T(), s.db, s.client.ID, models.TaskStatusOpen)
	s.assignTask(task, s.freelancer.ID)

	err := s.service.DeleteTask(s.client.ID, models.RoleClient, task.ID)
	s.ErrorIs(err, ErrTaskNotOpen)
}

func (s *TaskServiceTestSuite) TestCountByStatus() {
	createTask(s.T(), s.db, s.client.ID, models.TaskStatusOpen)
	createTask(s.T(), s.db, s.client.ID, models.TaskStatusOpen)
	createTask(s.T(), s.db, s.client.ID, models.TaskStatusCompleted)

	total, err := s.service.CountByStatus(nil)
	s.Require().NoError(err)
	s.Equal(int64(3), total)

	open := models.TaskStatusOpen
	count, err := s.service.CountByStatus(&open)
	s.Require().NoError(err)
	s.Equal(int64(2), count)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
