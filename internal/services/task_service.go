package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/repository"
	"github.com/taskflow/marketplace-api/internal/utils"
)

var (
	// ErrTaskNotFound is returned when a task does not exist
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskNotInProgress is returned when completing a task that is not
	// in progress
	ErrTaskNotInProgress = errors.New("task is not in progress")

	// ErrNotAssignedFreelancer is returned when someone other than the
	// assigned freelancer submits work
	ErrNotAssignedFreelancer = errors.New("not the assigned freelancer")

	// ErrCategoryNotFound is returned when a task references an unknown
	// category
	ErrCategoryNotFound = errors.New("task category not found")

	// ErrInvalidDeadline is returned when a task deadline is in the past
	ErrInvalidDeadline = errors.New("deadline must be in the future")

	// ErrPaymentReleaseFailed signals that a task was completed but the
	// escrowed payment could not be released. The completion stands; the
	// release has to be retried.
	ErrPaymentReleaseFailed = errors.New("task completed but payment release failed")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo     repository.TaskRepository
	categoryRepo repository.CategoryRepository
	userRepo     repository.UserRepository
	payments     *PaymentService
	mailer       Mailer
	dispatcher   Dispatcher
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo repository.TaskRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
	payments *PaymentService,
	mailer Mailer,
	dispatcher Dispatcher,
) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		payments:     payments,
		mailer:       mailer,
		dispatcher:   dispatcher,
	}
}

// CreateTaskInput carries the fields for posting a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Deadline    time.Time
	Category    string
}

// CreateTask posts a new open task for a client and announces it to
// freelancers by email.
func (s *TaskService) CreateTask(clientID uint64, input CreateTaskInput) (*models.Task, error) {
	if !input.Deadline.After(time.Now()) {
		return nil, ErrInvalidDeadline
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      models.TaskStatusOpen,
		Deadline:    input.Deadline,
		ClientID:    clientID,
	}
	if input.Category != "" {
		category, err := s.categoryRepo.FindByName(input.Category)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		task.CategoryID = &category.ID
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, err
	}

	s.dispatcher.Enqueue("task.posted", func(ctx context.Context) error {
		emails, err := s.userRepo.ListEmailsByRole(models.RoleFreelancer)
		if err != nil {
			return err
		}
		subject := "New task posted: " + task.Title
		body := fmt.Sprintf("A new task %q is open for proposals.", task.Title)
		for _, email := range emails {
			if err := s.mailer.Send(email, subject, body); err != nil {
				return err
			}
		}
		return nil
	})

	return task, nil
}

// GetTask retrieves a task with its relations.
func (s *TaskService) GetTask(id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, "Client", "Freelancer", "Category")
	if err != nil {
		return nil, s.translate(err)
	}
	return task, nil
}

// ListTasks returns a page of tasks together with the total count.
func (s *TaskService) ListTasks(params utils.PaginationParams) ([]models.Task, int64, error) {
	return s.taskRepo.ListPaginated(params)
}

// ListByClient lists tasks posted by a client.
func (s *TaskService) ListByClient(clientID uint64) ([]models.Task, error) {
	return s.taskRepo.ListByClientID(clientID)
}

// ListByFreelancer lists tasks assigned to a freelancer.
func (s *TaskService) ListByFreelancer(freelancerID uint64) ([]models.Task, error) {
	return s.taskRepo.ListByFreelancerID(freelancerID)
}

// UpdateTaskInput carries the updatable task fields. Nil fields are left
// unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Deadline    *time.Time
	Category    *string
}

// UpdateTask edits an open task owned by the client.
func (s *TaskService) UpdateTask(clientID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, s.translate(err)
	}
	if task.ClientID != clientID {
		return nil, ErrNotTaskOwner
	}
	if task.Status != models.TaskStatusOpen {
		return nil, ErrTaskNotOpen
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Deadline != nil {
		if !input.Deadline.After(time.Now()) {
			return nil, ErrInvalidDeadline
		}
		task.Deadline = *input.Deadline
	}
	if input.Category != nil {
		category, err := s.categoryRepo.FindByName(*input.Category)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		task.CategoryID = &category.ID
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes an open task and its proposals. Admins may delete any
// open task.
func (s *TaskService) DeleteTask(userID uint64, role models.Role, taskID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return s.translate(err)
	}
	if role != models.RoleAdmin && task.ClientID != userID {
		return ErrNotTaskOwner
	}
	if task.Status != models.TaskStatusOpen {
		return ErrTaskNotOpen
	}
	return s.taskRepo.Delete(taskID)
}

// SubmitWork records a work submission by the assigned freelancer: the task
// moves to COMPLETED and the escrowed payment is released. When the release
// fails the completion stands and ErrPaymentReleaseFailed is returned.
func (s *TaskService) SubmitWork(freelancerID, taskID uint64, workURL string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, s.translate(err)
	}
	if task.FreelancerID == nil || *task.FreelancerID != freelancerID {
		return nil, ErrNotAssignedFreelancer
	}

	completed, err := s.taskRepo.CompleteInProgress(taskID, &workURL)
	if err != nil {
		return nil, s.translate(err)
	}

	s.dispatcher.Enqueue("task.work-submitted", func(ctx context.Context) error {
		body := fmt.Sprintf("Work for task %q was submitted: %s", completed.Title, workURL)
		return s.mailer.Send(completed.Client.Email, "Work submitted", body)
	})

	if _, err := s.payments.ReleasePayment(taskID); err != nil {
		return completed, fmt.Errorf("%w: %v", ErrPaymentReleaseFailed, err)
	}
	return completed, nil
}

// CompleteTask marks a task completed without a work URL and releases the
// escrowed payment. Only the assigned freelancer may call it.
func (s *TaskService) CompleteTask(freelancerID, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, s.translate(err)
	}
	if task.FreelancerID == nil || *task.FreelancerID != freelancerID {
		return nil, ErrNotAssignedFreelancer
	}

	completed, err := s.taskRepo.CompleteInProgress(taskID, nil)
	if err != nil {
		return nil, s.translate(err)
	}

	if _, err := s.payments.ReleasePayment(taskID); err != nil {
		return completed, fmt.Errorf("%w: %v", ErrPaymentReleaseFailed, err)
	}
	return completed, nil
}

// CountByStatus counts tasks, optionally filtered by status.
func (s *TaskService) CountByStatus(status *models.TaskStatus) (int64, error) {
	if status == nil {
		return s.taskRepo.Count()
	}
	return s.taskRepo.CountByStatus(*status)
}

// CreateCategory adds a task category.
func (s *TaskService) CreateCategory(name, description string) (*models.TaskCategory, error) {
	category := &models.TaskCategory{Name: name, Description: description}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories lists all task categories.
func (s *TaskService) ListCategories() ([]models.TaskCategory, error) {
	return s.categoryRepo.List()
}

func (s *TaskService) translate(err error) error {
	switch {
	case errors.Is(err, repository.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, repository.ErrTaskNotInProgress):
		return ErrTaskNotInProgress
	default:
		return err
	}
}
