package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// ListAll retrieves every task
	ListAll() ([]models.Task, error)

	// ListPaginated retrieves a page of tasks plus the total count
	ListPaginated(params utils.PaginationParams) ([]models.Task, int64, error)

	// ListByClientID retrieves tasks posted by a client
	ListByClientID(clientID uint64) ([]models.Task, error)

	// ListByFreelancerID retrieves tasks assigned to a freelancer
	ListByFreelancerID(freelancerID uint64) ([]models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task and its proposals
	Delete(id uint64) error

	// CompleteInProgress atomically transitions an IN_PROGRESS task to
	// COMPLETED, optionally recording the work-submission URL. Returns
	// ErrTaskNotInProgress if the guard fails.
	CompleteInProgress(id uint64, workURL *string) (*models.Task, error)

	// CountByStatus counts tasks in a status
	CountByStatus(status models.TaskStatus) (int64, error)

	// Count counts all tasks
	Count() (int64, error)

	// ListInProgressDeadlineOn retrieves IN_PROGRESS tasks whose deadline
	// falls on the given calendar day.
	ListInProgressDeadlineOn(day time.Time) ([]models.Task, error)

	// ListInProgressOverdue retrieves IN_PROGRESS tasks whose deadline lies
	// strictly before the given day.
	ListInProgressOverdue(day time.Time) ([]models.Task, error)
}

// AcceptResult carries the outcome of an atomic proposal acceptance.
type AcceptResult struct {
	// Proposal is the accepted proposal with Task and Freelancer loaded.
	Proposal *models.Proposal
	// Rejected are the sibling proposals cascaded to REJECTED, with their
	// freelancers loaded for the fan-out.
	Rejected []models.Proposal
}

// ProposalRepository defines the interface for proposal data access
type ProposalRepository interface {
	// Create creates a new proposal
	Create(proposal *models.Proposal) error

	// FindByID finds a proposal by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Proposal, error)

	// ListByTaskID retrieves proposals for a task
	ListByTaskID(taskID uint64) ([]models.Proposal, error)

	// ListByFreelancerID retrieves proposals submitted by a freelancer
	ListByFreelancerID(freelancerID uint64) ([]models.Proposal, error)

	// ListByClientID retrieves proposals on any task owned by a client
	ListByClientID(clientID uint64) ([]models.Proposal, error)

	// FindAcceptedByTaskID finds the accepted proposal for a task, if any
	FindAcceptedByTaskID(taskID uint64) (*models.Proposal, error)

	// Accept atomically accepts a proposal: the proposal becomes ACCEPTED,
	// its task moves OPEN→IN_PROGRESS with the freelancer assigned, and all
	// sibling PENDING proposals become REJECTED. Concurrent accepts for the
	// same task serialize on the task row; the loser gets
	// ErrTaskNotOpen or ErrProposalNotPending.
	Accept(id uint64) (*AcceptResult, error)

	// Reject transitions a PENDING proposal to REJECTED. Returns
	// ErrProposalNotPending when the proposal already left PENDING.
	Reject(id uint64) (*models.Proposal, error)

	// Count counts all proposals
	Count() (int64, error)

	// CountByStatus counts proposals in a status
	CountByStatus(status models.ProposalStatus) (int64, error)

	// EarningsSince sums bid amounts of a freelancer's accepted proposals on
	// completed tasks submitted after the given time.
	EarningsSince(freelancerID uint64, since time.Time) (decimal.Decimal, error)
}

// HeldPaymentInput carries the validated fields extracted from a successful
// processor event.
type HeldPaymentInput struct {
	TaskID       uint64
	ClientID     uint64
	FreelancerID uint64
	SessionID    string
	Amount       decimal.Decimal
	Currency     string
	PaymentDate  time.Time
}

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	// FindByID finds a payment by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Payment, error)

	// FindByTaskID finds the payment for a task
	FindByTaskID(taskID uint64, preload ...string) (*models.Payment, error)

	// ListAll retrieves every payment
	ListAll() ([]models.Payment, error)

	// ListByClientID retrieves payments made by a client
	ListByClientID(clientID uint64) ([]models.Payment, error)

	// ListByFreelancerID retrieves payments destined for a freelancer
	ListByFreelancerID(freelancerID uint64) ([]models.Payment, error)

	// SaveHeld records a settled checkout as a HELD payment, idempotently
	// per task: an existing row is updated in place, otherwise a new row is
	// created after resolving task, client and freelancer (ErrTaskNotFound /
	// ErrUserNotFound when a referenced entity is missing). The returned
	// bool reports whether a row was created.
	SaveHeld(input HeldPaymentInput) (*models.Payment, bool, error)

	// Release transitions the task's payment HELD→COMPLETED. Returns
	// ErrPaymentNotFound when no row exists and ErrPaymentNotHeld for any
	// other status.
	Release(taskID uint64) (*models.Payment, error)

	// TotalCompletedRevenue sums the amounts of all COMPLETED payments
	TotalCompletedRevenue() (decimal.Decimal, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// ListEmailsByRole lists the email addresses of all users with a role
	ListEmailsByRole(role models.Role) ([]string, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create creates a new notification
	Create(n *models.Notification) error

	// ListByUserID lists a user's notifications, newest first
	ListByUserID(userID uint64) ([]models.Notification, error)

	// MarkRead marks a notification as read if it belongs to the user
	MarkRead(id, userID uint64) error
}

// CategoryRepository defines the interface for task category data access
type CategoryRepository interface {
	// Create creates a new category
	Create(category *models.TaskCategory) error

	// FindByName finds a category by its unique name
	FindByName(name string) (*models.TaskCategory, error)

	// List retrieves all categories
	List() ([]models.TaskCategory, error)
}
