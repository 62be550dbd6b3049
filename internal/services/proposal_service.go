package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/repository"
)

var (
	// ErrProposalNotFound is returned when a proposal does not exist
	ErrProposalNotFound = errors.New("proposal not found")

	// ErrProposalNotPending is returned when deciding a proposal that has
	// already been decided
	ErrProposalNotPending = errors.New("proposal has already been decided")

	// ErrTaskNotOpen is returned when acting on a task that is no longer
	// accepting proposals
	ErrTaskNotOpen = errors.New("task is not open")

	// ErrInvalidBid is returned when a proposal's bid amount is not positive
	ErrInvalidBid = errors.New("bid amount must be positive")

	// ErrNotTaskOwner is returned when a client acts on a task they do not own
	ErrNotTaskOwner = errors.New("not the task owner")

	// ErrOwnTask is returned when a freelancer bids on their own task
	ErrOwnTask = errors.New("cannot submit a proposal to your own task")
)

// ProposalService handles proposal business logic
type ProposalService struct {
	proposalRepo  repository.ProposalRepository
	taskRepo      repository.TaskRepository
	notifications *NotificationService
	mailer        Mailer
	dispatcher    Dispatcher
}

// NewProposalService creates a new proposal service
func NewProposalService(
	proposalRepo repository.ProposalRepository,
	taskRepo repository.TaskRepository,
	notifications *NotificationService,
	mailer Mailer,
	dispatcher Dispatcher,
) *ProposalService {
	return &ProposalService{
		proposalRepo:  proposalRepo,
		taskRepo:      taskRepo,
		notifications: notifications,
		mailer:        mailer,
		dispatcher:    dispatcher,
	}
}

// Submit creates a proposal on an open task.
func (s *ProposalService) Submit(freelancerID, taskID uint64, coverLetter string, bidAmount decimal.Decimal) (*models.Proposal, error) {
	if !bidAmount.IsPositive() {
		return nil, ErrInvalidBid
	}

	task, err := s.taskRepo.FindByID(taskID, "Client")
	if err != nil {
		return nil, s.translate(err)
	}
	if task.ClientID == freelancerID {
		return nil, ErrOwnTask
	}
	if task.Status != models.TaskStatusOpen {
		return nil, ErrTaskNotOpen
	}

	proposal := &models.Proposal{
		CoverLetter:  coverLetter,
		BidAmount:    bidAmount,
		SubmittedAt:  time.Now(),
		Status:       models.ProposalStatusPending,
		TaskID:       taskID,
		FreelancerID: freelancerID,
	}
	if err := s.proposalRepo.Create(proposal); err != nil {
		return nil, err
	}

	s.dispatcher.Enqueue("proposal.submitted", func(ctx context.Context) error {
		message := fmt.Sprintf("New proposal received for task %q", task.Title)
		if err := s.notifications.Notify(task.ClientID, &task.ID, models.NotificationProposalUpdate, message); err != nil {
			return err
		}
		return s.mailer.Send(task.Client.Email, "New proposal on your task", message)
	})

	return proposal, nil
}

// Accept accepts a proposal on behalf of the task owner. The proposal, its
// task and all sibling proposals change together; notifications and emails
// go out only after the change is committed.
func (s *ProposalService) Accept(clientID, proposalID uint64) (*models.Proposal, error) {
	proposal, err := s.proposalRepo.FindByID(proposalID, "Task")
	if err != nil {
		return nil, s.translate(err)
	}
	if proposal.Task.ClientID != clientID {
		return nil, ErrNotTaskOwner
	}

	result, err := s.proposalRepo.Accept(proposalID)
	if err != nil {
		return nil, s.translate(err)
	}

	accepted := result.Proposal
	s.dispatcher.Enqueue("proposal.accepted", func(ctx context.Context) error {
		message := fmt.Sprintf("Your proposal for task %q was accepted", accepted.Task.Title)
		if err := s.notifications.Notify(accepted.FreelancerID, &accepted.TaskID, models.NotificationTaskAssigned, message); err != nil {
			return err
		}
		return s.mailer.Send(accepted.Freelancer.Email, "Proposal accepted", message)
	})

	for i := range result.Rejected {
		rejected := result.Rejected[i]
		s.dispatcher.Enqueue("proposal.rejected", func(ctx context.Context) error {
			message := fmt.Sprintf("Your proposal for task %q was not selected", rejected.Task.Title)
			if err := s.notifications.Notify(rejected.FreelancerID, &rejected.TaskID, models.NotificationProposalUpdate, message); err != nil {
				return err
			}
			return s.mailer.Send(rejected.Freelancer.Email, "Proposal update", message)
		})
	}

	return accepted, nil
}

// Reject rejects a pending proposal on behalf of the task owner.
func (s *ProposalService) Reject(clientID, proposalID uint64) (*models.Proposal, error) {
	proposal, err := s.proposalRepo.FindByID(proposalID, "Task")
	if err != nil {
		return nil, s.translate(err)
	}
	if proposal.Task.ClientID != clientID {
		return nil, ErrNotTaskOwner
	}

	rejected, err := s.proposalRepo.Reject(proposalID)
	if err != nil {
		return nil, s.translate(err)
	}

	s.dispatcher.Enqueue("proposal.rejected", func(ctx context.Context) error {
		message := fmt.Sprintf("Your proposal for task %q was not selected", rejected.Task.Title)
		if err := s.notifications.Notify(rejected.FreelancerID, &rejected.TaskID, models.NotificationProposalUpdate, message); err != nil {
			return err
		}
		return s.mailer.Send(rejected.Freelancer.Email, "Proposal update", message)
	})

	return rejected, nil
}

// GetProposal retrieves a proposal visible to the caller: the submitting
// freelancer, the task owner, or an admin.
func (s *ProposalService) GetProposal(userID uint64, role models.Role, proposalID uint64) (*models.Proposal, error) {
	proposal, err := s.proposalRepo.FindByID(proposalID, "Task", "Freelancer")
	if err != nil {
		return nil, s.translate(err)
	}
	if role != models.RoleAdmin && proposal.FreelancerID != userID && proposal.Task.ClientID != userID {
		return nil, ErrNotTaskOwner
	}
	return proposal, nil
}

// ListByTask lists proposals on a task for its owner.
func (s *ProposalService) ListByTask(clientID uint64, role models.Role, taskID uint64) ([]models.Proposal, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, s.translate(err)
	}
	if role != models.RoleAdmin && task.ClientID != clientID {
		return nil, ErrNotTaskOwner
	}
	return s.proposalRepo.ListByTaskID(taskID)
}

// ListMine lists a freelancer's own proposals.
func (s *ProposalService) ListMine(freelancerID uint64) ([]models.Proposal, error) {
	return s.proposalRepo.ListByFreelancerID(freelancerID)
}

// ListForClient lists proposals on any of a client's tasks.
func (s *ProposalService) ListForClient(clientID uint64) ([]models.Proposal, error) {
	return s.proposalRepo.ListByClientID(clientID)
}

// CountByStatus counts proposals, optionally filtered by status.
func (s *ProposalService) CountByStatus(status *models.ProposalStatus) (int64, error) {
	if status == nil {
		return s.proposalRepo.Count()
	}
	return s.proposalRepo.CountByStatus(*status)
}

// EarningsSince sums a freelancer's winning bids on completed tasks since
// the given time.
func (s *ProposalService) EarningsSince(freelancerID uint64, since time.Time) (decimal.Decimal, error) {
	return s.proposalRepo.EarningsSince(freelancerID, since)
}

func (s *ProposalService) translate(err error) error {
	switch {
	case errors.Is(err, repository.ErrProposalNotFound):
		return ErrProposalNotFound
	case errors.Is(err, repository.ErrProposalNotPending):
		return ErrProposalNotPending
	case errors.Is(err, repository.ErrTaskNotOpen):
		return ErrTaskNotOpen
	case errors.Is(err, repository.ErrTaskNotFound):
		return ErrTaskNotFound
	default:
		return err
	}
}
