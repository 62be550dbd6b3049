package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/repository"
)

var (
	// ErrPaymentNotFound is returned when a payment does not exist
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPaymentNotHeld is returned when releasing a payment that is not in
	// escrow
	ErrPaymentNotHeld = errors.New("payment is not held in escrow")

	// ErrTaskNotAssigned is returned when paying for a task that has no
	// accepted freelancer yet
	ErrTaskNotAssigned = errors.New("task has no assigned freelancer")

	// ErrPaymentAlreadySettled is returned when a checkout is requested for
	// a task whose payment already settled
	ErrPaymentAlreadySettled = errors.New("payment for this task has already settled")

	// ErrAmountBelowMinimum is returned when the bid is below the
	// processor's minimum chargeable amount
	ErrAmountBelowMinimum = errors.New("payment amount below minimum")

	// ErrProcessorUnavailable wraps failures talking to the payment
	// processor
	ErrProcessorUnavailable = errors.New("payment processor request failed")
)

// PaymentService handles escrow payment business logic
type PaymentService struct {
	paymentRepo   repository.PaymentRepository
	taskRepo      repository.TaskRepository
	proposalRepo  repository.ProposalRepository
	notifications *NotificationService
	mailer        Mailer
	dispatcher    Dispatcher
	processor     PaymentProcessor

	currency  string
	minAmount decimal.Decimal
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	taskRepo repository.TaskRepository,
	proposalRepo repository.ProposalRepository,
	notifications *NotificationService,
	mailer Mailer,
	dispatcher Dispatcher,
	processor PaymentProcessor,
	currency string,
	minAmount decimal.Decimal,
) *PaymentService {
	return &PaymentService{
		paymentRepo:   paymentRepo,
		taskRepo:      taskRepo,
		proposalRepo:  proposalRepo,
		notifications: notifications,
		mailer:        mailer,
		dispatcher:    dispatcher,
		processor:     processor,
		currency:      currency,
		minAmount:     minAmount,
	}
}

// CreateCheckoutIntent opens a hosted checkout session for the accepted bid
// on the client's task. The session metadata carries the task attribution
// that the webhook later reads back.
func (s *PaymentService) CreateCheckoutIntent(ctx context.Context, clientID, taskID uint64) (*CheckoutSession, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.ClientID != clientID {
		return nil, ErrNotTaskOwner
	}
	if task.FreelancerID == nil {
		return nil, ErrTaskNotAssigned
	}

	if existing, err := s.paymentRepo.FindByTaskID(taskID); err == nil {
		if existing.Status != models.PaymentStatusPending {
			return nil, ErrPaymentAlreadySettled
		}
	} else if !errors.Is(err, repository.ErrPaymentNotFound) {
		return nil, err
	}

	accepted, err := s.proposalRepo.FindAcceptedByTaskID(taskID)
	if err != nil {
		if errors.Is(err, repository.ErrProposalNotFound) {
			return nil, ErrTaskNotAssigned
		}
		return nil, err
	}
	if accepted.BidAmount.LessThan(s.minAmount) {
		return nil, ErrAmountBelowMinimum
	}

	session, err := s.processor.CreateCheckoutSession(ctx, CheckoutParams{
		TaskID:       taskID,
		TaskTitle:    task.Title,
		ClientID:     clientID,
		FreelancerID: *task.FreelancerID,
		Amount:       accepted.BidAmount,
		Currency:     s.currency,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessorUnavailable, err)
	}
	return session, nil
}

// IngestProcessorEvent verifies and applies a processor webhook delivery.
// Settled events record the payment as HELD, idempotently per task: replays
// and concurrent duplicates converge on the same row and notify only once.
func (s *PaymentService) IngestProcessorEvent(payload []byte, signature string) error {
	event, err := s.processor.VerifyEvent(payload, signature)
	if err != nil {
		return err
	}

	switch event.Kind {
	case EventCheckoutCompleted, EventPaymentSucceeded:
		return s.applySettledEvent(event)
	case EventPaymentFailed:
		log.Printf("payment failed, event %s", event.EventID)
		return nil
	default:
		return nil
	}
}

func (s *PaymentService) applySettledEvent(event *ProcessorEvent) error {
	payment, created, err := s.paymentRepo.SaveHeld(repository.HeldPaymentInput{
		TaskID:       event.TaskID,
		ClientID:     event.ClientID,
		FreelancerID: event.FreelancerID,
		SessionID:    event.SessionID,
		Amount:       models.AmountFromMinorUnits(event.AmountMinor),
		Currency:     event.Currency,
		PaymentDate:  time.Now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskNotFound):
			return ErrTaskNotFound
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrInvalidMetadata
		}
		return err
	}
	if !created {
		return nil
	}

	s.dispatcher.Enqueue("payment.held", func(ctx context.Context) error {
		task, err := s.taskRepo.FindByID(payment.TaskID, "Client", "Freelancer")
		if err != nil {
			return err
		}

		clientMsg := fmt.Sprintf("Your payment of %s %s for task %q is held in escrow",
			payment.Amount.StringFixed(2), payment.Currency, task.Title)
		if err := s.notifications.Notify(payment.ClientID, &payment.TaskID, models.NotificationPaymentReceived, clientMsg); err != nil {
			return err
		}
		if err := s.mailer.Send(task.Client.Email, "Payment received", clientMsg); err != nil {
			return err
		}

		freelancerMsg := fmt.Sprintf("Funds for task %q are held in escrow", task.Title)
		if err := s.notifications.Notify(payment.FreelancerID, &payment.TaskID, models.NotificationPaymentReceived, freelancerMsg); err != nil {
			return err
		}
		return s.mailer.Send(task.Freelancer.Email, "Payment received", freelancerMsg)
	})

	return nil
}

// ReleasePayment moves a task's escrowed payment to COMPLETED and notifies
// both parties.
func (s *PaymentService) ReleasePayment(taskID uint64) (*models.Payment, error) {
	payment, err := s.paymentRepo.Release(taskID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPaymentNotFound):
			return nil, ErrPaymentNotFound
		case errors.Is(err, repository.ErrPaymentNotHeld):
			return nil, ErrPaymentNotHeld
		}
		return nil, err
	}

	s.dispatcher.Enqueue("payment.released", func(ctx context.Context) error {
		freelancerMsg := fmt.Sprintf("Payment of %s %s for task %q has been released to you",
			payment.Amount.StringFixed(2), payment.Currency, payment.Task.Title)
		if err := s.notifications.Notify(payment.FreelancerID, &payment.TaskID, models.NotificationPaymentReleased, freelancerMsg); err != nil {
			return err
		}
		if err := s.mailer.Send(payment.Freelancer.Email, "Payment released", freelancerMsg); err != nil {
			return err
		}

		clientMsg := fmt.Sprintf("Your payment of %s %s for task %q has been released to the freelancer",
			payment.Amount.StringFixed(2), payment.Currency, payment.Task.Title)
		if err := s.notifications.Notify(payment.ClientID, &payment.TaskID, models.NotificationPaymentReleased, clientMsg); err != nil {
			return err
		}
		return s.mailer.Send(payment.Client.Email, "Payment released", clientMsg)
	})

	return payment, nil
}

// GetPayment retrieves a payment visible to the caller: payer, payee or
// admin.
func (s *PaymentService) GetPayment(userID uint64, role models.Role, paymentID uint64) (*models.Payment, error) {
	payment, err := s.paymentRepo.FindByID(paymentID, "Task", "Client", "Freelancer")
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if role != models.RoleAdmin && payment.ClientID != userID && payment.FreelancerID != userID {
		return nil, ErrNotTaskOwner
	}
	return payment, nil
}

// GetByTask retrieves the payment for a task, with the same visibility rule.
func (s *PaymentService) GetByTask(userID uint64, role models.Role, taskID uint64) (*models.Payment, error) {
	payment, err := s.paymentRepo.FindByTaskID(taskID, "Task", "Client", "Freelancer")
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if role != models.RoleAdmin && payment.ClientID != userID && payment.FreelancerID != userID {
		return nil, ErrNotTaskOwner
	}
	return payment, nil
}

// ListAll lists every payment. Admin only, enforced by the route.
func (s *PaymentService) ListAll() ([]models.Payment, error) {
	return s.paymentRepo.ListAll()
}

// ListForClient lists payments made by a client.
func (s *PaymentService) ListForClient(clientID uint64) ([]models.Payment, error) {
	return s.paymentRepo.ListByClientID(clientID)
}

// ListForFreelancer lists payments destined for a freelancer.
func (s *PaymentService) ListForFreelancer(freelancerID uint64) ([]models.Payment, error) {
	return s.paymentRepo.ListByFreelancerID(freelancerID)
}

// TotalRevenue sums all released payments.
func (s *PaymentService) TotalRevenue() (decimal.Decimal, error) {
	return s.paymentRepo.TotalCompletedRevenue()
}
