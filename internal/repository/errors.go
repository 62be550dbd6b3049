package repository

import "errors"

var (
	// ErrTaskNotFound is returned when a referenced task does not exist
	ErrTaskNotFound = errors.New("task not found")

	// ErrUserNotFound is returned when a referenced user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrProposalNotFound is returned when a proposal does not exist
	ErrProposalNotFound = errors.New("proposal not found")

	// ErrProposalNotPending is returned when an accept or reject targets a
	// proposal that already left PENDING
	ErrProposalNotPending = errors.New("proposal is not pending")

	// ErrTaskNotOpen is returned when an accept targets a task that is no
	// longer open
	ErrTaskNotOpen = errors.New("task is not open")

	// ErrTaskNotInProgress is returned when a completion targets a task that
	// is not in progress
	ErrTaskNotInProgress = errors.New("task is not in progress")

	// ErrPaymentNotFound is returned when a payment does not exist
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPaymentNotHeld is returned when a release targets a payment that is
	// not in escrow
	ErrPaymentNotHeld = errors.New("payment is not held")

	// ErrNotificationNotFound is returned when a notification does not exist
	// or belongs to another user
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrCategoryNotFound is returned when a task category does not exist
	ErrCategoryNotFound = errors.New("task category not found")
)
