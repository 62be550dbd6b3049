package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// EventKind classifies processor webhook events the marketplace reacts to.
type EventKind string

const (
	// EventCheckoutCompleted signals that a checkout session settled
	EventCheckoutCompleted EventKind = "checkout_completed"
	// EventPaymentSucceeded signals a successful charge outside checkout
	EventPaymentSucceeded EventKind = "payment_succeeded"
	// EventPaymentFailed signals a failed charge attempt
	EventPaymentFailed EventKind = "payment_failed"
	// EventIgnored covers event types the marketplace does not act on
	EventIgnored EventKind = "ignored"
)

var (
	// ErrInvalidSignature is returned when a webhook payload fails
	// signature verification
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrInvalidMetadata is returned when a settled event lacks the
	// metadata needed to attribute the payment
	ErrInvalidMetadata = errors.New("invalid payment metadata")
)

// CheckoutParams describes the hosted checkout session to create for a task.
type CheckoutParams struct {
	TaskID       uint64
	TaskTitle    string
	ClientID     uint64
	FreelancerID uint64
	Amount       decimal.Decimal
	Currency     string
}

// CheckoutSession is the processor-hosted page the client is redirected to.
type CheckoutSession struct {
	SessionID   string
	CheckoutURL string
}

// ProcessorEvent is a verified, normalized webhook event.
type ProcessorEvent struct {
	Kind      EventKind
	EventID   string
	SessionID string
	// Metadata round-trips the attribution written at session creation.
	// Empty on EventIgnored and EventPaymentFailed events.
	TaskID       uint64
	ClientID     uint64
	FreelancerID uint64
	// AmountMinor is the settled amount in the currency's minor units.
	AmountMinor int64
	Currency    string
}

// PaymentProcessor abstracts the external payment provider.
type PaymentProcessor interface {
	// CreateCheckoutSession opens a hosted checkout session carrying the
	// task attribution in its metadata.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)

	// VerifyEvent authenticates a raw webhook delivery and normalizes it.
	// Returns ErrInvalidSignature when the payload cannot be trusted and
	// ErrInvalidMetadata when a settled event is missing attribution.
	VerifyEvent(payload []byte, signature string) (*ProcessorEvent, error)
}
