package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/taskflow/marketplace-api/internal/models"
)

// StripeProcessor implements PaymentProcessor against the Stripe API.
type StripeProcessor struct {
	webhookSecret string
	successURL    string
	cancelURL     string
}

// NewStripeProcessor configures the Stripe client and returns a processor.
func NewStripeProcessor(secretKey, webhookSecret, successURL, cancelURL string) *StripeProcessor {
	stripe.Key = secretKey
	return &StripeProcessor{
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
	}
}

func (s *StripeProcessor) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	sessionParams := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(params.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Task #%d: %s", params.TaskID, params.TaskTitle)),
					},
					UnitAmount: stripe.Int64(models.AmountToMinorUnits(params.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
	}
	sessionParams.Context = ctx
	sessionParams.AddMetadata("task_id", strconv.FormatUint(params.TaskID, 10))
	sessionParams.AddMetadata("client_id", strconv.FormatUint(params.ClientID, 10))
	sessionParams.AddMetadata("freelancer_id", strconv.FormatUint(params.FreelancerID, 10))

	created, err := session.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{SessionID: created.ID, CheckoutURL: created.URL}, nil
}

func (s *StripeProcessor) VerifyEvent(payload []byte, signature string) (*ProcessorEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, ErrInvalidMetadata
		}
		return settledEvent(EventCheckoutCompleted, event.ID, cs.ID, cs.Metadata, cs.AmountTotal, string(cs.Currency))

	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, ErrInvalidMetadata
		}
		return settledEvent(EventPaymentSucceeded, event.ID, pi.ID, pi.Metadata, pi.Amount, string(pi.Currency))

	case "payment_intent.payment_failed":
		return &ProcessorEvent{Kind: EventPaymentFailed, EventID: event.ID}, nil

	default:
		return &ProcessorEvent{Kind: EventIgnored, EventID: event.ID}, nil
	}
}

func settledEvent(kind EventKind, eventID, sessionID string, metadata map[string]string, amountMinor int64, currency string) (*ProcessorEvent, error) {
	taskID, err1 := strconv.ParseUint(metadata["task_id"], 10, 64)
	clientID, err2 := strconv.ParseUint(metadata["client_id"], 10, 64)
	freelancerID, err3 := strconv.ParseUint(metadata["freelancer_id"], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, ErrInvalidMetadata
	}

	return &ProcessorEvent{
		Kind:         kind,
		EventID:      eventID,
		SessionID:    sessionID,
		TaskID:       taskID,
		ClientID:     clientID,
		FreelancerID: freelancerID,
		AmountMinor:  amountMinor,
		Currency:     currency,
	}, nil
}
