package dto

import (
	"github.com/taskflow/marketplace-api/internal/models"
)

// CheckoutResponse carries the hosted checkout session for the client to
// complete
type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// PaymentResponse is the API representation of a payment
type PaymentResponse struct {
	ID           uint64        `json:"id"`
	Amount       string        `json:"amount"`
	Currency     string        `json:"currency"`
	Status       string        `json:"status"`
	PaymentDate  string        `json:"payment_date"`
	TaskID       uint64        `json:"task_id"`
	ClientID     uint64        `json:"client_id"`
	FreelancerID uint64        `json:"freelancer_id"`
	Task         *TaskResponse `json:"task,omitempty"`
}

// ToPaymentResponse converts a payment model to its API representation
func ToPaymentResponse(payment *models.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:           payment.ID,
		Amount:       payment.Amount.StringFixed(2),
		Currency:     payment.Currency,
		Status:       string(payment.Status),
		PaymentDate:  payment.PaymentDate.Format(dateLayout),
		TaskID:       payment.TaskID,
		ClientID:     payment.ClientID,
		FreelancerID: payment.FreelancerID,
	}
	if payment.Task.ID != 0 {
		task := ToTaskResponse(&payment.Task)
		resp.Task = &task
	}
	return resp
}

// ToPaymentResponses converts a slice of payment models
func ToPaymentResponses(payments []models.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}
