package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/taskflow/marketplace-api/internal/models"
)

// SubmitProposalRequest is the payload for bidding on a task
type SubmitProposalRequest struct {
	TaskID      uint64          `json:"task_id" binding:"required"`
	CoverLetter string          `json:"cover_letter"`
	BidAmount   decimal.Decimal `json:"bid_amount" binding:"required"`
}

// ProposalResponse is the API representation of a proposal
type ProposalResponse struct {
	ID           uint64        `json:"id"`
	CoverLetter  string        `json:"cover_letter"`
	BidAmount    string        `json:"bid_amount"`
	Status       string        `json:"status"`
	SubmittedAt  time.Time     `json:"submitted_at"`
	TaskID       uint64        `json:"task_id"`
	FreelancerID uint64        `json:"freelancer_id"`
	Task         *TaskResponse `json:"task,omitempty"`
	Freelancer   *UserResponse `json:"freelancer,omitempty"`
}

// ToProposalResponse converts a proposal model to its API representation
func ToProposalResponse(proposal *models.Proposal) ProposalResponse {
	resp := ProposalResponse{
		ID:           proposal.ID,
		CoverLetter:  proposal.CoverLetter,
		BidAmount:    proposal.BidAmount.StringFixed(2),
		Status:       string(proposal.Status),
		SubmittedAt:  proposal.SubmittedAt,
		TaskID:       proposal.TaskID,
		FreelancerID: proposal.FreelancerID,
	}
	if proposal.Task.ID != 0 {
		task := ToTaskResponse(&proposal.Task)
		resp.Task = &task
	}
	if proposal.Freelancer.ID != 0 {
		freelancer := ToUserResponse(&proposal.Freelancer)
		resp.Freelancer = &freelancer
	}
	return resp
}

// ToProposalResponses converts a slice of proposal models
func ToProposalResponses(proposals []models.Proposal) []ProposalResponse {
	responses := make([]ProposalResponse, len(proposals))
	for i := range proposals {
		responses[i] = ToProposalResponse(&proposals[i])
	}
	return responses
}
