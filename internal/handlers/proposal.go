package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/marketplace-api/internal/dto"
	apierrors "github.com/taskflow/marketplace-api/internal/errors"
	"github.com/taskflow/marketplace-api/internal/middleware"
	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/services"
)

// ProposalHandler handles proposal endpoints
type ProposalHandler struct {
	proposalService *services.ProposalService
}

// NewProposalHandler creates a new proposal handler
func NewProposalHandler(proposalService *services.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService}
}

// Submit handles POST /proposals
func (h *ProposalHandler) Submit(c *gin.Context) {
	var req dto.SubmitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	proposal, err := h.proposalService.Submit(middleware.GetUserID(c), req.TaskID, req.CoverLetter, req.BidAmount)
	if err != nil {
		h.respondProposalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToProposalResponse(proposal))
}

// Get handles GET /proposals/:id
func (h *ProposalHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	proposal, err := h.proposalService.GetProposal(middleware.GetUserID(c), middleware.GetUserRole(c), id)
	if err != nil {
		h.respondProposalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProposalResponse(proposal))
}

// Accept handles POST /proposals/:id/accept
func (h *ProposalHandler) Accept(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	proposal, err := h.proposalService.Accept(middleware.GetUserID(c), id)
	if err != nil {
		h.respondProposalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProposalResponse(proposal))
}

// Reject handles POST /proposals/:id/reject
func (h *ProposalHandler) Reject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	proposal, err := h.proposalService.Reject(middleware.GetUserID(c), id)
	if err != nil {
		h.respondProposalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProposalResponse(proposal))
}

// ListByTask handles GET /tasks/:id/proposals
func (h *ProposalHandler) ListByTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	proposals, err := h.proposalService.ListByTask(middleware.GetUserID(c), middleware.GetUserRole(c), taskID)
	if err != nil {
		h.respondProposalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProposalResponses(proposals))
}

// ListMine handles GET /proposals/mine. Freelancers see their own
// proposals, clients the proposals received across their tasks.
func (h *ProposalHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var proposals []models.Proposal
	var err error
	if middleware.GetUserRole(c) == models.RoleClient {
		proposals, err = h.proposalService.ListForClient(userID)
	} else {
		proposals, err = h.proposalService.ListMine(userID)
	}
	if err != nil {
		h.respondProposalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProposalResponses(proposals))
}

// Count handles GET /proposals/stats
func (h *ProposalHandler) Count(c *gin.Context) {
	var status *models.ProposalStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := models.ParseProposalStatus(raw)
		if !ok {
			apierrors.BadRequest(c, "invalid status")
			return
		}
		status = &parsed
	}

	count, err := h.proposalService.CountByStatus(status)
	if err != nil {
		h.respondProposalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// Earnings handles GET /proposals/earnings?days=30
func (h *ProposalHandler) Earnings(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 {
		apierrors.BadRequest(c, "invalid days")
		return
	}

	since := time.Now().AddDate(0, 0, -days)
	total, err := h.proposalService.EarningsSince(middleware.GetUserID(c), since)
	if err != nil {
		h.respondProposalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"earnings": total.StringFixed(2), "days": days})
}

func (h *ProposalHandler) respondProposalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProposalNotFound), errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidBid):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotTaskOwner), errors.Is(err, services.ErrOwnTask):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrProposalNotPending), errors.Is(err, services.ErrTaskNotOpen):
		apierrors.InvalidState(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
