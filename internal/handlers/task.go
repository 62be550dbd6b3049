package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/marketplace-api/internal/dto"
	apierrors "github.com/taskflow/marketplace-api/internal/errors"
	"github.com/taskflow/marketplace-api/internal/middleware"
	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/services"
	"github.com/taskflow/marketplace-api/internal/utils"
)

// TaskHandler handles task endpoints
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// CreateTask handles POST /tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	deadline, err := req.ParseDeadline()
	if err != nil {
		apierrors.BadRequest(c, "deadline must be formatted as YYYY-MM-DD")
		return
	}

	task, err := h.taskService.CreateTask(middleware.GetUserID(c), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    deadline,
		Category:    req.Category,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskResponse(task))
}

// GetTask handles GET /tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(id)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

// ListTasks handles GET /tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(params)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks: dto.ToTaskResponses(tasks),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// ListMyTasks handles GET /tasks/mine. Clients see tasks they posted,
// freelancers the tasks assigned to them.
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var tasks []models.Task
	var err error
	if middleware.GetUserRole(c) == models.RoleFreelancer {
		tasks, err = h.taskService.ListByFreelancer(userID)
	} else {
		tasks, err = h.taskService.ListByClient(userID)
	}
	if err != nil {
		h.respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponses(tasks))
}

// UpdateTask handles PATCH /tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Deadline != nil {
		deadline, err := (dto.CreateTaskRequest{Deadline: *req.Deadline}).ParseDeadline()
		if err != nil {
			apierrors.BadRequest(c, "deadline must be formatted as YYYY-MM-DD")
			return
		}
		input.Deadline = &deadline
	}

	task, err := h.taskService.UpdateTask(middleware.GetUserID(c), id, input)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

// DeleteTask handles DELETE /tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := h.taskService.DeleteTask(middleware.GetUserID(c), middleware.GetUserRole(c), id)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitWork handles POST /tasks/:id/submit
func (h *TaskHandler) SubmitWork(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.SubmitWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.SubmitWork(middleware.GetUserID(c), id, req.WorkURL)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

// CompleteTask handles POST /tasks/:id/complete
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.CompleteTask(middleware.GetUserID(c), id)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

// CountTasks handles GET /tasks/stats
func (h *TaskHandler) CountTasks(c *gin.Context) {
	var status *models.TaskStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := models.ParseTaskStatus(raw)
		if !ok {
			apierrors.BadRequest(c, "invalid status")
			return
		}
		status = &parsed
	}

	count, err := h.taskService.CountByStatus(status)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// CreateCategory handles POST /categories
func (h *TaskHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	category, err := h.taskService.CreateCategory(req.Name, req.Description)
	if err != nil {
		apierrors.Conflict(c, "category already exists")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCategoryResponse(category))
}

// ListCategories handles GET /categories
func (h *TaskHandler) ListCategories(c *gin.Context) {
	categories, err := h.taskService.ListCategories()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryResponses(categories))
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrCategoryNotFound):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidDeadline):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotTaskOwner), errors.Is(err, services.ErrNotAssignedFreelancer):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTaskNotOpen), errors.Is(err, services.ErrTaskNotInProgress):
		apierrors.InvalidState(c, err.Error())
	case errors.Is(err, services.ErrPaymentReleaseFailed):
		apierrors.ExternalFailure(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
