package dto

import (
	"time"

	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/utils"
)

const dateLayout = "2006-01-02"

// CreateTaskRequest is the payload for posting a task
type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Deadline    string `json:"deadline" binding:"required"`
	Category    string `json:"category"`
}

// ParseDeadline parses the request deadline as a calendar date.
func (r CreateTaskRequest) ParseDeadline() (time.Time, error) {
	return time.Parse(dateLayout, r.Deadline)
}

// UpdateTaskRequest is the payload for editing a task. Omitted fields are
// left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Deadline    *string `json:"deadline"`
	Category    *string `json:"category"`
}

// SubmitWorkRequest is the payload for submitting completed work
type SubmitWorkRequest struct {
	WorkURL string `json:"work_url" binding:"required,url"`
}

// CreateCategoryRequest is the payload for adding a task category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// TaskResponse is the API representation of a task
type TaskResponse struct {
	ID           uint64        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Status       string        `json:"status"`
	Deadline     string        `json:"deadline"`
	ClientID     uint64        `json:"client_id"`
	FreelancerID *uint64       `json:"freelancer_id,omitempty"`
	WorkURL      *string       `json:"work_url,omitempty"`
	Category     string        `json:"category,omitempty"`
	Client       *UserResponse `json:"client,omitempty"`
	Freelancer   *UserResponse `json:"freelancer,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ToTaskResponse converts a task model to its API representation
func ToTaskResponse(task *models.Task) TaskResponse {
	resp := TaskResponse{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       string(task.Status),
		Deadline:     task.Deadline.Format(dateLayout),
		ClientID:     task.ClientID,
		FreelancerID: task.FreelancerID,
		WorkURL:      task.WorkURL,
		CreatedAt:    task.CreatedAt,
	}
	if task.Category != nil {
		resp.Category = task.Category.Name
	}
	if task.Client.ID != 0 {
		client := ToUserResponse(&task.Client)
		resp.Client = &client
	}
	if task.Freelancer != nil {
		freelancer := ToUserResponse(task.Freelancer)
		resp.Freelancer = &freelancer
	}
	return resp
}

// ToTaskResponses converts a slice of task models
func ToTaskResponses(tasks []models.Task) []TaskResponse {
	responses := make([]TaskResponse, len(tasks))
	for i := range tasks {
		responses[i] = ToTaskResponse(&tasks[i])
	}
	return responses
}

// TaskListResponse is a paginated task listing
type TaskListResponse struct {
	Tasks      []TaskResponse           `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// CategoryResponse is the API representation of a task category
type CategoryResponse struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToCategoryResponse converts a category model
func ToCategoryResponse(category *models.TaskCategory) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
	}
}

// ToCategoryResponses converts a slice of category models
func ToCategoryResponses(categories []models.TaskCategory) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses
}
