package dto

import (
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// TaskDTO represents a task in API responses. Dates use the yyyy-MM-dd form.
type TaskDTO struct {
	ID               string              `json:"id"`
	Project          string              `json:"project"`
	Title            string              `json:"title"`
	ShortDescription string              `json:"shortDescription"`
	Description      string              `json:"description"`
	Status           models.TaskStatus   `json:"status"`
	Priority         models.TaskPriority `json:"priority"`
	Deadline         string              `json:"deadline"`
	CreatedBy        string              `json:"createdBy"`
	AssignedTo       string              `json:"assignedTo"`
	CreatedAt        string              `json:"createdAt"`
}

// TaskBoardDTO groups tasks by status.
type TaskBoardDTO struct {
	Todos   []TaskDTO `json:"todos"`
	Inprogs []TaskDTO `json:"inprogs"`
	Dones   []TaskDTO `json:"dones"`
}

// SuggestedTaskDTO is an AI task draft.
type SuggestedTaskDTO struct {
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	Description      string `json:"description"`
	Priority         string `json:"priority"`
	Deadline         string `json:"deadline"`
}

// CreateTaskRequest is the body of a task creation.
type CreateTaskRequest struct {
	Title            string  `json:"title" binding:"required"`
	ShortDescription string  `json:"shortDescription"`
	Description      string  `json:"description"`
	AssignedTo       string  `json:"assignedTo" binding:"required"`
	Status           string  `json:"status"`
	Priority         string  `json:"priority"`
	Deadline         *string `json:"deadline"`
}

// UpdateTaskStatusRequest is the body of a status change.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SuggestTasksRequest is the body of an AI suggestion request.
type SuggestTasksRequest struct {
	Text string `json:"text" binding:"required"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task *models.Task) TaskDTO {
	return TaskDTO{
		ID:               task.ID,
		Project:          task.ProjectID,
		Title:            task.Title,
		ShortDescription: task.ShortDescription,
		Description:      task.Description,
		Status:           task.Status,
		Priority:         task.Priority,
		Deadline:         utils.FormatDate(task.Deadline, constants.TaskDateLayout),
		CreatedBy:        task.CreatedByID,
		AssignedTo:       task.AssignedToID,
		CreatedAt:        utils.FormatDate(&task.CreatedAt, constants.TaskDateLayout),
	}
}

// ToTaskDTOs converts a slice of tasks, never returning nil.
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	result := make([]TaskDTO, len(tasks))
	for i := range tasks {
		result[i] = ToTaskDTO(&tasks[i])
	}
	return result
}

// ToTaskBoardDTO converts a grouped task board.
func ToTaskBoardDTO(board *services.TaskBoard) TaskBoardDTO {
	return TaskBoardDTO{
		Todos:   ToTaskDTOs(board.Todo),
		Inprogs: ToTaskDTOs(board.InProgress),
		Dones:   ToTaskDTOs(board.Done),
	}
}

func ToSuggestedTaskDTOs(tasks []services.GeneratedTask) []SuggestedTaskDTO {
	result := make([]SuggestedTaskDTO, len(tasks))
	for i, t := range tasks {
		result[i] = SuggestedTaskDTO{
			Title:            t.Title,
			ShortDescription: t.ShortDescription,
			Description:      t.Description,
			Priority:         t.Priority,
			Deadline:         utils.FormatDate(t.Deadline, constants.TaskDateLayout),
		}
	}
	return result
}
