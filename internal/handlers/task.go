package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// ListTasks returns the caller's tasks in a project grouped by status
func (h *TaskHandler) ListTasks(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	board, err := h.taskService.ListGrouped(c.Request.Context(), p, c.Param("projectname"))
	if err != nil {
		respondError(c, err)
		return
	}

	grouped := dto.ToTaskBoardDTO(board)
	apierrors.Respond(c, http.StatusOK, gin.H{
		"todos":   grouped.Todos,
		"inprogs": grouped.Inprogs,
		"dones":   grouped.Dones,
	}, "")
}

// ListAllTasks returns every task of a project
func (h *TaskHandler) ListAllTasks(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListAll(c.Request.Context(), p, c.Param("projectname"))
	if err != nil {
		respondError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)}, "")
}

// CreateTask creates a new task in a project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	deadline, err := utils.ParseDate(req.Deadline)
	if err != nil {
		respondError(c, err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), p, c.Param("projectname"), services.CreateTaskInput{
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		AssignedTo:       req.AssignedTo,
		Status:           req.Status,
		Priority:         req.Priority,
		Deadline:         deadline,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusCreated, gin.H{"task": dto.ToTaskDTO(task)}, "Task created.")
}

// UpdateTaskStatus changes the status of one task
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	task, err := h.taskService.UpdateStatus(c.Request.Context(), p, c.Param("projectname"), c.Param("taskid"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, gin.H{"task": dto.ToTaskDTO(task)}, "Task status updated.")
}

// SuggestTasks drafts tasks from free text without saving them
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req dto.SuggestTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	tasks, err := h.taskService.Suggest(c.Request.Context(), p, c.Param("projectname"), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, gin.H{"tasks": dto.ToSuggestedTaskDTOs(tasks)}, "")
}
