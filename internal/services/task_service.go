package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrInvalidTaskID          = errors.New("task id is not valid")
	ErrTitleRequired          = errors.New("title is required")
	ErrInvalidAssignee        = errors.New("assignee id is not valid")
	ErrAssigneeNotFound       = errors.New("assignee does not exist")
	ErrTextRequired           = errors.New("text is required")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskGenerator turns free text into task suggestions.
type TaskGenerator interface {
	GenerateTasksFromText(ctx context.Context, projectName, text string) ([]GeneratedTask, error)
}

// TaskService handles task business logic
type TaskService struct {
	tasks     repository.TaskRepository
	users     repository.UserRepository
	gate      projectGate
	generator TaskGenerator
	now       func() time.Time
}

// NewTaskService creates a new TaskService. generator may be nil, in which
// case Suggest reports ErrAIServiceNotConfigured.
func NewTaskService(tasks repository.TaskRepository, projects repository.ProjectRepository, users repository.UserRepository, evaluator *policy.Evaluator, generator TaskGenerator) *TaskService {
	return &TaskService{
		tasks:     tasks,
		users:     users,
		gate:      projectGate{projects: projects, policy: evaluator},
		generator: generator,
		now:       time.Now,
	}
}

// CreateTaskInput represents input for creating a task. Empty Status and
// Priority fall back to todo and normal.
type CreateTaskInput struct {
	Title            string
	ShortDescription string
	Description      string
	AssignedTo       string
	Status           string
	Priority         string
	Deadline         *time.Time
}

// TaskBoard groups tasks by status.
type TaskBoard struct {
	Todo       []models.Task
	InProgress []models.Task
	Done       []models.Task
}

// Create adds a task to a project the principal owns.
func (s *TaskService) Create(ctx context.Context, p policy.Principal, projectName string, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if !utils.IsValidID(input.AssignedTo) {
		return nil, ErrInvalidAssignee
	}

	status := models.TaskStatusTodo
	if input.Status != "" {
		parsed, err := models.ParseTaskStatus(input.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	priority := models.TaskPriorityNormal
	if input.Priority != "" {
		parsed, err := models.ParseTaskPriority(input.Priority)
		if err != nil {
			return nil, err
		}
		priority = parsed
	}

	project, err := s.gate.open(ctx, p, projectName, policy.OwnerOnly)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, input.AssignedTo); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}

	task := &models.Task{
		ProjectID:        project.ID,
		Title:            title,
		ShortDescription: input.ShortDescription,
		Description:      input.Description,
		Deadline:         input.Deadline,
		CreatedByID:      p.UserID,
		AssignedToID:     input.AssignedTo,
		Status:           status,
		Priority:         priority,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// ListGrouped returns the principal's own tasks in a project, grouped by status.
func (s *TaskService) ListGrouped(ctx context.Context, p policy.Principal, projectName string) (*TaskBoard, error) {
	project, err := s.gate.open(ctx, p, projectName, policy.MemberOrOwner)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListAssigned(ctx, project.ID, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	board := &TaskBoard{
		Todo:       []models.Task{},
		InProgress: []models.Task{},
		Done:       []models.Task{},
	}
	for _, task := range tasks {
		switch task.Status {
		case models.TaskStatusInProgress:
			board.InProgress = append(board.InProgress, task)
		case models.TaskStatusDone:
			board.Done = append(board.Done, task)
		default:
			board.Todo = append(board.Todo, task)
		}
	}

	return board, nil
}

// ListAll returns every task of a project.
func (s *TaskService) ListAll(ctx context.Context, p policy.Principal, projectName string) ([]models.Task, error) {
	project, err := s.gate.open(ctx, p, projectName, policy.MemberOrOwner)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateStatus changes only the status of a task inside the named project.
func (s *TaskService) UpdateStatus(ctx context.Context, p policy.Principal, projectName, taskID, status string) (*models.Task, error) {
	if !utils.IsValidID(taskID) {
		return nil, ErrInvalidTaskID
	}
	newStatus, err := models.ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}

	project, err := s.gate.open(ctx, p, projectName, policy.MemberOrOwner)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.FindInProject(ctx, project.ID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.tasks.UpdateStatus(ctx, project.ID, task.ID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	task.Status = newStatus

	return task, nil
}

// Suggest asks the generator for task drafts for a project the principal
// owns. Nothing is persisted.
func (s *TaskService) Suggest(ctx context.Context, p policy.Principal, projectName, text string) ([]GeneratedTask, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrTextRequired
	}

	project, err := s.gate.open(ctx, p, projectName, policy.OwnerOnly)
	if err != nil {
		return nil, err
	}

	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.generator.GenerateTasksFromText(ctx, project.Name, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := s.now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		aiTask.Title = strings.TrimSpace(aiTask.Title)
		if aiTask.Title == "" {
			continue
		}
		if !models.TaskPriority(aiTask.Priority).Valid() {
			aiTask.Priority = string(models.TaskPriorityNormal)
		}
		if aiTask.Deadline != nil && aiTask.Deadline.Before(cutoff) {
			aiTask.Deadline = nil
		}
		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}
