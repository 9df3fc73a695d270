package repository

import (
	"context"

	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindInProject finds a task by ID within a project
func (r *GormTaskRepository) FindInProject(ctx context.Context, projectID, taskID string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Scopes(database.InProject(projectID)).
		Where("id = ?", taskID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByProject lists every task of a project
func (r *GormTaskRepository) ListByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Scopes(database.InProject(projectID)).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListAssigned lists tasks of a project assigned to a user
func (r *GormTaskRepository) ListAssigned(ctx context.Context, projectID, userID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Scopes(database.InProject(projectID), database.AssignedTo(userID)).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountAssigned counts tasks of a project assigned to a user
func (r *GormTaskRepository) CountAssigned(ctx context.Context, projectID, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(database.InProject(projectID), database.AssignedTo(userID)).
		Count(&count).Error
	return count, err
}

// UpdateStatus writes the status column only, leaving updated_at and every
// other field untouched.
func (r *GormTaskRepository) UpdateStatus(ctx context.Context, projectID, taskID string, status models.TaskStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(database.InProject(projectID)).
		Where("id = ?", taskID).
		UpdateColumn("status", status).Error
}
