package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// FindByName finds a project by name
func (r *GormProjectRepository) FindByName(ctx context.Context, name string) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListOwnedBy lists projects owned by a user
func (r *GormProjectRepository) ListOwnedBy(ctx context.Context, userID string) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListMemberOf lists projects where the user has a membership row
func (r *GormProjectRepository) ListMemberOf(ctx context.Context, userID string) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", userID).
		Order("projects.created_at ASC, projects.id ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// FindMostRecentlyViewed returns the most recently viewed project
func (r *GormProjectRepository) FindMostRecentlyViewed(ctx context.Context, visibleTo string) (*models.Project, error) {
	query := r.db.WithContext(ctx).Where("recently_viewed IS NOT NULL")

	if visibleTo != "" {
		memberOf := r.db.Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", visibleTo)
		query = query.Where("(owner_id = ? OR id IN (?))", visibleTo, memberOf)
	}

	var project models.Project
	if err := query.Order("recently_viewed DESC").First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// TouchRecentlyViewed records a view without bumping updated_at
func (r *GormProjectRepository) TouchRecentlyViewed(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", id).
		UpdateColumn("recently_viewed", at).Error
}

// Update writes only the given columns
func (r *GormProjectRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// CountMembers counts membership rows of a project
func (r *GormProjectRepository) CountMembers(ctx context.Context, projectID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProjectMember{}).
		Scopes(database.InProject(projectID)).
		Count(&count).Error
	return count, err
}

// IsMember reports whether a membership row exists for the pair
func (r *GormProjectRepository) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	var member models.ProjectMember
	err := r.db.WithContext(ctx).
		Scopes(database.InProject(projectID)).
		Where("user_id = ?", userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(ctx context.Context, member *models.ProjectMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// RemoveMember removes membership rows for the pair
func (r *GormProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(database.InProject(projectID)).
		Where("user_id = ?", userID).
		Delete(&models.ProjectMember{})
	return result.RowsAffected, result.Error
}

// ListMembers lists membership rows of a project with their users
func (r *GormProjectRepository) ListMembers(ctx context.Context, projectID string) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.WithContext(ctx).
		Preload("User").
		Scopes(database.InProject(projectID)).
		Order("created_at ASC, id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
