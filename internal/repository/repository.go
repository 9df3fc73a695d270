package repository

import (
	"context"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// Search returns users matching query case-insensitively, ordered by username
	Search(ctx context.Context, query string, usernameOnly bool, limit int) ([]models.User, error)

	// UpdateUsername renames a user
	UpdateUsername(ctx context.Context, id, username string) error

	// SetAdmin grants or revokes the admin flag
	SetAdmin(ctx context.Context, id string, isAdmin bool) error
}

// ProjectRepository defines the interface for project and membership data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// FindByName finds a project by its normalized name
	FindByName(ctx context.Context, name string) (*models.Project, error)

	// ListOwnedBy lists projects owned by a user
	ListOwnedBy(ctx context.Context, userID string) ([]models.Project, error)

	// ListMemberOf lists projects where a user has a membership row
	ListMemberOf(ctx context.Context, userID string) ([]models.Project, error)

	// FindMostRecentlyViewed returns the project with the latest view time.
	// An empty visibleTo searches every project.
	FindMostRecentlyViewed(ctx context.Context, visibleTo string) (*models.Project, error)

	// TouchRecentlyViewed records a view of the project
	TouchRecentlyViewed(ctx context.Context, id string, at time.Time) error

	// Update writes only the given columns
	Update(ctx context.Context, id string, fields map[string]interface{}) error

	// CountMembers counts membership rows, excluding the owner
	CountMembers(ctx context.Context, projectID string) (int64, error)

	// IsMember reports whether a membership row exists
	IsMember(ctx context.Context, projectID, userID string) (bool, error)

	// AddMember adds a member to a project
	AddMember(ctx context.Context, member *models.ProjectMember) error

	// RemoveMember deletes membership rows and returns how many were removed
	RemoveMember(ctx context.Context, projectID, userID string) (int64, error)

	// ListMembers lists membership rows with their users
	ListMembers(ctx context.Context, projectID string) ([]models.ProjectMember, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindInProject finds a task by ID within a project
	FindInProject(ctx context.Context, projectID, taskID string) (*models.Task, error)

	// ListByProject lists every task of a project
	ListByProject(ctx context.Context, projectID string) ([]models.Task, error)

	// ListAssigned lists tasks of a project assigned to a user
	ListAssigned(ctx context.Context, projectID, userID string) ([]models.Task, error)

	// CountAssigned counts tasks of a project assigned to a user
	CountAssigned(ctx context.Context, projectID, userID string) (int64, error)

	// UpdateStatus writes the status column only
	UpdateStatus(ctx context.Context, projectID, taskID string, status models.TaskStatus) error
}
