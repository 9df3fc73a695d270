package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidProjectName   = errors.New("project name cannot be empty")
	ErrDuplicateProjectName = errors.New("project name is already in use")
	ErrNoRecentProject      = errors.New("no project has been viewed yet")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projects    repository.ProjectRepository
	tasks       repository.TaskRepository
	gate        projectGate
	recentScope string
	now         func() time.Time
}

// NewProjectService creates a new ProjectService. recentScope is one of
// constants.RecentScopeGlobal or constants.RecentScopeUser.
func NewProjectService(projects repository.ProjectRepository, tasks repository.TaskRepository, evaluator *policy.Evaluator, recentScope string) *ProjectService {
	return &ProjectService{
		projects:    projects,
		tasks:       tasks,
		gate:        projectGate{projects: projects, policy: evaluator},
		recentScope: recentScope,
		now:         time.Now,
	}
}

// ProjectSummary is a project as listed for one user.
type ProjectSummary struct {
	Project     models.Project
	IsOwner     bool
	MemberCount int64
	TaskCount   int64
}

// ProjectDetail is a single project as seen by one user.
type ProjectDetail struct {
	Project models.Project
	IsOwner bool
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name             string
	ShortDescription string
	Description      string
	Finished         *time.Time
}

// UpdateProjectInput carries the fields to change; nil fields are left alone.
type UpdateProjectInput struct {
	Name             *string
	ShortDescription *string
	Description      *string
	Finished         *time.Time
	ClearFinished    bool
	IsActive         *bool
}

// ListForUser returns the projects the user owns or is a member of, owned
// projects first, each once.
func (s *ProjectService) ListForUser(ctx context.Context, p policy.Principal) ([]ProjectSummary, error) {
	if err := validatePrincipal(p); err != nil {
		return nil, err
	}

	owned, err := s.projects.ListOwnedBy(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned projects: %w", err)
	}
	memberOf, err := s.projects.ListMemberOf(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list member projects: %w", err)
	}

	seen := make(map[string]struct{}, len(owned)+len(memberOf))
	result := make([]ProjectSummary, 0, len(owned)+len(memberOf))

	for _, project := range append(owned, memberOf...) {
		if _, ok := seen[project.ID]; ok {
			continue
		}
		seen[project.ID] = struct{}{}

		memberCount, err := s.projects.CountMembers(ctx, project.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count project members: %w", err)
		}
		taskCount, err := s.tasks.CountAssigned(ctx, project.ID, p.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to count assigned tasks: %w", err)
		}

		result = append(result, ProjectSummary{
			Project:     project,
			IsOwner:     policy.IsOwner(p, &project),
			MemberCount: memberCount + 1, // the owner
			TaskCount:   taskCount,
		})
	}

	return result, nil
}

// Create creates a new active project owned by the principal.
func (s *ProjectService) Create(ctx context.Context, p policy.Principal, input CreateProjectInput) (*models.Project, error) {
	if err := validatePrincipal(p); err != nil {
		return nil, err
	}

	name := utils.NormalizeProjectName(input.Name)
	if name == "" {
		return nil, ErrInvalidProjectName
	}

	if err := s.ensureNameFree(ctx, name); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:             name,
		OwnerID:          p.UserID,
		ShortDescription: input.ShortDescription,
		Description:      input.Description,
		IsActive:         true,
		Finished:         input.Finished,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateProjectName
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetRecent returns the name of the most recently viewed project.
func (s *ProjectService) GetRecent(ctx context.Context, p policy.Principal) (string, error) {
	if err := validatePrincipal(p); err != nil {
		return "", err
	}

	visibleTo := ""
	if s.recentScope == constants.RecentScopeUser {
		visibleTo = p.UserID
	}

	project, err := s.projects.FindMostRecentlyViewed(ctx, visibleTo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoRecentProject
		}
		return "", fmt.Errorf("failed to find recent project: %w", err)
	}

	return project.Name, nil
}

// GetByName returns a project the principal can see and records the view.
func (s *ProjectService) GetByName(ctx context.Context, p policy.Principal, name string) (*ProjectDetail, error) {
	project, err := s.gate.open(ctx, p, name, policy.MemberOrOwner)
	if err != nil {
		return nil, err
	}

	viewedAt := s.now()
	if err := s.projects.TouchRecentlyViewed(ctx, project.ID, viewedAt); err != nil {
		return nil, fmt.Errorf("failed to record project view: %w", err)
	}
	project.RecentlyViewed = &viewedAt

	return &ProjectDetail{
		Project: *project,
		IsOwner: policy.IsOwner(p, project),
	}, nil
}

// Update changes the supplied fields of a project the principal owns.
func (s *ProjectService) Update(ctx context.Context, p policy.Principal, name string, input UpdateProjectInput) (*ProjectDetail, error) {
	project, err := s.gate.open(ctx, p, name, policy.OwnerOnly)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})

	if input.Name != nil {
		newName := utils.NormalizeProjectName(*input.Name)
		if newName == "" {
			return nil, ErrInvalidProjectName
		}
		if newName != project.Name {
			if err := s.ensureNameFree(ctx, newName); err != nil {
				return nil, err
			}
			fields["name"] = newName
			project.Name = newName
		}
	}
	if input.ShortDescription != nil {
		fields["short_description"] = *input.ShortDescription
		project.ShortDescription = *input.ShortDescription
	}
	if input.Description != nil {
		fields["description"] = *input.Description
		project.Description = *input.Description
	}
	if input.ClearFinished {
		fields["finished"] = nil
		project.Finished = nil
	} else if input.Finished != nil {
		fields["finished"] = *input.Finished
		project.Finished = input.Finished
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
		project.IsActive = *input.IsActive
	}

	if err := s.projects.Update(ctx, project.ID, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateProjectName
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return &ProjectDetail{
		Project: *project,
		IsOwner: policy.IsOwner(p, project),
	}, nil
}

func (s *ProjectService) ensureNameFree(ctx context.Context, name string) error {
	if _, err := s.projects.FindByName(ctx, name); err == nil {
		return ErrDuplicateProjectName
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check project name: %w", err)
	}
	return nil
}
