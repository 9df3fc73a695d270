package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidPrincipal    = errors.New("no valid user id for the request")
	ErrProjectNameRequired = errors.New("project name is required")
	ErrProjectNotFound     = errors.New("project not found")
)

// projectGate resolves a project by name and applies the access policy,
// so every project-scoped operation is checked the same way.
type projectGate struct {
	projects repository.ProjectRepository
	policy   *policy.Evaluator
}

func (g projectGate) open(ctx context.Context, p policy.Principal, name string, role policy.Role) (*models.Project, error) {
	if err := validatePrincipal(p); err != nil {
		return nil, err
	}

	normalized := utils.NormalizeProjectName(name)
	if normalized == "" {
		return nil, ErrProjectNameRequired
	}

	project, err := g.projects.FindByName(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if err := g.policy.Authorize(ctx, p, project, role); err != nil {
		return nil, err
	}
	return project, nil
}

func validatePrincipal(p policy.Principal) error {
	if !utils.IsValidID(p.UserID) {
		return ErrInvalidPrincipal
	}
	return nil
}
