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
	ErrInvalidUserID  = errors.New("user id is not valid")
	ErrCannotAddOwner = errors.New("the project owner cannot be added as a member")
	ErrAlreadyMember  = errors.New("user is already a member of the project")
	ErrMemberNotFound = errors.New("user is not a member of the project")
	ErrOwnerNotFound  = errors.New("project owner does not exist")
)

// Member is one row of a project's member list.
type Member struct {
	ID       string
	Username string
	IsOwner  bool
}

// MemberService manages project membership.
type MemberService struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
	gate     projectGate
}

func NewMemberService(projects repository.ProjectRepository, users repository.UserRepository, evaluator *policy.Evaluator) *MemberService {
	return &MemberService{
		projects: projects,
		users:    users,
		gate:     projectGate{projects: projects, policy: evaluator},
	}
}

// ListMembers returns the project's members followed by its owner.
func (s *MemberService) ListMembers(ctx context.Context, p policy.Principal, projectName string) ([]Member, error) {
	project, err := s.gate.open(ctx, p, projectName, policy.OwnerOnly)
	if err != nil {
		return nil, err
	}

	rows, err := s.projects.ListMembers(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	owner, err := s.users.FindByID(ctx, project.OwnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to find project owner: %w", err)
	}

	members := make([]Member, 0, len(rows)+1)
	for _, row := range rows {
		members = append(members, Member{ID: row.User.ID, Username: row.User.Username})
	}
	members = append(members, Member{ID: owner.ID, Username: owner.Username, IsOwner: true})

	return members, nil
}

// AddMember grants userID membership of a project the principal owns.
func (s *MemberService) AddMember(ctx context.Context, p policy.Principal, projectName, userID string) (*models.ProjectMember, error) {
	if !utils.IsValidID(userID) {
		return nil, ErrInvalidUserID
	}

	project, err := s.gate.open(ctx, p, projectName, policy.OwnerOnly)
	if err != nil {
		return nil, err
	}

	if userID == project.OwnerID {
		return nil, ErrCannotAddOwner
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	isMember, err := s.projects.IsMember(ctx, project.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	member := &models.ProjectMember{
		ProjectID: project.ID,
		UserID:    userID,
	}
	if err := s.projects.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// RemoveMember revokes userID's membership of a project the principal owns.
func (s *MemberService) RemoveMember(ctx context.Context, p policy.Principal, projectName, userID string) error {
	if !utils.IsValidID(userID) {
		return ErrInvalidUserID
	}

	project, err := s.gate.open(ctx, p, projectName, policy.OwnerOnly)
	if err != nil {
		return err
	}

	removed, err := s.projects.RemoveMember(ctx, project.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if removed == 0 {
		return ErrMemberNotFound
	}
	return nil
}
