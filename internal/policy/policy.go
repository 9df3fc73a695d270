// Package policy decides whether a principal may act on a project.
//
// The checks are layered: admins bypass everything, then the required role
// (owner only, or member or owner) is checked, and finally inactive projects
// are closed to every non-admin.
package policy

import (
	"context"
	"fmt"

	"github.com/yukikurage/project-tracker-api/internal/models"
)

// Role is the access level an operation requires.
type Role int

const (
	OwnerOnly Role = iota + 1
	MemberOrOwner
)

func (r Role) String() string {
	switch r {
	case OwnerOnly:
		return "owner_only"
	case MemberOrOwner:
		return "member_or_owner"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Reason tags a denial.
type Reason string

const (
	ReasonNotOwner        Reason = "not_owner"
	ReasonNotMember       Reason = "not_member"
	ReasonProjectInactive Reason = "project_inactive"
)

// Principal is the authenticated actor of a request.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// Decision is the outcome of an evaluation. Reason is empty when Allowed.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allow is the decision granting access.
var Allow = Decision{Allowed: true}

// Deny returns a decision refusing access for reason.
func Deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// DeniedError is returned by Authorize when access is refused.
type DeniedError struct {
	Reason Reason
}

func (e *DeniedError) Error() string {
	return "access denied: " + string(e.Reason)
}

// MembershipChecker looks up ProjectMember rows.
type MembershipChecker interface {
	IsMember(ctx context.Context, projectID, userID string) (bool, error)
}

// Observer is notified of every decision.
type Observer interface {
	ObserveDecision(role Role, decision Decision)
}

type Option func(*Evaluator)

// WithObserver registers an observer for decisions.
func WithObserver(o Observer) Option {
	return func(e *Evaluator) {
		e.observer = o
	}
}

// Evaluator applies the access rules. It holds no per-request state.
type Evaluator struct {
	members  MembershipChecker
	observer Observer
}

func NewEvaluator(members MembershipChecker, opts ...Option) *Evaluator {
	e := &Evaluator{members: members}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsOwner reports whether the principal owns the project.
func IsOwner(p Principal, project *models.Project) bool {
	return p.UserID != "" && p.UserID == project.OwnerID
}

// Evaluate decides whether p may act on project with the required role.
// A non-nil error means the decision could not be made.
func (e *Evaluator) Evaluate(ctx context.Context, p Principal, project *models.Project, role Role) (Decision, error) {
	decision, err := e.evaluate(ctx, p, project, role)
	if err != nil {
		return Decision{}, err
	}
	if e.observer != nil {
		e.observer.ObserveDecision(role, decision)
	}
	return decision, nil
}

func (e *Evaluator) evaluate(ctx context.Context, p Principal, project *models.Project, role Role) (Decision, error) {
	if project == nil {
		return Decision{}, fmt.Errorf("policy: nil project")
	}
	if role != OwnerOnly && role != MemberOrOwner {
		return Decision{}, fmt.Errorf("policy: unknown role %s", role)
	}

	// Admins act on any project, inactive ones included.
	if p.IsAdmin {
		return Allow, nil
	}

	owner := IsOwner(p, project)

	switch role {
	case OwnerOnly:
		if !owner {
			return Deny(ReasonNotOwner), nil
		}
	case MemberOrOwner:
		if !owner {
			member, err := e.members.IsMember(ctx, project.ID, p.UserID)
			if err != nil {
				return Decision{}, fmt.Errorf("policy: failed to check membership: %w", err)
			}
			if !member {
				return Deny(ReasonNotMember), nil
			}
		}
	}

	if !project.IsActive {
		return Deny(ReasonProjectInactive), nil
	}

	return Allow, nil
}

// Authorize is Evaluate folded into an error: nil when allowed, a
// *DeniedError when refused.
func (e *Evaluator) Authorize(ctx context.Context, p Principal, project *models.Project, role Role) error {
	decision, err := e.Evaluate(ctx, p, project, role)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &DeniedError{Reason: decision.Reason}
	}
	return nil
}
