package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

var badRequestErrors = []error{
	services.ErrInvalidPrincipal,
	services.ErrProjectNameRequired,
	services.ErrInvalidProjectName,
	services.ErrInvalidTaskID,
	services.ErrTitleRequired,
	services.ErrInvalidAssignee,
	services.ErrAssigneeNotFound,
	services.ErrTextRequired,
	services.ErrInvalidUserID,
	services.ErrCannotAddOwner,
	services.ErrSearchQueryRequired,
	services.ErrInvalidUsername,
	services.ErrUsernameRequired,
	services.ErrEmailRequired,
	services.ErrAINoTasksGenerated,
	services.ErrAINoValidTasks,
	models.ErrInvalidTaskStatus,
	models.ErrInvalidTaskPriority,
	utils.ErrInvalidDate,
}

var notFoundErrors = []error{
	services.ErrProjectNotFound,
	services.ErrTaskNotFound,
	services.ErrNoRecentProject,
	services.ErrUserNotFound,
	services.ErrMemberNotFound,
	services.ErrOwnerNotFound,
}

var conflictErrors = []error{
	services.ErrDuplicateProjectName,
	services.ErrUsernameTaken,
	services.ErrAlreadyMember,
}

var clientMessages = map[error]string{
	services.ErrProjectNotFound:      "Project not found.",
	services.ErrTaskNotFound:         "Task not found.",
	services.ErrNoRecentProject:      "No project has been viewed yet.",
	services.ErrUserNotFound:         "User not found.",
	services.ErrDuplicateProjectName: "This project name is already taken.",
	services.ErrUsernameTaken:        "This username is already taken.",
	services.ErrAlreadyMember:        "This user is already a member.",
	services.ErrInvalidCredentials:   "Wrong username or password.",
	services.ErrInvalidPrincipal:     "No userid was presented.",
	utils.ErrInvalidDate:             "Dates must look like 2006-01-02.",
}

var deniedMessages = map[policy.Reason]string{
	policy.ReasonNotOwner:        "Only the project owner can do this.",
	policy.ReasonNotMember:       "You are not a member of this project.",
	policy.ReasonProjectInactive: "This project is inactive.",
}

// respondError maps service errors to the response envelope.
func respondError(c *gin.Context, err error) {
	var denied *policy.DeniedError
	switch {
	case errors.As(err, &denied):
		apierrors.Forbidden(c, deniedMessages[denied.Reason], err.Error(), string(denied.Reason))
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters.", constants.MinPasswordLength), err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, clientMessage(err), err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "", err.Error())
	case isAny(err, badRequestErrors):
		apierrors.BadRequest(c, clientMessage(err), err.Error())
	case isAny(err, notFoundErrors):
		apierrors.NotFound(c, clientMessage(err), err.Error())
	case isAny(err, conflictErrors):
		apierrors.Conflict(c, clientMessage(err), err.Error())
	default:
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		apierrors.InternalError(c, err)
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func clientMessage(err error) string {
	for target, msg := range clientMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return ""
}

// currentPrincipal returns the caller, writing a 401 when RequireAuth did
// not run.
func currentPrincipal(c *gin.Context) (policy.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "", "Not authenticated")
		return policy.Principal{}, false
	}
	return p, true
}

func invalidBody(c *gin.Context, err error) {
	apierrors.BadRequest(c, "Invalid request body.", err.Error())
}
