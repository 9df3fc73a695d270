package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/auth"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"gorm.io/gorm"
)

const (
	msgNoAuthHeader = "No auth header was presented."
	msgInvalidToken = "Invalid access token."
	bearerPrefix    = "Bearer "
)

// UserFinder loads the user behind a token or session.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// RequireAuth resolves the caller from a bearer token, falling back to the
// session cookie, and stores a policy.Principal in the context.
func RequireAuth(tokens *auth.TokenManager, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := resolveUserID(c, tokens)
		if !ok {
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.Forbidden(c, msgInvalidToken, "user no longer exists", "")
				return
			}
			apierrors.InternalError(c, err)
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyPrincipal, policy.Principal{UserID: user.ID, IsAdmin: user.IsAdmin})
		c.Next()
	}
}

// resolveUserID writes the error response itself when it returns false.
func resolveUserID(c *gin.Context, tokens *auth.TokenManager) (string, bool) {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, bearerPrefix) {
		claims, err := tokens.ValidateAccessToken(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err != nil {
			apierrors.Forbidden(c, msgInvalidToken, err.Error(), "")
			return "", false
		}
		return claims.UserID, true
	}

	session := sessions.Default(c)
	if userID, ok := session.Get(constants.ContextKeyUserID).(string); ok && userID != "" {
		return userID, true
	}

	apierrors.Unauthorized(c, apierrors.MsgUnauthorized, msgNoAuthHeader)
	return "", false
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

// GetPrincipal retrieves the caller set by RequireAuth.
func GetPrincipal(c *gin.Context) (policy.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return policy.Principal{}, false
	}
	p, ok := value.(policy.Principal)
	return p, ok
}
