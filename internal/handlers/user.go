package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetProfile returns the authenticated user.
func (h *UserHandler) GetProfile(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, gin.H{"user": dto.ToProfileDTO(user)}, "")
}

// SearchUsers finds users by username, or by username or email.
func (h *UserHandler) SearchUsers(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	usernameOnly, err := strconv.ParseBool(c.Param("onlyUsername"))
	if err != nil {
		apierrors.BadRequest(c, "onlyUsername must be true or false.", err.Error())
		return
	}

	users, err := h.users.Search(c.Request.Context(), p, c.Param("search"), usernameOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, gin.H{"users": dto.ToUserDTOs(users)}, "")
}

// UpdateUsername renames the authenticated user.
func (h *UserHandler) UpdateUsername(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	user, err := h.users.UpdateUsername(c.Request.Context(), p, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, gin.H{"user": dto.ToProfileDTO(user)}, "Username updated.")
}
