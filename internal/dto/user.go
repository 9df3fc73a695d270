package dto

import (
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// ProfileDTO is the caller's own user record.
type ProfileDTO struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
	CreatedAt string `json:"createdAt"`
}

// MemberDTO is one entry of a project's member list.
type MemberDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsOwner  bool   `json:"isOwner,omitempty"`
}

// RegisterRequest represents the register request body
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUsernameRequest is the body of a rename.
type UpdateUsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

// AddMemberRequest is the body of a membership grant.
type AddMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func ToUserDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

func ToUserDTOs(users []models.User) []UserDTO {
	result := make([]UserDTO, len(users))
	for i := range users {
		result[i] = ToUserDTO(&users[i])
	}
	return result
}

func ToProfileDTO(user *models.User) ProfileDTO {
	return ProfileDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin,
		CreatedAt: utils.FormatDate(&user.CreatedAt, constants.TaskDateLayout),
	}
}

func ToMemberDTOs(members []services.Member) []MemberDTO {
	result := make([]MemberDTO, len(members))
	for i, m := range members {
		result[i] = MemberDTO{ID: m.ID, Username: m.Username, IsOwner: m.IsOwner}
	}
	return result
}
