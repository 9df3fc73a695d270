package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

type MemberHandler struct {
	members *services.MemberService
}

func NewMemberHandler(members *services.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

func (h *MemberHandler) ListMembers(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	members, err := h.members.ListMembers(c.Request.Context(), p, c.Param("projectname"))
	if err != nil {
		respondError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, gin.H{"members": dto.ToMemberDTOs(members)}, "")
}

func (h *MemberHandler) AddMember(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	member, err := h.members.AddMember(c.Request.Context(), p, c.Param("projectname"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusCreated, gin.H{"userId": member.UserID}, "Member added.")
}

func (h *MemberHandler) RemoveMember(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	if err := h.members.RemoveMember(c.Request.Context(), p, c.Param("projectname"), c.Param("userid")); err != nil {
		respondError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, nil, "Member removed.")
}
