package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

type ProjectHandler struct {
	projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// ListProjects returns every project the caller owns or belongs to
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	summaries, err := h.projects.ListForUser(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, gin.H{"projects": dto.ToProjectSummaryDTOs(summaries)}, "")
}

// CreateProject creates a project owned by the caller
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	finished, err := utils.ParseDate(req.Finished)
	if err != nil {
		respondError(c, err)
		return
	}

	project, err := h.projects.Create(c.Request.Context(), p, services.CreateProjectInput{
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		Finished:         finished,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusCreated, gin.H{
		"project": dto.ToProjectDetailDTO(&services.ProjectDetail{Project: *project, IsOwner: true}),
	}, "Project created.")
}

// GetRecentProject returns the name of the most recently viewed project
func (h *ProjectHandler) GetRecentProject(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	name, err := h.projects.GetRecent(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, gin.H{"projectName": name}, "")
}

// GetProject returns one project and records the view
func (h *ProjectHandler) GetProject(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	detail, err := h.projects.GetByName(c.Request.Context(), p, c.Param("projectname"))
	if err != nil {
		respondError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, gin.H{"project": dto.ToProjectDetailDTO(detail)}, "")
}

// UpdateProject changes the supplied fields of a project
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	input := services.UpdateProjectInput{
		Name:             req.Name,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		IsActive:         req.IsActive,
	}
	if req.Finished != nil {
		if strings.TrimSpace(*req.Finished) == "" {
			input.ClearFinished = true
		} else {
			finished, err := utils.ParseDate(req.Finished)
			if err != nil {
				respondError(c, err)
				return
			}
			input.Finished = finished
		}
	}

	detail, err := h.projects.Update(c.Request.Context(), p, c.Param("projectname"), input)
	if err != nil {
		respondError(c, err)
		return
	}

	apierrors.Respond(c, http.StatusOK, gin.H{"project": dto.ToProjectDetailDTO(detail)}, "Project updated.")
}
