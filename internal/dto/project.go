package dto

import (
	"time"

	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// ProjectSummaryDTO is a project entry of the caller's project list.
type ProjectSummaryDTO struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	IsOwner          bool       `json:"isOwner"`
	ShortDescription string     `json:"shortDescription"`
	IsActive         bool       `json:"isActive"`
	Finished         string     `json:"finished"`
	MemberCount      int64      `json:"memberCount"`
	TaskCount        int64      `json:"taskCount"`
	RecentlyViewed   *time.Time `json:"recentlyViewed"`
}

// ProjectDetailDTO is a single project. Finished uses the yyyy.MM.dd form.
type ProjectDetailDTO struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Owner            string     `json:"owner"`
	IsOwner          bool       `json:"isOwner"`
	ShortDescription string     `json:"shortDescription"`
	Description      string     `json:"description"`
	IsActive         bool       `json:"isActive"`
	Finished         string     `json:"finished"`
	RecentlyViewed   *time.Time `json:"recentlyViewed"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// CreateProjectRequest is the body of a project creation.
type CreateProjectRequest struct {
	Name             string  `json:"name" binding:"required"`
	ShortDescription string  `json:"shortDescription"`
	Description      string  `json:"description"`
	Finished         *string `json:"finished"`
}

// UpdateProjectRequest carries the fields to change. A finished value of
// "" clears the date.
type UpdateProjectRequest struct {
	Name             *string `json:"name"`
	ShortDescription *string `json:"shortDescription"`
	Description      *string `json:"description"`
	Finished         *string `json:"finished"`
	IsActive         *bool   `json:"isActive"`
}

func ToProjectSummaryDTOs(summaries []services.ProjectSummary) []ProjectSummaryDTO {
	result := make([]ProjectSummaryDTO, len(summaries))
	for i, s := range summaries {
		result[i] = ProjectSummaryDTO{
			ID:               s.Project.ID,
			Name:             s.Project.Name,
			IsOwner:          s.IsOwner,
			ShortDescription: s.Project.ShortDescription,
			IsActive:         s.Project.IsActive,
			Finished:         utils.FormatDate(s.Project.Finished, constants.ProjectDateLayout),
			MemberCount:      s.MemberCount,
			TaskCount:        s.TaskCount,
			RecentlyViewed:   s.Project.RecentlyViewed,
		}
	}
	return result
}

func ToProjectDetailDTO(detail *services.ProjectDetail) ProjectDetailDTO {
	p := detail.Project
	return ProjectDetailDTO{
		ID:               p.ID,
		Name:             p.Name,
		Owner:            p.OwnerID,
		IsOwner:          detail.IsOwner,
		ShortDescription: p.ShortDescription,
		Description:      p.Description,
		IsActive:         p.IsActive,
		Finished:         utils.FormatDate(p.Finished, constants.ProjectDateLayout),
		RecentlyViewed:   p.RecentlyViewed,
		CreatedAt:        p.CreatedAt,
	}
}
