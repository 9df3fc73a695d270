package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// RequireIDParams rejects requests whose named path parameters are not
// well-formed ids before any lookup happens.
func RequireIDParams(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range names {
			if !utils.IsValidID(c.Param(name)) {
				apierrors.BadRequest(c, "Invalid "+name+".", name+" is not a valid id")
				return
			}
		}
		c.Next()
	}
}

// RequireProjectParam rejects requests with a blank project name.
func RequireProjectParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		if utils.NormalizeProjectName(c.Param("projectname")) == "" {
			apierrors.BadRequest(c, "Project name is required.", "missing project name")
			return
		}
		c.Next()
	}
}
