package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// InProject restricts a task or membership query to one project.
func InProject(projectID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("project_id = ?", projectID)
	}
}

// AssignedTo restricts a task query to tasks assigned to userID.
func AssignedTo(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("assigned_to_id = ?", userID)
	}
}

// UserMatches performs a case-insensitive substring match on username, and
// on email too unless usernameOnly is set.
func UserMatches(query string, usernameOnly bool) func(db *gorm.DB) *gorm.DB {
	pattern := "%" + utils.EscapeLike(strings.ToLower(query)) + "%"
	return func(db *gorm.DB) *gorm.DB {
		if usernameOnly {
			return db.Where("LOWER(username) LIKE ? ESCAPE '"+utils.LikeEscapeChar+"'", pattern)
		}
		return db.Where("(LOWER(username) LIKE ? ESCAPE '"+utils.LikeEscapeChar+"' OR LOWER(email) LIKE ? ESCAPE '"+utils.LikeEscapeChar+"')", pattern, pattern)
	}
}

// Limit caps the number of returned rows.
func Limit(n int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(n)
	}
}
