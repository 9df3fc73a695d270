package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectMember records a non-owner user's membership in a project.
type ProjectMember struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	ProjectID string    `gorm:"size:36;not null" json:"project"`
	UserID    string    `gorm:"size:36;not null" json:"user"`
	CreatedAt time.Time `json:"createdAt"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"-"`
}

func (m *ProjectMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
