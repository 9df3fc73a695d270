package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	ID               string     `gorm:"primarykey;size:36" json:"id"`
	Name             string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	OwnerID          string     `gorm:"size:36;not null;index" json:"owner"`
	ShortDescription string     `gorm:"type:varchar(255)" json:"shortDescription"`
	Description      string     `gorm:"type:text" json:"description"`
	IsActive         bool       `gorm:"not null" json:"isActive"`
	Finished         *time.Time `json:"finished,omitempty"`
	RecentlyViewed   *time.Time `gorm:"index" json:"recentlyViewed,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`

	// Relations
	Owner   User            `gorm:"foreignKey:OwnerID" json:"-"`
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"-"`
	Tasks   []Task          `gorm:"foreignKey:ProjectID" json:"-"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
