package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidTaskStatus   = errors.New("status is not an accepted value")
	ErrInvalidTaskPriority = errors.New("priority is not an accepted value")
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "inprogress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

func ParseTaskStatus(value string) (TaskStatus, error) {
	s := TaskStatus(value)
	if !s.Valid() {
		return "", ErrInvalidTaskStatus
	}
	return s, nil
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityNormal TaskPriority = "normal"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityNormal, TaskPriorityHigh:
		return true
	}
	return false
}

func ParseTaskPriority(value string) (TaskPriority, error) {
	p := TaskPriority(value)
	if !p.Valid() {
		return "", ErrInvalidTaskPriority
	}
	return p, nil
}

type Task struct {
	ID               string       `gorm:"primarykey;size:36" json:"id"`
	ProjectID        string       `gorm:"size:36;not null;index" json:"project"`
	Title            string       `gorm:"type:varchar(255);not null" json:"title"`
	ShortDescription string       `gorm:"type:varchar(255)" json:"shortDescription"`
	Description      string       `gorm:"type:text" json:"description"`
	Deadline         *time.Time   `json:"deadline,omitempty"`
	CreatedByID      string       `gorm:"size:36;not null" json:"createdBy"`
	AssignedToID     string       `gorm:"size:36;not null" json:"assignedTo"`
	Status           TaskStatus   `gorm:"type:varchar(20);not null;default:'todo'" json:"status"`
	Priority         TaskPriority `gorm:"type:varchar(20);not null;default:'normal'" json:"priority"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`

	// Relations
	Project    Project `gorm:"foreignKey:ProjectID" json:"-"`
	CreatedBy  User    `gorm:"foreignKey:CreatedByID" json:"-"`
	AssignedTo User    `gorm:"foreignKey:AssignedToID" json:"-"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
