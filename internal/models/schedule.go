package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

func (d DayOfWeek) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// Schedule is a lesson slot binding a group to a classroom. StartTime and
// EndTime carry both the calendar date of the anchor occurrence and the
// time of day. Recurring schedules repeat weekly until RecurrenceEndDate.
type Schedule struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	GroupID     string    `json:"group_id" gorm:"not null;size:36;index"`
	ClassroomID string    `json:"classroom_id" gorm:"not null;size:36;index"`
	DayOfWeek   DayOfWeek `json:"day_of_week" gorm:"not null;size:10"`
	StartTime   time.Time `json:"start_time" gorm:"not null;index"`
	EndTime     time.Time `json:"end_time" gorm:"not null"`

	IsRecurring       bool       `json:"is_recurring" gorm:"not null;default:false"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date,omitempty"`

	Group     *Group     `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	Classroom *Classroom `json:"classroom,omitempty" gorm:"foreignKey:ClassroomID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Schedule) TableName() string {
	return "schedules"
}

func (s *Schedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
