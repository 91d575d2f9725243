package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

type Attendance struct {
	ID         string           `json:"id" gorm:"primaryKey;size:36"`
	StudentID  string           `json:"student_id" gorm:"not null;size:36;index"`
	ScheduleID string           `json:"schedule_id" gorm:"not null;size:36;index"`
	Date       time.Time        `json:"date" gorm:"not null;index"`
	Status     AttendanceStatus `json:"status" gorm:"not null;size:10"`
	Notes      string           `json:"notes" gorm:"size:500"`

	Student  *User     `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Schedule *Schedule `json:"schedule,omitempty" gorm:"foreignKey:ScheduleID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Attendance) TableName() string {
	return "attendances"
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
