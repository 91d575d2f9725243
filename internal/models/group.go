package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group is a teaching group: one teacher, a roster of students and a
// subject taught across the group's schedules.
type Group struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	Name        string `json:"name" gorm:"not null;size:100"`
	Subject     string `json:"subject" gorm:"not null;size:100"`
	TeacherID   string `json:"teacher_id" gorm:"not null;size:36;index"`
	MaxStudents int    `json:"max_students" gorm:"not null;default:0"`
	Description string `json:"description" gorm:"size:500"`

	Teacher  *User  `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Students []User `json:"students,omitempty" gorm:"many2many:group_students;"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Group) TableName() string {
	return "groups"
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
