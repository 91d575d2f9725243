package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Classroom struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	Name        string `json:"name" gorm:"not null;size:100;uniqueIndex"`
	Capacity    int    `json:"capacity" gorm:"not null"`
	Description string `json:"description" gorm:"size:500"`
	Location    string `json:"location" gorm:"size:255"`

	// Free-form equipment list, e.g. ["easels", "projector"].
	Equipment datatypes.JSON `json:"equipment" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Classroom) TableName() string {
	return "classrooms"
}

func (c *Classroom) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
