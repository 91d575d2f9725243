package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string   `json:"id" gorm:"primaryKey;size:36"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`
	FirstName    string   `json:"first_name" gorm:"not null;size:100"`
	LastName     string   `json:"last_name" gorm:"not null;size:100"`
	Role         UserRole `json:"role" gorm:"not null;size:20;index"`
	Phone        string   `json:"phone" gorm:"size:30"`
	Address      string   `json:"address" gorm:"size:255"`

	// Admin-gated activation; non-admin accounts cannot log in until flipped.
	Approved bool `json:"approved" gorm:"not null;default:false;index"`

	// Single-use password reset credential, stale after ResetTokenExpires.
	ResetToken        *string    `json:"-" gorm:"size:64;index"`
	ResetTokenExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// FullName joins first and last name for display purposes.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
