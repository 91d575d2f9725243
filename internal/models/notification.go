package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationRegistration NotificationType = "registration"
	NotificationApproval     NotificationType = "approval"
	NotificationPaymentDue   NotificationType = "payment_due"
	NotificationGeneral      NotificationType = "general"
)

type Notification struct {
	ID      string           `json:"id" gorm:"primaryKey;size:36"`
	UserID  string           `json:"user_id" gorm:"not null;size:36;index"`
	Type    NotificationType `json:"type" gorm:"not null;size:20"`
	Title   string           `json:"title" gorm:"not null;size:255"`
	Message string           `json:"message" gorm:"not null;size:1000"`
	Read    bool             `json:"read" gorm:"not null;default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
