package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentOverdue  PaymentStatus = "overdue"
	PaymentCanceled PaymentStatus = "canceled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentOverdue, PaymentCanceled:
		return true
	}
	return false
}

type Payment struct {
	ID          string        `json:"id" gorm:"primaryKey;size:36"`
	StudentID   string        `json:"student_id" gorm:"not null;size:36;index"`
	GroupID     string        `json:"group_id" gorm:"size:36;index"`
	Amount      float64       `json:"amount" gorm:"not null"`
	Currency    string        `json:"currency" gorm:"not null;size:3;default:'EUR'"`
	Status      PaymentStatus `json:"status" gorm:"not null;size:10;index"`
	PaymentDate time.Time     `json:"payment_date" gorm:"not null"`
	DueDate     time.Time     `json:"due_date" gorm:"not null;index"`
	PaidAt      *time.Time    `json:"paid_at,omitempty"`
	Description string        `json:"description" gorm:"size:500"`

	Student *User  `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Group   *Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
