package models

import (
	"time"
)

// PaymentStatus defines the status of a logged payment
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"
	PaymentFailed  PaymentStatus = "Failed"
)

// PaymentRecord logs a course payment. Amounts are recorded, never processed.
type PaymentRecord struct {
	ID            string        `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	UserName      string        `json:"userName" bson:"userName" gorm:"size:100;not null"`
	CourseName    string        `json:"courseName" bson:"courseName" gorm:"size:255;not null"`
	Amount        float64       `json:"amount" bson:"amount" gorm:"not null"`
	PaymentStatus PaymentStatus `json:"paymentStatus" bson:"paymentStatus" gorm:"size:20;default:'Pending';index"`
	UserPhone     string        `json:"userPhone,omitempty" bson:"userPhone,omitempty" gorm:"size:10"`
	UserEmail     string        `json:"userEmail,omitempty" bson:"userEmail,omitempty" gorm:"size:255"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
}

func (PaymentRecord) TableName() string {
	return "payments"
}
