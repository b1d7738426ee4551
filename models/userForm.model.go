package models

import (
	"time"
)

// UserFormSubmission is a generic registration form entry
type UserFormSubmission struct {
	ID             string    `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	FirstName      string    `json:"firstName" bson:"firstName" gorm:"size:50;not null"`
	LastName       string    `json:"lastName" bson:"lastName" gorm:"size:50;not null"`
	Email          string    `json:"email" bson:"email" gorm:"size:255;not null;uniqueIndex:uq_user_forms_email"`
	Phone          string    `json:"phone" bson:"phone" gorm:"size:10;not null"`
	DateOfBirth    time.Time `json:"dateOfBirth" bson:"dateOfBirth"`
	Address        string    `json:"address" bson:"address" gorm:"type:text"`
	City           string    `json:"city" bson:"city" gorm:"size:100"`
	State          string    `json:"state" bson:"state" gorm:"size:100"`
	Pincode        string    `json:"pincode" bson:"pincode" gorm:"size:6"`
	AadharNumber   string    `json:"aadharNumber" bson:"aadharNumber" gorm:"size:12;not null;uniqueIndex:uq_user_forms_aadhar_number"`
	AadharFile     string    `json:"aadharFile" bson:"aadharFile" gorm:"size:512;not null"`
	SignatureFile  string    `json:"signatureFile" bson:"signatureFile" gorm:"size:512;not null"`
	AgreeTerms     bool      `json:"agreeTerms" bson:"agreeTerms"`
	AgreeMarketing bool      `json:"agreeMarketing" bson:"agreeMarketing" gorm:"default:false"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (UserFormSubmission) TableName() string {
	return "user_forms"
}
