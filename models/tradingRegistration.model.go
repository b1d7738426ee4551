package models

import (
	"time"
)

type RegistrationStatus string

const (
	RegistrationPending     RegistrationStatus = "pending"
	RegistrationApproved    RegistrationStatus = "approved"
	RegistrationRejected    RegistrationStatus = "rejected"
	RegistrationUnderReview RegistrationStatus = "under_review"
)

// RegistrationStatuses lists every valid status, in display order.
var RegistrationStatuses = []RegistrationStatus{
	RegistrationPending,
	RegistrationApproved,
	RegistrationRejected,
	RegistrationUnderReview,
}

func (s RegistrationStatus) Valid() bool {
	for _, status := range RegistrationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// VerificationFlag names one of the manual verification checks.
type VerificationFlag string

const (
	AadharVerified    VerificationFlag = "aadharVerified"
	PanVerified       VerificationFlag = "panVerified"
	SignatureVerified VerificationFlag = "signatureVerified"
	EmailVerified     VerificationFlag = "emailVerified"
	PhoneVerified     VerificationFlag = "phoneVerified"
)

var VerificationFlags = []VerificationFlag{
	AadharVerified,
	PanVerified,
	SignatureVerified,
	EmailVerified,
	PhoneVerified,
}

// ParseVerificationFlag accepts only the five known flag names.
func ParseVerificationFlag(name string) (VerificationFlag, bool) {
	for _, flag := range VerificationFlags {
		if string(flag) == name {
			return flag, true
		}
	}
	return "", false
}

// DocumentPath is the nested document path of the flag.
func (f VerificationFlag) DocumentPath() string {
	return "verificationStatus." + string(f)
}

// Column is the GORM column holding the flag.
func (f VerificationFlag) Column() string {
	switch f {
	case AadharVerified:
		return "verification_aadhar_verified"
	case PanVerified:
		return "verification_pan_verified"
	case SignatureVerified:
		return "verification_signature_verified"
	case EmailVerified:
		return "verification_email_verified"
	case PhoneVerified:
		return "verification_phone_verified"
	}
	return ""
}

// VerificationStatus holds independent manual verification checks
type VerificationStatus struct {
	AadharVerified    bool `json:"aadharVerified" bson:"aadharVerified" gorm:"default:false"`
	PanVerified       bool `json:"panVerified" bson:"panVerified" gorm:"default:false"`
	SignatureVerified bool `json:"signatureVerified" bson:"signatureVerified" gorm:"default:false"`
	EmailVerified     bool `json:"emailVerified" bson:"emailVerified" gorm:"default:false"`
	PhoneVerified     bool `json:"phoneVerified" bson:"phoneVerified" gorm:"default:false"`
}

// Set changes exactly one flag.
func (v *VerificationStatus) Set(flag VerificationFlag, value bool) {
	switch flag {
	case AadharVerified:
		v.AadharVerified = value
	case PanVerified:
		v.PanVerified = value
	case SignatureVerified:
		v.SignatureVerified = value
	case EmailVerified:
		v.EmailVerified = value
	case PhoneVerified:
		v.PhoneVerified = value
	}
}

// IsFullyVerified is true once Aadhar, signature, email and phone are
// verified. PAN is tracked but not required.
func (v VerificationStatus) IsFullyVerified() bool {
	return v.AadharVerified && v.SignatureVerified && v.EmailVerified && v.PhoneVerified
}

// TradingRegistration is a trading account application with its KYC documents
type TradingRegistration struct {
	ID           string    `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	FirstName    string    `json:"firstName" bson:"firstName" gorm:"size:50;not null"`
	LastName     string    `json:"lastName" bson:"lastName" gorm:"size:50;not null"`
	Email        string    `json:"email" bson:"email" gorm:"size:255;not null;uniqueIndex:uq_trading_email"`
	Phone        string    `json:"phone" bson:"phone" gorm:"size:10;not null"`
	DateOfBirth  time.Time `json:"dateOfBirth" bson:"dateOfBirth"`
	Address      string    `json:"address" bson:"address" gorm:"type:text"`
	City         string    `json:"city" bson:"city" gorm:"size:100"`
	State        string    `json:"state" bson:"state" gorm:"size:100"`
	Pincode      string    `json:"pincode" bson:"pincode" gorm:"size:6"`
	AadharNumber string    `json:"aadharNumber" bson:"aadharNumber" gorm:"size:12;not null;uniqueIndex:uq_trading_aadhar_number"`
	PanNumber    string    `json:"panNumber,omitempty" bson:"panNumber,omitempty" gorm:"size:10;default:''"`

	AadharDocument    FileInfo `json:"aadharDocument" bson:"aadharDocument" gorm:"embedded;embeddedPrefix:aadhar_document_"`
	PanDocument       FileInfo `json:"panDocument" bson:"panDocument" gorm:"embedded;embeddedPrefix:pan_document_"`
	SignatureDocument FileInfo `json:"signatureDocument" bson:"signatureDocument" gorm:"embedded;embeddedPrefix:signature_document_"`

	AgreeTerms     bool `json:"agreeTerms" bson:"agreeTerms"`
	AgreeMarketing bool `json:"agreeMarketing" bson:"agreeMarketing" gorm:"default:false"`

	RegistrationStatus RegistrationStatus `json:"registrationStatus" bson:"registrationStatus" gorm:"size:20;default:'pending';index"`
	AdminNotes         string             `json:"adminNotes" bson:"adminNotes" gorm:"type:text"`
	VerificationStatus VerificationStatus `json:"verificationStatus" bson:"verificationStatus" gorm:"embedded;embeddedPrefix:verification_"`

	SubmissionDate time.Time `json:"submissionDate" bson:"submissionDate" gorm:"index"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (TradingRegistration) TableName() string {
	return "trading_registrations"
}

// Documents returns the attached files keyed by upload field name.
func (r *TradingRegistration) Documents() map[string]*FileInfo {
	return map[string]*FileInfo{
		"aadharFile":    &r.AadharDocument,
		"panFile":       &r.PanDocument,
		"signatureFile": &r.SignatureDocument,
	}
}

// FilePaths lists the on-disk paths of every attached file.
func (r *TradingRegistration) FilePaths() []string {
	var paths []string
	for _, doc := range []FileInfo{r.AadharDocument, r.PanDocument, r.SignatureDocument} {
		if doc.Attached() {
			paths = append(paths, doc.Path)
		}
	}
	return paths
}

// RegistrationStats aggregates trading registrations for the admin dashboard
type RegistrationStats struct {
	Total            int64                        `json:"total"`
	Today            int64                        `json:"today"`
	ByStatus         map[RegistrationStatus]int64 `json:"byStatus"`
	FullyVerified    int64                        `json:"fullyVerified"`
	NotFullyVerified int64                        `json:"notFullyVerified"`
}

// NewRegistrationStats returns stats with every status key present.
func NewRegistrationStats() *RegistrationStats {
	stats := &RegistrationStats{ByStatus: make(map[RegistrationStatus]int64, len(RegistrationStatuses))}
	for _, status := range RegistrationStatuses {
		stats.ByStatus[status] = 0
	}
	return stats
}
