package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// DocumentType is the kind of identity document submitted
type DocumentType string

const (
	DocumentNationalID      DocumentType = "NATIONAL_ID"
	DocumentPassport        DocumentType = "PASSPORT"
	DocumentDriverLicense   DocumentType = "DRIVER_LICENSE"
	DocumentResidencePermit DocumentType = "RESIDENCE_PERMIT"
)

func (d DocumentType) Valid() bool {
	switch d {
	case DocumentNationalID, DocumentPassport, DocumentDriverLicense, DocumentResidencePermit:
		return true
	}
	return false
}

// IdentityVerification is one submitted verification request
type IdentityVerification struct {
	ID            uuid.UUID          `json:"id"`
	AccountID     uuid.UUID          `json:"accountId"`
	DocumentType  DocumentType       `json:"documentType"`
	DocumentURL   string             `json:"documentUrl"`
	Status        VerificationStatus `json:"status"`
	ReviewMessage null.String        `json:"reviewMessage"`
	ReviewedBy    *uuid.UUID         `json:"reviewedBy,omitempty"`
	ReviewedAt    null.Time          `json:"reviewedAt"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`

	Account *Account `json:"account,omitempty"`
}

// SubmitVerificationInput represents an identity document submission
type SubmitVerificationInput struct {
	DocumentType DocumentType `json:"documentType" binding:"required"`
	DocumentURL  string       `json:"documentUrl" binding:"required,url,max=1024"`
}

// ReviewVerificationInput is an admin decision on a pending request
type ReviewVerificationInput struct {
	Approve *bool  `json:"approve" binding:"required"`
	Message string `json:"message" binding:"max=1000"`
}
