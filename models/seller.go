package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

// VerificationDocument is an uploaded KYC document embedded in a seller or farmer profile.
type VerificationDocument struct {
	Type            string         `json:"type" bson:"type"`
	URL             string         `json:"url" bson:"url"`
	Status          DocumentStatus `json:"status" bson:"status"`
	RejectionReason string         `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	ReviewedBy      string         `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	UploadedAt      time.Time      `json:"uploadedAt" bson:"uploadedAt"`
}

type Seller struct {
	ID                 primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	CompanyName        string                 `json:"companyName" bson:"companyName"`
	ContactName        string                 `json:"contactName,omitempty" bson:"contactName,omitempty"`
	Email              string                 `json:"email" bson:"email"`
	Phone              string                 `json:"phone,omitempty" bson:"phone,omitempty"`
	Address            string                 `json:"address,omitempty" bson:"address,omitempty"`
	VerificationStatus string                 `json:"verificationStatus" bson:"verificationStatus"`
	PasswordHash       string                 `json:"-" bson:"passwordHash"`
	Documents          []VerificationDocument `json:"documents,omitempty" bson:"documents,omitempty"`
	CreatedAt          time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt" bson:"updatedAt"`
}

// Document returns the embedded document of the given type.
func (s *Seller) Document(docType string) (*VerificationDocument, bool) {
	return findDocument(s.Documents, docType)
}

func findDocument(docs []VerificationDocument, docType string) (*VerificationDocument, bool) {
	for i := range docs {
		if docs[i].Type == docType {
			return &docs[i], true
		}
	}
	return nil, false
}
