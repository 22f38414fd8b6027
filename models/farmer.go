package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const RoleFarmer = "farmer"

type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Phone     string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Role      string             `json:"role" bson:"role"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// FarmerProfile links to its User through userId. Older records carry the
// reference in a "user" field instead; reads accept both until backfilled.
type FarmerProfile struct {
	ID         primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	UserID     string                 `json:"userId" bson:"userId,omitempty"`
	LegacyUser string                 `json:"-" bson:"user,omitempty"`
	FarmName   string                 `json:"farmName" bson:"farmName"`
	Location   string                 `json:"location,omitempty" bson:"location,omitempty"`
	FarmSize   float64                `json:"farmSize,omitempty" bson:"farmSize,omitempty"`
	Crops      []string               `json:"crops,omitempty" bson:"crops,omitempty"`
	Documents  []VerificationDocument `json:"documents,omitempty" bson:"documents,omitempty"`
	CreatedAt  time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt" bson:"updatedAt"`
}

// OwnerUserID returns the canonical user reference regardless of which field holds it.
func (p *FarmerProfile) OwnerUserID() string {
	if p.UserID != "" {
		return p.UserID
	}
	return p.LegacyUser
}

func (p *FarmerProfile) Document(docType string) (*VerificationDocument, bool) {
	return findDocument(p.Documents, docType)
}
