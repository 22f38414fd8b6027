package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SellerResponse struct {
	Message     string    `json:"message" bson:"message"`
	RespondedAt time.Time `json:"respondedAt" bson:"respondedAt"`
}

// Review is a buyer review of a seller's product.
type Review struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SellerID   string             `json:"sellerId" bson:"sellerId"`
	ProductID  string             `json:"productId" bson:"productId"`
	UserID     string             `json:"userId" bson:"userId"`
	UserName   string             `json:"userName,omitempty" bson:"userName,omitempty"`
	Rating     int                `json:"rating" bson:"rating"`
	Comment    string             `json:"comment" bson:"comment"`
	IsFlagged  bool               `json:"isFlagged" bson:"isFlagged"`
	FlagReason string             `json:"flagReason,omitempty" bson:"flagReason,omitempty"`
	FlaggedAt  *time.Time         `json:"flaggedAt,omitempty" bson:"flaggedAt,omitempty"`
	Response   *SellerResponse    `json:"response,omitempty" bson:"response,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

func (r *Review) OwnerID() string { return r.SellerID }
