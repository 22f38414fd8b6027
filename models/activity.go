package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLog records one administrative action. Entries are never updated.
type AuditLog struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Actor      string             `json:"actor" bson:"actor"`
	Action     string             `json:"action" bson:"action"`
	TargetType string             `json:"targetType" bson:"targetType"`
	TargetID   string             `json:"targetId" bson:"targetId"`
	Details    map[string]any     `json:"details,omitempty" bson:"details,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// Notification is shown to administrators. Only Read and ReadAt change after creation.
type Notification struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Type       string             `json:"type" bson:"type"`
	Title      string             `json:"title" bson:"title"`
	Message    string             `json:"message" bson:"message"`
	TargetType string             `json:"targetType,omitempty" bson:"targetType,omitempty"`
	TargetID   string             `json:"targetId,omitempty" bson:"targetId,omitempty"`
	Read       bool               `json:"read" bson:"read"`
	ReadAt     *time.Time         `json:"readAt,omitempty" bson:"readAt,omitempty"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}
