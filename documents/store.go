package documents

import (
	"context"
	"time"

	"agromart/db"
	"agromart/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Decision is the review outcome written onto one embedded document.
type Decision struct {
	Status     models.DocumentStatus
	Reason     string
	ReviewedBy string
	ReviewedAt time.Time
}

// Store reads document holders and writes review decisions.
type Store interface {
	FindSeller(ctx context.Context, id string) (*models.Seller, error)
	// FindFarmerProfile accepts the profile's userId or the legacy user field.
	FindFarmerProfile(ctx context.Context, userID string) (*models.FarmerProfile, error)
	SetSellerDocument(ctx context.Context, id primitive.ObjectID, docType string, d Decision) error
	SetFarmerDocument(ctx context.Context, id primitive.ObjectID, docType string, d Decision) error
}

type MongoStore struct {
	sellers  *mongo.Collection
	profiles *mongo.Collection
}

func NewMongoStore(sellers, profiles *mongo.Collection) *MongoStore {
	return &MongoStore{sellers: sellers, profiles: profiles}
}

func (s *MongoStore) FindSeller(ctx context.Context, id string) (*models.Seller, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, db.ErrNotFound
	}
	var seller models.Seller
	if err := s.sellers.FindOne(ctx, bson.M{"_id": oid}).Decode(&seller); err != nil {
		return nil, db.NotFound(err)
	}
	return &seller, nil
}

func (s *MongoStore) FindFarmerProfile(ctx context.Context, userID string) (*models.FarmerProfile, error) {
	refs := bson.A{userID}
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		refs = append(refs, oid)
	}
	filter := bson.M{"$or": bson.A{
		bson.M{"userId": bson.M{"$in": refs}},
		bson.M{"user": bson.M{"$in": refs}},
	}}

	var p models.FarmerProfile
	if err := s.profiles.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, db.NotFound(err)
	}
	return &p, nil
}

func (s *MongoStore) SetSellerDocument(ctx context.Context, id primitive.ObjectID, docType string, d Decision) error {
	return setDocument(ctx, s.sellers, id, docType, d)
}

func (s *MongoStore) SetFarmerDocument(ctx context.Context, id primitive.ObjectID, docType string, d Decision) error {
	return setDocument(ctx, s.profiles, id, docType, d)
}

func setDocument(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, docType string, d Decision) error {
	set := bson.M{
		"documents.$.status":     d.Status,
		"documents.$.reviewedBy": d.ReviewedBy,
		"documents.$.reviewedAt": d.ReviewedAt,
		"updatedAt":              d.ReviewedAt,
	}
	update := bson.M{"$set": set}
	if d.Reason != "" {
		set["documents.$.rejectionReason"] = d.Reason
	} else {
		update["$unset"] = bson.M{"documents.$.rejectionReason": ""}
	}

	res, err := coll.UpdateOne(ctx, bson.M{"_id": id, "documents.type": docType}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return db.ErrNotFound
	}
	return nil
}
