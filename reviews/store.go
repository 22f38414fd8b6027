package reviews

import (
	"context"
	"time"

	"agromart/db"
	"agromart/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists product reviews.
type Store interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	// SetFlag with flagged false removes flagReason and flaggedAt.
	SetFlag(ctx context.Context, id primitive.ObjectID, flagged bool, reason string, at time.Time) (*models.Review, error)
	SetResponse(ctx context.Context, id primitive.ObjectID, resp models.SellerResponse) (*models.Review, error)
	List(ctx context.Context, sellerID string, flaggedOnly bool, limit int) ([]models.Review, error)
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var r models.Review
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, db.NotFound(err)
	}
	return &r, nil
}

func (s *MongoStore) SetFlag(ctx context.Context, id primitive.ObjectID, flagged bool, reason string, at time.Time) (*models.Review, error) {
	var update bson.M
	if flagged {
		set := bson.M{"isFlagged": true, "flaggedAt": at}
		update = bson.M{"$set": set}
		if reason != "" {
			set["flagReason"] = reason
		} else {
			update["$unset"] = bson.M{"flagReason": ""}
		}
	} else {
		update = bson.M{
			"$set":   bson.M{"isFlagged": false},
			"$unset": bson.M{"flagReason": "", "flaggedAt": ""},
		}
	}
	return s.findAndUpdate(ctx, id, update)
}

func (s *MongoStore) SetResponse(ctx context.Context, id primitive.ObjectID, resp models.SellerResponse) (*models.Review, error) {
	return s.findAndUpdate(ctx, id, bson.M{"$set": bson.M{"response": resp}})
}

func (s *MongoStore) List(ctx context.Context, sellerID string, flaggedOnly bool, limit int) ([]models.Review, error) {
	filter := bson.M{"sellerId": sellerID}
	if flaggedOnly {
		filter["isFlagged"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	return db.FindAll[models.Review](ctx, s.coll, filter, opts)
}

func (s *MongoStore) findAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Review, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r models.Review
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&r); err != nil {
		return nil, db.NotFound(err)
	}
	return &r, nil
}
