package orders

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

// FarmerRepository persists orders placed by farmers.
type FarmerRepository interface {
	FindByRef(ctx context.Context, ref string) (*models.FarmerOrder, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, at time.Time) (*models.FarmerOrder, error)
}

type MongoFarmerRepository struct {
	coll *mongo.Collection
}

func NewMongoFarmerRepository(coll *mongo.Collection) *MongoFarmerRepository {
	return &MongoFarmerRepository{coll: coll}
}

func (r *MongoFarmerRepository) FindByRef(ctx context.Context, ref string) (*models.FarmerOrder, error) {
	var o models.FarmerOrder
	if err := r.coll.FindOne(ctx, db.RefFilter(ref, "orderNumber")).Decode(&o); err != nil {
		return nil, db.NotFound(err)
	}
	return &o, nil
}

func (r *MongoFarmerRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, at time.Time) (*models.FarmerOrder, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.FarmerOrder
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": at}},
		opts,
	).Decode(&o)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &o, nil
}
