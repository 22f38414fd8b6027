package orders

import (
	"context"
	"errors"

	"agromart/db"
	"agromart/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MarketplaceRepository persists buyer checkout orders.
type MarketplaceRepository interface {
	FindByRef(ctx context.Context, ref string) (*models.MarketplaceOrder, error)
	// MarkCancelled moves the order to cancelled only while it is still in a
	// cancellable state, and returns ErrNotCancellable otherwise.
	MarkCancelled(ctx context.Context, id primitive.ObjectID, reason string, entry models.StatusEntry) (*models.MarketplaceOrder, error)
}

type MongoMarketplaceRepository struct {
	coll *mongo.Collection
}

func NewMongoMarketplaceRepository(coll *mongo.Collection) *MongoMarketplaceRepository {
	return &MongoMarketplaceRepository{coll: coll}
}

func (r *MongoMarketplaceRepository) FindByRef(ctx context.Context, ref string) (*models.MarketplaceOrder, error) {
	var o models.MarketplaceOrder
	if err := r.coll.FindOne(ctx, db.RefFilter(ref, "orderNumber")).Decode(&o); err != nil {
		return nil, db.NotFound(err)
	}
	return &o, nil
}

func (r *MongoMarketplaceRepository) MarkCancelled(ctx context.Context, id primitive.ObjectID, reason string, entry models.StatusEntry) (*models.MarketplaceOrder, error) {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": models.CancellableStatuses},
	}
	update := bson.M{
		"$set": bson.M{
			"status":             models.OrderCancelled,
			"cancellationReason": reason,
			"cancelledAt":        entry.ChangedAt,
			"updatedAt":          entry.ChangedAt,
		},
		"$push": bson.M{"statusHistory": entry},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.MarketplaceOrder
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotCancellable
		}
		return nil, err
	}
	return &o, nil
}
