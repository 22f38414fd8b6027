package products

import (
	"context"
	"time"

	"agromart/apperr"
	"agromart/db"
	"agromart/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository reads and adjusts product stock.
type Repository interface {
	// LowStock lists products at or below their reorder threshold. An empty
	// sellerID lists across all sellers.
	LowStock(ctx context.Context, sellerID string, limit int) ([]models.Product, error)
	// Restock adds qty units back to a product.
	Restock(ctx context.Context, productID primitive.ObjectID, qty int) error
}

type MongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll, now: time.Now}
}

func (r *MongoRepository) LowStock(ctx context.Context, sellerID string, limit int) ([]models.Product, error) {
	filter := bson.M{
		"$expr": bson.M{"$lte": bson.A{"$stockQuantity", "$reorderThreshold"}},
	}
	if sellerID != "" {
		filter["sellerId"] = sellerID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "stockQuantity", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	return db.FindAll[models.Product](ctx, r.coll, filter, opts)
}

func (r *MongoRepository) Restock(ctx context.Context, productID primitive.ObjectID, qty int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{
			"$inc": bson.M{"stockQuantity": qty},
			"$set": bson.M{"updatedAt": r.now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return db.ErrNotFound
	}
	return nil
}

// ListLowStock applies the listing rules shared by the admin and supplier
// dashboards: a zero limit yields an empty list without a query.
func ListLowStock(ctx context.Context, repo Repository, sellerID string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		return []models.Product{}, nil
	}
	list, err := repo.LowStock(ctx, sellerID, limit)
	if err != nil {
		return nil, apperr.Internal(err, "list low stock products")
	}
	return list, nil
}
