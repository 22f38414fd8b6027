package orders

import (
	"context"
	"regexp"
	"time"

	"agromart/db"
	"agromart/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SupplierRepository persists seller-owned orders.
type SupplierRepository interface {
	FindByRef(ctx context.Context, ref string) (*models.Order, error)
	// AppendStatus sets the status and appends entry to statusHistory. A
	// non-empty sellerID restricts the update to that seller's order.
	AppendStatus(ctx context.Context, id primitive.ObjectID, sellerID string, entry models.StatusEntry) (*models.Order, error)
	Recent(ctx context.Context, q RecentQuery) ([]models.Order, error)
	TopProducts(ctx context.Context, sellerID string, limit int) ([]models.ProductSales, error)
}

type MongoSupplierRepository struct {
	coll *mongo.Collection
}

func NewMongoSupplierRepository(coll *mongo.Collection) *MongoSupplierRepository {
	return &MongoSupplierRepository{coll: coll}
}

func (r *MongoSupplierRepository) FindByRef(ctx context.Context, ref string) (*models.Order, error) {
	var o models.Order
	if err := r.coll.FindOne(ctx, db.RefFilter(ref, "orderNumber")).Decode(&o); err != nil {
		return nil, db.NotFound(err)
	}
	return &o, nil
}

func (r *MongoSupplierRepository) AppendStatus(ctx context.Context, id primitive.ObjectID, sellerID string, entry models.StatusEntry) (*models.Order, error) {
	filter := bson.M{"_id": id}
	if sellerID != "" {
		filter["sellerId"] = sellerID
	}
	update := bson.M{
		"$set":  bson.M{"status": entry.Status, "updatedAt": entry.ChangedAt},
		"$push": bson.M{"statusHistory": entry},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&o); err != nil {
		return nil, db.NotFound(err)
	}
	return &o, nil
}

func (r *MongoSupplierRepository) Recent(ctx context.Context, q RecentQuery) ([]models.Order, error) {
	filter := bson.M{}
	if q.SellerID != "" {
		filter["sellerId"] = q.SellerID
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"orderNumber": pattern},
			bson.M{"buyerName": pattern},
		}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(q.Limit))

	return db.FindAll[models.Order](ctx, r.coll, filter, opts)
}

// TopProducts ranks products by revenue over paid orders. Ties fall back to
// product id ascending so the listing is stable.
func (r *MongoSupplierRepository) TopProducts(ctx context.Context, sellerID string, limit int) ([]models.ProductSales, error) {
	match := bson.M{"paymentStatus": models.PaymentPaid}
	if sellerID != "" {
		match["sellerId"] = sellerID
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$items.productId"},
			{Key: "name", Value: bson.M{"$first": "$items.name"}},
			{Key: "unitsSold", Value: bson.M{"$sum": "$items.quantity"}},
			{Key: "revenue", Value: bson.M{"$sum": bson.M{"$multiply": bson.A{"$items.quantity", "$items.price"}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "revenue", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: int64(limit)}},
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []models.ProductSales{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
