package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned by repositories when no document matches.
var ErrNotFound = errors.New("document not found")

const (
	SellersCollection           = "sellers"
	FarmerProfilesCollection    = "farmerprofiles"
	ProductsCollection          = "products"
	OrdersCollection            = "orders"
	FarmerOrdersCollection      = "farmerorders"
	MarketplaceOrdersCollection = "marketplaceorders"
	ReviewsCollection           = "reviews"
	AuditLogsCollection         = "adminauditlogs"
	NotificationsCollection     = "adminnotifications"
)

// Store holds the client and every collection the API touches.
type Store struct {
	Client  *mongo.Client
	timeout time.Duration

	Sellers           *mongo.Collection
	FarmerProfiles    *mongo.Collection
	Products          *mongo.Collection
	Orders            *mongo.Collection
	FarmerOrders      *mongo.Collection
	MarketplaceOrders *mongo.Collection
	Reviews           *mongo.Collection
	AuditLogs         *mongo.Collection
	Notifications     *mongo.Collection
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().ApplyURI(uri).SetTimeout(timeout)
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	d := client.Database(database)
	return &Store{
		Client:            client,
		timeout:           timeout,
		Sellers:           d.Collection(SellersCollection),
		FarmerProfiles:    d.Collection(FarmerProfilesCollection),
		Products:          d.Collection(ProductsCollection),
		Orders:            d.Collection(OrdersCollection),
		FarmerOrders:      d.Collection(FarmerOrdersCollection),
		MarketplaceOrders: d.Collection(MarketplaceOrdersCollection),
		Reviews:           d.Collection(ReviewsCollection),
		AuditLogs:         d.Collection(AuditLogsCollection),
		Notifications:     d.Collection(NotificationsCollection),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the listing and lookup queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	specs := map[*mongo.Collection][]mongo.IndexModel{
		s.Orders: {
			{Keys: bson.D{{Key: "sellerId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "paymentStatus", Value: 1}}},
		},
		s.MarketplaceOrders: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		s.FarmerOrders: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		s.Products: {
			{Keys: bson.D{{Key: "sellerId", Value: 1}, {Key: "stockQuantity", Value: 1}}},
		},
		s.Reviews: {
			{Keys: bson.D{{Key: "sellerId", Value: 1}, {Key: "isFlagged", Value: 1}}},
		},
		s.FarmerProfiles: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		s.Sellers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.Notifications: {
			{Keys: bson.D{{Key: "read", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		s.AuditLogs: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}

	for coll, idxs := range specs {
		if _, err := coll.Indexes().CreateMany(ctx, idxs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// NotFound maps mongo.ErrNoDocuments to ErrNotFound and leaves other errors alone.
func NotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// RefFilter matches a document by its ObjectID hex or by a human-readable
// reference held in field (for example "ORD-42" in orderNumber).
func RefFilter(ref, field string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(ref); err == nil {
		return bson.M{"$or": bson.A{bson.M{"_id": oid}, bson.M{field: ref}}}
	}
	return bson.M{field: ref}
}

// FindAll runs a find and decodes every document into T.
func FindAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
