package auth

import (
	"context"
	"strings"

	"agromart/db"
	"agromart/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SellerStore finds supplier accounts for login.
type SellerStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Seller, error)
}

type MongoSellerStore struct {
	coll *mongo.Collection
}

func NewMongoSellerStore(coll *mongo.Collection) *MongoSellerStore {
	return &MongoSellerStore{coll: coll}
}

func (s *MongoSellerStore) FindByEmail(ctx context.Context, email string) (*models.Seller, error) {
	var seller models.Seller
	err := s.coll.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&seller)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &seller, nil
}
