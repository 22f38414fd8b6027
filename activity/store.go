package activity

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

// Store persists audit entries and admin notifications.
type Store interface {
	InsertAudit(ctx context.Context, entry *models.AuditLog) error
	ListAudit(ctx context.Context, action string, limit int) ([]models.AuditLog, error)
	InsertNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type MongoStore struct {
	audit         *mongo.Collection
	notifications *mongo.Collection
}

func NewMongoStore(audit, notifications *mongo.Collection) *MongoStore {
	return &MongoStore{audit: audit, notifications: notifications}
}

func (s *MongoStore) InsertAudit(ctx context.Context, entry *models.AuditLog) error {
	res, err := s.audit.InsertOne(ctx, entry)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid
	}
	return nil
}

func (s *MongoStore) ListAudit(ctx context.Context, action string, limit int) ([]models.AuditLog, error) {
	filter := bson.M{}
	if action != "" {
		filter["action"] = action
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	return db.FindAll[models.AuditLog](ctx, s.audit, filter, opts)
}

func (s *MongoStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	res, err := s.notifications.InsertOne(ctx, n)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid
	}
	return nil
}

func (s *MongoStore) ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error) {
	filter := bson.M{}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	return db.FindAll[models.Notification](ctx, s.notifications, filter, opts)
}

// MarkRead sets read and readAt once. Marking an already read notification is a no-op.
func (s *MongoStore) MarkRead(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	res, err := s.notifications.UpdateOne(ctx,
		bson.M{"_id": id, "read": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"read": true, "readAt": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := s.notifications.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}
