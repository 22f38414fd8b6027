package memstore

import (
	"context"
	"sync"
	"time"

	"agromart/db"
	"agromart/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity keeps audit entries and notifications in insertion order and
// lists them newest first.
type Activity struct {
	mu    sync.Mutex
	audit []models.AuditLog
	notes []models.Notification
}

func NewActivity(notes ...models.Notification) *Activity {
	return &Activity{notes: notes}
}

func (a *Activity) InsertAudit(_ context.Context, e *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	e.ID = primitive.NewObjectID()
	a.audit = append(a.audit, *e)
	return nil
}

func (a *Activity) ListAudit(_ context.Context, action string, limit int) ([]models.AuditLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []models.AuditLog{}
	for i := len(a.audit) - 1; i >= 0 && len(out) < limit; i-- {
		if action == "" || a.audit[i].Action == action {
			out = append(out, a.audit[i])
		}
	}
	return out, nil
}

func (a *Activity) InsertNotification(_ context.Context, n *models.Notification) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	n.ID = primitive.NewObjectID()
	a.notes = append(a.notes, *n)
	return nil
}

func (a *Activity) ListNotifications(_ context.Context, unreadOnly bool, limit int) ([]models.Notification, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []models.Notification{}
	for i := len(a.notes) - 1; i >= 0 && len(out) < limit; i-- {
		if !unreadOnly || !a.notes[i].Read {
			out = append(out, a.notes[i])
		}
	}
	return out, nil
}

func (a *Activity) MarkRead(_ context.Context, id primitive.ObjectID, at time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.notes {
		if a.notes[i].ID != id {
			continue
		}
		if !a.notes[i].Read {
			a.notes[i].Read = true
			a.notes[i].ReadAt = &at
		}
		return nil
	}
	return db.ErrNotFound
}
