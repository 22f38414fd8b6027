package memstore

import (
	"context"
	"sync"

	"agromart/models"
)

// Trail records audit entries and notifications instead of persisting them.
type Trail struct {
	mu            sync.Mutex
	Audits        []models.AuditLog
	Notifications []models.Notification
}

func (t *Trail) Audit(_ context.Context, e models.AuditLog) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Audits = append(t.Audits, e)
}

func (t *Trail) Notify(_ context.Context, n models.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Notifications = append(t.Notifications, n)
}
