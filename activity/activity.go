package activity

import (
	"context"
	"errors"
	"time"

	"agromart/apperr"
	"agromart/db"
	"agromart/logging"
	"agromart/models"
	"agromart/mq"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Audit actions.
const (
	ActionDocumentApproved   = "document.approved"
	ActionDocumentRejected   = "document.rejected"
	ActionOrderStatusChanged = "order.status_changed"
)

// Notification types.
const (
	NotifyDocumentReviewed = "document.reviewed"
	NotifyOrderCancelled   = "order.cancelled"
	NotifyReviewFlagged    = "review.flagged"
)

// Recorder is the side channel mutations use to leave a trail for admins.
// Implementations never fail the caller.
type Recorder interface {
	Audit(ctx context.Context, entry models.AuditLog)
	Notify(ctx context.Context, n models.Notification)
}

type Service struct {
	store Store
	pub   mq.Publisher
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store Store, pub mq.Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = mq.Discard{}
	}
	return &Service{store: store, pub: pub, log: log, now: time.Now}
}

func (s *Service) Audit(ctx context.Context, entry models.AuditLog) {
	entry.CreatedAt = s.now()
	if err := s.store.InsertAudit(ctx, &entry); err != nil {
		logging.FromContext(ctx, s.log).Error("audit log write failed",
			zap.String("action", entry.Action),
			zap.String("target", entry.TargetID),
			zap.Error(err))
	}
}

// Notify stores n and publishes it for live admin consoles.
func (s *Service) Notify(ctx context.Context, n models.Notification) {
	log := logging.FromContext(ctx, s.log)

	n.Read = false
	n.ReadAt = nil
	n.CreatedAt = s.now()
	if err := s.store.InsertNotification(ctx, &n); err != nil {
		log.Error("notification write failed", zap.String("type", n.Type), zap.Error(err))
		return
	}
	if err := s.pub.Publish(ctx, mq.NotificationsChannel, n); err != nil {
		log.Warn("notification publish failed", zap.String("type", n.Type), zap.Error(err))
	}
}

func (s *Service) AuditLogs(ctx context.Context, action string, limit int) ([]models.AuditLog, error) {
	logs, err := s.store.ListAudit(ctx, action, limit)
	if err != nil {
		return nil, apperr.Internal(err, "list audit logs")
	}
	return logs, nil
}

func (s *Service) Notifications(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error) {
	list, err := s.store.ListNotifications(ctx, unreadOnly, limit)
	if err != nil {
		return nil, apperr.Internal(err, "list notifications")
	}
	return list, nil
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.NotFound("notification not found")
	}
	if err := s.store.MarkRead(ctx, oid, s.now()); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound("notification not found")
		}
		return apperr.Internal(err, "mark notification read")
	}
	return nil
}

// Nop discards everything. Useful where no trail is wanted.
type Nop struct{}

func (Nop) Audit(context.Context, models.AuditLog)      {}
func (Nop) Notify(context.Context, models.Notification) {}
