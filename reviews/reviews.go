package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agromart/activity"
	"agromart/apperr"
	"agromart/authz"
	"agromart/db"
	"agromart/identity"
	"agromart/logging"
	"agromart/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service runs seller-scoped review moderation.
type Service struct {
	store   Store
	trail   activity.Recorder
	sellers authz.Policy
	log     *zap.Logger
	now     func() time.Time
}

func NewService(store Store, trail activity.Recorder, allowSentinel bool, log *zap.Logger) *Service {
	if trail == nil {
		trail = activity.Nop{}
	}
	return &Service{
		store:   store,
		trail:   trail,
		sellers: authz.Policy{Field: authz.FieldSeller, AllowSentinel: allowSentinel},
		log:     log,
		now:     time.Now,
	}
}

func (s *Service) owned(ctx context.Context, caller identity.Caller, id string) (*models.Review, primitive.ObjectID, error) {
	if err := s.sellers.Admit(caller); err != nil {
		return nil, primitive.NilObjectID, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, primitive.NilObjectID, apperr.NotFound("review not found")
	}
	r, err := s.store.FindByID(ctx, oid)
	if err != nil {
		return nil, primitive.NilObjectID, storeErr(err, "find review")
	}
	if err := s.sellers.Authorize(caller, r); err != nil {
		return nil, primitive.NilObjectID, err
	}
	if caller.IsSentinel() {
		logging.FromContext(ctx, s.log).Warn("placeholder seller id bypassed review ownership",
			zap.String("review", id),
			zap.String("owner", r.SellerID))
	}
	return r, oid, nil
}

// Flag sets or clears the moderation flag. Flag state and seller response
// are independent.
func (s *Service) Flag(ctx context.Context, caller identity.Caller, id string, flagged bool, reason string) (*models.Review, error) {
	_, oid, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)

	updated, err := s.store.SetFlag(ctx, oid, flagged, reason, s.now())
	if err != nil {
		return nil, storeErr(err, "flag review")
	}

	if flagged {
		msg := fmt.Sprintf("Seller %s flagged review %s", updated.SellerID, id)
		if reason != "" {
			msg += ": " + reason
		}
		s.trail.Notify(ctx, models.Notification{
			Type:       activity.NotifyReviewFlagged,
			Title:      "Review flagged",
			Message:    msg,
			TargetType: "review",
			TargetID:   id,
		})
	}
	return updated, nil
}

// Respond stores the seller's public reply, replacing any earlier one.
func (s *Service) Respond(ctx context.Context, caller identity.Caller, id, message string) (*models.Review, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperr.Validation("response message is required")
	}
	_, oid, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.SetResponse(ctx, oid, models.SellerResponse{Message: message, RespondedAt: s.now()})
	if err != nil {
		return nil, storeErr(err, "respond to review")
	}
	return updated, nil
}

// List returns the caller's reviews, newest first.
func (s *Service) List(ctx context.Context, caller identity.Caller, flaggedOnly bool, limit int) ([]models.Review, error) {
	if !caller.Authenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}
	if limit <= 0 {
		return []models.Review{}, nil
	}
	list, err := s.store.List(ctx, caller.ID, flaggedOnly, limit)
	if err != nil {
		return nil, apperr.Internal(err, "list reviews")
	}
	return list, nil
}

func storeErr(err error, op string) error {
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound("review not found")
	}
	return apperr.Internal(err, op)
}
