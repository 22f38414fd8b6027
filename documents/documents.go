package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agromart/activity"
	"agromart/apperr"
	"agromart/db"
	"agromart/identity"
	"agromart/models"

	"go.uber.org/zap"
)

type Family string

const (
	FamilySeller Family = "seller"
	FamilyFarmer Family = "farmer"
)

// Holder is whoever owns a verification document. Exactly one of Seller or
// Farmer is set.
type Holder struct {
	Family Family
	Seller *models.Seller
	Farmer *models.FarmerProfile
}

func (h Holder) Document(docType string) (*models.VerificationDocument, bool) {
	switch h.Family {
	case FamilySeller:
		return h.Seller.Document(docType)
	case FamilyFarmer:
		return h.Farmer.Document(docType)
	}
	return nil, false
}

// ParseRef splits "{userId}_{docType}" at the first underscore.
func ParseRef(ref string) (userID, docType string, err error) {
	userID, docType, ok := strings.Cut(ref, "_")
	if !ok || userID == "" || docType == "" {
		return "", "", apperr.Validation("document reference must look like {userId}_{docType}")
	}
	return userID, docType, nil
}

type Service struct {
	store Store
	trail activity.Recorder
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store Store, trail activity.Recorder, log *zap.Logger) *Service {
	if trail == nil {
		trail = activity.Nop{}
	}
	return &Service{store: store, trail: trail, log: log, now: time.Now}
}

// Resolve finds the document holder among sellers first, then farmer profiles.
func (s *Service) Resolve(ctx context.Context, userID string) (Holder, error) {
	seller, err := s.store.FindSeller(ctx, userID)
	if err == nil {
		return Holder{Family: FamilySeller, Seller: seller}, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return Holder{}, apperr.Internal(err, "find seller")
	}

	profile, err := s.store.FindFarmerProfile(ctx, userID)
	if err == nil {
		return Holder{Family: FamilyFarmer, Farmer: profile}, nil
	}
	if errors.Is(err, db.ErrNotFound) {
		return Holder{}, apperr.NotFound("document holder not found")
	}
	return Holder{}, apperr.Internal(err, "find farmer profile")
}

// Review approves or rejects one document. Repeating the same decision is a no-op
// in effect and never an error.
func (s *Service) Review(ctx context.Context, caller identity.Caller, ref, action, reason string) (Holder, error) {
	if !caller.IsAdmin() {
		return Holder{}, apperr.Forbidden("admin access required")
	}
	userID, docType, err := ParseRef(ref)
	if err != nil {
		return Holder{}, err
	}

	var status models.DocumentStatus
	switch action {
	case "approve":
		status = models.DocumentApproved
		reason = ""
	case "reject":
		status = models.DocumentRejected
	default:
		return Holder{}, apperr.Validation(`action must be "approve" or "reject"`)
	}

	holder, err := s.Resolve(ctx, userID)
	if err != nil {
		return Holder{}, err
	}
	if _, ok := holder.Document(docType); !ok {
		return Holder{}, apperr.NotFound(fmt.Sprintf("document %q not found", docType))
	}

	d := Decision{Status: status, Reason: reason, ReviewedBy: caller.ID, ReviewedAt: s.now()}
	switch holder.Family {
	case FamilySeller:
		err = s.store.SetSellerDocument(ctx, holder.Seller.ID, docType, d)
	case FamilyFarmer:
		err = s.store.SetFarmerDocument(ctx, holder.Farmer.ID, docType, d)
	}
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return Holder{}, apperr.NotFound(fmt.Sprintf("document %q not found", docType))
		}
		return Holder{}, apperr.Internal(err, "update document")
	}

	auditAction := activity.ActionDocumentApproved
	if status == models.DocumentRejected {
		auditAction = activity.ActionDocumentRejected
	}
	details := map[string]any{"holder": string(holder.Family), "docType": docType}
	if reason != "" {
		details["reason"] = reason
	}
	s.trail.Audit(ctx, models.AuditLog{
		Actor:      caller.ID,
		Action:     auditAction,
		TargetType: "document",
		TargetID:   ref,
		Details:    details,
	})
	s.trail.Notify(ctx, models.Notification{
		Type:       activity.NotifyDocumentReviewed,
		Title:      "Document " + string(status),
		Message:    fmt.Sprintf("%s document %s of %s %s", docType, status, holder.Family, userID),
		TargetType: "document",
		TargetID:   ref,
	})
	return holder, nil
}
