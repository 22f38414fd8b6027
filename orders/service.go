package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agromart/activity"
	"agromart/apperr"
	"agromart/authz"
	"agromart/db"
	"agromart/identity"
	"agromart/logging"
	"agromart/metrics"
	"agromart/models"
	"agromart/products"
	"agromart/utils"

	"go.uber.org/zap"
)

// Repositories groups the three order collections.
type Repositories struct {
	Supplier    SupplierRepository
	Farmer      FarmerRepository
	Marketplace MarketplaceRepository
}

type Service struct {
	repos   Repositories
	stock   products.Repository
	trail   activity.Recorder
	metrics *metrics.Orders
	sellers authz.Policy
	log     *zap.Logger
	now     func() time.Time
	newID   func() string
}

func NewService(repos Repositories, stock products.Repository, trail activity.Recorder, m *metrics.Orders, allowSentinel bool, log *zap.Logger) *Service {
	if trail == nil {
		trail = activity.Nop{}
	}
	return &Service{
		repos:   repos,
		stock:   stock,
		trail:   trail,
		metrics: m,
		sellers: authz.Policy{Field: authz.FieldSeller, AllowSentinel: allowSentinel},
		log:     log,
		now:     time.Now,
		newID:   utils.GetUUID,
	}
}

func parseStatus(raw string) (models.OrderStatus, error) {
	s := models.OrderStatus(raw)
	if !s.Valid() {
		return "", apperr.Validation(fmt.Sprintf("invalid order status %q", raw))
	}
	return s, nil
}

// Resolve looks ref up in the supplier orders, then in the farmer orders.
func (s *Service) Resolve(ctx context.Context, ref string) (Resolved, error) {
	o, err := s.repos.Supplier.FindByRef(ctx, ref)
	if err == nil {
		return Resolved{Family: FamilySupplier, Supplier: o}, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return Resolved{}, apperr.Internal(err, "find supplier order")
	}

	f, err := s.repos.Farmer.FindByRef(ctx, ref)
	if err == nil {
		return Resolved{Family: FamilyFarmer, Farmer: f}, nil
	}
	if errors.Is(err, db.ErrNotFound) {
		return Resolved{}, apperr.NotFound("order not found")
	}
	return Resolved{}, apperr.Internal(err, "find farmer order")
}

// UpdateStatus is the admin status overwrite. Any enum value is accepted.
func (s *Service) UpdateStatus(ctx context.Context, caller identity.Caller, ref, rawStatus, note string) (Resolved, error) {
	if !caller.IsAdmin() {
		return Resolved{}, apperr.Forbidden("admin access required")
	}
	status, err := parseStatus(rawStatus)
	if err != nil {
		return Resolved{}, err
	}

	res, err := s.Resolve(ctx, ref)
	if err != nil {
		return Resolved{}, err
	}
	previous := res.Status()
	now := s.now()

	switch res.Family {
	case FamilySupplier:
		updated, err := s.repos.Supplier.AppendStatus(ctx, res.Supplier.ID, "", s.entry(status, note, caller.ID, now))
		if err != nil {
			return Resolved{}, s.writeErr(err, "update supplier order")
		}
		res.Supplier = updated
	case FamilyFarmer:
		updated, err := s.repos.Farmer.SetStatus(ctx, res.Farmer.ID, status, now)
		if err != nil {
			return Resolved{}, s.writeErr(err, "update farmer order")
		}
		res.Farmer = updated
	}

	s.metrics.StatusUpdated(string(res.Family))
	s.trail.Audit(ctx, models.AuditLog{
		Actor:      caller.ID,
		Action:     activity.ActionOrderStatusChanged,
		TargetType: string(res.Family) + "_order",
		TargetID:   ref,
		Details:    map[string]any{"from": previous, "to": status},
	})
	return res, nil
}

// UpdateSupplierOrder sets the status of a seller's own order and records
// the change in its history.
func (s *Service) UpdateSupplierOrder(ctx context.Context, caller identity.Caller, ref, rawStatus, note string) (*models.Order, error) {
	if err := s.sellers.Admit(caller); err != nil {
		return nil, err
	}
	status, err := parseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	o, err := s.repos.Supplier.FindByRef(ctx, ref)
	if err != nil {
		return nil, s.writeErr(err, "find supplier order")
	}
	if err := s.sellers.Authorize(caller, o); err != nil {
		return nil, err
	}

	owner := caller.ID
	if caller.IsSentinel() || caller.IsAdmin() {
		owner = ""
	}
	if caller.IsSentinel() {
		logging.FromContext(ctx, s.log).Warn("placeholder seller id bypassed order ownership",
			zap.String("order", ref),
			zap.String("owner", o.SellerID))
	}

	updated, err := s.repos.Supplier.AppendStatus(ctx, o.ID, owner, s.entry(status, note, caller.ID, s.now()))
	if err != nil {
		return nil, s.writeErr(err, "update supplier order")
	}
	s.metrics.StatusUpdated(string(FamilySupplier))
	return updated, nil
}

// Cancel cancels a buyer's marketplace order and returns the refund amount.
//
// Stock is restored before the order write and the two are not atomic. If the
// order leaves the cancellable states in between, the restock stays applied
// and is reported at error level.
func (s *Service) Cancel(ctx context.Context, userID, ref, reason string) (*models.MarketplaceOrder, float64, error) {
	if userID == "" {
		return nil, 0, apperr.Validation("userId is required")
	}
	log := logging.FromContext(ctx, s.log)

	o, err := s.Marketplace(ctx, userID, ref)
	if err != nil {
		return nil, 0, err
	}
	if !o.Status.Cancellable() {
		return nil, 0, apperr.Validation(fmt.Sprintf("order cannot be cancelled from status %q", o.Status))
	}

	restored := 0
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			continue
		}
		if err := s.stock.Restock(ctx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				log.Warn("cancelled item references a missing product",
					zap.String("order", ref),
					zap.String("product", item.ProductID.Hex()))
				continue
			}
			return nil, 0, apperr.Internal(err, "restore stock")
		}
		restored += item.Quantity
	}
	s.metrics.Restored(restored)

	updated, err := s.repos.Marketplace.MarkCancelled(ctx, o.ID, reason, s.entry(models.OrderCancelled, reason, userID, s.now()))
	if err != nil {
		if errors.Is(err, ErrNotCancellable) {
			log.Error("stock restored but order was no longer cancellable",
				zap.String("order", ref),
				zap.Int("units", restored))
			return nil, 0, apperr.Validation("order cannot be cancelled anymore")
		}
		return nil, 0, apperr.Internal(err, "cancel order")
	}
	s.metrics.Cancelled()

	s.trail.Notify(ctx, models.Notification{
		Type:       activity.NotifyOrderCancelled,
		Title:      "Order cancelled",
		Message:    fmt.Sprintf("Order %s was cancelled by the buyer: %s", orderLabel(updated.OrderNumber, ref), reason),
		TargetType: string(FamilyMarketplace) + "_order",
		TargetID:   updated.ID.Hex(),
	})
	return updated, o.Total, nil
}

// Marketplace returns a buyer's own marketplace order.
func (s *Service) Marketplace(ctx context.Context, userID, ref string) (*models.MarketplaceOrder, error) {
	o, err := s.repos.Marketplace.FindByRef(ctx, ref)
	if err != nil {
		return nil, s.writeErr(err, "find marketplace order")
	}
	caller := identity.Caller{Kind: identity.KindUser, ID: userID}
	if err := authz.UserOwned.Authorize(caller, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Recent(ctx context.Context, q RecentQuery) ([]models.Order, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("invalid order status %q", q.Status))
	}
	if q.Limit <= 0 {
		return []models.Order{}, nil
	}
	list, err := s.repos.Supplier.Recent(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err, "list recent orders")
	}
	return list, nil
}

func (s *Service) TopProducts(ctx context.Context, sellerID string, limit int) ([]models.ProductSales, error) {
	if limit <= 0 {
		return []models.ProductSales{}, nil
	}
	list, err := s.repos.Supplier.TopProducts(ctx, sellerID, limit)
	if err != nil {
		return nil, apperr.Internal(err, "aggregate top products")
	}
	return list, nil
}

func (s *Service) entry(status models.OrderStatus, note, by string, at time.Time) models.StatusEntry {
	return models.StatusEntry{
		ID:        s.newID(),
		Status:    status,
		Note:      note,
		ChangedBy: by,
		ChangedAt: at,
	}
}

func (s *Service) writeErr(err error, op string) error {
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound("order not found")
	}
	return apperr.Internal(err, op)
}

func orderLabel(number, ref string) string {
	if number != "" {
		return number
	}
	return ref
}
