// Package memstore holds in-memory repositories with the same contracts as
// the Mongo ones. Handler and service tests run against them.
package memstore

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agromart/db"
	"agromart/models"
	"agromart/orders"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Products struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Product
	Err   error
}

func NewProducts(ps ...models.Product) *Products {
	p := &Products{items: map[primitive.ObjectID]models.Product{}}
	for _, prod := range ps {
		p.items[prod.ID] = prod
	}
	return p
}

func (p *Products) Get(id primitive.ObjectID) models.Product {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items[id]
}

func (p *Products) LowStock(_ context.Context, sellerID string, limit int) ([]models.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	out := []models.Product{}
	for _, prod := range p.items {
		if prod.LowStock() && (sellerID == "" || prod.SellerID == sellerID) {
			out = append(out, prod)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StockQuantity != out[j].StockQuantity {
			return out[i].StockQuantity < out[j].StockQuantity
		}
		return lessID(out[i].ID, out[j].ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (p *Products) Restock(_ context.Context, id primitive.ObjectID, qty int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	prod, ok := p.items[id]
	if !ok {
		return db.ErrNotFound
	}
	prod.StockQuantity += qty
	p.items[id] = prod
	return nil
}

type SupplierOrders struct {
	mu     sync.Mutex
	orders []models.Order
	Err    error
}

func NewSupplierOrders(os ...models.Order) *SupplierOrders {
	return &SupplierOrders{orders: os}
}

func (s *SupplierOrders) Get(id primitive.ObjectID) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o
		}
	}
	return models.Order{}
}

func (s *SupplierOrders) FindByRef(_ context.Context, ref string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, o := range s.orders {
		if matchesRef(o.ID, o.OrderNumber, ref) {
			found := o
			return &found, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *SupplierOrders) AppendStatus(_ context.Context, id primitive.ObjectID, sellerID string, entry models.StatusEntry) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		o := &s.orders[i]
		if o.ID != id || (sellerID != "" && o.SellerID != sellerID) {
			continue
		}
		o.Status = entry.Status
		o.UpdatedAt = entry.ChangedAt
		o.StatusHistory = append(o.StatusHistory, entry)
		updated := *o
		return &updated, nil
	}
	return nil, db.ErrNotFound
}

func (s *SupplierOrders) Recent(_ context.Context, q orders.RecentQuery) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	search := strings.ToLower(q.Search)
	out := []models.Order{}
	for _, o := range s.orders {
		if q.SellerID != "" && o.SellerID != q.SellerID {
			continue
		}
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.OrderNumber), search) &&
			!strings.Contains(strings.ToLower(o.BuyerName), search) {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *SupplierOrders) TopProducts(_ context.Context, sellerID string, limit int) ([]models.ProductSales, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	byID := map[primitive.ObjectID]*models.ProductSales{}
	for _, o := range s.orders {
		if o.PaymentStatus != models.PaymentPaid || (sellerID != "" && o.SellerID != sellerID) {
			continue
		}
		for _, it := range o.Items {
			row, ok := byID[it.ProductID]
			if !ok {
				row = &models.ProductSales{ProductID: it.ProductID, Name: it.Name}
				byID[it.ProductID] = row
			}
			row.UnitsSold += it.Quantity
			row.Revenue += float64(it.Quantity) * it.Price
		}
	}
	out := make([]models.ProductSales, 0, len(byID))
	for _, row := range byID {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return lessID(out[i].ProductID, out[j].ProductID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type FarmerOrders struct {
	mu     sync.Mutex
	orders []models.FarmerOrder
}

func NewFarmerOrders(os ...models.FarmerOrder) *FarmerOrders {
	return &FarmerOrders{orders: os}
}

func (f *FarmerOrders) FindByRef(_ context.Context, ref string) (*models.FarmerOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if matchesRef(o.ID, o.OrderNumber, ref) {
			found := o
			return &found, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *FarmerOrders) SetStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus, at time.Time) (*models.FarmerOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
			f.orders[i].UpdatedAt = at
			updated := f.orders[i]
			return &updated, nil
		}
	}
	return nil, db.ErrNotFound
}

type MarketplaceOrders struct {
	mu     sync.Mutex
	orders []models.MarketplaceOrder
	// BeforeCancel runs inside MarkCancelled before the state check. Tests use
	// it to move the order concurrently.
	BeforeCancel func(o *models.MarketplaceOrder)
}

func NewMarketplaceOrders(os ...models.MarketplaceOrder) *MarketplaceOrders {
	return &MarketplaceOrders{orders: os}
}

func (m *MarketplaceOrders) Get(id primitive.ObjectID) models.MarketplaceOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o
		}
	}
	return models.MarketplaceOrder{}
}

func (m *MarketplaceOrders) FindByRef(_ context.Context, ref string) (*models.MarketplaceOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if matchesRef(o.ID, o.OrderNumber, ref) {
			found := o
			return &found, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *MarketplaceOrders) MarkCancelled(_ context.Context, id primitive.ObjectID, reason string, entry models.StatusEntry) (*models.MarketplaceOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		o := &m.orders[i]
		if o.ID != id {
			continue
		}
		if m.BeforeCancel != nil {
			m.BeforeCancel(o)
		}
		if !o.Status.Cancellable() {
			return nil, orders.ErrNotCancellable
		}
		at := entry.ChangedAt
		o.Status = models.OrderCancelled
		o.CancellationReason = reason
		o.CancelledAt = &at
		o.UpdatedAt = at
		o.StatusHistory = append(o.StatusHistory, entry)
		updated := *o
		return &updated, nil
	}
	return nil, orders.ErrNotCancellable
}

func matchesRef(id primitive.ObjectID, number, ref string) bool {
	return id.Hex() == ref || (number != "" && number == ref)
}

func lessID(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
