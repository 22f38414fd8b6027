package orders

import (
	"errors"

	"agromart/models"
)

// Family names the collection an order was resolved from.
type Family string

const (
	FamilySupplier    Family = "supplier"
	FamilyFarmer      Family = "farmer"
	FamilyMarketplace Family = "marketplace"
)

// ErrNotCancellable is returned when a conditional cancel finds the order
// already moved out of the cancellable states.
var ErrNotCancellable = errors.New("order is no longer cancellable")

// Resolved is an order found by probing the supplier collection first and
// the farmer collection second. Exactly one of Supplier or Farmer is set.
type Resolved struct {
	Family   Family
	Supplier *models.Order
	Farmer   *models.FarmerOrder
}

func (r Resolved) Status() models.OrderStatus {
	switch r.Family {
	case FamilySupplier:
		return r.Supplier.Status
	case FamilyFarmer:
		return r.Farmer.Status
	}
	return ""
}

// Order returns the concrete document for serialization.
func (r Resolved) Order() any {
	switch r.Family {
	case FamilySupplier:
		return r.Supplier
	case FamilyFarmer:
		return r.Farmer
	}
	return nil
}

// RecentQuery filters the recent orders listing.
type RecentQuery struct {
	SellerID string
	Status   models.OrderStatus
	Search   string
	Limit    int
}
