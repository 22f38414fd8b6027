package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// CancellableStatuses are the only source states a cancellation may leave.
var CancellableStatuses = []OrderStatus{OrderPending, OrderConfirmed, OrderProcessing}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped,
		OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

func (s OrderStatus) Cancellable() bool {
	for _, c := range CancellableStatuses {
		if s == c {
			return true
		}
	}
	return false
}

const PaymentPaid = "paid"

type OrderItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Name      string             `json:"name" bson:"name"`
	Price     float64            `json:"price" bson:"price"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

// StatusEntry is one append-only record in an order's statusHistory.
type StatusEntry struct {
	ID        string      `json:"id" bson:"id"`
	Status    OrderStatus `json:"status" bson:"status"`
	Note      string      `json:"note,omitempty" bson:"note,omitempty"`
	ChangedBy string      `json:"changedBy" bson:"changedBy"`
	ChangedAt time.Time   `json:"changedAt" bson:"changedAt"`
}

// Order is a supplier-side order owned by a seller.
type Order struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderNumber   string             `json:"orderNumber" bson:"orderNumber"`
	SellerID      string             `json:"sellerId" bson:"sellerId"`
	BuyerName     string             `json:"buyerName,omitempty" bson:"buyerName,omitempty"`
	BuyerEmail    string             `json:"buyerEmail,omitempty" bson:"buyerEmail,omitempty"`
	Items         []OrderItem        `json:"items" bson:"items"`
	Total         float64            `json:"total" bson:"total"`
	PaymentStatus string             `json:"paymentStatus" bson:"paymentStatus"`
	Status        OrderStatus        `json:"status" bson:"status"`
	StatusHistory []StatusEntry      `json:"statusHistory" bson:"statusHistory"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (o *Order) OwnerID() string { return o.SellerID }

// FarmerOrder is an order placed by a farmer with a seller.
type FarmerOrder struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderNumber string             `json:"orderNumber,omitempty" bson:"orderNumber,omitempty"`
	UserID      string             `json:"userId" bson:"userId"`
	SellerID    string             `json:"sellerId,omitempty" bson:"sellerId,omitempty"`
	Items       []OrderItem        `json:"items" bson:"items"`
	Total       float64            `json:"total" bson:"total"`
	Status      OrderStatus        `json:"status" bson:"status"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (o *FarmerOrder) OwnerID() string { return o.UserID }

// MarketplaceOrder is a checkout order placed by a marketplace buyer.
type MarketplaceOrder struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderNumber        string             `json:"orderNumber" bson:"orderNumber"`
	UserID             string             `json:"userId" bson:"userId"`
	Items              []OrderItem        `json:"items" bson:"items"`
	ShippingAddress    string             `json:"shippingAddress,omitempty" bson:"shippingAddress,omitempty"`
	PaymentMethod      string             `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	Total              float64            `json:"total" bson:"total"`
	Status             OrderStatus        `json:"status" bson:"status"`
	StatusHistory      []StatusEntry      `json:"statusHistory" bson:"statusHistory"`
	CancellationReason string             `json:"cancellationReason,omitempty" bson:"cancellationReason,omitempty"`
	CancelledAt        *time.Time         `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (o *MarketplaceOrder) OwnerID() string { return o.UserID }
