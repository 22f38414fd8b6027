package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

type Product struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SellerID         string             `json:"sellerId" bson:"sellerId"`
	Name             string             `json:"name" bson:"name"`
	SKU              string             `json:"sku,omitempty" bson:"sku,omitempty"`
	Category         string             `json:"category,omitempty" bson:"category,omitempty"`
	Unit             string             `json:"unit,omitempty" bson:"unit,omitempty"`
	Price            float64            `json:"price" bson:"price"`
	StockQuantity    int                `json:"stockQuantity" bson:"stockQuantity"`
	ReorderThreshold int                `json:"reorderThreshold" bson:"reorderThreshold"`
	Status           ProductStatus      `json:"status" bson:"status"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// LowStock reports whether stock is at or below the reorder threshold.
func (p Product) LowStock() bool {
	return p.StockQuantity <= p.ReorderThreshold
}

// ProductSales is one row of the top-products aggregation.
type ProductSales struct {
	ProductID primitive.ObjectID `json:"productId" bson:"_id"`
	Name      string             `json:"name" bson:"name"`
	UnitsSold int                `json:"unitsSold" bson:"unitsSold"`
	Revenue   float64            `json:"revenue" bson:"revenue"`
}
