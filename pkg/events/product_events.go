package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Domain constants
const (
	ProductDomain   = "product"
	ProductExchange = "remarket.product"
)

// Event names
const (
	ProductCreatedEvent      = "product.created"
	ProductUpdatedEvent      = "product.updated"
	ProductDeletedEvent      = "product.deleted"
	ProductSoldEvent         = "product.sold"
	ProductImageAddedEvent   = "product.image.uploaded"
	ProductImageDeletedEvent = "product.image.deleted"
)

// Event versions
const (
	EventVersionV1 = "v1"
)

// ProductCreatedPayload represents the payload for product.created event
type ProductCreatedPayload struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	Condition  string          `json:"condition"`
	SellerID   string          `json:"sellerId"`
	CategoryID string          `json:"categoryId"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ProductUpdatedPayload represents the payload for product.updated event
type ProductUpdatedPayload struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Condition string          `json:"condition"`
	IsSold    bool            `json:"isSold"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type ProductDeletedPayload struct {
	ID        string    `json:"id"`
	SellerID  string    `json:"sellerId"`
	ImageURLs []string  `json:"imageUrls"`
	DeletedAt time.Time `json:"deletedAt"`
}

type ProductSoldPayload struct {
	ID       string    `json:"id"`
	SellerID string    `json:"sellerId"`
	IsSold   bool      `json:"isSold"`
	MarkedAt time.Time `json:"markedAt"`
}

type ProductImageAddedPayload struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	ImageURL  string    `json:"imageUrl"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProductImageDeletedPayload struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	ImageURL  string    `json:"imageUrl"`
	DeletedAt time.Time `json:"deletedAt"`
}
