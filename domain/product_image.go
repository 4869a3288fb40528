package domain

import (
	"errors"
	"time"
)

// MaxProductImages caps the number of images a single product may carry.
const MaxProductImages = 6

// ErrImageLimit is returned when an insert would push a product past
// MaxProductImages. The whole batch is rejected, nothing is persisted.
var ErrImageLimit = errors.New("product image limit exceeded")

type ProductImage struct {
	ID        string    `json:"id" db:"id"`
	ProductID string    `json:"productID" db:"product_id"`
	URL       string    `json:"url" db:"url"`
	IsPrimary bool      `json:"isPrimary" db:"is_primary"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
