package product

import (
	"context"

	"remarket/domain"
)

// Filter narrows the public product listing.
type Filter struct {
	CategoryID  *string
	CommunityID *string
}

type Repository interface {
	Close() error
	GetProducts(ctx context.Context, filter Filter, limit, offset int) ([]domain.Product, error)
	CountProducts(ctx context.Context, filter Filter) (int, error)
	GetUserProducts(ctx context.Context, userID string, sold *bool, limit, offset int) ([]domain.Product, error)
	CountUserProducts(ctx context.Context, userID string, sold *bool) (int, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	GetUserProduct(ctx context.Context, id string, userID string) (domain.Product, error)
	Create(ctx context.Context, req *CreateProductRequest) (domain.Product, error)
	Update(ctx context.Context, p domain.Product, userID string) (domain.Product, error)
	SetSold(ctx context.Context, id, userID string, sold bool) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string, userID string) ([]string, error)
	GetCategoryByID(ctx context.Context, id string) (domain.Category, error)
	GetProductImages(ctx context.Context, productID string) ([]domain.ProductImage, error)
	InsertProductImages(ctx context.Context, productID string, urls []string) ([]domain.ProductImage, error)
	GetProductCommunityIDs(ctx context.Context, productID string) ([]string, error)
}
