package app

import (
	"context"

	"remarket/domain"
)

type Repository interface {
	Close() error

	CreateUser(ctx context.Context, username, email, passwordHash, fullName, location string) (domain.User, error)
	GetUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
	CountUsers(ctx context.Context) (int, error)
	GetUser(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	CreateCategory(ctx context.Context, name, icon string) (domain.Category, error)
	GetCategories(ctx context.Context, limit, offset int) ([]domain.Category, error)
	CountCategories(ctx context.Context) (int, error)
	GetCategoryByID(ctx context.Context, id string) (domain.Category, error)

	CreateCommunity(ctx context.Context, name, description, location string) (domain.Community, error)
	GetCommunities(ctx context.Context, limit, offset int) ([]domain.Community, error)
	CountCommunities(ctx context.Context) (int, error)
	GetCommunityByID(ctx context.Context, id string) (domain.Community, error)
	JoinCommunity(ctx context.Context, communityID, userID string) error
	LeaveCommunity(ctx context.Context, communityID, userID string) error

	GetProduct(ctx context.Context, id string) (domain.Product, error)
	GetProductImages(ctx context.Context, productID string) ([]domain.ProductImage, error)
	GetProductImage(ctx context.Context, productID, imageID string) (domain.ProductImage, error)
	CountProductImages(ctx context.Context, productID string) (int, error)
	InsertProductImages(ctx context.Context, productID string, urls []string) ([]domain.ProductImage, error)
	DeleteProductImage(ctx context.Context, productID, imageID string) (domain.ProductImage, error)
}
