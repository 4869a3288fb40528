package product

import (
	"context"
	"database/sql"
	"errors"

	"remarket/domain"
	"remarket/pkg/httperror"
)

type GetProductHandler struct {
	repository Repository
}

func NewGetProductHandler(repository Repository) *GetProductHandler {
	return &GetProductHandler{
		repository: repository,
	}
}

type GetProductRequest struct {
	ProductID string `params:"id"`
}

type GetProductResponse struct {
	Product      domain.Product        `json:"product"`
	Images       []domain.ProductImage `json:"images"`
	CommunityIDs []string              `json:"communityIDs"`
}

func (h GetProductHandler) Handle(ctx context.Context, req *GetProductRequest) (*GetProductResponse, error) {
	product, err := h.repository.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"product.show.not_found",
				"Product not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.show.failed",
			"Failed to retrieve product",
			nil,
		)
	}

	images, err := h.repository.GetProductImages(ctx, product.ID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.show.images_failed",
			"Failed to retrieve product images",
			nil,
		)
	}

	communityIDs, err := h.repository.GetProductCommunityIDs(ctx, product.ID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.show.communities_failed",
			"Failed to retrieve product communities",
			nil,
		)
	}

	return &GetProductResponse{
		Product:      product,
		Images:       images,
		CommunityIDs: communityIDs,
	}, nil
}
