package product

import (
	"context"

	"remarket/domain"
	"remarket/pkg/httperror"
)

type GetProductsHandler struct {
	repository Repository
}

func NewGetProductsHandler(repository Repository) *GetProductsHandler {
	return &GetProductsHandler{
		repository: repository,
	}
}

type GetProductsRequest struct {
	Page        int     `query:"page"`
	PageSize    int     `query:"pageSize"`
	CategoryID  *string `query:"categoryID"`
	CommunityID *string `query:"communityID"`
}

type GetProductsResponse struct {
	Products   []domain.Product `json:"products"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalItems int              `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
}

// Handle lists products for the public feed: unsold only, newest first.
func (h GetProductsHandler) Handle(ctx context.Context, req *GetProductsRequest) (*GetProductsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}

	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	offset := (page - 1) * pageSize

	filter := Filter{
		CategoryID:  req.CategoryID,
		CommunityID: req.CommunityID,
	}

	products, err := h.repository.GetProducts(ctx, filter, pageSize, offset)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.index.failed",
			"Failed to retrieve products",
			nil,
		)
	}

	totalItems, err := h.repository.CountProducts(ctx, filter)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.count_products.failed",
			"Failed to count products",
			nil,
		)
	}

	totalPages := (totalItems + pageSize - 1) / pageSize

	return &GetProductsResponse{
		Products:   products,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}
