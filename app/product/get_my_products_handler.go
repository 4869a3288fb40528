package product

import (
	"context"

	"remarket/domain"
	"remarket/pkg/httperror"
)

type GetMyProductsHandler struct {
	repository Repository
}

func NewGetMyProductsHandler(repository Repository) *GetMyProductsHandler {
	return &GetMyProductsHandler{
		repository: repository,
	}
}

type GetMyProductsRequest struct {
	Page     int   `query:"page"`
	PageSize int   `query:"pageSize"`
	Sold     *bool `query:"sold"`
}

type GetMyProductsResponse struct {
	Products   []domain.Product `json:"products"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalItems int              `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
}

// Handle lists the caller's own products, sold and unsold alike unless the
// tri-state sold filter narrows them.
func (h GetMyProductsHandler) Handle(ctx context.Context, req *GetMyProductsRequest) (*GetMyProductsResponse, error) {
	userID := ctx.Value("UserID").(string)

	page := req.Page
	if page < 1 {
		page = 1
	}

	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	offset := (page - 1) * pageSize

	products, err := h.repository.GetUserProducts(ctx, userID, req.Sold, pageSize, offset)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.mine.failed",
			"Failed to retrieve your products",
			nil,
		)
	}

	totalItems, err := h.repository.CountUserProducts(ctx, userID, req.Sold)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.mine.count_failed",
			"Failed to count your products",
			nil,
		)
	}

	totalPages := (totalItems + pageSize - 1) / pageSize

	return &GetMyProductsResponse{
		Products:   products,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}
