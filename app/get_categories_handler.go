package app

import (
	"context"

	"remarket/domain"
	"remarket/pkg/httperror"
)

type GetCategoriesHandler struct {
	repository Repository
}

type GetCategoriesRequest struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}

type GetCategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalItems int               `json:"total_items"`
	TotalPages int               `json:"total_pages"`
}

func NewGetCategoriesHandler(repository Repository) *GetCategoriesHandler {
	return &GetCategoriesHandler{
		repository: repository,
	}
}

func (h GetCategoriesHandler) Handle(ctx context.Context, req *GetCategoriesRequest) (*GetCategoriesResponse, error) {
	page := max(req.Page, 1)
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	totalItems, err := h.repository.CountCategories(ctx)
	if err != nil {
		return nil, httperror.InternalServerError(
			"category.list.count_failed",
			"An error occurred while counting categories",
			nil,
		)
	}

	categories, err := h.repository.GetCategories(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, httperror.InternalServerError(
			"category.list.fetch_failed",
			"An error occurred while fetching categories",
			nil,
		)
	}

	totalPages := (totalItems + pageSize - 1) / pageSize

	return &GetCategoriesResponse{
		Categories: categories,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}
