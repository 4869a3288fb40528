package app

import (
	"context"
	"database/sql"
	"errors"

	"remarket/domain"
	"remarket/pkg/httperror"
)

type GetCategoryHandler struct {
	repository Repository
}

type GetCategoryRequest struct {
	ID string `params:"id"`
}

type GetCategoryResponse struct {
	Category domain.Category `json:"category"`
}

func NewGetCategoryHandler(repository Repository) *GetCategoryHandler {
	return &GetCategoryHandler{
		repository: repository,
	}
}

func (h GetCategoryHandler) Handle(ctx context.Context, req *GetCategoryRequest) (*GetCategoryResponse, error) {
	category, err := h.repository.GetCategoryByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"category.show.not_found",
				"Category not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"category.show.fetch_failed",
			"An error occurred while fetching the category",
			nil,
		)
	}

	return &GetCategoryResponse{
		Category: category,
	}, nil
}
