package app

import (
	"context"

	"github.com/go-playground/validator/v10"

	"remarket/domain"
	"remarket/pkg/httperror"
)

type CreateCategoryHandler struct {
	repository Repository
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=50"`
	Icon string `json:"icon" validate:"max=50"`
}

type CreateCategoryResponse struct {
	Category domain.Category `json:"category"`
}

func NewCreateCategoryHandler(repository Repository) *CreateCategoryHandler {
	return &CreateCategoryHandler{
		repository: repository,
	}
}

func (h CreateCategoryHandler) Handle(ctx context.Context, req *CreateCategoryRequest) (*CreateCategoryResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"category.create.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"category.create.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	category, err := h.repository.CreateCategory(ctx, req.Name, req.Icon)
	if err != nil {
		return nil, httperror.InternalServerError(
			"category.create.create_failed",
			"An error occurred while creating the category",
			nil,
		)
	}

	return &CreateCategoryResponse{
		Category: category,
	}, nil
}
