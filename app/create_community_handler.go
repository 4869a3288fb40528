package app

import (
	"context"

	"github.com/go-playground/validator/v10"

	"remarket/domain"
	"remarket/pkg/httperror"
)

type CreateCommunityHandler struct {
	repository Repository
}

type CreateCommunityRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Location    string `json:"location" validate:"max=100"`
}

type CreateCommunityResponse struct {
	Community domain.Community `json:"community"`
}

func NewCreateCommunityHandler(repository Repository) *CreateCommunityHandler {
	return &CreateCommunityHandler{
		repository: repository,
	}
}

func (h CreateCommunityHandler) Handle(ctx context.Context, req *CreateCommunityRequest) (*CreateCommunityResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"community.create.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"community.create.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	community, err := h.repository.CreateCommunity(ctx, req.Name, req.Description, req.Location)
	if err != nil {
		return nil, httperror.InternalServerError(
			"community.create.create_failed",
			"An error occurred while creating the community",
			nil,
		)
	}

	return &CreateCommunityResponse{
		Community: community,
	}, nil
}
