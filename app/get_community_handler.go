package app

import (
	"context"
	"database/sql"
	"errors"

	"remarket/domain"
	"remarket/pkg/httperror"
)

type GetCommunityHandler struct {
	repository Repository
}

type GetCommunityRequest struct {
	ID string `params:"id"`
}

type GetCommunityResponse struct {
	Community domain.Community `json:"community"`
}

func NewGetCommunityHandler(repository Repository) *GetCommunityHandler {
	return &GetCommunityHandler{
		repository: repository,
	}
}

func (h GetCommunityHandler) Handle(ctx context.Context, req *GetCommunityRequest) (*GetCommunityResponse, error) {
	community, err := h.repository.GetCommunityByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"community.show.not_found",
				"Community not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"community.show.fetch_failed",
			"An error occurred while fetching the community",
			nil,
		)
	}

	return &GetCommunityResponse{
		Community: community,
	}, nil
}
