package app

import (
	"context"
	"database/sql"
	"errors"

	"remarket/pkg/httperror"
)

type JoinCommunityHandler struct {
	repository Repository
}

type JoinCommunityRequest struct {
	ID string `params:"id"`
}

type JoinCommunityResponse struct {
	Joined bool `json:"joined"`
}

func NewJoinCommunityHandler(repository Repository) *JoinCommunityHandler {
	return &JoinCommunityHandler{
		repository: repository,
	}
}

func (h JoinCommunityHandler) Handle(ctx context.Context, req *JoinCommunityRequest) (*JoinCommunityResponse, error) {
	userID, ok := ctx.Value("UserID").(string)
	if !ok || userID == "" {
		return nil, httperror.Unauthorized(
			"community.join.unauthorized",
			"Authentication is required to join a community",
			nil,
		)
	}

	if _, err := h.repository.GetCommunityByID(ctx, req.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"community.join.not_found",
				"Community not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"community.join.fetch_failed",
			"An error occurred while fetching the community",
			nil,
		)
	}

	if err := h.repository.JoinCommunity(ctx, req.ID, userID); err != nil {
		return nil, httperror.InternalServerError(
			"community.join.join_failed",
			"An error occurred while joining the community",
			nil,
		)
	}

	return &JoinCommunityResponse{
		Joined: true,
	}, nil
}
