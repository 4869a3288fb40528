package app

import (
	"context"
	"database/sql"
	"errors"

	"remarket/pkg/httperror"
)

type LeaveCommunityHandler struct {
	repository Repository
}

type LeaveCommunityRequest struct {
	ID string `params:"id"`
}

type LeaveCommunityResponse struct{}

func NewLeaveCommunityHandler(repository Repository) *LeaveCommunityHandler {
	return &LeaveCommunityHandler{
		repository: repository,
	}
}

func (h LeaveCommunityHandler) Handle(ctx context.Context, req *LeaveCommunityRequest) (*LeaveCommunityResponse, error) {
	userID, ok := ctx.Value("UserID").(string)
	if !ok || userID == "" {
		return nil, httperror.Unauthorized(
			"community.leave.unauthorized",
			"Authentication is required to leave a community",
			nil,
		)
	}

	if _, err := h.repository.GetCommunityByID(ctx, req.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"community.leave.not_found",
				"Community not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"community.leave.fetch_failed",
			"An error occurred while fetching the community",
			nil,
		)
	}

	if err := h.repository.LeaveCommunity(ctx, req.ID, userID); err != nil {
		return nil, httperror.InternalServerError(
			"community.leave.leave_failed",
			"An error occurred while leaving the community",
			nil,
		)
	}

	return &LeaveCommunityResponse{}, httperror.NoContent(
		"community.leave.success",
		"Left the community",
		nil,
	)
}
