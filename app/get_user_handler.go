package app

import (
	"context"
	"database/sql"
	"errors"

	"remarket/domain"
	"remarket/pkg/httperror"
)

type GetUserHandler struct {
	repository Repository
}

func NewGetUserHandler(repository Repository) *GetUserHandler {
	return &GetUserHandler{
		repository: repository,
	}
}

type GetUserRequest struct {
	UserID string `params:"id"`
}

type GetUserResponse struct {
	User domain.User `json:"user"`
}

func (h GetUserHandler) Handle(ctx context.Context, req *GetUserRequest) (*GetUserResponse, error) {
	user, err := h.repository.GetUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"user.show.not_found",
				"User not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"user.show.failed",
			"Failed to retrieve user",
			nil,
		)
	}

	return &GetUserResponse{
		User: user,
	}, nil
}
