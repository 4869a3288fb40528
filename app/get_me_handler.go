package app

import (
	"context"

	"remarket/domain"
	"remarket/pkg/httperror"
)

type GetMeHandler struct {
	repository Repository
}

func NewGetMeHandler(repository Repository) *GetMeHandler {
	return &GetMeHandler{
		repository: repository,
	}
}

type GetMeRequest struct {
}

type GetMeResponse struct {
	User domain.User `json:"user"`
}

func (h GetMeHandler) Handle(ctx context.Context, _ *GetMeRequest) (*GetMeResponse, error) {
	userID := ctx.Value("UserID").(string)

	user, err := h.repository.GetUser(ctx, userID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"user.me.failed",
			"Failed to retrieve user",
			nil,
		)
	}

	return &GetMeResponse{
		User: user,
	}, nil
}
