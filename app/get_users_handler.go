package app

import (
	"context"

	"remarket/domain"
	"remarket/pkg/httperror"
)

type GetUsersHandler struct {
	repository Repository
}

func NewGetUsersHandler(repository Repository) *GetUsersHandler {
	return &GetUsersHandler{
		repository: repository,
	}
}

type GetUsersRequest struct {
	Page     int `query:"page"`
	PageSize int `query:"pageSize"`
}

type GetUsersResponse struct {
	Users      []domain.User `json:"users"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalItems int           `json:"totalItems"`
	TotalPages int           `json:"totalPages"`
}

func (h GetUsersHandler) Handle(ctx context.Context, req *GetUsersRequest) (*GetUsersResponse, error) {
	page := max(req.Page, 1)
	pageSize := max(req.PageSize, 10)

	offset := (page - 1) * pageSize

	users, err := h.repository.GetUsers(ctx, pageSize, offset)
	if err != nil {
		return nil, httperror.InternalServerError(
			"user.index.failed",
			"Failed to retrieve users",
			nil,
		)
	}

	totalItems, err := h.repository.CountUsers(ctx)
	if err != nil {
		return nil, httperror.InternalServerError(
			"user.count_users.failed",
			"Failed to count users",
			nil,
		)
	}

	totalPages := (totalItems + pageSize - 1) / pageSize

	return &GetUsersResponse{
		Users:      users,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}
