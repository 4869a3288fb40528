package app

import (
	"context"

	"remarket/domain"
	"remarket/pkg/httperror"
)

type GetCommunitiesHandler struct {
	repository Repository
}

type GetCommunitiesRequest struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}

type GetCommunitiesResponse struct {
	Communities []domain.Community `json:"communities"`
	Page        int                `json:"page"`
	PageSize    int                `json:"page_size"`
	TotalItems  int                `json:"total_items"`
	TotalPages  int                `json:"total_pages"`
}

func NewGetCommunitiesHandler(repository Repository) *GetCommunitiesHandler {
	return &GetCommunitiesHandler{
		repository: repository,
	}
}

func (h GetCommunitiesHandler) Handle(ctx context.Context, req *GetCommunitiesRequest) (*GetCommunitiesResponse, error) {
	page := max(req.Page, 1)
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	totalItems, err := h.repository.CountCommunities(ctx)
	if err != nil {
		return nil, httperror.InternalServerError(
			"community.list.count_failed",
			"An error occurred while counting communities",
			nil,
		)
	}

	communities, err := h.repository.GetCommunities(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, httperror.InternalServerError(
			"community.list.fetch_failed",
			"An error occurred while fetching communities",
			nil,
		)
	}

	totalPages := (totalItems + pageSize - 1) / pageSize

	return &GetCommunitiesResponse{
		Communities: communities,
		Page:        page,
		PageSize:    pageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
	}, nil
}
