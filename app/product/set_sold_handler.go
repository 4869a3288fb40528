package product

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"remarket/domain"
	"remarket/pkg/events"
	"remarket/pkg/httperror"
)

type SetSoldHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

func NewSetSoldHandler(repository Repository, eventPublisher events.Publisher) *SetSoldHandler {
	return &SetSoldHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

type SetSoldRequest struct {
	ProductID string `params:"id"`
	IsSold    bool   `json:"isSold"`
}

type SetSoldResponse struct {
	Product domain.Product `json:"product"`
}

// Handle flips exactly the sold flag, nothing else.
func (h SetSoldHandler) Handle(ctx context.Context, req *SetSoldRequest) (*SetSoldResponse, error) {
	userID := ctx.Value("UserID").(string)

	product, err := h.repository.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"product.sold.not_found",
				"Product not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.sold.failed",
			"Failed to get product",
			nil,
		)
	}

	if product.SellerID != userID {
		return nil, httperror.Forbidden(
			"product.sold.forbidden",
			"You are not authorized to update this product",
			nil,
		)
	}

	updated, err := h.repository.SetSold(ctx, req.ProductID, userID, req.IsSold)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.sold.update_failed",
			"An error occurred while updating the sold status",
			nil,
		)
	}

	h.publishEvent(ctx, updated)

	return &SetSoldResponse{
		Product: updated,
	}, nil
}

func (h SetSoldHandler) publishEvent(ctx context.Context, product domain.Product) {
	if h.eventPublisher == nil {
		return
	}

	eventPayload := events.ProductSoldPayload{
		ID:       product.ID,
		SellerID: product.SellerID,
		IsSold:   product.IsSold,
		MarkedAt: time.Now(),
	}

	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: events.GenerateCorrelationID(),
		Service:       "remarket",
	}

	event := events.NewEvent(
		events.ProductSoldEvent,
		events.EventVersionV1,
		eventPayload,
		headers,
	)

	if err := h.eventPublisher.Publish(ctx, events.ProductExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish product.sold event",
			zap.String("productID", product.ID),
			zap.Error(err),
		)
	}
}
