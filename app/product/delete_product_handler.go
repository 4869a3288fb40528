package product

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"remarket/pkg/events"
	"remarket/pkg/httperror"
	"remarket/pkg/storage"
)

type DeleteProductHandler struct {
	repository     Repository
	store          storage.ImageStore
	eventPublisher events.Publisher
}

func NewDeleteProductHandler(repository Repository, store storage.ImageStore, eventPublisher events.Publisher) *DeleteProductHandler {
	return &DeleteProductHandler{
		repository:     repository,
		store:          store,
		eventPublisher: eventPublisher,
	}
}

type DeleteProductRequest struct {
	ProductID string `params:"id"`
}

type DeleteProductResponse struct {
}

func (h DeleteProductHandler) Handle(ctx context.Context, req *DeleteProductRequest) (*DeleteProductResponse, error) {
	userID := ctx.Value("UserID").(string)

	product, err := h.repository.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"product.destroy.not_found",
				"Product not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.destroy.failed",
			"Failed to retrieve product",
			nil,
		)
	}

	if product.SellerID != userID {
		return nil, httperror.Forbidden(
			"product.destroy.forbidden",
			"You are not authorized to delete this product",
			nil,
		)
	}

	imageURLs, err := h.repository.DeleteProduct(ctx, req.ProductID, userID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.destroy.failed",
			"Failed to delete product",
			nil,
		)
	}

	// Backing files are removed best-effort after the database commit; the
	// database state is the source of truth, so failures here are logged
	// and never surface to the caller.
	for _, url := range imageURLs {
		if _, err := h.store.Delete(ctx, storage.FilenameFromURL(url)); err != nil {
			zap.L().Warn("Failed to delete image file during product cascade",
				zap.String("productID", req.ProductID),
				zap.String("url", url),
				zap.Error(err),
			)
		}
	}

	h.publishEvent(ctx, req.ProductID, userID, imageURLs)

	return &DeleteProductResponse{}, httperror.NoContent(
		"product.destroy.success",
		"Product deleted successfully",
		nil,
	)
}

func (h DeleteProductHandler) publishEvent(ctx context.Context, productID, sellerID string, imageURLs []string) {
	if h.eventPublisher == nil {
		return
	}

	eventPayload := events.ProductDeletedPayload{
		ID:        productID,
		SellerID:  sellerID,
		ImageURLs: imageURLs,
		DeletedAt: time.Now(),
	}

	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: events.GenerateCorrelationID(),
		Service:       "remarket",
	}

	event := events.NewEvent(
		events.ProductDeletedEvent,
		events.EventVersionV1,
		eventPayload,
		headers,
	)

	if err := h.eventPublisher.Publish(ctx, events.ProductExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish product.deleted event",
			zap.String("productID", productID),
			zap.Error(err),
		)
	}
}
