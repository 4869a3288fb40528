package app

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"remarket/domain"
	"remarket/pkg/events"
	"remarket/pkg/httperror"
	"remarket/pkg/storage"
)

type DeleteProductImageHandler struct {
	repository     Repository
	store          storage.ImageStore
	eventPublisher events.Publisher
}

func NewDeleteProductImageHandler(repository Repository, store storage.ImageStore, eventPublisher events.Publisher) *DeleteProductImageHandler {
	return &DeleteProductImageHandler{
		repository:     repository,
		store:          store,
		eventPublisher: eventPublisher,
	}
}

type DeleteProductImageRequest struct {
	ProductID string `params:"id"`
	ImageID   string `params:"imageId"`
}

type DeleteProductImageResponse struct {
}

func (h *DeleteProductImageHandler) Handle(ctx context.Context, req *DeleteProductImageRequest) (*DeleteProductImageResponse, error) {
	userID := ctx.Value("UserID").(string)

	product, err := h.repository.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound("product.image.destroy.not_found", "Product not found", nil)
		}
		return nil, httperror.InternalServerError("product.image.destroy.failed", "Failed to retrieve product", nil)
	}
	if product.SellerID != userID {
		return nil, httperror.Forbidden("product.image.destroy.forbidden", "You are not authorized to delete images of this product", nil)
	}

	image, err := h.repository.DeleteProductImage(ctx, req.ProductID, req.ImageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound("product.image.destroy.not_found", "Image not found", nil)
		}
		return nil, httperror.InternalServerError("product.image.destroy.failed", "Failed to delete image", nil)
	}

	// The row is gone; removing the file is best-effort.
	if _, err := h.store.Delete(ctx, storage.FilenameFromURL(image.URL)); err != nil {
		zap.L().Warn("Failed to delete image file",
			zap.String("imageID", image.ID),
			zap.String("url", image.URL),
			zap.Error(err),
		)
	}

	h.publishEvent(ctx, image)

	return &DeleteProductImageResponse{}, httperror.NoContent("product.image.destroy.success", "Image deleted successfully", nil)
}

func (h DeleteProductImageHandler) publishEvent(ctx context.Context, image domain.ProductImage) {
	if h.eventPublisher == nil {
		return
	}

	eventPayload := events.ProductImageDeletedPayload{
		ID:        image.ID,
		ProductID: image.ProductID,
		ImageURL:  image.URL,
		DeletedAt: time.Now(),
	}

	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: events.GenerateCorrelationID(),
		Service:       "remarket",
	}

	event := events.NewEvent(
		events.ProductImageDeletedEvent,
		events.EventVersionV1,
		eventPayload,
		headers,
	)

	if err := h.eventPublisher.Publish(ctx, events.ProductExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish product.image.deleted event",
			zap.String("imageID", image.ID),
			zap.Error(err),
		)
	}
}
