package consumers

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"remarket/pkg/events"
	"remarket/pkg/storage"
)

// ImageCleanupHandler removes files left behind when products or
// individual images are deleted. Deleting a file that is already gone
// is treated as success, so redelivered events are safe to reprocess.
type ImageCleanupHandler struct {
	store  storage.ImageStore
	logger *zap.Logger
}

func NewImageCleanupHandler(store storage.ImageStore, logger *zap.Logger) *ImageCleanupHandler {
	return &ImageCleanupHandler{
		store:  store,
		logger: logger,
	}
}

func (h *ImageCleanupHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	zap.L().Info("Cleanup event received",
		zap.String("event", event.Event),
		zap.String("version", event.Version),
		zap.String("traceId", event.TraceID),
	)

	switch event.Event {
	case events.ProductDeletedEvent:
		return h.handleProductDeleted(ctx, event)
	case events.ProductImageDeletedEvent:
		return h.handleImageDeleted(ctx, event)
	default:
		zap.L().Warn("Unknown cleanup event type", zap.String("event", event.Event))
		return nil
	}
}

func (h *ImageCleanupHandler) handleProductDeleted(ctx context.Context, event *events.Event) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("malformed payload - marshal failed: %w", err)
	}

	var payload events.ProductDeletedPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return fmt.Errorf("malformed payload - unmarshal failed: %w", err)
	}

	if payload.ID == "" {
		return fmt.Errorf("malformed payload - product id missing")
	}

	zap.L().Info("Processing product.deleted event",
		zap.String("productId", payload.ID),
		zap.Int("imageCount", len(payload.ImageURLs)),
		zap.String("traceId", event.TraceID),
	)

	var failed int
	for _, url := range payload.ImageURLs {
		if err := h.removeFile(ctx, url, event.TraceID); err != nil {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to remove %d of %d image files", failed, len(payload.ImageURLs))
	}

	return nil
}

func (h *ImageCleanupHandler) handleImageDeleted(ctx context.Context, event *events.Event) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("malformed payload - marshal failed: %w", err)
	}

	var payload events.ProductImageDeletedPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return fmt.Errorf("malformed payload - unmarshal failed: %w", err)
	}

	if payload.ImageURL == "" {
		return fmt.Errorf("malformed payload - image url missing")
	}

	zap.L().Info("Processing product.image.deleted event",
		zap.String("productId", payload.ProductID),
		zap.String("imageUrl", payload.ImageURL),
		zap.String("traceId", event.TraceID),
	)

	return h.removeFile(ctx, payload.ImageURL, event.TraceID)
}

func (h *ImageCleanupHandler) removeFile(ctx context.Context, url, traceID string) error {
	filename := storage.FilenameFromURL(url)
	if filename == "" {
		zap.L().Warn("Skipping unparseable image URL",
			zap.String("url", url),
			zap.String("traceId", traceID),
		)
		return nil
	}

	removed, err := h.store.Delete(ctx, filename)
	if err != nil {
		zap.L().Error("Failed to remove image file",
			zap.String("filename", filename),
			zap.Error(err),
			zap.String("traceId", traceID),
		)
		return fmt.Errorf("failed to remove %s: %w", filename, err)
	}

	if !removed {
		zap.L().Info("Image file already absent",
			zap.String("filename", filename),
			zap.String("traceId", traceID),
		)
	}

	return nil
}
