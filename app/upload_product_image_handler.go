package app

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"remarket/domain"
	"remarket/pkg/events"
	"remarket/pkg/httperror"
	"remarket/pkg/imaging"
	"remarket/pkg/storage"
)

type UploadProductImagesHandler struct {
	repository     Repository
	store          storage.ImageStore
	eventPublisher events.Publisher
}

func NewUploadProductImagesHandler(repository Repository, store storage.ImageStore, eventPublisher events.Publisher) *UploadProductImagesHandler {
	return &UploadProductImagesHandler{
		repository:     repository,
		store:          store,
		eventPublisher: eventPublisher,
	}
}

type UploadProductImagesRequest struct {
	ProductID string `params:"id"`
}

type UploadProductImagesResponse struct {
	ProductID string                `json:"productID"`
	Images    []domain.ProductImage `json:"images"`
}

// Handle accepts one or more multipart files under the "file" field,
// normalizes each, writes them to the image store, and records the batch in
// one transaction. The batch either fully succeeds or fully fails.
func (h *UploadProductImagesHandler) Handle(ctx context.Context, req *UploadProductImagesRequest) (*UploadProductImagesResponse, error) {
	fiberCtx := ctx.Value("fiber")
	if fiberCtx == nil {
		return nil, httperror.InternalServerError("upload.no_context", "Fiber context not found", nil)
	}

	c, ok := fiberCtx.(*fiber.Ctx)
	if !ok {
		return nil, httperror.InternalServerError("upload.invalid_context", "Invalid Fiber context", nil)
	}

	userID := ctx.Value("UserID").(string)

	product, err := h.repository.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound("product.image.upload.not_found", "Product not found", nil)
		}
		return nil, httperror.InternalServerError("product.image.upload.failed", "Failed to retrieve product", nil)
	}
	if product.SellerID != userID {
		return nil, httperror.Forbidden("product.image.upload.forbidden", "You are not authorized to upload images for this product", nil)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, httperror.BadRequest("product.image.upload.invalid_form", "Multipart form is required", fiber.Map{"error": err.Error()})
	}

	files := form.File["file"]
	if len(files) == 0 {
		return nil, httperror.BadRequest("product.image.upload.missing_file", "At least one image file is required (use 'file' field)", nil)
	}

	// Normalize everything before touching disk or database, so a bad file
	// anywhere in the batch rejects the whole batch with nothing persisted.
	results := make([]*imaging.Result, 0, len(files))
	for _, file := range files {
		reader, err := file.Open()
		if err != nil {
			return nil, httperror.InternalServerError("product.image.upload.file_open_error", "Failed to open uploaded file", err.Error())
		}

		data, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			return nil, httperror.InternalServerError("product.image.upload.file_read_error", "Failed to read file content", err.Error())
		}

		res, err := imaging.Process(data, file.Filename, file.Header.Get("Content-Type"), req.ProductID)
		if err != nil {
			var verr *imaging.ValidationError
			if errors.As(err, &verr) {
				return nil, httperror.BadRequest("product.image.upload.invalid_file", verr.Reason, fiber.Map{"filename": file.Filename})
			}
			var derr *imaging.DecodeError
			if errors.As(err, &derr) {
				return nil, httperror.BadRequest("product.image.upload.undecodable", "Invalid image file or corrupted data", fiber.Map{"filename": file.Filename})
			}
			return nil, httperror.InternalServerError("product.image.upload.process_failed", "Failed to process image", err.Error())
		}

		results = append(results, res)
	}

	// Cheap early cap check; the insert transaction re-checks under a row
	// lock, this just avoids writing files that are doomed anyway.
	count, err := h.repository.CountProductImages(ctx, req.ProductID)
	if err != nil {
		return nil, httperror.InternalServerError("product.image.upload.count_failed", "Failed to count product images", nil)
	}
	if count+len(results) > domain.MaxProductImages {
		return nil, capacityError(count, len(results))
	}

	urls := make([]string, 0, len(results))
	written := make([]string, 0, len(results))
	for _, res := range results {
		url, err := h.store.Save(ctx, res.Filename, res.Data)
		if err != nil {
			h.removeFiles(ctx, written)
			return nil, httperror.InternalServerError("product.image.upload.store_failed", "Failed to store image", nil)
		}
		urls = append(urls, url)
		written = append(written, res.Filename)
	}

	images, err := h.repository.InsertProductImages(ctx, req.ProductID, urls)
	if err != nil {
		h.removeFiles(ctx, written)
		if errors.Is(err, domain.ErrImageLimit) {
			return nil, capacityError(count, len(results))
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound("product.image.upload.not_found", "Product not found", nil)
		}
		return nil, httperror.InternalServerError("product.image.upload.save_failed", "Failed to save image records", nil)
	}

	for _, img := range images {
		h.publishEvent(ctx, img)
	}

	return &UploadProductImagesResponse{
		ProductID: req.ProductID,
		Images:    images,
	}, nil
}

func capacityError(current, requested int) *httperror.Error {
	return httperror.Conflict(
		"product.image.upload.limit_exceeded",
		"A product can carry at most 6 images",
		fiber.Map{
			"current":   current,
			"requested": requested,
			"max":       domain.MaxProductImages,
		},
	)
}

// removeFiles undoes store writes when the batch is rolled back.
func (h *UploadProductImagesHandler) removeFiles(ctx context.Context, filenames []string) {
	for _, name := range filenames {
		if _, err := h.store.Delete(ctx, name); err != nil {
			zap.L().Warn("Failed to remove image file during upload rollback",
				zap.String("filename", name),
				zap.Error(err),
			)
		}
	}
}

func (h *UploadProductImagesHandler) publishEvent(ctx context.Context, img domain.ProductImage) {
	if h.eventPublisher == nil {
		return
	}

	eventPayload := events.ProductImageAddedPayload{
		ID:        img.ID,
		ProductID: img.ProductID,
		ImageURL:  img.URL,
		IsPrimary: img.IsPrimary,
		CreatedAt: time.Now(),
	}

	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: events.GenerateCorrelationID(),
		Service:       "remarket",
	}

	event := events.NewEvent(
		events.ProductImageAddedEvent,
		events.EventVersionV1,
		eventPayload,
		headers,
	)

	if err := h.eventPublisher.Publish(ctx, events.ProductExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish product.image.uploaded event",
			zap.String("imageID", img.ID),
			zap.Error(err),
		)
	}
}
