package product

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"remarket/domain"
	"remarket/pkg/events"
	"remarket/pkg/httperror"
)

type CreateProductHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type CreateProductRequest struct {
	Title           string          `json:"title" validate:"required,max=100" db:"title"`
	Description     string          `json:"description" db:"description"`
	Price           decimal.Decimal `json:"price" validate:"required" db:"price"`
	Condition       string          `json:"condition" validate:"required,oneof=new like_new good fair poor" db:"condition"`
	Location        string          `json:"location" db:"location"`
	PreferredMeetup *string         `json:"preferredMeetup,omitempty" db:"preferred_meetup"`
	SellerID        string          `json:"sellerID,omitempty" db:"seller_id"`
	CategoryID      string          `json:"categoryID" validate:"required,uuid" db:"category_id"`
	CommunityIDs    []string        `json:"communityIDs,omitempty" db:"-"`
	ImageURLs       []string        `json:"imageURLs,omitempty" db:"-"`
}

type CreateProductResponse struct {
	Product domain.Product        `json:"product"`
	Images  []domain.ProductImage `json:"images"`
}

func NewCreateProductHandler(repository Repository, eventPublisher events.Publisher) *CreateProductHandler {
	return &CreateProductHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

func (e CreateProductHandler) Handle(ctx context.Context, req *CreateProductRequest) (*CreateProductResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"product.create.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"product.create.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	if req.Price.IsNegative() {
		return nil, httperror.BadRequest(
			"product.create.negative_price",
			"Price must not be negative",
			nil,
		)
	}

	// Checked before any row is written so an oversized batch leaves no
	// half-created product behind.
	if len(req.ImageURLs) > domain.MaxProductImages {
		return nil, httperror.Conflict(
			"product.create.image_limit",
			"A product can carry at most 6 images",
			nil,
		)
	}

	userID := ctx.Value("UserID").(string)
	req.SellerID = userID

	if _, err := e.repository.GetCategoryByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.BadRequest(
				"product.create.invalid_category",
				"Referenced category does not exist",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.create.category_lookup_failed",
			"Failed to verify category",
			nil,
		)
	}

	product, err := e.repository.Create(ctx, req)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.create.create_failed",
			"An error occurred while creating the product",
			nil,
		)
	}

	images := make([]domain.ProductImage, 0)
	if len(req.ImageURLs) > 0 {
		images, err = e.repository.InsertProductImages(ctx, product.ID, req.ImageURLs)
		if err != nil {
			if errors.Is(err, domain.ErrImageLimit) {
				return nil, httperror.Conflict(
					"product.create.image_limit",
					"A product can carry at most 6 images",
					nil,
				)
			}

			return nil, httperror.InternalServerError(
				"product.create.images_failed",
				"An error occurred while attaching product images",
				nil,
			)
		}
	}

	e.publishEvent(ctx, product)

	return &CreateProductResponse{
		Product: product,
		Images:  images,
	}, nil
}

func (e CreateProductHandler) publishEvent(ctx context.Context, product domain.Product) {
	if e.eventPublisher == nil {
		return
	}

	eventPayload := events.ProductCreatedPayload{
		ID:         product.ID,
		Title:      product.Title,
		Price:      product.Price,
		Condition:  product.Condition,
		SellerID:   product.SellerID,
		CategoryID: product.CategoryID,
		CreatedAt:  product.CreatedAt,
	}

	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: events.GenerateCorrelationID(),
		Service:       "remarket",
	}

	event := events.NewEvent(
		events.ProductCreatedEvent,
		events.EventVersionV1,
		eventPayload,
		headers,
	)

	if err := e.eventPublisher.Publish(ctx, events.ProductExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish product.created event",
			zap.String("productID", product.ID),
			zap.Error(err),
		)
	}
}
