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

type UpdateProductHandler struct {
	repository     Repository
	eventPublisher events.Publisher
}

type UpdateProductRequest struct {
	ProductID       string           `params:"id" validate:"required,uuid"`
	Title           *string          `json:"title,omitempty" validate:"omitempty,max=100"`
	Description     *string          `json:"description,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	Condition       *string          `json:"condition,omitempty" validate:"omitempty,oneof=new like_new good fair poor"`
	Location        *string          `json:"location,omitempty"`
	PreferredMeetup *string          `json:"preferredMeetup,omitempty"`
	CategoryID      *string          `json:"categoryID,omitempty" validate:"omitempty,uuid"`
}

type UpdateProductResponse struct {
	Product domain.Product `json:"product"`
}

func NewUpdateProductHandler(repository Repository, eventPublisher events.Publisher) *UpdateProductHandler {
	return &UpdateProductHandler{
		repository:     repository,
		eventPublisher: eventPublisher,
	}
}

// Handle applies only the provided fields, leaving the rest untouched.
func (e UpdateProductHandler) Handle(ctx context.Context, req *UpdateProductRequest) (*UpdateProductResponse, error) {
	userID := ctx.Value("UserID").(string)

	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"product.update.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"product.update.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	if req.Price != nil && req.Price.IsNegative() {
		return nil, httperror.BadRequest(
			"product.update.negative_price",
			"Price must not be negative",
			nil,
		)
	}

	product, err := e.repository.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound(
				"product.update.not_found",
				"Product not found",
				nil,
			)
		}

		return nil, httperror.InternalServerError(
			"product.update.failed",
			"Failed to get product",
			nil,
		)
	}

	if product.SellerID != userID {
		return nil, httperror.Forbidden(
			"product.update.forbidden",
			"You are not authorized to update this product",
			nil,
		)
	}

	if req.Title != nil {
		product.Title = *req.Title
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Condition != nil {
		product.Condition = *req.Condition
	}
	if req.Location != nil {
		product.Location = *req.Location
	}
	if req.PreferredMeetup != nil {
		product.PreferredMeetup = req.PreferredMeetup
	}
	if req.CategoryID != nil {
		if _, err := e.repository.GetCategoryByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, httperror.BadRequest(
					"product.update.invalid_category",
					"Referenced category does not exist",
					nil,
				)
			}

			return nil, httperror.InternalServerError(
				"product.update.category_lookup_failed",
				"Failed to verify category",
				nil,
			)
		}
		product.CategoryID = *req.CategoryID
	}

	updated, err := e.repository.Update(ctx, product, userID)
	if err != nil {
		return nil, httperror.InternalServerError(
			"product.update.update_failed",
			"An error occurred while updating the product",
			nil,
		)
	}

	e.publishEvent(ctx, updated)

	return &UpdateProductResponse{
		Product: updated,
	}, nil
}

func (e UpdateProductHandler) publishEvent(ctx context.Context, product domain.Product) {
	if e.eventPublisher == nil {
		return
	}

	eventPayload := events.ProductUpdatedPayload{
		ID:        product.ID,
		Title:     product.Title,
		Price:     product.Price,
		Condition: product.Condition,
		IsSold:    product.IsSold,
		UpdatedAt: product.UpdatedAt,
	}

	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: events.GenerateCorrelationID(),
		Service:       "remarket",
	}

	event := events.NewEvent(
		events.ProductUpdatedEvent,
		events.EventVersionV1,
		eventPayload,
		headers,
	)

	if err := e.eventPublisher.Publish(ctx, events.ProductExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish product.updated event",
			zap.String("productID", product.ID),
			zap.Error(err),
		)
	}
}
