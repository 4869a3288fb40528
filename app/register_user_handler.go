package app

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"

	"remarket/domain"
	"remarket/pkg/auth"
	"remarket/pkg/httperror"
)

type RegisterUserHandler struct {
	repository Repository
}

type RegisterUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"max=100"`
	Location string `json:"location" validate:"max=100"`
}

type RegisterUserResponse struct {
	User domain.User `json:"user"`
}

func NewRegisterUserHandler(repository Repository) *RegisterUserHandler {
	return &RegisterUserHandler{
		repository: repository,
	}
}

func (h RegisterUserHandler) Handle(ctx context.Context, req *RegisterUserRequest) (*RegisterUserResponse, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			return nil, httperror.BadRequest(
				"user.register.validation_failed",
				"Validation failed for the request",
				ve.Error(),
			)
		}

		return nil, httperror.InternalServerError(
			"user.register.validation_error",
			"An unexpected validation error occurred",
			nil,
		)
	}

	if _, err := h.repository.GetUserByEmail(ctx, req.Email); !errors.Is(err, sql.ErrNoRows) {
		if err == nil {
			return nil, httperror.Conflict("user.register.email_taken", "Email already registered", nil)
		}
		return nil, httperror.InternalServerError("user.register.failed", "Failed to check email", nil)
	}

	if _, err := h.repository.GetUserByUsername(ctx, req.Username); !errors.Is(err, sql.ErrNoRows) {
		if err == nil {
			return nil, httperror.Conflict("user.register.username_taken", "Username already taken", nil)
		}
		return nil, httperror.InternalServerError("user.register.failed", "Failed to check username", nil)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, httperror.InternalServerError("user.register.hash_failed", "Failed to process password", nil)
	}

	user, err := h.repository.CreateUser(ctx, req.Username, req.Email, hash, req.FullName, req.Location)
	if err != nil {
		return nil, httperror.InternalServerError("user.register.create_failed", "An error occurred while creating the user", nil)
	}

	return &RegisterUserResponse{
		User: user,
	}, nil
}
