package app

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"remarket/pkg/auth"
	"remarket/pkg/httperror"
)

type LoginHandler struct {
	repository Repository
	secret     string
	tokenTTL   time.Duration
}

func NewLoginHandler(repository Repository, secret string, tokenTTL time.Duration) *LoginHandler {
	return &LoginHandler{
		repository: repository,
		secret:     secret,
		tokenTTL:   tokenTTL,
	}
}

// LoginRequest matches the password-grant form shape: username + password
// as form fields.
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h LoginHandler) Handle(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, httperror.BadRequest("auth.login.missing_credentials", "Username and password are required", nil)
	}

	user, err := h.repository.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invalidCredentials()
		}
		return nil, httperror.InternalServerError("auth.login.failed", "Failed to look up user", nil)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, invalidCredentials()
	}

	token, err := auth.GenerateToken(h.secret, user.ID, user.Username, h.tokenTTL)
	if err != nil {
		return nil, httperror.InternalServerError("auth.login.token_failed", "Failed to issue token", nil)
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}

// invalidCredentials deliberately does not reveal whether the username or
// the password was wrong.
func invalidCredentials() *httperror.Error {
	return httperror.Unauthorized("auth.login.invalid_credentials", "Incorrect username or password", nil)
}
