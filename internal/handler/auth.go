package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quemtemboca/marketplace-api/internal/middleware"
	"github.com/quemtemboca/marketplace-api/internal/service"
)

// AuthHandler serves login, recovery and the current-caller endpoint.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

type loginReq struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type recoveryReq struct {
	Email string `json:"email" validate:"required,email"`
}

// Login: verify credentials and return a session with an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// Recovery: acknowledge a password recovery request.
func (h *AuthHandler) Recovery(c echo.Context) error {
	var req recoveryReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.RequestRecovery(ctx, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// Me returns the caller resolved by the auth guard.
func (h *AuthHandler) Me(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c.Request().Context())
	if !ok {
		return service.ErrMissingAuthHeader
	}
	return c.JSON(http.StatusOK, caller)
}
