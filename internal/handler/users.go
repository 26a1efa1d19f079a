package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quemtemboca/marketplace-api/internal/middleware"
	"github.com/quemtemboca/marketplace-api/internal/model"
	"github.com/quemtemboca/marketplace-api/internal/service"
)

// UserHandler serves the account endpoints.  Responses only ever carry the
// sanitized user projection.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

// CreateUserRequest is the body of a registration.  The admin bootstrap
// command validates its flags against the same rules.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword,hashable"`
}

type updateUserReq struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=32"`
	Password *string `json:"password" validate:"omitempty,strongpassword,hashable"`
}

// Create registers a new account.
func (h *UserHandler) Create(c echo.Context) error {
	var req CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.FindAll(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.FindOne(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// Update changes the username and/or password of the caller's own account,
// or of any account when the caller is an admin.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateUserReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Update(ctx, caller(c), id, service.UpdateInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// Delete removes an account under the same rule as Update.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Remove(ctx, caller(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// pathID parses the :id parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Validation failed (numeric string is expected)")
	}
	return id, nil
}

// caller returns the guard-resolved caller.  Unguarded routes get the zero
// Caller, which owns nothing and is not an admin.
func caller(c echo.Context) model.Caller {
	cl, _ := middleware.CallerFrom(c.Request().Context())
	return cl
}
