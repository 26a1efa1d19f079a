package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/quemtemboca/marketplace-api/internal/logutil"
	"github.com/quemtemboca/marketplace-api/internal/model"
	"github.com/quemtemboca/marketplace-api/internal/queue"
	"github.com/quemtemboca/marketplace-api/internal/repository"
	"github.com/quemtemboca/marketplace-api/internal/utils"
)

// UserStore is the persistence surface used by UserService.  It is
// implemented by *repository.UserRepo.
type UserStore interface {
	CredentialStore
	Create(ctx context.Context, u *model.User) error
	GetLoggedInUser(ctx context.Context, id uint64) (model.Caller, error)
	FindAll(ctx context.Context) ([]model.PublicUser, error)
	FindOne(ctx context.Context, id uint64) (model.PublicUser, error)
	Update(ctx context.Context, id uint64, upd repository.UserUpdate) (model.PublicUser, error)
	Remove(ctx context.Context, id uint64) (model.PublicUser, error)
}

type UserService struct {
	users  UserStore
	hasher *utils.Hasher
	events EventPublisher
}

func NewUserService(users UserStore, hasher *utils.Hasher, events EventPublisher) *UserService {
	return &UserService{users: users, hasher: hasher, events: events}
}

// RegisterInput carries a new account.  Validation happens in the handler.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

// Register stores a new account with a hashed email and password.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (model.PublicUser, error) {
	pw, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		return model.PublicUser{}, classify(ctx, "hash password", err)
	}
	u := &model.User{
		EmailHash:    s.hasher.HashEmail(in.Email),
		Username:     in.Username,
		PasswordHash: pw,
		IsAdmin:      in.IsAdmin,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.PublicUser{}, ErrEmailTaken
		}
		return model.PublicUser{}, classify(ctx, "create user", err)
	}

	ev := queue.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       u.ID,
		Username:     u.Username,
		RegisteredAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.events.Publish(ctx, queue.UserRegisteredQueue, ev); err != nil {
		l := logutil.GetOrDefault(ctx)
		l.Warn().Err(err).Uint64("user_id", u.ID).Msg("registration event not published")
	}

	return model.PublicUser{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}, nil
}

func (s *UserService) FindAll(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, classify(ctx, "list users", err)
	}
	return users, nil
}

func (s *UserService) FindOne(ctx context.Context, id uint64) (model.PublicUser, error) {
	u, err := s.users.FindOne(ctx, id)
	if err != nil {
		return model.PublicUser{}, notFoundOr(ctx, "find user", err)
	}
	return u, nil
}

// GetLoggedInUser resolves the caller projection for an authenticated id.
func (s *UserService) GetLoggedInUser(ctx context.Context, id uint64) (model.Caller, error) {
	c, err := s.users.GetLoggedInUser(ctx, id)
	if err != nil {
		return model.Caller{}, notFoundOr(ctx, "get logged in user", err)
	}
	return c, nil
}

// UpdateInput lists the fields a caller may change.  Nil means unchanged.
type UpdateInput struct {
	Username *string
	Password *string
}

// Update changes an account.  Only the account owner or an admin may do so;
// the permission check comes before the existence check.
func (s *UserService) Update(ctx context.Context, caller model.Caller, id uint64, in UpdateInput) (model.PublicUser, error) {
	if !mayModify(caller, id) {
		return model.PublicUser{}, ErrForbidden
	}
	upd := repository.UserUpdate{Username: in.Username}
	if in.Password != nil {
		pw, err := s.hasher.HashPassword(*in.Password)
		if err != nil {
			return model.PublicUser{}, classify(ctx, "hash password", err)
		}
		upd.PasswordHash = &pw
	}
	u, err := s.users.Update(ctx, id, upd)
	if err != nil {
		return model.PublicUser{}, notFoundOr(ctx, "update user", err)
	}
	return u, nil
}

// Remove deletes an account, subject to the same rule as Update.
func (s *UserService) Remove(ctx context.Context, caller model.Caller, id uint64) (model.PublicUser, error) {
	if !mayModify(caller, id) {
		return model.PublicUser{}, ErrForbidden
	}
	u, err := s.users.Remove(ctx, id)
	if err != nil {
		return model.PublicUser{}, notFoundOr(ctx, "remove user", err)
	}
	return u, nil
}

func mayModify(caller model.Caller, id uint64) bool {
	return caller.IsAdmin || caller.ID == id
}

func notFoundOr(ctx context.Context, op string, err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return classify(ctx, op, err)
}
