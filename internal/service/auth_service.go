// Package service holds the account business logic between HTTP handlers and
// the repositories.  Every error returned from this package is a *Error.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quemtemboca/marketplace-api/internal/logutil"
	"github.com/quemtemboca/marketplace-api/internal/model"
	"github.com/quemtemboca/marketplace-api/internal/queue"
	"github.com/quemtemboca/marketplace-api/internal/repository"
	"github.com/quemtemboca/marketplace-api/internal/utils"
)

// CredentialStore resolves the login projection of an account by email hash.
type CredentialStore interface {
	FindByEmailHash(ctx context.Context, emailHash string) (model.Credentials, error)
}

// EventPublisher sends a JSON payload to a named queue.
type EventPublisher interface {
	Publish(ctx context.Context, queueName string, payload any) error
}

// AuthService verifies credentials and issues access tokens.
type AuthService struct {
	users  CredentialStore
	hasher *utils.Hasher
	codec  *utils.TokenCodec
	events EventPublisher
	now    func() time.Time
}

func NewAuthService(users CredentialStore, hasher *utils.Hasher, codec *utils.TokenCodec, events EventPublisher) *AuthService {
	return &AuthService{users: users, hasher: hasher, codec: codec, events: events, now: time.Now}
}

// LoginResult is the session returned to a client after a successful login.
type LoginResult struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

// Login checks the credentials and signs a token for the account.  The email
// in the result is echoed as submitted.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	id, err := s.checkCredentials(ctx, email, password)
	if err != nil {
		return LoginResult{}, err
	}
	tok, err := s.codec.Sign(model.IdentityClaim{ID: id.ID})
	if err != nil {
		return LoginResult{}, classify(ctx, "sign token", err)
	}
	return LoginResult{
		ID:          id.ID,
		Username:    id.Username,
		Email:       email,
		AccessToken: tok.Token,
	}, nil
}

type identity struct {
	ID       uint64
	Username string
}

// checkCredentials answers ErrInvalidCredentials for both an unknown email
// and a wrong password.  The password hash does not leave this function.
func (s *AuthService) checkCredentials(ctx context.Context, email, password string) (identity, error) {
	creds, err := s.users.FindByEmailHash(ctx, s.hasher.HashEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return identity{}, ErrInvalidCredentials
		}
		return identity{}, classify(ctx, "find credentials", err)
	}
	if !s.hasher.VerifyPassword(password, creds.PasswordHash) {
		return identity{}, ErrInvalidCredentials
	}
	return identity{ID: creds.ID, Username: creds.Username}, nil
}

// CheckToken verifies a raw access token and returns its claim.
func (s *AuthService) CheckToken(raw string) (model.IdentityClaim, error) {
	claim, err := s.codec.Verify(raw)
	if err != nil {
		return model.IdentityClaim{}, ErrTokenInvalid
	}
	return claim, nil
}

// RecoveryResult is the acknowledgement of a recovery request.
type RecoveryResult struct {
	Message string `json:"message"`
}

// RequestRecovery queues a recovery notice when email belongs to an account.
// The acknowledgement is the same whether or not it does.
func (s *AuthService) RequestRecovery(ctx context.Context, email string) (RecoveryResult, error) {
	email = strings.TrimSpace(email)
	ack := RecoveryResult{Message: fmt.Sprintf("If %q is registered, a recovery email will be sent.", email)}

	creds, err := s.users.FindByEmailHash(ctx, s.hasher.HashEmail(email))
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return ack, nil
	case err != nil:
		return RecoveryResult{}, classify(ctx, "find credentials", err)
	}

	ev := queue.RecoveryRequestedEvent{
		EventID:     uuid.NewString(),
		UserID:      creds.ID,
		Email:       email,
		RequestedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.events.Publish(ctx, queue.RecoveryRequestedQueue, ev); err != nil {
		l := logutil.GetOrDefault(ctx)
		l.Warn().Err(err).Uint64("user_id", creds.ID).Msg("recovery event not published")
	}
	return ack, nil
}
