package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quemtemboca/marketplace-api/internal/config"
	"github.com/quemtemboca/marketplace-api/internal/model"
	"github.com/quemtemboca/marketplace-api/internal/repository"
	"github.com/quemtemboca/marketplace-api/internal/utils"
)

var errBoom = errors.New("boom")

// memStore is an in-memory UserStore.  Setting fail makes every call return it.
type memStore struct {
	mu     sync.Mutex
	byID   map[uint64]model.User
	nextID uint64
	fail   error
}

func newMemStore() *memStore {
	return &memStore{byID: map[uint64]model.User{}, nextID: 1}
}

func (m *memStore) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	for _, existing := range m.byID {
		if existing.EmailHash == u.EmailHash {
			return repository.ErrEmailExists
		}
	}
	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = *u
	return nil
}

func (m *memStore) FindByEmailHash(_ context.Context, hash string) (model.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return model.Credentials{}, m.fail
	}
	for _, u := range m.byID {
		if u.EmailHash == hash {
			return model.Credentials{ID: u.ID, Username: u.Username, PasswordHash: u.PasswordHash}, nil
		}
	}
	return model.Credentials{}, repository.ErrUserNotFound
}

func (m *memStore) GetLoggedInUser(_ context.Context, id uint64) (model.Caller, error) {
	u, err := m.get(id)
	if err != nil {
		return model.Caller{}, err
	}
	return model.Caller{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}, nil
}

func (m *memStore) FindAll(_ context.Context) ([]model.PublicUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := []model.PublicUser{}
	for id := uint64(1); id < m.nextID; id++ {
		if u, ok := m.byID[id]; ok {
			out = append(out, public(u))
		}
	}
	return out, nil
}

func (m *memStore) FindOne(_ context.Context, id uint64) (model.PublicUser, error) {
	u, err := m.get(id)
	if err != nil {
		return model.PublicUser{}, err
	}
	return public(u), nil
}

func (m *memStore) Update(_ context.Context, id uint64, upd repository.UserUpdate) (model.PublicUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return model.PublicUser{}, m.fail
	}
	u, ok := m.byID[id]
	if !ok {
		return model.PublicUser{}, repository.ErrUserNotFound
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	m.byID[id] = u
	return public(u), nil
}

func (m *memStore) Remove(_ context.Context, id uint64) (model.PublicUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return model.PublicUser{}, m.fail
	}
	u, ok := m.byID[id]
	if !ok {
		return model.PublicUser{}, repository.ErrUserNotFound
	}
	delete(m.byID, id)
	return public(u), nil
}

func (m *memStore) get(id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return model.User{}, m.fail
	}
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func public(u model.User) model.PublicUser {
	return model.PublicUser{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

type published struct {
	queue   string
	payload any
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, queueName string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, published{queue: queueName, payload: payload})
	return p.err
}

type fixture struct {
	store  *memStore
	events *recordingPublisher
	hasher *utils.Hasher
	codec  *utils.TokenCodec
	auth   *AuthService
	users  *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hasher, err := utils.NewHasher("sha256", bcrypt.MinCost)
	require.NoError(t, err)
	codec := utils.NewTokenCodec(config.AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "marketplace-api",
		Audience:   "marketplace-clients",
	})
	f := &fixture{
		store:  newMemStore(),
		events: &recordingPublisher{},
		hasher: hasher,
		codec:  codec,
	}
	f.auth = NewAuthService(f.store, hasher, codec, f.events)
	f.users = NewUserService(f.store, hasher, f.events)
	return f
}

// seed registers an account directly and clears the recorded events.
func (f *fixture) seed(t *testing.T, username, email, password string, admin bool) model.PublicUser {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterInput{
		Username: username, Email: email, Password: password, IsAdmin: admin,
	})
	require.NoError(t, err)
	f.events.sent = nil
	return u
}
