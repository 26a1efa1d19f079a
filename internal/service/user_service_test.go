package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quemtemboca/marketplace-api/internal/model"
	"github.com/quemtemboca/marketplace-api/internal/queue"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	u, err := f.users.Register(context.Background(), RegisterInput{
		Username: "Jane Doe", Email: "jane@x.com", Password: "Secret123!",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	assert.Equal(t, "Jane Doe", u.Username)

	stored := f.store.byID[u.ID]
	assert.Equal(t, f.hasher.HashEmail("jane@x.com"), stored.EmailHash)
	assert.NotEqual(t, "Secret123!", stored.PasswordHash)
	assert.True(t, f.hasher.VerifyPassword("Secret123!", stored.PasswordHash))
	assert.False(t, stored.IsAdmin)

	require.Len(t, f.events.sent, 1)
	assert.Equal(t, queue.UserRegisteredQueue, f.events.sent[0].queue)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Jane Doe", "jane@x.com", "Secret123!", false)

	_, err := f.users.Register(context.Background(), RegisterInput{
		Username: "Other", Email: "Jane@X.com", Password: "Secret123!",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestFindOneAndAll(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, "a", "a@x.com", "Secret123!", false)
	f.seed(t, "b", "b@x.com", "Secret123!", false)

	all, err := f.users.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := f.users.FindOne(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	_, err = f.users.FindOne(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetLoggedInUser(t *testing.T) {
	f := newFixture(t)
	u := f.seed(t, "root", "root@x.com", "Secret123!", true)

	c, err := f.users.GetLoggedInUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Caller{ID: u.ID, Username: "root", IsAdmin: true}, c)

	_, err = f.users.GetLoggedInUser(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)

	f.store.fail = errBoom
	_, err = f.users.GetLoggedInUser(context.Background(), u.ID)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestUpdate_SelfOrAdmin(t *testing.T) {
	f := newFixture(t)
	jane := f.seed(t, "jane", "jane@x.com", "Secret123!", false)
	bob := f.seed(t, "bob", "bob@x.com", "Secret123!", false)
	admin := f.seed(t, "root", "root@x.com", "Secret123!", true)

	name := "Jane D."
	pw := "N3w-Secret!"
	got, err := f.users.Update(context.Background(), model.Caller{ID: jane.ID}, jane.ID, UpdateInput{Username: &name, Password: &pw})
	require.NoError(t, err)
	assert.Equal(t, "Jane D.", got.Username)

	_, err = f.auth.Login(context.Background(), "jane@x.com", pw)
	assert.NoError(t, err)

	_, err = f.users.Update(context.Background(), model.Caller{ID: bob.ID}, jane.ID, UpdateInput{Username: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.users.Update(context.Background(), model.Caller{ID: admin.ID, IsAdmin: true}, bob.ID, UpdateInput{Username: &name})
	assert.NoError(t, err)

	_, err = f.users.Update(context.Background(), model.Caller{ID: admin.ID, IsAdmin: true}, 99, UpdateInput{Username: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	jane := f.seed(t, "jane", "jane@x.com", "Secret123!", false)
	bob := f.seed(t, "bob", "bob@x.com", "Secret123!", false)

	_, err := f.users.Remove(context.Background(), model.Caller{ID: bob.ID}, jane.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.users.Remove(context.Background(), model.Caller{ID: jane.ID}, jane.ID)
	require.NoError(t, err)
	assert.Equal(t, jane, got)

	_, err = f.users.FindOne(context.Background(), jane.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errBoom))
	assert.Equal(t, KindNotFound, KindOf(ErrUserNotFound))
	assert.ErrorIs(t, &Error{Kind: KindForbidden, Message: "other text"}, ErrForbidden)
}
