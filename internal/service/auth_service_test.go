package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quemtemboca/marketplace-api/internal/queue"
)

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	u := f.seed(t, "Jane Doe", "jane@x.com", "Secret123!", false)

	res, err := f.auth.Login(context.Background(), "jane@x.com", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.ID)
	assert.Equal(t, "Jane Doe", res.Username)
	assert.Equal(t, "jane@x.com", res.Email)
	require.NotEmpty(t, res.AccessToken)

	claim, err := f.auth.CheckToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claim.ID)
}

func TestLogin_EmailIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Jane Doe", "jane@x.com", "Secret123!", false)

	res, err := f.auth.Login(context.Background(), "JANE@X.com", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, "JANE@X.com", res.Email)
}

func TestLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Jane Doe", "jane@x.com", "Secret123!", false)

	_, errUnknown := f.auth.Login(context.Background(), "nobody@x.com", "Secret123!")
	_, errWrong := f.auth.Login(context.Background(), "jane@x.com", "wrong")

	require.Error(t, errUnknown)
	require.Error(t, errWrong)
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
	assert.Equal(t, "Email or password are incorrect.", errWrong.Error())
}

func TestLogin_StoreFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	f.store.fail = errBoom

	_, err := f.auth.Login(context.Background(), "jane@x.com", "Secret123!")
	assert.ErrorIs(t, err, ErrInternal)
	assert.NotContains(t, err.Error(), "boom")
}

func TestCheckToken_Garbage(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.CheckToken("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.Equal(t, KindTokenInvalid, KindOf(err))
}

func TestRequestRecovery_KnownEmailPublishes(t *testing.T) {
	f := newFixture(t)
	u := f.seed(t, "Jane Doe", "jane@x.com", "Secret123!", false)

	res, err := f.auth.RequestRecovery(context.Background(), " jane@x.com ")
	require.NoError(t, err)
	assert.Equal(t, `If "jane@x.com" is registered, a recovery email will be sent.`, res.Message)

	require.Len(t, f.events.sent, 1)
	assert.Equal(t, queue.RecoveryRequestedQueue, f.events.sent[0].queue)
	ev, ok := f.events.sent[0].payload.(queue.RecoveryRequestedEvent)
	require.True(t, ok)
	assert.Equal(t, u.ID, ev.UserID)
	assert.Equal(t, "jane@x.com", ev.Email)
	assert.NotEmpty(t, ev.EventID)
}

func TestRequestRecovery_UnknownEmailSameAnswer(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Jane Doe", "jane@x.com", "Secret123!", false)

	known, err := f.auth.RequestRecovery(context.Background(), "jane@x.com")
	require.NoError(t, err)
	unknown, err := f.auth.RequestRecovery(context.Background(), "ghost@x.com")
	require.NoError(t, err)

	assert.Len(t, f.events.sent, 1)
	assert.Equal(t,
		`If "ghost@x.com" is registered, a recovery email will be sent.`, unknown.Message)
	assert.NotEqual(t, known.Message, unknown.Message)
}

func TestRequestRecovery_PublishFailureIgnored(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Jane Doe", "jane@x.com", "Secret123!", false)
	f.events.err = errors.New("broker down")

	_, err := f.auth.RequestRecovery(context.Background(), "jane@x.com")
	assert.NoError(t, err)
}
