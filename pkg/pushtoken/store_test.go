package pushtoken_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwsadler/notifykit/pkg/pushtoken"
)

type mockRemote struct{ mock.Mock }

func (m *mockRemote) Save(ctx context.Context, token *pushtoken.Token) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockRemote) Deactivate(ctx context.Context, userID, deviceID string) error {
	return m.Called(ctx, userID, deviceID).Error(0)
}

type mockRegistrar struct{ mock.Mock }

func (m *mockRegistrar) Register(ctx context.Context, token *pushtoken.Token) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *mockRegistrar) Deregister(ctx context.Context, endpointID string) error {
	return m.Called(ctx, endpointID).Error(0)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_PersistAndCurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	remote := &mockRemote{}
	remote.On("Save", mock.Anything, mock.Anything).Return(nil)

	store := pushtoken.NewStore(pushtoken.NewMemoryCache(), remote, pushtoken.WithLogger(quietLogger()))

	require.NoError(t, store.Persist(ctx, &pushtoken.Token{
		Value:    "tok-1",
		UserID:   "user-1",
		Platform: "ios",
	}))

	cur, err := store.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "tok-1", cur.Value)
	assert.Equal(t, "user-1", cur.UserID)
	assert.True(t, cur.Active)
	assert.NotEmpty(t, cur.DeviceID)
	remote.AssertCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestStore_PersistLocalFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	remote := &mockRemote{}
	remote.On("Save", mock.Anything, mock.Anything).Return(errors.New("store unreachable"))

	store := pushtoken.NewStore(pushtoken.NewMemoryCache(), remote, pushtoken.WithLogger(quietLogger()))

	// Remote failure is non-fatal; the token is still readable locally.
	require.NoError(t, store.Persist(ctx, &pushtoken.Token{Value: "tok-2", UserID: "user-1"}))

	cur, err := store.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "tok-2", cur.Value)
}

func TestStore_PersistIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	remote := &mockRemote{}
	remote.On("Save", mock.Anything, mock.Anything).Return(nil)

	store := pushtoken.NewStore(pushtoken.NewMemoryCache(), remote, pushtoken.WithLogger(quietLogger()))

	require.NoError(t, store.Persist(ctx, &pushtoken.Token{Value: "tok-3", UserID: "user-1"}))
	require.NoError(t, store.Persist(ctx, &pushtoken.Token{Value: "tok-3", UserID: "user-1"}))

	// Second persist of the same value short-circuits before the remote write.
	remote.AssertNumberOfCalls(t, "Save", 1)
}

func TestStore_PersistInvalid(t *testing.T) {
	t.Parallel()

	store := pushtoken.NewStore(pushtoken.NewMemoryCache(), &mockRemote{}, pushtoken.WithLogger(quietLogger()))

	assert.ErrorIs(t, store.Persist(context.Background(), nil), pushtoken.ErrInvalidToken)
	assert.ErrorIs(t, store.Persist(context.Background(), &pushtoken.Token{UserID: "u"}), pushtoken.ErrInvalidToken)
	assert.ErrorIs(t, store.Persist(context.Background(), &pushtoken.Token{Value: "t"}), pushtoken.ErrInvalidToken)
}

func TestStore_CurrentEmpty(t *testing.T) {
	t.Parallel()

	store := pushtoken.NewStore(pushtoken.NewMemoryCache(), &mockRemote{}, pushtoken.WithLogger(quietLogger()))

	cur, err := store.Current(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	remote := &mockRemote{}
	remote.On("Save", mock.Anything, mock.Anything).Return(nil)
	remote.On("Deactivate", mock.Anything, "user-1", mock.Anything).Return(nil)

	registrar := &mockRegistrar{}
	registrar.On("Register", mock.Anything, mock.Anything).Return("endpoint-1", nil)
	registrar.On("Deregister", mock.Anything, "endpoint-1").Return(nil)

	store := pushtoken.NewStore(pushtoken.NewMemoryCache(), remote,
		pushtoken.WithLogger(quietLogger()),
		pushtoken.WithRegistrar(registrar),
	)

	require.NoError(t, store.Persist(ctx, &pushtoken.Token{Value: "tok-4", UserID: "user-1"}))
	require.NoError(t, store.Clear(ctx))

	cur, err := store.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)

	remote.AssertCalled(t, "Deactivate", mock.Anything, "user-1", mock.Anything)
	registrar.AssertCalled(t, "Deregister", mock.Anything, "endpoint-1")
}

func TestStore_ClearIdempotent(t *testing.T) {
	t.Parallel()

	store := pushtoken.NewStore(pushtoken.NewMemoryCache(), &mockRemote{}, pushtoken.WithLogger(quietLogger()))
	require.NoError(t, store.Clear(context.Background()))
	require.NoError(t, store.Clear(context.Background()))
}

func TestStore_DeviceIDStable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := pushtoken.NewStore(pushtoken.NewMemoryCache(), &mockRemote{}, pushtoken.WithLogger(quietLogger()))

	first, err := store.DeviceID(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := store.DeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
