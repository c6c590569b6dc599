package service

import (
	"context"
	"testing"

	"clubhouse/internal/server/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	users map[string]*database.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*database.User)}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, username, passwordHash string) error {
	if _, ok := f.users[username]; ok {
		return database.ErrUsernameTaken
	}
	f.users[username] = &database.User{
		Username:     username,
		PasswordHash: passwordHash,
		UserType:     database.RoleUser,
	}
	return nil
}

func (f *fakeUserStore) GetUserByUsername(ctx context.Context, username string) (*database.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	copy := *user
	return &copy, nil
}

func (f *fakeUserStore) PromoteToMember(ctx context.Context, username string) error {
	user, ok := f.users[username]
	if !ok {
		return database.ErrUserNotFound
	}
	user.UserType = database.RoleMember
	return nil
}

func TestAccountService_SignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("registers with a bcrypt hash", func(t *testing.T) {
		store := newFakeUserStore()
		svc := NewAccountService(store, "Secret", bcrypt.MinCost)

		require.NoError(t, svc.SignUp(ctx, "alice", "pw1", "pw1"))

		user := store.users["alice"]
		require.NotNil(t, user)
		assert.Equal(t, database.RoleUser, user.UserType)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw1")))
	})

	t.Run("mismatched confirmation creates no record", func(t *testing.T) {
		store := newFakeUserStore()
		svc := NewAccountService(store, "Secret", bcrypt.MinCost)

		err := svc.SignUp(ctx, "alice", "pw1", "pw2")
		assert.ErrorIs(t, err, ErrPasswordMismatch)
		assert.Empty(t, store.users)
	})

	t.Run("missing fields", func(t *testing.T) {
		store := newFakeUserStore()
		svc := NewAccountService(store, "Secret", bcrypt.MinCost)

		assert.ErrorIs(t, svc.SignUp(ctx, "", "pw", "pw"), ErrMissingField)
		assert.ErrorIs(t, svc.SignUp(ctx, "alice", "", ""), ErrMissingField)
		assert.Empty(t, store.users)
	})

	t.Run("duplicate username", func(t *testing.T) {
		store := newFakeUserStore()
		svc := NewAccountService(store, "Secret", bcrypt.MinCost)

		require.NoError(t, svc.SignUp(ctx, "alice", "pw1", "pw1"))
		assert.ErrorIs(t, svc.SignUp(ctx, "alice", "pw2", "pw2"), ErrUsernameTaken)
	})
}

func TestAccountService_Authenticate(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*AccountService, *fakeUserStore) {
		t.Helper()
		store := newFakeUserStore()
		svc := NewAccountService(store, "Secret", bcrypt.MinCost)
		require.NoError(t, svc.SignUp(ctx, "alice", "pw1", "pw1"))
		return svc, store
	}

	t.Run("registered credentials succeed", func(t *testing.T) {
		svc, _ := setup(t)

		user, err := svc.Authenticate(ctx, "alice", "pw1")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.Authenticate(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user fails the same way", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.Authenticate(ctx, "bob", "pw1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAccountService_Upgrade(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*AccountService, *fakeUserStore, *database.User) {
		t.Helper()
		store := newFakeUserStore()
		svc := NewAccountService(store, "Secret", bcrypt.MinCost)
		require.NoError(t, svc.SignUp(ctx, "alice", "pw1", "pw1"))
		user, err := store.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		return svc, store, user
	}

	t.Run("correct passcode transitions exactly once", func(t *testing.T) {
		svc, store, user := setup(t)

		require.NoError(t, svc.Upgrade(ctx, user, "Secret"))
		assert.Equal(t, database.RoleMember, store.users["alice"].UserType)
	})

	t.Run("repeating the upgrade is a no-op", func(t *testing.T) {
		svc, store, user := setup(t)

		require.NoError(t, svc.Upgrade(ctx, user, "Secret"))

		// Principal re-fetched on the next request already carries the role.
		refreshed, err := store.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.NoError(t, svc.Upgrade(ctx, refreshed, "whatever"))
		assert.Equal(t, database.RoleMember, store.users["alice"].UserType)
	})

	t.Run("wrong passcode never changes role", func(t *testing.T) {
		svc, store, user := setup(t)

		assert.ErrorIs(t, svc.Upgrade(ctx, user, "secret"), ErrWrongPasscode) // case-sensitive
		assert.ErrorIs(t, svc.Upgrade(ctx, user, ""), ErrWrongPasscode)
		assert.Equal(t, database.RoleUser, store.users["alice"].UserType)
	})
}
