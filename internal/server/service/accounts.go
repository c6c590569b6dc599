package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"clubhouse/internal/server/database"

	"golang.org/x/crypto/bcrypt"
)

// UserStore is the credential-store surface the account service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) error
	GetUserByUsername(ctx context.Context, username string) (*database.User, error)
	PromoteToMember(ctx context.Context, username string) error
}

// AccountService handles registration, credential verification and the
// passcode-gated membership upgrade.
type AccountService struct {
	users      UserStore
	passcode   string
	bcryptCost int
}

// NewAccountService creates an account service.
func NewAccountService(users UserStore, membershipPasscode string, bcryptCost int) *AccountService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{
		users:      users,
		passcode:   membershipPasscode,
		bcryptCost: bcryptCost,
	}
}

// SignUp registers a new account. The confirmation must match the password
// exactly; no row is created otherwise.
func (s *AccountService) SignUp(ctx context.Context, username, password, confirm string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingField
	}
	if password != confirm {
		return ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.CreateUser(ctx, username, string(hash)); err != nil {
		if errors.Is(err, database.ErrUsernameTaken) {
			return ErrUsernameTaken
		}
		return err
	}

	slog.Info("user registered", "username", username)
	return nil
}

// Authenticate verifies a username/password pair against the credential
// store. An absent user and a wrong password are indistinguishable to the
// caller; both fail with ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*database.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Upgrade transitions the principal to the member role when the supplied
// passcode matches the shared secret exactly (case-sensitive). Already a
// member is a no-op success; the transition is one-directional.
func (s *AccountService) Upgrade(ctx context.Context, user *database.User, passcode string) error {
	if user.IsMember() {
		return nil
	}
	if passcode != s.passcode {
		return ErrWrongPasscode
	}

	if err := s.users.PromoteToMember(ctx, user.Username); err != nil {
		return err
	}

	slog.Info("user upgraded to member", "username", user.Username)
	return nil
}
