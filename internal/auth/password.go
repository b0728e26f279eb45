package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/settleup/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// UserStorage is the subset of the store the authenticator needs.
// Lookups return nil, nil when no account matches.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// PasswordAuthenticator implements Authenticator with bcrypt password hashes.
type PasswordAuthenticator struct {
	storage UserStorage
	cost    int
}

// NewPasswordAuthenticator creates a password authenticator. A cost of zero
// uses bcrypt.DefaultCost.
func NewPasswordAuthenticator(storage UserStorage, cost int) *PasswordAuthenticator {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordAuthenticator{storage: storage, cost: cost}
}

// ValidateCredential checks the minimum password length.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates an account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, credential string) (*models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}
	email = normalizeEmail(email)

	existing, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(email, strings.TrimSpace(displayName), string(hash))
	if err := a.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the email and password. Unknown emails and wrong
// passwords fail with the same error.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
