// Package auth establishes caller identity: account credentials and the
// bearer tokens that carry the member ID into every ledger RPC.
package auth

import (
	"context"

	"github.com/mmynk/settleup/internal/models"
)

// Authenticator registers and verifies accounts. The credential format
// depends on the implementation.
type Authenticator interface {
	// Register creates an account. The display name becomes the member's
	// name on every group roster.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account matching email and credential.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential before it is stored.
	ValidateCredential(credential string) error
}
