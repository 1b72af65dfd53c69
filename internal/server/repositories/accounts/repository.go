// Package accounts declares the credential-store contract consumed by the
// session service, plus its PostgreSQL implementation.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/seedvest/internal/server/models"
)

// Repository defines operations over persisted accounts.
type Repository interface {
	// Create inserts a new account and returns it with the created timestamp set.
	// Returns common.ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByEmail returns the account with the given email, or common.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetByID returns the account with the given id, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// SetRefreshTokenHash unconditionally replaces the stored refresh-token
	// hash. A nil hash clears it.
	SetRefreshTokenHash(ctx context.Context, id string, hash *string) error

	// SwapRefreshTokenHash replaces the stored hash only if it still equals
	// oldHash, as a single atomic update. It reports whether a row was
	// updated; false means another request rotated the token first.
	SwapRefreshTokenHash(ctx context.Context, id, oldHash, newHash string) (bool, error)

	// ClearRefreshTokenHash sets the stored hash to NULL only if it still
	// equals oldHash. It reports whether a row was updated.
	ClearRefreshTokenHash(ctx context.Context, id, oldHash string) (bool, error)
}
