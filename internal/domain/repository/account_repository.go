package repository

import (
	"context"
	"errors"

	"github.com/guruunoob/goobex-website/internal/domain/entity"
)

// ErrNotFound is returned when no account matches the lookup key.
var ErrNotFound = errors.New("account not found")

// AccountRepository defines the interface for account store operations.
type AccountRepository interface {
	// CreateIfAbsent inserts the account unless a record with the same
	// email already exists. It reports whether a new row was created
	// and fills in the stored record either way. Implementations must
	// make this safe under concurrent first logins for one email.
	CreateIfAbsent(ctx context.Context, a *entity.Account) (created bool, err error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	GetByUsername(ctx context.Context, username string) (*entity.Account, error)
	List(ctx context.Context) ([]entity.Account, error)
}
