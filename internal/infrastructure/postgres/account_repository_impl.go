package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guruunoob/goobex-website/internal/domain/entity"
	"github.com/guruunoob/goobex-website/internal/domain/repository"
)

const accountColumns = `id, email, username, display_name, description, thumb_url, locale, created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// CreateIfAbsent relies on the unique index on email: concurrent first
// logins for the same address race on the insert, the loser observes
// zero affected rows and reads back the winner's record.
func (r *AccountRepository) CreateIfAbsent(ctx context.Context, a *entity.Account) (bool, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (email, username, display_name, description, thumb_url, locale)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, created_at, updated_at
	`, a.Email, a.Username, a.DisplayName, a.Description, a.ThumbURL, a.Locale)

	err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	existing, err := r.GetByEmail(ctx, a.Email)
	if err != nil {
		return false, err
	}
	*a = *existing
	return false, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE email = $1
	`, email)
	return scanAccount(row)
}

// GetByUsername returns the oldest record for the name. Usernames are
// assumed unique but not enforced, so ties resolve deterministically.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*entity.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE username = $1
		ORDER BY created_at
		LIMIT 1
	`, username)
	return scanAccount(row)
}

func (r *AccountRepository) List(ctx context.Context) ([]entity.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]entity.Account, 0)
	for rows.Next() {
		var a entity.Account
		if err := rows.Scan(&a.ID, &a.Email, &a.Username, &a.DisplayName, &a.Description,
			&a.ThumbURL, &a.Locale, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	if err := row.Scan(&a.ID, &a.Email, &a.Username, &a.DisplayName, &a.Description,
		&a.ThumbURL, &a.Locale, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
