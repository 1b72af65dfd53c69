package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/seedvest/internal/common"
	"github.com/dmitrijs2005/seedvest/internal/dbx"
	"github.com/dmitrijs2005/seedvest/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id, email, full_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Email, account.FullName, account.PasswordHash).Scan(&account.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT id, email, full_name, password_hash, refresh_token_hash, created_at
		FROM accounts
		WHERE email = $1
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT id, email, full_name, password_hash, refresh_token_hash, created_at
		FROM accounts
		WHERE id = $1
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) SetRefreshTokenHash(ctx context.Context, id string, hash *string) error {
	query := `
		UPDATE accounts SET refresh_token_hash = $2
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, hash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SwapRefreshTokenHash(ctx context.Context, id, oldHash, newHash string) (bool, error) {
	// Single atomic update: of two concurrent rotations presenting the same
	// token, only one can still observe oldHash in the row.
	query := `
		UPDATE accounts SET refresh_token_hash = $3
		WHERE id = $1 AND refresh_token_hash = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, oldHash, newHash)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected == 1, nil
}

func (r *PostgresRepository) ClearRefreshTokenHash(ctx context.Context, id, oldHash string) (bool, error) {
	query := `
		UPDATE accounts SET refresh_token_hash = NULL
		WHERE id = $1 AND refresh_token_hash = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, oldHash)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected == 1, nil
}

func (r *PostgresRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var refreshTokenHash sql.NullString

	err := row.Scan(&account.ID, &account.Email, &account.FullName,
		&account.PasswordHash, &refreshTokenHash, &account.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if refreshTokenHash.Valid {
		account.RefreshTokenHash = &refreshTokenHash.String
	}

	return account, nil
}
