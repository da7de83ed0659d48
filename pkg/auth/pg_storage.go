package auth

import (
	"context"
	"embed"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/venuehub/pkg/pg"
)

// Migrations holds the goose migrations for the accounts and audit_events tables.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

const accountColumns = `id, username, password_hash, role, two_factor_secret, two_factor_enabled, emergency_codes, created_at, updated_at`

// PostgresStorage keeps accounts in the accounts table. Conditional updates
// are single UPDATE statements whose WHERE clause carries the precondition.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

func (p *PostgresStorage) CreateAccount(ctx context.Context, acc *Account) error {
	codes := acc.EmergencyCodes
	if codes == nil {
		codes = []string{}
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		acc.ID, acc.Username, acc.PasswordHash, string(acc.Role),
		acc.TwoFactorSecret, acc.TwoFactorEnabled, codes,
		acc.CreatedAt, acc.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrUsernameTaken
		}
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (p *PostgresStorage) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return p.queryOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (p *PostgresStorage) GetAccountByUsername(ctx context.Context, username string) (*Account, error) {
	return p.queryOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
}

func (p *PostgresStorage) queryOne(ctx context.Context, query string, arg any) (*Account, error) {
	acc, err := scanAccount(p.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, errors.Join(ErrStorage, err)
	}
	return acc, nil
}

// ListAccounts returns every account ordered by username.
func (p *PostgresStorage) ListAccounts(ctx context.Context) ([]*Account, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY username`)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	defer rows.Close()

	var out []*Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, errors.Join(ErrStorage, err)
		}
		out = append(out, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return out, nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var (
		acc  Account
		role string
	)
	if err := row.Scan(
		&acc.ID, &acc.Username, &acc.PasswordHash, &role,
		&acc.TwoFactorSecret, &acc.TwoFactorEnabled, &acc.EmergencyCodes,
		&acc.CreatedAt, &acc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	acc.Role = Role(role)
	acc.CreatedAt = acc.CreatedAt.UTC()
	acc.UpdatedAt = acc.UpdatedAt.UTC()
	if len(acc.EmergencyCodes) == 0 {
		acc.EmergencyCodes = nil
	}
	return &acc, nil
}

func (p *PostgresStorage) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	return p.exec(ctx, id, false, `UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
}

func (p *PostgresStorage) UpdateRole(ctx context.Context, id uuid.UUID, from, to Role, resetTwoFactor bool) error {
	return p.exec(ctx, id, true, `
		UPDATE accounts
		SET role = $3,
		    emergency_codes = '{}',
		    two_factor_enabled = two_factor_enabled AND NOT $4,
		    two_factor_secret = CASE WHEN $4 THEN '' ELSE two_factor_secret END,
		    updated_at = NOW()
		WHERE id = $1 AND role = $2`,
		id, string(from), string(to), resetTwoFactor,
	)
}

func (p *PostgresStorage) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return p.exec(ctx, id, false, `DELETE FROM accounts WHERE id = $1`, id)
}

func (p *PostgresStorage) BeginTwoFactor(ctx context.Context, id uuid.UUID, sealedSecret string, codeHashes []string) error {
	return p.exec(ctx, id, true, `
		UPDATE accounts
		SET two_factor_secret = $2,
		    emergency_codes = COALESCE($3::text[], emergency_codes),
		    updated_at = NOW()
		WHERE id = $1 AND NOT two_factor_enabled`,
		id, sealedSecret, codeHashes,
	)
}

func (p *PostgresStorage) EnableTwoFactor(ctx context.Context, id uuid.UUID, sealedSecret string) error {
	return p.exec(ctx, id, true, `
		UPDATE accounts SET two_factor_enabled = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT two_factor_enabled AND two_factor_secret = $2`,
		id, sealedSecret,
	)
}

func (p *PostgresStorage) DisableTwoFactor(ctx context.Context, id uuid.UUID, sealedSecret string) error {
	return p.exec(ctx, id, true, `
		UPDATE accounts SET two_factor_enabled = FALSE, two_factor_secret = '', updated_at = NOW()
		WHERE id = $1 AND two_factor_enabled AND two_factor_secret = $2`,
		id, sealedSecret,
	)
}

func (p *PostgresStorage) ConsumeEmergencyCode(ctx context.Context, id uuid.UUID, codeHash string) error {
	return p.exec(ctx, id, true, `
		UPDATE accounts
		SET two_factor_enabled = FALSE, two_factor_secret = '', emergency_codes = '{}', updated_at = NOW()
		WHERE id = $1 AND two_factor_enabled AND $2 = ANY(emergency_codes)`,
		id, codeHash,
	)
}

func (p *PostgresStorage) ResetTwoFactor(ctx context.Context, id uuid.UUID) error {
	return p.exec(ctx, id, false, `
		UPDATE accounts
		SET two_factor_enabled = FALSE, two_factor_secret = '', emergency_codes = '{}', updated_at = NOW()
		WHERE id = $1`,
		id,
	)
}

// exec runs a single-row statement. When no row is affected and the statement
// is conditional, it checks whether the account exists to pick the error.
func (p *PostgresStorage) exec(ctx context.Context, id uuid.UUID, conditional bool, query string, args ...any) error {
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if !conditional {
		return ErrAccountNotFound
	}
	var exists bool
	if err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return errors.Join(ErrStorage, err)
	}
	if !exists {
		return ErrAccountNotFound
	}
	return ErrStateChanged
}
