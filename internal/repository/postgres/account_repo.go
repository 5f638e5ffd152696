package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/stemmahq/stemma/internal/errs"
	"github.com/stemmahq/stemma/internal/model"
)

// AccountRepo implements AccountRepository using PostgreSQL.
type AccountRepo struct{ db *DB }

// NewAccountRepo constructs an account repository.
func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

// Save inserts or upserts an account row. The unique constraints on id and
// email are the source of truth for duplicate registrations.
func (r *AccountRepo) Save(ctx context.Context, a *model.Account, onlyNew bool) error {
	q := `
INSERT INTO account (id, display_name, email, password_digest)
VALUES ($1, $2, $3, $4)`
	if !onlyNew {
		q += `
ON CONFLICT (id) DO UPDATE SET
display_name = EXCLUDED.display_name,
email = EXCLUDED.email,
password_digest = EXCLUDED.password_digest`
	}
	_, err := r.db.Pool.Exec(ctx, q, a.ID, a.DisplayName, a.Email, a.PasswordDigest)
	if isUniqueViolation(err) {
		return errs.ErrDuplicateKey
	}
	return err
}

// GetByID selects an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	const q = `
SELECT id, display_name, email, password_digest
FROM account WHERE id=$1`
	return r.scanAccount(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByEmail selects an account by its unique email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	const q = `
SELECT id, display_name, email, password_digest
FROM account WHERE email=$1`
	return r.scanAccount(r.db.Pool.QueryRow(ctx, q, email))
}

// Exists reports whether an account row with the given id is present.
func (r *AccountRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM account WHERE id=$1)`
	var exists bool
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *AccountRepo) scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.DisplayName, &a.Email, &a.PasswordDigest); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
