// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/stemmahq/stemma/internal/model"
)

// AccountRepository provides CRUD access for accounts.
type AccountRepository interface {
	// Save persists an account. With onlyNew it is insert-only and returns
	// errs.ErrDuplicateKey on an existing id or email; otherwise it upserts
	// all mutable fields by id.
	Save(ctx context.Context, a *model.Account, onlyNew bool) error
	// GetByID loads an account by id.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	// GetByEmail loads an account by its unique email.
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	// Exists reports whether an account with the given id is persisted.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
