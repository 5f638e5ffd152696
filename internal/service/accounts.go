package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/stemmahq/stemma/internal/crypto"
	"github.com/stemmahq/stemma/internal/errs"
	"github.com/stemmahq/stemma/internal/model"
	"github.com/stemmahq/stemma/internal/repository"
)

// AccountService defines registration, profile updates and authentication.
type AccountService interface {
	// Register creates a new account with a fresh id and password digest.
	Register(ctx context.Context, displayName, email, password string) (*model.Account, error)
	// Update upserts all mutable fields of an existing account.
	Update(ctx context.Context, a model.Account) error
	// GetByID loads an account by id.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	// GetByEmail loads an account by email.
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	// Authenticate verifies credentials and returns the matching account.
	Authenticate(ctx context.Context, email, password string) (*model.Account, error)
}

type AccountServiceImpl struct {
	accounts repository.AccountRepository
}

// NewAccountService constructs AccountService.
func NewAccountService(accounts repository.AccountRepository) *AccountServiceImpl {
	return &AccountServiceImpl{accounts: accounts}
}

// Register creates a new account. A taken email or id surfaces as
// errs.ErrDuplicateKey for the registration form to report.
func (s *AccountServiceImpl) Register(ctx context.Context, displayName, email, password string) (*model.Account, error) {
	if strings.TrimSpace(displayName) == "" {
		return nil, errs.Validation("blank display name")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, errs.Validation("invalid email")
	}
	if password == "" {
		return nil, errs.Validation("empty password")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	digest, err := pkgcrypto.PasswordDigest(password)
	if err != nil {
		return nil, err
	}

	a := model.Account{
		ID:             id,
		DisplayName:    displayName,
		Email:          email,
		PasswordDigest: digest,
	}
	if err := s.accounts.Save(ctx, &a, true); err != nil {
		return nil, err
	}
	return &a, nil
}

// Update upserts the account's mutable fields by id.
func (s *AccountServiceImpl) Update(ctx context.Context, a model.Account) error {
	if a.ID == uuid.Nil {
		return errs.Validation("empty account id")
	}
	return s.accounts.Save(ctx, &a, false)
}

// GetByID loads an account by id.
func (s *AccountServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// GetByEmail loads an account by email.
func (s *AccountServiceImpl) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return s.accounts.GetByEmail(ctx, email)
}

// Authenticate checks credentials. A missing account and a wrong password
// are indistinguishable to the caller.
func (s *AccountServiceImpl) Authenticate(ctx context.Context, email, password string) (*model.Account, error) {
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrUnauthorized
		}
		return nil, err
	}
	ok, err := pkgcrypto.VerifyPassword(password, a.PasswordDigest)
	if err != nil || !ok {
		return nil, errs.ErrUnauthorized
	}
	return a, nil
}
