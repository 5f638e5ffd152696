package postgres

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/stemmahq/stemma/internal/errs"
	"github.com/stemmahq/stemma/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func testAccount() *model.Account {
	return &model.Account{
		ID:             uuid.Must(uuid.NewV4()),
		DisplayName:    "Alfa",
		Email:          "alfa@bravo.com",
		PasswordDigest: []byte("digest"),
	}
}

func TestAccountRepo_Save_OnlyNew_OK_and_Duplicate(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	ctx := context.Background()
	a := testAccount()

	// OK
	mock.ExpectExec(`INSERT INTO account \(id, display_name, email, password_digest\) VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs(a.ID, a.DisplayName, a.Email, a.PasswordDigest).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Save(ctx, a, true))

	// Unique violation
	mock.ExpectExec(`INSERT INTO account \(id, display_name, email, password_digest\) VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs(a.ID, a.DisplayName, a.Email, a.PasswordDigest).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.Save(ctx, a, true), errs.ErrDuplicateKey)
}

func TestAccountRepo_Save_Upsert(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	a := testAccount()

	mock.ExpectExec(`INSERT INTO account \(id, display_name, email, password_digest\) VALUES \(\$1, \$2, \$3, \$4\) ON CONFLICT \(id\) DO UPDATE SET display_name = EXCLUDED\.display_name, email = EXCLUDED\.email, password_digest = EXCLUDED\.password_digest`).
		WithArgs(a.ID, a.DisplayName, a.Email, a.PasswordDigest).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Save(context.Background(), a, false))
}

func TestAccountRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, display_name, email, password_digest FROM account WHERE id=\$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "display_name", "email", "password_digest"}).
			AddRow(id, "Alfa", "alfa@bravo.com", []byte("digest")))
	a, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, a.ID)
	require.Equal(t, "Alfa", a.DisplayName)

	mock.ExpectQuery(`SELECT id, display_name, email, password_digest FROM account WHERE id=\$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAccountRepo_GetByEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT id, display_name, email, password_digest FROM account WHERE email=\$1`).
		WithArgs("alfa@bravo.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "display_name", "email", "password_digest"}).
			AddRow(id, "Alfa", "alfa@bravo.com", []byte("digest")))
	a, err := r.GetByEmail(ctx, "alfa@bravo.com")
	require.NoError(t, err)
	require.Equal(t, "alfa@bravo.com", a.Email)

	mock.ExpectQuery(`SELECT id, display_name, email, password_digest FROM account WHERE email=\$1`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAccountRepo_Exists(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewAccountRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM account WHERE id=\$1\)`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	ok, err := r.Exists(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM account WHERE id=\$1\)`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	ok, err = r.Exists(ctx, id)
	require.NoError(t, err)
	require.False(t, ok)
}
