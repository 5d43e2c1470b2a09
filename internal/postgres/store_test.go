package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/thanhldev/accountd"
)

// stubHasher makes hashing observable without argon2 cost.
type stubHasher struct{}

func (stubHasher) Hash(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}

func (stubHasher) Verify(plaintext, encodedHash string) (bool, error) {
	return encodedHash == "hashed:"+plaintext, nil
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewStore(db, stubHasher{})
	store.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return store, mock
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "role", "avatar_url",
		"is_verified", "refresh_token", "created_at", "updated_at",
	})
}

func TestCreateHashesPassword(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs(
			sqlmock.AnyArg(), "alice", "alice@example.com", "hashed:hunter2",
			"user", "", false, "", sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	account, err := store.Create(context.Background(), accountd.NewAccount{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter2",
		Role:     accountd.RoleUser,
	})
	require.NoError(t, err)
	require.NotEmpty(t, account.ID)
	require.Equal(t, "hashed:hunter2", account.PasswordHash)
	require.False(t, account.IsVerified)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMapsUniqueViolations(t *testing.T) {
	cases := []struct {
		constraint string
		want       error
	}{
		{"accounts_username_key", accountd.ErrDuplicateUsername},
		{"accounts_email_key", accountd.ErrDuplicateEmail},
	}

	for _, tc := range cases {
		t.Run(tc.constraint, func(t *testing.T) {
			store, mock := newMockStore(t)

			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
				WillReturnError(&pgconn.PgError{
					Code:           uniqueViolation,
					ConstraintName: tc.constraint,
				})

			_, err := store.Create(context.Background(), accountd.NewAccount{
				Username: "alice",
				Email:    "alice@example.com",
				Password: "hunter2",
				Role:     accountd.RoleUser,
			})
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGetByEmail(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .* FROM accounts WHERE email").
		WithArgs("alice@example.com").
		WillReturnRows(accountRows().AddRow(
			"id-1", "alice", "alice@example.com", "hashed:hunter2", "admin",
			"", true, "", now, now,
		))

	account, err := store.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "id-1", account.ID)
	require.Equal(t, accountd.RoleAdmin, account.Role)
	require.True(t, account.IsVerified)
}

func TestGetByIDNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .* FROM accounts WHERE id").
		WithArgs("missing").
		WillReturnRows(accountRows())

	_, err := store.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, accountd.ErrNotFound)
}

func TestUpdateBuildsPartialSet(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	verified := true
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE accounts SET is_verified = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(true, sqlmock.AnyArg(), "id-1").
		WillReturnRows(accountRows().AddRow(
			"id-1", "alice", "alice@example.com", "hashed:hunter2", "user",
			"", true, "", now, now,
		))

	account, err := store.Update(context.Background(), "id-1", accountd.AccountPatch{
		IsVerified: &verified,
	})
	require.NoError(t, err)
	require.True(t, account.IsVerified)
}

func TestUpdateEmptyPatchReadsBack(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .* FROM accounts WHERE id").
		WithArgs("id-1").
		WillReturnRows(accountRows().AddRow(
			"id-1", "alice", "alice@example.com", "hashed:hunter2", "user",
			"", false, "", now, now,
		))

	account, err := store.Update(context.Background(), "id-1", accountd.AccountPatch{})
	require.NoError(t, err)
	require.Equal(t, "alice", account.Username)
}

func TestSetPassword(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET password_hash")).
		WithArgs("hashed:new-secret", sqlmock.AnyArg(), "id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.SetPassword(context.Background(), "id-1", "new-secret")
	require.NoError(t, err)
}

func TestSetPasswordNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET password_hash")).
		WithArgs("hashed:new-secret", sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SetPassword(context.Background(), "missing", "new-secret")
	require.ErrorIs(t, err, accountd.ErrNotFound)
}

func TestList(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .* FROM accounts ORDER BY created_at").
		WillReturnRows(accountRows().
			AddRow("id-1", "alice", "alice@example.com", "h", "user", "", true, "", now, now).
			AddRow("id-2", "bob", "bob@example.com", "h", "admin", "", false, "", now, now),
		)

	accounts, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	require.Equal(t, accountd.RoleAdmin, accounts[1].Role)
}

func TestDelete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM accounts WHERE id")).
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), "id-1"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM accounts WHERE id")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, accountd.ErrNotFound)
}
