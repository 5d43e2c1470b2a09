// Package postgres implements the account credential store on
// PostgreSQL via database/sql and the pgx stdlib driver. Uniqueness of
// username and email is enforced by unique indexes, never by
// read-then-write, and every write path that sets a password hashes the
// plaintext first.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/thanhldev/accountd"
	"github.com/thanhldev/accountd/internal/postgres/migrations"
)

const uniqueViolation = "23505"

const accountColumns = `id, username, email, password_hash, role, avatar_url, is_verified, refresh_token, created_at, updated_at`

// Store is a PostgreSQL-backed [accountd.Store]. The hasher is injected
// so login verification elsewhere shares the same parameters.
type Store struct {
	db     *sql.DB
	hasher accountd.Hasher
	now    func() time.Time
}

// Open connects to dsn, applies pending migrations, and returns a ready
// store.
func Open(ctx context.Context, dsn string, hasher accountd.Hasher) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return NewStore(db, hasher), nil
}

// NewStore wraps an already-open connection pool. Migrations are the
// caller's responsibility on this path.
func NewStore(db *sql.DB, hasher accountd.Hasher) *Store {
	return &Store{db: db, hasher: hasher, now: time.Now}
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, in accountd.NewAccount) (*accountd.Account, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	account := &accountd.Account{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		IsVerified:   in.IsVerified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := `INSERT INTO accounts
		(id, username, email, password_hash, role, avatar_url, is_verified, refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = s.db.ExecContext(ctx, query,
		account.ID, account.Username, account.Email, account.PasswordHash,
		string(account.Role), account.AvatarURL, account.IsVerified,
		account.RefreshToken, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return account, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*accountd.Account, error) {
	return s.getBy(ctx, "id", id)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*accountd.Account, error) {
	return s.getBy(ctx, "email", email)
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*accountd.Account, error) {
	return s.getBy(ctx, "username", username)
}

func (s *Store) getBy(ctx context.Context, column, value string) (*accountd.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE %s = $1`, accountColumns, column)
	return scanAccount(s.db.QueryRowContext(ctx, query, value))
}

func (s *Store) Update(ctx context.Context, id string, patch accountd.AccountPatch) (*accountd.Account, error) {
	set := make([]string, 0, 7)
	args := make([]any, 0, 8)

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Username != nil {
		add("username", *patch.Username)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Role != nil {
		add("role", string(*patch.Role))
	}
	if patch.AvatarURL != nil {
		add("avatar_url", *patch.AvatarURL)
	}
	if patch.IsVerified != nil {
		add("is_verified", *patch.IsVerified)
	}
	if patch.RefreshToken != nil {
		add("refresh_token", *patch.RefreshToken)
	}
	if len(set) == 0 {
		return s.GetByID(ctx, id)
	}
	add("updated_at", s.now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE accounts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), accountColumns,
	)

	account, err := scanAccount(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Store) SetPassword(ctx context.Context, id string, plaintext string) error {
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	query := `UPDATE accounts SET password_hash = $1, updated_at = $2 WHERE id = $3`
	res, err := s.db.ExecContext(ctx, query, hash, s.now().UTC(), id)
	if err != nil {
		return mapError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return accountd.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]accountd.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts ORDER BY created_at`, accountColumns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var accounts []accountd.Account
	for rows.Next() {
		var a accountd.Account
		var role string
		err := rows.Scan(
			&a.ID, &a.Username, &a.Email, &a.PasswordHash, &role,
			&a.AvatarURL, &a.IsVerified, &a.RefreshToken, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		a.Role = accountd.Role(role)
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return accounts, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return accountd.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*accountd.Account, error) {
	var a accountd.Account
	var role string
	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &role,
		&a.AvatarURL, &a.IsVerified, &a.RefreshToken, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountd.ErrNotFound
		}
		return nil, mapError(err)
	}
	a.Role = accountd.Role(role)
	return &a, nil
}

// mapError translates driver errors into the store's error taxonomy.
// Unique violations are told apart by constraint name so callers get a
// field-specific duplicate error.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "accounts_username_key":
			return accountd.ErrDuplicateUsername
		case "accounts_email_key":
			return accountd.ErrDuplicateEmail
		}
	}
	return fmt.Errorf("db error: %w", err)
}
