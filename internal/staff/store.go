// Package staff manages reception accounts and their login sessions.
package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

// Roles understood by the staff surface.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// DepartmentAll grants queue and dashboard access across departments.
const DepartmentAll = "ALL"

// Account is a staff login record. The hash never leaves the package through
// JSON.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Department   string    `json:"department"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAccount is the input for Create. Password is plaintext and hashed on
// the way in.
type NewAccount struct {
	Username   string
	Password   string
	Role       string
	Department string
}

func (n *NewAccount) normalize() error {
	n.Username = strings.TrimSpace(n.Username)
	if n.Username == "" {
		return fmt.Errorf("staff: username is required")
	}
	if n.Password == "" {
		return fmt.Errorf("staff: password is required")
	}
	if n.Role == "" {
		n.Role = RoleStaff
	}
	if n.Department == "" {
		n.Department = DepartmentAll
	}
	return nil
}

// Store persists staff accounts.
type Store interface {
	Create(ctx context.Context, account NewAccount) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	// EnsureAdmin creates the bootstrap admin account when missing.
	EnsureAdmin(ctx context.Context, username, password string) error
}

// PgxPool is the subset of pgxpool.Pool the store uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps accounts in Postgres.
type PostgresStore struct {
	pool PgxPool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates the store. The pool is required.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	if pool == nil {
		panic("staff: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, account NewAccount) (*Account, error) {
	if err := account.normalize(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("staff: failed to hash password: %w", err)
	}

	created := &Account{
		Username:     account.Username,
		PasswordHash: string(hash),
		Role:         account.Role,
		Department:   account.Department,
		CreatedAt:    time.Now().UTC(),
	}
	query := `
		INSERT INTO staff_accounts (username, password_hash, role, department, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err = s.pool.QueryRow(ctx, query,
		created.Username,
		created.PasswordHash,
		created.Role,
		created.Department,
		created.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("staff: failed to create account: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (*Account, error) {
	query := `
		SELECT id, username, password_hash, role, department, created_at
		FROM staff_accounts
		WHERE username = $1
	`
	var account Account
	err := s.pool.QueryRow(ctx, query, strings.TrimSpace(username)).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.Role,
		&account.Department,
		&account.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("staff: failed to load account: %w", err)
	}
	return &account, nil
}

func (s *PostgresStore) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	_, err = s.Create(ctx, NewAccount{
		Username:   username,
		Password:   password,
		Role:       RoleAdmin,
		Department: DepartmentAll,
	})
	// A concurrent boot may have won the race.
	if errors.Is(err, ErrUsernameTaken) {
		return nil
	}
	return err
}

// MemoryStore backs tests and single-process setups.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*Account
	nextID   int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]*Account)}
}

func (s *MemoryStore) Create(ctx context.Context, account NewAccount) (*Account, error) {
	if err := account.normalize(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("staff: failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.Username]; exists {
		return nil, ErrUsernameTaken
	}
	s.nextID++
	created := &Account{
		ID:           s.nextID,
		Username:     account.Username,
		PasswordHash: string(hash),
		Role:         account.Role,
		Department:   account.Department,
		CreatedAt:    time.Now().UTC(),
	}
	s.accounts[created.Username] = created
	cp := *created
	return &cp, nil
}

func (s *MemoryStore) GetByUsername(ctx context.Context, username string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[strings.TrimSpace(username)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *account
	return &cp, nil
}

func (s *MemoryStore) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	_, err = s.Create(ctx, NewAccount{
		Username:   username,
		Password:   password,
		Role:       RoleAdmin,
		Department: DepartmentAll,
	})
	if errors.Is(err, ErrUsernameTaken) {
		return nil
	}
	return err
}
