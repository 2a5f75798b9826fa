package staff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

func accountRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "username", "password_hash", "role", "department", "created_at"})
}

func sampleTime() time.Time {
	return time.Date(2026, 9, 28, 8, 0, 0, 0, time.UTC)
}

func TestPostgresCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &PostgresStore{pool: mock}
	mock.ExpectQuery("INSERT INTO staff_accounts").
		WithArgs("reception", pgxmock.AnyArg(), RoleStaff, "OPD", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)))

	account, err := store.Create(context.Background(), NewAccount{
		Username:   "reception",
		Password:   "s3cret",
		Department: "OPD",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if account.ID != 2 || account.Role != RoleStaff {
		t.Errorf("account = %+v", account)
	}
	if account.PasswordHash == "" || account.PasswordHash == "s3cret" {
		t.Errorf("password not hashed: %q", account.PasswordHash)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresCreateDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &PostgresStore{pool: mock}
	mock.ExpectQuery("INSERT INTO staff_accounts").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = store.Create(context.Background(), NewAccount{Username: "admin", Password: "pw"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestPostgresCreateRequiresUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &PostgresStore{pool: mock}
	if _, err := store.Create(context.Background(), NewAccount{Password: "pw"}); err == nil {
		t.Fatal("expected error for missing username")
	}
	if _, err := store.Create(context.Background(), NewAccount{Username: "x"}); err == nil {
		t.Fatal("expected error for missing password")
	}
}

func TestPostgresGetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &PostgresStore{pool: mock}
	mock.ExpectQuery("SELECT (.+) FROM staff_accounts").
		WithArgs("admin").
		WillReturnError(pgx.ErrNoRows)

	_, err = store.GetByUsername(context.Background(), " admin ")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPostgresEnsureAdminCreatesWhenMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &PostgresStore{pool: mock}
	mock.ExpectQuery("SELECT (.+) FROM staff_accounts").
		WithArgs("admin").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("INSERT INTO staff_accounts").
		WithArgs("admin", pgxmock.AnyArg(), RoleAdmin, DepartmentAll, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

	if err := store.EnsureAdmin(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresEnsureAdminSkipsExisting(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &PostgresStore{pool: mock}
	mock.ExpectQuery("SELECT (.+) FROM staff_accounts").
		WithArgs("admin").
		WillReturnRows(accountRows().AddRow(int64(1), "admin", "$2a$10$hash", RoleAdmin, DepartmentAll, sampleTime()))

	if err := store.EnsureAdmin(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresEnsureAdminLosesRace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &PostgresStore{pool: mock}
	mock.ExpectQuery("SELECT (.+) FROM staff_accounts").
		WithArgs("admin").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("INSERT INTO staff_accounts").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if err := store.EnsureAdmin(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
}
