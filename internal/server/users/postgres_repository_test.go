package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akarpovs/livegate/internal/common"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func userColumns() []string {
	return []string{"id", "email", "password_hash", "full_name", "is_active", "roles", "created_at"}
}

func TestPostgresRepository_Create_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u1", "alice@x.com", []byte("hash"), "Alice", true, "user").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	repo := NewPostgresRepository(db)
	u, err := repo.Create(context.Background(), &User{
		ID:           "u1",
		Email:        "alice@x.com",
		PasswordHash: []byte("hash"),
		FullName:     "Alice",
		IsActive:     true,
		Roles:        []Role{RoleUser},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !u.CreatedAt.Equal(now) {
		t.Fatalf("created_at not scanned")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestPostgresRepository_Create_DuplicateEmail(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	repo := NewPostgresRepository(db)
	_, err := repo.Create(context.Background(), &User{ID: "u1", Email: "alice@x.com"})
	if !errors.Is(err, common.ErrorConflict) {
		t.Fatalf("expected common.ErrorConflict, got %v", err)
	}
}

func TestPostgresRepository_GetByEmail_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, is_active, roles, created_at FROM users")).
		WithArgs("alice@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow("u1", "alice@x.com", []byte("hash"), "Alice", true, "user,admin", time.Now()))

	repo := NewPostgresRepository(db)
	u, err := repo.GetByEmail(context.Background(), "alice@x.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if u.ID != "u1" || u.Email != "alice@x.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if len(u.Roles) != 2 || u.Roles[0] != RoleUser || u.Roles[1] != RoleAdmin {
		t.Fatalf("roles not decoded: %v", u.Roles)
	}
}

func TestPostgresRepository_GetByEmail_NotFound(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("nobody@x.com").
		WillReturnError(sql.ErrNoRows)

	repo := NewPostgresRepository(db)
	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestPostgresRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	repo := NewPostgresRepository(db)
	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestRoleRoundTrip(t *testing.T) {
	t.Parallel()

	roles := []Role{RoleUser, RoleSuperUser}
	got := splitRoles(joinRoles(roles))
	if len(got) != 2 || got[0] != RoleUser || got[1] != RoleSuperUser {
		t.Fatalf("round trip mismatch: %v", got)
	}
	if splitRoles("") != nil {
		t.Fatalf("empty column must decode to no roles")
	}
}
