package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/seedvest/internal/common"
	"github.com/dmitrijs2005/seedvest/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	insertQuery = `(?s)^\s*INSERT\s+INTO\s+accounts\s*\(id,\s*email,\s*full_name,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+created_at\s*$`
	selectCols  = `id,\s*email,\s*full_name,\s*password_hash,\s*refresh_token_hash,\s*created_at`
)

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"created_at"}).AddRow(created)
	mock.ExpectQuery(insertQuery).
		WithArgs("a-1", "a@x.com", "Alice", "hash").
		WillReturnRows(rows)

	a := &models.Account{ID: "a-1", Email: "a@x.com", FullName: "Alice", PasswordHash: "hash"}
	got, err := repo.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at: %v", got.CreatedAt)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WithArgs("a-1", "a@x.com", "Alice", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})

	_, err := repo.Create(context.Background(), &models.Account{ID: "a-1", Email: "a@x.com", FullName: "Alice", PasswordHash: "hash"})
	if !errors.Is(err, common.ErrEmailTaken) {
		t.Fatalf("want common.ErrEmailTaken, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WithArgs("a-1", "a@x.com", "Alice", "hash").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Account{ID: "a-1", Email: "a@x.com", FullName: "Alice", PasswordHash: "hash"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+` + selectCols + `\s+FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows([]string{"id", "email", "full_name", "password_hash", "refresh_token_hash", "created_at"}).
		AddRow("a-1", "a@x.com", "Alice", "hash", "rth", time.Now())
	mock.ExpectQuery(q).WithArgs("a@x.com").WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != "a-1" || got.Email != "a@x.com" {
		t.Fatalf("unexpected account: %+v", got)
	}
	if got.RefreshTokenHash == nil || *got.RefreshTokenHash != "rth" {
		t.Fatalf("expected refresh token hash, got %+v", got.RefreshTokenHash)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+` + selectCols + `\s+FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1\s*$`

	mock.ExpectQuery(q).WithArgs("ghost@x.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestGetByID_NullRefreshTokenHash(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+` + selectCols + `\s+FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows([]string{"id", "email", "full_name", "password_hash", "refresh_token_hash", "created_at"}).
		AddRow("a-1", "a@x.com", "Alice", "hash", nil, time.Now())
	mock.ExpectQuery(q).WithArgs("a-1").WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "a-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.RefreshTokenHash != nil {
		t.Fatalf("expected nil refresh token hash, got %q", *got.RefreshTokenHash)
	}
}

func TestSetRefreshTokenHash(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+accounts\s+SET\s+refresh_token_hash\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1\s*$`

	// database/sql dereferences non-nil pointer args before they reach the driver
	hash := "new-hash"
	mock.ExpectExec(q).WithArgs("a-1", "new-hash").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetRefreshTokenHash(context.Background(), "a-1", &hash); err != nil {
		t.Fatalf("SetRefreshTokenHash error: %v", err)
	}
}

func TestSwapRefreshTokenHash_RowUpdated(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+accounts\s+SET\s+refresh_token_hash\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s+AND\s+refresh_token_hash\s*=\s*\$2\s*$`

	mock.ExpectExec(q).WithArgs("a-1", "old", "new").WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.SwapRefreshTokenHash(context.Background(), "a-1", "old", "new")
	if err != nil {
		t.Fatalf("SwapRefreshTokenHash error: %v", err)
	}
	if !ok {
		t.Fatalf("expected swap to report success")
	}
}

func TestSwapRefreshTokenHash_StaleHash(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+accounts\s+SET\s+refresh_token_hash\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s+AND\s+refresh_token_hash\s*=\s*\$2\s*$`

	mock.ExpectExec(q).WithArgs("a-1", "stale", "new").WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.SwapRefreshTokenHash(context.Background(), "a-1", "stale", "new")
	if err != nil {
		t.Fatalf("SwapRefreshTokenHash error: %v", err)
	}
	if ok {
		t.Fatalf("expected swap to report failure for stale hash")
	}
}

func TestClearRefreshTokenHash(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+accounts\s+SET\s+refresh_token_hash\s*=\s*NULL\s+WHERE\s+id\s*=\s*\$1\s+AND\s+refresh_token_hash\s*=\s*\$2\s*$`

	mock.ExpectExec(q).WithArgs("a-1", "old").WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.ClearRefreshTokenHash(context.Background(), "a-1", "old")
	if err != nil {
		t.Fatalf("ClearRefreshTokenHash error: %v", err)
	}
	if !ok {
		t.Fatalf("expected clear to report success")
	}
}
