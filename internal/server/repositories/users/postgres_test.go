package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophersocial/internal/common"
	"github.com/dmitrijs2005/gophersocial/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	qInsert     = `(?s)^INSERT\s+INTO\s+users\s*\(name,\s*username,\s*email,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at\s*$`
	qByID       = `(?s)^SELECT\s+id,\s*name,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	qByUserName = `(?s)^SELECT\s+id,\s*name,.*FROM\s+users\s+WHERE\s+lower\(username\)\s*=\s*lower\(\$1\)\s*$`
	qByEmail    = `(?s)^SELECT\s+id,\s*name,.*FROM\s+users\s+WHERE\s+lower\(email\)\s*=\s*lower\(\$1\)\s*$`
	qForUpdate  = `(?s)^SELECT\s+id,\s*name,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE\s*$`
	qSetRefresh = `(?s)^UPDATE\s+users\s+SET\s+refresh_token\s*=\s*\$2,\s*refresh_token_expiry\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s*$`
	qSetHash    = `(?s)^UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2,\s*refresh_token\s*=\s*NULL,\s*refresh_token_expiry\s*=\s*NULL\s+WHERE\s+id\s*=\s*\$1\s*$`
)

var userColumns = []string{"id", "name", "username", "email", "password_hash", "refresh_token", "refresh_token_expiry", "created_at"}

var (
	created = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	now     = time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qInsert).
		WithArgs("John Doe", "john", "john@example.com", "$argon2id$hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u-1", created))

	u := &models.User{Name: "John Doe", UserName: "john", Email: "john@example.com", PasswordHash: "$argon2id$hash"}
	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, created, got.CreatedAt)
}

func TestCreate_UniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{"users_username_lower_idx", common.ErrUserNameTaken},
		{"users_email_lower_idx", common.ErrEmailTaken},
		{"users_pkey", common.ErrAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			mock.ExpectQuery(qInsert).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			_, err := repo.Create(context.Background(), &models.User{UserName: "john"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qInsert).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{UserName: "john"})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestGetByUserName_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	expiry := now.Add(time.Hour)

	mock.ExpectQuery(qByUserName).
		WithArgs("John").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u-1", "John Doe", "john", "john@example.com", "hash", "rt", expiry, created))

	got, err := repo.GetByUserName(context.Background(), "John")
	require.NoError(t, err)
	assert.Equal(t, &models.User{
		ID: "u-1", Name: "John Doe", UserName: "john", Email: "john@example.com", PasswordHash: "hash",
		RefreshToken: "rt", RefreshTokenExpiry: expiry, CreatedAt: created,
	}, got)
}

func TestGetByEmail_NullRefreshToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qByEmail).
		WithArgs("john@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u-1", "John Doe", "john", "john@example.com", "hash", nil, nil, created))

	got, err := repo.GetByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)
	assert.Empty(t, got.RefreshToken)
	assert.True(t, got.RefreshTokenExpiry.IsZero())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qByID).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qByID).WithArgs("u-1").WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), "u-1")
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db err`), err.Error())
}

func TestSetRefreshToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	expiry := now.Add(time.Hour)

	mock.ExpectExec(qSetRefresh).
		WithArgs("u-1", "rt", expiry).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetRefreshToken(context.Background(), "u-1", "rt", expiry))
}

func TestSetRefreshToken_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(qSetRefresh).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetRefreshToken(context.Background(), "ghost", "rt", now)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRotateRefreshToken_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	nextExpiry := now.Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(qForUpdate).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u-1", "", "john", "j@e.com", "hash", "old", now.Add(time.Minute), created))
	mock.ExpectExec(qSetRefresh).
		WithArgs("u-1", "new", nextExpiry).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RotateRefreshToken(context.Background(), "u-1", "old", "new", nextExpiry, now)
	require.NoError(t, err)
}

func TestRotateRefreshToken_Stale(t *testing.T) {
	tests := []struct {
		name    string
		stored  any
		expiry  any
		current string
	}{
		{name: "different token", stored: "other", expiry: now.Add(time.Minute), current: "old"},
		{name: "expired", stored: "old", expiry: now, current: "old"},
		{name: "empty slot", stored: nil, expiry: nil, current: "old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			mock.ExpectBegin()
			mock.ExpectQuery(qForUpdate).
				WithArgs("u-1").
				WillReturnRows(sqlmock.NewRows(userColumns).
					AddRow("u-1", "", "john", "j@e.com", "hash", tt.stored, tt.expiry, created))
			mock.ExpectRollback()

			err := repo.RotateRefreshToken(context.Background(), "u-1", tt.current, "new", now.Add(time.Hour), now)
			assert.ErrorIs(t, err, common.ErrStaleRefreshToken)
		})
	}
}

func TestRotateRefreshToken_UserMissing(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(qForUpdate).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.RotateRefreshToken(context.Background(), "ghost", "old", "new", now, now)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestChangePasswordHash(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(qSetHash).
		WithArgs("u-1", "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ChangePasswordHash(context.Background(), "u-1", "new-hash"))
}

func TestChangePasswordHash_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(qSetHash).WillReturnError(errors.New("db err"))

	err := repo.ChangePasswordHash(context.Background(), "u-1", "new-hash")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}
