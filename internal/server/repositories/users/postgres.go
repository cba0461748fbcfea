package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophersocial/internal/common"
	"github.com/dmitrijs2005/gophersocial/internal/dbx"
	"github.com/dmitrijs2005/gophersocial/internal/server/models"
)

const selectUser = `SELECT id, name, username, email, password_hash, refresh_token, refresh_token_expiry, created_at
		 FROM users
		 `

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (name, username, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.UserName, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if constraint, ok := dbx.UniqueViolation(err); ok {
			switch constraint {
			case "users_username_lower_idx":
				return nil, common.ErrUserNameTaken
			case "users_email_lower_idx":
				return nil, common.ErrEmailTaken
			}
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, r.db, selectUser+`WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	return r.getOne(ctx, r.db, selectUser+`WHERE lower(username) = lower($1)`, userName)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, r.db, selectUser+`WHERE lower(email) = lower($1)`, email)
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, userID, token string, expiry time.Time) error {
	query :=
		`UPDATE users SET refresh_token = $2, refresh_token_expiry = $3
		 WHERE id = $1
		 `
	return r.execOne(ctx, r.db, query, userID, token, expiry.UTC())
}

func (r *PostgresRepository) RotateRefreshToken(ctx context.Context, userID, current, next string, nextExpiry, now time.Time) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := r.getOne(ctx, tx, selectUser+`WHERE id = $1 FOR UPDATE`, userID)
		if err != nil {
			return err
		}

		if !user.RefreshTokenMatches(current, now) {
			return common.ErrStaleRefreshToken
		}

		query :=
			`UPDATE users SET refresh_token = $2, refresh_token_expiry = $3
			 WHERE id = $1
			 `
		return r.execOne(ctx, tx, query, userID, next, nextExpiry.UTC())
	})
}

func (r *PostgresRepository) ChangePasswordHash(ctx context.Context, userID, passwordHash string) error {
	query :=
		`UPDATE users SET password_hash = $2, refresh_token = NULL, refresh_token_expiry = NULL
		 WHERE id = $1
		 `
	return r.execOne(ctx, r.db, query, userID, passwordHash)
}

func (r *PostgresRepository) getOne(ctx context.Context, db dbx.DBTX, query string, args ...any) (*models.User, error) {
	var (
		user         models.User
		refreshToken sql.NullString
		expiry       sql.NullTime
	)

	err := db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.Name, &user.UserName, &user.Email, &user.PasswordHash,
		&refreshToken, &expiry, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.RefreshToken = refreshToken.String
	if expiry.Valid {
		user.RefreshTokenExpiry = expiry.Time
	}

	return &user, nil
}

// execOne runs an UPDATE that must touch exactly one row.
func (r *PostgresRepository) execOne(ctx context.Context, db dbx.DBTX, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
