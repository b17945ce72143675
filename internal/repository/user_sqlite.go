package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"auth_backend/internal/models"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type UserSQLite struct {
	db    *sql.DB
	newID func() string
	now   func() time.Time
}

func NewUserSQLite(db *sql.DB) *UserSQLite {
	return &UserSQLite{db: db, newID: uuid.NewString, now: time.Now}
}

// Ensure implementation of Users interface at compile time.
var _ Users = (*UserSQLite)(nil)

const (
	userColumns = `id, name, email, password_hash, profile_picture, created_at, updated_at`

	insertUserSQL           = `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	selectUserByEmailSQL    = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	selectUserByIDSQL       = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	updateProfilePictureSQL = `UPDATE users SET profile_picture = ?, updated_at = ? WHERE id = ?`
)

// Create assigns an ID and timestamps to u and inserts it.
func (r *UserSQLite) Create(ctx context.Context, u *models.User) error {
	id := r.newID()
	now := r.now().UTC()

	_, err := r.db.ExecContext(ctx, insertUserSQL,
		id, u.Name, u.Email, u.PasswordHash, u.ProfilePicture, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user %q: %w", u.Email, err)
	}

	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (r *UserSQLite) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := r.selectOne(ctx, selectUserByEmailSQL, email)
	if err != nil {
		return nil, fmt.Errorf("select user by email %q: %w", email, err)
	}
	return u, nil
}

func (r *UserSQLite) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := r.selectOne(ctx, selectUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("select user by id %q: %w", id, err)
	}
	return u, nil
}

// UpdateProfilePicture replaces the picture URL and returns the updated row.
func (r *UserSQLite) UpdateProfilePicture(ctx context.Context, id, url string) (*models.User, error) {
	res, err := r.db.ExecContext(ctx, updateProfilePictureSQL, url, r.now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("update profile picture for %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected for %q: %w", id, err)
	}
	if n == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *UserSQLite) selectOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.ProfilePicture, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
