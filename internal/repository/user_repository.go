package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"teamtask/internal/models"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, name, email, password, role, reset_password_token, reset_password_expire, created_at`

type UserRepository struct {
	db     sqlx.ExtContext
	hasher PasswordHasher
	now    func() time.Time
}

// Create hashes password and inserts a user with role "user".
func (r *UserRepository) Create(ctx context.Context, name, email, password string) (*models.User, error) {
	return r.create(ctx, name, email, password, models.RoleUser)
}

func (r *UserRepository) create(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	hashed, err := r.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	const q = `INSERT INTO users (name, email, password, role, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, name, email, hashed, role, r.now())
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// FindByResetToken returns the user holding tokenHash if it has not expired at now.
func (r *UserRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users
		WHERE reset_password_token = ? AND reset_password_expire > ?`
	return r.findOne(ctx, q, tokenHash, now.UnixMilli())
}

func (r *UserRepository) findOne(ctx context.Context, q string, args ...interface{}) (*models.User, error) {
	var u models.User
	if err := sqlx.GetContext(ctx, r.db, &u, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) ComparePassword(password, hash string) bool {
	return r.hasher.Verify(password, hash)
}

// UpdateUser writes the provided fields and returns the number of rows changed.
func (r *UserRepository) UpdateUser(ctx context.Context, id int64, u models.UserUpdate) (int64, error) {
	if u.Empty() {
		return 0, nil
	}
	var (
		sets []string
		args []interface{}
	)
	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *u.Email)
	}
	if u.Password != nil {
		sets = append(sets, "password = ?")
		args = append(args, *u.Password)
	}
	if u.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, *u.Role)
	}
	args = append(args, id)

	q := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	return r.exec(ctx, "update user", q, args...)
}

// SetResetToken stores the hash of a reset token and its expiry.
func (r *UserRepository) SetResetToken(ctx context.Context, id int64, tokenHash string, expires time.Time) error {
	const q = `UPDATE users SET reset_password_token = ?, reset_password_expire = ? WHERE id = ?`
	n, err := r.exec(ctx, "set reset token", q, tokenHash, expires.UnixMilli(), id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetPassword stores a new password hash and clears any pending reset token.
func (r *UserRepository) ResetPassword(ctx context.Context, id int64, password string) error {
	hashed, err := r.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	const q = `UPDATE users
		SET password = ?, reset_password_token = NULL, reset_password_expire = NULL
		WHERE id = ?`
	n, err := r.exec(ctx, "reset password", q, hashed, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSummaries returns every user as {id, name, email}, ordered by name.
func (r *UserRepository) ListSummaries(ctx context.Context) ([]models.UserSummary, error) {
	out := []models.UserSummary{}
	if err := sqlx.SelectContext(ctx, r.db, &out, `SELECT id, name, email FROM users ORDER BY name ASC, id ASC`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// GetAll returns every user, newest first.
func (r *UserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`
	if err := sqlx.SelectContext(ctx, r.db, &out, q); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "users")
}

// UpsertAdmin creates the account or, when the email already exists, resets
// its name and password and promotes it to admin. Existing rows keep their id
// so tasks and comments stay attached.
func (r *UserRepository) UpsertAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	existing, err := r.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return r.create(ctx, name, email, password, models.RoleAdmin)
	}
	if err != nil {
		return nil, err
	}

	hashed, err := r.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := models.RoleAdmin
	if _, err := r.UpdateUser(ctx, existing.ID, models.UserUpdate{Name: &name, Password: &hashed, Role: &role}); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, existing.ID)
}

func (r *UserRepository) exec(ctx context.Context, op, q string, args ...interface{}) (int64, error) {
	return execAffected(ctx, r.db, op, q, args...)
}
