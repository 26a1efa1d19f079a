// Package repository contains data access logic separated from HTTP handlers.
// This file implements the users table queries.  Only the Credentials
// projection ever selects password_hash; every other read returns sanitized
// columns.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/quemtemboca/marketplace-api/internal/model"
)

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

// UserRepo encapsulates all database queries related to users.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo with the provided DB handle.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a user.  On success u.ID, u.CreatedAt and u.UpdatedAt are
// populated from the database.  A duplicate email hash yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const qInsert = "INSERT INTO users (email_hash, username, password_hash, is_admin) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, qInsert, u.EmailHash, u.Username, u.PasswordHash, u.IsAdmin)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)

	// follow-up SELECT picks up the default timestamps
	const qSelect = "SELECT created_at, updated_at FROM users WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, u.ID).Scan(&u.CreatedAt, &u.UpdatedAt)
}

// FindByEmailHash returns the login projection for the given email hash.
func (r *UserRepo) FindByEmailHash(ctx context.Context, emailHash string) (model.Credentials, error) {
	const q = "SELECT id, username, password_hash FROM users WHERE email_hash = ? LIMIT 1"
	var c model.Credentials
	if err := r.db.QueryRowContext(ctx, q, emailHash).Scan(&c.ID, &c.Username, &c.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Credentials{}, ErrUserNotFound
		}
		return model.Credentials{}, err
	}
	return c, nil
}

// GetLoggedInUser returns the caller projection (id, username, admin flag).
func (r *UserRepo) GetLoggedInUser(ctx context.Context, id uint64) (model.Caller, error) {
	const q = "SELECT id, username, is_admin FROM users WHERE id = ? LIMIT 1"
	var c model.Caller
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Username, &c.IsAdmin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Caller{}, ErrUserNotFound
		}
		return model.Caller{}, err
	}
	return c, nil
}

// FindAll returns every user ordered by id.
func (r *UserRepo) FindAll(ctx context.Context) ([]model.PublicUser, error) {
	const q = "SELECT id, username, created_at, updated_at FROM users ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.PublicUser{}
	for rows.Next() {
		var u model.PublicUser
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindOne returns the sanitized projection of one user.
func (r *UserRepo) FindOne(ctx context.Context, id uint64) (model.PublicUser, error) {
	return findOne(ctx, r.db, id)
}

// UserUpdate lists the mutable columns.  Nil fields are left untouched.
type UserUpdate struct {
	Username     *string
	PasswordHash *string
}

// Update applies the non-nil fields of upd and returns the updated user.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd UserUpdate) (model.PublicUser, error) {
	sets := []string{}
	args := []any{}
	if upd.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *upd.Username)
	}
	if upd.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *upd.PasswordHash)
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		q := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := r.db.ExecContext(ctx, q, append(args, id)...); err != nil {
			return model.PublicUser{}, err
		}
	}
	// RowsAffected is 0 for unchanged values in MySQL; existence is decided here
	return findOne(ctx, r.db, id)
}

// Remove deletes a user and returns the row as it was before deletion.  The
// read and delete share one transaction.
func (r *UserRepo) Remove(ctx context.Context, id uint64) (out model.PublicUser, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.PublicUser{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	if out, err = findOne(ctx, tx, id); err != nil {
		return model.PublicUser{}, err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id); err != nil {
		return model.PublicUser{}, err
	}
	return out, nil
}

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findOne(ctx context.Context, q queryRower, id uint64) (model.PublicUser, error) {
	const stmt = "SELECT id, username, created_at, updated_at FROM users WHERE id = ?"
	var u model.PublicUser
	if err := q.QueryRowContext(ctx, stmt, id).Scan(&u.ID, &u.Username, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.PublicUser{}, ErrUserNotFound
		}
		return model.PublicUser{}, err
	}
	return u, nil
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
