package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/dbtask/internal/task"
)

// Users builds tasks over the users table.
type Users struct{}

// NewUsers returns a users repository.
func NewUsers() Users {
	return Users{}
}

// Create inserts u. The ID is chosen by the caller.
func (Users) Create(u User) task.Task[task.ReadWrite, User] {
	return task.Leaf(func(ctx context.Context, res task.ReadWrite) (User, error) {
		if err := validateName(u.Name); err != nil {
			return User{}, err
		}
		if _, err := res.NamedExecContext(ctx, `INSERT INTO users (id, name) VALUES (:id, :name)`, u); err != nil {
			return User{}, fmt.Errorf("create user %d: %w", u.ID, err)
		}
		return u, nil
	})
}

// Rename changes the name of user id and returns the updated row.
func (Users) Rename(id int64, name string) task.Task[task.ReadWrite, User] {
	return task.Leaf(func(ctx context.Context, res task.ReadWrite) (User, error) {
		if err := validateName(name); err != nil {
			return User{}, err
		}
		result, err := res.ExecContext(ctx, `UPDATE users SET name = ? WHERE id = ?`, name, id)
		if err != nil {
			return User{}, fmt.Errorf("rename user %d: %w", id, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return User{}, fmt.Errorf("rename user %d: rows affected: %w", id, err)
		}
		if n == 0 {
			return User{}, notFound("user", id)
		}
		return User{ID: id, Name: name}, nil
	})
}

// Delete removes user id and their messages. It reports whether a row existed.
func (Users) Delete(id int64) task.Task[task.ReadWrite, bool] {
	return task.Leaf(func(ctx context.Context, res task.ReadWrite) (bool, error) {
		// Cascade depends on the foreign_keys pragma of the connection.
		if _, err := res.ExecContext(ctx, `DELETE FROM messages WHERE user_id = ?`, id); err != nil {
			return false, fmt.Errorf("delete user %d: messages: %w", id, err)
		}
		result, err := res.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return false, fmt.Errorf("delete user %d: %w", id, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("delete user %d: rows affected: %w", id, err)
		}
		return n > 0, nil
	})
}

// Get returns user id or a NotFoundError.
func (Users) Get(id int64) task.Task[task.ReadOnly, User] {
	return task.Leaf(func(ctx context.Context, res task.ReadOnly) (User, error) {
		var u User
		err := res.GetContext(ctx, &u, `SELECT id, name FROM users WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, notFound("user", id)
		}
		if err != nil {
			return User{}, fmt.Errorf("get user %d: %w", id, err)
		}
		return u, nil
	})
}

// Find returns user id, or nil when it does not exist.
func (Users) Find(id int64) task.Task[task.ReadOnly, *User] {
	return task.Leaf(func(ctx context.Context, res task.ReadOnly) (*User, error) {
		var found User
		err := res.GetContext(ctx, &found, `SELECT id, name FROM users WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("find user %d: %w", id, err)
		}
		return &found, nil
	})
}

// List returns every user ordered by ID.
func (Users) List() task.Task[task.ReadOnly, []User] {
	return task.Leaf(func(ctx context.Context, res task.ReadOnly) ([]User, error) {
		users := []User{}
		if err := res.SelectContext(ctx, &users, `SELECT id, name FROM users ORDER BY id ASC`); err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		return users, nil
	})
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	return nil
}
