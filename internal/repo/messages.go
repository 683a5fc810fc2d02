package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/dbtask/internal/task"
)

// Messages builds tasks over the messages table.
type Messages struct {
	ids IDGenerator
}

// NewMessages returns a messages repository. A nil ids uses UUIDv7Generator.
func NewMessages(ids IDGenerator) Messages {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	return Messages{ids: ids}
}

// Create posts body as userID. The message ID is drawn when the task runs,
// so executing the same task twice creates two messages.
func (m Messages) Create(body string, userID int64) task.Task[task.ReadWrite, Message] {
	return task.Leaf(func(ctx context.Context, res task.ReadWrite) (Message, error) {
		if strings.TrimSpace(body) == "" {
			return Message{}, &ValidationError{Field: "body", Message: "must not be empty"}
		}
		msg := Message{ID: m.generator().Generate(), UserID: userID, Body: body}
		result, err := res.ExecContext(ctx,
			`INSERT INTO messages (id, user_id, body) VALUES (?, ?, ?)`,
			msg.ID, msg.UserID, msg.Body,
		)
		if err != nil {
			return Message{}, fmt.Errorf("create message: %w", err)
		}
		msg.Seq, err = result.LastInsertId()
		if err != nil {
			return Message{}, fmt.Errorf("create message: last insert id: %w", err)
		}
		return msg, nil
	})
}

// Delete removes message id. It reports whether a row existed.
func (Messages) Delete(id string) task.Task[task.ReadWrite, bool] {
	return task.Leaf(func(ctx context.Context, res task.ReadWrite) (bool, error) {
		result, err := res.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
		if err != nil {
			return false, fmt.Errorf("delete message %s: %w", id, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("delete message %s: rows affected: %w", id, err)
		}
		return n > 0, nil
	})
}

// DeleteByAuthor removes message id only if userID posted it. It reports
// whether a row was removed; another user's message is left untouched.
func (Messages) DeleteByAuthor(id string, userID int64) task.Task[task.ReadWrite, bool] {
	return task.Leaf(func(ctx context.Context, res task.ReadWrite) (bool, error) {
		result, err := res.ExecContext(ctx, `DELETE FROM messages WHERE id = ? AND user_id = ?`, id, userID)
		if err != nil {
			return false, fmt.Errorf("delete message %s of user %d: %w", id, userID, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("delete message %s of user %d: rows affected: %w", id, userID, err)
		}
		return n > 0, nil
	})
}

// Get returns message id or a NotFoundError.
func (Messages) Get(id string) task.Task[task.ReadOnly, Message] {
	return task.Leaf(func(ctx context.Context, res task.ReadOnly) (Message, error) {
		var m Message
		err := res.GetContext(ctx, &m, `SELECT seq, id, user_id, body FROM messages WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return Message{}, notFound("message", id)
		}
		if err != nil {
			return Message{}, fmt.Errorf("get message %s: %w", id, err)
		}
		return m, nil
	})
}

// ListByUser returns the messages of userID in posting order.
func (Messages) ListByUser(userID int64) task.Task[task.ReadOnly, []Message] {
	return task.Leaf(func(ctx context.Context, res task.ReadOnly) ([]Message, error) {
		msgs := []Message{}
		err := res.SelectContext(ctx, &msgs, `
			SELECT seq, id, user_id, body
			FROM messages
			WHERE user_id = ?
			ORDER BY seq ASC, id COLLATE BINARY ASC
		`, userID)
		if err != nil {
			return nil, fmt.Errorf("list messages of user %d: %w", userID, err)
		}
		return msgs, nil
	})
}

// CountByUser returns how many messages userID has posted.
func (Messages) CountByUser(userID int64) task.Task[task.ReadOnly, int] {
	return task.Leaf(func(ctx context.Context, res task.ReadOnly) (int, error) {
		var n int
		if err := res.GetContext(ctx, &n, `SELECT COUNT(*) FROM messages WHERE user_id = ?`, userID); err != nil {
			return 0, fmt.Errorf("count messages of user %d: %w", userID, err)
		}
		return n, nil
	})
}

func (m Messages) generator() IDGenerator {
	if m.ids == nil {
		return UUIDv7Generator{}
	}
	return m.ids
}
