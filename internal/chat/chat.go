// Package chat composes repository leaves into the application's flows.
//
// Each flow is a task whose tier is the join of its steps: a flow that
// writes anywhere is a ReadWrite task and can only be executed on the
// primary, while Timeline reads only and may run on a replica.
package chat

import (
	"github.com/roach88/dbtask/internal/repo"
	"github.com/roach88/dbtask/internal/task"
)

// Posted is the result of a flow that creates a message. User is nil if the
// author was deleted within the same flow.
type Posted struct {
	Message repo.Message `json:"message"`
	User    *repo.User   `json:"user"`
}

// Registration is the result of Register.
type Registration struct {
	User    repo.User `json:"user"`
	Created bool      `json:"created"`
}

// Timeline is a user's messages in posting order. User is nil for an
// unknown user, in which case Messages is empty.
type Timeline struct {
	User     *repo.User     `json:"user"`
	Messages []repo.Message `json:"messages"`
}

// Service builds flows. It holds no connections.
type Service struct {
	users    repo.Users
	messages repo.Messages
}

// New returns a Service drawing message IDs from ids. A nil ids uses UUIDv7.
func New(ids repo.IDGenerator) *Service {
	return &Service{
		users:    repo.NewUsers(),
		messages: repo.NewMessages(ids),
	}
}

// Post creates a message and reads back its author.
func (s *Service) Post(body string, userID int64) task.Task[task.ReadWrite, Posted] {
	return task.ThenRead(s.messages.Create(body, userID), func(m repo.Message) task.Task[task.ReadOnly, Posted] {
		return task.Map(s.users.Find(userID), func(u *repo.User) Posted {
			return Posted{Message: m, User: u}
		})
	})
}

// Register creates user id unless it already exists.
func (s *Service) Register(id int64, name string) task.Task[task.ReadWrite, Registration] {
	return task.ThenWrite(s.users.Find(id), func(existing *repo.User) task.Task[task.ReadWrite, Registration] {
		if existing != nil {
			return task.Pure[task.ReadWrite](Registration{User: *existing})
		}
		return task.Map(s.users.Create(repo.User{ID: id, Name: name}), func(u repo.User) Registration {
			return Registration{User: u, Created: true}
		})
	})
}

// Timeline reads a user and their messages.
func (s *Service) Timeline(userID int64) task.Task[task.ReadOnly, Timeline] {
	return task.Then(s.users.Find(userID), func(u *repo.User) task.Task[task.ReadOnly, Timeline] {
		if u == nil {
			return task.Pure[task.ReadOnly](Timeline{Messages: []repo.Message{}})
		}
		return task.Map(s.messages.ListByUser(userID), func(msgs []repo.Message) Timeline {
			return Timeline{User: u, Messages: msgs}
		})
	})
}

// Rename renames a user and posts an announcement as them.
func (s *Service) Rename(id int64, name, announcement string) task.Task[task.ReadWrite, Posted] {
	return task.Then(s.users.Rename(id, name), func(u repo.User) task.Task[task.ReadWrite, Posted] {
		return task.Map(s.messages.Create(announcement, id), func(m repo.Message) Posted {
			return Posted{Message: m, User: &u}
		})
	})
}

// Retract deletes a message posted by userID and returns how many messages
// userID has left. A message that does not exist or was posted by someone
// else fails with a NotFoundError and nothing is deleted.
func (s *Service) Retract(messageID string, userID int64) task.Task[task.ReadWrite, int] {
	return task.ThenRead(s.messages.DeleteByAuthor(messageID, userID), func(deleted bool) task.Task[task.ReadOnly, int] {
		if !deleted {
			return task.Fail[task.ReadOnly, int](&repo.NotFoundError{Entity: "message", ID: messageID})
		}
		return s.messages.CountByUser(userID)
	})
}
