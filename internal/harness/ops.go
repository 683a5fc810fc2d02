package harness

import (
	"fmt"

	"github.com/roach88/dbtask/internal/chat"
	"github.com/roach88/dbtask/internal/repo"
	"github.com/roach88/dbtask/internal/task"
)

// step is one operation bound to its arguments. Exactly one of read and
// write is set, matching the operation's tier.
type step struct {
	op    string
	args  map[string]any
	read  task.Task[task.ReadOnly, any]
	write task.Task[task.ReadWrite, any]
}

func (s step) tier() task.Tier {
	if !s.write.IsZero() {
		return s.write.Tier()
	}
	return s.read.Tier()
}

// asWrite returns the step as a ReadWrite task, widening reads.
func (s step) asWrite() task.Task[task.ReadWrite, any] {
	if !s.write.IsZero() {
		return s.write
	}
	return task.Widen(s.read)
}

// env holds the repositories that operations draw tasks from.
type env struct {
	users    repo.Users
	messages repo.Messages
	chat     *chat.Service
}

func newEnv(ids repo.IDGenerator) *env {
	return &env{
		users:    repo.NewUsers(),
		messages: repo.NewMessages(ids),
		chat:     chat.New(ids),
	}
}

type opFunc func(e *env, a args) (step, error)

// ops maps operation names to task builders.
var ops = map[string]opFunc{
	"create_user": func(e *env, a args) (step, error) {
		id, name := a.integer("id"), a.text("name")
		if a.err != nil {
			return step{}, a.err
		}
		return writeStep(e.users.Create(repo.User{ID: id, Name: name}), userValue), nil
	},
	"rename_user": func(e *env, a args) (step, error) {
		id, name := a.integer("id"), a.text("name")
		if a.err != nil {
			return step{}, a.err
		}
		return writeStep(e.users.Rename(id, name), userValue), nil
	},
	"delete_user": func(e *env, a args) (step, error) {
		id := a.integer("id")
		if a.err != nil {
			return step{}, a.err
		}
		return writeStep(e.users.Delete(id), boolValue), nil
	},
	"get_user": func(e *env, a args) (step, error) {
		id := a.integer("id")
		if a.err != nil {
			return step{}, a.err
		}
		return readStep(e.users.Get(id), userValue), nil
	},
	"find_user": func(e *env, a args) (step, error) {
		id := a.integer("id")
		if a.err != nil {
			return step{}, a.err
		}
		return readStep(e.users.Find(id), userPtrValue), nil
	},
	"list_users": func(e *env, _ args) (step, error) {
		return readStep(e.users.List(), usersValue), nil
	},
	"create_message": func(e *env, a args) (step, error) {
		userID, body := a.integer("user_id"), a.text("body")
		if a.err != nil {
			return step{}, a.err
		}
		return writeStep(e.messages.Create(body, userID), messageValue), nil
	},
	"delete_message": func(e *env, a args) (step, error) {
		id := a.text("id")
		if a.err != nil {
			return step{}, a.err
		}
		return writeStep(e.messages.Delete(id), boolValue), nil
	},
	"get_message": func(e *env, a args) (step, error) {
		id := a.text("id")
		if a.err != nil {
			return step{}, a.err
		}
		return readStep(e.messages.Get(id), messageValue), nil
	},
	"list_messages": func(e *env, a args) (step, error) {
		userID := a.integer("user_id")
		if a.err != nil {
			return step{}, a.err
		}
		return readStep(e.messages.ListByUser(userID), messagesValue), nil
	},
	"count_messages": func(e *env, a args) (step, error) {
		userID := a.integer("user_id")
		if a.err != nil {
			return step{}, a.err
		}
		return readStep(e.messages.CountByUser(userID), intValue), nil
	},
	"post": func(e *env, a args) (step, error) {
		userID, body := a.integer("user_id"), a.text("body")
		if a.err != nil {
			return step{}, a.err
		}
		return writeStep(e.chat.Post(body, userID), postedValue), nil
	},
	"register": func(e *env, a args) (step, error) {
		id, name := a.integer("id"), a.text("name")
		if a.err != nil {
			return step{}, a.err
		}
		return writeStep(e.chat.Register(id, name), registrationValue), nil
	},
	"timeline": func(e *env, a args) (step, error) {
		userID := a.integer("user_id")
		if a.err != nil {
			return step{}, a.err
		}
		return readStep(e.chat.Timeline(userID), timelineValue), nil
	},
	"rename_announce": func(e *env, a args) (step, error) {
		id, name, body := a.integer("id"), a.text("name"), a.text("body")
		if a.err != nil {
			return step{}, a.err
		}
		return writeStep(e.chat.Rename(id, name, body), postedValue), nil
	},
	"retract": func(e *env, a args) (step, error) {
		id, userID := a.text("id"), a.integer("user_id")
		if a.err != nil {
			return step{}, a.err
		}
		return writeStep(e.chat.Retract(id, userID), intValue), nil
	},
}

// bind builds the step for s.
func (e *env) bind(s Step) (step, error) {
	build, ok := ops[s.Op]
	if !ok {
		return step{}, fmt.Errorf("unknown op %q", s.Op)
	}
	st, err := build(e, args{values: s.Args})
	if err != nil {
		return step{}, fmt.Errorf("%s: %w", s.Op, err)
	}
	st.op = s.Op
	st.args = s.Args
	return st, nil
}

func readStep[V any](t task.Task[task.ReadOnly, V], conv func(V) any) step {
	return step{read: task.Map(t, conv)}
}

func writeStep[V any](t task.Task[task.ReadWrite, V], conv func(V) any) step {
	return step{write: task.Map(t, conv)}
}

// args reads typed arguments and keeps the first error.
type args struct {
	values map[string]any
	err    error
}

func (a *args) integer(key string) int64 {
	v, ok := a.lookup(key)
	if !ok {
		return 0
	}
	n, ok := asInt64(v)
	if !ok {
		a.fail(fmt.Errorf("arg %q: expected integer, got %T", key, v))
	}
	return n
}

func (a *args) text(key string) string {
	v, ok := a.lookup(key)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		a.fail(fmt.Errorf("arg %q: expected string, got %T", key, v))
	}
	return s
}

func (a *args) lookup(key string) (any, bool) {
	v, ok := a.values[key]
	if !ok {
		a.fail(fmt.Errorf("arg %q is required", key))
	}
	return v, ok
}

func (a *args) fail(err error) {
	if a.err == nil {
		a.err = err
	}
}
