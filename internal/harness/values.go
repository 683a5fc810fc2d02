package harness

import (
	"reflect"

	"github.com/roach88/dbtask/internal/chat"
	"github.com/roach88/dbtask/internal/repo"
)

// Results are converted to plain maps and slices so that expectations,
// assertions and golden snapshots all see the same canonical shape.

func userValue(u repo.User) any {
	return userMap(u)
}

func userMap(u repo.User) map[string]any {
	return map[string]any{"id": u.ID, "name": u.Name}
}

func userPtrValue(u *repo.User) any {
	if u == nil {
		return nil
	}
	return userMap(*u)
}

func usersValue(users []repo.User) any {
	out := make([]any, len(users))
	for i, u := range users {
		out[i] = userMap(u)
	}
	return out
}

func messageValue(m repo.Message) any {
	return messageMap(m)
}

func messageMap(m repo.Message) map[string]any {
	return map[string]any{
		"seq":     m.Seq,
		"id":      m.ID,
		"user_id": m.UserID,
		"body":    m.Body,
	}
}

func messagesValue(msgs []repo.Message) any {
	out := make([]any, len(msgs))
	for i, m := range msgs {
		out[i] = messageMap(m)
	}
	return out
}

func boolValue(b bool) any { return b }

func intValue(n int) any { return n }

func postedValue(p chat.Posted) any {
	return map[string]any{
		"message": messageMap(p.Message),
		"user":    userPtrValue(p.User),
	}
}

func registrationValue(r chat.Registration) any {
	return map[string]any{
		"user":    userMap(r.User),
		"created": r.Created,
	}
}

func timelineValue(t chat.Timeline) any {
	return map[string]any{
		"user":     userPtrValue(t.User),
		"messages": messagesValue(t.Messages),
	}
}

// asInt64 accepts the integer types produced by YAML decoding and by the
// converters above.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}

// matchValue reports whether actual satisfies expected. Maps use subset
// semantics, lists must have the same length and match element-wise, and
// integers compare by value regardless of width.
func matchValue(expected, actual any) bool {
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		return matchArgs(act, exp)
	case []any:
		act, ok := actual.([]any)
		if !ok || len(act) != len(exp) {
			return false
		}
		for i := range exp {
			if !matchValue(exp[i], act[i]) {
				return false
			}
		}
		return true
	}

	if e, ok := asInt64(expected); ok {
		a, ok := asInt64(actual)
		return ok && a == e
	}

	return reflect.DeepEqual(expected, actual)
}

// matchArgs checks if actual contains all expected keys (subset match).
// Extra keys in actual are ignored.
func matchArgs(actual, expected map[string]any) bool {
	for key, expectedVal := range expected {
		actualVal, exists := actual[key]
		if !exists {
			return false
		}
		if !matchValue(expectedVal, actualVal) {
			return false
		}
	}
	return true
}
