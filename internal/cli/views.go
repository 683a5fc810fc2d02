package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/dbtask/internal/chat"
	"github.com/roach88/dbtask/internal/repo"
)

// Views wrap results so that text output reads well while JSON output
// keeps the result's own field names.

type userView struct {
	repo.User
}

func (v userView) String() string {
	return fmt.Sprintf("#%d %s", v.ID, v.Name)
}

type usersView []repo.User

func (v usersView) String() string {
	if len(v) == 0 {
		return "no users"
	}
	lines := make([]string, len(v))
	for i, u := range v {
		lines[i] = userView{u}.String()
	}
	return strings.Join(lines, "\n")
}

type registrationView struct {
	chat.Registration
}

func (v registrationView) String() string {
	if v.Created {
		return "registered " + userView{v.User}.String()
	}
	return userView{v.User}.String() + " already exists"
}

type postedView struct {
	chat.Posted
}

func (v postedView) String() string {
	author := fmt.Sprintf("#%d", v.Message.UserID)
	if v.User != nil {
		author = userView{*v.User}.String()
	}
	return fmt.Sprintf("[%s] %s: %s", v.Message.ID, author, v.Message.Body)
}

type timelineView struct {
	chat.Timeline
}

func (v timelineView) String() string {
	if v.User == nil {
		return "no such user"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d messages)", userView{*v.User}, len(v.Messages))
	for _, m := range v.Messages {
		fmt.Fprintf(&b, "\n  [%s] %s", m.ID, m.Body)
	}
	return b.String()
}

type retractView struct {
	MessageID string `json:"message_id"`
	Remaining int    `json:"remaining"`
}

func (v retractView) String() string {
	return fmt.Sprintf("retracted %s, %d messages left", v.MessageID, v.Remaining)
}

type initView struct {
	Path          string `json:"path"`
	SchemaVersion int    `json:"schema_version"`
	Replicas      int    `json:"replicas"`
}

func (v initView) String() string {
	return fmt.Sprintf("initialized %s (schema version %d, %d replica(s))", v.Path, v.SchemaVersion, v.Replicas)
}
