// Package types defines the core data types for mtodo.
package types

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxTitleLength bounds the title in runes.
	MaxTitleLength = 500
	// MaxDescriptionLength bounds the description in runes.
	MaxDescriptionLength = 5000
)

// Todo is a single row of the todo list.
type Todo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsDone      bool      `json:"is_done"`
	IsImportant bool      `json:"is_important"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Draft holds the user-editable fields of a todo.
type Draft struct {
	Title       string
	Description string
	IsDone      bool
	IsImportant bool
}

// Draft returns the editable fields of t.
func (t *Todo) Draft() Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		IsDone:      t.IsDone,
		IsImportant: t.IsImportant,
	}
}

// Apply copies the draft fields onto t. Timestamps are left to the store.
func (t *Todo) Apply(d Draft) {
	t.Title = d.Title
	t.Description = d.Description
	t.IsDone = d.IsDone
	t.IsImportant = d.IsImportant
}

// Clone returns a copy of t.
func (t *Todo) Clone() *Todo {
	c := *t
	return &c
}

// StyleName picks the widget style for a row. Done wins over important.
func (t *Todo) StyleName() string {
	switch {
	case t.IsDone:
		return "todo_item_done"
	case t.IsImportant:
		return "todo_item_important"
	default:
		return "todo_item_normal"
	}
}

// Normalize trims surrounding whitespace from the title and trailing
// whitespace from the description.
func (d Draft) Normalize() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimRight(d.Description, " \t\r\n")
	return d
}

// Validate checks the draft field values.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if n := utf8.RuneCountInString(d.Title); n > MaxTitleLength {
		return fmt.Errorf("title must be %d characters or less (got %d)", MaxTitleLength, n)
	}
	if n := utf8.RuneCountInString(d.Description); n > MaxDescriptionLength {
		return fmt.Errorf("description must be %d characters or less (got %d)", MaxDescriptionLength, n)
	}
	return nil
}

// Filter narrows a todo query. Nil fields don't constrain.
type Filter struct {
	Done      *bool
	Important *bool
}

// Matches reports whether t passes the filter.
func (f Filter) Matches(t *Todo) bool {
	if f.Done != nil && t.IsDone != *f.Done {
		return false
	}
	if f.Important != nil && t.IsImportant != *f.Important {
		return false
	}
	return true
}

// DoneFilter selects rows by their done flag.
func DoneFilter(done bool) Filter {
	return Filter{Done: &done}
}

// String renders the filter as SQL-ish text, e.g. "is_done=1".
func (f Filter) String() string {
	var parts []string
	if f.Done != nil {
		parts = append(parts, "is_done="+boolDigit(*f.Done))
	}
	if f.Important != nil {
		parts = append(parts, "is_important="+boolDigit(*f.Important))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, " AND ")
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
