package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		wantErr string
	}{
		{
			name:  "valid",
			draft: Draft{Title: "Buy milk", Description: "2 litres"},
		},
		{
			name:    "empty title",
			draft:   Draft{Title: ""},
			wantErr: "title is required",
		},
		{
			name:    "whitespace title",
			draft:   Draft{Title: "   \t"},
			wantErr: "title is required",
		},
		{
			name:    "title too long",
			draft:   Draft{Title: strings.Repeat("a", MaxTitleLength+1)},
			wantErr: "title must be 500 characters or less",
		},
		{
			name:  "title at limit counts runes",
			draft: Draft{Title: strings.Repeat("é", MaxTitleLength)},
		},
		{
			name:    "description too long",
			draft:   Draft{Title: "x", Description: strings.Repeat("d", MaxDescriptionLength+1)},
			wantErr: "description must be 5000 characters or less",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDraftNormalize(t *testing.T) {
	d := Draft{Title: "  Call mom \n", Description: "line one\nline two\n\n  "}.Normalize()
	assert.Equal(t, "Call mom", d.Title)
	assert.Equal(t, "line one\nline two", d.Description)
}

func TestTodoStyleName(t *testing.T) {
	assert.Equal(t, "todo_item_normal", (&Todo{}).StyleName())
	assert.Equal(t, "todo_item_important", (&Todo{IsImportant: true}).StyleName())
	assert.Equal(t, "todo_item_done", (&Todo{IsDone: true}).StyleName())
	// done overrides important
	assert.Equal(t, "todo_item_done", (&Todo{IsDone: true, IsImportant: true}).StyleName())
}

func TestTodoDraftRoundTrip(t *testing.T) {
	orig := &Todo{ID: 7, Title: "t", Description: "d", IsDone: true}
	c := orig.Clone()
	c.Apply(Draft{Title: "new", IsImportant: true})

	assert.Equal(t, int64(7), c.ID)
	assert.Equal(t, "new", c.Title)
	assert.Empty(t, c.Description)
	assert.False(t, c.IsDone)
	assert.True(t, c.IsImportant)
	// receiver untouched
	assert.Equal(t, "t", orig.Title)
	assert.Equal(t, Draft{Title: "t", Description: "d", IsDone: true}, orig.Draft())
}

func TestFilterMatches(t *testing.T) {
	done := &Todo{IsDone: true}
	open := &Todo{IsImportant: true}
	important := true

	assert.True(t, Filter{}.Matches(done))
	assert.True(t, Filter{}.Matches(open))
	assert.True(t, DoneFilter(true).Matches(done))
	assert.False(t, DoneFilter(true).Matches(open))
	assert.True(t, DoneFilter(false).Matches(open))
	assert.False(t, Filter{Important: &important}.Matches(done))
}

func TestFilterString(t *testing.T) {
	important := true
	assert.Equal(t, "all", Filter{}.String())
	assert.Equal(t, "is_done=1", DoneFilter(true).String())
	assert.Equal(t, "is_done=0 AND is_important=1", Filter{Done: DoneFilter(false).Done, Important: &important}.String())
}
