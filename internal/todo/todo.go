// Package todo defines the task record and its partial-update semantics.
package todo

import "strings"

// Todo represents a single task item.
type Todo struct {
	// ID is assigned by the store on creation and never reused,
	// even after the row is deleted.
	ID int64 `json:"id"`

	// Title is the task text. Never stored empty or whitespace-only.
	Title string `json:"title"`

	// Done marks the task as completed. Defaults to false at creation.
	Done bool `json:"done"`
}

// Patch is a partial update to a Todo. A nil field was not provided and
// leaves the stored value untouched; a non-nil field overwrites it. This
// includes non-nil pointers to false and to the empty string: "provided
// as a falsy value" is not "absent".
type Patch struct {
	Title *string `json:"title,omitempty"`
	Done  *bool   `json:"done,omitempty"`
}

// IsZero reports whether the patch provides no fields at all.
func (p Patch) IsZero() bool {
	return p.Title == nil && p.Done == nil
}

// Apply merges a patch into a todo and returns the result. Provided
// fields overwrite, omitted fields are preserved.
func Apply(t Todo, p Patch) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Done != nil {
		t.Done = *p.Done
	}
	return t
}

// ValidTitle reports whether a title is non-empty after trimming.
func ValidTitle(s string) bool {
	return strings.TrimSpace(s) != ""
}
