package category

import (
	"errors"
	"time"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidName      = errors.New("category name must not be empty")
	ErrCycle            = errors.New("category cannot be nested under its own descendant")
	ErrSelfParent       = errors.New("category cannot be its own parent")
	ErrHasChildren      = errors.New("category still has child categories")
)

// Category is a node in the catalog tree. ParentID is empty for roots.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parent_id,omitempty"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
