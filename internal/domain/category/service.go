package category

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	ListChildren(ctx context.Context, parentID string) ([]*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id string) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, id string) (*Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) Create(ctx context.Context, name, parentID string, sortOrder int) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if parentID != "" {
		if _, err := s.store.GetCategory(ctx, parentID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	c := &Category{
		ID:        uuid.New().String(),
		Name:      name,
		ParentID:  parentID,
		SortOrder: sortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update renames and optionally re-parents a category. Re-parenting is
// rejected when the new parent is the category itself or any of its
// descendants, which would detach the subtree from the root.
func (s *Service) Update(ctx context.Context, id, name, parentID string, sortOrder int) (*Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if parentID != "" && parentID != c.ParentID {
		if err := s.checkCycle(ctx, id, parentID); err != nil {
			return nil, err
		}
	}

	c.Name = name
	c.ParentID = parentID
	c.SortOrder = sortOrder
	c.UpdatedAt = time.Now()

	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a leaf category. Categories with children must be emptied
// first so products never end up under an orphaned subtree.
func (s *Service) Delete(ctx context.Context, id string) error {
	children, err := s.store.ListChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return ErrHasChildren
	}
	return s.store.DeleteCategory(ctx, id)
}

// checkCycle walks up from the candidate parent to the root. Finding the
// category being moved on that path means the move would create a cycle.
func (s *Service) checkCycle(ctx context.Context, id, parentID string) error {
	if parentID == id {
		return ErrSelfParent
	}
	seen := map[string]bool{id: true}
	cur := parentID
	for cur != "" {
		if seen[cur] {
			return ErrCycle
		}
		seen[cur] = true
		parent, err := s.store.GetCategory(ctx, cur)
		if err != nil {
			return err
		}
		cur = parent.ParentID
	}
	return nil
}
