package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/festpos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// maxCategoryDepth bounds the ancestor walk so a corrupted tree cannot loop.
const maxCategoryDepth = 1000

// CategoryReader looks up a single category.
type CategoryReader interface {
	GetCategory(ctx context.Context, id uuid.UUID) (database.Category, error)
}

// CategoryStore defines the DB methods needed to update categories.
// Satisfied by *database.Queries.
type CategoryStore interface {
	CategoryReader
	UpdateCategory(ctx context.Context, arg database.UpdateCategoryParams) (database.Category, error)
}

// CheckCategoryParent reports whether parentID can become the parent of id
// without closing a cycle. It walks the ancestors of parentID.
func CheckCategoryParent(ctx context.Context, store CategoryReader, id, parentID uuid.UUID) error {
	visited := make(map[uuid.UUID]bool)
	current := parentID
	for depth := 0; depth < maxCategoryDepth; depth++ {
		if current == id || visited[current] {
			return newError(KindConflict, ErrCategoryCycle, "")
		}
		visited[current] = true

		cat, err := store.GetCategory(ctx, current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return newError(KindNotFound, ErrCategoryNotFound, "")
			}
			return fmt.Errorf("get category: %w", err)
		}
		if !cat.ParentID.Valid {
			return nil
		}
		current = uuid.UUID(cat.ParentID.Bytes)
	}
	return newError(KindConflict, ErrCategoryCycle, "")
}

// UpdateCategoryRequest renames and/or moves a category. A nil Name keeps the
// current name; a nil ParentID makes the category a root.
type UpdateCategoryRequest struct {
	ID       uuid.UUID
	Name     *string
	ParentID *uuid.UUID
}

// CategoryService handles category updates that need tree checks.
type CategoryService struct {
	store CategoryStore
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(store CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

// UpdateCategory applies req after rejecting parents that would form a cycle.
func (s *CategoryService) UpdateCategory(ctx context.Context, req UpdateCategoryRequest) (*database.Category, error) {
	current, err := s.store.GetCategory(ctx, req.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newError(KindNotFound, ErrCategoryNotFound, "")
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	name := current.Name
	if req.Name != nil {
		name = *req.Name
	}

	parent := pgtype.UUID{}
	if req.ParentID != nil {
		if err := CheckCategoryParent(ctx, s.store, req.ID, *req.ParentID); err != nil {
			return nil, err
		}
		parent = pgtype.UUID{Bytes: *req.ParentID, Valid: true}
	}

	updated, err := s.store.UpdateCategory(ctx, database.UpdateCategoryParams{
		ID:       req.ID,
		Name:     name,
		ParentID: parent,
	})
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &updated, nil
}
