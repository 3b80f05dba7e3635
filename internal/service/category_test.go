package service

import (
	"context"
	"errors"
	"testing"

	"github.com/festpos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// mockCategoryStore implements CategoryStore over an in-memory tree.
type mockCategoryStore struct {
	categories map[uuid.UUID]database.Category
	lookups    int
	updateFn   func(ctx context.Context, arg database.UpdateCategoryParams) (database.Category, error)
}

func (m *mockCategoryStore) GetCategory(ctx context.Context, id uuid.UUID) (database.Category, error) {
	m.lookups++
	c, ok := m.categories[id]
	if !ok {
		return database.Category{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockCategoryStore) UpdateCategory(ctx context.Context, arg database.UpdateCategoryParams) (database.Category, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, arg)
	}
	c := m.categories[arg.ID]
	c.Name = arg.Name
	c.ParentID = arg.ParentID
	m.categories[arg.ID] = c
	return c, nil
}

// chain builds root <- a <- b <- c and returns the ids in that order.
func chain(store *mockCategoryStore) []uuid.UUID {
	ids := make([]uuid.UUID, 4)
	parent := pgtype.UUID{}
	for i := range ids {
		ids[i] = uuid.New()
		store.categories[ids[i]] = database.Category{ID: ids[i], ParentID: parent, Name: "cat"}
		parent = pgtype.UUID{Bytes: ids[i], Valid: true}
	}
	return ids
}

func TestCheckCategoryParent(t *testing.T) {
	store := &mockCategoryStore{categories: map[uuid.UUID]database.Category{}}
	ids := chain(store)
	other := uuid.New()
	store.categories[other] = database.Category{ID: other, Name: "other"}

	tests := []struct {
		name     string
		id       uuid.UUID
		parent   uuid.UUID
		sentinel error
	}{
		{"self", ids[1], ids[1], ErrCategoryCycle},
		{"descendant", ids[1], ids[3], ErrCategoryCycle},
		{"direct child", ids[0], ids[1], ErrCategoryCycle},
		{"unrelated", ids[3], other, nil},
		{"ancestor", ids[3], ids[0], nil},
		{"missing parent", ids[3], uuid.New(), ErrCategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCategoryParent(context.Background(), store, tt.id, tt.parent)
			if tt.sentinel == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
		})
	}
}

func TestCheckCategoryParent_CorruptedTreeTerminates(t *testing.T) {
	store := &mockCategoryStore{categories: map[uuid.UUID]database.Category{}}
	a, b := uuid.New(), uuid.New()
	store.categories[a] = database.Category{ID: a, ParentID: pgtype.UUID{Bytes: b, Valid: true}}
	store.categories[b] = database.Category{ID: b, ParentID: pgtype.UUID{Bytes: a, Valid: true}}

	err := CheckCategoryParent(context.Background(), store, uuid.New(), a)
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict on pre-existing loop, got %v", err)
	}
	if store.lookups > 2 {
		t.Errorf("expected the walk to stop at the first revisit, got %d lookups", store.lookups)
	}
}

func TestUpdateCategory(t *testing.T) {
	store := &mockCategoryStore{categories: map[uuid.UUID]database.Category{}}
	ids := chain(store)
	svc := NewCategoryService(store)

	name := "Drinks"
	updated, err := svc.UpdateCategory(context.Background(), UpdateCategoryRequest{ID: ids[3], Name: &name, ParentID: &ids[0]})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Drinks" || uuid.UUID(updated.ParentID.Bytes) != ids[0] {
		t.Errorf("unexpected update result: %+v", updated)
	}

	_, err = svc.UpdateCategory(context.Background(), UpdateCategoryRequest{ID: ids[0], ParentID: &ids[2]})
	if !errors.Is(err, ErrCategoryCycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}

	root, err := svc.UpdateCategory(context.Background(), UpdateCategoryRequest{ID: ids[2]})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.ParentID.Valid || root.Name != "cat" {
		t.Errorf("expected a root keeping its name, got %+v", root)
	}

	_, err = svc.UpdateCategory(context.Background(), UpdateCategoryRequest{ID: uuid.New()})
	if KindOf(err) != KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}
