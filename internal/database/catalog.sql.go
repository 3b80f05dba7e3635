// source: catalog.sql

package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getProductForOrder = `-- name: GetProductForOrder :one
SELECT id, name, price FROM products
WHERE id = $1 AND is_active = true
`

type GetProductForOrderRow struct {
	ID    uuid.UUID      `json:"id"`
	Name  string         `json:"name"`
	Price pgtype.Numeric `json:"price"`
}

func (q *Queries) GetProductForOrder(ctx context.Context, id uuid.UUID) (GetProductForOrderRow, error) {
	row := q.db.QueryRow(ctx, getProductForOrder, id)
	var i GetProductForOrderRow
	err := row.Scan(&i.ID, &i.Name, &i.Price)
	return i, err
}

const productAllowedForRole = `-- name: ProductAllowedForRole :one
SELECT EXISTS (
    SELECT 1 FROM product_roles WHERE product_id = $1 AND role_id = $2
)
`

type ProductAllowedForRoleParams struct {
	ProductID uuid.UUID `json:"product_id"`
	RoleID    uuid.UUID `json:"role_id"`
}

func (q *Queries) ProductAllowedForRole(ctx context.Context, arg ProductAllowedForRoleParams) (bool, error) {
	row := q.db.QueryRow(ctx, productAllowedForRole, arg.ProductID, arg.RoleID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const productAvailableAt = `-- name: ProductAvailableAt :one
SELECT EXISTS (
    SELECT 1 FROM product_windows pw
    JOIN availability_windows w ON w.id = pw.window_id
    WHERE pw.product_id = $1 AND w.start_at <= $2 AND $2 < w.end_at
)
`

type ProductAvailableAtParams struct {
	ProductID uuid.UUID `json:"product_id"`
	At        time.Time `json:"at"`
}

func (q *Queries) ProductAvailableAt(ctx context.Context, arg ProductAvailableAtParams) (bool, error) {
	row := q.db.QueryRow(ctx, productAvailableAt, arg.ProductID, arg.At)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const listProductVariants = `-- name: ListProductVariants :many
SELECT id, product_id, name, price FROM product_variants
WHERE product_id = $1
ORDER BY name
`

func (q *Queries) ListProductVariants(ctx context.Context, productID uuid.UUID) ([]ProductVariant, error) {
	rows, err := q.db.Query(ctx, listProductVariants, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ProductVariant{}
	for rows.Next() {
		var i ProductVariant
		if err := rows.Scan(&i.ID, &i.ProductID, &i.Name, &i.Price); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listProductIngredients = `-- name: ListProductIngredients :many
SELECT id, product_id, ingredient_id, price FROM product_ingredients
WHERE product_id = $1
`

func (q *Queries) ListProductIngredients(ctx context.Context, productID uuid.UUID) ([]ProductIngredient, error) {
	rows, err := q.db.Query(ctx, listProductIngredients, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ProductIngredient{}
	for rows.Next() {
		var i ProductIngredient
		if err := rows.Scan(&i.ID, &i.ProductID, &i.IngredientID, &i.Price); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getMenuForOrder = `-- name: GetMenuForOrder :one
SELECT id, name, price FROM menus
WHERE id = $1 AND is_active = true
`

type GetMenuForOrderRow struct {
	ID    uuid.UUID      `json:"id"`
	Name  string         `json:"name"`
	Price pgtype.Numeric `json:"price"`
}

func (q *Queries) GetMenuForOrder(ctx context.Context, id uuid.UUID) (GetMenuForOrderRow, error) {
	row := q.db.QueryRow(ctx, getMenuForOrder, id)
	var i GetMenuForOrderRow
	err := row.Scan(&i.ID, &i.Name, &i.Price)
	return i, err
}

const menuAllowedForRole = `-- name: MenuAllowedForRole :one
SELECT EXISTS (
    SELECT 1 FROM menu_roles WHERE menu_id = $1 AND role_id = $2
)
`

type MenuAllowedForRoleParams struct {
	MenuID uuid.UUID `json:"menu_id"`
	RoleID uuid.UUID `json:"role_id"`
}

func (q *Queries) MenuAllowedForRole(ctx context.Context, arg MenuAllowedForRoleParams) (bool, error) {
	row := q.db.QueryRow(ctx, menuAllowedForRole, arg.MenuID, arg.RoleID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const menuAvailableAt = `-- name: MenuAvailableAt :one
SELECT EXISTS (
    SELECT 1 FROM menu_windows mw
    JOIN availability_windows w ON w.id = mw.window_id
    WHERE mw.menu_id = $1 AND w.start_at <= $2 AND $2 < w.end_at
)
`

type MenuAvailableAtParams struct {
	MenuID uuid.UUID `json:"menu_id"`
	At     time.Time `json:"at"`
}

func (q *Queries) MenuAvailableAt(ctx context.Context, arg MenuAvailableAtParams) (bool, error) {
	row := q.db.QueryRow(ctx, menuAvailableAt, arg.MenuID, arg.At)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const listMenuFields = `-- name: ListMenuFields :many
SELECT id, menu_id, name, is_optional, max_sortable_elements, position FROM menu_fields
WHERE menu_id = $1
ORDER BY position, id
`

func (q *Queries) ListMenuFields(ctx context.Context, menuID uuid.UUID) ([]MenuField, error) {
	rows, err := q.db.Query(ctx, listMenuFields, menuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MenuField{}
	for rows.Next() {
		var i MenuField
		if err := rows.Scan(
			&i.ID,
			&i.MenuID,
			&i.Name,
			&i.IsOptional,
			&i.MaxSortableElements,
			&i.Position,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listMenuFieldProducts = `-- name: ListMenuFieldProducts :many
SELECT mfp.id, mfp.menu_field_id, mfp.product_id, mfp.price
FROM menu_field_products mfp
JOIN products p ON p.id = mfp.product_id
WHERE mfp.menu_field_id = $1 AND p.is_active = true
`

func (q *Queries) ListMenuFieldProducts(ctx context.Context, menuFieldID uuid.UUID) ([]MenuFieldProduct, error) {
	rows, err := q.db.Query(ctx, listMenuFieldProducts, menuFieldID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MenuFieldProduct{}
	for rows.Next() {
		var i MenuFieldProduct
		if err := rows.Scan(&i.ID, &i.MenuFieldID, &i.ProductID, &i.Price); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCategory = `-- name: GetCategory :one
SELECT id, parent_id, name, created_at FROM categories
WHERE id = $1
`

func (q *Queries) GetCategory(ctx context.Context, id uuid.UUID) (Category, error) {
	row := q.db.QueryRow(ctx, getCategory, id)
	var i Category
	err := row.Scan(&i.ID, &i.ParentID, &i.Name, &i.CreatedAt)
	return i, err
}

const listCategories = `-- name: ListCategories :many
SELECT id, parent_id, name, created_at FROM categories
ORDER BY name
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Category{}
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.ParentID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateCategory = `-- name: UpdateCategory :one
UPDATE categories SET name = $2, parent_id = $3
WHERE id = $1
RETURNING id, parent_id, name, created_at
`

type UpdateCategoryParams struct {
	ID       uuid.UUID   `json:"id"`
	Name     string      `json:"name"`
	ParentID pgtype.UUID `json:"parent_id"`
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, updateCategory, arg.ID, arg.Name, arg.ParentID)
	var i Category
	err := row.Scan(&i.ID, &i.ParentID, &i.Name, &i.CreatedAt)
	return i, err
}
