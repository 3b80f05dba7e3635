// source: orders.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, customer_name, guests, table_number, is_take_away, is_confirmed, is_done, is_deleted,
    is_voucher, has_tickets, notes, price, payment_method_id, user_id, confirmed_by, parent_order_id,
    created_at, confirmed_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row scanner) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.CustomerName,
		&i.Guests,
		&i.TableNumber,
		&i.IsTakeAway,
		&i.IsConfirmed,
		&i.IsDone,
		&i.IsDeleted,
		&i.IsVoucher,
		&i.HasTickets,
		&i.Notes,
		&i.Price,
		&i.PaymentMethodID,
		&i.UserID,
		&i.ConfirmedBy,
		&i.ParentOrderID,
		&i.CreatedAt,
		&i.ConfirmedAt,
	)
	return i, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (
    customer_name, guests, table_number, is_take_away, is_voucher, has_tickets,
    notes, price, payment_method_id, user_id, parent_order_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	CustomerName    string         `json:"customer_name"`
	Guests          pgtype.Int4    `json:"guests"`
	TableNumber     pgtype.Text    `json:"table_number"`
	IsTakeAway      bool           `json:"is_take_away"`
	IsVoucher       bool           `json:"is_voucher"`
	HasTickets      bool           `json:"has_tickets"`
	Notes           pgtype.Text    `json:"notes"`
	Price           pgtype.Numeric `json:"price"`
	PaymentMethodID pgtype.UUID    `json:"payment_method_id"`
	UserID          uuid.UUID      `json:"user_id"`
	ParentOrderID   pgtype.UUID    `json:"parent_order_id"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.CustomerName,
		arg.Guests,
		arg.TableNumber,
		arg.IsTakeAway,
		arg.IsVoucher,
		arg.HasTickets,
		arg.Notes,
		arg.Price,
		arg.PaymentMethodID,
		arg.UserID,
		arg.ParentOrderID,
	)
	return scanOrder(row)
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + ` FROM orders
WHERE id = $1 AND is_deleted = false
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderForUpdate = `-- name: GetOrderForUpdate :one
SELECT ` + orderColumns + ` FROM orders
WHERE id = $1 AND is_deleted = false
FOR UPDATE
`

func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

const listOrders = `-- name: ListOrders :many
SELECT ` + orderColumns + ` FROM orders
WHERE is_deleted = false
  AND ($3::boolean IS NULL OR is_done = $3)
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2
`

type ListOrdersParams struct {
	Limit  int32       `json:"limit"`
	Offset int32       `json:"offset"`
	IsDone pgtype.Bool `json:"is_done"`
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.Limit, arg.Offset, arg.IsDone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateOrderDetails = `-- name: UpdateOrderDetails :one
UPDATE orders SET
    customer_name = $2,
    guests = $3,
    table_number = $4,
    is_take_away = $5,
    is_voucher = $6,
    has_tickets = $7,
    notes = $8,
    payment_method_id = $9,
    price = $10
WHERE id = $1 AND is_deleted = false
RETURNING ` + orderColumns

type UpdateOrderDetailsParams struct {
	ID              uuid.UUID      `json:"id"`
	CustomerName    string         `json:"customer_name"`
	Guests          pgtype.Int4    `json:"guests"`
	TableNumber     pgtype.Text    `json:"table_number"`
	IsTakeAway      bool           `json:"is_take_away"`
	IsVoucher       bool           `json:"is_voucher"`
	HasTickets      bool           `json:"has_tickets"`
	Notes           pgtype.Text    `json:"notes"`
	PaymentMethodID pgtype.UUID    `json:"payment_method_id"`
	Price           pgtype.Numeric `json:"price"`
}

func (q *Queries) UpdateOrderDetails(ctx context.Context, arg UpdateOrderDetailsParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderDetails,
		arg.ID,
		arg.CustomerName,
		arg.Guests,
		arg.TableNumber,
		arg.IsTakeAway,
		arg.IsVoucher,
		arg.HasTickets,
		arg.Notes,
		arg.PaymentMethodID,
		arg.Price,
	)
	return scanOrder(row)
}

const confirmOrder = `-- name: ConfirmOrder :one
UPDATE orders SET
    is_confirmed = true,
    confirmed_at = now(),
    confirmed_by = $2,
    table_number = COALESCE($3, table_number)
WHERE id = $1 AND is_deleted = false AND is_confirmed = false
RETURNING ` + orderColumns

type ConfirmOrderParams struct {
	ID          uuid.UUID   `json:"id"`
	ConfirmedBy pgtype.UUID `json:"confirmed_by"`
	TableNumber pgtype.Text `json:"table_number"`
}

func (q *Queries) ConfirmOrder(ctx context.Context, arg ConfirmOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, confirmOrder, arg.ID, arg.ConfirmedBy, arg.TableNumber))
}

const softDeleteOrder = `-- name: SoftDeleteOrder :one
UPDATE orders SET is_deleted = true
WHERE id = $1 AND is_deleted = false
RETURNING ` + orderColumns

func (q *Queries) SoftDeleteOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, softDeleteOrder, id))
}

const createOrderProduct = `-- name: CreateOrderProduct :one
INSERT INTO order_products (order_id, product_id, variant_id, order_menu_field_id, price, quantity, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_id, product_id, variant_id, order_menu_field_id, price, quantity, notes
`

type CreateOrderProductParams struct {
	OrderID          uuid.UUID      `json:"order_id"`
	ProductID        uuid.UUID      `json:"product_id"`
	VariantID        pgtype.UUID    `json:"variant_id"`
	OrderMenuFieldID pgtype.UUID    `json:"order_menu_field_id"`
	Price            pgtype.Numeric `json:"price"`
	Quantity         int32          `json:"quantity"`
	Notes            pgtype.Text    `json:"notes"`
}

func (q *Queries) CreateOrderProduct(ctx context.Context, arg CreateOrderProductParams) (OrderProduct, error) {
	row := q.db.QueryRow(ctx, createOrderProduct,
		arg.OrderID,
		arg.ProductID,
		arg.VariantID,
		arg.OrderMenuFieldID,
		arg.Price,
		arg.Quantity,
		arg.Notes,
	)
	var i OrderProduct
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.VariantID,
		&i.OrderMenuFieldID,
		&i.Price,
		&i.Quantity,
		&i.Notes,
	)
	return i, err
}

const getOrderProduct = `-- name: GetOrderProduct :one
SELECT id, order_id, product_id, variant_id, order_menu_field_id, price, quantity, notes
FROM order_products
WHERE id = $1 AND order_id = $2 AND order_menu_field_id IS NULL
`

type GetOrderProductParams struct {
	ID      uuid.UUID `json:"id"`
	OrderID uuid.UUID `json:"order_id"`
}

func (q *Queries) GetOrderProduct(ctx context.Context, arg GetOrderProductParams) (OrderProduct, error) {
	row := q.db.QueryRow(ctx, getOrderProduct, arg.ID, arg.OrderID)
	var i OrderProduct
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.VariantID,
		&i.OrderMenuFieldID,
		&i.Price,
		&i.Quantity,
		&i.Notes,
	)
	return i, err
}

const updateOrderProductQuantity = `-- name: UpdateOrderProductQuantity :one
UPDATE order_products SET quantity = $2, notes = $3
WHERE id = $1
RETURNING id, order_id, product_id, variant_id, order_menu_field_id, price, quantity, notes
`

type UpdateOrderProductQuantityParams struct {
	ID       uuid.UUID   `json:"id"`
	Quantity int32       `json:"quantity"`
	Notes    pgtype.Text `json:"notes"`
}

func (q *Queries) UpdateOrderProductQuantity(ctx context.Context, arg UpdateOrderProductQuantityParams) (OrderProduct, error) {
	row := q.db.QueryRow(ctx, updateOrderProductQuantity, arg.ID, arg.Quantity, arg.Notes)
	var i OrderProduct
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.VariantID,
		&i.OrderMenuFieldID,
		&i.Price,
		&i.Quantity,
		&i.Notes,
	)
	return i, err
}

const deleteOrderProduct = `-- name: DeleteOrderProduct :execrows
DELETE FROM order_products WHERE id = $1
`

func (q *Queries) DeleteOrderProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteOrderProduct, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const createOrderProductIngredient = `-- name: CreateOrderProductIngredient :one
INSERT INTO order_product_ingredients (order_product_id, product_ingredient_id, quantity)
VALUES ($1, $2, $3)
RETURNING id, order_product_id, product_ingredient_id, quantity
`

type CreateOrderProductIngredientParams struct {
	OrderProductID      uuid.UUID `json:"order_product_id"`
	ProductIngredientID uuid.UUID `json:"product_ingredient_id"`
	Quantity            int32     `json:"quantity"`
}

func (q *Queries) CreateOrderProductIngredient(ctx context.Context, arg CreateOrderProductIngredientParams) (OrderProductIngredient, error) {
	row := q.db.QueryRow(ctx, createOrderProductIngredient, arg.OrderProductID, arg.ProductIngredientID, arg.Quantity)
	var i OrderProductIngredient
	err := row.Scan(&i.ID, &i.OrderProductID, &i.ProductIngredientID, &i.Quantity)
	return i, err
}

const createOrderMenu = `-- name: CreateOrderMenu :one
INSERT INTO order_menus (order_id, menu_id, price, quantity, notes)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, menu_id, price, quantity, notes
`

type CreateOrderMenuParams struct {
	OrderID  uuid.UUID      `json:"order_id"`
	MenuID   uuid.UUID      `json:"menu_id"`
	Price    pgtype.Numeric `json:"price"`
	Quantity int32          `json:"quantity"`
	Notes    pgtype.Text    `json:"notes"`
}

func (q *Queries) CreateOrderMenu(ctx context.Context, arg CreateOrderMenuParams) (OrderMenu, error) {
	row := q.db.QueryRow(ctx, createOrderMenu, arg.OrderID, arg.MenuID, arg.Price, arg.Quantity, arg.Notes)
	var i OrderMenu
	err := row.Scan(&i.ID, &i.OrderID, &i.MenuID, &i.Price, &i.Quantity, &i.Notes)
	return i, err
}

const getOrderMenu = `-- name: GetOrderMenu :one
SELECT id, order_id, menu_id, price, quantity, notes FROM order_menus
WHERE id = $1 AND order_id = $2
`

type GetOrderMenuParams struct {
	ID      uuid.UUID `json:"id"`
	OrderID uuid.UUID `json:"order_id"`
}

func (q *Queries) GetOrderMenu(ctx context.Context, arg GetOrderMenuParams) (OrderMenu, error) {
	row := q.db.QueryRow(ctx, getOrderMenu, arg.ID, arg.OrderID)
	var i OrderMenu
	err := row.Scan(&i.ID, &i.OrderID, &i.MenuID, &i.Price, &i.Quantity, &i.Notes)
	return i, err
}

const updateOrderMenuQuantity = `-- name: UpdateOrderMenuQuantity :one
UPDATE order_menus SET quantity = $2, notes = $3
WHERE id = $1
RETURNING id, order_id, menu_id, price, quantity, notes
`

type UpdateOrderMenuQuantityParams struct {
	ID       uuid.UUID   `json:"id"`
	Quantity int32       `json:"quantity"`
	Notes    pgtype.Text `json:"notes"`
}

func (q *Queries) UpdateOrderMenuQuantity(ctx context.Context, arg UpdateOrderMenuQuantityParams) (OrderMenu, error) {
	row := q.db.QueryRow(ctx, updateOrderMenuQuantity, arg.ID, arg.Quantity, arg.Notes)
	var i OrderMenu
	err := row.Scan(&i.ID, &i.OrderID, &i.MenuID, &i.Price, &i.Quantity, &i.Notes)
	return i, err
}

const deleteOrderMenu = `-- name: DeleteOrderMenu :execrows
DELETE FROM order_menus WHERE id = $1
`

func (q *Queries) DeleteOrderMenu(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteOrderMenu, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const createOrderMenuField = `-- name: CreateOrderMenuField :one
INSERT INTO order_menu_fields (order_menu_id, menu_field_id)
VALUES ($1, $2)
RETURNING id, order_menu_id, menu_field_id
`

type CreateOrderMenuFieldParams struct {
	OrderMenuID uuid.UUID `json:"order_menu_id"`
	MenuFieldID uuid.UUID `json:"menu_field_id"`
}

func (q *Queries) CreateOrderMenuField(ctx context.Context, arg CreateOrderMenuFieldParams) (OrderMenuField, error) {
	row := q.db.QueryRow(ctx, createOrderMenuField, arg.OrderMenuID, arg.MenuFieldID)
	var i OrderMenuField
	err := row.Scan(&i.ID, &i.OrderMenuID, &i.MenuFieldID)
	return i, err
}

const createRevision = `-- name: CreateRevision :one
INSERT INTO revisions (order_id, user_id, price_difference, edited_products)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, user_id, price_difference, edited_products, created_at
`

type CreateRevisionParams struct {
	OrderID         uuid.UUID      `json:"order_id"`
	UserID          uuid.UUID      `json:"user_id"`
	PriceDifference pgtype.Numeric `json:"price_difference"`
	EditedProducts  int32          `json:"edited_products"`
}

func (q *Queries) CreateRevision(ctx context.Context, arg CreateRevisionParams) (Revision, error) {
	row := q.db.QueryRow(ctx, createRevision, arg.OrderID, arg.UserID, arg.PriceDifference, arg.EditedProducts)
	var i Revision
	err := row.Scan(&i.ID, &i.OrderID, &i.UserID, &i.PriceDifference, &i.EditedProducts, &i.CreatedAt)
	return i, err
}

const listRevisionsByOrder = `-- name: ListRevisionsByOrder :many
SELECT id, order_id, user_id, price_difference, edited_products, created_at FROM revisions
WHERE order_id = $1
ORDER BY created_at
`

func (q *Queries) ListRevisionsByOrder(ctx context.Context, orderID uuid.UUID) ([]Revision, error) {
	rows, err := q.db.Query(ctx, listRevisionsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Revision{}
	for rows.Next() {
		var i Revision
		if err := rows.Scan(&i.ID, &i.OrderID, &i.UserID, &i.PriceDifference, &i.EditedProducts, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderProductsByOrder = `-- name: ListOrderProductsByOrder :many
SELECT op.id, op.order_id, op.product_id, op.variant_id, op.order_menu_field_id, op.price,
       op.quantity, op.notes, p.name AS product_name, v.name AS variant_name
FROM order_products op
JOIN products p ON p.id = op.product_id
LEFT JOIN product_variants v ON v.id = op.variant_id
WHERE op.order_id = $1
ORDER BY p.name, op.id
`

type ListOrderProductsByOrderRow struct {
	ID               uuid.UUID      `json:"id"`
	OrderID          uuid.UUID      `json:"order_id"`
	ProductID        uuid.UUID      `json:"product_id"`
	VariantID        pgtype.UUID    `json:"variant_id"`
	OrderMenuFieldID pgtype.UUID    `json:"order_menu_field_id"`
	Price            pgtype.Numeric `json:"price"`
	Quantity         int32          `json:"quantity"`
	Notes            pgtype.Text    `json:"notes"`
	ProductName      string         `json:"product_name"`
	VariantName      pgtype.Text    `json:"variant_name"`
}

func (q *Queries) ListOrderProductsByOrder(ctx context.Context, orderID uuid.UUID) ([]ListOrderProductsByOrderRow, error) {
	rows, err := q.db.Query(ctx, listOrderProductsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListOrderProductsByOrderRow{}
	for rows.Next() {
		var i ListOrderProductsByOrderRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.VariantID,
			&i.OrderMenuFieldID,
			&i.Price,
			&i.Quantity,
			&i.Notes,
			&i.ProductName,
			&i.VariantName,
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

const listOrderProductIngredientsByOrder = `-- name: ListOrderProductIngredientsByOrder :many
SELECT opi.id, opi.order_product_id, opi.product_ingredient_id, pi.ingredient_id,
       i.name AS ingredient_name, opi.quantity
FROM order_product_ingredients opi
JOIN order_products op ON op.id = opi.order_product_id
JOIN product_ingredients pi ON pi.id = opi.product_ingredient_id
JOIN ingredients i ON i.id = pi.ingredient_id
WHERE op.order_id = $1
ORDER BY i.name
`

type ListOrderProductIngredientsByOrderRow struct {
	ID                  uuid.UUID `json:"id"`
	OrderProductID      uuid.UUID `json:"order_product_id"`
	ProductIngredientID uuid.UUID `json:"product_ingredient_id"`
	IngredientID        uuid.UUID `json:"ingredient_id"`
	IngredientName      string    `json:"ingredient_name"`
	Quantity            int32     `json:"quantity"`
}

func (q *Queries) ListOrderProductIngredientsByOrder(ctx context.Context, orderID uuid.UUID) ([]ListOrderProductIngredientsByOrderRow, error) {
	rows, err := q.db.Query(ctx, listOrderProductIngredientsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListOrderProductIngredientsByOrderRow{}
	for rows.Next() {
		var i ListOrderProductIngredientsByOrderRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderProductID,
			&i.ProductIngredientID,
			&i.IngredientID,
			&i.IngredientName,
			&i.Quantity,
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

const listOrderMenusByOrder = `-- name: ListOrderMenusByOrder :many
SELECT om.id, om.order_id, om.menu_id, om.price, om.quantity, om.notes, m.name AS menu_name
FROM order_menus om
JOIN menus m ON m.id = om.menu_id
WHERE om.order_id = $1
ORDER BY m.name, om.id
`

type ListOrderMenusByOrderRow struct {
	ID       uuid.UUID      `json:"id"`
	OrderID  uuid.UUID      `json:"order_id"`
	MenuID   uuid.UUID      `json:"menu_id"`
	Price    pgtype.Numeric `json:"price"`
	Quantity int32          `json:"quantity"`
	Notes    pgtype.Text    `json:"notes"`
	MenuName string         `json:"menu_name"`
}

func (q *Queries) ListOrderMenusByOrder(ctx context.Context, orderID uuid.UUID) ([]ListOrderMenusByOrderRow, error) {
	rows, err := q.db.Query(ctx, listOrderMenusByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListOrderMenusByOrderRow{}
	for rows.Next() {
		var i ListOrderMenusByOrderRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.MenuID,
			&i.Price,
			&i.Quantity,
			&i.Notes,
			&i.MenuName,
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

const listOrderMenuFieldsByOrder = `-- name: ListOrderMenuFieldsByOrder :many
SELECT omf.id, omf.order_menu_id, omf.menu_field_id, mf.name AS field_name
FROM order_menu_fields omf
JOIN order_menus om ON om.id = omf.order_menu_id
JOIN menu_fields mf ON mf.id = omf.menu_field_id
WHERE om.order_id = $1
ORDER BY mf.position, omf.id
`

type ListOrderMenuFieldsByOrderRow struct {
	ID          uuid.UUID `json:"id"`
	OrderMenuID uuid.UUID `json:"order_menu_id"`
	MenuFieldID uuid.UUID `json:"menu_field_id"`
	FieldName   string    `json:"field_name"`
}

func (q *Queries) ListOrderMenuFieldsByOrder(ctx context.Context, orderID uuid.UUID) ([]ListOrderMenuFieldsByOrderRow, error) {
	rows, err := q.db.Query(ctx, listOrderMenuFieldsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListOrderMenuFieldsByOrderRow{}
	for rows.Next() {
		var i ListOrderMenuFieldsByOrderRow
		if err := rows.Scan(&i.ID, &i.OrderMenuID, &i.MenuFieldID, &i.FieldName); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
