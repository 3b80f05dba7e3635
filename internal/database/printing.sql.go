// source: printing.sql

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listPendingOrders = `-- name: ListPendingOrders :many
SELECT o.id, o.customer_name, o.guests, o.table_number, o.is_take_away, o.is_confirmed, o.is_done,
       o.is_deleted, o.is_voucher, o.has_tickets, o.notes, o.price, o.payment_method_id, o.user_id,
       o.confirmed_by, o.parent_order_id, o.created_at, o.confirmed_at,
       u.role_id AS ordering_role_id, cu.role_id AS confirming_role_id
FROM orders o
JOIN users u ON u.id = o.user_id
LEFT JOIN users cu ON cu.id = o.confirmed_by
WHERE o.is_done = false AND o.is_deleted = false
ORDER BY o.created_at, o.id
`

type ListPendingOrdersRow struct {
	Order            Order       `json:"order"`
	OrderingRoleID   uuid.UUID   `json:"ordering_role_id"`
	ConfirmingRoleID pgtype.UUID `json:"confirming_role_id"`
}

func (q *Queries) ListPendingOrders(ctx context.Context) ([]ListPendingOrdersRow, error) {
	rows, err := q.db.Query(ctx, listPendingOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListPendingOrdersRow{}
	for rows.Next() {
		var i ListPendingOrdersRow
		if err := rows.Scan(
			&i.Order.ID,
			&i.Order.CustomerName,
			&i.Order.Guests,
			&i.Order.TableNumber,
			&i.Order.IsTakeAway,
			&i.Order.IsConfirmed,
			&i.Order.IsDone,
			&i.Order.IsDeleted,
			&i.Order.IsVoucher,
			&i.Order.HasTickets,
			&i.Order.Notes,
			&i.Order.Price,
			&i.Order.PaymentMethodID,
			&i.Order.UserID,
			&i.Order.ConfirmedBy,
			&i.Order.ParentOrderID,
			&i.Order.CreatedAt,
			&i.Order.ConfirmedAt,
			&i.OrderingRoleID,
			&i.ConfirmingRoleID,
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

const markOrderDone = `-- name: MarkOrderDone :execrows
UPDATE orders SET is_done = true
WHERE id = $1 AND is_done = false
`

func (q *Queries) MarkOrderDone(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, markOrderDone, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const recordOrderPrint = `-- name: RecordOrderPrint :execrows
INSERT INTO order_prints (order_id, role_printer_id)
VALUES ($1, $2)
ON CONFLICT (order_id, role_printer_id) DO NOTHING
`

type RecordOrderPrintParams struct {
	OrderID       uuid.UUID `json:"order_id"`
	RolePrinterID uuid.UUID `json:"role_printer_id"`
}

func (q *Queries) RecordOrderPrint(ctx context.Context, arg RecordOrderPrintParams) (int64, error) {
	result, err := q.db.Exec(ctx, recordOrderPrint, arg.OrderID, arg.RolePrinterID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listRolePrintersByRole = `-- name: ListRolePrintersByRole :many
SELECT rp.id, rp.role_id, rp.printer_id, rp.printer_type
FROM role_printers rp
JOIN printers p ON p.id = rp.printer_id
WHERE rp.role_id = $1 AND p.is_active = true
ORDER BY rp.id
`

func (q *Queries) ListRolePrintersByRole(ctx context.Context, roleID uuid.UUID) ([]RolePrinter, error) {
	rows, err := q.db.Query(ctx, listRolePrintersByRole, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []RolePrinter{}
	for rows.Next() {
		var i RolePrinter
		if err := rows.Scan(&i.ID, &i.RoleID, &i.PrinterID, &i.PrinterType); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPrintedRolePrinterIDs = `-- name: ListPrintedRolePrinterIDs :many
SELECT role_printer_id FROM order_prints
WHERE order_id = $1
`

func (q *Queries) ListPrintedRolePrinterIDs(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.db.Query(ctx, listPrintedRolePrinterIDs, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listActivePrinters = `-- name: ListActivePrinters :many
SELECT id, name, address, is_active, created_at FROM printers
WHERE is_active = true
ORDER BY name
`

func (q *Queries) ListActivePrinters(ctx context.Context) ([]Printer, error) {
	rows, err := q.db.Query(ctx, listActivePrinters)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Printer{}
	for rows.Next() {
		var i Printer
		if err := rows.Scan(&i.ID, &i.Name, &i.Address, &i.IsActive, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPrinters = `-- name: ListPrinters :many
SELECT id, name, address, is_active, created_at FROM printers
ORDER BY name
`

func (q *Queries) ListPrinters(ctx context.Context) ([]Printer, error) {
	rows, err := q.db.Query(ctx, listPrinters)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Printer{}
	for rows.Next() {
		var i Printer
		if err := rows.Scan(&i.ID, &i.Name, &i.Address, &i.IsActive, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getPrinter = `-- name: GetPrinter :one
SELECT id, name, address, is_active, created_at FROM printers
WHERE id = $1
`

func (q *Queries) GetPrinter(ctx context.Context, id uuid.UUID) (Printer, error) {
	row := q.db.QueryRow(ctx, getPrinter, id)
	var i Printer
	err := row.Scan(&i.ID, &i.Name, &i.Address, &i.IsActive, &i.CreatedAt)
	return i, err
}

const createPrinter = `-- name: CreatePrinter :one
INSERT INTO printers (name, address)
VALUES ($1, $2)
RETURNING id, name, address, is_active, created_at
`

type CreatePrinterParams struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (q *Queries) CreatePrinter(ctx context.Context, arg CreatePrinterParams) (Printer, error) {
	row := q.db.QueryRow(ctx, createPrinter, arg.Name, arg.Address)
	var i Printer
	err := row.Scan(&i.ID, &i.Name, &i.Address, &i.IsActive, &i.CreatedAt)
	return i, err
}

const deactivatePrinter = `-- name: DeactivatePrinter :one
UPDATE printers SET is_active = false
WHERE id = $1 AND is_active = true
RETURNING id, name, address, is_active, created_at
`

func (q *Queries) DeactivatePrinter(ctx context.Context, id uuid.UUID) (Printer, error) {
	row := q.db.QueryRow(ctx, deactivatePrinter, id)
	var i Printer
	err := row.Scan(&i.ID, &i.Name, &i.Address, &i.IsActive, &i.CreatedAt)
	return i, err
}

const createRolePrinter = `-- name: CreateRolePrinter :one
INSERT INTO role_printers (role_id, printer_id, printer_type)
VALUES ($1, $2, $3)
RETURNING id, role_id, printer_id, printer_type
`

type CreateRolePrinterParams struct {
	RoleID      uuid.UUID   `json:"role_id"`
	PrinterID   uuid.UUID   `json:"printer_id"`
	PrinterType PrinterType `json:"printer_type"`
}

func (q *Queries) CreateRolePrinter(ctx context.Context, arg CreateRolePrinterParams) (RolePrinter, error) {
	row := q.db.QueryRow(ctx, createRolePrinter, arg.RoleID, arg.PrinterID, arg.PrinterType)
	var i RolePrinter
	err := row.Scan(&i.ID, &i.RoleID, &i.PrinterID, &i.PrinterType)
	return i, err
}
