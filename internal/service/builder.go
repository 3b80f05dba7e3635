package service

import (
	"context"
	"fmt"

	"github.com/festpos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// OrderWriter defines the inserts needed to persist a validated order graph.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderWriter interface {
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderProduct(ctx context.Context, arg database.CreateOrderProductParams) (database.OrderProduct, error)
	CreateOrderProductIngredient(ctx context.Context, arg database.CreateOrderProductIngredientParams) (database.OrderProductIngredient, error)
	CreateOrderMenu(ctx context.Context, arg database.CreateOrderMenuParams) (database.OrderMenu, error)
	CreateOrderMenuField(ctx context.Context, arg database.CreateOrderMenuFieldParams) (database.OrderMenuField, error)
}

// OrderMeta holds the order-level attributes that are not line items.
type OrderMeta struct {
	CustomerName    string
	Guests          int32
	TableNumber     string
	IsTakeAway      bool
	IsVoucher       bool
	HasTickets      bool
	Notes           string
	PaymentMethodID *uuid.UUID
	ParentOrderID   *uuid.UUID
}

// guests returns the persisted guest count. Take-away orders have none.
func (m OrderMeta) guests() pgtype.Int4 {
	if m.IsTakeAway || m.Guests <= 0 {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: m.Guests, Valid: true}
}

// table returns the persisted table number. Take-away orders have none.
func (m OrderMeta) table() pgtype.Text {
	if m.IsTakeAway {
		return pgtype.Text{}
	}
	return optionalText(m.TableNumber)
}

// OrderResult is an order with its full nested line graph.
type OrderResult struct {
	Order    database.Order
	Products []ProductLine
	Menus    []MenuLine
}

// ProductLine is a persisted product row with its ingredients.
type ProductLine struct {
	Product     database.OrderProduct
	Ingredients []database.OrderProductIngredient
}

// MenuLine is a persisted menu row with its fields.
type MenuLine struct {
	Menu   database.OrderMenu
	Fields []FieldLine
}

// FieldLine is a persisted menu field with its selected products.
type FieldLine struct {
	Field    database.OrderMenuField
	Products []ProductLine
}

// Build persists a validated selection as a new order owned by userID.
// The caller owns the transaction; any error leaves it to be rolled back.
func Build(ctx context.Context, store OrderWriter, v *ValidatedSelection, meta OrderMeta, userID uuid.UUID) (*OrderResult, error) {
	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		CustomerName:    meta.CustomerName,
		Guests:          meta.guests(),
		TableNumber:     meta.table(),
		IsTakeAway:      meta.IsTakeAway,
		IsVoucher:       meta.IsVoucher,
		HasTickets:      meta.HasTickets,
		Notes:           optionalText(meta.Notes),
		Price:           decimalToNumeric(v.Total),
		PaymentMethodID: optionalUUID(meta.PaymentMethodID),
		UserID:          userID,
		ParentOrderID:   optionalUUID(meta.ParentOrderID),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	result := &OrderResult{Order: order}

	for i, p := range v.Products {
		line, err := insertProduct(ctx, store, order.ID, pgtype.UUID{}, p)
		if err != nil {
			return nil, fmt.Errorf("products[%d]: %w", i, err)
		}
		result.Products = append(result.Products, *line)
	}

	for i, m := range v.Menus {
		line, err := insertMenu(ctx, store, order.ID, m)
		if err != nil {
			return nil, fmt.Errorf("menus[%d]: %w", i, err)
		}
		result.Menus = append(result.Menus, *line)
	}

	return result, nil
}

func insertProduct(ctx context.Context, store OrderWriter, orderID uuid.UUID, fieldID pgtype.UUID, p ValidatedProduct) (*ProductLine, error) {
	row, err := store.CreateOrderProduct(ctx, database.CreateOrderProductParams{
		OrderID:          orderID,
		ProductID:        p.ProductID,
		VariantID:        p.VariantID,
		OrderMenuFieldID: fieldID,
		Price:            decimalToNumeric(p.UnitPrice),
		Quantity:         p.Quantity,
		Notes:            optionalText(p.Notes),
	})
	if err != nil {
		return nil, fmt.Errorf("create order product: %w", err)
	}

	line := &ProductLine{Product: row}
	for _, ing := range p.Ingredients {
		opi, err := store.CreateOrderProductIngredient(ctx, database.CreateOrderProductIngredientParams{
			OrderProductID:      row.ID,
			ProductIngredientID: ing.ProductIngredientID,
			Quantity:            ing.Quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("create order product ingredient: %w", err)
		}
		line.Ingredients = append(line.Ingredients, opi)
	}
	return line, nil
}

func insertMenu(ctx context.Context, store OrderWriter, orderID uuid.UUID, m ValidatedMenu) (*MenuLine, error) {
	row, err := store.CreateOrderMenu(ctx, database.CreateOrderMenuParams{
		OrderID:  orderID,
		MenuID:   m.MenuID,
		Price:    decimalToNumeric(m.UnitPrice),
		Quantity: m.Quantity,
		Notes:    optionalText(m.Notes),
	})
	if err != nil {
		return nil, fmt.Errorf("create order menu: %w", err)
	}

	line := &MenuLine{Menu: row}
	for _, f := range m.Fields {
		omf, err := store.CreateOrderMenuField(ctx, database.CreateOrderMenuFieldParams{
			OrderMenuID: row.ID,
			MenuFieldID: f.MenuFieldID,
		})
		if err != nil {
			return nil, fmt.Errorf("create order menu field: %w", err)
		}
		fl := FieldLine{Field: omf}
		fieldID := pgtype.UUID{Bytes: omf.ID, Valid: true}
		for _, p := range f.Products {
			pl, err := insertProduct(ctx, store, orderID, fieldID, p)
			if err != nil {
				return nil, err
			}
			fl.Products = append(fl.Products, *pl)
		}
		line.Fields = append(line.Fields, fl)
	}
	return line, nil
}
