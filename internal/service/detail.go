package service

import (
	"context"
	"fmt"

	"github.com/festpos/api/internal/database"
	"github.com/google/uuid"
)

// OrderDetailReader defines the DB methods needed to load the line graph of
// an order. Satisfied by *database.Queries.
type OrderDetailReader interface {
	ListOrderProductsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderProductsByOrderRow, error)
	ListOrderProductIngredientsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderProductIngredientsByOrderRow, error)
	ListOrderMenusByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderMenusByOrderRow, error)
	ListOrderMenuFieldsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderMenuFieldsByOrderRow, error)
}

// OrderDetail is the read projection of an order with named lines.
type OrderDetail struct {
	Order    database.Order
	Products []ProductDetail
	Menus    []MenuDetail
}

// ProductDetail is a product line with its ingredients.
type ProductDetail struct {
	Product     database.ListOrderProductsByOrderRow
	Ingredients []database.ListOrderProductIngredientsByOrderRow
}

// MenuDetail is a menu line with its fields.
type MenuDetail struct {
	Menu   database.ListOrderMenusByOrderRow
	Fields []MenuFieldDetail
}

// MenuFieldDetail is a menu field with the products chosen for it.
type MenuFieldDetail struct {
	Field    database.ListOrderMenuFieldsByOrderRow
	Products []ProductDetail
}

// LoadOrderDetail assembles the nested lines of order with four queries.
func LoadOrderDetail(ctx context.Context, store OrderDetailReader, order database.Order) (*OrderDetail, error) {
	products, err := store.ListOrderProductsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order products: %w", err)
	}
	ingredients, err := store.ListOrderProductIngredientsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order product ingredients: %w", err)
	}
	menus, err := store.ListOrderMenusByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order menus: %w", err)
	}
	fields, err := store.ListOrderMenuFieldsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order menu fields: %w", err)
	}

	ingredientsByProduct := make(map[uuid.UUID][]database.ListOrderProductIngredientsByOrderRow)
	for _, ing := range ingredients {
		ingredientsByProduct[ing.OrderProductID] = append(ingredientsByProduct[ing.OrderProductID], ing)
	}

	detail := &OrderDetail{Order: order}
	productsByField := make(map[uuid.UUID][]ProductDetail)
	for _, p := range products {
		pd := ProductDetail{Product: p, Ingredients: ingredientsByProduct[p.ID]}
		if p.OrderMenuFieldID.Valid {
			fid := uuid.UUID(p.OrderMenuFieldID.Bytes)
			productsByField[fid] = append(productsByField[fid], pd)
			continue
		}
		detail.Products = append(detail.Products, pd)
	}

	fieldsByMenu := make(map[uuid.UUID][]MenuFieldDetail)
	for _, f := range fields {
		fieldsByMenu[f.OrderMenuID] = append(fieldsByMenu[f.OrderMenuID], MenuFieldDetail{
			Field:    f,
			Products: productsByField[f.ID],
		})
	}
	for _, m := range menus {
		detail.Menus = append(detail.Menus, MenuDetail{Menu: m, Fields: fieldsByMenu[m.ID]})
	}

	return detail, nil
}
