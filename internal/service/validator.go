package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/festpos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// CatalogReader defines the catalog lookups needed to validate and price a
// selection. Satisfied by *database.Queries (and its WithTx variant).
type CatalogReader interface {
	GetProductForOrder(ctx context.Context, id uuid.UUID) (database.GetProductForOrderRow, error)
	ProductAllowedForRole(ctx context.Context, arg database.ProductAllowedForRoleParams) (bool, error)
	ProductAvailableAt(ctx context.Context, arg database.ProductAvailableAtParams) (bool, error)
	ListProductVariants(ctx context.Context, productID uuid.UUID) ([]database.ProductVariant, error)
	ListProductIngredients(ctx context.Context, productID uuid.UUID) ([]database.ProductIngredient, error)
	GetMenuForOrder(ctx context.Context, id uuid.UUID) (database.GetMenuForOrderRow, error)
	MenuAllowedForRole(ctx context.Context, arg database.MenuAllowedForRoleParams) (bool, error)
	MenuAvailableAt(ctx context.Context, arg database.MenuAvailableAtParams) (bool, error)
	ListMenuFields(ctx context.Context, menuID uuid.UUID) ([]database.MenuField, error)
	ListMenuFieldProducts(ctx context.Context, menuFieldID uuid.UUID) ([]database.MenuFieldProduct, error)
}

// Selection is the raw item selection of an order.
type Selection struct {
	IsTakeAway bool
	Guests     int32 // 0 means absent
	Products   []ProductPick
	Menus      []MenuPick
}

// ProductPick selects a product, standalone or inside a menu field.
// IngredientIDs reference Ingredient rows; repeating an id adds the
// ingredient more than once.
type ProductPick struct {
	ProductID     uuid.UUID
	VariantID     *uuid.UUID
	Quantity      int32
	IngredientIDs []uuid.UUID
	Notes         string
}

// MenuPick selects a menu with its field selections.
type MenuPick struct {
	MenuID   uuid.UUID
	Quantity int32
	Notes    string
	Fields   []FieldPick
}

// FieldPick holds the products chosen for one menu field.
type FieldPick struct {
	MenuFieldID uuid.UUID
	Products    []ProductPick
}

// ValidatedIngredient is an ingredient line with its frozen unit price.
type ValidatedIngredient struct {
	ProductIngredientID uuid.UUID
	Quantity            int32
	UnitPrice           decimal.Decimal
}

// ValidatedProduct is a priced product line.
type ValidatedProduct struct {
	ProductID   uuid.UUID
	VariantID   pgtype.UUID
	Quantity    int32
	Notes       string
	UnitPrice   decimal.Decimal
	Ingredients []ValidatedIngredient
}

// LineTotal returns unit price times quantity.
func (p ValidatedProduct) LineTotal() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt32(p.Quantity))
}

// ValidatedField is a menu field with its priced selections.
type ValidatedField struct {
	MenuFieldID uuid.UUID
	Products    []ValidatedProduct
}

// ValidatedMenu is a priced menu line. UnitPrice already includes the
// selections of every field.
type ValidatedMenu struct {
	MenuID    uuid.UUID
	Quantity  int32
	Notes     string
	UnitPrice decimal.Decimal
	Fields    []ValidatedField
}

// LineTotal returns unit price times quantity.
func (m ValidatedMenu) LineTotal() decimal.Decimal {
	return m.UnitPrice.Mul(decimal.NewFromInt32(m.Quantity))
}

// ValidatedSelection is a selection that passed every rule, with prices.
type ValidatedSelection struct {
	Products []ValidatedProduct
	Menus    []ValidatedMenu
	Total    decimal.Decimal
}

// Validator checks a selection against the catalog and prices it.
// It never writes.
type Validator struct {
	store CatalogReader
}

// NewValidator creates a Validator reading from store.
func NewValidator(store CatalogReader) *Validator {
	return &Validator{store: store}
}

// Validate checks sel for a user of roleID at time now. Rules are applied
// depth-first and the first violation is returned as an *Error.
func (v *Validator) Validate(ctx context.Context, sel Selection, roleID uuid.UUID, now time.Time) (*ValidatedSelection, error) {
	if len(sel.Products) == 0 && len(sel.Menus) == 0 {
		return nil, newError(KindBadRequest, ErrEmptyOrder, "")
	}
	if !sel.IsTakeAway && sel.Guests <= 0 {
		return nil, newError(KindBadRequest, ErrGuestsRequired, "")
	}
	if err := checkQuantities(sel); err != nil {
		return nil, err
	}

	out := &ValidatedSelection{Total: decimal.Zero}

	for i, p := range sel.Products {
		vp, err := v.ValidateProduct(ctx, p, roleID, now, fmt.Sprintf("products[%d]", i))
		if err != nil {
			return nil, err
		}
		out.Products = append(out.Products, *vp)
		out.Total = out.Total.Add(vp.LineTotal())
	}

	for i, m := range sel.Menus {
		vm, err := v.ValidateMenu(ctx, m, roleID, now, fmt.Sprintf("menus[%d]", i))
		if err != nil {
			return nil, err
		}
		out.Menus = append(out.Menus, *vm)
		out.Total = out.Total.Add(vm.LineTotal())
	}

	return out, nil
}

func checkQuantities(sel Selection) error {
	for i, p := range sel.Products {
		if p.Quantity < 1 {
			return productError(KindBadRequest, ErrInvalidQuantity, fmt.Sprintf("products[%d]", i), p.ProductID)
		}
	}
	for i, m := range sel.Menus {
		path := fmt.Sprintf("menus[%d]", i)
		if m.Quantity < 1 {
			return menuError(KindBadRequest, ErrInvalidQuantity, path, m.MenuID, uuid.Nil)
		}
		for j, f := range m.Fields {
			for k, p := range f.Products {
				if p.Quantity < 1 {
					e := menuError(KindBadRequest, ErrInvalidQuantity,
						fmt.Sprintf("%s.fields[%d].products[%d]", path, j, k), m.MenuID, f.MenuFieldID)
					e.ProductID = p.ProductID
					return e
				}
			}
		}
	}
	return nil
}

// ValidateProduct validates and prices a single standalone product line.
func (v *Validator) ValidateProduct(ctx context.Context, p ProductPick, roleID uuid.UUID, now time.Time, path string) (*ValidatedProduct, error) {
	if p.Quantity < 1 {
		return nil, productError(KindBadRequest, ErrInvalidQuantity, path, p.ProductID)
	}

	product, err := v.store.GetProductForOrder(ctx, p.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, productError(KindNotFound, ErrProductNotFound, path, p.ProductID)
		}
		return nil, fmt.Errorf("%s: get product: %w", path, err)
	}

	allowed, err := v.store.ProductAllowedForRole(ctx, database.ProductAllowedForRoleParams{
		ProductID: p.ProductID,
		RoleID:    roleID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: check product role: %w", path, err)
	}
	if !allowed {
		return nil, productError(KindUnauthorized, ErrProductNotAllowed, path, p.ProductID)
	}

	available, err := v.store.ProductAvailableAt(ctx, database.ProductAvailableAtParams{
		ProductID: p.ProductID,
		At:        now,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: check product availability: %w", path, err)
	}
	if !available {
		return nil, productError(KindConflict, ErrProductUnavailable, path, p.ProductID)
	}

	return v.priceProduct(ctx, p, numericToDecimal(product.Price), path)
}

// priceProduct applies the variant and ingredient rules to p and returns the
// line priced from base.
func (v *Validator) priceProduct(ctx context.Context, p ProductPick, base decimal.Decimal, path string) (*ValidatedProduct, error) {
	variants, err := v.store.ListProductVariants(ctx, p.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%s: list variants: %w", path, err)
	}

	unit := base
	variantID := pgtype.UUID{}
	switch {
	case len(variants) > 0 && p.VariantID == nil:
		return nil, productError(KindBadRequest, ErrVariantRequired, path, p.ProductID)
	case p.VariantID != nil:
		var found *database.ProductVariant
		for i := range variants {
			if variants[i].ID == *p.VariantID {
				found = &variants[i]
				break
			}
		}
		if found == nil {
			return nil, productError(KindConflict, ErrVariantMismatch, path, p.ProductID)
		}
		variantID = pgtype.UUID{Bytes: found.ID, Valid: true}
		unit = unit.Add(numericToDecimal(found.Price))
	}

	var ingredients []ValidatedIngredient
	if len(p.IngredientIDs) > 0 {
		offered, err := v.store.ListProductIngredients(ctx, p.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%s: list ingredients: %w", path, err)
		}
		byIngredient := make(map[uuid.UUID]database.ProductIngredient, len(offered))
		for _, pi := range offered {
			byIngredient[pi.IngredientID] = pi
		}

		index := make(map[uuid.UUID]int)
		for _, id := range p.IngredientIDs {
			pi, ok := byIngredient[id]
			if !ok {
				return nil, productError(KindConflict, ErrIngredientMismatch, path, p.ProductID)
			}
			price := numericToDecimal(pi.Price)
			unit = unit.Add(price)
			if n, seen := index[pi.ID]; seen {
				ingredients[n].Quantity++
				continue
			}
			index[pi.ID] = len(ingredients)
			ingredients = append(ingredients, ValidatedIngredient{
				ProductIngredientID: pi.ID,
				Quantity:            1,
				UnitPrice:           price,
			})
		}
	}

	return &ValidatedProduct{
		ProductID:   p.ProductID,
		VariantID:   variantID,
		Quantity:    p.Quantity,
		Notes:       p.Notes,
		UnitPrice:   unit,
		Ingredients: ingredients,
	}, nil
}

// ValidateMenu validates and prices a single menu line with its fields.
func (v *Validator) ValidateMenu(ctx context.Context, m MenuPick, roleID uuid.UUID, now time.Time, path string) (*ValidatedMenu, error) {
	if m.Quantity < 1 {
		return nil, menuError(KindBadRequest, ErrInvalidQuantity, path, m.MenuID, uuid.Nil)
	}

	menu, err := v.store.GetMenuForOrder(ctx, m.MenuID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, menuError(KindNotFound, ErrMenuNotFound, path, m.MenuID, uuid.Nil)
		}
		return nil, fmt.Errorf("%s: get menu: %w", path, err)
	}

	allowed, err := v.store.MenuAllowedForRole(ctx, database.MenuAllowedForRoleParams{
		MenuID: m.MenuID,
		RoleID: roleID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: check menu role: %w", path, err)
	}
	if !allowed {
		return nil, menuError(KindUnauthorized, ErrMenuNotAllowed, path, m.MenuID, uuid.Nil)
	}

	available, err := v.store.MenuAvailableAt(ctx, database.MenuAvailableAtParams{
		MenuID: m.MenuID,
		At:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: check menu availability: %w", path, err)
	}
	if !available {
		return nil, menuError(KindConflict, ErrMenuUnavailable, path, m.MenuID, uuid.Nil)
	}

	fields, err := v.store.ListMenuFields(ctx, m.MenuID)
	if err != nil {
		return nil, fmt.Errorf("%s: list menu fields: %w", path, err)
	}
	byID := make(map[uuid.UUID]database.MenuField, len(fields))
	for _, f := range fields {
		byID[f.ID] = f
	}

	supplied := make(map[uuid.UUID]bool, len(m.Fields))
	for _, fp := range m.Fields {
		supplied[fp.MenuFieldID] = true
	}
	for _, f := range fields {
		if !f.IsOptional && !supplied[f.ID] {
			return nil, menuError(KindBadRequest, ErrMissingObligatoryField, path, m.MenuID, f.ID)
		}
	}

	unit := numericToDecimal(menu.Price)
	seen := make(map[uuid.UUID]bool, len(m.Fields))
	validated := make([]ValidatedField, 0, len(m.Fields))

	for j, fp := range m.Fields {
		fieldPath := fmt.Sprintf("%s.fields[%d]", path, j)
		field, ok := byID[fp.MenuFieldID]
		if !ok {
			return nil, menuError(KindNotFound, ErrMenuFieldNotFound, fieldPath, m.MenuID, fp.MenuFieldID)
		}
		if seen[field.ID] {
			return nil, menuError(KindConflict, ErrDuplicateMenuField, fieldPath, m.MenuID, field.ID)
		}
		seen[field.ID] = true

		if len(fp.Products) == 0 {
			return nil, menuError(KindBadRequest, ErrEmptyMenuField, fieldPath, m.MenuID, field.ID)
		}
		var count int64
		for _, p := range fp.Products {
			count += int64(p.Quantity)
		}
		if count > int64(field.MaxSortableElements) {
			return nil, menuError(KindBadRequest, ErrTooManyElements, fieldPath, m.MenuID, field.ID)
		}

		vf, err := v.validateField(ctx, m.MenuID, field, fp, fieldPath)
		if err != nil {
			return nil, err
		}
		for _, p := range vf.Products {
			unit = unit.Add(p.LineTotal())
		}
		validated = append(validated, *vf)
	}

	return &ValidatedMenu{
		MenuID:    m.MenuID,
		Quantity:  m.Quantity,
		Notes:     m.Notes,
		UnitPrice: unit,
		Fields:    validated,
	}, nil
}

func (v *Validator) validateField(ctx context.Context, menuID uuid.UUID, field database.MenuField, fp FieldPick, path string) (*ValidatedField, error) {
	offered, err := v.store.ListMenuFieldProducts(ctx, field.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: list field products: %w", path, err)
	}
	byProduct := make(map[uuid.UUID]database.MenuFieldProduct, len(offered))
	for _, o := range offered {
		byProduct[o.ProductID] = o
	}

	out := &ValidatedField{MenuFieldID: field.ID}
	for k, p := range fp.Products {
		productPath := fmt.Sprintf("%s.products[%d]", path, k)
		if p.Quantity < 1 {
			e := menuError(KindBadRequest, ErrInvalidQuantity, productPath, menuID, field.ID)
			e.ProductID = p.ProductID
			return nil, e
		}
		mfp, ok := byProduct[p.ProductID]
		if !ok {
			e := menuError(KindNotFound, ErrProductNotInField, productPath, menuID, field.ID)
			e.ProductID = p.ProductID
			return nil, e
		}
		vp, err := v.priceProduct(ctx, p, numericToDecimal(mfp.Price), productPath)
		if err != nil {
			var se *Error
			if errors.As(err, &se) {
				se.MenuID = menuID
				se.FieldID = field.ID
			}
			return nil, err
		}
		out.Products = append(out.Products, *vp)
	}
	return out, nil
}
