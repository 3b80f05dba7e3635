package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/festpos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ReviseOrderRequest edits an existing order. Only lines with Edited set are
// touched; the order meta is always overwritten.
type ReviseOrderRequest struct {
	OrderID  uuid.UUID
	UserID   uuid.UUID
	RoleID   uuid.UUID
	Meta     OrderMeta
	Products []ProductLineEdit
	Menus    []MenuLineEdit
}

// ProductLineEdit changes a standalone product line. A nil ID adds a new
// line built from Pick.
type ProductLineEdit struct {
	ID       *uuid.UUID
	Edited   bool
	Quantity int32
	Notes    string
	Pick     ProductPick
}

// MenuLineEdit changes a menu line. A nil ID adds a new line built from Pick.
type MenuLineEdit struct {
	ID       *uuid.UUID
	Edited   bool
	Quantity int32
	Notes    string
	Pick     MenuPick
}

// ReviseResult is the revised order and the revision row that records it.
type ReviseResult struct {
	Order    database.Order
	Revision database.Revision
}

// ReviseOrder applies line edits to an order, keeps its price equal to the
// sum of its lines and records a Revision with the price difference.
func (s *OrderService) ReviseOrder(ctx context.Context, req ReviseOrderRequest) (*ReviseResult, error) {
	if !req.Meta.IsTakeAway && req.Meta.Guests <= 0 {
		return nil, newError(KindBadRequest, ErrGuestsRequired, "")
	}

	var result *ReviseResult
	err := s.inTx(ctx, func(store OrderStore) error {
		var err error
		result, err = s.reviseTx(ctx, store, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *OrderService) reviseTx(ctx context.Context, store OrderStore, req ReviseOrderRequest) (*ReviseResult, error) {
	order, err := store.GetOrderForUpdate(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, newError(KindNotFound, ErrOrderNotFound, "")
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	validator := NewValidator(store)
	now := s.now()
	previous := numericToDecimal(order.Price)
	total := previous
	var edited int32

	for i, e := range req.Products {
		if !e.Edited {
			continue
		}
		path := fmt.Sprintf("products[%d]", i)
		if e.Quantity < 0 {
			return nil, newError(KindBadRequest, ErrInvalidQuantity, path)
		}

		if e.ID == nil {
			if e.Quantity == 0 {
				continue
			}
			pick := e.Pick
			pick.Quantity = e.Quantity
			pick.Notes = e.Notes
			vp, err := validator.ValidateProduct(ctx, pick, req.RoleID, now, path)
			if err != nil {
				return nil, err
			}
			if _, err := insertProduct(ctx, store, order.ID, pgtype.UUID{}, *vp); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			total = total.Add(vp.LineTotal())
			edited++
			continue
		}

		row, err := store.GetOrderProduct(ctx, database.GetOrderProductParams{ID: *e.ID, OrderID: order.ID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, newError(KindNotFound, ErrOrderLineNotFound, path)
			}
			return nil, fmt.Errorf("%s: get order product: %w", path, err)
		}
		unit := numericToDecimal(row.Price)

		if e.Quantity == 0 {
			if _, err := store.DeleteOrderProduct(ctx, row.ID); err != nil {
				return nil, fmt.Errorf("%s: delete order product: %w", path, err)
			}
		} else {
			if _, err := store.UpdateOrderProductQuantity(ctx, database.UpdateOrderProductQuantityParams{
				ID:       row.ID,
				Quantity: e.Quantity,
				Notes:    optionalText(e.Notes),
			}); err != nil {
				return nil, fmt.Errorf("%s: update order product: %w", path, err)
			}
		}
		total = total.Add(quantityDelta(unit, row.Quantity, e.Quantity))
		edited++
	}

	for i, e := range req.Menus {
		if !e.Edited {
			continue
		}
		path := fmt.Sprintf("menus[%d]", i)
		if e.Quantity < 0 {
			return nil, newError(KindBadRequest, ErrInvalidQuantity, path)
		}

		if e.ID == nil {
			if e.Quantity == 0 {
				continue
			}
			pick := e.Pick
			pick.Quantity = e.Quantity
			pick.Notes = e.Notes
			vm, err := validator.ValidateMenu(ctx, pick, req.RoleID, now, path)
			if err != nil {
				return nil, err
			}
			if _, err := insertMenu(ctx, store, order.ID, *vm); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			total = total.Add(vm.LineTotal())
			edited++
			continue
		}

		row, err := store.GetOrderMenu(ctx, database.GetOrderMenuParams{ID: *e.ID, OrderID: order.ID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, newError(KindNotFound, ErrOrderLineNotFound, path)
			}
			return nil, fmt.Errorf("%s: get order menu: %w", path, err)
		}
		unit := numericToDecimal(row.Price)

		if e.Quantity == 0 {
			if _, err := store.DeleteOrderMenu(ctx, row.ID); err != nil {
				return nil, fmt.Errorf("%s: delete order menu: %w", path, err)
			}
		} else {
			if _, err := store.UpdateOrderMenuQuantity(ctx, database.UpdateOrderMenuQuantityParams{
				ID:       row.ID,
				Quantity: e.Quantity,
				Notes:    optionalText(e.Notes),
			}); err != nil {
				return nil, fmt.Errorf("%s: update order menu: %w", path, err)
			}
		}
		total = total.Add(quantityDelta(unit, row.Quantity, e.Quantity))
		edited++
	}

	updated, err := store.UpdateOrderDetails(ctx, database.UpdateOrderDetailsParams{
		ID:              order.ID,
		CustomerName:    req.Meta.CustomerName,
		Guests:          req.Meta.guests(),
		TableNumber:     req.Meta.table(),
		IsTakeAway:      req.Meta.IsTakeAway,
		IsVoucher:       req.Meta.IsVoucher,
		HasTickets:      req.Meta.HasTickets,
		Notes:           optionalText(req.Meta.Notes),
		PaymentMethodID: optionalUUID(req.Meta.PaymentMethodID),
		Price:           decimalToNumeric(total),
	})
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	revision, err := store.CreateRevision(ctx, database.CreateRevisionParams{
		OrderID:         order.ID,
		UserID:          req.UserID,
		PriceDifference: decimalToNumeric(total.Sub(previous)),
		EditedProducts:  edited,
	})
	if err != nil {
		return nil, fmt.Errorf("create revision: %w", err)
	}

	return &ReviseResult{Order: updated, Revision: revision}, nil
}

// quantityDelta is the price change of moving a line at the frozen unit price
// from prior to next units.
func quantityDelta(unit decimal.Decimal, prior, next int32) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt32(next - prior))
}
