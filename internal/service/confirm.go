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

// ConfirmItem asks for one order to be confirmed. TableNumber may be empty
// when the order already has a table or is take-away.
type ConfirmItem struct {
	OrderID     uuid.UUID
	TableNumber string
}

// ConfirmResult is the outcome of confirming one order. Err is nil on success.
type ConfirmResult struct {
	OrderID uuid.UUID
	Order   *database.Order
	Err     error
}

// ConfirmOrders confirms each item in its own transaction. A failing item
// does not affect the others.
func (s *OrderService) ConfirmOrders(ctx context.Context, confirmedBy uuid.UUID, items []ConfirmItem) []ConfirmResult {
	results := make([]ConfirmResult, len(items))
	for i, item := range items {
		results[i] = ConfirmResult{OrderID: item.OrderID}
		var order database.Order
		err := s.inTx(ctx, func(store OrderStore) error {
			var err error
			order, err = confirmOne(ctx, store, confirmedBy, item)
			return err
		})
		if err != nil {
			results[i].Err = err
			continue
		}
		results[i].Order = &order
	}
	return results
}

func confirmOne(ctx context.Context, store OrderStore, confirmedBy uuid.UUID, item ConfirmItem) (database.Order, error) {
	order, err := store.GetOrderForUpdate(ctx, item.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, newError(KindNotFound, ErrOrderNotFound, "")
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if order.IsConfirmed {
		return database.Order{}, newError(KindConflict, ErrAlreadyConfirmed, "")
	}

	table := pgtype.Text{}
	if !order.IsTakeAway {
		table = optionalText(item.TableNumber)
		if !table.Valid && !order.TableNumber.Valid {
			return database.Order{}, newError(KindBadRequest, ErrTableRequired, "")
		}
	}

	confirmed, err := store.ConfirmOrder(ctx, database.ConfirmOrderParams{
		ID:          order.ID,
		ConfirmedBy: pgtype.UUID{Bytes: confirmedBy, Valid: true},
		TableNumber: table,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, newError(KindConflict, ErrAlreadyConfirmed, "")
		}
		return database.Order{}, fmt.Errorf("confirm order: %w", err)
	}
	return confirmed, nil
}
