package service

import (
	"context"
	"errors"
	"testing"

	"github.com/festpos/api/internal/database"
	"github.com/google/uuid"
)

func TestConfirmOrders_PerItemOutcome(t *testing.T) {
	cat := newTestCatalog()
	soup := cat.addProduct("4.50")
	mem := newMemOrders()
	svc, _ := newTestService(defaultStore(cat, mem))

	seated := seedOrder(t, svc, CreateOrderRequest{
		Meta:     OrderMeta{Guests: 2},
		Products: []ProductPick{{ProductID: soup, Quantity: 1}},
	})
	noTable := seedOrder(t, svc, CreateOrderRequest{
		Meta:     OrderMeta{Guests: 2},
		Products: []ProductPick{{ProductID: soup, Quantity: 1}},
	})
	takeAway := seedOrder(t, svc, CreateOrderRequest{
		Meta:     OrderMeta{IsTakeAway: true},
		Products: []ProductPick{{ProductID: soup, Quantity: 1}},
	})
	missing := uuid.New()
	cashier := uuid.New()

	results := svc.ConfirmOrders(context.Background(), cashier, []ConfirmItem{
		{OrderID: seated.Order.ID, TableNumber: "4"},
		{OrderID: noTable.Order.ID},
		{OrderID: takeAway.Order.ID, TableNumber: "9"},
		{OrderID: missing},
		{OrderID: seated.Order.ID, TableNumber: "5"},
	})

	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("expected first confirmation to succeed, got %v", results[0].Err)
	}
	if results[0].Order.TableNumber.String != "4" {
		t.Errorf("expected table 4, got %q", results[0].Order.TableNumber.String)
	}
	if uuid.UUID(results[0].Order.ConfirmedBy.Bytes) != cashier {
		t.Errorf("expected confirmed_by to be the cashier")
	}
	if !errors.Is(results[1].Err, ErrTableRequired) || KindOf(results[1].Err) != KindBadRequest {
		t.Errorf("expected table required, got %v", results[1].Err)
	}
	if results[2].Err != nil {
		t.Errorf("expected take-away confirmation to succeed, got %v", results[2].Err)
	} else if results[2].Order.TableNumber.Valid {
		t.Errorf("take-away order must not get a table")
	}
	if !errors.Is(results[3].Err, ErrOrderNotFound) {
		t.Errorf("expected not found, got %v", results[3].Err)
	}
	if !errors.Is(results[4].Err, ErrAlreadyConfirmed) || KindOf(results[4].Err) != KindConflict {
		t.Errorf("expected already confirmed, got %v", results[4].Err)
	}
	if mem.orders[noTable.Order.ID].IsConfirmed {
		t.Error("failed item must not be confirmed")
	}
}

func TestConfirmOrders_KeepsExistingTable(t *testing.T) {
	cat := newTestCatalog()
	soup := cat.addProduct("4.50")
	mem := newMemOrders()
	store := defaultStore(cat, mem)
	svc, _ := newTestService(store)

	created := seedOrder(t, svc, CreateOrderRequest{
		Meta:     dineIn(2),
		Products: []ProductPick{{ProductID: soup, Quantity: 1}},
	})

	var got database.ConfirmOrderParams
	confirm := store.confirmOrderFn
	store.confirmOrderFn = func(ctx context.Context, arg database.ConfirmOrderParams) (database.Order, error) {
		got = arg
		return confirm(ctx, arg)
	}

	results := svc.ConfirmOrders(context.Background(), uuid.New(), []ConfirmItem{{OrderID: created.Order.ID}})
	if results[0].Err != nil {
		t.Fatalf("unexpected error: %v", results[0].Err)
	}
	if got.TableNumber.Valid {
		t.Errorf("expected no table override, got %q", got.TableNumber.String)
	}
	if results[0].Order.TableNumber.String != "12" {
		t.Errorf("expected existing table 12, got %q", results[0].Order.TableNumber.String)
	}
}
