package printing

import (
	"context"
	"fmt"

	"github.com/festpos/api/internal/database"
	"github.com/google/uuid"
)

// SelectorStore defines the DB methods needed to pick print jobs.
// Satisfied by *database.Queries.
type SelectorStore interface {
	ListPendingOrders(ctx context.Context) ([]database.ListPendingOrdersRow, error)
	ListRolePrintersByRole(ctx context.Context, roleID uuid.UUID) ([]database.RolePrinter, error)
	ListPrintedRolePrinterIDs(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error)
	MarkOrderDone(ctx context.Context, id uuid.UUID) (int64, error)
}

// Job is one destination of one order that a printer still has to print.
type Job struct {
	Order         database.Order
	PrinterType   database.PrinterType
	RolePrinterID uuid.UUID
}

// Selector derives the next print job for a printer from the order store.
// It keeps no state between calls.
type Selector struct {
	store SelectorStore
}

func NewSelector(store SelectorStore) *Selector {
	return &Selector{store: store}
}

// NextJob returns the oldest outstanding destination on printerID, or nil if
// no pending order targets it. Orders found fully printed along the way are
// marked done.
func (s *Selector) NextJob(ctx context.Context, printerID uuid.UUID) (*Job, error) {
	pending, err := s.store.ListPendingOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}

	byRole := make(map[uuid.UUID][]database.RolePrinter)
	for _, p := range pending {
		remaining, err := s.completeIfPrinted(ctx, p, byRole)
		if err != nil {
			return nil, err
		}
		for _, rp := range remaining {
			if rp.PrinterID == printerID {
				return &Job{Order: p.Order, PrinterType: rp.PrinterType, RolePrinterID: rp.ID}, nil
			}
		}
	}
	return nil, nil
}

// CompleteIfPrinted marks the order done when every required destination has
// a recorded print and the order is take-away or confirmed. It returns the destinations still outstanding, ordering
// role first, then confirming role, each by ascending id.
func (s *Selector) CompleteIfPrinted(ctx context.Context, p database.ListPendingOrdersRow) ([]database.RolePrinter, error) {
	return s.completeIfPrinted(ctx, p, make(map[uuid.UUID][]database.RolePrinter))
}

func (s *Selector) completeIfPrinted(ctx context.Context, p database.ListPendingOrdersRow, byRole map[uuid.UUID][]database.RolePrinter) ([]database.RolePrinter, error) {
	required, err := s.requiredDestinations(ctx, p, byRole)
	if err != nil {
		return nil, err
	}

	printed, err := s.store.ListPrintedRolePrinterIDs(ctx, p.Order.ID)
	if err != nil {
		return nil, fmt.Errorf("order %s: list printed destinations: %w", p.Order.ID, err)
	}
	done := make(map[uuid.UUID]bool, len(printed))
	for _, id := range printed {
		done[id] = true
	}

	var remaining []database.RolePrinter
	for _, rp := range required {
		if !done[rp.ID] {
			remaining = append(remaining, rp)
		}
	}
	if len(remaining) == 0 && destinationsFinal(p.Order) {
		if _, err := s.store.MarkOrderDone(ctx, p.Order.ID); err != nil {
			return nil, fmt.Errorf("order %s: mark done: %w", p.Order.ID, err)
		}
	}
	return remaining, nil
}

// destinationsFinal reports whether the required set can no longer grow. A
// dine-in order gains the confirming role's destinations at confirmation.
func destinationsFinal(o database.Order) bool {
	return o.IsTakeAway || o.IsConfirmed
}

// requiredDestinations is the union of the ordering role's role-printers and,
// for confirmed orders, the confirming role's.
func (s *Selector) requiredDestinations(ctx context.Context, p database.ListPendingOrdersRow, byRole map[uuid.UUID][]database.RolePrinter) ([]database.RolePrinter, error) {
	roles := []uuid.UUID{p.OrderingRoleID}
	if p.Order.IsConfirmed && p.ConfirmingRoleID.Valid {
		roles = append(roles, uuid.UUID(p.ConfirmingRoleID.Bytes))
	}

	seen := make(map[uuid.UUID]bool)
	var required []database.RolePrinter
	for _, roleID := range roles {
		rps, ok := byRole[roleID]
		if !ok {
			var err error
			rps, err = s.store.ListRolePrintersByRole(ctx, roleID)
			if err != nil {
				return nil, fmt.Errorf("role %s: list role printers: %w", roleID, err)
			}
			byRole[roleID] = rps
		}
		for _, rp := range rps {
			if seen[rp.ID] {
				continue
			}
			seen[rp.ID] = true
			required = append(required, rp)
		}
	}
	return required, nil
}
