package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/festpos/api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const defaultTxRetries = 3

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create, revise and confirm
// orders. Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	CatalogReader
	OrderWriter
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	UpdateOrderDetails(ctx context.Context, arg database.UpdateOrderDetailsParams) (database.Order, error)
	GetOrderProduct(ctx context.Context, arg database.GetOrderProductParams) (database.OrderProduct, error)
	UpdateOrderProductQuantity(ctx context.Context, arg database.UpdateOrderProductQuantityParams) (database.OrderProduct, error)
	DeleteOrderProduct(ctx context.Context, id uuid.UUID) (int64, error)
	GetOrderMenu(ctx context.Context, arg database.GetOrderMenuParams) (database.OrderMenu, error)
	UpdateOrderMenuQuantity(ctx context.Context, arg database.UpdateOrderMenuQuantityParams) (database.OrderMenu, error)
	DeleteOrderMenu(ctx context.Context, id uuid.UUID) (int64, error)
	CreateRevision(ctx context.Context, arg database.CreateRevisionParams) (database.Revision, error)
	ConfirmOrder(ctx context.Context, arg database.ConfirmOrderParams) (database.Order, error)
	SoftDeleteOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the input for creating an order.
type CreateOrderRequest struct {
	UserID   uuid.UUID
	RoleID   uuid.UUID
	Meta     OrderMeta
	Products []ProductPick
	Menus    []MenuPick
}

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	retries  int
	now      func() time.Time
}

// NewOrderService creates a new OrderService. retries bounds how many times a
// transaction is attempted when PostgreSQL reports a serialization failure.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, retries int) *OrderService {
	if retries <= 0 {
		retries = defaultTxRetries
	}
	return &OrderService{pool: pool, newStore: newStore, retries: retries, now: time.Now}
}

// CreateOrder validates, prices and persists an order atomically.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	sel := Selection{
		IsTakeAway: req.Meta.IsTakeAway,
		Guests:     req.Meta.Guests,
		Products:   req.Products,
		Menus:      req.Menus,
	}

	var result *OrderResult
	err := s.inTx(ctx, func(store OrderStore) error {
		validated, err := NewValidator(store).Validate(ctx, sel, req.RoleID, s.now())
		if err != nil {
			return err
		}
		result, err = Build(ctx, store, validated, req.Meta, req.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteOrder marks an order as deleted. Deleted orders are never printed or
// revised again.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) (*database.Order, error) {
	var order database.Order
	err := s.inTx(ctx, func(store OrderStore) error {
		var err error
		order, err = store.SoftDeleteOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return newError(KindNotFound, ErrOrderNotFound, "")
			}
			return fmt.Errorf("soft delete order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// inTx runs fn in a serializable transaction, retrying the whole function when
// PostgreSQL aborts it with a serialization failure or deadlock.
func (s *OrderService) inTx(ctx context.Context, fn func(store OrderStore) error) error {
	var lastErr error
	for attempt := 0; attempt < s.retries; attempt++ {
		err := s.runTx(ctx, fn)
		if err == nil {
			return nil
		}
		if isSerializationFailure(err) {
			lastErr = err
			continue
		}
		return err
	}
	return lastErr
}

func (s *OrderService) runTx(ctx context.Context, fn func(store OrderStore) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(s.newStore(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// isSerializationFailure checks for SQLSTATE 40001 (serialization_failure)
// and 40P01 (deadlock_detected).
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// --- Helpers ---

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func optionalUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
