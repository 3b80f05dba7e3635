package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type PrinterType string

const (
	PrinterTypeRECEIPT PrinterType = "RECEIPT"
	PrinterTypeTICKET  PrinterType = "TICKET"
)

type Role struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	CanCreateOrders   bool      `json:"can_create_orders"`
	CanConfirmOrders  bool      `json:"can_confirm_orders"`
	CanReviseOrders   bool      `json:"can_revise_orders"`
	CanManagePrinters bool      `json:"can_manage_printers"`
	CanManageCatalog  bool      `json:"can_manage_catalog"`
	CanViewStatistics bool      `json:"can_view_statistics"`
	CreatedAt         time.Time `json:"created_at"`
}

type Category struct {
	ID        uuid.UUID   `json:"id"`
	ParentID  pgtype.UUID `json:"parent_id"`
	Name      string      `json:"name"`
	CreatedAt time.Time   `json:"created_at"`
}

type ProductVariant struct {
	ID        uuid.UUID      `json:"id"`
	ProductID uuid.UUID      `json:"product_id"`
	Name      string         `json:"name"`
	Price     pgtype.Numeric `json:"price"`
}

type ProductIngredient struct {
	ID           uuid.UUID      `json:"id"`
	ProductID    uuid.UUID      `json:"product_id"`
	IngredientID uuid.UUID      `json:"ingredient_id"`
	Price        pgtype.Numeric `json:"price"`
}

type MenuField struct {
	ID                  uuid.UUID `json:"id"`
	MenuID              uuid.UUID `json:"menu_id"`
	Name                string    `json:"name"`
	IsOptional          bool      `json:"is_optional"`
	MaxSortableElements int32     `json:"max_sortable_elements"`
	Position            int32     `json:"position"`
}

type MenuFieldProduct struct {
	ID          uuid.UUID      `json:"id"`
	MenuFieldID uuid.UUID      `json:"menu_field_id"`
	ProductID   uuid.UUID      `json:"product_id"`
	Price       pgtype.Numeric `json:"price"`
}

type Printer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type RolePrinter struct {
	ID          uuid.UUID   `json:"id"`
	RoleID      uuid.UUID   `json:"role_id"`
	PrinterID   uuid.UUID   `json:"printer_id"`
	PrinterType PrinterType `json:"printer_type"`
}

type Order struct {
	ID              uuid.UUID          `json:"id"`
	CustomerName    string             `json:"customer_name"`
	Guests          pgtype.Int4        `json:"guests"`
	TableNumber     pgtype.Text        `json:"table_number"`
	IsTakeAway      bool               `json:"is_take_away"`
	IsConfirmed     bool               `json:"is_confirmed"`
	IsDone          bool               `json:"is_done"`
	IsDeleted       bool               `json:"is_deleted"`
	IsVoucher       bool               `json:"is_voucher"`
	HasTickets      bool               `json:"has_tickets"`
	Notes           pgtype.Text        `json:"notes"`
	Price           pgtype.Numeric     `json:"price"`
	PaymentMethodID pgtype.UUID        `json:"payment_method_id"`
	UserID          uuid.UUID          `json:"user_id"`
	ConfirmedBy     pgtype.UUID        `json:"confirmed_by"`
	ParentOrderID   pgtype.UUID        `json:"parent_order_id"`
	CreatedAt       time.Time          `json:"created_at"`
	ConfirmedAt     pgtype.Timestamptz `json:"confirmed_at"`
}

type OrderProduct struct {
	ID               uuid.UUID      `json:"id"`
	OrderID          uuid.UUID      `json:"order_id"`
	ProductID        uuid.UUID      `json:"product_id"`
	VariantID        pgtype.UUID    `json:"variant_id"`
	OrderMenuFieldID pgtype.UUID    `json:"order_menu_field_id"`
	Price            pgtype.Numeric `json:"price"`
	Quantity         int32          `json:"quantity"`
	Notes            pgtype.Text    `json:"notes"`
}

type OrderProductIngredient struct {
	ID                  uuid.UUID `json:"id"`
	OrderProductID      uuid.UUID `json:"order_product_id"`
	ProductIngredientID uuid.UUID `json:"product_ingredient_id"`
	Quantity            int32     `json:"quantity"`
}

type OrderMenu struct {
	ID       uuid.UUID      `json:"id"`
	OrderID  uuid.UUID      `json:"order_id"`
	MenuID   uuid.UUID      `json:"menu_id"`
	Price    pgtype.Numeric `json:"price"`
	Quantity int32          `json:"quantity"`
	Notes    pgtype.Text    `json:"notes"`
}

type OrderMenuField struct {
	ID          uuid.UUID `json:"id"`
	OrderMenuID uuid.UUID `json:"order_menu_id"`
	MenuFieldID uuid.UUID `json:"menu_field_id"`
}

type Revision struct {
	ID              uuid.UUID      `json:"id"`
	OrderID         uuid.UUID      `json:"order_id"`
	UserID          uuid.UUID      `json:"user_id"`
	PriceDifference pgtype.Numeric `json:"price_difference"`
	EditedProducts  int32          `json:"edited_products"`
	CreatedAt       time.Time      `json:"created_at"`
}
