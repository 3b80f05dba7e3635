package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/festpos/api/internal/auth"
	"github.com/festpos/api/internal/database"
	"github.com/festpos/api/internal/middleware"
	"github.com/festpos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error)
	ReviseOrder(ctx context.Context, req service.ReviseOrderRequest) (*service.ReviseResult, error)
	ConfirmOrders(ctx context.Context, confirmedBy uuid.UUID, items []service.ConfirmItem) []service.ConfirmResult
	DeleteOrder(ctx context.Context, id uuid.UUID) (*database.Order, error)
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	service.OrderDetailReader
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore) *OrderHandler {
	return &OrderHandler{svc: svc, store: store}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted behind Authenticate: /orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.With(middleware.RequireCapability(auth.CapCreateOrders)).Post("/", h.Create)
	r.With(middleware.RequireCapability(auth.CapConfirmOrders)).Post("/confirm", h.Confirm)
	r.With(middleware.RequireCapability(auth.CapReviseOrders)).Put("/{id}", h.Revise)
	r.With(middleware.RequireCapability(auth.CapReviseOrders)).Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type orderMetaRequest struct {
	CustomerName    string     `json:"customer_name"`
	Guests          int32      `json:"guests"`
	TableNumber     string     `json:"table_number"`
	IsTakeAway      bool       `json:"is_take_away"`
	IsVoucher       bool       `json:"is_voucher"`
	HasTickets      bool       `json:"has_tickets"`
	Notes           string     `json:"notes"`
	PaymentMethodID *uuid.UUID `json:"payment_method_id"`
	ParentOrderID   *uuid.UUID `json:"parent_order_id"`
}

func (m orderMetaRequest) toMeta() service.OrderMeta {
	return service.OrderMeta{
		CustomerName:    m.CustomerName,
		Guests:          m.Guests,
		TableNumber:     m.TableNumber,
		IsTakeAway:      m.IsTakeAway,
		IsVoucher:       m.IsVoucher,
		HasTickets:      m.HasTickets,
		Notes:           m.Notes,
		PaymentMethodID: m.PaymentMethodID,
		ParentOrderID:   m.ParentOrderID,
	}
}

type productPickRequest struct {
	ProductID     uuid.UUID   `json:"product_id"`
	VariantID     *uuid.UUID  `json:"variant_id"`
	Quantity      int32       `json:"quantity"`
	IngredientIDs []uuid.UUID `json:"ingredient_ids"`
	Notes         string      `json:"notes"`
}

func (p productPickRequest) toPick() service.ProductPick {
	return service.ProductPick{
		ProductID:     p.ProductID,
		VariantID:     p.VariantID,
		Quantity:      p.Quantity,
		IngredientIDs: p.IngredientIDs,
		Notes:         p.Notes,
	}
}

type fieldPickRequest struct {
	MenuFieldID uuid.UUID            `json:"menu_field_id"`
	Products    []productPickRequest `json:"products"`
}

type menuPickRequest struct {
	MenuID   uuid.UUID          `json:"menu_id"`
	Quantity int32              `json:"quantity"`
	Notes    string             `json:"notes"`
	Fields   []fieldPickRequest `json:"fields"`
}

func (m menuPickRequest) toPick() service.MenuPick {
	fields := make([]service.FieldPick, len(m.Fields))
	for i, f := range m.Fields {
		fields[i] = service.FieldPick{MenuFieldID: f.MenuFieldID, Products: toProductPicks(f.Products)}
	}
	return service.MenuPick{MenuID: m.MenuID, Quantity: m.Quantity, Notes: m.Notes, Fields: fields}
}

func toProductPicks(in []productPickRequest) []service.ProductPick {
	out := make([]service.ProductPick, len(in))
	for i, p := range in {
		out[i] = p.toPick()
	}
	return out
}

type createOrderRequest struct {
	orderMetaRequest
	Products []productPickRequest `json:"products"`
	Menus    []menuPickRequest    `json:"menus"`
}

// productEditRequest edits an existing line when ID is set and adds the
// embedded pick otherwise.
type productEditRequest struct {
	productPickRequest
	ID     *uuid.UUID `json:"id"`
	Edited bool       `json:"edited"`
}

type menuEditRequest struct {
	menuPickRequest
	ID     *uuid.UUID `json:"id"`
	Edited bool       `json:"edited"`
}

type reviseOrderRequest struct {
	orderMetaRequest
	Products []productEditRequest `json:"products"`
	Menus    []menuEditRequest    `json:"menus"`
}

type confirmItemRequest struct {
	OrderID     uuid.UUID `json:"order_id"`
	TableNumber string    `json:"table_number"`
}

type confirmItemResponse struct {
	OrderID uuid.UUID      `json:"order_id"`
	OK      bool           `json:"ok"`
	Order   *orderResponse `json:"order,omitempty"`
	Error   *errorResponse `json:"error,omitempty"`
}

type orderResponse struct {
	ID              uuid.UUID              `json:"id"`
	CustomerName    string                 `json:"customer_name"`
	Guests          *int32                 `json:"guests"`
	TableNumber     *string                `json:"table_number"`
	IsTakeAway      bool                   `json:"is_take_away"`
	IsConfirmed     bool                   `json:"is_confirmed"`
	IsDone          bool                   `json:"is_done"`
	IsVoucher       bool                   `json:"is_voucher"`
	HasTickets      bool                   `json:"has_tickets"`
	Notes           *string                `json:"notes"`
	Price           string                 `json:"price"`
	PaymentMethodID *uuid.UUID             `json:"payment_method_id"`
	UserID          uuid.UUID              `json:"user_id"`
	ConfirmedBy     *uuid.UUID             `json:"confirmed_by"`
	ParentOrderID   *uuid.UUID             `json:"parent_order_id"`
	CreatedAt       time.Time              `json:"created_at"`
	ConfirmedAt     *time.Time             `json:"confirmed_at"`
	Products        []orderProductResponse `json:"products,omitempty"`
	Menus           []orderMenuResponse    `json:"menus,omitempty"`
}

type orderProductResponse struct {
	ID          uuid.UUID                 `json:"id"`
	ProductID   uuid.UUID                 `json:"product_id"`
	ProductName string                    `json:"product_name,omitempty"`
	VariantID   *uuid.UUID                `json:"variant_id"`
	VariantName *string                   `json:"variant_name,omitempty"`
	Price       string                    `json:"price"`
	Quantity    int32                     `json:"quantity"`
	Notes       *string                   `json:"notes"`
	Ingredients []orderIngredientResponse `json:"ingredients"`
}

type orderIngredientResponse struct {
	ID                  uuid.UUID  `json:"id"`
	ProductIngredientID uuid.UUID  `json:"product_ingredient_id"`
	IngredientID        *uuid.UUID `json:"ingredient_id,omitempty"`
	Name                string     `json:"name,omitempty"`
	Quantity            int32      `json:"quantity"`
}

type orderMenuResponse struct {
	ID       uuid.UUID                `json:"id"`
	MenuID   uuid.UUID                `json:"menu_id"`
	MenuName string                   `json:"menu_name,omitempty"`
	Price    string                   `json:"price"`
	Quantity int32                    `json:"quantity"`
	Notes    *string                  `json:"notes"`
	Fields   []orderMenuFieldResponse `json:"fields"`
}

type orderMenuFieldResponse struct {
	ID          uuid.UUID              `json:"id"`
	MenuFieldID uuid.UUID              `json:"menu_field_id"`
	Name        string                 `json:"name,omitempty"`
	Products    []orderProductResponse `json:"products"`
}

type reviseOrderResponse struct {
	Order    orderResponse    `json:"order"`
	Revision revisionResponse `json:"revision"`
}

type revisionResponse struct {
	ID              uuid.UUID `json:"id"`
	PriceDifference string    `json:"price_difference"`
	EditedProducts  int32     `json:"edited_products"`
	CreatedAt       time.Time `json:"created_at"`
}

// orderListResponse wraps a list of orders with pagination metadata.
type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	menus := make([]service.MenuPick, len(req.Menus))
	for i, m := range req.Menus {
		menus[i] = m.toPick()
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		UserID:   claims.UserID,
		RoleID:   claims.RoleID,
		Meta:     req.toMeta(),
		Products: toProductPicks(req.Products),
		Menus:    menus,
	})
	if err != nil {
		writeServiceError(w, "create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResultResponse(result))
}

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}
	if offset > math.MaxInt32 {
		offset = math.MaxInt32
	}

	params := database.ListOrdersParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	}
	if s := r.URL.Query().Get("done"); s != "" {
		done, err := strconv.ParseBool(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid done filter"})
			return
		}
		params.IsDone = pgtype.Bool{Bool: done, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		zap.S().Errorw("list orders failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}

	writeJSON(w, http.StatusOK, orderListResponse{
		Orders: resp,
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		zap.S().Errorw("get order failed", "order_id", orderID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	detail, err := service.LoadOrderDetail(r.Context(), h.store, order)
	if err != nil {
		zap.S().Errorw("load order detail failed", "order_id", orderID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderDetailResponse(detail))
}

// Revise handles PUT /orders/{id}.
func (h *OrderHandler) Revise(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req reviseOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	products := make([]service.ProductLineEdit, len(req.Products))
	for i, p := range req.Products {
		products[i] = service.ProductLineEdit{
			ID:       p.ID,
			Edited:   p.Edited,
			Quantity: p.Quantity,
			Notes:    p.Notes,
			Pick:     p.toPick(),
		}
	}
	menus := make([]service.MenuLineEdit, len(req.Menus))
	for i, m := range req.Menus {
		menus[i] = service.MenuLineEdit{
			ID:       m.ID,
			Edited:   m.Edited,
			Quantity: m.Quantity,
			Notes:    m.Notes,
			Pick:     m.toPick(),
		}
	}

	result, err := h.svc.ReviseOrder(r.Context(), service.ReviseOrderRequest{
		OrderID:  orderID,
		UserID:   claims.UserID,
		RoleID:   claims.RoleID,
		Meta:     req.toMeta(),
		Products: products,
		Menus:    menus,
	})
	if err != nil {
		writeServiceError(w, "revise order", err)
		return
	}

	writeJSON(w, http.StatusOK, reviseOrderResponse{
		Order: dbOrderToResponse(result.Order),
		Revision: revisionResponse{
			ID:              result.Revision.ID,
			PriceDifference: numericToString(result.Revision.PriceDifference),
			EditedProducts:  result.Revision.EditedProducts,
			CreatedAt:       result.Revision.CreatedAt,
		},
	})
}

// Confirm handles POST /orders/confirm. Each item is reported separately; the
// batch only fails as a whole when the body is malformed.
func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req []confirmItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no orders to confirm"})
		return
	}

	items := make([]service.ConfirmItem, len(req))
	for i, item := range req {
		items[i] = service.ConfirmItem{OrderID: item.OrderID, TableNumber: item.TableNumber}
	}

	results := h.svc.ConfirmOrders(r.Context(), claims.UserID, items)

	resp := make([]confirmItemResponse, len(results))
	for i, res := range results {
		resp[i] = confirmItemResponse{OrderID: res.OrderID}
		if res.Err != nil {
			status, body := toErrorResponse(res.Err)
			if status == http.StatusInternalServerError {
				zap.S().Errorw("confirm order failed", "order_id", res.OrderID, "error", res.Err)
			}
			resp[i].Error = &body
			continue
		}
		order := dbOrderToResponse(*res.Order)
		resp[i].OK = true
		resp[i].Order = &order
	}

	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /orders/{id}. Orders are soft deleted.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	if _, err := h.svc.DeleteOrder(r.Context(), orderID); err != nil {
		writeServiceError(w, "delete order", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// dbOrderToResponse converts a database.Order without its lines.
func dbOrderToResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		Guests:          int4Ptr(o.Guests),
		TableNumber:     textPtr(o.TableNumber),
		IsTakeAway:      o.IsTakeAway,
		IsConfirmed:     o.IsConfirmed,
		IsDone:          o.IsDone,
		IsVoucher:       o.IsVoucher,
		HasTickets:      o.HasTickets,
		Notes:           textPtr(o.Notes),
		Price:           numericToString(o.Price),
		PaymentMethodID: uuidPtr(o.PaymentMethodID),
		UserID:          o.UserID,
		ConfirmedBy:     uuidPtr(o.ConfirmedBy),
		ParentOrderID:   uuidPtr(o.ParentOrderID),
		CreatedAt:       o.CreatedAt,
	}
	if o.ConfirmedAt.Valid {
		resp.ConfirmedAt = &o.ConfirmedAt.Time
	}
	return resp
}

// toOrderResultResponse converts the graph written by CreateOrder.
func toOrderResultResponse(result *service.OrderResult) orderResponse {
	resp := dbOrderToResponse(result.Order)
	resp.Products = make([]orderProductResponse, len(result.Products))
	for i, p := range result.Products {
		resp.Products[i] = toProductLineResponse(p)
	}
	resp.Menus = make([]orderMenuResponse, len(result.Menus))
	for i, m := range result.Menus {
		fields := make([]orderMenuFieldResponse, len(m.Fields))
		for j, f := range m.Fields {
			products := make([]orderProductResponse, len(f.Products))
			for k, p := range f.Products {
				products[k] = toProductLineResponse(p)
			}
			fields[j] = orderMenuFieldResponse{ID: f.Field.ID, MenuFieldID: f.Field.MenuFieldID, Products: products}
		}
		resp.Menus[i] = orderMenuResponse{
			ID:       m.Menu.ID,
			MenuID:   m.Menu.MenuID,
			Price:    numericToString(m.Menu.Price),
			Quantity: m.Menu.Quantity,
			Notes:    textPtr(m.Menu.Notes),
			Fields:   fields,
		}
	}
	return resp
}

func toProductLineResponse(p service.ProductLine) orderProductResponse {
	ingredients := make([]orderIngredientResponse, len(p.Ingredients))
	for i, ing := range p.Ingredients {
		ingredients[i] = orderIngredientResponse{
			ID:                  ing.ID,
			ProductIngredientID: ing.ProductIngredientID,
			Quantity:            ing.Quantity,
		}
	}
	return orderProductResponse{
		ID:          p.Product.ID,
		ProductID:   p.Product.ProductID,
		VariantID:   uuidPtr(p.Product.VariantID),
		Price:       numericToString(p.Product.Price),
		Quantity:    p.Product.Quantity,
		Notes:       textPtr(p.Product.Notes),
		Ingredients: ingredients,
	}
}

// toOrderDetailResponse converts the named read projection.
func toOrderDetailResponse(d *service.OrderDetail) orderResponse {
	resp := dbOrderToResponse(d.Order)
	resp.Products = make([]orderProductResponse, len(d.Products))
	for i, p := range d.Products {
		resp.Products[i] = toProductDetailResponse(p)
	}
	resp.Menus = make([]orderMenuResponse, len(d.Menus))
	for i, m := range d.Menus {
		fields := make([]orderMenuFieldResponse, len(m.Fields))
		for j, f := range m.Fields {
			products := make([]orderProductResponse, len(f.Products))
			for k, p := range f.Products {
				products[k] = toProductDetailResponse(p)
			}
			fields[j] = orderMenuFieldResponse{
				ID:          f.Field.ID,
				MenuFieldID: f.Field.MenuFieldID,
				Name:        f.Field.FieldName,
				Products:    products,
			}
		}
		resp.Menus[i] = orderMenuResponse{
			ID:       m.Menu.ID,
			MenuID:   m.Menu.MenuID,
			MenuName: m.Menu.MenuName,
			Price:    numericToString(m.Menu.Price),
			Quantity: m.Menu.Quantity,
			Notes:    textPtr(m.Menu.Notes),
			Fields:   fields,
		}
	}
	return resp
}

func toProductDetailResponse(p service.ProductDetail) orderProductResponse {
	ingredients := make([]orderIngredientResponse, len(p.Ingredients))
	for i, ing := range p.Ingredients {
		ingredientID := ing.IngredientID
		ingredients[i] = orderIngredientResponse{
			ID:                  ing.ID,
			ProductIngredientID: ing.ProductIngredientID,
			IngredientID:        &ingredientID,
			Name:                ing.IngredientName,
			Quantity:            ing.Quantity,
		}
	}
	return orderProductResponse{
		ID:          p.Product.ID,
		ProductID:   p.Product.ProductID,
		ProductName: p.Product.ProductName,
		VariantID:   uuidPtr(p.Product.VariantID),
		VariantName: textPtr(p.Product.VariantName),
		Price:       numericToString(p.Product.Price),
		Quantity:    p.Product.Quantity,
		Notes:       textPtr(p.Product.Notes),
		Ingredients: ingredients,
	}
}
