package handler_test

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/festpos/api/internal/auth"
	"github.com/festpos/api/internal/database"
	"github.com/festpos/api/internal/handler"
	"github.com/festpos/api/internal/middleware"
	"github.com/festpos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mock OrderServicer ---

type mockOrderService struct {
	createFn  func(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error)
	reviseFn  func(ctx context.Context, req service.ReviseOrderRequest) (*service.ReviseResult, error)
	confirmFn func(ctx context.Context, confirmedBy uuid.UUID, items []service.ConfirmItem) []service.ConfirmResult
	deleteFn  func(ctx context.Context, id uuid.UUID) (*database.Order, error)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error) {
	return m.createFn(ctx, req)
}

func (m *mockOrderService) ReviseOrder(ctx context.Context, req service.ReviseOrderRequest) (*service.ReviseResult, error) {
	return m.reviseFn(ctx, req)
}

func (m *mockOrderService) ConfirmOrders(ctx context.Context, confirmedBy uuid.UUID, items []service.ConfirmItem) []service.ConfirmResult {
	return m.confirmFn(ctx, confirmedBy, items)
}

func (m *mockOrderService) DeleteOrder(ctx context.Context, id uuid.UUID) (*database.Order, error) {
	return m.deleteFn(ctx, id)
}

// --- Mock OrderStore ---

type mockOrderStore struct {
	getOrderFn   func(ctx context.Context, id uuid.UUID) (database.Order, error)
	listOrdersFn func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	products     []database.ListOrderProductsByOrderRow
	ingredients  []database.ListOrderProductIngredientsByOrderRow
	menus        []database.ListOrderMenusByOrderRow
	menuFields   []database.ListOrderMenuFieldsByOrderRow
}

func (m *mockOrderStore) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	if m.getOrderFn != nil {
		return m.getOrderFn(ctx, id)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderStore) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	if m.listOrdersFn != nil {
		return m.listOrdersFn(ctx, arg)
	}
	return []database.Order{}, nil
}

func (m *mockOrderStore) ListOrderProductsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderProductsByOrderRow, error) {
	return m.products, nil
}

func (m *mockOrderStore) ListOrderProductIngredientsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderProductIngredientsByOrderRow, error) {
	return m.ingredients, nil
}

func (m *mockOrderStore) ListOrderMenusByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderMenusByOrderRow, error) {
	return m.menus, nil
}

func (m *mockOrderStore) ListOrderMenuFieldsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderMenuFieldsByOrderRow, error) {
	return m.menuFields, nil
}

// --- Test helpers ---

func setupOrderRouter(svc *mockOrderService, store *mockOrderStore) *chi.Mux {
	if store == nil {
		store = &mockOrderStore{}
	}
	h := handler.NewOrderHandler(svc, store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/orders", h.RegisterRoutes)
	return r
}

var allOrderPerms = auth.Permissions{CreateOrders: true, ConfirmOrders: true, ReviseOrders: true}

func testOrder(id uuid.UUID, price string) database.Order {
	return database.Order{
		ID:           id,
		CustomerName: "Anna",
		Guests:       pgtype.Int4{Int32: 2, Valid: true},
		TableNumber:  pgtype.Text{String: "12", Valid: true},
		Price:        testNumeric(price),
		UserID:       uuid.New(),
		CreatedAt:    time.Now(),
	}
}

// --- Create ---

func TestCreateOrder_Success(t *testing.T) {
	productID := uuid.New()
	menuID := uuid.New()
	fieldID := uuid.New()
	sideID := uuid.New()
	ingredientID := uuid.New()
	claims := testClaims(allOrderPerms)

	var got service.CreateOrderRequest
	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error) {
			got = req
			order := testOrder(uuid.New(), "17.50")
			return &service.OrderResult{
				Order: order,
				Products: []service.ProductLine{{
					Product: database.OrderProduct{ID: uuid.New(), OrderID: order.ID, ProductID: productID, Price: testNumeric("4.75"), Quantity: 2},
					Ingredients: []database.OrderProductIngredient{
						{ID: uuid.New(), ProductIngredientID: uuid.New(), Quantity: 1},
					},
				}},
				Menus: []service.MenuLine{{
					Menu: database.OrderMenu{ID: uuid.New(), OrderID: order.ID, MenuID: menuID, Price: testNumeric("8.00"), Quantity: 1},
					Fields: []service.FieldLine{{
						Field: database.OrderMenuField{ID: uuid.New(), MenuFieldID: fieldID},
					}},
				}},
			}, nil
		},
	}
	router := setupOrderRouter(svc, nil)

	body := map[string]interface{}{
		"customer_name": "Anna",
		"guests":        2,
		"table_number":  "12",
		"products": []map[string]interface{}{
			{"product_id": productID, "quantity": 2, "ingredient_ids": []uuid.UUID{ingredientID}, "notes": "no salt"},
		},
		"menus": []map[string]interface{}{
			{"menu_id": menuID, "quantity": 1, "fields": []map[string]interface{}{
				{"menu_field_id": fieldID, "products": []map[string]interface{}{{"product_id": sideID, "quantity": 1}}},
			}},
		},
	}
	rr := doAuthRequest(t, router, "POST", "/orders", body, claims)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if got.UserID != claims.UserID || got.RoleID != claims.RoleID {
		t.Errorf("expected claims to be forwarded, got user %s role %s", got.UserID, got.RoleID)
	}
	if got.Meta.CustomerName != "Anna" || got.Meta.Guests != 2 || got.Meta.TableNumber != "12" {
		t.Errorf("unexpected meta: %+v", got.Meta)
	}
	if len(got.Products) != 1 || got.Products[0].Notes != "no salt" || len(got.Products[0].IngredientIDs) != 1 {
		t.Errorf("unexpected products: %+v", got.Products)
	}
	if len(got.Menus) != 1 || len(got.Menus[0].Fields) != 1 || got.Menus[0].Fields[0].Products[0].ProductID != sideID {
		t.Errorf("unexpected menus: %+v", got.Menus)
	}

	resp := decodeMap(t, rr)
	if resp["price"] != "17.50" {
		t.Errorf("price: got %v, want 17.50", resp["price"])
	}
	products := resp["products"].([]interface{})
	if len(products) != 1 || products[0].(map[string]interface{})["price"] != "4.75" {
		t.Errorf("unexpected products in response: %v", products)
	}
	menus := resp["menus"].([]interface{})
	if len(menus) != 1 {
		t.Fatalf("expected 1 menu, got %d", len(menus))
	}
}

func TestCreateOrder_RequiresCapability(t *testing.T) {
	svc := &mockOrderService{
		createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	router := setupOrderRouter(svc, nil)

	rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{}, testClaims(auth.Permissions{ConfirmOrders: true}))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestCreateOrder_InvalidBody(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, nil)

	rr := doAuthRequest(t, router, "POST", "/orders", "{not json", testClaims(allOrderPerms))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateOrder_ErrorMapping(t *testing.T) {
	productID := uuid.New()
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"unavailable", &service.Error{Kind: service.KindConflict, Err: service.ErrProductUnavailable, Path: "products[0]", ProductID: productID}, http.StatusConflict, "conflict"},
		{"not allowed", &service.Error{Kind: service.KindUnauthorized, Err: service.ErrProductNotAllowed, Path: "products[0]", ProductID: productID}, http.StatusForbidden, "unauthorized"},
		{"not found", &service.Error{Kind: service.KindNotFound, Err: service.ErrProductNotFound, Path: "products[0]", ProductID: productID}, http.StatusNotFound, "not_found"},
		{"bad request", &service.Error{Kind: service.KindBadRequest, Err: service.ErrEmptyOrder}, http.StatusBadRequest, "bad_request"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{
				createFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error) {
					return nil, tt.err
				},
			}
			router := setupOrderRouter(svc, nil)

			rr := doAuthRequest(t, router, "POST", "/orders", map[string]interface{}{"guests": 1}, testClaims(allOrderPerms))
			if rr.Code != tt.status {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.status)
			}
			resp := decodeMap(t, rr)
			if resp["kind"] != tt.kind {
				t.Errorf("kind: got %v, want %s", resp["kind"], tt.kind)
			}
			if tt.status == http.StatusInternalServerError {
				if resp["error"] != "internal server error" {
					t.Errorf("internal details leaked: %v", resp["error"])
				}
				return
			}
			if se := tt.err.(*service.Error); se.ProductID != uuid.Nil {
				if resp["product_id"] != productID.String() || resp["path"] != "products[0]" {
					t.Errorf("expected offending product in body, got %v", resp)
				}
			}
		})
	}
}

// --- List / Get ---

func TestListOrders_Pagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int32
		wantOffset int32
		wantDone   pgtype.Bool
	}{
		{"defaults", "", 20, 0, pgtype.Bool{}},
		{"capped", "?limit=500&offset=40", 100, 40, pgtype.Bool{}},
		{"done filter", "?done=false", 20, 0, pgtype.Bool{Bool: false, Valid: true}},
		{"huge offset", "?offset=4294967296", 20, math.MaxInt32, pgtype.Bool{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got database.ListOrdersParams
			store := &mockOrderStore{
				listOrdersFn: func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
					got = arg
					return []database.Order{testOrder(uuid.New(), "3.00")}, nil
				},
			}
			router := setupOrderRouter(&mockOrderService{}, store)

			rr := doAuthRequest(t, router, "GET", "/orders"+tt.query, nil, testClaims(auth.Permissions{}))
			if rr.Code != http.StatusOK {
				t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
			}
			if got.Limit != tt.wantLimit || got.Offset != tt.wantOffset || got.IsDone != tt.wantDone {
				t.Errorf("params: got %+v", got)
			}
			resp := decodeMap(t, rr)
			if len(resp["orders"].([]interface{})) != 1 {
				t.Errorf("expected one order, got %v", resp["orders"])
			}
		})
	}
}

func TestListOrders_InvalidDoneFilter(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, nil)

	rr := doAuthRequest(t, router, "GET", "/orders?done=maybe", nil, testClaims(auth.Permissions{}))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, nil)

	rr := doAuthRequest(t, router, "GET", "/orders/"+uuid.New().String(), nil, testClaims(auth.Permissions{}))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestGetOrder_NestedDetail(t *testing.T) {
	orderID := uuid.New()
	standaloneID := uuid.New()
	menuLineID := uuid.New()
	fieldLineID := uuid.New()
	store := &mockOrderStore{
		getOrderFn: func(ctx context.Context, id uuid.UUID) (database.Order, error) {
			return testOrder(id, "12.50"), nil
		},
		products: []database.ListOrderProductsByOrderRow{
			{ID: standaloneID, OrderID: orderID, ProductID: uuid.New(), Price: testNumeric("4.50"), Quantity: 1, ProductName: "Soup"},
			{ID: uuid.New(), OrderID: orderID, ProductID: uuid.New(), OrderMenuFieldID: pgtype.UUID{Bytes: fieldLineID, Valid: true}, Price: testNumeric("0.00"), Quantity: 1, ProductName: "Fries"},
		},
		ingredients: []database.ListOrderProductIngredientsByOrderRow{
			{ID: uuid.New(), OrderProductID: standaloneID, ProductIngredientID: uuid.New(), IngredientID: uuid.New(), IngredientName: "Cheese", Quantity: 2},
		},
		menus: []database.ListOrderMenusByOrderRow{
			{ID: menuLineID, OrderID: orderID, MenuID: uuid.New(), Price: testNumeric("8.00"), Quantity: 1, MenuName: "Burger menu"},
		},
		menuFields: []database.ListOrderMenuFieldsByOrderRow{
			{ID: fieldLineID, OrderMenuID: menuLineID, MenuFieldID: uuid.New(), FieldName: "Side"},
		},
	}
	router := setupOrderRouter(&mockOrderService{}, store)

	rr := doAuthRequest(t, router, "GET", "/orders/"+orderID.String(), nil, testClaims(auth.Permissions{}))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeMap(t, rr)
	products := resp["products"].([]interface{})
	if len(products) != 1 {
		t.Fatalf("expected only the standalone product at top level, got %d", len(products))
	}
	soup := products[0].(map[string]interface{})
	if soup["product_name"] != "Soup" {
		t.Errorf("product_name: got %v", soup["product_name"])
	}
	ingredients := soup["ingredients"].([]interface{})
	if len(ingredients) != 1 || ingredients[0].(map[string]interface{})["name"] != "Cheese" {
		t.Errorf("unexpected ingredients: %v", ingredients)
	}

	menus := resp["menus"].([]interface{})
	fields := menus[0].(map[string]interface{})["fields"].([]interface{})
	field := fields[0].(map[string]interface{})
	if field["name"] != "Side" {
		t.Errorf("field name: got %v", field["name"])
	}
	fieldProducts := field["products"].([]interface{})
	if len(fieldProducts) != 1 || fieldProducts[0].(map[string]interface{})["product_name"] != "Fries" {
		t.Errorf("unexpected field products: %v", fieldProducts)
	}
}

// --- Revise ---

func TestReviseOrder_ForwardsEdits(t *testing.T) {
	orderID := uuid.New()
	lineID := uuid.New()
	newProduct := uuid.New()
	claims := testClaims(allOrderPerms)

	var got service.ReviseOrderRequest
	svc := &mockOrderService{
		reviseFn: func(ctx context.Context, req service.ReviseOrderRequest) (*service.ReviseResult, error) {
			got = req
			return &service.ReviseResult{
				Order:    testOrder(req.OrderID, "14.50"),
				Revision: database.Revision{ID: uuid.New(), OrderID: req.OrderID, PriceDifference: testNumeric("4.50"), EditedProducts: 2, CreatedAt: time.Now()},
			}, nil
		},
	}
	router := setupOrderRouter(svc, nil)

	body := map[string]interface{}{
		"guests":       3,
		"table_number": "12",
		"products": []map[string]interface{}{
			{"id": lineID, "edited": true, "quantity": 3},
			{"edited": true, "quantity": 1, "product_id": newProduct},
		},
	}
	rr := doAuthRequest(t, router, "PUT", "/orders/"+orderID.String(), body, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	if got.OrderID != orderID || got.UserID != claims.UserID || got.Meta.Guests != 3 {
		t.Errorf("unexpected request: %+v", got)
	}
	if len(got.Products) != 2 {
		t.Fatalf("expected 2 edits, got %d", len(got.Products))
	}
	if got.Products[0].ID == nil || *got.Products[0].ID != lineID || got.Products[0].Quantity != 3 {
		t.Errorf("unexpected existing line edit: %+v", got.Products[0])
	}
	if got.Products[1].ID != nil || got.Products[1].Pick.ProductID != newProduct || got.Products[1].Pick.Quantity != 1 {
		t.Errorf("unexpected new line: %+v", got.Products[1])
	}

	resp := decodeMap(t, rr)
	revision := resp["revision"].(map[string]interface{})
	if revision["price_difference"] != "4.50" {
		t.Errorf("price_difference: got %v", revision["price_difference"])
	}
}

func TestReviseOrder_RequiresCapability(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, nil)

	rr := doAuthRequest(t, router, "PUT", "/orders/"+uuid.New().String(), map[string]interface{}{}, testClaims(auth.Permissions{CreateOrders: true}))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestReviseOrder_LineNotFound(t *testing.T) {
	svc := &mockOrderService{
		reviseFn: func(ctx context.Context, req service.ReviseOrderRequest) (*service.ReviseResult, error) {
			return nil, &service.Error{Kind: service.KindNotFound, Err: service.ErrOrderLineNotFound, Path: "products[0]"}
		},
	}
	router := setupOrderRouter(svc, nil)

	rr := doAuthRequest(t, router, "PUT", "/orders/"+uuid.New().String(), map[string]interface{}{"guests": 1}, testClaims(allOrderPerms))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- Confirm ---

func TestConfirmOrders_PerItemResults(t *testing.T) {
	okID := uuid.New()
	failedID := uuid.New()
	claims := testClaims(allOrderPerms)

	var confirmedBy uuid.UUID
	var items []service.ConfirmItem
	svc := &mockOrderService{
		confirmFn: func(ctx context.Context, by uuid.UUID, in []service.ConfirmItem) []service.ConfirmResult {
			confirmedBy = by
			items = in
			order := testOrder(okID, "9.00")
			order.IsConfirmed = true
			return []service.ConfirmResult{
				{OrderID: okID, Order: &order},
				{OrderID: failedID, Err: &service.Error{Kind: service.KindBadRequest, Err: service.ErrTableRequired}},
			}
		},
	}
	router := setupOrderRouter(svc, nil)

	body := []map[string]interface{}{
		{"order_id": okID, "table_number": "4"},
		{"order_id": failedID},
	}
	rr := doAuthRequest(t, router, "POST", "/orders/confirm", body, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if confirmedBy != claims.UserID {
		t.Errorf("expected confirmer to be the caller")
	}
	if len(items) != 2 || items[0].TableNumber != "4" {
		t.Errorf("unexpected items: %+v", items)
	}

	resp := decodeSlice(t, rr)
	if len(resp) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp))
	}
	if resp[0]["ok"] != true || resp[0]["order"] == nil {
		t.Errorf("expected first item confirmed, got %v", resp[0])
	}
	if resp[1]["ok"] != false {
		t.Errorf("expected second item to fail, got %v", resp[1])
	}
	errBody := resp[1]["error"].(map[string]interface{})
	if errBody["kind"] != "bad_request" || errBody["error"] != service.ErrTableRequired.Error() {
		t.Errorf("unexpected error body: %v", errBody)
	}
}

func TestConfirmOrders_EmptyBatch(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, nil)

	rr := doAuthRequest(t, router, "POST", "/orders/confirm", []map[string]interface{}{}, testClaims(allOrderPerms))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestConfirmOrders_RequiresCapability(t *testing.T) {
	router := setupOrderRouter(&mockOrderService{}, nil)

	body := []map[string]interface{}{{"order_id": uuid.New()}}
	rr := doAuthRequest(t, router, "POST", "/orders/confirm", body, testClaims(auth.Permissions{CreateOrders: true}))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

// --- Delete ---

func TestDeleteOrder(t *testing.T) {
	existing := uuid.New()
	svc := &mockOrderService{
		deleteFn: func(ctx context.Context, id uuid.UUID) (*database.Order, error) {
			if id != existing {
				return nil, &service.Error{Kind: service.KindNotFound, Err: service.ErrOrderNotFound}
			}
			order := testOrder(id, "0.00")
			order.IsDeleted = true
			return &order, nil
		},
	}
	router := setupOrderRouter(svc, nil)
	claims := testClaims(allOrderPerms)

	rr := doAuthRequest(t, router, "DELETE", "/orders/"+existing.String(), nil, claims)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}

	rr = doAuthRequest(t, router, "DELETE", "/orders/"+uuid.New().String(), nil, claims)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}

	rr = doAuthRequest(t, router, "DELETE", "/orders/not-a-uuid", nil, claims)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
