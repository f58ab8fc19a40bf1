package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chiringuito/internal/domain"
	menusvc "chiringuito/internal/service/menu"
	ordersvc "chiringuito/internal/service/order"
	"chiringuito/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubMenuService struct {
	items []menusvc.Item
	err   error
}

func (s *stubMenuService) List(_ context.Context) ([]menusvc.Item, error) {
	return s.items, s.err
}

type stubOrderService struct {
	summary   *ordersvc.Summary
	hasCart   bool
	err       error
	lastID    uuid.UUID
	lastQty   int
	lastScope string
}

func (s *stubOrderService) record(sess ordersvc.Session, id uuid.UUID, qty int) {
	s.lastID = id
	s.lastQty = qty
	if scope, ok := sess.(*session.Scope); ok {
		s.lastScope = scope.ID()
	}
}

func (s *stubOrderService) AddItem(_ context.Context, sess ordersvc.Session, id uuid.UUID, qty int) (*ordersvc.Summary, error) {
	s.record(sess, id, qty)
	return s.summary, s.err
}

func (s *stubOrderService) GetCart(_ context.Context, sess ordersvc.Session) (*ordersvc.Summary, bool, error) {
	s.record(sess, uuid.Nil, 0)
	return s.summary, s.hasCart, s.err
}

func (s *stubOrderService) UpdateQuantity(_ context.Context, sess ordersvc.Session, id uuid.UUID, qty int) (*ordersvc.Summary, error) {
	s.record(sess, id, qty)
	return s.summary, s.err
}

func (s *stubOrderService) RemoveItem(_ context.Context, sess ordersvc.Session, id uuid.UUID) error {
	s.record(sess, id, 0)
	return s.err
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func sampleSummary() *ordersvc.Summary {
	return &ordersvc.Summary{
		OrderID:     uuid.MustParse("7d3c2a1e-0000-4000-8000-000000000001"),
		Status:      domain.OrderStatusPending,
		TotalAmount: decimal.RequireFromString("37.5"),
		ItemCount:   3,
		Lines: []ordersvc.SummaryLine{{
			OrderLineID:  uuid.MustParse("7d3c2a1e-0000-4000-8000-000000000002"),
			MenuItemID:   uuid.MustParse("7d3c2a1e-0000-4000-8000-000000000003"),
			MenuItemName: "Paella",
			Quantity:     3,
			UnitPrice:    decimal.RequireFromString("12.5"),
			LineTotal:    decimal.RequireFromString("37.5"),
		}},
	}
}

func testRouter(t *testing.T, menu *stubMenuService, orders *stubOrderService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(nil, Deps{
		DB:       stubPinger{},
		Sessions: session.NewMemoryStore(time.Hour),
		MenuSvc:  menu,
		OrderSvc: orders,
		Session:  SessionOptions{CookieName: "CHIRINGUITO_SESSION", TTL: time.Hour},
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func doRequest(router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListMenu_MoneyAsNumber(t *testing.T) {
	menu := &stubMenuService{items: []menusvc.Item{{
		ID:        uuid.MustParse("7d3c2a1e-0000-4000-8000-000000000003"),
		Name:      "Paella",
		Price:     decimal.RequireFromString("12.5"),
		ImageURL:  "https://img/paella.jpg",
		Available: true,
	}}}
	rec := doRequest(testRouter(t, menu, &stubOrderService{}), http.MethodGet, "/api/menu", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"price":12.50`) || !strings.Contains(body, `"imageUrl":"https://img/paella.jpg"`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestListMenu_Error(t *testing.T) {
	rec := doRequest(testRouter(t, &stubMenuService{err: errors.New("boom")}, &stubOrderService{}), http.MethodGet, "/api/menu", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"message":"Internal server error"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAddItem_SummaryAndCookie(t *testing.T) {
	orders := &stubOrderService{summary: sampleSummary()}
	router := testRouter(t, &stubMenuService{}, orders)

	body := `{"menuItemId":"7d3c2a1e-0000-4000-8000-000000000003","quantity":3}`
	rec := doRequest(router, http.MethodPost, "/api/order/add-item", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	for _, want := range []string{
		`"orderId":"7d3c2a1e-0000-4000-8000-000000000001"`,
		`"totalAmount":37.50`,
		`"itemCount":3`,
		`"orderLineId":"7d3c2a1e-0000-4000-8000-000000000002"`,
		`"menuItemName":"Paella"`,
		`"unitPrice":12.50`,
		`"lineTotal":37.50`,
	} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Fatalf("body missing %s: %s", want, rec.Body.String())
		}
	}
	if orders.lastQty != 3 || orders.lastID.String() != "7d3c2a1e-0000-4000-8000-000000000003" {
		t.Fatalf("unexpected call id=%s qty=%d", orders.lastID, orders.lastQty)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "CHIRINGUITO_SESSION" || !cookies[0].HttpOnly {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}
	if orders.lastScope != cookies[0].Value {
		t.Fatalf("scope %q does not match cookie %q", orders.lastScope, cookies[0].Value)
	}
}

func TestSessionCookie_Reused(t *testing.T) {
	orders := &stubOrderService{}
	router := testRouter(t, &stubMenuService{}, orders)

	rec := doRequest(router, http.MethodGet, "/api/order/cart", "", &http.Cookie{Name: "CHIRINGUITO_SESSION", Value: "existing-sid"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if orders.lastScope != "existing-sid" {
		t.Fatalf("expected existing session, got %q", orders.lastScope)
	}
}

func TestAddItem_Validation(t *testing.T) {
	router := testRouter(t, &stubMenuService{}, &stubOrderService{})
	cases := []struct {
		body string
		msg  string
	}{
		{`{"quantity":1}`, "Menu item ID is required"},
		{`{"menuItemId":"nope","quantity":1}`, "Menu item ID must be a valid UUID"},
		{`{"menuItemId":"7d3c2a1e-0000-4000-8000-000000000003"}`, "Quantity is required"},
		{`{"menuItemId":`, "Malformed request body"},
	}
	for _, tc := range cases {
		rec := doRequest(router, http.MethodPost, "/api/order/add-item", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", tc.body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tc.msg) {
			t.Fatalf("body %s: expected %q, got %s", tc.body, tc.msg, rec.Body.String())
		}
	}
}

func TestAddItem_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.Errorf(domain.ErrNotFound, "Menu item not found with id: x"), http.StatusNotFound},
		{domain.Errorf(domain.ErrUnavailable, "Menu item is not available: Pulpo"), http.StatusConflict},
		{domain.Errorf(domain.ErrInvalidArgument, "Quantity must be between 1 and 50"), http.StatusBadRequest},
		{domain.Errorf(domain.ErrLimitExceeded, "Cannot exceed maximum of 50 items in cart"), http.StatusBadRequest},
		{domain.Errorf(domain.ErrInvalidState, "No active order in session"), http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		router := testRouter(t, &stubMenuService{}, &stubOrderService{err: tc.err})
		body := `{"menuItemId":"7d3c2a1e-0000-4000-8000-000000000003","quantity":1}`
		rec := doRequest(router, http.MethodPost, "/api/order/add-item", body)
		if rec.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
		if tc.status != http.StatusInternalServerError && !strings.Contains(rec.Body.String(), tc.err.Error()) {
			t.Fatalf("expected message %q, got %s", tc.err.Error(), rec.Body.String())
		}
	}
}

func TestGetCart_EmptyBodyWithoutCart(t *testing.T) {
	rec := doRequest(testRouter(t, &stubMenuService{}, &stubOrderService{}), http.MethodGet, "/api/order/cart", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %s", rec.Body.String())
	}
}

func TestGetCart_Summary(t *testing.T) {
	orders := &stubOrderService{summary: sampleSummary(), hasCart: true}
	rec := doRequest(testRouter(t, &stubMenuService{}, orders), http.MethodGet, "/api/order/cart", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"PENDING"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateQuantity_PassesQuantity(t *testing.T) {
	orders := &stubOrderService{summary: sampleSummary()}
	body := `{"menuItemId":"7d3c2a1e-0000-4000-8000-000000000003","quantity":5}`
	rec := doRequest(testRouter(t, &stubMenuService{}, orders), http.MethodPut, "/api/order/update-quantity", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if orders.lastQty != 5 {
		t.Fatalf("expected quantity 5, got %d", orders.lastQty)
	}
}

func TestRemoveItem(t *testing.T) {
	orders := &stubOrderService{}
	router := testRouter(t, &stubMenuService{}, orders)

	rec := doRequest(router, http.MethodDelete, "/api/order/remove-item/7d3c2a1e-0000-4000-8000-000000000003", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doRequest(router, http.MethodDelete, "/api/order/remove-item/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	orders.err = domain.Errorf(domain.ErrInvalidArgument, "Item not found in cart")
	rec = doRequest(router, http.MethodDelete, "/api/order/remove-item/7d3c2a1e-0000-4000-8000-000000000003", "")
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Item not found in cart") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	build := func(db pinger) http.Handler {
		router, err := buildRouter(nil, Deps{
			DB:       db,
			Sessions: session.NewMemoryStore(time.Hour),
			MenuSvc:  &stubMenuService{},
			OrderSvc: &stubOrderService{},
		})
		if err != nil {
			t.Fatalf("build router: %v", err)
		}
		return router
	}

	if rec := doRequest(build(stubPinger{}), http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := doRequest(build(stubPinger{err: errors.New("down")}), http.MethodGet, "/readyz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec := doRequest(build(stubPinger{}), http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCORS_AllowsConfiguredOriginWithCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(nil, Deps{
		Sessions:           session.NewMemoryStore(time.Hour),
		MenuSvc:            &stubMenuService{},
		OrderSvc:           &stubOrderService{},
		CORSAllowedOrigins: []string{"http://localhost:5173"},
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("expected credentials allowed")
	}
}

func TestBuildRouter_RequiresDeps(t *testing.T) {
	if _, err := buildRouter(nil, Deps{}); err == nil {
		t.Fatalf("expected error without deps")
	}
}

type touchRecorder struct {
	*session.MemoryStore
	touched []string
}

func (t *touchRecorder) Touch(ctx context.Context, sid string) error {
	t.touched = append(t.touched, sid)
	return t.MemoryStore.Touch(ctx, sid)
}

func TestSessionMiddleware_TouchesKnownSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &touchRecorder{MemoryStore: session.NewMemoryStore(time.Hour)}
	router, err := buildRouter(nil, Deps{
		Sessions: store,
		MenuSvc:  &stubMenuService{},
		OrderSvc: &stubOrderService{},
		Session:  SessionOptions{CookieName: "CHIRINGUITO_SESSION", TTL: time.Hour},
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	doRequest(router, http.MethodGet, "/api/order/cart", "")
	if len(store.touched) != 0 {
		t.Fatalf("new session should not be touched, got %v", store.touched)
	}

	doRequest(router, http.MethodGet, "/api/order/cart", "", &http.Cookie{Name: "CHIRINGUITO_SESSION", Value: "existing-sid"})
	if len(store.touched) != 1 || store.touched[0] != "existing-sid" {
		t.Fatalf("expected existing-sid touched, got %v", store.touched)
	}
}

func TestSessionCookie_Attributes(t *testing.T) {
	rec := doRequest(testRouter(t, &stubMenuService{}, &stubOrderService{}), http.MethodGet, "/api/order/cart", "")
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %+v", cookies)
	}
	c := cookies[0]
	if c.SameSite != http.SameSiteLaxMode || !c.HttpOnly || c.Path != "/" || c.MaxAge != 3600 {
		t.Fatalf("unexpected cookie attributes %+v", c)
	}
}
