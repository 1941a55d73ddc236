package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"storefront/internal/checkout"
	"storefront/internal/checkout/mocks"
	"storefront/internal/logging"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/razorpay"
	"storefront/internal/store"
)

const testSecret = "test_secret"

type testEnv struct {
	router *gin.Engine
	store  *store.Memory
}

type envOptions struct {
	gateway       checkout.PaymentGateway
	payments      bool
	adminSecret   string
	exposeDetails bool
	store         store.Store
}

func newEnv(t *testing.T, opts envOptions) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	var st store.Store = mem
	if opts.store != nil {
		st = opts.store
	}

	cfg := checkout.Config{}
	if opts.payments {
		cfg = checkout.Config{KeyID: "rzp_test_key", KeySecret: testSecret}
	}
	svc := checkout.NewService(st, opts.gateway, cfg, logging.Discard())

	r := NewRouter(RouterDeps{
		Store:         st,
		Orders:        svc,
		Logger:        logging.Discard(),
		AdminSecret:   opts.adminSecret,
		ExposeDetails: opts.exposeDetails,
	})
	return testEnv{router: r, store: mem}
}

func (e testEnv) do(t *testing.T, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func orderPayload() gin.H {
	return gin.H{"order": gin.H{
		"customer_name":    "Asha Rao",
		"customer_email":   "asha@example.com",
		"customer_phone":   "9876543210",
		"shipping_address": "12 MG Road, Bengaluru",
		"items": []gin.H{
			{"product_id": "p1", "title": "Oud Noir", "size_ml": 100, "price": 750, "quantity": 2},
		},
		"subtotal":     1500,
		"shipping_fee": 50,
		"total_amount": 1550,
		"currency":     "INR",
	}}
}

func TestRootAndDiagnostics(t *testing.T) {
	env := newEnv(t, envOptions{})
	_, err := env.store.Insert(context.Background(), models.ProductCollection, models.Product{Title: "x"})
	require.NoError(t, err)

	w, body := env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "perfume-store-api", body["service"])

	w, body = env.do(t, http.MethodGet, "/test", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "connected", body["database"])
	assert.Equal(t, "memory", body["database_name"])
	assert.Equal(t, []any{"product"}, body["collections"])
}

func TestProducts(t *testing.T) {
	env := newEnv(t, envOptions{})

	w, body := env.do(t, http.MethodPost, "/api/products", gin.H{
		"title":     "Oud Noir",
		"brand":     "Maison",
		"price":     2499.5,
		"notes_top": "bergamot, pink pepper",
		"images":    []string{"https://cdn.example.com/oud.jpg"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id, _ := body["_id"].(string)
	assert.Len(t, id, 24)

	w, body = env.do(t, http.MethodPost, "/api/products", gin.H{"title": "No price"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"price is required"}, body["details"])

	w, _ = env.do(t, http.MethodPost, "/api/products", gin.H{"title": "Bad", "price": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/products?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, []int{50, 100}, products[0].SizesML)
	assert.Equal(t, models.StringList{"bergamot", "pink pepper"}, products[0].NotesTop)
	assert.True(t, products[0].InStock)

	w, _ = env.do(t, http.MethodGet, "/api/products?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListProductsEmptyIsArray(t *testing.T) {
	env := newEnv(t, envOptions{})
	w, _ := env.do(t, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestCreateOrderNotConfigured(t *testing.T) {
	env := newEnv(t, envOptions{})

	w, body := env.do(t, http.MethodPost, "/api/orders", orderPayload())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "not_configured", body["razorpay"])
	assert.NotEmpty(t, body["order_id"])
	assert.Equal(t, 1, env.store.Count(models.OrderCollection))
}

func TestCreateOrderValidation(t *testing.T) {
	env := newEnv(t, envOptions{})

	w, body := env.do(t, http.MethodPost, "/api/orders", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"order is required"}, body["details"])

	p := orderPayload()
	p["order"].(gin.H)["items"] = []gin.H{{"product_id": "p1", "title": "Oud", "size_ml": 50, "price": 10, "quantity": 0}}
	w, body = env.do(t, http.MethodPost, "/api/orders", p)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"order.items[0].quantity is required"}, body["details"])

	p = orderPayload()
	p["order"].(gin.H)["total_amount"] = 999
	w, body = env.do(t, http.MethodPost, "/api/orders", p)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation failed", body["error"])

	p = orderPayload()
	p["order"].(gin.H)["customer_email"] = "asha-at-example"
	w, body = env.do(t, http.MethodPost, "/api/orders", p)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"order.customer_email is invalid"}, body["details"])

	p = orderPayload()
	p["order"].(gin.H)["currency"] = "USD"
	w, _ = env.do(t, http.MethodPost, "/api/orders", p)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/orders", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, env.store.Count(models.OrderCollection))
}

func TestCreateOrderGatewayFailure(t *testing.T) {
	for _, expose := range []bool{false, true} {
		ctrl := gomock.NewController(t)
		gw := mocks.NewMockPaymentGateway(ctrl)
		gw.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
			Return(razorpay.Order{}, &razorpay.APIError{StatusCode: 401, Body: "Authentication failed"})

		env := newEnv(t, envOptions{gateway: gw, payments: true, exposeDetails: expose})
		w, body := env.do(t, http.MethodPost, "/api/orders", orderPayload())
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "payment gateway error", body["error"])
		if expose {
			assert.Equal(t, "Authentication failed", body["details"])
		} else {
			assert.NotContains(t, w.Body.String(), "Authentication failed")
		}
		assert.Equal(t, 0, env.store.Count(models.OrderCollection))
	}
}

func TestCheckoutFlow(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockPaymentGateway(ctrl)
	gw.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req razorpay.CreateOrderRequest) (razorpay.Order, error) {
			return razorpay.Order{ID: "order_ABC123", Amount: req.Amount, Currency: req.Currency}, nil
		})

	env := newEnv(t, envOptions{gateway: gw, payments: true})

	w, body := env.do(t, http.MethodPost, "/api/orders", orderPayload())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "order_ABC123", body["razorpay_order_id"])
	assert.EqualValues(t, 155000, body["amount"])
	assert.Equal(t, "rzp_test_key", body["key_id"])
	assert.Equal(t, "INR", body["currency"])
	orderID := body["order_id"].(string)

	w, body = env.do(t, http.MethodPost, "/api/orders/verify", gin.H{
		"razorpay_order_id":   "order_ABC123",
		"razorpay_payment_id": "pay_XYZ789",
		"razorpay_signature":  "deadbeef",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid signature", body["error"])

	verify := gin.H{
		"razorpay_order_id":   "order_ABC123",
		"razorpay_payment_id": "pay_XYZ789",
		"razorpay_signature":  checkout.ExpectedSignature(testSecret, "order_ABC123", "pay_XYZ789"),
	}
	for i := 0; i < 2; i++ {
		w, body = env.do(t, http.MethodPost, "/api/orders/verify", verify)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "success", body["status"])
	}

	w, body = env.do(t, http.MethodGet, "/api/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "paid", body["status"])
	assert.Equal(t, "pay_XYZ789", body["razorpay_payment_id"])
}

func TestVerifyPaymentEdgeCases(t *testing.T) {
	env := newEnv(t, envOptions{})
	w, body := env.do(t, http.MethodPost, "/api/orders/verify", gin.H{
		"razorpay_order_id":   "order_ABC123",
		"razorpay_payment_id": "pay_XYZ789",
		"razorpay_signature":  "whatever",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "skipped", body["status"])
	assert.Equal(t, "Razorpay not configured", body["reason"])

	env = newEnv(t, envOptions{payments: true, gateway: mocks.NewMockPaymentGateway(gomock.NewController(t))})
	w, _ = env.do(t, http.MethodPost, "/api/orders/verify", gin.H{
		"razorpay_order_id":   "order_UNKNOWN",
		"razorpay_payment_id": "pay_XYZ789",
		"razorpay_signature":  checkout.ExpectedSignature(testSecret, "order_UNKNOWN", "pay_XYZ789"),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = env.do(t, http.MethodPost, "/api/orders/verify", gin.H{"razorpay_order_id": "order_ABC123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["details"], "razorpay_payment_id is required")
}

func TestOrderAdminEndpoints(t *testing.T) {
	env := newEnv(t, envOptions{})
	_, body := env.do(t, http.MethodPost, "/api/orders", orderPayload())
	orderID := body["order_id"].(string)
	env.do(t, http.MethodPost, "/api/orders", orderPayload())

	w, body := env.do(t, http.MethodPatch, "/api/orders/"+orderID+"/status", gin.H{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "updated", body["status"])

	w, _ = env.do(t, http.MethodPatch, "/api/orders/"+orderID+"/status", gin.H{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPatch, "/api/orders/65f000000000000000000001/status", gin.H{"status": "paid"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/orders/not-hex", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/orders?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusShipped, orders[0].Status)
}

func TestShipments(t *testing.T) {
	env := newEnv(t, envOptions{})
	_, body := env.do(t, http.MethodPost, "/api/orders", orderPayload())
	orderID := body["order_id"].(string)

	w, body := env.do(t, http.MethodPost, "/api/shipments", gin.H{
		"order_id":    orderID,
		"provider":    "delhivery",
		"tracking_id": "DLV123",
		"meta":        gin.H{"awb": "123"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, body["shipment_id"])

	w, _ = env.do(t, http.MethodPost, "/api/shipments", gin.H{"order_id": orderID})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/shipments", gin.H{"order_id": orderID, "provider": "fedex"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/shipments", gin.H{"order_id": "65f000000000000000000001"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/shipments", gin.H{"order_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/shipments?order_id="+orderID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var shipments []models.Shipment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shipments))
	require.Len(t, shipments, 2)
	assert.Equal(t, models.ProviderDelhivery, shipments[0].Provider)
	assert.Equal(t, models.ShipmentStatusCreated, shipments[0].Status)
	assert.Equal(t, models.ProviderOther, shipments[1].Provider)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newEnv(t, envOptions{adminSecret: "admin-secret"})

	w, _ := env.do(t, http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = env.do(t, http.MethodPost, "/api/products", gin.H{"title": "x", "price": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// storefront routes stay public
	w, _ = env.do(t, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = env.do(t, http.MethodPost, "/api/orders", orderPayload())
	assert.Equal(t, http.StatusOK, w.Code)

	token, err := middleware.IssueAdminToken("admin-secret", "ops", time.Hour)
	require.NoError(t, err)
	w, _ = env.do(t, http.MethodGet, "/api/orders", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

type downStore struct{ store.Store }

func (downStore) Ping(context.Context) error { return errors.New("server selection timeout") }

func (downStore) Insert(context.Context, string, any) (string, error) {
	return "", errors.New("server selection timeout")
}

func TestStoreUnavailable(t *testing.T) {
	env := newEnv(t, envOptions{store: downStore{store.NewMemory()}})

	w, _ := env.do(t, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, body := env.do(t, http.MethodPost, "/api/orders", orderPayload())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "storage error", body["error"])
	assert.Nil(t, body["details"])

	w, body = env.do(t, http.MethodGet, "/test", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body["database"], "server selection timeout")
}

func TestParseLimit(t *testing.T) {
	l, err := parseLimit("", 50)
	require.NoError(t, err)
	assert.EqualValues(t, 50, l)

	l, err = parseLimit("5000", 50)
	require.NoError(t, err)
	assert.EqualValues(t, maxListLimit, l)

	for _, bad := range []string{"0", "-3", "ten"} {
		_, err := parseLimit(bad, 50)
		assert.ErrorIs(t, err, errInvalidLimit, bad)
	}
}

func TestUsers(t *testing.T) {
	env := newEnv(t, envOptions{})

	w, body := env.do(t, http.MethodPost, "/api/users", gin.H{"name": "Asha Rao", "email": "Asha@Example.com", "phone": "98765"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, body["_id"])

	w, _ = env.do(t, http.MethodPost, "/api/users", gin.H{"name": "Asha again", "email": "asha@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = env.do(t, http.MethodPost, "/api/users", gin.H{"name": "No mail", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"email is invalid"}, body["details"])

	w, _ = env.do(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "asha@example.com", users[0].Email)
	assert.True(t, users[0].IsActive)
}

func TestTruncateKeepsRunes(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 80))
	assert.Equal(t, "ab", truncate("abc", 2))

	got := truncate("connexion refusée: héros", 17)
	assert.Equal(t, "connexion refusée", got)
	assert.True(t, utf8.ValidString(truncate("ééé", 2)))
	assert.Equal(t, "éé", truncate("ééé", 2))
}
