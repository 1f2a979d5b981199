package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon-server/cart"
	"salon-server/config"
	"salon-server/database"
	"salon-server/media"
	"salon-server/services"
	"salon-server/store"
	"salon-server/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	api    *API
	router *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	prev := config.AppConfig
	config.AppConfig = &config.Config{JWT: config.JWTConfig{Secret: "routes-secret", ExpiryHours: 1, RefreshDays: 1}}
	t.Cleanup(func() { config.AppConfig = prev })

	db := database.OpenTest(t)
	hub := websocket.NewHub(64, 64)
	t.Cleanup(hub.Close)

	workflow := services.NewWorkflow(store.New(db), hub)
	api := &API{
		DB:       db,
		Workflow: workflow,
		Views:    services.NewViews(workflow.Store(), time.Now),
		Checkout: services.NewCheckout(workflow),
		Auth:     services.NewAuthService(db),
		Carts:    cart.NewStore(time.Hour),
		Hub:      hub,
		Uploader: media.NewLocalUploader(t.TempDir(), "/uploads"),
	}

	router := gin.New()
	api.Register(router)

	ctx := context.Background()
	_, _, err := api.Auth.EnsureAdmin(ctx, "admin@salon.test", "hunter22", "Admin")
	require.NoError(t, err)
	pair, _, err := api.Auth.Login(ctx, "admin@salon.test", "hunter22", "test", "127.0.0.1")
	require.NoError(t, err)

	return &testServer{t: t, api: api, router: router, token: pair.AccessToken}
}

type response struct {
	Code    int
	Header  http.Header
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   int64           `json:"total"`
}

func (s *testServer) do(method, path string, body any, header http.Header) *response {
	s.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	res := &response{Code: w.Code, Header: w.Header()}
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), res), w.Body.String())
	}
	return res
}

func (s *testServer) admin(method, path string, body any) *response {
	return s.do(method, path, body, http.Header{"Authorization": {"Bearer " + s.token}})
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type entityJSON struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	ServiceName  string  `json:"service_name"`
	ServicePrice float64 `json:"service_price"`
	TotalAmount  float64 `json:"total_amount"`
	ImageURL     string  `json:"image_url"`
	Items        []struct {
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	} `json:"items"`
}

func (s *testServer) createService(name string, price float64) entityJSON {
	res := s.admin(http.MethodPost, "/api/admin/services", gin.H{"name": name, "price": price})
	require.Equal(s.t, http.StatusCreated, res.Code, res.Message)
	return decode[entityJSON](s.t, res.Data)
}

func (s *testServer) createProduct(name string, price float64) entityJSON {
	res := s.admin(http.MethodPost, "/api/admin/products", gin.H{"name": name, "price": price})
	require.Equal(s.t, http.StatusCreated, res.Code, res.Message)
	return decode[entityJSON](s.t, res.Data)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestAdminRequiresToken(t *testing.T) {
	s := newTestServer(t)
	res := s.do(http.MethodGet, "/api/admin/bookings", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "unauthorized", res.Error)

	res = s.do(http.MethodGet, "/api/admin/bookings", nil, http.Header{"Authorization": {"Bearer nope"}})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestBookingLifecycle(t *testing.T) {
	s := newTestServer(t)
	svc := s.createService("Hair Spa", 1200)

	res := s.do(http.MethodPost, "/api/bookings", gin.H{
		"customer_name": "Asha",
		"phone":         "9876543210",
		"service_id":    svc.ID,
		"service_price": 1,
		"date":          "2026-10-20",
		"time":          "14:30",
	}, nil)
	require.Equal(t, http.StatusCreated, res.Code, res.Message)
	booking := decode[entityJSON](t, res.Data)
	assert.Equal(t, "Pending", booking.Status)
	assert.Equal(t, "Hair Spa", booking.ServiceName)
	assert.Equal(t, 1200.0, booking.ServicePrice)

	res = s.admin(http.MethodGet, "/api/admin/bookings?status=Pending", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.EqualValues(t, 1, res.Total)

	res = s.admin(http.MethodPut, "/api/admin/bookings/"+booking.ID+"/status", gin.H{"status": "Completed"})
	require.Equal(t, http.StatusOK, res.Code, res.Message)
	assert.Equal(t, "Completed", decode[entityJSON](t, res.Data).Status)

	res = s.admin(http.MethodPut, "/api/admin/bookings/"+booking.ID+"/status", gin.H{"status": "Pending"})
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Equal(t, "invalid_transition", res.Error)

	res = s.admin(http.MethodPut, "/api/admin/bookings/"+booking.ID+"/status", gin.H{"status": "Bogus"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "validation_error", res.Error)

	res = s.admin(http.MethodPut, "/api/admin/bookings/missing/status", gin.H{"status": "Seen"})
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "not_found", res.Error)

	res = s.admin(http.MethodGet, "/api/admin/bookings?status=Delivered", nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestBookingWithoutCatalogService(t *testing.T) {
	s := newTestServer(t)

	res := s.do(http.MethodPost, "/api/bookings", gin.H{
		"customer_name": "Ravi", "phone": "1", "service_name": "Beard Trim",
		"date": "2026-10-20", "time": "10:00",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = s.do(http.MethodPost, "/api/bookings", gin.H{
		"customer_name": "Ravi", "phone": "1", "service_name": "Beard Trim", "service_price": 300,
		"date": "20-10-2026", "time": "10:00",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Message, "date")

	res = s.do(http.MethodPost, "/api/bookings", gin.H{
		"customer_name": "Ravi", "phone": "1", "service_name": "Beard Trim", "service_price": 300,
		"date": "2026-10-20", "time": "10:00",
	}, nil)
	assert.Equal(t, http.StatusCreated, res.Code, res.Message)
}

func TestPartialUpdateCannotTouchStatus(t *testing.T) {
	s := newTestServer(t)
	res := s.do(http.MethodPost, "/api/enquiries", gin.H{
		"name": "Meera", "email": "meera@example.com", "message": "Franchise?",
	}, nil)
	require.Equal(t, http.StatusCreated, res.Code, res.Message)
	enquiry := decode[entityJSON](t, res.Data)
	assert.Equal(t, "New", enquiry.Status)

	res = s.admin(http.MethodPatch, "/api/admin/enquiries/"+enquiry.ID, gin.H{"status": "Closed"})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = s.admin(http.MethodPatch, "/api/admin/enquiries/"+enquiry.ID, gin.H{"phone": "555"})
	assert.Equal(t, http.StatusOK, res.Code, res.Message)
	assert.Equal(t, "New", decode[entityJSON](t, res.Data).Status)
}

func TestCartCheckoutSnapshotsPrices(t *testing.T) {
	s := newTestServer(t)
	serum := s.createProduct("Hair Serum", 450)
	oil := s.createProduct("Argan Oil", 300)

	res := s.do(http.MethodPost, "/api/cart/items", gin.H{"product_id": serum.ID, "quantity": 2}, nil)
	require.Equal(t, http.StatusOK, res.Code, res.Message)
	session := res.Header.Get(SessionHeader)
	require.NotEmpty(t, session)
	headers := http.Header{SessionHeader: {session}}

	res = s.do(http.MethodPost, "/api/cart/items", gin.H{"product_id": oil.ID}, headers)
	require.Equal(t, http.StatusOK, res.Code)
	res = s.do(http.MethodPost, "/api/cart/items", gin.H{"product_id": "ghost"}, headers)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = s.do(http.MethodGet, "/api/cart", nil, headers)
	view := decode[struct {
		Count int     `json:"count"`
		Total float64 `json:"total"`
	}](t, res.Data)
	assert.Equal(t, 3, view.Count)
	assert.Equal(t, 1200.0, view.Total)

	res = s.do(http.MethodPost, "/api/checkout", gin.H{
		"customer_name": "Priya", "phone": "999", "address": "12 MG Road",
	}, headers)
	require.Equal(t, http.StatusCreated, res.Code, res.Message)
	order := decode[entityJSON](t, res.Data)
	assert.Equal(t, "Pending", order.Status)
	assert.Equal(t, 1200.0, order.TotalAmount)
	require.Len(t, order.Items, 2)

	// Repricing the catalog does not reach the stored order.
	res = s.admin(http.MethodPatch, "/api/admin/products/"+serum.ID, gin.H{"price": 999})
	require.Equal(t, http.StatusOK, res.Code, res.Message)
	res = s.admin(http.MethodGet, "/api/admin/orders/"+order.ID, nil)
	stored := decode[entityJSON](t, res.Data)
	assert.Equal(t, 1200.0, stored.TotalAmount)
	assert.Equal(t, 450.0, stored.Items[0].Price)

	res = s.do(http.MethodGet, "/api/cart", nil, headers)
	assert.Equal(t, 0, decode[struct {
		Count int `json:"count"`
	}](t, res.Data).Count)

	res = s.do(http.MethodPost, "/api/checkout", gin.H{
		"customer_name": "Priya", "phone": "999", "address": "12 MG Road",
	}, headers)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestCartItemEdits(t *testing.T) {
	s := newTestServer(t)
	p := s.createProduct("Shampoo", 200)
	headers := http.Header{SessionHeader: {"session-1"}}

	s.do(http.MethodPost, "/api/cart/items", gin.H{"product_id": p.ID, "quantity": 1}, headers)
	res := s.do(http.MethodPatch, "/api/cart/items/"+p.ID, gin.H{"quantity": 4}, headers)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 800.0, decode[struct {
		Total float64 `json:"total"`
	}](t, res.Data).Total)

	res = s.do(http.MethodDelete, "/api/cart/items/"+p.ID, nil, headers)
	assert.Equal(t, http.StatusOK, res.Code)
	res = s.do(http.MethodDelete, "/api/cart/items/"+p.ID, nil, headers)
	assert.Equal(t, http.StatusNotFound, res.Code)

	s.do(http.MethodPost, "/api/cart/items", gin.H{"product_id": p.ID, "quantity": 2}, headers)
	res = s.do(http.MethodDelete, "/api/cart", nil, headers)
	require.Equal(t, http.StatusOK, res.Code)
	res = s.do(http.MethodGet, "/api/cart", nil, headers)
	assert.Equal(t, 0, decode[struct {
		Count int `json:"count"`
	}](t, res.Data).Count)
}

func TestCreateProductWithImage(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Face Mask"))
	require.NoError(t, mw.WriteField("price", "250.50"))
	fw, err := mw.CreateFormFile("image", "mask.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("\x89PNG fake"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	p := decode[entityJSON](t, res.Data)
	assert.True(t, strings.HasPrefix(p.ImageURL, "/uploads/products/"), p.ImageURL)
}

func TestCreateCatalogRequiresPrice(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/admin/services", "/api/admin/products"} {
		res := s.admin(http.MethodPost, path, gin.H{"name": "Freebie"})
		assert.Equal(t, http.StatusBadRequest, res.Code, path)
		assert.Equal(t, "validation_error", res.Error, path)
		assert.Equal(t, "price is required", res.Message, path)
	}

	res := s.admin(http.MethodGet, "/api/admin/products", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.EqualValues(t, 0, res.Total)
}

func TestUpdateProductImageFromForm(t *testing.T) {
	s := newTestServer(t)
	p := s.createProduct("Styling Clay", 450)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Matte Styling Clay"))
	fw, err := mw.CreateFormFile("image", "clay.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("\x89PNG fake"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/products/"+p.ID, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	updated := decode[struct {
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		ImageURL string  `json:"image_url"`
	}](t, res.Data)
	assert.Equal(t, "Matte Styling Clay", updated.Name)
	assert.Equal(t, 450.0, updated.Price)
	assert.True(t, strings.HasPrefix(updated.ImageURL, "/uploads/products/"), updated.ImageURL)

	feed := s.admin(http.MethodGet, "/api/admin/events?after=0", nil)
	require.Equal(t, http.StatusOK, feed.Code)
	evs := decode[struct {
		Events []struct {
			Type     string `json:"type"`
			Kind     string `json:"kind"`
			EntityID string `json:"entity_id"`
		} `json:"events"`
	}](t, feed.Data).Events
	require.NotEmpty(t, evs)
	last := evs[len(evs)-1]
	assert.Equal(t, "updated", last.Type)
	assert.Equal(t, "product", last.Kind)
	assert.Equal(t, p.ID, last.EntityID)
}

func TestUpdateProductFormRejectsUnknownField(t *testing.T) {
	s := newTestServer(t)
	p := s.createProduct("Serum", 650)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("description", "products have no description"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/products/"+p.ID, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestEventsAndNotifications(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"A", "B"} {
		res := s.do(http.MethodPost, "/api/enquiries", gin.H{
			"name": name, "email": strings.ToLower(name) + "@example.com", "message": "hi",
		}, nil)
		require.Equal(t, http.StatusCreated, res.Code)
	}

	res := s.admin(http.MethodGet, "/api/admin/notifications", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, 2, decode[services.NotificationSummary](t, res.Data).Total)

	res = s.admin(http.MethodPost, "/api/admin/notifications/clear", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"acknowledged":2}`, string(res.Data))

	res = s.admin(http.MethodGet, "/api/admin/events?after=0", nil)
	require.Equal(t, http.StatusOK, res.Code)
	feed := decode[struct {
		Events []struct {
			Type string `json:"type"`
		} `json:"events"`
		Latest uint64 `json:"latest"`
		Resync bool   `json:"resync"`
	}](t, res.Data)
	assert.Len(t, feed.Events, 4)
	assert.EqualValues(t, 4, feed.Latest)
	assert.False(t, feed.Resync)

	res = s.admin(http.MethodGet, "/api/admin/events?after=99", nil)
	assert.True(t, decode[struct {
		Resync bool `json:"resync"`
	}](t, res.Data).Resync)

	res = s.admin(http.MethodGet, "/api/admin/events?after=-1", nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestDashboardAndRevenue(t *testing.T) {
	s := newTestServer(t)

	res := s.admin(http.MethodGet, "/api/admin/dashboard", nil)
	assert.Equal(t, http.StatusOK, res.Code)

	res = s.admin(http.MethodGet, "/api/admin/revenue?months=6", nil)
	require.Equal(t, http.StatusOK, res.Code)
	summary := decode[services.RevenueSummary](t, res.Data)
	assert.Len(t, summary.Monthly, 6)

	res = s.admin(http.MethodGet, "/api/admin/revenue?months=0", nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestAdminLoginRefreshLogout(t *testing.T) {
	s := newTestServer(t)

	res := s.do(http.MethodPost, "/api/admin/auth/login", gin.H{"email": "admin@salon.test", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = s.do(http.MethodPost, "/api/admin/auth/login", gin.H{"email": "admin@salon.test", "password": "hunter22"}, nil)
	require.Equal(t, http.StatusOK, res.Code)
	pair := decode[services.TokenPair](t, res.Data)
	require.NotEmpty(t, pair.RefreshToken)

	res = s.do(http.MethodPost, "/api/admin/auth/refresh", gin.H{"refresh_token": pair.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, res.Code)
	rotated := decode[services.TokenPair](t, res.Data)

	res = s.do(http.MethodPost, "/api/admin/auth/refresh", gin.H{"refresh_token": pair.RefreshToken}, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = s.do(http.MethodGet, "/api/admin/auth/me", nil, http.Header{"Authorization": {"Bearer " + rotated.AccessToken}})
	assert.Equal(t, http.StatusOK, res.Code)

	res = s.do(http.MethodPost, "/api/admin/auth/logout", gin.H{"refresh_token": rotated.RefreshToken}, nil)
	assert.Equal(t, http.StatusOK, res.Code)
}
