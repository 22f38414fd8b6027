package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agromart/activity"
	"agromart/admin"
	"agromart/auth"
	"agromart/documents"
	"agromart/identity"
	"agromart/marketplace"
	"agromart/memstore"
	"agromart/middleware"
	"agromart/models"
	"agromart/mq"
	"agromart/orders"
	"agromart/ratelim"
	"agromart/receipt"
	"agromart/reviews"
	"agromart/routes"
	"agromart/supplier"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtSecret  = "routes-test-secret-0123456789"
	adminEmail = "ops@agromart.test"
	password   = "s3cret-pass"
)

type server struct {
	router   *httprouter.Router
	tokens   *identity.Tokens
	stock    *memstore.Products
	market   *memstore.MarketplaceOrders
	supplier *memstore.SupplierOrders
	seller   models.Seller
	orderID  primitive.ObjectID
	review   primitive.ObjectID
	tomatoes primitive.ObjectID
}

func newServer(t *testing.T) *server {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	log := zap.NewNop()
	s := &server{
		tokens:   identity.NewTokens(jwtSecret, time.Hour),
		orderID:  primitive.NewObjectID(),
		review:   primitive.NewObjectID(),
		tomatoes: primitive.NewObjectID(),
	}
	s.seller = models.Seller{
		ID:           primitive.NewObjectID(),
		CompanyName:  "Green Valley Supply",
		Email:        "sales@greenvalley.test",
		PasswordHash: string(hash),
		Documents:    []models.VerificationDocument{{Type: "license", Status: models.DocumentPending}},
	}
	sellerID := s.seller.ID.Hex()

	s.stock = memstore.NewProducts(
		models.Product{ID: s.tomatoes, SellerID: sellerID, Name: "Tomatoes", StockQuantity: 2, ReorderThreshold: 10},
	)
	s.supplier = memstore.NewSupplierOrders(models.Order{
		ID: s.orderID, OrderNumber: "ORD-1", SellerID: sellerID,
		Status: models.OrderPending, PaymentStatus: models.PaymentPaid,
		Items: []models.OrderItem{{ProductID: s.tomatoes, Name: "Tomatoes", Price: 2, Quantity: 5}},
	})
	s.market = memstore.NewMarketplaceOrders(models.MarketplaceOrder{
		ID: primitive.NewObjectID(), OrderNumber: "MP-1", UserID: "U1", Status: models.OrderPending, Total: 7.5,
		Items: []models.OrderItem{{ProductID: s.tomatoes, Name: "Tomatoes", Price: 2.5, Quantity: 3}},
	})
	docStore := memstore.NewDocuments([]models.Seller{s.seller}, nil)

	act := activity.NewService(memstore.NewActivity(), mq.Discard{}, log)
	orderSvc := orders.NewService(orders.Repositories{
		Supplier:    s.supplier,
		Farmer:      memstore.NewFarmerOrders(),
		Marketplace: s.market,
	}, s.stock, act, nil, false, log)
	reviewSvc := reviews.NewService(memstore.NewReviews(models.Review{
		ID: s.review, SellerID: sellerID, UserID: "U1", Rating: 1, Comment: "meh",
	}), act, false, log)

	s.router = httprouter.New()
	routes.RoutesWrapper(s.router, routes.Handlers{
		Auth:        auth.NewHandler(s.tokens, identity.AdminCredentials{Email: adminEmail, PasswordHash: string(hash)}, docStore, false, log),
		Admin:       admin.NewHandler(documents.NewService(docStore, act, log), orderSvc, s.stock, act),
		Supplier:    supplier.NewHandler(orderSvc, s.stock, reviewSvc),
		Marketplace: marketplace.NewHandler(orderSvc, receipt.NewRenderer("receipt-secret"), log),
	}, middleware.NewAuth(s.tokens, log), ratelim.NewRateLimiter(1000, 1000))
	return s
}

type call struct {
	method, path, body string
	header             map[string]string
	cookie             *http.Cookie
}

func (s *server) do(c call) *httptest.ResponseRecorder {
	req := httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
	req.RemoteAddr = "192.0.2.1:5555"
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *server) adminToken(t *testing.T) map[string]string {
	t.Helper()
	token, _, err := s.tokens.IssueAdmin(adminEmail)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func buyerToken(t *testing.T, userID string) map[string]string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId":   userID,
		"username": "buyer",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	rec := s.do(call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "200", rec.Body.String())
}

func TestAdminLoginFlow(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/admin/login", "/auth/admin/login"} {
		rec := s.do(call{method: http.MethodPost, path: path,
			body: `{"email":"OPS@agromart.test","password":"` + password + `"}`})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var out struct {
			Token string `json:"token"`
			Admin struct {
				Email string `json:"email"`
				Role  string `json:"role"`
			} `json:"admin"`
		}
		decode(t, rec, &out)
		assert.NotEmpty(t, out.Token)
		assert.Equal(t, adminEmail, out.Admin.Email)
		assert.Equal(t, "admin", out.Admin.Role)

		cookie := cookieNamed(rec, identity.AdminCookie)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		assert.Equal(t, 3600, cookie.MaxAge)

		me := s.do(call{method: http.MethodGet, path: "/auth/admin/me", cookie: &http.Cookie{Name: identity.AdminCookie, Value: cookie.Value}})
		assert.Equal(t, http.StatusOK, me.Code)
		assert.Contains(t, me.Body.String(), adminEmail)
	}
}

func TestAdminLoginRejections(t *testing.T) {
	s := newServer(t)

	rec := s.do(call{method: http.MethodPost, path: "/auth/admin/login",
		body: `{"email":"` + adminEmail + `","password":"wrong"}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, cookieNamed(rec, identity.AdminCookie))

	rec = s.do(call{method: http.MethodPost, path: "/auth/admin/login", body: `{"email":"` + adminEmail + `"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminLogoutAlwaysSucceeds(t *testing.T) {
	s := newServer(t)
	rec := s.do(call{method: http.MethodPost, path: "/auth/admin/logout"})
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := cookieNamed(rec, identity.AdminCookie)
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.Empty(t, cookie.Value)
}

func TestAdminRoutesRejectOtherRoles(t *testing.T) {
	s := newServer(t)

	rec := s.do(call{method: http.MethodGet, path: "/admin/audit-logs"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _, err := s.tokens.IssueSeller(s.seller.ID.Hex(), s.seller.Email)
	require.NoError(t, err)
	rec = s.do(call{method: http.MethodGet, path: "/admin/audit-logs",
		header: map[string]string{"Authorization": "Bearer " + token}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminReviewDocument(t *testing.T) {
	s := newServer(t)
	hdr := s.adminToken(t)
	ref := s.seller.ID.Hex() + "_license"

	rec := s.do(call{method: http.MethodPut, path: "/admin/documents/" + ref, header: hdr, body: `{"action":"approve"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out map[string]any
	decode(t, rec, &out)
	assert.Equal(t, "seller", out["family"])

	rec = s.do(call{method: http.MethodPut, path: "/admin/documents/" + ref, header: hdr, body: `{"action":"archive"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodPut, path: "/admin/documents/nounderscore", header: hdr, body: `{"action":"approve"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodGet, path: "/admin/audit-logs?action=document.approved", header: hdr})
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []models.AuditLog
	decode(t, rec, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, adminEmail, logs[0].Actor)
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	s := newServer(t)
	hdr := s.adminToken(t)

	rec := s.do(call{method: http.MethodPut, path: "/admin/orders/ORD-1", header: hdr, body: `{"status":"shipped"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out map[string]any
	decode(t, rec, &out)
	assert.Equal(t, "supplier", out["family"])

	rec = s.do(call{method: http.MethodPut, path: "/admin/orders/ORD-1", header: hdr, body: `{"status":"lost"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodPut, path: "/admin/orders/ORD-404", header: hdr, body: `{"status":"shipped"}`})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminListingLimits(t *testing.T) {
	s := newServer(t)
	hdr := s.adminToken(t)

	rec := s.do(call{method: http.MethodGet, path: "/admin/orders/recent?limit=0", header: hdr})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(call{method: http.MethodGet, path: "/admin/products/low-stock?limit=-1", header: hdr})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodGet, path: "/admin/orders/recent?status=bogus", header: hdr})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodGet, path: "/admin/products/low-stock", header: hdr})
	require.Equal(t, http.StatusOK, rec.Code)
	var low []models.Product
	decode(t, rec, &low)
	require.Len(t, low, 1)
	assert.Equal(t, "Tomatoes", low[0].Name)

	rec = s.do(call{method: http.MethodGet, path: "/admin/products/top", header: hdr})
	require.Equal(t, http.StatusOK, rec.Code)
	var top []models.ProductSales
	decode(t, rec, &top)
	require.Len(t, top, 1)
	assert.InDelta(t, 10.0, top[0].Revenue, 0.001)
}

func TestSupplierLoginAndOrderUpdate(t *testing.T) {
	s := newServer(t)

	rec := s.do(call{method: http.MethodPost, path: "/auth/supplier/login",
		body: `{"email":"sales@greenvalley.test","password":"` + password + `"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	session := cookieNamed(rec, identity.SupplierCookie)
	require.NotNil(t, session)

	rec = s.do(call{method: http.MethodPut, path: "/supplier/orders/ORD-1",
		cookie: &http.Cookie{Name: identity.SupplierCookie, Value: session.Value},
		body:   `{"status":"processing","note":"packing"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var order models.Order
	decode(t, rec, &order)
	assert.Equal(t, models.OrderProcessing, order.Status)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, "packing", order.StatusHistory[0].Note)
	assert.Equal(t, s.seller.ID.Hex(), order.StatusHistory[0].ChangedBy)
}

func TestSupplierLoginWrongPassword(t *testing.T) {
	s := newServer(t)
	rec := s.do(call{method: http.MethodPost, path: "/auth/supplier/login",
		body: `{"email":"sales@greenvalley.test","password":"nope"}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(call{method: http.MethodPost, path: "/auth/supplier/login",
		body: `{"email":"ghost@greenvalley.test","password":"nope"}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSupplierHeaderIdentity(t *testing.T) {
	s := newServer(t)

	rec := s.do(call{method: http.MethodPut, path: "/supplier/orders/ORD-1",
		header: map[string]string{identity.SellerHeader: "someone-else"}, body: `{"status":"shipped"}`})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(call{method: http.MethodPut, path: "/supplier/orders/ORD-1",
		header: map[string]string{identity.SellerHeader: identity.SentinelSellerID}, body: `{"status":"shipped"}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(call{method: http.MethodPut, path: "/supplier/orders/ORD-1", body: `{"status":"shipped"}`})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, models.OrderPending, s.supplier.Get(s.orderID).Status)
}

func TestSupplierReviewModeration(t *testing.T) {
	s := newServer(t)
	hdr := map[string]string{identity.SellerHeader: s.seller.ID.Hex()}
	base := "/supplier/reviews/" + s.review.Hex()

	rec := s.do(call{method: http.MethodPost, path: base + "/flag", header: hdr, body: `{"flagged":true,"reason":"spam"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var review models.Review
	decode(t, rec, &review)
	assert.True(t, review.IsFlagged)
	assert.Equal(t, "spam", review.FlagReason)

	rec = s.do(call{method: http.MethodPost, path: base + "/flag", header: hdr, body: `{"reason":"spam"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodPost, path: base + "/respond", header: hdr, body: `{"message":"   "}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodPost, path: base + "/respond", header: hdr, body: `{"message":" Thanks "}`})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &review)
	require.NotNil(t, review.Response)
	assert.Equal(t, "Thanks", review.Response.Message)

	rec = s.do(call{method: http.MethodGet, path: "/supplier/reviews?flagged=true", header: hdr})
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Review
	decode(t, rec, &list)
	assert.Len(t, list, 1)

	rec = s.do(call{method: http.MethodGet, path: "/admin/notifications?unread=true", header: s.adminToken(t)})
	require.Equal(t, http.StatusOK, rec.Code)
	var notes []models.Notification
	decode(t, rec, &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, activity.NotifyReviewFlagged, notes[0].Type)

	rec = s.do(call{method: http.MethodPut, path: "/admin/notifications/" + notes[0].ID.Hex() + "/read", header: s.adminToken(t)})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(call{method: http.MethodPut, path: "/admin/notifications/" + primitive.NewObjectID().Hex() + "/read", header: s.adminToken(t)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarketplaceCancel(t *testing.T) {
	s := newServer(t)

	rec := s.do(call{method: http.MethodPost, path: "/marketplace/orders/MP-1/cancel", body: `{"reason":"changed my mind"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodPost, path: "/marketplace/orders/MP-1/cancel", body: `{"userId":"U2"}`})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// the token identity wins over the body
	rec = s.do(call{method: http.MethodPost, path: "/marketplace/orders/MP-1/cancel",
		header: buyerToken(t, "U1"), body: `{"userId":"U2","reason":"changed my mind"}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Order        models.MarketplaceOrder `json:"order"`
		RefundAmount float64                 `json:"refundAmount"`
	}
	decode(t, rec, &out)
	assert.Equal(t, models.OrderCancelled, out.Order.Status)
	assert.Equal(t, "changed my mind", out.Order.CancellationReason)
	assert.InDelta(t, 7.5, out.RefundAmount, 0.001)
	assert.Equal(t, 5, s.stock.Get(s.tomatoes).StockQuantity)

	rec = s.do(call{method: http.MethodPost, path: "/marketplace/orders/MP-1/cancel", body: `{"userId":"U1"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 5, s.stock.Get(s.tomatoes).StockQuantity)
}

func TestMarketplaceReadAndReceipt(t *testing.T) {
	s := newServer(t)

	rec := s.do(call{method: http.MethodGet, path: "/marketplace/orders/MP-1?userId=U1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"orderNumber":"MP-1"`)

	rec = s.do(call{method: http.MethodGet, path: "/marketplace/orders/MP-1?userId=U9"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(call{method: http.MethodGet, path: "/marketplace/orders/MP-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(call{method: http.MethodGet, path: "/marketplace/orders/MP-1/receipt", header: buyerToken(t, "U1")})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "receipt-MP-1.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}
