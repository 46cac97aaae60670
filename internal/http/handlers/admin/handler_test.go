package admin_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cellar-next/internal/authz"
	"github.com/cellar-next/internal/config"
	"github.com/cellar-next/internal/http/handlers/admin"
	handlershared "github.com/cellar-next/internal/http/handlers/shared"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/provider"
	"github.com/cellar-next/internal/repository"
	"github.com/cellar-next/internal/router"
	"github.com/cellar-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type adminFixture struct {
	db     *gorm.DB
	engine *gin.Engine
	admin  *models.User
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router.RegisterValidators()

	dsn := fmt.Sprintf("file:admin_handler_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.MigrateModels(db); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}

	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	roleStore := authz.NewCachedRoleStore(authzService, 0)

	adminUser := &models.User{Email: "owner@cellar.test", PasswordHash: "x", Status: "active"}
	if err := db.Create(adminUser).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	promoRepo := repository.NewPromoCodeRepository(db)
	container := &provider.Container{
		Config:                &config.Config{},
		RoleStore:             roleStore,
		AdminUserService:      service.NewAdminUserService(userRepo, roleStore),
		PromoCodeAdminService: service.NewPromoCodeAdminService(promoRepo),
		ProductService:        service.NewProductService(repository.NewProductRepository(db)),
		OrderService:          service.NewOrderService(repository.NewOrderRepository(db), nil, false),
		DeliveryFeeService:    service.NewDeliveryFeeService(repository.NewDeliveryFeeRepository(db)),
		DashboardService:      service.NewDashboardService(repository.NewDashboardRepository(db)),
	}

	h := admin.New(container)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "req-admin")
		c.Set(handlershared.ContextKeyUserID, adminUser.ID)
		c.Set(handlershared.ContextKeyIsAdmin, true)
		c.Next()
	})
	g := r.Group("/api/v1/admin")
	g.GET("/stats", h.GetStats)
	g.GET("/products", h.ListProducts)
	g.POST("/products", h.CreateProduct)
	g.PATCH("/products/:id", h.PatchProductStock)
	g.GET("/promo-codes", h.ListPromoCodes)
	g.POST("/promo-codes", h.CreatePromoCode)
	g.PATCH("/promo-codes/:id", h.PatchPromoCode)
	g.DELETE("/promo-codes/:id", h.DeletePromoCode)
	g.GET("/orders", h.ListOrders)
	g.PATCH("/orders/:id", h.UpdateOrderStatus)
	g.GET("/users", h.ListUsers)
	g.POST("/users/:id/make-admin", h.MakeAdmin)
	g.POST("/users/:id/remove-admin", h.RemoveAdmin)
	g.GET("/delivery-fees", h.ListDeliveryFees)
	g.PUT("/delivery-fees", h.UpsertDeliveryFee)

	return &adminFixture{db: db, engine: r, admin: adminUser}
}

func (f *adminFixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		if raw, err = json.Marshal(body); err != nil {
			t.Fatalf("encode body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response failed: %v body=%s", err, w.Body.String())
		}
	}
	return w, decoded
}

func TestAdminPromoCodeLifecycle(t *testing.T) {
	f := newAdminFixture(t)

	create := map[string]interface{}{
		"code":             "summer25",
		"discount_type":    "percentage",
		"discount_value":   25,
		"min_order_amount": 20000,
		"usage_limit":      50,
	}
	w, body := f.do(t, http.MethodPost, "/api/v1/admin/promo-codes", create)
	if w.Code != http.StatusCreated || body["code"] != "SUMMER25" || body["is_active"] != true {
		t.Fatalf("create promo want 201 got %d %v", w.Code, body)
	}
	id := uint(body["id"].(float64))

	w, body = f.do(t, http.MethodPost, "/api/v1/admin/promo-codes", create)
	if w.Code != http.StatusConflict || body["error"] != "Promo code already exists" {
		t.Fatalf("duplicate promo want 409 got %d %v", w.Code, body)
	}

	fractional := map[string]interface{}{
		"code":             "half12",
		"discount_type":    "percentage",
		"discount_value":   12.5,
		"min_order_amount": 0,
	}
	w, body = f.do(t, http.MethodPost, "/api/v1/admin/promo-codes", fractional)
	if w.Code != http.StatusCreated || body["discount_value"] != 12.5 {
		t.Fatalf("fractional promo want 201 with 12.5 got %d %v", w.Code, body)
	}
	var stored models.PromoCode
	if err := f.db.Where("code = ?", "HALF12").First(&stored).Error; err != nil {
		t.Fatalf("load fractional promo failed: %v", err)
	}
	if stored.DiscountValue.String() != "12.5" {
		t.Fatalf("stored discount_value want 12.5 got %s", stored.DiscountValue.String())
	}

	bad := map[string]interface{}{"code": "x!", "discount_value": 5, "min_order_amount": 0}
	w, _ = f.do(t, http.MethodPost, "/api/v1/admin/promo-codes", bad)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed code want 400 got %d", w.Code)
	}

	w, body = f.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/admin/promo-codes/%d", id), map[string]bool{"is_active": false})
	if w.Code != http.StatusOK || body["is_active"] != false {
		t.Fatalf("patch promo want 200 got %d %v", w.Code, body)
	}

	w, body = f.do(t, http.MethodGet, "/api/v1/admin/promo-codes", nil)
	pagination, _ := body["pagination"].(map[string]interface{})
	if w.Code != http.StatusOK || pagination["total"] != float64(2) {
		t.Fatalf("list promo got %d %v", w.Code, body)
	}

	w, _ = f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/promo-codes/%d", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete promo want 200 got %d", w.Code)
	}
	w, body = f.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/admin/promo-codes/%d", id), map[string]bool{"is_active": true})
	if w.Code != http.StatusNotFound {
		t.Fatalf("patch deleted promo want 404 got %d %v", w.Code, body)
	}
}

func TestAdminProductAndStats(t *testing.T) {
	f := newAdminFixture(t)

	product := map[string]interface{}{"name": "Hennessy VS", "price": 45000, "category": "cognac", "bottle_size": "70cl"}
	w, body := f.do(t, http.MethodPost, "/api/v1/admin/products", product)
	if w.Code != http.StatusCreated || body["slug"] != "hennessy-vs" {
		t.Fatalf("create product want 201 got %d %v", w.Code, body)
	}
	id := uint(body["id"].(float64))

	w, body = f.do(t, http.MethodPost, "/api/v1/admin/products", product)
	if w.Code != http.StatusCreated || body["slug"] != "hennessy-vs-1" {
		t.Fatalf("second product should get a suffixed slug, got %d %v", w.Code, body)
	}

	w, body = f.do(t, http.MethodPost, "/api/v1/admin/products", map[string]interface{}{"name": "No price", "category": "gin"})
	if w.Code != http.StatusBadRequest || body["error"] != "Name, price, and category are required" {
		t.Fatalf("missing price want 400 got %d %v", w.Code, body)
	}

	w, body = f.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/admin/products/%d", id), map[string]bool{"in_stock": false})
	if w.Code != http.StatusOK || body["in_stock"] != false {
		t.Fatalf("patch stock want 200 got %d %v", w.Code, body)
	}

	w, body = f.do(t, http.MethodGet, "/api/v1/admin/stats", nil)
	if w.Code != http.StatusOK || body["totalProducts"] != float64(2) || body["totalOrders"] != float64(0) {
		t.Fatalf("stats got %d %v", w.Code, body)
	}
}

func TestAdminOrderStatus(t *testing.T) {
	f := newAdminFixture(t)
	order := &models.Order{
		PaystackReference: "CNADMIN1",
		CustomerEmail:     "buyer@example.com",
		DeliveryCity:      "Lagos",
		Subtotal:          models.NewMoney(30000),
		DeliveryFee:       models.NewMoney(2000),
		TotalAmount:       models.NewMoney(32000),
		OrderStatus:       "pending",
		PaystackStatus:    "success",
	}
	if err := f.db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	w, body := f.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/admin/orders/%d", order.ID), map[string]string{"order_status": "shipped"})
	detail, _ := body["order"].(map[string]interface{})
	if w.Code != http.StatusOK || detail["order_status"] != "shipped" || detail["paystack_status"] != "success" {
		t.Fatalf("update status want 200 got %d %v", w.Code, body)
	}

	w, body = f.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/admin/orders/%d", order.ID), map[string]string{"order_status": "lost"})
	if w.Code != http.StatusBadRequest || body["error"] != "Invalid order status" {
		t.Fatalf("bad status want 400 got %d %v", w.Code, body)
	}

	w, _ = f.do(t, http.MethodPatch, "/api/v1/admin/orders/999", map[string]string{"order_status": "shipped"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing order want 404 got %d", w.Code)
	}

	w, body = f.do(t, http.MethodGet, "/api/v1/admin/orders?status=shipped", nil)
	if data, _ := body["data"].([]interface{}); w.Code != http.StatusOK || len(data) != 1 {
		t.Fatalf("filtered list got %d %v", w.Code, body)
	}
}

func TestAdminUserRoles(t *testing.T) {
	f := newAdminFixture(t)
	member := &models.User{Email: "member@cellar.test", PasswordHash: "x", Status: "active"}
	if err := f.db.Create(member).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	w, _ := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/users/%d/make-admin", member.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("make admin want 200 got %d", w.Code)
	}

	_, body := f.do(t, http.MethodGet, "/api/v1/admin/users", nil)
	data, _ := body["data"].([]interface{})
	found := false
	for _, raw := range data {
		row, _ := raw.(map[string]interface{})
		if row["email"] == "member@cellar.test" && row["role"] == "admin" {
			found = true
		}
	}
	if !found {
		t.Fatalf("member should be listed as admin: %v", body)
	}

	w, body = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/users/%d/remove-admin", f.admin.ID), nil)
	if w.Code != http.StatusBadRequest || body["error"] != "You cannot remove your own admin role" {
		t.Fatalf("self revoke want 400 got %d %v", w.Code, body)
	}

	w, _ = f.do(t, http.MethodPost, "/api/v1/admin/users/999/make-admin", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown user want 404 got %d", w.Code)
	}
}

func TestAdminDeliveryFees(t *testing.T) {
	f := newAdminFixture(t)

	w, body := f.do(t, http.MethodPut, "/api/v1/admin/delivery-fees", map[string]interface{}{"city": "Abuja", "fee": 3500})
	if w.Code != http.StatusOK || body["fee"] != float64(3500) {
		t.Fatalf("upsert want 200 got %d %v", w.Code, body)
	}
	w, body = f.do(t, http.MethodPut, "/api/v1/admin/delivery-fees", map[string]interface{}{"city": "Abuja", "fee": 0})
	if w.Code != http.StatusOK || body["fee"] != float64(0) {
		t.Fatalf("zero fee should be accepted, got %d %v", w.Code, body)
	}
	w, _ = f.do(t, http.MethodPut, "/api/v1/admin/delivery-fees", map[string]interface{}{"city": "Abuja", "fee": -5})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative fee want 400 got %d", w.Code)
	}
	w, _ = f.do(t, http.MethodPut, "/api/v1/admin/delivery-fees", map[string]interface{}{"city": "Kano"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing fee want 400 got %d", w.Code)
	}

	_, body = f.do(t, http.MethodGet, "/api/v1/admin/delivery-fees", nil)
	if rows, _ := body["deliveryFees"].([]interface{}); len(rows) != 1 {
		t.Fatalf("expected one delivery fee row, got %v", body)
	}
}
