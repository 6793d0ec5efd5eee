package orderControllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	orderControllers "github.com/Ags961/Arambam-eCommerce/controllers/order"
	"github.com/Ags961/Arambam-eCommerce/models"
)

func setupOrderTestRouter(t *testing.T, userID string) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	err = testDB.AutoMigrate(&models.User{}, &models.Product{}, &models.Cart{},
		&models.CartItem{}, &models.Order{}, &models.OrderItem{})
	if err != nil {
		t.Fatalf("failed to auto-migrate models: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})

	orders := r.Group("/order")
	{
		orders.POST("/place", orderControllers.PlaceOrder(testDB, nil))
		orders.POST("/stripe", orderControllers.PlaceOrderStripe(testDB, nil))
		orders.POST("/verifyStripe", orderControllers.VerifyStripe(testDB))
		orders.POST("/userorders", orderControllers.UserOrders(testDB))
		orders.POST("/list", orderControllers.AllOrders(testDB))
		orders.POST("/status", orderControllers.UpdateStatus(testDB, nil))
	}
	return r, testDB
}

func seedUserWithCart(t *testing.T, db *gorm.DB, userID string, cartLines map[string]map[string]int) {
	user := models.User{
		ID:       userID,
		Name:     "Test User",
		Email:    userID + "@example.com",
		Password: "irrelevant",
		Cart:     models.Cart{UserID: userID},
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	for productID, sizes := range cartLines {
		for size, qty := range sizes {
			item := models.CartItem{
				CartID:    user.Cart.CartID,
				ProductID: productID,
				Size:      size,
				Quantity:  qty,
				AddedAt:   time.Now(),
			}
			if err := db.Create(&item).Error; err != nil {
				t.Fatalf("failed to seed cart item: %v", err)
			}
		}
	}
}

func seedCatalogProduct(t *testing.T, db *gorm.DB, id string, price float64) {
	product := models.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    price,
		Category: models.CategoryWomen,
		Sizes:    []string{"S", "M", "L"},
		Images:   []string{"/uploads/products/" + id + ".png"},
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
}

func testAddress() gin.H {
	return gin.H{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"email":     "ada@example.com",
		"street":    "12 Analytical Way",
		"city":      "London",
		"state":     "Greater London",
		"zipcode":   "N1 7AA",
		"country":   "UK",
		"phone":     "07000000000",
	}
}

func doPost(router *gin.Engine, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func cartItemCount(t *testing.T, db *gorm.DB, userID string) int64 {
	var cart models.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		t.Fatalf("failed to load cart: %v", err)
	}
	var count int64
	db.Model(&models.CartItem{}).Where("cart_id = ?", cart.CartID).Count(&count)
	return count
}

// fakeGateway stands in for the Stripe Checkout API: session creation
// returns a fixed reference and URL, session lookup reports it paid,
// coupon creation returns a fixed coupon id. Posted forms are recorded
// for assertions.
type fakeGateway struct {
	mu       sync.Mutex
	sessions []url.Values
	coupons  []url.Values
}

func newFakeGateway(t *testing.T) *fakeGateway {
	g := &fakeGateway{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodPost {
			fmt.Fprint(w, `{"id":"cs_test_123","payment_status":"paid"}`)
			return
		}
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		g.mu.Lock()
		defer g.mu.Unlock()
		if strings.HasSuffix(r.URL.Path, "/coupons") {
			g.coupons = append(g.coupons, form)
			fmt.Fprint(w, `{"id":"co_test_1"}`)
			return
		}
		g.sessions = append(g.sessions, form)
		fmt.Fprint(w, `{"id":"cs_test_123","url":"https://gateway.test/pay/cs_test_123"}`)
	}))
	t.Cleanup(server.Close)
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_dummy")
	t.Setenv("STRIPE_API_URL", server.URL)
	return g
}

func (g *fakeGateway) lastSession(t *testing.T) url.Values {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.sessions) == 0 {
		t.Fatal("no checkout session was created")
	}
	return g.sessions[len(g.sessions)-1]
}

func (g *fakeGateway) lastCoupon(t *testing.T) url.Values {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.coupons) == 0 {
		t.Fatal("no coupon was created")
	}
	return g.coupons[len(g.coupons)-1]
}

func TestPlaceOrderCOD(t *testing.T) {
	router, testDB := setupOrderTestRouter(t, "user-1")
	seedUserWithCart(t, testDB, "user-1", map[string]map[string]int{"p1": {"M": 2}})
	seedCatalogProduct(t, testDB, "p1", 20)

	t.Run("persists a frozen snapshot and clears the cart", func(t *testing.T) {
		recorder := doPost(router, "/order/place", gin.H{
			"items":   []gin.H{{"itemId": "p1", "size": "M", "quantity": 2}},
			"amount":  50,
			"address": testAddress(),
		}, nil)
		assert.Equal(t, http.StatusOK, recorder.Code)

		var order models.Order
		err := testDB.Preload("Items").Where("user_id = ?", "user-1").First(&order).Error
		assert.NoError(t, err)
		// price 20 x 2 + delivery fee 10
		assert.Equal(t, 50.0, order.Amount)
		assert.Equal(t, models.PaymentMethodCOD, order.PaymentMethod)
		assert.False(t, order.Payment)
		assert.Equal(t, models.OrderStatusPlaced, order.Status)
		assert.Len(t, order.Items, 1)
		assert.Equal(t, "Product p1", order.Items[0].Name)
		assert.Equal(t, 20.0, order.Items[0].Price)
		assert.Equal(t, "M", order.Items[0].Size)

		assert.Equal(t, int64(0), cartItemCount(t, testDB, "user-1"))
	})

	t.Run("rejects incomplete address", func(t *testing.T) {
		recorder := doPost(router, "/order/place", gin.H{
			"items":   []gin.H{{"itemId": "p1", "size": "M", "quantity": 1}},
			"amount":  30,
			"address": gin.H{"firstName": "Ada"},
		}, nil)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("rejects empty item list", func(t *testing.T) {
		recorder := doPost(router, "/order/place", gin.H{
			"items":   []gin.H{},
			"amount":  30,
			"address": testAddress(),
		}, nil)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		recorder := doPost(router, "/order/place", gin.H{
			"items":   []gin.H{{"itemId": "missing", "size": "M", "quantity": 1}},
			"amount":  30,
			"address": testAddress(),
		}, nil)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestPlaceOrderDiscounts(t *testing.T) {
	router, testDB := setupOrderTestRouter(t, "user-2")
	seedUserWithCart(t, testDB, "user-2", nil)
	seedCatalogProduct(t, testDB, "p1", 20)

	t.Run("FREESHIP waives the delivery fee", func(t *testing.T) {
		recorder := doPost(router, "/order/place", gin.H{
			"items":        []gin.H{{"itemId": "p1", "size": "M", "quantity": 2}},
			"amount":       40,
			"address":      testAddress(),
			"discountCode": "FREESHIP",
		}, nil)
		assert.Equal(t, http.StatusOK, recorder.Code)

		var order models.Order
		assert.NoError(t, testDB.Where("user_id = ?", "user-2").Order("created_at DESC").First(&order).Error)
		assert.Equal(t, 40.0, order.Amount)
	})

	t.Run("unknown code is rejected with a message, not an error", func(t *testing.T) {
		recorder := doPost(router, "/order/place", gin.H{
			"items":        []gin.H{{"itemId": "p1", "size": "M", "quantity": 1}},
			"amount":       30,
			"address":      testAddress(),
			"discountCode": "BOGUS",
		}, nil)
		assert.Equal(t, http.StatusOK, recorder.Code)

		var response map[string]interface{}
		json.Unmarshal(recorder.Body.Bytes(), &response)
		assert.Equal(t, false, response["success"])
		assert.Equal(t, "Promo code not recognised", response["message"])
	})
}

func TestStripeOrderLifecycle(t *testing.T) {
	newFakeGateway(t)
	router, testDB := setupOrderTestRouter(t, "user-3")
	seedUserWithCart(t, testDB, "user-3", map[string]map[string]int{"p1": {"M": 2}})
	seedCatalogProduct(t, testDB, "p1", 20)

	placeStripeOrder := func() string {
		recorder := doPost(router, "/order/stripe", gin.H{
			"items":   []gin.H{{"itemId": "p1", "size": "M", "quantity": 2}},
			"amount":  50,
			"address": testAddress(),
		}, map[string]string{"Origin": "https://shop.test"})
		assert.Equal(t, http.StatusOK, recorder.Code)

		var response struct {
			Success    bool   `json:"success"`
			SessionURL string `json:"session_url"`
		}
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.True(t, response.Success)
		assert.Contains(t, response.SessionURL, "gateway.test/pay")

		var order models.Order
		assert.NoError(t, testDB.Where("user_id = ?", "user-3").Order("created_at DESC").First(&order).Error)
		return order.ID
	}

	t.Run("placing a gateway order does not clear the cart", func(t *testing.T) {
		orderID := placeStripeOrder()

		var order models.Order
		assert.NoError(t, testDB.First(&order, "id = ?", orderID).Error)
		assert.Equal(t, models.PaymentMethodStripe, order.PaymentMethod)
		assert.False(t, order.Payment)
		assert.Equal(t, "cs_test_123", order.GatewayRef)

		assert.Equal(t, int64(1), cartItemCount(t, testDB, "user-3"))
	})

	t.Run("successful confirmation marks payment and clears the cart", func(t *testing.T) {
		var order models.Order
		assert.NoError(t, testDB.Where("user_id = ?", "user-3").First(&order).Error)

		recorder := doPost(router, "/order/verifyStripe", gin.H{"orderId": order.ID, "success": "true"}, nil)
		assert.Equal(t, http.StatusOK, recorder.Code)

		assert.NoError(t, testDB.First(&order, "id = ?", order.ID).Error)
		assert.True(t, order.Payment)
		assert.Equal(t, int64(0), cartItemCount(t, testDB, "user-3"))
	})

	t.Run("repeated success confirmation is idempotent", func(t *testing.T) {
		var order models.Order
		assert.NoError(t, testDB.Where("user_id = ?", "user-3").First(&order).Error)

		recorder := doPost(router, "/order/verifyStripe", gin.H{"orderId": order.ID, "success": "true"}, nil)
		assert.Equal(t, http.StatusOK, recorder.Code)

		assert.NoError(t, testDB.First(&order, "id = ?", order.ID).Error)
		assert.True(t, order.Payment)
		assert.Equal(t, int64(0), cartItemCount(t, testDB, "user-3"))
	})

	t.Run("failed confirmation deletes the order and leaves the cart", func(t *testing.T) {
		// Refill the cart, then abandon a fresh gateway order.
		cart := models.Cart{}
		assert.NoError(t, testDB.Where("user_id = ?", "user-3").First(&cart).Error)
		assert.NoError(t, testDB.Create(&models.CartItem{
			CartID: cart.CartID, ProductID: "p1", Size: "L", Quantity: 1, AddedAt: time.Now(),
		}).Error)

		orderID := placeStripeOrder()

		recorder := doPost(router, "/order/verifyStripe", gin.H{"orderId": orderID, "success": "false"}, nil)
		assert.Equal(t, http.StatusOK, recorder.Code)

		var count int64
		testDB.Model(&models.Order{}).Where("id = ?", orderID).Count(&count)
		assert.Equal(t, int64(0), count)
		assert.Equal(t, int64(1), cartItemCount(t, testDB, "user-3"))

		// Cancelling again is idempotent.
		recorder = doPost(router, "/order/verifyStripe", gin.H{"orderId": orderID, "success": "false"}, nil)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestStripeSessionPricing(t *testing.T) {
	gateway := newFakeGateway(t)
	router, testDB := setupOrderTestRouter(t, "user-6")
	seedUserWithCart(t, testDB, "user-6", nil)
	seedCatalogProduct(t, testDB, "p1", 20)

	placeWithCode := func(code string) models.Order {
		recorder := doPost(router, "/order/stripe", gin.H{
			"items":        []gin.H{{"itemId": "p1", "size": "M", "quantity": 2}},
			"amount":       50,
			"address":      testAddress(),
			"discountCode": code,
		}, map[string]string{"Origin": "https://shop.test"})
		assert.Equal(t, http.StatusOK, recorder.Code)

		var order models.Order
		assert.NoError(t, testDB.Where("user_id = ?", "user-6").Order("created_at DESC").First(&order).Error)
		return order
	}

	t.Run("waived delivery drops the delivery line", func(t *testing.T) {
		order := placeWithCode("FREESHIP")
		assert.Equal(t, 40.0, order.Amount)

		form := gateway.lastSession(t)
		// 2 x 2000p items, no delivery line, no coupon: 4000p charged.
		assert.Equal(t, "2000", form.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "2", form.Get("line_items[0][quantity]"))
		assert.Empty(t, form.Get("line_items[1][price_data][product_data][name]"))
		assert.Empty(t, form.Get("discounts[0][coupon]"))
	})

	t.Run("flat discount becomes a session coupon", func(t *testing.T) {
		order := placeWithCode("SAVE10")
		assert.Equal(t, 40.0, order.Amount)

		form := gateway.lastSession(t)
		// 4000p items + 1000p delivery - 1000p coupon: 4000p charged.
		assert.Equal(t, "Delivery Charge", form.Get("line_items[1][price_data][product_data][name]"))
		assert.Equal(t, "1000", form.Get("line_items[1][price_data][unit_amount]"))
		assert.Equal(t, "co_test_1", form.Get("discounts[0][coupon]"))
		assert.Equal(t, "1000", gateway.lastCoupon(t).Get("amount_off"))
	})

	t.Run("no code charges items plus delivery", func(t *testing.T) {
		order := placeWithCode("")
		assert.Equal(t, 50.0, order.Amount)

		form := gateway.lastSession(t)
		assert.Equal(t, "Delivery Charge", form.Get("line_items[1][price_data][product_data][name]"))
		assert.Empty(t, form.Get("discounts[0][coupon]"))
	})
}

func TestStripeSessionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Invalid API Key provided"}}`)
	}))
	t.Cleanup(server.Close)
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_bad")
	t.Setenv("STRIPE_API_URL", server.URL)

	router, testDB := setupOrderTestRouter(t, "user-7")
	seedUserWithCart(t, testDB, "user-7", map[string]map[string]int{"p1": {"M": 1}})
	seedCatalogProduct(t, testDB, "p1", 20)

	recorder := doPost(router, "/order/stripe", gin.H{
		"items":   []gin.H{{"itemId": "p1", "size": "M", "quantity": 1}},
		"amount":  30,
		"address": testAddress(),
	}, map[string]string{"Origin": "https://shop.test"})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	// The unpayable order is rolled back and the cart is untouched.
	var count int64
	testDB.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
	assert.Equal(t, int64(1), cartItemCount(t, testDB, "user-7"))
}

func TestUpdateStatus(t *testing.T) {
	router, testDB := setupOrderTestRouter(t, "user-4")
	seedUserWithCart(t, testDB, "user-4", nil)
	seedCatalogProduct(t, testDB, "p1", 20)

	recorder := doPost(router, "/order/place", gin.H{
		"items":   []gin.H{{"itemId": "p1", "size": "M", "quantity": 1}},
		"amount":  30,
		"address": testAddress(),
	}, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var order models.Order
	assert.NoError(t, testDB.Where("user_id = ?", "user-4").First(&order).Error)

	t.Run("accepts every enumerated status", func(t *testing.T) {
		for _, status := range []string{
			"Order Placed", "Packing", "Shipped", "Out for delivery", "Delivered",
		} {
			recorder := doPost(router, "/order/status", gin.H{"orderId": order.ID, "status": status}, nil)
			assert.Equal(t, http.StatusOK, recorder.Code, status)

			var updated models.Order
			assert.NoError(t, testDB.First(&updated, "id = ?", order.ID).Error)
			assert.Equal(t, models.OrderStatus(status), updated.Status)
		}
	})

	t.Run("rejects any other status string", func(t *testing.T) {
		for _, status := range []string{"Cancelled", "shipped", "placed", ""} {
			recorder := doPost(router, "/order/status", gin.H{"orderId": order.ID, "status": status}, nil)
			assert.Equal(t, http.StatusBadRequest, recorder.Code, status)
		}
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		recorder := doPost(router, "/order/status", gin.H{"orderId": "nope", "status": "Shipped"}, nil)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestOrderListing(t *testing.T) {
	router, testDB := setupOrderTestRouter(t, "user-5")
	seedUserWithCart(t, testDB, "user-5", nil)
	seedCatalogProduct(t, testDB, "p1", 20)

	placeAt := func(createdAt time.Time) string {
		order := models.Order{}
		recorder := doPost(router, "/order/place", gin.H{
			"items":   []gin.H{{"itemId": "p1", "size": "M", "quantity": 1}},
			"amount":  30,
			"address": testAddress(),
		}, nil)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.NoError(t, testDB.Where("user_id = ?", "user-5").Order("created_at DESC").First(&order).Error)
		assert.NoError(t, testDB.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("created_at", createdAt).Error)
		return order.ID
	}

	older := placeAt(time.Now().Add(-time.Hour))
	newer := placeAt(time.Now())

	t.Run("user listing is reverse-chronological", func(t *testing.T) {
		recorder := doPost(router, "/order/userorders", gin.H{}, nil)
		assert.Equal(t, http.StatusOK, recorder.Code)

		var response struct {
			Success bool           `json:"success"`
			Orders  []models.Order `json:"orders"`
		}
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Len(t, response.Orders, 2)
		assert.Equal(t, newer, response.Orders[0].ID)
		assert.Equal(t, older, response.Orders[1].ID)
	})

	t.Run("admin listing returns all orders", func(t *testing.T) {
		recorder := doPost(router, "/order/list", gin.H{}, nil)
		assert.Equal(t, http.StatusOK, recorder.Code)

		var response struct {
			Success bool           `json:"success"`
			Orders  []models.Order `json:"orders"`
		}
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Len(t, response.Orders, 2)
	})
}
