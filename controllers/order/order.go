package orderControllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	cartControllers "github.com/Ags961/Arambam-eCommerce/controllers/cart"
	"github.com/Ags961/Arambam-eCommerce/events"
	"github.com/Ags961/Arambam-eCommerce/models"
	"github.com/Ags961/Arambam-eCommerce/notifier"
	"github.com/Ags961/Arambam-eCommerce/payment"
	"github.com/Ags961/Arambam-eCommerce/pricing"
)

// -------- Request Structs --------

type OrderItemRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Size     string `json:"size" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type PlaceOrderRequest struct {
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Amount       float64            `json:"amount" binding:"required,gt=0"`
	Address      models.Address     `json:"address"`
	DiscountCode string             `json:"discountCode"`
}

type VerifyStripeRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Success string `json:"success" binding:"required"` // "true" or "false", from the redirect
}

type UpdateStatusRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// -------- Helpers --------

var errProductNotFound = errors.New("product not found")

type discountRejected string

func (d discountRejected) Error() string { return string(d) }

// mapOrderStatus validates an admin-supplied status against the
// enumerated set.
func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch models.OrderStatus(status) {
	case models.OrderStatusPlaced,
		models.OrderStatusPacking,
		models.OrderStatusShipped,
		models.OrderStatusOutForDelivery,
		models.OrderStatusDelivered:
		return models.OrderStatus(status), nil
	default:
		return "", errors.New("invalid order status")
	}
}

// enrichItems re-fetches the authoritative product record for every
// requested line instead of trusting client-supplied pricing. Returns
// the frozen snapshots and their subtotal.
func enrichItems(tx *gorm.DB, items []OrderItemRequest) ([]models.OrderItem, float64, error) {
	var enriched []models.OrderItem
	var subtotal float64
	for _, item := range items {
		var product models.Product
		if err := tx.First(&product, "id = ?", item.ItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, fmt.Errorf("%w: %s", errProductNotFound, item.ItemID)
			}
			return nil, 0, err
		}
		subtotal += product.Price * float64(item.Quantity)
		enriched = append(enriched, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Image:     product.FirstImage(),
		})
	}
	return enriched, subtotal, nil
}

// buildOrder runs the shared creation steps: enrich the item list,
// price the order server-side and persist it with initial status. The
// pricing session is returned so gateway checkout can charge the same
// breakdown it recorded.
func buildOrder(tx *gorm.DB, userID string, req PlaceOrderRequest, method models.PaymentMethod) (models.Order, *pricing.Session, error) {
	items, subtotal, err := enrichItems(tx, req.Items)
	if err != nil {
		return models.Order{}, nil, err
	}

	session := pricing.NewSession(subtotal)
	if req.DiscountCode != "" {
		if msg, ok := session.Apply(req.DiscountCode); !ok {
			return models.Order{}, nil, discountRejected(msg)
		}
	}

	order := models.Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		Items:         items,
		Address:       req.Address,
		Amount:        session.Total(),
		PaymentMethod: method,
		Payment:       false,
		Status:        models.OrderStatusPlaced,
		CreatedAt:     time.Now(),
	}
	if err := tx.Create(&order).Error; err != nil {
		return models.Order{}, nil, err
	}
	return order, session, nil
}

func respondOrderError(c *gin.Context, err error) {
	var rejected discountRejected
	switch {
	case errors.Is(err, errProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
	case errors.As(err, &rejected):
		c.JSON(http.StatusOK, gin.H{"success": false, "message": rejected.Error()})
	default:
		log.Println("order creation failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
	}
}

// sendConfirmation is a seam so tests can observe the email hook
// without reaching SES.
var sendConfirmation = func(order models.Order) {
	_ = notifier.SendOrderConfirmation(order.Address.Email, order.Address.FirstName, order.ID, order.Amount)
}

func notifyOrderPlaced(order models.Order) {
	if !notifier.Configured() {
		return
	}
	go sendConfirmation(order)
}

// -------- Handlers --------

// POST /order/place
//
// Cash-on-Delivery checkout: the order is terminal-success at creation
// and the cart is cleared in the same transaction.
func PlaceOrder(db *gorm.DB, pub *events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields"})
			return
		}
		if !req.Address.Complete() {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Incomplete delivery address"})
			return
		}

		var order models.Order
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			order, _, err = buildOrder(tx, userID, req, models.PaymentMethodCOD)
			if err != nil {
				return err
			}
			return cartControllers.ClearCart(tx, userID)
		})
		if err != nil {
			respondOrderError(c, err)
			return
		}

		broadcastOrderEvent("order.placed", order)
		pub.OrderPlaced(order)
		notifyOrderPlaced(order)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order Placed"})
	}
}

// POST /order/stripe
//
// Gateway checkout: the order is persisted unpaid and the caller is
// redirected to the checkout session. The cart is NOT cleared until the
// payment is confirmed.
func PlaceOrderStripe(db *gorm.DB, pub *events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		origin := c.GetHeader("Origin")
		if origin == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields"})
			return
		}

		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields"})
			return
		}
		if !req.Address.Complete() {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Incomplete delivery address"})
			return
		}

		var order models.Order
		var session *pricing.Session
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			order, session, err = buildOrder(tx, userID, req, models.PaymentMethodStripe)
			return err
		})
		if err != nil {
			respondOrderError(c, err)
			return
		}

		sessionURL, sessionRef, err := payment.CreateCheckoutSession(
			order.Items, session.Delivery(), session.Discount(), origin, order.ID)
		if err != nil {
			// No session means the payment was abandoned before it
			// could start; don't keep an unpayable order around.
			log.Println("stripe session creation failed:", err)
			if delErr := db.Select("Items").Delete(&order).Error; delErr != nil {
				log.Println("failed to roll back unpaid order:", delErr)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Stripe Payment Failed"})
			return
		}

		if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("gateway_ref", sessionRef).Error; err != nil {
			log.Println("failed to record gateway ref:", err)
		}

		broadcastOrderEvent("order.placed", order)
		pub.OrderPlaced(order)

		c.JSON(http.StatusOK, gin.H{"success": true, "session_url": sessionURL})
	}
}

// POST /order/verifyStripe
//
// Redirect callback after checkout. Confirmation and rollback are both
// idempotent: re-confirming a paid order or re-cancelling a deleted one
// succeeds without side effects.
func VerifyStripe(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var req VerifyStripeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields"})
			return
		}

		if req.Success != "true" {
			// Abandoned payment: the order record goes away entirely,
			// the cart stays untouched.
			if err := db.Select("Items").Delete(&models.Order{ID: req.OrderID}).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": false})
			return
		}

		var order models.Order
		if err := db.First(&order, "id = ?", req.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}

		// The redirect flag is client-supplied and spoofable; when the
		// gateway is configured, re-check the session's payment status
		// server-side before confirming.
		if payment.Configured() && order.GatewayRef != "" {
			paid, err := payment.SessionPaid(order.GatewayRef)
			if err != nil {
				log.Println("stripe verification failed:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Payment verification failed"})
				return
			}
			if !paid {
				c.JSON(http.StatusOK, gin.H{"success": false, "message": "Payment not completed"})
				return
			}
		}

		alreadyPaid := order.Payment
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Order{}).Where("id = ?", req.OrderID).
				Update("payment", true).Error; err != nil {
				return err
			}
			return cartControllers.ClearCart(tx, userID)
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}

		// Email once, on the transition to paid; re-confirmations stay
		// silent.
		if !alreadyPaid {
			order.Payment = true
			notifyOrderPlaced(order)
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// POST /order/userorders
func UserOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var orders []models.Order
		if err := db.
			Where("user_id = ?", userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
	}
}

// POST /order/list (admin)
func AllOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
	}
}

// POST /order/status (admin)
func UpdateStatus(db *gorm.DB, pub *events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields"})
			return
		}

		newStatus, err := mapOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		result := db.Model(&models.Order{}).Where("id = ?", req.OrderID).Update("status", newStatus)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update order status"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
			return
		}

		var order models.Order
		if err := db.Preload("Items").First(&order, "id = ?", req.OrderID).Error; err == nil {
			broadcastOrderEvent("order.status", order)
		}
		pub.OrderStatusChanged(req.OrderID, newStatus)

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order status updated"})
	}
}
