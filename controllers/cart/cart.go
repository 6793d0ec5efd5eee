package cartControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ags961/Arambam-eCommerce/models"
)

type AddToCartRequest struct {
	ItemID string `json:"itemId" binding:"required"`
	Size   string `json:"size" binding:"required"`
}

type UpdateCartRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Size     string `json:"size" binding:"required"`
	Quantity *int   `json:"quantity" binding:"required,gte=0"` // pointer so 0 binds
}

// userCart resolves the caller's ledger, creating an empty one if the
// user exists but has no cart row yet.
func userCart(db *gorm.DB, userID string) (*models.Cart, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	var cart models.Cart
	if err := db.Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// POST /cart/add
//
// Increments the (product, size) line by 1, creating it when absent.
// The increment is a single conflict-upsert so concurrent adds from the
// same user never lose updates.
func AddToCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var req AddToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields"})
			return
		}

		var product models.Product
		if err := db.First(&product, "id = ?", req.ItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}

		cart, err := userCart(db, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}

		item := models.CartItem{
			CartID:    cart.CartID,
			ProductID: req.ItemID,
			Size:      req.Size,
			Quantity:  1,
			AddedAt:   time.Now(),
		}
		err = db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}, {Name: "size"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("quantity + 1"),
				"added_at": time.Now(),
			}),
		}).Create(&item).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to add item to cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Added to cart"})
	}
}

// POST /cart/update
//
// Sets an absolute quantity. Zero removes the line; setting a quantity
// for a line that doesn't exist yet creates it.
func UpdateCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var req UpdateCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields"})
			return
		}

		cart, err := userCart(db, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}

		if *req.Quantity == 0 {
			// Quantity zero means the line is gone; removing an absent
			// line is a no-op.
			err = db.Where("cart_id = ? AND product_id = ? AND size = ?",
				cart.CartID, req.ItemID, req.Size).Delete(&models.CartItem{}).Error
		} else {
			item := models.CartItem{
				CartID:    cart.CartID,
				ProductID: req.ItemID,
				Size:      req.Size,
				Quantity:  *req.Quantity,
				AddedAt:   time.Now(),
			}
			err = db.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}, {Name: "size"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity": *req.Quantity,
					"added_at": time.Now(),
				}),
			}).Create(&item).Error
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update cart item"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart updated"})
	}
}

// POST /cart/get
func GetUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}

		var cart models.Cart
		err := db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "cartData": cart.Data()})
	}
}

// ClearCart empties the user's ledger. Invoked once per successful
// checkout or payment confirmation; clearing an already-empty cart is a
// no-op, which keeps payment confirmation idempotent.
func ClearCart(db *gorm.DB, userID string) error {
	var cart models.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return db.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error
}
