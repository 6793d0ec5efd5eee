package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/Ags961/Arambam-eCommerce/controllers/order"
	"github.com/Ags961/Arambam-eCommerce/events"
	"github.com/Ags961/Arambam-eCommerce/middleware"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB, pub *events.Publisher) {
	orders := r.Group("/order")
	{
		// Admin panel
		orders.POST("/list", middleware.ValidateAdminToken, orderControllers.AllOrders(db))
		orders.POST("/status", middleware.ValidateAdminToken, orderControllers.UpdateStatus(db, pub))

		// Storefront checkout
		orders.POST("/place", middleware.ValidateToken, orderControllers.PlaceOrder(db, pub))
		orders.POST("/stripe", middleware.ValidateToken, orderControllers.PlaceOrderStripe(db, pub))
		orders.POST("/verifyStripe", middleware.ValidateToken, orderControllers.VerifyStripe(db))
		orders.POST("/userorders", middleware.ValidateToken, orderControllers.UserOrders(db))

		// Real-time feed for the admin panel
		orders.GET("/ws", orderControllers.OrderFeed)
	}
}
