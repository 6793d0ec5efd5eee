package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/Ags961/Arambam-eCommerce/controllers/cart"
	"github.com/Ags961/Arambam-eCommerce/middleware"
)

// SetupCartRoutes registers the "/cart/*" endpoints. All of them
// require a user token.
func SetupCartRoutes(r *gin.Engine, db *gorm.DB) {
	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.ValidateToken)
	{
		cartGroup.POST("/add", cartControllers.AddToCart(db))
		cartGroup.POST("/update", cartControllers.UpdateCart(db))
		cartGroup.POST("/get", cartControllers.GetUserCart(db))
	}
}
