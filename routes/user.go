package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	userControllers "github.com/Ags961/Arambam-eCommerce/controllers/user"
)

// SetupUserRoutes registers the public "/user/*" auth endpoints.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB) {
	userGroup := r.Group("/user")
	{
		userGroup.POST("/register", userControllers.RegisterUser(db))
		userGroup.POST("/login", userControllers.LoginUser(db))
		userGroup.POST("/admin", userControllers.AdminLogin())
	}
}
