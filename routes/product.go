package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	productControllers "github.com/Ags961/Arambam-eCommerce/controllers/product"
	"github.com/Ags961/Arambam-eCommerce/middleware"
)

func SetupProductRoutes(r *gin.Engine, db *gorm.DB) {
	products := r.Group("/product")
	{
		// Public catalog
		products.GET("/list", productControllers.ListProducts(db))
		products.POST("/single", productControllers.SingleProduct(db))

		// Admin catalog management
		products.POST("/add", middleware.ValidateAdminToken, productControllers.AddProduct(db))
		products.POST("/edit", middleware.ValidateAdminToken, productControllers.EditProduct(db))
		products.POST("/remove", middleware.ValidateAdminToken, productControllers.RemoveProduct(db))
		products.GET("/export-excel", middleware.ValidateAdminToken, productControllers.ExportProductsToExcel(db))
	}
}
