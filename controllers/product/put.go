package productControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ags961/Arambam-eCommerce/models"
)

// POST /product/edit (admin, multipart)
//
// The identifier is immutable; everything else is replaced from the
// form. Images are only replaced when new files are present.
func EditProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID := c.PostForm("productId")
		if productID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "productId is required"})
			return
		}

		var existing models.Product
		if err := db.First(&existing, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}

		updated, err := parseProductForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		images, err := saveProductImages(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}

		existing.Name = updated.Name
		existing.Description = updated.Description
		existing.Price = updated.Price
		existing.Category = updated.Category
		existing.SubCategory = updated.SubCategory
		existing.Sizes = updated.Sizes
		existing.Bestseller = updated.Bestseller
		existing.Sale = updated.Sale
		if len(images) > 0 {
			existing.Images = images
		}

		if err := db.Save(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update product"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product Updated Successfully"})
	}
}
