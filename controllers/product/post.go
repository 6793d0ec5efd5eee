package productControllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ags961/Arambam-eCommerce/models"
)

// imageFields are the multipart file slots the admin panel submits.
var imageFields = []string{"image1", "image2", "image3", "image4"}

func uploadsDir() string {
	if dir := os.Getenv("UPLOADS_DIR"); dir != "" {
		return dir
	}
	return "./uploads"
}

func mapCategory(category string) (models.ProductCategory, error) {
	switch models.ProductCategory(category) {
	case models.CategoryMen, models.CategoryWomen, models.CategoryKids:
		return models.ProductCategory(category), nil
	default:
		return "", errors.New("invalid category")
	}
}

// parseProductForm reads the shared multipart fields for add/edit.
func parseProductForm(c *gin.Context) (models.Product, error) {
	name := c.PostForm("name")
	description := c.PostForm("description")
	priceStr := c.PostForm("price")
	if name == "" || description == "" || priceStr == "" {
		return models.Product{}, errors.New("name, description and price are required")
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price < 0 {
		return models.Product{}, errors.New("invalid price")
	}

	category, err := mapCategory(c.PostForm("category"))
	if err != nil {
		return models.Product{}, err
	}

	var sizes []string
	if sizesStr := c.PostForm("sizes"); sizesStr != "" {
		if err := json.Unmarshal([]byte(sizesStr), &sizes); err != nil {
			return models.Product{}, errors.New("invalid sizes format")
		}
	}

	return models.Product{
		Name:        name,
		Description: description,
		Price:       price,
		Category:    category,
		SubCategory: c.PostForm("subCategory"),
		Sizes:       sizes,
		Bestseller:  c.PostForm("bestseller") == "true",
		Sale:        c.PostForm("sale") == "true",
	}, nil
}

// saveProductImages stores up to 4 uploaded images under the uploads
// dir and returns their public URLs. Forwarding to the image host is a
// single pass; a failed save aborts the whole operation.
func saveProductImages(c *gin.Context) ([]string, error) {
	var files []*multipart.FileHeader
	for _, field := range imageFields {
		if file, err := c.FormFile(field); err == nil && file != nil {
			files = append(files, file)
		}
	}

	saveDir := filepath.Join(uploadsDir(), "products")
	if err := os.MkdirAll(saveDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create upload folder: %v", err)
	}

	var urls []string
	for _, file := range files {
		filename := uuid.NewString() + "_" + strings.ReplaceAll(filepath.Base(file.Filename), " ", "_")
		if err := c.SaveUploadedFile(file, filepath.Join(saveDir, filename)); err != nil {
			return nil, fmt.Errorf("failed to save image: %v", err)
		}
		urls = append(urls, "/uploads/products/"+filename)
	}
	return urls, nil
}

// POST /product/add (admin, multipart)
func AddProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := parseProductForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		images, err := saveProductImages(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}
		if len(images) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "At least one image is required"})
			return
		}

		product.ID = uuid.NewString()
		product.Images = images
		product.CreatedAt = time.Now()

		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create product"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product Added"})
	}
}
