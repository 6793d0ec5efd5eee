package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ags961/Arambam-eCommerce/auth"
)

// ValidateAdminToken guards admin endpoints. Admin tokens carry only an
// admin flag, no identity; a valid user token without the flag is
// forbidden rather than unauthorized.
func ValidateAdminToken(c *gin.Context) {
	tokenString := c.GetHeader("token")
	if tokenString == "" {
		log.Println("admin auth: no credential presented")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Access denied. Token not provided."})
		c.Abort()
		return
	}

	claims, err := auth.ParseToken(tokenString)
	if err != nil {
		log.Printf("admin auth: credential rejected: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized. Invalid or expired token."})
		c.Abort()
		return
	}

	if isAdmin, _ := claims["admin"].(bool); !isAdmin {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Access forbidden. Admins only."})
		c.Abort()
		return
	}

	c.Next()
}
