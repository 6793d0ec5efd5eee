package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ags961/Arambam-eCommerce/auth"
)

// ValidateToken guards end-user endpoints. The bearer credential
// arrives in the "token" header and resolves to a userId, which is
// attached to the request context. Missing and invalid credentials get
// the same rejection class but are logged distinctly.
func ValidateToken(c *gin.Context) {
	tokenString := c.GetHeader("token")
	if tokenString == "" {
		log.Println("auth: no credential presented")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required. Please log in."})
		c.Abort()
		return
	}

	claims, err := auth.ParseToken(tokenString)
	if err != nil {
		log.Printf("auth: credential rejected: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token. Please re-authenticate."})
		c.Abort()
		return
	}

	userID, ok := claims["id"].(string)
	if !ok || userID == "" {
		log.Println("auth: credential carries no user id")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token. Please re-authenticate."})
		c.Abort()
		return
	}

	c.Set("user_id", userID)
	c.Next()
}
