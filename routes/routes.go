package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Ags961/Arambam-eCommerce/events"
)

// SetupRoutes is the single entry-point that wires up the user, cart,
// order and product route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, pub *events.Publisher) {
	SetupUserRoutes(r, db)
	SetupCartRoutes(r, db)
	SetupOrderRoutes(r, db, pub)
	SetupProductRoutes(r, db)
}
