package models

import "time"

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	UserID    string     `gorm:"uniqueIndex" json:"user_id"` // Enforces ONE cart per user
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is one ledger line: (cart, product, size) -> quantity.
// The composite unique index lets add-to-cart run as a single
// conflict-upsert increment instead of a read-modify-write.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"uniqueIndex:idx_cart_product_size" json:"cart_id"`
	ProductID string    `gorm:"uniqueIndex:idx_cart_product_size" json:"product_id"`
	Size      string    `gorm:"uniqueIndex:idx_cart_product_size" json:"size"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Data flattens the items into the {productId: {size: quantity}} shape
// the storefront consumes.
func (c *Cart) Data() map[string]map[string]int {
	data := make(map[string]map[string]int)
	for _, item := range c.Items {
		if item.Quantity <= 0 {
			continue
		}
		if data[item.ProductID] == nil {
			data[item.ProductID] = make(map[string]int)
		}
		data[item.ProductID][item.Size] = item.Quantity
	}
	return data
}
