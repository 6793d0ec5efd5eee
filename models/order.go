package models

import "time"

type OrderStatus string
type PaymentMethod string

const (
	// Fulfilment statuses, in the order the admin panel walks them.
	// Transitions are deliberately unvalidated beyond membership in this
	// set; the admin may move an order to any of the five values.
	OrderStatusPlaced         OrderStatus = "Order Placed"
	OrderStatusPacking        OrderStatus = "Packing"
	OrderStatusShipped        OrderStatus = "Shipped"
	OrderStatusOutForDelivery OrderStatus = "Out for delivery"
	OrderStatusDelivered      OrderStatus = "Delivered"

	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodStripe PaymentMethod = "Stripe"
)

type Order struct {
	ID            string        `gorm:"primaryKey" json:"id"`
	UserID        string        `gorm:"not null;index" json:"userId"`
	Items         []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Address       Address       `gorm:"embedded;embeddedPrefix:addr_" json:"address"`
	Amount        float64       `json:"amount"`
	PaymentMethod PaymentMethod `gorm:"type:VARCHAR(10)" json:"paymentMethod"`
	Payment       bool          `gorm:"default:false" json:"payment"`
	Status        OrderStatus   `gorm:"type:VARCHAR(20);default:'Order Placed'" json:"status"`
	GatewayRef    string        `json:"-"` // checkout session reference, gateway orders only
	CreatedAt     time.Time     `json:"date"`
}

// OrderItem is a snapshot taken at order-creation time. Later product
// edits must not retroactively alter historical orders.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"-"`
	OrderID   string  `gorm:"index" json:"-"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
	Image     string  `json:"image"`
}

type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// Complete reports whether every delivery field is present.
func (a Address) Complete() bool {
	return a.FirstName != "" && a.Email != "" && a.Street != "" &&
		a.City != "" && a.State != "" && a.Zipcode != "" &&
		a.Country != "" && a.Phone != ""
}
