// Package pricing computes cart and order totals from ledger and
// catalog snapshots. Everything here is pure; persistence and HTTP stay
// in the controllers.
package pricing

const (
	// DeliveryFee is the flat charge added to every non-empty order.
	DeliveryFee = 10.0
	// Currency is the single settlement currency (ISO 4217, lower case
	// as the gateway expects it).
	Currency = "gbp"
)

// Discount is the value behind a promo code: a flat amount off, a
// waived delivery fee, or both.
type Discount struct {
	Amount        float64
	WaiveDelivery bool
}

// Fixed promo table. Codes are matched verbatim.
var discountCodes = map[string]Discount{
	"SAVE10":   {Amount: 10},
	"FREESHIP": {WaiveDelivery: true},
}

// CartTotal sums price x quantity over every ledger line, looking
// prices up in the catalog snapshot. Lines whose product is missing
// from the catalog (deleted after being added to a cart) contribute
// zero; stale lines are tolerated silently.
func CartTotal(cart map[string]map[string]int, catalog map[string]float64) float64 {
	var total float64
	for productID, sizes := range cart {
		price, ok := catalog[productID]
		if !ok {
			continue
		}
		for _, quantity := range sizes {
			if quantity <= 0 {
				continue
			}
			total += price * float64(quantity)
		}
	}
	return total
}

// OrderTotal is the amount charged for an order. An empty cart never
// incurs a delivery fee, and a discount can never push the total below
// zero.
func OrderTotal(subtotal, deliveryFee, discount float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	total := subtotal + deliveryFee - discount
	if total < 0 {
		return 0
	}
	return total
}

// Session prices one checkout. Codes apply at most once per session.
type Session struct {
	subtotal    float64
	deliveryFee float64
	discount    float64
	applied     map[string]bool
}

func NewSession(subtotal float64) *Session {
	return &Session{
		subtotal:    subtotal,
		deliveryFee: DeliveryFee,
		applied:     make(map[string]bool),
	}
}

// Apply redeems a promo code against the session. Unknown or repeated
// codes are rejected with a message, not an error.
func (s *Session) Apply(code string) (string, bool) {
	if s.applied[code] {
		return "Promo code already applied", false
	}
	discount, ok := discountCodes[code]
	if !ok {
		return "Promo code not recognised", false
	}
	s.applied[code] = true
	s.discount += discount.Amount
	if discount.WaiveDelivery {
		s.deliveryFee = 0
	}
	return "Promo code applied", true
}

// Delivery returns the fee the session will charge, zero when waived.
func (s *Session) Delivery() float64 {
	return s.deliveryFee
}

// Discount returns the accumulated flat discount.
func (s *Session) Discount() float64 {
	return s.discount
}

func (s *Session) Total() float64 {
	return OrderTotal(s.subtotal, s.deliveryFee, s.discount)
}
