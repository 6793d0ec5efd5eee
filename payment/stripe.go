// Package payment talks to the Stripe Checkout API. The integration is
// a plain HTTP client: build the form payload, post it, surface the
// gateway's own error message when it rejects us.
package payment

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/Ags961/Arambam-eCommerce/models"
	"github.com/Ags961/Arambam-eCommerce/pricing"
)

const defaultAPIURL = "https://api.stripe.com/v1"

type stripeResponse struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
	Error         *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Configured reports whether gateway credentials are present.
func Configured() bool {
	return os.Getenv("STRIPE_SECRET_KEY") != ""
}

func apiURL() string {
	if u := os.Getenv("STRIPE_API_URL"); u != "" {
		return strings.TrimRight(u, "/")
	}
	return defaultAPIURL
}

// CreateCheckoutSession creates a Checkout session for the enriched
// order items, and returns the redirect URL and the session reference.
// The session charges exactly what the order records: the delivery-fee
// line is added only when a fee applies, and a flat discount is turned
// into a one-off coupon on the session. The caller is sent back to
// origin/verify with the order id and a success flag.
func CreateCheckoutSession(items []models.OrderItem, deliveryFee, discount float64, origin, orderID string) (string, string, error) {
	secretKey := os.Getenv("STRIPE_SECRET_KEY")
	if secretKey == "" {
		return "", "", fmt.Errorf("stripe configuration missing")
	}

	form := url.Values{}
	for i, item := range items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", pricing.Currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.Itoa(int(math.Round(item.Price*100))))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}
	if deliveryFee > 0 {
		prefix := fmt.Sprintf("line_items[%d]", len(items))
		form.Set(prefix+"[price_data][currency]", pricing.Currency)
		form.Set(prefix+"[price_data][product_data][name]", "Delivery Charge")
		form.Set(prefix+"[price_data][unit_amount]", strconv.Itoa(int(math.Round(deliveryFee*100))))
		form.Set(prefix+"[quantity]", "1")
	}
	if discount > 0 {
		coupon, err := createCoupon(secretKey, discount)
		if err != nil {
			return "", "", err
		}
		form.Set("discounts[0][coupon]", coupon)
	}

	form.Set("mode", "payment")
	form.Set("success_url", fmt.Sprintf("%s/verify?success=true&orderId=%s", origin, orderID))
	form.Set("cancel_url", fmt.Sprintf("%s/verify?success=false&orderId=%s", origin, orderID))

	req, err := http.NewRequest(http.MethodPost, apiURL()+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	session, err := doRequest(req)
	if err != nil {
		return "", "", err
	}
	if session.URL == "" {
		return "", "", fmt.Errorf("stripe returned empty session URL")
	}
	return session.URL, session.ID, nil
}

// createCoupon registers a one-off flat-amount coupon so the session
// total matches the discounted order amount.
func createCoupon(secretKey string, amount float64) (string, error) {
	form := url.Values{}
	form.Set("amount_off", strconv.Itoa(int(math.Round(amount*100))))
	form.Set("currency", pricing.Currency)
	form.Set("duration", "once")

	req, err := http.NewRequest(http.MethodPost, apiURL()+"/coupons", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	coupon, err := doRequest(req)
	if err != nil {
		return "", err
	}
	if coupon.ID == "" {
		return "", fmt.Errorf("stripe returned empty coupon id")
	}
	return coupon.ID, nil
}

// SessionPaid asks the gateway whether the checkout session has
// actually been paid, rather than trusting the redirect flag.
func SessionPaid(sessionID string) (bool, error) {
	secretKey := os.Getenv("STRIPE_SECRET_KEY")
	if secretKey == "" {
		return false, fmt.Errorf("stripe configuration missing")
	}

	req, err := http.NewRequest(http.MethodGet, apiURL()+"/checkout/sessions/"+sessionID, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+secretKey)

	session, err := doRequest(req)
	if err != nil {
		return false, err
	}
	return session.PaymentStatus == "paid", nil
}

func doRequest(req *http.Request) (*stripeResponse, error) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach Stripe: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var session stripeResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to parse Stripe response: %v", err)
	}
	if session.Error != nil {
		return nil, fmt.Errorf("stripe error: %s", session.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stripe API error (%d): %s", resp.StatusCode, string(body))
	}
	return &session, nil
}
