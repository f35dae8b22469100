package grocery

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dukerupert/fusionmeals/internal/model"
)

// DeliveryService describes a grocery delivery partner.
type DeliveryService struct {
	Available    bool   `json:"available"`
	DeliveryTime string `json:"delivery_time"`
	DeliveryFee  string `json:"delivery_fee"`
	MinOrder     string `json:"min_order"`
}

// CartQuote is the priced result of adding a grocery list to a cart.
type CartQuote struct {
	Message           string                     `json:"message"`
	CartID            string                     `json:"cart_id"`
	ItemCount         int                        `json:"item_count"`
	EstimatedTotal    float64                    `json:"estimated_total"`
	SupportedServices map[string]DeliveryService `json:"supported_services"`
	EstimatedPrices   map[string]float64         `json:"estimated_prices"`
	NextSteps         []string                   `json:"next_steps"`
}

var basePrices = map[string]float64{
	Produce:          2.99,
	MeatSeafood:      7.99,
	DairyEggs:        3.99,
	Pantry:           4.99,
	SpicesSeasonings: 3.49,
	Beverages:        4.29,
}

const defaultBasePrice = 3.99

var firstNumber = regexp.MustCompile(`(\d+\.?\d*)`)

func deliveryServices() map[string]DeliveryService {
	return map[string]DeliveryService{
		"Instacart":       {Available: true, DeliveryTime: "1-2 hours", DeliveryFee: "$3.99", MinOrder: "$10.00"},
		"Walmart Grocery": {Available: true, DeliveryTime: "Same day or next day", DeliveryFee: "$7.95", MinOrder: "$35.00"},
		"Amazon Fresh":    {Available: true, DeliveryTime: "2-hour delivery window", DeliveryFee: "Free with Prime", MinOrder: "$35.00"},
		"Local Stores":    {Available: false, DeliveryTime: "Coming soon", DeliveryFee: "Varies", MinOrder: "Varies"},
	}
}

// QuantityNumber returns the first number in a free-text quantity, or 1.
func QuantityNumber(quantity string) float64 {
	m := firstNumber.FindString(quantity)
	if m == "" {
		return 1
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 1
	}
	return f
}

// EstimatePrice prices one grocery line from its category and quantity.
// Kilogram quantities are converted to pounds first.
func EstimatePrice(item model.GroceryItem) float64 {
	q := strings.ToLower(item.Quantity)
	n := QuantityNumber(q)
	if strings.Contains(q, "kg") || strings.Contains(q, "kilo") {
		n *= 2.2
	}
	base, ok := basePrices[item.Category]
	if !ok {
		base = defaultBasePrice
	}
	return roundCents(base * n)
}

// PriceCart prices every real item in the list and assigns a cart id.
func PriceCart(items []model.GroceryItem) CartQuote {
	prices := make(map[string]float64)
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
		if IsPlaceholder(it.Name) {
			continue
		}
		prices[it.Name] = EstimatePrice(it)
	}

	total := 0.0
	for _, p := range prices {
		total += p
	}

	return CartQuote{
		Message:           "Items added to cart successfully",
		CartID:            CartID(names),
		ItemCount:         len(prices),
		EstimatedTotal:    roundCents(total),
		SupportedServices: deliveryServices(),
		EstimatedPrices:   prices,
		NextSteps: []string{
			"Review your cart and make any adjustments",
			"Select a delivery service",
			"Proceed to checkout",
		},
	}
}

// CartID derives a stable cart id from item names.
func CartID(names []string) string {
	sum := sha256.Sum256([]byte(strings.Join(names, "")))
	return "cart_" + hex.EncodeToString(sum[:])[:8]
}

func roundCents(f float64) float64 {
	return math.Round(f*100) / 100
}
