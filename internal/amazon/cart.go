package amazon

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/dukerupert/fusionmeals/internal/grocery"
	"github.com/dukerupert/fusionmeals/internal/model"
)

// MaxQuantity caps how many units of one product go into a cart.
const MaxQuantity = 10

var ErrNoMatches = errors.New("No matching products found on Amazon")

type MatchedItem struct {
	ASIN         string            `json:"asin"`
	Title        string            `json:"title"`
	Price        float64           `json:"price"`
	Quantity     int               `json:"quantity"`
	OriginalItem model.GroceryItem `json:"original_item"`
}

type Cart struct {
	CartID       string        `json:"cart_id"`
	CheckoutURL  string        `json:"checkout_url"`
	ItemCount    int           `json:"item_count"`
	TotalPrice   float64       `json:"total_price"`
	MatchedItems []MatchedItem `json:"matched_items"`
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
}

// Client builds Amazon carts. Carts are never submitted upstream; the
// checkout URL only carries the generated cart id.
type Client struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger.With("component", "amazon"), now: time.Now}
}

// CheckoutQuantity is the whole part of the first number in a free-text
// quantity, clamped to 1..MaxQuantity.
func CheckoutQuantity(quantity string) int {
	n := int(grocery.QuantityNumber(quantity))
	return min(max(n, 1), MaxQuantity)
}

// SearchCategory picks the product category for a grocery category.
func SearchCategory(category string) string {
	switch category {
	case grocery.Produce, grocery.MeatSeafood:
		return CategoryGroceryFresh
	}
	return CategoryGrocery
}

// Checkout matches each grocery item to its first catalog product and
// builds a cart. Placeholder lines are skipped.
func (c *Client) Checkout(items []model.GroceryItem, userToken string) (*Cart, error) {
	var matched []MatchedItem
	for _, item := range items {
		if grocery.IsPlaceholder(item.Name) {
			continue
		}
		qty := CheckoutQuantity(item.Quantity)
		products := Search(item.Name, SearchCategory(item.Category))
		if len(products) == 0 {
			c.logger.Warn("no amazon match", "item", item.Name)
			continue
		}
		best := products[0]
		matched = append(matched, MatchedItem{
			ASIN:     best.ASIN,
			Title:    best.Title,
			Price:    best.Price,
			Quantity: qty,
			OriginalItem: model.GroceryItem{
				Name:     item.Name,
				Quantity: fmt.Sprint(qty),
				Category: item.Category,
			},
		})
		c.logger.Debug("matched amazon product", "item", item.Name, "asin", best.ASIN)
	}
	if len(matched) == 0 {
		return nil, ErrNoMatches
	}
	return c.CreateCart(matched, userToken), nil
}

// CreateCart totals the matched items into a cart.
func (c *Client) CreateCart(items []MatchedItem, userToken string) *Cart {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	id := fmt.Sprintf("amazon_cart_%d", c.now().Unix())
	c.logger.Info("created amazon cart", "cart_id", id, "items", len(items), "signed_in", userToken != "")
	return &Cart{
		CartID:       id,
		CheckoutURL:  "https://www.amazon.com/gp/cart/view.html?ref_=nav_cart&cart_id=" + id,
		ItemCount:    len(items),
		TotalPrice:   math.Round(total*100) / 100,
		MatchedItems: items,
		Success:      true,
		Message:      "Cart created successfully. You can now proceed to checkout.",
	}
}
