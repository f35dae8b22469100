// Package amazon is the Amazon Fresh integration: product search and cart
// creation against a canned catalog, and Login with Amazon.
package amazon

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	CategoryGrocery      = "Grocery"
	CategoryGroceryFresh = "GroceryFresh"
)

type Product struct {
	ASIN            string  `json:"asin"`
	Title           string  `json:"title"`
	Price           float64 `json:"price"`
	ImageURL        string  `json:"image_url"`
	DetailURL       string  `json:"detail_url"`
	Availability    string  `json:"availability"`
	QuantityOptions []int   `json:"quantity_options"`
}

func product(asin, title string, price float64, image string) Product {
	return Product{
		ASIN:            asin,
		Title:           title,
		Price:           price,
		ImageURL:        "https://m.media-amazon.com/images/I/" + image + "._SL1500_.jpg",
		DetailURL:       "https://www.amazon.com/dp/" + asin,
		Availability:    "In Stock",
		QuantityOptions: []int{1, 2, 3, 4, 5},
	}
}

type catalogEntry struct {
	keyword  string
	products []Product
}

// catalog entries are matched by substring in order; every match contributes.
var catalog = []catalogEntry{
	{"spinach", []Product{
		product("B07JLF9NB7", "Fresh Brand – Organic Baby Spinach, 16 oz", 4.99, "71S+8RKViyL"),
		product("B074H6X6K7", "365 by Whole Foods Market, Organic Baby Spinach, 16 Ounce", 5.49, "71pZ36LNX+L"),
	}},
	{"avocado", []Product{product("B00QGWM5HC", "Organic Hass Avocados, 4 Count", 7.99, "81LR4wRl+QL")}},
	{"tomato", []Product{product("B000RROJ7S", "Fresh Roma Tomatoes, 2lb", 3.49, "71wt+-YIjgL")}},
	{"onion", []Product{product("B07QK1GVPR", "Yellow Onions, 3 lb Bag", 2.99, "81LJrQqh9sL")}},
	{"potato", []Product{product("B0787KT368", "Russet Potatoes, 5 lb Bag", 4.79, "71T0qkU4KdL")}},
	{"carrot", []Product{product("B074H5CKXD", "Organic Carrots, 2 lb Bag", 2.49, "71Tgfp7ztDL")}},
	{"rice", []Product{product("B00ZP3NIBI", "Basmati Rice, 5 lb Bag", 19.99, "71t3z3hN3GL")}},
	{"chicken", []Product{product("B07QK1GVPR", "Organic Chicken Breast, 2 lb", 12.99, "71LJrQqh9sL")}},
	{"beef", []Product{product("B0787KT368", "Ground Beef, 1 lb", 6.99, "71T0qkU4KdL")}},
	{"fish", []Product{product("B074H5CKXD", "Fresh Salmon Fillet, 1 lb", 14.99, "71Tgfp7ztDL")}},
}

// titleCase upper-cases the first letter of each word and lowers the rest.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

func defaultProducts(term string) []Product {
	out := make([]Product, 0, 3)
	for i := 1; i <= 3; i++ {
		asin := fmt.Sprintf("B00DEFAULT%d", i)
		out = append(out, Product{
			ASIN:            asin,
			Title:           fmt.Sprintf("Amazon Fresh %s - Premium Quality", titleCase(term)),
			Price:           math.Round((4.99+float64(i)*1.5)*100) / 100,
			ImageURL:        "https://via.placeholder.com/500x500.png?text=" + strings.ReplaceAll(term, " ", "+"),
			DetailURL:       "https://www.amazon.com/dp/" + asin,
			Availability:    "In Stock",
			QuantityOptions: []int{1, 2, 3, 4, 5},
		})
	}
	return out
}

// Search returns catalog products whose keyword appears in term, or three
// generic products when nothing matches. The category is accepted for
// parity with the product API and does not narrow results.
func Search(term, category string) []Product {
	lower := strings.ToLower(term)
	var out []Product
	for _, e := range catalog {
		if strings.Contains(lower, e.keyword) {
			out = append(out, e.products...)
		}
	}
	if len(out) == 0 {
		return defaultProducts(term)
	}
	return out
}
