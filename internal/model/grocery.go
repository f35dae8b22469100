package model

// GroceryItem is one line of a categorized shopping list.
type GroceryItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
}

// GroceryList is the categorizer output. EstimatedTotal is an item count on
// the direct path and zero on the heuristic fallback path.
type GroceryList struct {
	Items          []GroceryItem `json:"items"`
	EstimatedTotal float64       `json:"estimated_total"`
}
