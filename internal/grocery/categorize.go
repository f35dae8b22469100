package grocery

import "strings"

// Category names used on every categorized list.
const (
	Produce          = "Produce"
	MeatSeafood      = "Meat & Seafood"
	DairyEggs        = "Dairy & Eggs"
	Pantry           = "Pantry"
	SpicesSeasonings = "Spices & Seasonings"
	Beverages        = "Beverages"
)

// RequiredCategories always appear in a categorized list, in this order
// when they have to be filled with placeholders.
var RequiredCategories = []string{Produce, MeatSeafood, DairyEggs, Pantry, SpicesSeasonings, Beverages}

// keywordPriority is the order in which keyword tables are consulted. The
// first table with a substring hit wins, so "cream of tartar" lands in
// Dairy & Eggs and "ground cumin" in Meat & Seafood.
var keywordPriority = []string{DairyEggs, MeatSeafood, Produce, SpicesSeasonings, Pantry, Beverages}

type keywordRule struct {
	keyword  string
	category string
}

// specialCases are checked before any keyword table.
var specialCases = []keywordRule{
	{"paneer", DairyEggs},
	{"tofu", MeatSeafood},
	{"tempeh", MeatSeafood},
	{"seitan", MeatSeafood},
	{"yogurt", DairyEggs},
	{"curd", DairyEggs},
	{"ghee", DairyEggs},
}

var categoryKeywords = map[string][]string{
	Produce: {
		"cabbage", "tomatoes", "cucumbers", "spinach", "greens", "cauliflower", "mushrooms",
		"eggplant", "berries", "lettuce", "onion", "garlic", "potato", "carrot", "pepper", "broccoli",
		"ginger", "chili", "coriander", "cilantro", "lemon", "lime", "fruit", "vegetable", "beans",
		"zucchini", "squash", "peas", "corn", "asparagus", "brussels", "kale", "celery", "radish",
		"avocado", "apple", "banana", "orange", "grape", "melon", "berry", "salad",
	},
	MeatSeafood: {
		"chicken", "beef", "pork", "lamb", "fish", "salmon", "shrimp", "tofu", "tempeh", "seitan",
		"meat", "seafood", "turkey", "duck", "sausage", "bacon", "ham", "steak", "ground",
	},
	DairyEggs: {
		"milk", "cheese", "yogurt", "butter", "cream", "eggs", "paneer", "cottage cheese", "sour cream",
		"dairy", "curd", "ghee", "buttermilk", "kefir", "whey", "ricotta", "mozzarella", "cheddar",
	},
	Pantry: {
		"rice", "pasta", "flour", "sugar", "oil", "vinegar", "sauce", "canned", "dried",
		"bread", "cereal", "grain", "nut", "seed", "noodle", "cracker", "chip", "snack",
		"honey", "syrup", "jam", "peanut butter", "condiment",
	},
	SpicesSeasonings: {
		"salt", "pepper", "cumin", "turmeric", "paprika", "cinnamon", "oregano", "basil", "thyme",
		"spice", "herb", "seasoning", "masala", "powder", "extract", "vanilla", "bay leaf",
		"chili powder", "curry", "garam masala", "cardamom", "clove", "nutmeg",
	},
	Beverages: {
		"water", "juice", "soda", "coffee", "tea", "wine", "beer", "drink", "beverage", "smoothie",
		"cocktail", "liquor", "spirit", "kombucha", "lemonade", "cider",
	},
}

// Categorize returns the grocery category for the given item name.
// Matching is case-insensitive substring matching: special cases first,
// then keyword tables in priority order. Names matching nothing keep
// the original category.
func Categorize(itemName, original string) string {
	name := strings.ToLower(itemName)

	for _, rule := range specialCases {
		if strings.Contains(name, rule.keyword) {
			return rule.category
		}
	}

	for _, cat := range keywordPriority {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(name, kw) {
				return cat
			}
		}
	}

	return original
}

// placeholderName is the stand-in item for a category with no entries.
func placeholderName(category string) string {
	return "No " + strings.ToLower(category) + " items needed"
}

// IsPlaceholder reports whether name is a generated stand-in item.
func IsPlaceholder(name string) bool {
	return strings.HasPrefix(name, "No ") && strings.HasSuffix(name, "items needed")
}
