package aichef

import (
	"strconv"
	"strings"
)

type tier struct {
	keywords []string
	value    string
}

type nutrient struct {
	key      string
	tiers    []tier
	fallback string
}

// nutrients are checked tier by tier; the first tier with a keyword present
// in the day's meals sets the value.
var nutrients = []nutrient{
	{"vitamin_a", []tier{
		{[]string{"carrot", "sweet potato"}, "95% DV"},
		{[]string{"spinach", "kale"}, "85% DV"},
		{[]string{"squash", "bell pepper"}, "75% DV"},
	}, "65% DV"},
	{"vitamin_c", []tier{
		{[]string{"orange", "grapefruit"}, "120% DV"},
		{[]string{"strawberr", "kiwi"}, "110% DV"},
		{[]string{"broccoli", "bell pepper"}, "85% DV"},
	}, "65% DV"},
	{"calcium", []tier{
		{[]string{"milk", "yogurt"}, "85% DV"},
		{[]string{"cheese", "sardine"}, "75% DV"},
		{[]string{"tofu", "almond"}, "65% DV"},
	}, "45% DV"},
	{"iron", []tier{
		{[]string{"beef", "liver"}, "95% DV"},
		{[]string{"spinach", "lentil"}, "70% DV"},
		{[]string{"quinoa", "bean"}, "60% DV"},
	}, "45% DV"},
	{"vitamin_b1", []tier{{[]string{"pork", "sunflower"}, "85% DV"}}, "60% DV"},
	{"vitamin_b2", []tier{{[]string{"beef", "yogurt"}, "90% DV"}}, "70% DV"},
	{"vitamin_b3", []tier{{[]string{"chicken", "tuna"}, "95% DV"}}, "75% DV"},
	{"vitamin_b5", []tier{{[]string{"avocado", "mushroom"}, "80% DV"}}, "65% DV"},
	{"vitamin_b6", []tier{{[]string{"banana", "potato"}, "85% DV"}}, "70% DV"},
	{"vitamin_b12", []tier{{[]string{"beef", "salmon"}, "120% DV"}}, "85% DV"},
	{"folate", []tier{{[]string{"spinach", "asparagus"}, "90% DV"}}, "75% DV"},
	{"vitamin_d", []tier{{[]string{"salmon", "egg"}, "70% DV"}}, "40% DV"},
	{"vitamin_e", []tier{{[]string{"sunflower", "almond"}, "85% DV"}}, "65% DV"},
	{"vitamin_k", []tier{{[]string{"kale", "spinach"}, "120% DV"}}, "80% DV"},
	{"magnesium", []tier{{[]string{"almond", "spinach"}, "75% DV"}}, "60% DV"},
	{"phosphorus", []tier{{[]string{"cheese", "yogurt"}, "90% DV"}}, "75% DV"},
	{"potassium", []tier{{[]string{"banana", "potato"}, "70% DV"}}, "55% DV"},
	{"sodium", []tier{{[]string{"salt", "cheese"}, "85% DV"}}, "70% DV"},
	{"zinc", []tier{{[]string{"oyster", "beef"}, "100% DV"}}, "75% DV"},
	{"copper", []tier{{[]string{"cashew", "sunflower"}, "80% DV"}}, "65% DV"},
	{"manganese", []tier{{[]string{"tofu", "brown rice"}, "90% DV"}}, "70% DV"},
	{"selenium", []tier{{[]string{"brazil nut", "tuna"}, "120% DV"}}, "80% DV"},
	{"iodine", []tier{{[]string{"seaweed", "cod"}, "95% DV"}}, "60% DV"},
}

type source struct {
	keyword string
	label   string
}

type sourceList struct {
	key      string
	sources  []source
	fallback string
}

var sourceLists = []sourceList{
	{"vitamin_a_sources", []source{
		{"carrot", "Carrots"}, {"sweet potato", "Sweet potatoes"}, {"spinach", "Spinach"},
		{"kale", "Kale"}, {"bell pepper", "Bell peppers"},
	}, "Various vegetables in your meals"},
	{"b_vitamins_sources", []source{
		{"chicken", "Chicken"}, {"tuna", "Tuna"}, {"beef", "Beef"}, {"egg", "Eggs"}, {"yogurt", "Yogurt"},
	}, "Various protein sources in your meals"},
	{"vitamin_c_sources", []source{
		{"orange", "Oranges"}, {"strawberr", "Strawberries"}, {"kiwi", "Kiwi"},
		{"broccoli", "Broccoli"}, {"bell pepper", "Bell peppers"},
	}, "Various fruits and vegetables in your meals"},
	{"vitamin_d_sources", []source{
		{"salmon", "Salmon"}, {"tuna", "Tuna"}, {"egg", "Eggs"}, {"mushroom", "Mushrooms"},
	}, "Limited natural sources in your meals"},
	{"calcium_sources", []source{
		{"milk", "Milk"}, {"yogurt", "Yogurt"}, {"cheese", "Cheese"}, {"tofu", "Tofu"}, {"spinach", "Spinach"},
	}, "Various dairy and plant sources in your meals"},
	{"iron_sources", []source{
		{"beef", "Beef"}, {"spinach", "Spinach"}, {"lentil", "Lentils"}, {"bean", "Beans"}, {"tofu", "Tofu"},
	}, "Various protein sources in your meals"},
	{"magnesium_sources", []source{
		{"almond", "Almonds"}, {"spinach", "Spinach"}, {"cashew", "Cashews"}, {"avocado", "Avocado"}, {"bean", "Beans"},
	}, "Various nuts, seeds, and vegetables in your meals"},
	{"zinc_sources", []source{
		{"oyster", "Oysters"}, {"beef", "Beef"}, {"crab", "Crab"}, {"chicken", "Chicken"}, {"cashew", "Cashews"},
	}, "Various protein sources in your meals"},
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// EstimateMicronutrients gives a rough daily-value estimate for each
// micronutrient from keywords in the meal names, plus the foods that
// contributed to the headline nutrients.
func EstimateMicronutrients(m Meals) map[string]string {
	parts := append([]string{m.Breakfast, m.Lunch, m.Dinner}, m.Snacks...)
	text := strings.ToLower(strings.Join(parts, " "))

	out := make(map[string]string, len(nutrients)+len(sourceLists))
	for _, n := range nutrients {
		out[n.key] = n.fallback
		for _, t := range n.tiers {
			if containsAny(text, t.keywords) {
				out[n.key] = t.value
				break
			}
		}
	}
	for _, sl := range sourceLists {
		var found []string
		for _, s := range sl.sources {
			if strings.Contains(text, s.keyword) {
				found = append(found, s.label)
			}
		}
		if len(found) == 0 {
			found = []string{sl.fallback}
		}
		out[sl.key] = strings.Join(found, ", ")
	}
	return out
}

// FillMicronutrients merges caller-supplied values over the estimate.
// Bare numbers become "N% DV"; empty and non-scalar values fall back to
// the estimate.
func FillMicronutrients(known map[string]any, estimate map[string]string) map[string]string {
	out := make(map[string]string, len(estimate))
	for k, v := range estimate {
		out[k] = v
	}
	for k, v := range known {
		switch v := v.(type) {
		case float64:
			out[k] = percentDV(v)
		case string:
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				out[k] = percentDV(f)
			} else {
				out[k] = v
			}
		}
	}
	return out
}

func percentDV(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64) + "% DV"
}
