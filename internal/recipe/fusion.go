package recipe

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/dukerupert/fusionmeals/internal/llm"
)

// NoRecipeWarning is returned in place of a recipe the model could not produce.
const NoRecipeWarning = "⚠️ AI couldn't generate a recipe. Try modifying the ingredients!"

// DietInstructions maps a dietary preference to the guidance added to the prompt.
var DietInstructions = map[string]string{
	"Diabetes-Friendly": "Avoid sugar, white rice, potatoes, and refined flour. Suggest healthy alternatives.",
	"Low-Carb":          "Limit high-carb ingredients like potatoes and rice. Suggest protein-rich alternatives.",
	"High-Protein":      "Ensure the recipe includes high-protein ingredients like lentils, tofu, and beans.",
	"Vegan":             "Exclude all animal products, including dairy and eggs. Use plant-based alternatives.",
	"Gluten-Free":       "Avoid wheat, barley, and rye. Suggest gluten-free grains like quinoa or rice.",
	"Keto":              "Ensure very low carbs, moderate protein, and high healthy fats like avocados and nuts.",
	"Heart-Healthy":     "Use heart-friendly ingredients like olive oil, nuts, leafy greens, and avoid processed foods.",
	"None":              "No dietary restrictions.",
}

const noDietInstruction = "No dietary restrictions."

type FusionRequest struct {
	Ingredients       string `json:"ingredients" validate:"required"`
	Cuisine1          string `json:"cuisine1" validate:"required"`
	Cuisine2          string `json:"cuisine2" validate:"required"`
	DietaryPreference string `json:"dietary_preference"`
	IsPremium         bool   `json:"is_premium"`
	ServingSize       int    `json:"serving_size" validate:"gte=0"`
	CookingSkill      string `json:"cooking_skill"`
}

func (r *FusionRequest) defaults() {
	if r.DietaryPreference == "" {
		r.DietaryPreference = "None"
	}
	if r.ServingSize == 0 {
		r.ServingSize = 4
	}
	if r.CookingSkill == "" {
		r.CookingSkill = "Intermediate"
	}
}

type FusionResult struct {
	Recipe              string            `json:"recipe"`
	ImageURL            *string           `json:"image_url"`
	NutritionalAnalysis map[string]string `json:"nutritional_analysis"`
	CookingTips         []string          `json:"cooking_tips"`
	WinePairing         *string           `json:"wine_pairing"`
	StorageInstructions *string           `json:"storage_instructions"`
}

const fusionTemplate = `You are an AI chef specializing in fusion cuisine.

User has requested a fusion dish combining **%s and %s** cuisine.
Available ingredients: %s.
Serving size: %d people
Cooking skill level: %s

**Dietary Preference:** %s

Generate the recipe in the following **markdown-formatted style**:

🍴 **Recipe Name**: [Recipe Name Here]

🛒 **Ingredients**:
- **Vegetables**: [List each vegetable as a bullet point]
- **Proteins**: [List each protein item]
- **Spices & Other**: [List spices and other ingredients]

👩‍🍳 **Instructions**:
1. [Step 1 instructions]
2. [Step 2 instructions]
3. [Step 3 instructions]

⏰ **Cooking Time**: [Time in hours and minutes]

🔥 **Calories per Serving**: [Calories per serving]

💪 **Macronutrients**:
- Protein: [Xg]
- Carbs: [Xg]
- Fats: [Xg]

🏅 **Health Score**: [Health Score A/B/C]
`

const fusionPremiumTemplate = `
🍷 **Wine Pairing**: [Suggest appropriate wine pairing]

📊 **Detailed Nutritional Analysis**:
- Calories: [X] kcal
- Protein: [X]g ([X]% of daily value)
- Carbs: [X]g ([X]% of daily value)
- Fats: [X]g ([X]% of daily value)
- Fiber: [X]g
- Sugar: [X]g
- Sodium: [X]mg

💡 **Cooking Tips**:
- [Tip 1]
- [Tip 2]
- [Tip 3]

📦 **Storage Instructions**:
[How to store leftovers and for how long]
`

// FusionPrompt builds the fusion recipe prompt.
func FusionPrompt(req FusionRequest) string {
	req.defaults()
	diet, ok := DietInstructions[req.DietaryPreference]
	if !ok {
		diet = noDietInstruction
	}
	p := fmt.Sprintf(fusionTemplate, req.Cuisine1, req.Cuisine2, req.Ingredients, req.ServingSize, req.CookingSkill, diet)
	if req.IsPremium {
		p += fusionPremiumTemplate
	}
	return p
}

// GenerateFusion asks the model for a fusion recipe, illustrates it and, for
// premium requests, lifts the extra sections out of the text.
func (s *Service) GenerateFusion(ctx context.Context, req FusionRequest) (*FusionResult, error) {
	c, err := s.completions()
	if err != nil {
		return nil, err
	}
	req.defaults()

	text, err := c.Generate(ctx, llm.Prompt{
		User:        FusionPrompt(req),
		Model:       "gpt-4",
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("generate fusion recipe: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(strings.ToLower(text), "recipe not found") {
		return &FusionResult{Recipe: NoRecipeWarning}, nil
	}

	name := RecipeName(text)
	res := &FusionResult{
		Recipe: text,
		ImageURL: s.image(ctx, llm.ImageRequest{
			Prompt: fmt.Sprintf("Professional food photography of %s, %s and %s fusion cuisine, high quality, appetizing, well-lit, restaurant quality, 4k, detailed",
				name, req.Cuisine1, req.Cuisine2),
			Model: "dall-e-3",
			Size:  "1024x1024",
		}),
	}
	if req.IsPremium {
		applyPremiumSections(res, text)
	}
	return res, nil
}

// RecipeName returns the text after the "**Recipe Name**:" marker.
func RecipeName(text string) string {
	_, after, ok := strings.Cut(text, "**Recipe Name**:")
	if !ok {
		return "Fusion Cuisine Dish"
	}
	line, _, _ := strings.Cut(after, "\n")
	return strings.TrimSpace(line)
}

// Section returns the text between "**<marker>**:" and the next "**".
func Section(text, marker string) (string, bool) {
	_, after, ok := strings.Cut(text, "**"+marker+"**:")
	if !ok {
		return "", false
	}
	body, _, _ := strings.Cut(after, "**")
	return trimDecoration(body), true
}

// trimDecoration drops trailing lines without any letter or digit, such as
// the emoji that precedes the next heading.
func trimDecoration(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for len(lines) > 0 && !strings.ContainsFunc(lines[len(lines)-1], isWordRune) {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func applyPremiumSections(res *FusionResult, text string) {
	if body, ok := Section(text, "Detailed Nutritional Analysis"); ok {
		res.NutritionalAnalysis = make(map[string]string)
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "-") {
				continue
			}
			key, value, found := strings.Cut(strings.TrimSpace(strings.ReplaceAll(line, "-", "")), ":")
			if !found {
				continue
			}
			res.NutritionalAnalysis[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}

	if body, ok := Section(text, "Cooking Tips"); ok {
		res.CookingTips = []string{}
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "-") {
				res.CookingTips = append(res.CookingTips, strings.TrimSpace(strings.ReplaceAll(line, "-", "")))
			}
		}
	}

	if body, ok := Section(text, "Wine Pairing"); ok {
		res.WinePairing = &body
	}
	if body, ok := Section(text, "Storage Instructions"); ok {
		res.StorageInstructions = &body
	}
}
