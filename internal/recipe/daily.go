package recipe

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/fusionmeals/internal/llm"
)

// CuisinePairs are the combinations the recipe of the day draws from.
var CuisinePairs = [][2]string{
	{"Italian", "Japanese"},
	{"Mexican", "Thai"},
	{"Indian", "Mediterranean"},
	{"Chinese", "French"},
	{"Korean", "American"},
	{"Lebanese", "Brazilian"},
	{"Vietnamese", "Spanish"},
	{"Greek", "Japanese"},
	{"Moroccan", "Chinese"},
	{"Ethiopian", "Italian"},
}

type DailyRecipe struct {
	Recipe      string   `json:"recipe"`
	ImageURL    *string  `json:"image_url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Cuisines    []string `json:"cuisines"`
}

const dailyTemplate = `Create a special 'Recipe of the Day' combining %s and %s cuisines.
This should be an approachable recipe that most people can cook with common ingredients.

Generate the recipe in the following format:

TITLE: [Catchy recipe name]

DESCRIPTION: [A brief, enticing description of the dish in 2-3 sentences]

INGREDIENTS:
- [List main ingredients]

INSTRUCTIONS:
1. [Step 1]
2. [Step 2]
3. [Step 3]

COOKING TIME: [Total time]
DIFFICULTY: [Easy/Medium/Hard]
SERVES: [Number of people]
`

const dailyFallbackTemplate = `TITLE: Simple %[1]s-%[2]s Fusion Dish

DESCRIPTION: A delicious fusion dish combining elements from %[1]s and %[2]s cuisines. Perfect for a quick, flavorful meal.

INGREDIENTS:
- Basic ingredients from both cuisines
- Common vegetables
- Protein of choice
- Herbs and spices

INSTRUCTIONS:
1. Prepare all ingredients.
2. Cook according to basic techniques from both cuisines.
3. Combine and serve hot.

COOKING TIME: 30 minutes
DIFFICULTY: Medium
SERVES: 4`

// RecipeOfTheDay picks a random cuisine pair and asks the model for an
// approachable recipe. Model failures fall back to a template recipe, so
// this never returns an error.
func (s *Service) RecipeOfTheDay(ctx context.Context) *DailyRecipe {
	pair := CuisinePairs[s.pick(len(CuisinePairs))]
	c1, c2 := pair[0], pair[1]

	var text string
	if s.llm != nil {
		out, err := s.llm.Generate(ctx, llm.Prompt{
			User:        fmt.Sprintf(dailyTemplate, c1, c2),
			Model:       "gpt-3.5-turbo",
			Temperature: 0.8,
		})
		if err != nil {
			s.logger.Warn("recipe of the day generation failed", "cuisines", c1+"-"+c2, "error", err)
		}
		text = strings.TrimSpace(out)
	}
	if text == "" {
		text = fmt.Sprintf(dailyFallbackTemplate, c1, c2)
	}

	title := DailyTitle(text, c1, c2)
	return &DailyRecipe{
		Recipe: text,
		ImageURL: s.image(ctx, llm.ImageRequest{
			Prompt: fmt.Sprintf("Food photography of %s, %s and %s fusion cuisine", title, c1, c2),
			Model:  "dall-e-2",
			Size:   "512x512",
		}),
		Title:       title,
		Description: DailyDescription(text),
		Cuisines:    []string{c1, c2},
	}
}

// DailyTitle returns the TITLE: line or a name built from the cuisines.
func DailyTitle(text, c1, c2 string) string {
	_, after, ok := strings.Cut(text, "TITLE:")
	if !ok {
		return c1 + "-" + c2 + " Fusion Dish"
	}
	line, _, _ := strings.Cut(after, "\n")
	return strings.TrimSpace(line)
}

// DailyDescription returns the paragraph following DESCRIPTION:.
func DailyDescription(text string) string {
	_, after, ok := strings.Cut(text, "DESCRIPTION:")
	if !ok {
		return "A delicious fusion recipe combining the best of two culinary worlds."
	}
	para, _, _ := strings.Cut(after, "\n\n")
	return strings.TrimSpace(para)
}
