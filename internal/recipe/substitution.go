package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dukerupert/fusionmeals/internal/llm"
)

type SubstitutionRequest struct {
	Ingredient         string `json:"ingredient" validate:"required"`
	DietaryRestriction string `json:"dietary_restriction"`
	Purpose            string `json:"purpose"`
	Quantity           string `json:"quantity"`
}

type Substitute struct {
	Name            string  `json:"name"`
	ConversionRatio float64 `json:"conversion_ratio"`
	NutritionMatch  float64 `json:"nutrition_match"`
	TasteSimilarity float64 `json:"taste_similarity"`
	Description     string  `json:"description"`
	UsageTips       string  `json:"usage_tips"`
}

type SubstitutionResult struct {
	OriginalIngredient string       `json:"original_ingredient"`
	Substitutes        []Substitute `json:"substitutes"`
	DietaryNote        *string      `json:"dietary_note"`
}

const substitutionTemplate = `You are a culinary expert specializing in ingredient substitutions.

INGREDIENT TO SUBSTITUTE: %s
QUANTITY: %s
COOKING PURPOSE: %s
DIETARY RESTRICTION: %s

Provide 3-5 suitable substitutes for this ingredient. For each substitute, include:

1. The exact name of the substitute ingredient
2. A conversion ratio as a decimal number (0.75 means 0.75 units of substitute for 1 unit of original)
3. A nutrition match score (0-1) for how well it matches the nutritional profile
4. A taste similarity score (0-1) for how close the flavor is to the original
5. A short description of why this substitute works
6. Tips for using it in recipes

Format your response as a JSON object exactly like this:
{
  "substitutes": [
    {
      "name": "substitute name",
      "conversion_ratio": 0.75,
      "nutrition_match": 0.8,
      "taste_similarity": 0.7,
      "description": "Why this works as a substitute",
      "usage_tips": "How to use it in cooking"
    }
  ]
}

ONLY output this JSON object. All numeric values must be decimal numbers, not fractions or ratios like "1:0.75".
Consider the cooking purpose, and if the user has dietary restrictions make sure the substitutes respect them.`

// SubstitutionPrompt builds the substitution prompt. The ingredient is
// trimmed and lowercased.
func SubstitutionPrompt(req SubstitutionRequest) string {
	return fmt.Sprintf(substitutionTemplate,
		strings.ToLower(strings.TrimSpace(req.Ingredient)),
		orDefault(req.Quantity, "not specified"),
		orDefault(req.Purpose, "cooking"),
		orDefault(req.DietaryRestriction, "none"),
	)
}

type rawSubstitute struct {
	Name            string          `json:"name"`
	ConversionRatio json.RawMessage `json:"conversion_ratio"`
	NutritionMatch  json.RawMessage `json:"nutrition_match"`
	TasteSimilarity json.RawMessage `json:"taste_similarity"`
	Description     string          `json:"description"`
	UsageTips       string          `json:"usage_tips"`
}

// FindSubstitutes asks the model for substitutes of an ingredient.
func (s *Service) FindSubstitutes(ctx context.Context, req SubstitutionRequest) (*SubstitutionResult, error) {
	c, err := s.completions()
	if err != nil {
		return nil, err
	}
	raw, err := c.Generate(ctx, llm.Prompt{
		User:        SubstitutionPrompt(req),
		JSON:        true,
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("find substitutes: %w", err)
	}

	var out struct {
		Substitutes []rawSubstitute `json:"substitutes"`
	}
	if err := llm.DecodeObject(raw, &out, "substitutes"); err != nil {
		return nil, err
	}

	res := &SubstitutionResult{
		OriginalIngredient: req.Ingredient,
		Substitutes:        make([]Substitute, 0, len(out.Substitutes)),
	}
	for _, sub := range out.Substitutes {
		res.Substitutes = append(res.Substitutes, Substitute{
			Name:            sub.Name,
			ConversionRatio: ConversionRatio(sub.ConversionRatio),
			NutritionMatch:  numberOr(sub.NutritionMatch, 0),
			TasteSimilarity: numberOr(sub.TasteSimilarity, 0),
			Description:     sub.Description,
			UsageTips:       sub.UsageTips,
		})
	}
	if req.DietaryRestriction != "" {
		note := fmt.Sprintf("All substitutes are compatible with %s dietary needs.", req.DietaryRestriction)
		res.DietaryNote = &note
	}
	return res, nil
}

var ratioPattern = regexp.MustCompile(`1:(\d+\.?\d*)`)

// ConversionRatio coerces a model-supplied ratio to a number: "1:X" yields
// X, a numeric string is parsed, and anything unusable yields 1.0.
func ConversionRatio(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return 1.0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 1.0
	}
	s = strings.TrimSpace(s)
	if strings.Contains(s, ":") {
		m := ratioPattern.FindStringSubmatch(s)
		if m == nil {
			return 1.0
		}
		f, _ = strconv.ParseFloat(m[1], 64)
		return f
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1.0
	}
	return f
}

func numberOr(raw json.RawMessage, def float64) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return def
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return def
}
