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

type ScalingRequest struct {
	RecipeText   string  `json:"recipe_text" validate:"required"`
	ScaleFactor  float64 `json:"scale_factor" validate:"gte=0"`
	ConvertUnits string  `json:"convert_units" validate:"omitempty,oneof=metric imperial"`
	ServingSize  *int    `json:"serving_size" validate:"omitempty,gt=0"`
}

type ScalingResult struct {
	OriginalRecipe      string         `json:"original_recipe"`
	ScaledRecipe        string         `json:"scaled_recipe"`
	OriginalServingSize *int           `json:"original_serving_size"`
	NewServingSize      *int           `json:"new_serving_size"`
	ConversionDetails   map[string]any `json:"conversion_details"`
}

var servingPattern = regexp.MustCompile(`serves\s+(\d+)|servings?:?\s*(\d+)|yield:?\s*(\d+)|for\s+(\d+)\s+people`)

// ServingSize finds the serving count of a recipe, either the SERVES field
// of a JSON recipe or a phrase like "serves 4" in text.
func ServingSize(text string) (int, bool) {
	if _, obj, ok := formatRecipe(text); ok {
		if v, found := obj["SERVES"]; found {
			return intValue(v)
		}
		return 0, false
	}
	m := servingPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0, false
	}
	for _, g := range m[1:] {
		if g == "" {
			continue
		}
		n, err := strconv.Atoi(g)
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

// scalePlan is the resolved arithmetic of a scaling request.
type scalePlan struct {
	factor   float64
	original *int
	target   *int
	newSize  *int
	recipe   string
	isJSON   bool
}

func planScaling(req ScalingRequest) scalePlan {
	text := strings.TrimSpace(req.RecipeText)
	formatted, obj, isJSON := formatRecipe(text)
	p := scalePlan{factor: req.ScaleFactor, target: req.ServingSize, recipe: text, isJSON: isJSON}
	if p.factor == 0 {
		p.factor = 1.0
	}
	if isJSON {
		p.recipe = formatted
	}

	if n, ok := ServingSize(text); ok && n > 0 {
		p.original = &n
	}

	switch {
	case p.target != nil && p.original != nil:
		p.factor = float64(*p.target) / float64(*p.original)
	case p.target != nil && isJSON:
		obj["SERVES"] = *p.target
		if b, err := json.MarshalIndent(obj, "", "  "); err == nil {
			p.recipe = string(b)
		}
		orig := *p.target
		p.original = &orig
	}

	switch {
	case p.target != nil:
		n := *p.target
		p.newSize = &n
	case p.original != nil:
		n := int(float64(*p.original) * p.factor)
		p.newSize = &n
	}
	return p
}

func jsonInt(p *int) string {
	if p == nil {
		return "null"
	}
	return strconv.Itoa(*p)
}

func (p scalePlan) servingInstruction() string {
	switch {
	case p.newSize != nil:
		return strconv.Itoa(*p.newSize)
	case p.original != nil:
		return fmt.Sprintf("approximately %.1f", float64(*p.original)*p.factor)
	default:
		return "the scaled value"
	}
}

// ScalingPrompt builds the scaling prompt for a request.
func ScalingPrompt(req ScalingRequest) string {
	return planScaling(req).prompt(req.ConvertUnits)
}

func (p scalePlan) prompt(convertUnits string) string {
	var b strings.Builder
	b.WriteString("You are a culinary expert specializing in recipe scaling and unit conversion.\n\n")
	fmt.Fprintf(&b, "Scale this recipe by a factor of %g and make it easy to follow.\n\n", p.factor)
	if p.isJSON {
		b.WriteString("ORIGINAL RECIPE (in JSON format):\n")
	} else {
		b.WriteString("ORIGINAL RECIPE:\n")
	}
	b.WriteString(p.recipe)
	fmt.Fprintf(&b, "\n\nSCALING FACTOR: %g\n", p.factor)
	if convertUnits != "" {
		fmt.Fprintf(&b, "CONVERT UNITS TO: %s\n", strings.ToUpper(convertUnits))
	}
	if p.target != nil {
		fmt.Fprintf(&b, "TARGET SERVING SIZE: %d\n", *p.target)
	}
	b.WriteString(`
Please:
1. Identify all ingredient quantities and adjust them by the scaling factor
2. Round to reasonable cooking measurements (don't say 1.33 eggs, say 1 or 2 eggs)
3. For very small amounts (less than 1/8 tsp), use a pinch or dash
4. Scale ranges sensibly ("2-3 cloves garlic" doubled becomes "4-6 cloves garlic")
`)
	if p.isJSON {
		fmt.Fprintf(&b, "5. Update the SERVES value to %s and keep every other field (TITLE, DESCRIPTION, ...) the same\n", p.servingInstruction())
		b.WriteString("\nReturn the scaled recipe in the EXACT SAME JSON structure as the original.\n")
	} else {
		fmt.Fprintf(&b, "5. Keep the formatting and every section of the original, and update any serving size mention to %s\n", p.servingInstruction())
	}
	fmt.Fprintf(&b, `
Format your response as a JSON object with this structure:
{
  "scaled_recipe": %s,
  "conversion_details": {
    "original_serving_size": %s,
    "new_serving_size": %s,
    "significant_changes": ["flour: 2 cups → 4 cups", "salt: 1 tsp → 2 tsp"]
  }
}

ONLY output this JSON object and nothing else.`, scaledPlaceholder(p.isJSON), jsonInt(p.original), jsonInt(p.newSize))
	return b.String()
}

func scaledPlaceholder(isJSON bool) string {
	if isJSON {
		return "THE_COMPLETE_SCALED_RECIPE_JSON_OBJECT"
	}
	return `"The full scaled recipe with all the original sections and formatting"`
}

// Scale asks the model to scale a recipe and optionally convert its units.
func (s *Service) Scale(ctx context.Context, req ScalingRequest) (*ScalingResult, error) {
	c, err := s.completions()
	if err != nil {
		return nil, err
	}
	plan := planScaling(req)

	raw, err := c.Generate(ctx, llm.Prompt{
		User:        plan.prompt(req.ConvertUnits),
		JSON:        true,
		Model:       "gpt-3.5-turbo",
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("scale recipe: %w", err)
	}

	var out struct {
		ScaledRecipe      json.RawMessage `json:"scaled_recipe"`
		ConversionDetails map[string]any  `json:"conversion_details"`
	}
	if err := llm.DecodeObject(raw, &out, "scaled_recipe"); err != nil {
		return nil, err
	}

	res := &ScalingResult{
		OriginalRecipe:      strings.TrimSpace(req.RecipeText),
		ScaledRecipe:        scaledText(out.ScaledRecipe),
		OriginalServingSize: plan.original,
		ConversionDetails:   out.ConversionDetails,
	}
	if v, ok := out.ConversionDetails["new_serving_size"]; ok {
		if n, ok := intValue(v); ok {
			res.NewServingSize = &n
		}
	}
	return res, nil
}

// ConvertUnits converts measurement units without scaling.
func (s *Service) ConvertUnits(ctx context.Context, req ScalingRequest) (*ScalingResult, error) {
	req.ScaleFactor = 1.0
	return s.Scale(ctx, req)
}

// scaledText renders the scaled recipe as text; objects and strings holding
// JSON objects are pretty-printed.
func scaledText(raw json.RawMessage) string {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		formatted, _, _ := formatRecipe(str)
		return formatted
	}
	formatted, _, _ := formatRecipe(string(raw))
	return formatted
}
