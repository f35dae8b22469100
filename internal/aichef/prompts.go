package aichef

import (
	"fmt"
	"strings"

	"github.com/dukerupert/fusionmeals/internal/model"
)

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func list(items []string) string {
	return strings.Join(items, ", ")
}

func MealPlanPrompt(req Request, prefs model.Preferences) string {
	household := prefs.HouseholdSize
	if household <= 0 {
		household = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a premium personalized meal plan for a %s with a %s budget.\n\n",
		or(req.Timeframe, "week"), or(req.BudgetLevel, "moderate"))
	b.WriteString("User preferences:\n")
	fmt.Fprintf(&b, "- Cuisine preferences: %s\n", list(prefs.Cuisines))
	fmt.Fprintf(&b, "- Dietary restrictions: %s\n", list(prefs.DietaryRestrictions))
	fmt.Fprintf(&b, "- Household size: %d\n", household)
	fmt.Fprintf(&b, "- Favorite ingredients: %s\n", list(prefs.FavoriteIngredients))
	fmt.Fprintf(&b, "- Disliked ingredients: %s\n", list(prefs.DislikedIngredients))
	if req.Occasion != "" {
		fmt.Fprintf(&b, "\nSpecial occasion: %s\n", req.Occasion)
	}
	b.WriteString(`
Provide a detailed meal plan with:
1. Daily meals (breakfast, lunch, dinner, snacks)
2. Grocery list organized by store section
3. Prep instructions for batch cooking
4. Estimated costs and time requirements
5. Wine or beverage pairings for each dinner
6. Nutritional information

Return as a JSON object with the following structure:
{
  "meal_plan": {
    "days": [{
      "day": "Monday",
      "breakfast": {"name": "", "description": "", "time_to_prepare": "", "calories": ""},
      "lunch": {"name": "", "description": "", "time_to_prepare": "", "calories": ""},
      "dinner": {"name": "", "description": "", "time_to_prepare": "", "calories": "", "wine_pairing": ""},
      "snacks": [{"name": "", "description": "", "calories": ""}]
    }]
  },
  "grocery_list": {"produce": [""], "protein": [""], "dairy": [""], "grains": [""], "other": [""]},
  "meal_prep_guide": {"day": "", "instructions": [""], "storage_tips": [""]},
  "estimated_total_cost": "",
  "nutrition_summary": {"average_daily_calories": "", "protein_ratio": "", "carb_ratio": "", "fat_ratio": ""}
}`)
	return b.String()
}

func CookingGuidancePrompt(req Request, prefs model.Preferences) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide premium cooking guidance for the following recipe:\n\n%s\n\n", req.RecipeText)
	fmt.Fprintf(&b, "User's cooking skill: %s\n", or(prefs.CookingSkill, "intermediate"))
	b.WriteString(`
Create a comprehensive cooking guide with:
1. Step-by-step instructions with professional chef techniques
2. Timing guide for perfect execution
3. Common mistakes to avoid
4. Equipment recommendations
5. Plating and presentation tips
6. Advanced variations to elevate the dish
`)
	if req.CookingMethod != "" {
		fmt.Fprintf(&b, "7. Visual guides for %s method\n", req.CookingMethod)
	}
	if req.VideoInstructions {
		b.WriteString("\nInclude video timestamps and specific techniques to look for in cooking videos\n")
	}
	b.WriteString(`
Return as a JSON object with the following structure:
{
  "recipe_overview": {"name": "", "difficulty": "", "estimated_time": ""},
  "professional_techniques": [{"name": "", "description": "", "pro_tip": ""}],
  "step_by_step_guide": [{"step": 1, "instruction": "", "timing": "", "chef_notes": ""}],
  "common_pitfalls": [{"issue": "", "solution": ""}],
  "equipment_recommendations": [{"item": "", "purpose": "", "alternative": ""}],
  "plating_guide": {"description": "", "garnish_suggestions": [""], "presentation_tips": [""]},
  "advanced_variations": [{"name": "", "modification": "", "additional_ingredients": [""]}]
}`)
	return b.String()
}

func IngredientSourcingPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide premium ingredient sourcing guidance for %s.\n",
		or(req.SpecificIngredient, "a high-quality meal"))
	if req.RecipeText != "" {
		fmt.Fprintf(&b, "\nFor recipe: %s\n", req.RecipeText)
	}
	b.WriteString(`
Create detailed sourcing information with:
1. Where to find the best quality ingredients
2. How to select for freshness and quality
3. Premium vs everyday options with price comparisons
4. Seasonal availability
5. Specialty sources (online, local farms, markets)
6. Storage recommendations to maximize shelf life
7. Sustainable and ethical sourcing considerations

Return as a JSON object with the following structure:
{
  "ingredient_guide": [{
    "ingredient": "",
    "quality_indicators": [""],
    "sourcing_locations": [{"name": "", "type": "", "price_range": "", "quality": ""}],
    "selection_tips": [""],
    "seasonality": {"peak_season": "", "availability": "", "seasonal_notes": ""},
    "storage_method": {"duration": "", "instructions": ""},
    "sustainable_options": [{"description": "", "certification": "", "benefits": ""}]
  }],
  "estimated_total_cost": {"premium": "", "mid_range": "", "budget": ""},
  "specialty_recommendations": [{"store": "", "location": "", "specialty": "", "notes": ""}]
}`)
	return b.String()
}

func RecipeCurationPrompt(req Request, prefs model.Preferences) string {
	cuisine := or(req.CuisineType, or(list(prefs.Cuisines), "any"))

	var b strings.Builder
	b.WriteString("Curate a collection of premium restaurant-quality recipes for a home cook.\n\n")
	b.WriteString("Preferences:\n")
	fmt.Fprintf(&b, "- Cuisine: %s\n", cuisine)
	fmt.Fprintf(&b, "- Dietary restrictions: %s\n", list(prefs.DietaryRestrictions))
	fmt.Fprintf(&b, "- Favorite ingredients: %s\n", list(prefs.FavoriteIngredients))
	fmt.Fprintf(&b, "- Disliked ingredients: %s\n", list(prefs.DislikedIngredients))
	if req.Occasion != "" {
		fmt.Fprintf(&b, "- Occasion: %s\n", req.Occasion)
	}
	b.WriteString(`
For each recipe, provide:
1. Restaurant-quality recipe with chef's notes
2. History and cultural significance
3. Wine or beverage pairing suggestions
4. Make-ahead components
5. Difficulty rating and special techniques
6. Wow-factor presentation ideas

Return as a JSON object with the following structure:
{
  "curated_recipes": [{
    "name": "",
    "chef_inspiration": "",
    "history": "",
    "difficulty": "",
    "preparation_time": "",
    "cooking_time": "",
    "ingredients": [{"name": "", "amount": "", "special_notes": ""}],
    "instructions": [{"step": 1, "description": "", "technique": "", "chef_tip": ""}],
    "wine_pairing": {"recommendation": "", "flavor_notes": "", "alternative": ""},
    "presentation": {"plating_description": "", "garnishes": [""], "visual_elements": [""]},
    "make_ahead": [{"component": "", "instructions": "", "storage": ""}]
  }],
  "menu_suggestions": [{"theme": "", "recipes": [""], "occasion": ""}],
  "technique_spotlight": {"name": "", "description": "", "chef_examples": [""]}
}`)
	return b.String()
}

var prepTimeDisplay = map[string]string{
	"15_minutes": "15 minutes or less",
	"30_minutes": "30 minutes or less",
	"45_minutes": "45 minutes or less",
}

var equipmentDisplay = map[string]string{
	"minimal":  "minimal equipment (microwave, toaster)",
	"basic":    "basic equipment (stovetop, no oven)",
	"standard": "standard equipment (stovetop, oven)",
}

func display(table map[string]string, key, def string) string {
	if v, ok := table[key]; ok {
		return v
	}
	return def
}

func StudentMealsPrompt(req Request, prefs model.Preferences) string {
	prepTime := display(prepTimeDisplay, or(req.PrepTimeLimit, "15_minutes"), "quick")
	equipment := display(equipmentDisplay, or(req.KitchenEquipment, "minimal"), "limited kitchen equipment")
	skill := or(req.CookingSkill, or(prefs.CookingSkill, "beginner"))
	dietary := or(req.DietaryPreference, list(prefs.DietaryRestrictions))

	var b strings.Builder
	b.WriteString("Create a collection of nutritious, economical and quick student-friendly meals.\n\n")
	b.WriteString("Student requirements:\n")
	fmt.Fprintf(&b, "- Budget level: %s\n", or(req.BudgetLevel, "budget"))
	fmt.Fprintf(&b, "- Prep time limit: %s\n", prepTime)
	fmt.Fprintf(&b, "- Available equipment: %s\n", equipment)
	fmt.Fprintf(&b, "- Cooking skill: %s\n", skill)
	if dietary != "" {
		fmt.Fprintf(&b, "- Dietary preference: %s\n", dietary)
	}
	fmt.Fprintf(&b, "- Favorite ingredients: %s\n", list(prefs.FavoriteIngredients))
	fmt.Fprintf(&b, "- Disliked ingredients: %s\n", list(prefs.DislikedIngredients))
	b.WriteString(`
Create a comprehensive student meal plan with:
1. 5-7 quick, nutritious recipes optimized for students
2. Budget-friendly shopping list with estimated costs
3. Study week meal plan with brain-boosting foods
4. Study snack recommendations
5. Batch cooking instructions for busy academic weeks
6. Nutritional benefits for brain health and energy

Focus on meals that:
- Require minimal cleanup
- Can be made with affordable ingredients
- Store well for leftovers
- Provide sustained energy for studying
- Include brain-healthy nutrients for focus

Return as a JSON object with the following structure:
{
  "student_meals": {
    "recipes": [{
      "name": "",
      "prep_time": "",
      "cost": "",
      "description": "",
      "ingredients": [""],
      "instructions": [""],
      "nutrition": "",
      "brain_boost": "",
      "storage": ""
    }],
    "shopping_list": {"pantry_staples": [""], "weekly_fresh": [""], "budget_proteins": [""]},
    "estimated_cost": "",
    "study_week_plan": [{
      "day": "",
      "morning": {"name": "", "description": "", "brain_boost": ""},
      "afternoon": {"name": "", "description": "", "energy_level": ""},
      "evening": {"name": "", "description": "", "sleep_quality": ""}
    }],
    "study_snacks": [{"name": "", "description": "", "best_for": ""}],
    "meal_prep_guide": {"instructions": [""], "storage_tips": [""]}
  }
}`)
	return b.String()
}
