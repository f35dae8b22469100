package mealplan

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/fusionmeals/internal/llm"
)

const prepModel = "gpt-4-turbo"

// BatchRequest describes the cook's week for a batch cooking plan.
type BatchRequest struct {
	AvailableTime       int      `json:"available_time" validate:"required,gt=0"`
	CookingDays         []string `json:"cooking_days" validate:"required,min=1"`
	Servings            int      `json:"servings" validate:"gte=0"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Preferences         []string `json:"preferences"`
	SkillLevel          string   `json:"skill_level"`
	Equipment           []string `json:"equipment"`
}

type QuickRequest struct {
	MaxActiveTime       int      `json:"max_active_time" validate:"required,gt=0"`
	MealType            string   `json:"meal_type"`
	Servings            int      `json:"servings" validate:"gte=0"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Preferences         []string `json:"preferences"`
}

type LeftoverRequest struct {
	LeftoverIngredients []string `json:"leftover_ingredients" validate:"required,min=1"`
	OriginalDish        string   `json:"original_dish"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Preferences         []string `json:"preferences"`
	MealType            string   `json:"meal_type"`
}

const batchSystem = `You are a meal preparation expert for busy professionals.
Create a detailed batch cooking plan that maximizes efficiency and minimizes daily cooking time.
Focus on recipes that store well, can be made in large batches, and can be quickly reheated.
Consider the user's available time, cooking days, dietary restrictions, and preferences.
Provide instructions for how to efficiently batch cook multiple meals in one session.
Include a schedule showing which days to cook and which days to eat the prepared meals.`

const quickSystem = `You are a culinary expert specialized in quick, efficient cooking.
Provide recipes that can be prepared within the specified active cooking time.
Focus on efficiency, minimal steps, and techniques that maximize flavor with minimal effort.
Consider the user's dietary restrictions and preferences.
Active cooking time means time when the cook must be actively involved, not waiting time.`

const leftoverSystem = `You are a creative chef specializing in transforming leftovers into new, exciting dishes.
Generate recipes that use the specified leftover ingredients to create completely different meals.
Focus on minimal additional ingredients, quick preparation, and maximum flavor transformation.
Consider the user's dietary restrictions and preferences.`

func joinOr(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}

func mealTypeText(mealType string) string {
	if mealType == "" {
		return "for any meal"
	}
	return "for " + mealType
}

func servingsOrOne(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// BatchPrompt builds the user prompt for a batch cooking plan.
func BatchPrompt(req BatchRequest) string {
	skill := req.SkillLevel
	if skill == "" {
		skill = "intermediate"
	}
	var b strings.Builder
	b.WriteString("Create a detailed batch cooking plan for a busy professional with the following parameters:\n")
	fmt.Fprintf(&b, "- Available time for meal prep: %d minutes\n", req.AvailableTime)
	fmt.Fprintf(&b, "- Days available for cooking: %s\n", strings.Join(req.CookingDays, ", "))
	fmt.Fprintf(&b, "- Number of servings: %d\n", servingsOrOne(req.Servings))
	fmt.Fprintf(&b, "- Dietary restrictions: %s\n", joinOr(req.DietaryRestrictions, "none"))
	fmt.Fprintf(&b, "- Food preferences: %s\n", joinOr(req.Preferences, "no specific preferences"))
	fmt.Fprintf(&b, "- Cooking skill level: %s\n", skill)
	fmt.Fprintf(&b, "- Available equipment: %s\n", joinOr(req.Equipment, "basic kitchen equipment"))
	b.WriteString(`
Please provide:
1. A shopping list organized by section (produce, proteins, pantry items, etc.)
2. A detailed cooking plan with steps optimized for efficiency
3. Storage instructions for each prepared component
4. A weekly meal schedule showing what to eat each day
5. Quick assembly instructions for each meal

Return the response as JSON with the following structure:
{
  "shopping_list": {"produce": [], "proteins": [], "pantry": [], "dairy": [], "other": []},
  "cooking_plan": {
    "prep_steps": [{"step": 1, "description": "...", "time": "X minutes"}],
    "total_active_time": "X minutes",
    "total_passive_time": "X minutes"
  },
  "recipes": [{
    "name": "Recipe Name",
    "ingredients": ["ingredient1"],
    "storage_instructions": "...",
    "reheating_instructions": "...",
    "nutrition_info": {"calories": 0, "protein": "Xg", "carbs": "Xg", "fat": "Xg"},
    "meal_category": "breakfast/lunch/dinner"
  }],
  "weekly_schedule": {"Monday": {"breakfast": "...", "lunch": "...", "dinner": "..."}},
  "tips": ["tip1", "tip2", "tip3"]
}`)
	return b.String()
}

// QuickPrompt builds the user prompt for recipes bounded by active time.
func QuickPrompt(req QuickRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide 3 recipe options that require no more than %d minutes of active cooking time %s.\n",
		req.MaxActiveTime, mealTypeText(req.MealType))
	fmt.Fprintf(&b, "- Number of servings: %d\n", servingsOrOne(req.Servings))
	fmt.Fprintf(&b, "- Dietary restrictions: %s\n", joinOr(req.DietaryRestrictions, "none"))
	fmt.Fprintf(&b, "- Food preferences: %s\n", joinOr(req.Preferences, "no specific preferences"))
	b.WriteString(`
For each recipe, please include:
1. Name and brief description
2. Ingredients list with quantities
3. Step-by-step instructions with time estimates for each step
4. Total active cooking time (time when cook must be present and working)
5. Total passive time (e.g., baking time when cook can do other things)
6. Nutritional information
7. Tips for making the recipe even more efficient

Return the response as JSON with the following structure:
{
  "recipes": [{
    "name": "Recipe Name",
    "description": "Brief description",
    "ingredients": ["1 cup of X", "2 tablespoons of Y"],
    "instructions": [{"step": 1, "description": "...", "time": "X minutes", "is_active": true}],
    "active_time": "X minutes",
    "passive_time": "X minutes",
    "total_time": "X minutes",
    "nutrition_info": {"calories": 0, "protein": "Xg", "carbs": "Xg", "fat": "Xg"},
    "efficiency_tips": ["tip1", "tip2"]
  }]
}`)
	return b.String()
}

// LeftoverPrompt builds the user prompt for leftover transformations.
func LeftoverPrompt(req LeftoverRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create 2-3 creative recipe ideas to transform these leftover ingredients %s:\n",
		mealTypeText(req.MealType))
	fmt.Fprintf(&b, "- Leftover ingredients: %s\n", strings.Join(req.LeftoverIngredients, ", "))
	if req.OriginalDish != "" {
		fmt.Fprintf(&b, "- The original dish was: %s.\n", req.OriginalDish)
	}
	fmt.Fprintf(&b, "- Dietary restrictions: %s\n", joinOr(req.DietaryRestrictions, "none"))
	fmt.Fprintf(&b, "- Food preferences: %s\n", joinOr(req.Preferences, "no specific preferences"))
	b.WriteString(`
For each recipe transformation, please include:
1. Name and brief description
2. Additional ingredients needed (aim to minimize these)
3. Step-by-step instructions
4. Total preparation time
5. Tips for customization

Return the response as JSON with the following structure:
{
  "transformations": [{
    "name": "New Dish Name",
    "description": "Brief description",
    "leftover_ingredients_used": ["ingredient1"],
    "additional_ingredients": ["ingredient1"],
    "instructions": [{"step": 1, "description": "..."}],
    "prep_time": "X minutes",
    "cooking_time": "X minutes",
    "customization_tips": ["tip1", "tip2"]
  }],
  "general_tips": ["tip for using leftovers effectively", "storage recommendation"]
}`)
	return b.String()
}

// BatchCookingPlan returns the model's batch cooking plan as decoded JSON.
func (s *Service) BatchCookingPlan(ctx context.Context, req BatchRequest) (map[string]any, error) {
	out, err := s.prep(ctx, batchSystem, BatchPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("create batch cooking plan: %w", err)
	}
	return out, nil
}

// QuickRecipes returns recipes that fit within the requested active time.
func (s *Service) QuickRecipes(ctx context.Context, req QuickRequest) (map[string]any, error) {
	out, err := s.prep(ctx, quickSystem, QuickPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("get time-optimized recipes: %w", err)
	}
	return out, nil
}

// TransformLeftovers returns ideas that turn leftovers into new dishes.
func (s *Service) TransformLeftovers(ctx context.Context, req LeftoverRequest) (map[string]any, error) {
	out, err := s.prep(ctx, leftoverSystem, LeftoverPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("transform leftovers: %w", err)
	}
	return out, nil
}

func (s *Service) prep(ctx context.Context, system, user string) (map[string]any, error) {
	if s.llm == nil {
		return nil, llm.ErrNotConfigured
	}
	raw, err := s.llm.Generate(ctx, llm.Prompt{
		System:      system,
		User:        user,
		JSON:        true,
		Model:       prepModel,
		Temperature: 1,
	})
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := llm.DecodeObject(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
