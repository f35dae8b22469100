package recipe

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/fusionmeals/internal/llm"
)

type AnalysisRequest struct {
	RecipeText         string   `json:"recipe_text" validate:"required"`
	AnalysisFocus      string   `json:"analysis_focus" validate:"omitempty,oneof=flavor health technique all"`
	DietaryPreferences []string `json:"dietary_preferences"`
	SkillLevel         string   `json:"skill_level"`
}

type AnalysisResult struct {
	OriginalRecipe         string           `json:"original_recipe"`
	FlavorProfile          map[string]any   `json:"flavor_profile"`
	HealthAnalysis         map[string]any   `json:"health_analysis"`
	ImprovementSuggestions []map[string]any `json:"improvement_suggestions"`
	TechniqueTips          []string         `json:"technique_tips"`
	IngredientInsights     map[string]any   `json:"ingredient_insights"`
}

const analysisTemplate = `As a world-class culinary expert and food scientist, analyze this recipe and provide detailed insights:

RECIPE:
%s

ANALYSIS FOCUS: %s
DIETARY PREFERENCES: %s
SKILL LEVEL: %s

Provide a comprehensive analysis including:

1. FLAVOR PROFILE: dominant flavor components, balance, missing dimensions, notable combinations.
2. HEALTH ANALYSIS: approximate nutrition per serving, allergens, benefits and concerns.
3. IMPROVEMENT SUGGESTIONS: at least 3 specific ways to elevate the recipe.
4. TECHNIQUE TIPS: common mistakes, professional tips, why techniques are used.
5. INGREDIENT INSIGHTS: key ingredients and their purpose, alternatives, special ingredients.

Format your analysis as JSON with this structure:
{
  "flavor_profile": {
    "dominant_flavors": ["sweet", "umami"],
    "balance": "",
    "missing_elements": "",
    "flavor_combinations": ""
  },
  "health_analysis": {
    "estimated_nutrition": {"calories_per_serving": "", "protein": "", "carbs": "", "fats": ""},
    "allergens": [""],
    "health_benefits": [""],
    "health_concerns": [""]
  },
  "improvement_suggestions": [
    {"suggestion": "", "benefit": "", "implementation": ""}
  ],
  "technique_tips": [""],
  "ingredient_insights": {
    "key_ingredients": [""],
    "alternative_ingredients": [""],
    "special_ingredients": [""]
  }
}

Be specific, insightful, and practical.`

// AnalysisPrompt builds the recipe analysis prompt.
func AnalysisPrompt(req AnalysisRequest) string {
	recipe, _, _ := formatRecipe(strings.TrimSpace(req.RecipeText))
	prefs := "None specified"
	if len(req.DietaryPreferences) > 0 {
		prefs = strings.Join(req.DietaryPreferences, ", ")
	}
	return fmt.Sprintf(analysisTemplate, recipe,
		orDefault(req.AnalysisFocus, "all"),
		prefs,
		orDefault(req.SkillLevel, "intermediate"),
	)
}

// Analyze asks the model for a structured analysis of a recipe.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	c, err := s.completions()
	if err != nil {
		return nil, err
	}
	raw, err := c.Generate(ctx, llm.Prompt{
		User:        AnalysisPrompt(req),
		JSON:        true,
		Model:       "gpt-3.5-turbo",
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze recipe: %w", err)
	}

	res := &AnalysisResult{OriginalRecipe: strings.TrimSpace(req.RecipeText)}
	if err := llm.DecodeObject(raw, res); err != nil {
		return nil, err
	}
	res.OriginalRecipe = strings.TrimSpace(req.RecipeText)
	if res.FlavorProfile == nil {
		res.FlavorProfile = map[string]any{}
	}
	if res.HealthAnalysis == nil {
		res.HealthAnalysis = map[string]any{}
	}
	if res.ImprovementSuggestions == nil {
		res.ImprovementSuggestions = []map[string]any{}
	}
	if res.TechniqueTips == nil {
		res.TechniqueTips = []string{}
	}
	if res.IngredientInsights == nil {
		res.IngredientInsights = map[string]any{}
	}
	return res, nil
}
