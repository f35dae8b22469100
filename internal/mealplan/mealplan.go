// Package mealplan generates weekly meal plans with their grocery lists and
// the meal-prep plans (batch cooking, time-optimized recipes, leftovers).
package mealplan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/fusionmeals/internal/llm"
)

// PlanTimeout bounds the weekly plan call, which returns a long document.
const PlanTimeout = 180 * time.Second

// NoPlanWarning replaces a meal plan the model returned empty.
const NoPlanWarning = "AI couldn't generate a meal plan. Please try again!"

type Service struct {
	llm    llm.Completions
	logger *slog.Logger
}

func NewService(c llm.Completions, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{llm: c, logger: logger.With("component", "mealplan")}
}

type Request struct {
	DietType    string `json:"diet_type" validate:"required"`
	Preferences string `json:"preferences"`
}

type Result struct {
	MealPlan string `json:"meal_plan,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

const planTemplate = `You are a dietician specializing in healthy meal planning.

Create a 7-day meal plan that is **%s** and follows these preferences: **%s**.

Format the response in this exact structure:

# 7-Day Meal Plan

## Day 1
- 🥞 **Breakfast**: [Meal with brief description]
- 🥗 **Lunch**: [Meal with brief description]
- 🍛 **Dinner**: [Meal with brief description]

[Repeat for Days 2-7]

# 🛒 Weekly Grocery List

List ALL ingredients needed for the ENTIRE WEEK (21 meals), organized by category, with realistic weekly quantities:

## Produce
- [Item] - [Weekly quantity needed]

## Meat & Seafood
- [Item] - [Weekly quantity needed]

## Dairy & Eggs
- [Item] - [Weekly quantity needed]

## Pantry
- [Item] - [Weekly quantity needed]

## Spices & Seasonings
- [Item] - [Weekly quantity needed]

## Beverages
- [Item] - [Weekly quantity needed]

CRITICAL FORMATTING REQUIREMENTS:
1. ALWAYS include ALL SIX categories in the grocery list (Produce, Meat & Seafood, Dairy & Eggs, Pantry, Spices & Seasonings, Beverages)
2. ALWAYS format each category with '## ' prefix (e.g., '## Produce')
3. ALWAYS include at least 3 items in each category
4. For vegan/vegetarian diets, include plant-based alternatives in the Meat & Seafood section
5. Include ALL ingredients needed for every meal, grouped sensibly, in standard US measurements
6. Account for ingredients used in multiple meals`

// Prompt builds the weekly meal plan prompt.
func Prompt(req Request) string {
	return fmt.Sprintf(planTemplate, req.DietType, req.Preferences)
}

// Generate asks the model for a weekly meal plan and cleans up the markdown.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if s.llm == nil {
		return nil, llm.ErrNotConfigured
	}
	raw, err := s.llm.Generate(ctx, llm.Prompt{
		User:        Prompt(req),
		Model:       "gpt-4",
		Temperature: 0.7,
		Timeout:     PlanTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("generate meal plan: %w", err)
	}

	plan := Clean(raw)
	if plan == "" {
		return &Result{Warning: NoPlanWarning}, nil
	}
	return &Result{MealPlan: plan}, nil
}

var unescape = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\r`, "\n")

// Clean turns literal escape sequences into real whitespace, trims every
// line, drops blank ones and separates the rest with blank lines.
func Clean(text string) string {
	text = unescape.Replace(strings.TrimSpace(text))
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n\n")
}
