// Package aichef is the premium personal chef: personalized meal plans,
// cooking guidance, sourcing, curation, student meals and a local
// micronutrient estimate.
package aichef

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/fusionmeals/internal/llm"
	"github.com/dukerupert/fusionmeals/internal/model"
)

const (
	TypeMealPlan              = "meal_plan"
	TypeCookingGuidance       = "cooking_guidance"
	TypeIngredientSourcing    = "ingredient_sourcing"
	TypeRecipeCuration        = "recipe_curation"
	TypeStudentMeals          = "student_meals"
	TypeMicronutrientAnalysis = "micronutrient_analysis"
)

// RequestsRemaining is reported with every premium response. Usage is not metered.
const RequestsRemaining = 25

const chefSystem = "You are an AI Personal Chef assistant that creates premium culinary content for paying subscribers. Provide detailed, personalized responses in JSON format."

var (
	ErrPremiumRequired    = errors.New("premium subscription required")
	ErrInvalidRequestType = errors.New("invalid request type")
)

// Meals names the day's meals for a micronutrient estimate.
type Meals struct {
	Breakfast string   `json:"breakfast"`
	Lunch     string   `json:"lunch"`
	Dinner    string   `json:"dinner"`
	Snacks    []string `json:"snacks"`
}

type Request struct {
	RequestType          string         `json:"request_type" validate:"required"`
	RecipeText           string         `json:"recipe_text"`
	Occasion             string         `json:"occasion"`
	Timeframe            string         `json:"timeframe"`
	BudgetLevel          string         `json:"budget_level"`
	SpecificIngredient   string         `json:"specific_ingredient"`
	CuisineType          string         `json:"cuisine_type"`
	CookingMethod        string         `json:"cooking_method"`
	DetailedInstructions *bool          `json:"detailed_instructions"`
	VideoInstructions    bool           `json:"video_instructions"`
	KitchenEquipment     string         `json:"kitchen_equipment"`
	CookingSkill         string         `json:"cooking_skill"`
	PrepTimeLimit        string         `json:"prep_time_limit"`
	DietaryPreference    string         `json:"dietary_preference"`
	Meals                *Meals         `json:"meals"`
	Micronutrients       map[string]any `json:"micronutrients"`
}

type SubscriptionInfo struct {
	Level      string    `json:"level"`
	ExpiryDate time.Time `json:"expiry_date"`
}

type Response struct {
	PremiumContent   map[string]any   `json:"premium_content"`
	UserSubscription SubscriptionInfo `json:"user_subscription"`
	RequestRemaining int              `json:"request_remaining"`
	Suggestions      []string         `json:"suggestions"`
}

type Service struct {
	llm    llm.Completions
	logger *slog.Logger
	now    func() time.Time
}

func NewService(c llm.Completions, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{llm: c, logger: logger.With("component", "aichef"), now: time.Now}
}

// Prompt builds the user prompt for an LLM-backed request type.
func Prompt(req Request, prefs model.Preferences) (string, error) {
	switch req.RequestType {
	case TypeMealPlan:
		return MealPlanPrompt(req, prefs), nil
	case TypeCookingGuidance:
		return CookingGuidancePrompt(req, prefs), nil
	case TypeIngredientSourcing:
		return IngredientSourcingPrompt(req), nil
	case TypeRecipeCuration:
		return RecipeCurationPrompt(req, prefs), nil
	case TypeStudentMeals:
		return StudentMealsPrompt(req, prefs), nil
	}
	return "", ErrInvalidRequestType
}

// Chef answers a premium request for the subscriber sub. Non-premium or
// expired subscriptions get ErrPremiumRequired.
func (s *Service) Chef(ctx context.Context, req Request, sub *model.Subscription) (*Response, error) {
	if !sub.IsPremium(s.now()) {
		return nil, ErrPremiumRequired
	}

	resp := &Response{
		UserSubscription: SubscriptionInfo{Level: sub.Level, ExpiryDate: sub.ExpiryDate},
		RequestRemaining: RequestsRemaining,
		Suggestions:      Suggestions(req.RequestType),
	}

	if req.RequestType == TypeMicronutrientAnalysis {
		var meals Meals
		if req.Meals != nil {
			meals = *req.Meals
		}
		resp.PremiumContent = map[string]any{
			"micronutrient_analysis": FillMicronutrients(req.Micronutrients, EstimateMicronutrients(meals)),
		}
		return resp, nil
	}

	prompt, err := Prompt(req, sub.Preferences)
	if err != nil {
		return nil, err
	}
	if s.llm == nil {
		return nil, llm.ErrNotConfigured
	}

	raw, err := s.llm.Generate(ctx, llm.Prompt{
		System:      chefSystem,
		User:        prompt,
		JSON:        true,
		Model:       "gpt-4-turbo",
		Temperature: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("generate ai chef response: %w", err)
	}
	var content map[string]any
	if err := llm.DecodeObject(raw, &content); err != nil {
		return nil, fmt.Errorf("generate ai chef response: %w", err)
	}
	resp.PremiumContent = content

	s.logger.Debug("ai chef response", "request_type", req.RequestType, "user_id", sub.UserID)
	return resp, nil
}

// Suggestions are follow-up ideas shown with each request type.
func Suggestions(requestType string) []string {
	switch requestType {
	case TypeMealPlan:
		return []string{
			"Try our AI Chef's seasonal ingredient spotlight",
			"Explore restaurant-quality recipes using your favorite ingredients",
			"Get cooking guidance with video instructions for complex techniques",
		}
	case TypeCookingGuidance:
		return []string{
			"Ask for plating techniques used in fine dining restaurants",
			"Try our ingredient sourcing guide for specialty items",
			"Get a customized wine pairing for your next dinner party",
		}
	case TypeIngredientSourcing:
		return []string{
			"Discover local farmers markets and specialty stores near you",
			"Learn how to build a restaurant-quality pantry",
			"Try our subscription ingredient box curated by top chefs",
		}
	case TypeRecipeCuration:
		return []string{
			"Get a full dinner party menu with timing guide",
			"Try recipes featuring seasonal ingredients",
			"Ask for recipes inspired by your favorite restaurants",
		}
	case TypeStudentMeals:
		return []string{
			"Get tips for cooking in a dormitory kitchen",
			"Learn to meal prep for a busy exam week",
			"Try our budget-friendly grocery shopping guide",
			"Explore brain-boosting foods for better focus",
		}
	}
	return []string{}
}
