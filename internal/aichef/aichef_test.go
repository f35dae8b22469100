package aichef

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/fusionmeals/internal/llm"
	"github.com/dukerupert/fusionmeals/internal/model"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func premium() *model.Subscription {
	return &model.Subscription{
		UserID:      "u1",
		Level:       model.SubscriptionPremium,
		Preferences: model.DefaultPreferences(),
		ExpiryDate:  testNow.Add(24 * time.Hour),
	}
}

func newTestService(c llm.Completions) *Service {
	s := NewService(c, nil)
	s.now = func() time.Time { return testNow }
	return s
}

func TestChefPremiumGate(t *testing.T) {
	svc := newTestService(nil)
	expired := premium()
	expired.ExpiryDate = testNow.Add(-time.Hour)
	basic := premium()
	basic.Level = model.SubscriptionBasic

	tests := []struct {
		name string
		sub  *model.Subscription
	}{
		{"nil", nil},
		{"basic", basic},
		{"expired", expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Chef(context.Background(), Request{RequestType: TypeMealPlan}, tt.sub)
			if !errors.Is(err, ErrPremiumRequired) {
				t.Errorf("err = %v, want ErrPremiumRequired", err)
			}
		})
	}
}

func TestChefInvalidType(t *testing.T) {
	svc := newTestService(llm.CompletionsFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		t.Fatal("model should not be called")
		return "", nil
	}))
	_, err := svc.Chef(context.Background(), Request{RequestType: "party_planning"}, premium())
	if !errors.Is(err, ErrInvalidRequestType) {
		t.Errorf("err = %v, want ErrInvalidRequestType", err)
	}
}

func TestChefMealPlan(t *testing.T) {
	var got llm.Prompt
	svc := newTestService(llm.CompletionsFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		got = p
		return `{"meal_plan": {"days": []}, "estimated_total_cost": "$80"}`, nil
	}))

	sub := premium()
	resp, err := svc.Chef(context.Background(), Request{RequestType: TypeMealPlan, Occasion: "birthday"}, sub)
	if err != nil {
		t.Fatalf("Chef: %v", err)
	}
	if resp.PremiumContent["estimated_total_cost"] != "$80" {
		t.Errorf("PremiumContent = %v", resp.PremiumContent)
	}
	if resp.UserSubscription.Level != "premium" || !resp.UserSubscription.ExpiryDate.Equal(sub.ExpiryDate) {
		t.Errorf("UserSubscription = %+v", resp.UserSubscription)
	}
	if resp.RequestRemaining != 25 {
		t.Errorf("RequestRemaining = %d, want 25", resp.RequestRemaining)
	}
	if len(resp.Suggestions) != 3 {
		t.Errorf("len(Suggestions) = %d, want 3", len(resp.Suggestions))
	}
	if got.Model != "gpt-4-turbo" || !got.JSON || got.System != chefSystem {
		t.Errorf("prompt model = %q json = %v", got.Model, got.JSON)
	}
	for _, want := range []string{"a week with a moderate budget", "Italian, Japanese, Mexican", "Special occasion: birthday", "Household size: 2"} {
		if !strings.Contains(got.User, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestChefMicronutrientsSkipsModel(t *testing.T) {
	svc := newTestService(nil)
	resp, err := svc.Chef(context.Background(), Request{
		RequestType: TypeMicronutrientAnalysis,
		Meals:       &Meals{Breakfast: "Oatmeal with banana"},
	}, premium())
	if err != nil {
		t.Fatalf("Chef: %v", err)
	}
	analysis, ok := resp.PremiumContent["micronutrient_analysis"].(map[string]string)
	if !ok {
		t.Fatalf("micronutrient_analysis = %T", resp.PremiumContent["micronutrient_analysis"])
	}
	if analysis["potassium"] != "70% DV" {
		t.Errorf("potassium = %q, want 70%% DV", analysis["potassium"])
	}
	if resp.Suggestions == nil || len(resp.Suggestions) != 0 {
		t.Errorf("Suggestions = %v, want empty", resp.Suggestions)
	}
}

func TestChefNotConfigured(t *testing.T) {
	svc := newTestService(nil)
	_, err := svc.Chef(context.Background(), Request{RequestType: TypeRecipeCuration}, premium())
	if !errors.Is(err, llm.ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestChefBadReply(t *testing.T) {
	svc := newTestService(llm.CompletionsFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		return "not json", nil
	}))
	_, err := svc.Chef(context.Background(), Request{RequestType: TypeStudentMeals}, premium())
	var upErr *llm.UpstreamFormatError
	if !errors.As(err, &upErr) {
		t.Errorf("err = %v, want UpstreamFormatError", err)
	}
}

func TestStudentMealsPrompt(t *testing.T) {
	prefs := model.DefaultPreferences()
	tests := []struct {
		req  Request
		want []string
	}{
		{Request{}, []string{
			"- Budget level: budget",
			"- Prep time limit: 15 minutes or less",
			"- Available equipment: minimal equipment (microwave, toaster)",
			"- Cooking skill: intermediate",
			"- Dietary preference: Low Carb",
		}},
		{Request{PrepTimeLimit: "30_minutes", KitchenEquipment: "standard", CookingSkill: "advanced", DietaryPreference: "vegan"}, []string{
			"- Prep time limit: 30 minutes or less",
			"- Available equipment: standard equipment (stovetop, oven)",
			"- Cooking skill: advanced",
			"- Dietary preference: vegan",
		}},
		{Request{PrepTimeLimit: "2_hours", KitchenEquipment: "campfire"}, []string{
			"- Prep time limit: quick",
			"- Available equipment: limited kitchen equipment",
		}},
	}
	for _, tt := range tests {
		got := StudentMealsPrompt(tt.req, prefs)
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("StudentMealsPrompt(%+v) missing %q", tt.req, w)
			}
		}
	}
}

func TestOtherPrompts(t *testing.T) {
	prefs := model.DefaultPreferences()

	p := CookingGuidancePrompt(Request{RecipeText: "Risotto", CookingMethod: "sous vide", VideoInstructions: true}, prefs)
	for _, want := range []string{"Risotto", "User's cooking skill: intermediate", "7. Visual guides for sous vide method", "video timestamps"} {
		if !strings.Contains(p, want) {
			t.Errorf("CookingGuidancePrompt missing %q", want)
		}
	}

	p = IngredientSourcingPrompt(Request{})
	if !strings.Contains(p, "guidance for a high-quality meal.") || strings.Contains(p, "For recipe:") {
		t.Errorf("IngredientSourcingPrompt defaults wrong:\n%s", p)
	}

	p = RecipeCurationPrompt(Request{}, prefs)
	if !strings.Contains(p, "- Cuisine: Italian, Japanese, Mexican") {
		t.Error("RecipeCurationPrompt should fall back to preferred cuisines")
	}
	p = RecipeCurationPrompt(Request{}, model.Preferences{})
	if !strings.Contains(p, "- Cuisine: any") {
		t.Error("RecipeCurationPrompt should default to any cuisine")
	}
}

func TestSuggestions(t *testing.T) {
	tests := []struct {
		requestType string
		want        int
	}{
		{TypeMealPlan, 3},
		{TypeCookingGuidance, 3},
		{TypeIngredientSourcing, 3},
		{TypeRecipeCuration, 3},
		{TypeStudentMeals, 4},
		{"other", 0},
	}
	for _, tt := range tests {
		if got := Suggestions(tt.requestType); len(got) != tt.want {
			t.Errorf("Suggestions(%q) has %d entries, want %d", tt.requestType, len(got), tt.want)
		}
	}
}
