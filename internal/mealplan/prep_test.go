package mealplan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dukerupert/fusionmeals/internal/llm"
)

func TestBatchPromptDefaults(t *testing.T) {
	p := BatchPrompt(BatchRequest{AvailableTime: 120, CookingDays: []string{"Saturday", "Sunday"}})
	for _, want := range []string{
		"- Available time for meal prep: 120 minutes",
		"- Days available for cooking: Saturday, Sunday",
		"- Number of servings: 1",
		"- Dietary restrictions: none",
		"- Food preferences: no specific preferences",
		"- Cooking skill level: intermediate",
		"- Available equipment: basic kitchen equipment",
		`"weekly_schedule"`,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("BatchPrompt missing %q", want)
		}
	}
}

func TestQuickPrompt(t *testing.T) {
	tests := []struct {
		req  QuickRequest
		want string
	}{
		{QuickRequest{MaxActiveTime: 20}, "no more than 20 minutes of active cooking time for any meal."},
		{QuickRequest{MaxActiveTime: 15, MealType: "breakfast"}, "no more than 15 minutes of active cooking time for breakfast."},
		{QuickRequest{MaxActiveTime: 15, Servings: 3}, "- Number of servings: 3"},
		{QuickRequest{MaxActiveTime: 15, DietaryRestrictions: []string{"vegan", "gluten-free"}}, "- Dietary restrictions: vegan, gluten-free"},
	}
	for _, tt := range tests {
		if got := QuickPrompt(tt.req); !strings.Contains(got, tt.want) {
			t.Errorf("QuickPrompt(%+v) missing %q", tt.req, tt.want)
		}
	}
}

func TestLeftoverPrompt(t *testing.T) {
	p := LeftoverPrompt(LeftoverRequest{LeftoverIngredients: []string{"rice", "chicken"}, OriginalDish: "stir fry"})
	if !strings.Contains(p, "- Leftover ingredients: rice, chicken") {
		t.Error("missing leftover list")
	}
	if !strings.Contains(p, "The original dish was: stir fry.") {
		t.Error("missing original dish")
	}

	p = LeftoverPrompt(LeftoverRequest{LeftoverIngredients: []string{"rice"}})
	if strings.Contains(p, "original dish was") {
		t.Error("original dish line should be omitted when unknown")
	}
}

func TestPrepCalls(t *testing.T) {
	var prompts []llm.Prompt
	svc := NewService(llm.CompletionsFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		prompts = append(prompts, p)
		return "```json\n{\"recipes\": [{\"name\": \"Omelette\"}]}\n```", nil
	}), nil)
	ctx := context.Background()

	out, err := svc.QuickRecipes(ctx, QuickRequest{MaxActiveTime: 10})
	if err != nil {
		t.Fatalf("QuickRecipes: %v", err)
	}
	recipes, ok := out["recipes"].([]any)
	if !ok || len(recipes) != 1 {
		t.Fatalf("recipes = %#v", out["recipes"])
	}

	if _, err := svc.BatchCookingPlan(ctx, BatchRequest{AvailableTime: 60, CookingDays: []string{"Sunday"}}); err != nil {
		t.Fatalf("BatchCookingPlan: %v", err)
	}
	if _, err := svc.TransformLeftovers(ctx, LeftoverRequest{LeftoverIngredients: []string{"rice"}}); err != nil {
		t.Fatalf("TransformLeftovers: %v", err)
	}

	wantSystem := []string{quickSystem, batchSystem, leftoverSystem}
	for i, p := range prompts {
		if p.Model != prepModel || !p.JSON || p.System != wantSystem[i] {
			t.Errorf("prompt %d = model %q json %v", i, p.Model, p.JSON)
		}
	}
}

func TestPrepBadReply(t *testing.T) {
	svc := NewService(llm.CompletionsFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		return "sorry, no plan today", nil
	}), nil)

	_, err := svc.BatchCookingPlan(context.Background(), BatchRequest{AvailableTime: 60, CookingDays: []string{"Sunday"}})
	var upErr *llm.UpstreamFormatError
	if !errors.As(err, &upErr) {
		t.Fatalf("err = %v, want UpstreamFormatError", err)
	}
	if !strings.HasPrefix(err.Error(), "create batch cooking plan: ") {
		t.Errorf("err = %q", err)
	}
}
