package recipe

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/dukerupert/fusionmeals/internal/llm"
)

func TestRecipeOfTheDay(t *testing.T) {
	var prompt llm.Prompt
	fake := llm.CompletionsFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		prompt = p
		return "TITLE: Taco Curry\n\nDESCRIPTION: Tacos meet curry.\nSpicy and bright.\n\nINGREDIENTS:\n- tortillas", nil
	})
	s := NewService(fake, nil, nil)
	s.pick = func(int) int { return 1 }

	got := s.RecipeOfTheDay(context.Background())
	if got.Title != "Taco Curry" {
		t.Errorf("title = %q, want %q", got.Title, "Taco Curry")
	}
	if got.Description != "Tacos meet curry.\nSpicy and bright." {
		t.Errorf("description = %q", got.Description)
	}
	if !reflect.DeepEqual(got.Cuisines, []string{"Mexican", "Thai"}) {
		t.Errorf("cuisines = %v", got.Cuisines)
	}
	if prompt.Model != "gpt-3.5-turbo" || prompt.Temperature != 0.8 {
		t.Errorf("prompt = %+v", prompt)
	}
}

func TestRecipeOfTheDayFallback(t *testing.T) {
	failing := llm.CompletionsFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		return "", errors.New("upstream down")
	})
	for name, c := range map[string]llm.Completions{"error": failing, "unconfigured": nil} {
		t.Run(name, func(t *testing.T) {
			s := NewService(c, nil, nil)
			s.pick = func(int) int { return 0 }

			got := s.RecipeOfTheDay(context.Background())
			if got.Title != "Simple Italian-Japanese Fusion Dish" {
				t.Errorf("title = %q", got.Title)
			}
			want := "A delicious fusion dish combining elements from Italian and Japanese cuisines. Perfect for a quick, flavorful meal."
			if got.Description != want {
				t.Errorf("description = %q, want %q", got.Description, want)
			}
			if got.ImageURL != nil {
				t.Errorf("image_url = %v, want nil", *got.ImageURL)
			}
		})
	}
}

func TestDailyExtractionDefaults(t *testing.T) {
	if got := DailyTitle("no title", "Greek", "Japanese"); got != "Greek-Japanese Fusion Dish" {
		t.Errorf("DailyTitle = %q", got)
	}
	if got := DailyDescription("none"); got != "A delicious fusion recipe combining the best of two culinary worlds." {
		t.Errorf("DailyDescription = %q", got)
	}
}
