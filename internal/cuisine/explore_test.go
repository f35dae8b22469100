package cuisine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dukerupert/fusionmeals/internal/llm"
)

func boolPtr(b bool) *bool { return &b }

func TestQuery(t *testing.T) {
	tests := []struct {
		req  ExploreRequest
		want string
	}{
		{ExploreRequest{}, "cuisine"},
		{ExploreRequest{Region: "East Asia"}, "cuisine from the East Asia region"},
		{ExploreRequest{Region: "East Asia", Country: "Japan"}, "cuisine from Japan"},
		{ExploreRequest{Country: "Peru", DietaryPreference: "vegan"}, "cuisine from Peru with a focus on vegan options"},
		{ExploreRequest{DifficultyLevel: "beginner"}, "cuisine suitable for beginner cooks"},
	}
	for _, tt := range tests {
		if got := Query(tt.req); got != tt.want {
			t.Errorf("Query(%+v) = %q, want %q", tt.req, got, tt.want)
		}
	}
}

func TestExplorePromptSections(t *testing.T) {
	p := ExplorePrompt(ExploreRequest{Country: "Italy"})
	if !strings.Contains(p, "Historical origins") || !strings.Contains(p, "Basic instructions for home cooks") {
		t.Error("default prompt should include history and techniques")
	}

	p = ExplorePrompt(ExploreRequest{Country: "Italy", IncludeHistory: boolPtr(false), IncludeTechniques: boolPtr(false)})
	if strings.Contains(p, "Historical origins") || strings.Contains(p, "Basic instructions for home cooks") {
		t.Error("disabled sections should be omitted")
	}
	if !strings.Contains(p, `"cuisine_info"`) {
		t.Error("prompt should always describe the JSON shape")
	}
}

func TestExplore(t *testing.T) {
	var got llm.Prompt
	svc := NewService(llm.CompletionsFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		got = p
		return `{"cuisine_info": {"name": "Thai"}, "representative_dishes": [{"name": "Pad Thai"}], "techniques": [{"name": "Pounding"}]}`, nil
	}), nil)

	res, err := svc.Explore(context.Background(), ExploreRequest{Country: "Thailand"})
	if err != nil {
		t.Fatalf("Explore: %v", err)
	}
	if res.CuisineInfo["name"] != "Thai" || len(res.RepresentativeDishes) != 1 || len(res.Techniques) != 1 {
		t.Errorf("result = %+v", res)
	}
	if got.Model != "gpt-4-turbo" || !got.JSON || got.System != exploreSystem {
		t.Errorf("prompt model = %q json = %v", got.Model, got.JSON)
	}

	res, err = svc.Explore(context.Background(), ExploreRequest{Country: "Thailand", IncludeTechniques: boolPtr(false)})
	if err != nil {
		t.Fatalf("Explore: %v", err)
	}
	if res.Techniques != nil {
		t.Errorf("Techniques = %v, want nil", res.Techniques)
	}
}

func TestExploreMissingFields(t *testing.T) {
	svc := NewService(llm.CompletionsFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		return `{"cuisine_info": {"name": "Thai"}}`, nil
	}), nil)

	_, err := svc.Explore(context.Background(), ExploreRequest{})
	var upErr *llm.UpstreamFormatError
	if !errors.As(err, &upErr) {
		t.Fatalf("err = %v, want UpstreamFormatError", err)
	}
}
