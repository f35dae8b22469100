package grocery

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/dukerupert/fusionmeals/internal/llm"
	"github.com/dukerupert/fusionmeals/internal/model"
)

func categoriesOf(items []model.GroceryItem) map[string]int {
	m := make(map[string]int)
	for _, it := range items {
		m[it.Category]++
	}
	return m
}

func TestParseDirectEndToEnd(t *testing.T) {
	list, err := ParseDirect("## Dairy & Eggs\n- Milk - 1 gallon\n## Produce\n- Tomatoes - 3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if list.EstimatedTotal != 6 {
		t.Errorf("estimated_total = %v, want 6", list.EstimatedTotal)
	}
	want := []model.GroceryItem{
		{Name: "Milk", Quantity: "1 gallon", Category: DairyEggs},
		{Name: "Tomatoes", Quantity: "3", Category: Produce},
		{Name: "No meat & seafood items needed", Quantity: "", Category: MeatSeafood},
		{Name: "No pantry items needed", Quantity: "", Category: Pantry},
		{Name: "No spices & seasonings items needed", Quantity: "", Category: SpicesSeasonings},
		{Name: "No beverages items needed", Quantity: "", Category: Beverages},
	}
	if !reflect.DeepEqual(list.Items, want) {
		t.Errorf("items =\n%+v\nwant\n%+v", list.Items, want)
	}
}

func TestParseDirectAllCategoriesPresent(t *testing.T) {
	inputs := []string{
		"## Produce\n- Spinach - 1 bunch",
		"Produce\n- Onion - 2\n- Garlic - 3 cloves\n## Beverages\n- Orange juice - 1 l",
		"## Frozen\n- Ice cubes - 1 bag",
		"Shopping\nChicken thighs - 1 kg\nCumin\nCoffee beans-250g",
		"## Produce\n## Dairy & Eggs",
		"## Produce",
	}
	for _, in := range inputs {
		list, err := ParseDirect(in)
		if err != nil {
			t.Fatalf("ParseDirect(%q): %v", in, err)
		}
		cats := categoriesOf(list.Items)
		for _, c := range RequiredCategories {
			if cats[c] == 0 {
				t.Errorf("ParseDirect(%q) missing category %q", in, c)
			}
		}
		if list.EstimatedTotal != float64(len(list.Items)) {
			t.Errorf("ParseDirect(%q) total = %v, want %d", in, list.EstimatedTotal, len(list.Items))
		}
	}
}

func TestParseDirectIdempotent(t *testing.T) {
	in := "## Produce\n- Onion - 2\n## Pantry\n- Rice - 1 cup\n- Tofu - 1 block"
	a, err := ParseDirect(in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, _ := ParseDirect(in)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("parse not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestParseDirectDedup(t *testing.T) {
	list, err := ParseDirect("## Produce\n- Onion - 1\n- onion - 2\n## Pantry\n- ONION - 3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	count := 0
	for _, it := range list.Items {
		if it.Name == "Onion" || it.Name == "onion" || it.Name == "ONION" {
			count++
			if it.Quantity != "1" {
				t.Errorf("kept quantity %q, want first occurrence %q", it.Quantity, "1")
			}
		}
	}
	if count != 1 {
		t.Errorf("onion entries = %d, want 1", count)
	}
}

func TestParseDirectTofuIsMeat(t *testing.T) {
	list, _ := ParseDirect("## Produce\n- Tofu - 1 block")
	if list.Items[0].Name != "Tofu" || list.Items[0].Category != MeatSeafood {
		t.Errorf("first item = %+v, want Tofu in %s", list.Items[0], MeatSeafood)
	}
}

func TestParseDirectProduceOnlyPlaceholders(t *testing.T) {
	list, _ := ParseDirect("## Produce\n- Spinach - 1 bunch")
	if len(list.Items) != 6 {
		t.Fatalf("len = %d, want 6", len(list.Items))
	}
	for _, it := range list.Items[1:] {
		if !IsPlaceholder(it.Name) || it.Quantity != "" {
			t.Errorf("item %+v, want placeholder with empty quantity", it)
		}
	}
}

func TestParseDirectCreamOfTartar(t *testing.T) {
	list, _ := ParseDirect("## Spices & Seasonings\n- Cream of tartar - 1 tsp")
	if list.Items[0].Category != DairyEggs {
		t.Errorf("cream of tartar = %q, want %q", list.Items[0].Category, DairyEggs)
	}
}

func TestParseDirectNoItems(t *testing.T) {
	for _, in := range []string{"## Produce\n## Dairy & Eggs", "## Produce\n", "Apples - 2"} {
		list, err := ParseDirect(in)
		if err != nil {
			t.Fatalf("ParseDirect(%q): %v", in, err)
		}
		if list.EstimatedTotal != 6 || len(list.Items) != 6 {
			t.Fatalf("ParseDirect(%q) = %d items, total %v; want 6 placeholders", in, len(list.Items), list.EstimatedTotal)
		}
		for i, it := range list.Items {
			if it.Category != RequiredCategories[i] || !IsPlaceholder(it.Name) || it.Quantity != "" {
				t.Errorf("ParseDirect(%q) item %d = %+v, want %s placeholder", in, i, it, RequiredCategories[i])
			}
		}
	}
	if _, err := ParseDirect("   \n "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("err = %v, want ErrEmptyInput", err)
	}
}

func TestCategorizerHeadersOnlySkipsModel(t *testing.T) {
	called := false
	fake := llm.CompletionsFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		called = true
		return "", nil
	})
	for _, c := range []*Categorizer{NewCategorizer(nil, nil), NewCategorizer(fake, nil)} {
		list, err := c.Categorize(context.Background(), "## Produce\n## Dairy & Eggs")
		if err != nil {
			t.Fatalf("categorize: %v", err)
		}
		if list.EstimatedTotal != 6 || len(categoriesOf(list.Items)) != len(RequiredCategories) {
			t.Errorf("list = %+v, want six placeholders", list)
		}
	}
	if called {
		t.Error("model should not be asked to fill missing categories")
	}
}

func TestCategorizerEmptyInput(t *testing.T) {
	c := NewCategorizer(nil, nil)
	if _, err := c.Categorize(context.Background(), "  "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("err = %v, want ErrEmptyInput", err)
	}
}

func TestCategorizerSkipsModelOnDirectSuccess(t *testing.T) {
	called := false
	fake := llm.CompletionsFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		called = true
		return "", nil
	})
	c := NewCategorizer(fake, nil)
	if _, err := c.Categorize(context.Background(), "## Produce\n- Kale - 1"); err != nil {
		t.Fatalf("categorize: %v", err)
	}
	if called {
		t.Error("model should not be called when the direct parse succeeds")
	}
}

func TestCategorizerModelFallback(t *testing.T) {
	var prompt llm.Prompt
	fake := llm.CompletionsFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		prompt = p
		return "```json\n{\"items\": [{\"name\": \"Apples\", \"quantity\": \"2\", \"category\": \"Produce\"}], \"estimated_total\": \"1\"}\n```", nil
	})
	c := NewCategorizer(fake, nil)
	list, err := c.fallback(context.Background(), "Apples - 2", errors.New("direct parse failed"))
	if err != nil {
		t.Fatalf("categorize: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Name != "Apples" || list.EstimatedTotal != 1 {
		t.Errorf("list = %+v", list)
	}
	if prompt.Model != "gpt-4" || prompt.Temperature != 0.2 || prompt.MaxTokens != 2000 || !prompt.JSON {
		t.Errorf("prompt = %+v", prompt)
	}
}

func TestCategorizerFailure(t *testing.T) {
	fake := llm.CompletionsFunc(func(ctx context.Context, p llm.Prompt) (string, error) {
		return "Sorry, I can't do that.", nil
	})
	c := NewCategorizer(fake, nil)
	_, err := c.fallback(context.Background(), "Apples - 2", errors.New("direct parse failed"))
	var ce *CategorizationError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *CategorizationError", err)
	}
	var fe *llm.UpstreamFormatError
	if !errors.As(err, &fe) {
		t.Errorf("err = %v, want wrapped *llm.UpstreamFormatError", err)
	}
}

func TestHeuristicParse(t *testing.T) {
	text := "Produce:\n- Apples - 3\nBanana-2\n\n## Pantry\nRice\n# skip me\n\n:\n- orphan - 1"
	list := heuristicParse(text)
	want := []model.GroceryItem{
		{Name: "Apples", Quantity: "3", Category: "Produce"},
		{Name: "Banana", Quantity: "2", Category: "Produce"},
		{Name: "Rice", Quantity: "1", Category: "Pantry"},
	}
	if !reflect.DeepEqual(list.Items, want) {
		t.Errorf("items =\n%+v\nwant\n%+v", list.Items, want)
	}
	if list.EstimatedTotal != 0 {
		t.Errorf("estimated_total = %v, want 0", list.EstimatedTotal)
	}
}

func TestHeuristicParseHeaderSplit(t *testing.T) {
	list := heuristicParse("Produce\n- Kale - 1\n## Beverages\n- Tea - 2")
	if len(list.Items) != 2 || list.Items[1].Category != "Beverages" {
		t.Errorf("items = %+v", list.Items)
	}
}
