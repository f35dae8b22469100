package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/fusionmeals/internal/email"
	"github.com/dukerupert/fusionmeals/internal/llm"
	"github.com/dukerupert/fusionmeals/internal/recipe"
)

func newTestRecipeHandler(c llm.Completions) *RecipeHandler {
	return NewRecipeHandler(recipe.NewService(c, nil, testLogger), email.NewClient("", ""), testLogger)
}

func TestRecipeGenerate(t *testing.T) {
	h := newTestRecipeHandler(replyWith("**Recipe Name**: Kimchi Tacos\n\n**Ingredients**:\n- kimchi\n- tortillas"))

	rec := httptest.NewRecorder()
	h.Generate(rec, jsonRequest(http.MethodPost, "/recipes/generate",
		`{"ingredients": "kimchi, tortillas", "cuisine1": "Korean", "cuisine2": "Mexican"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var res recipe.FusionResult
	decodeBody(t, rec, &res)
	if !strings.HasPrefix(res.Recipe, "**Recipe Name**: Kimchi Tacos") {
		t.Errorf("recipe = %q", res.Recipe)
	}
	if res.ImageURL != nil {
		t.Errorf("image_url = %q, want nil without an image client", *res.ImageURL)
	}
}

func TestRecipeGenerateValidation(t *testing.T) {
	h := newTestRecipeHandler(replyWith("unused"))

	rec := httptest.NewRecorder()
	h.Generate(rec, jsonRequest(http.MethodPost, "/recipes/generate", `{"ingredients": "rice", "cuisine1": "Thai"}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := errorMessage(t, rec); got != "cuisine2 is required" {
		t.Errorf("error = %q, want %q", got, "cuisine2 is required")
	}
}

func TestRecipeGenerateNotConfigured(t *testing.T) {
	h := newTestRecipeHandler(nil)

	rec := httptest.NewRecorder()
	h.Generate(rec, jsonRequest(http.MethodPost, "/recipes/generate",
		`{"ingredients": "rice", "cuisine1": "Thai", "cuisine2": "Italian"}`))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestRecipeOfTheDayWithoutModel(t *testing.T) {
	h := newTestRecipeHandler(nil)

	rec := httptest.NewRecorder()
	h.RecipeOfTheDay(rec, httptest.NewRequest(http.MethodGet, "/recipes/recipe-of-the-day", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var daily recipe.DailyRecipe
	decodeBody(t, rec, &daily)
	if daily.Recipe == "" || daily.Title == "" {
		t.Errorf("daily = %+v, want fallback recipe and title", daily)
	}
	if len(daily.Cuisines) != 2 {
		t.Errorf("cuisines = %v, want a pair", daily.Cuisines)
	}
}

func TestSubstituteMalformedReply(t *testing.T) {
	h := newTestRecipeHandler(replyWith(`{"alternatives": []}`))

	rec := httptest.NewRecorder()
	h.Substitute(rec, jsonRequest(http.MethodPost, "/ingredient-substitution/find", `{"ingredient": "butter"}`))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if got := errorMessage(t, rec); got != "Error parsing AI response: missing field substitutes" {
		t.Errorf("error = %q", got)
	}
}

func TestSubstitute(t *testing.T) {
	h := newTestRecipeHandler(replyWith("```json\n" + `{"substitutes": [{"name": "Olive oil", "conversion_ratio": "1:0.75", "nutrition_match": 70, "taste_similarity": 60}]}` + "\n```"))

	rec := httptest.NewRecorder()
	h.Substitute(rec, jsonRequest(http.MethodPost, "/ingredient-substitution/find",
		`{"ingredient": "butter", "dietary_restriction": "vegan"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var res recipe.SubstitutionResult
	decodeBody(t, rec, &res)
	if res.OriginalIngredient != "butter" || len(res.Substitutes) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if res.Substitutes[0].ConversionRatio != 0.75 {
		t.Errorf("conversion_ratio = %v, want 0.75", res.Substitutes[0].ConversionRatio)
	}
	if res.DietaryNote == nil || !strings.Contains(*res.DietaryNote, "vegan") {
		t.Errorf("dietary_note = %v, want vegan note", res.DietaryNote)
	}
}

func TestEmailRecipeNotConfigured(t *testing.T) {
	h := newTestRecipeHandler(nil)

	rec := httptest.NewRecorder()
	h.EmailRecipe(rec, jsonRequest(http.MethodPost, "/recipe-sharing/email",
		`{"to": "cook@example.com", "recipe_text": "Toast"}`))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}
