package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukerupert/fusionmeals/internal/mealplan"
)

type MealPlanHandler struct {
	service *mealplan.Service
	logger  *slog.Logger
}

func NewMealPlanHandler(svc *mealplan.Service, logger *slog.Logger) *MealPlanHandler {
	return &MealPlanHandler{service: svc, logger: logger}
}

// Generate handles POST /meal-plans/generate
func (h *MealPlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req mealplan.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.Generate(r.Context(), req)
	if err != nil {
		writeLLMError(w, h.logger, "failed to generate meal plan", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// BatchCookingPlan handles POST /meal-prep/batch-cooking-plan
func (h *MealPlanHandler) BatchCookingPlan(w http.ResponseWriter, r *http.Request) {
	var req mealplan.BatchRequest
	prep(h, w, r, &req, "failed to generate batch cooking plan", func(ctx context.Context) (map[string]any, error) {
		return h.service.BatchCookingPlan(ctx, req)
	})
}

// QuickRecipes handles POST /meal-prep/time-optimized-recipes
func (h *MealPlanHandler) QuickRecipes(w http.ResponseWriter, r *http.Request) {
	var req mealplan.QuickRequest
	prep(h, w, r, &req, "failed to generate quick recipes", func(ctx context.Context) (map[string]any, error) {
		return h.service.QuickRecipes(ctx, req)
	})
}

// TransformLeftovers handles POST /meal-prep/transform-leftovers
func (h *MealPlanHandler) TransformLeftovers(w http.ResponseWriter, r *http.Request) {
	var req mealplan.LeftoverRequest
	prep(h, w, r, &req, "failed to transform leftovers", func(ctx context.Context) (map[string]any, error) {
		return h.service.TransformLeftovers(ctx, req)
	})
}

// prep decodes into req and then runs call, which reads req.
func prep[T any](h *MealPlanHandler, w http.ResponseWriter, r *http.Request, req *T, msg string, call func(context.Context) (map[string]any, error)) {
	if err := decodeJSON(r, req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := call(r.Context())
	if err != nil {
		writeLLMError(w, h.logger, msg, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
