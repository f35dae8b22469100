package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/fusionmeals/internal/email"
	"github.com/dukerupert/fusionmeals/internal/recipe"
)

// RecipeHandler serves fusion recipes and the recipe tools built on them:
// substitution, scaling, sharing and analysis.
type RecipeHandler struct {
	service *recipe.Service
	email   *email.Client
	logger  *slog.Logger
}

func NewRecipeHandler(svc *recipe.Service, ec *email.Client, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{service: svc, email: ec, logger: logger}
}

// Info handles GET /recipes/
func (h *RecipeHandler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "Welcome to the Fusion Meals Recipe API",
		"endpoints": map[string]string{
			"POST /generate":         "Generate a fusion recipe",
			"GET /recipe-of-the-day": "Get a random recipe of the day",
		},
	})
}

// Generate handles POST /recipes/generate
func (h *RecipeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req recipe.FusionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.GenerateFusion(r.Context(), req)
	if err != nil {
		writeLLMError(w, h.logger, "failed to generate recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RecipeOfTheDay handles GET /recipes/recipe-of-the-day
func (h *RecipeHandler) RecipeOfTheDay(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.RecipeOfTheDay(r.Context()))
}

// Substitute handles POST /ingredient-substitution/find
func (h *RecipeHandler) Substitute(w http.ResponseWriter, r *http.Request) {
	var req recipe.SubstitutionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.FindSubstitutes(r.Context(), req)
	if err != nil {
		writeLLMError(w, h.logger, "failed to find substitutes", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Scale handles POST /recipe-scaling/scale
func (h *RecipeHandler) Scale(w http.ResponseWriter, r *http.Request) {
	var req recipe.ScalingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.Scale(r.Context(), req)
	if err != nil {
		writeLLMError(w, h.logger, "failed to scale recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ConvertUnits handles POST /recipe-scaling/convert-units
func (h *RecipeHandler) ConvertUnits(w http.ResponseWriter, r *http.Request) {
	var req recipe.ScalingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.ConvertUnits(r.Context(), req)
	if err != nil {
		writeLLMError(w, h.logger, "failed to convert units", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Share handles POST /recipe-sharing/generate
func (h *RecipeHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req recipe.SharingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.Share(r.Context(), req)
	if err != nil {
		writeLLMError(w, h.logger, "failed to generate sharing content", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type emailRecipeRequest struct {
	To              string `json:"to" validate:"required,email"`
	RecipeText      string `json:"recipe_text" validate:"required"`
	Subject         string `json:"subject"`
	AdditionalNotes string `json:"additional_notes"`
}

// EmailRecipe handles POST /recipe-sharing/email
func (h *RecipeHandler) EmailRecipe(w http.ResponseWriter, r *http.Request) {
	if !h.email.Configured() {
		writeError(w, http.StatusServiceUnavailable, "email is not configured")
		return
	}

	var req emailRecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body := recipe.EmailBody(req.RecipeText, req.AdditionalNotes)
	if err := h.email.SendRecipe(r.Context(), req.To, req.Subject, body); err != nil {
		h.logger.Error("send recipe email", "error", err)
		writeError(w, http.StatusBadGateway, "failed to send email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Recipe sent"})
}

// Analyze handles POST /recipe-analysis/analyze
func (h *RecipeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req recipe.AnalysisRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		writeLLMError(w, h.logger, "failed to analyze recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
