package handler

import (
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/fusionmeals/internal/auth"
	"github.com/dukerupert/fusionmeals/internal/store"
)

// similarLimit caps the similar recipes returned for one recipe.
const similarLimit = 5

type RatingHandler struct {
	ratingStore *store.RatingStore
	logger      *slog.Logger
}

func NewRatingHandler(rs *store.RatingStore, logger *slog.Logger) *RatingHandler {
	return &RatingHandler{ratingStore: rs, logger: logger}
}

type rateRequest struct {
	RecipeID string  `json:"recipe_id" validate:"required"`
	Rating   int     `json:"rating" validate:"gte=1,lte=5"`
	Review   *string `json:"review"`
	UserID   string  `json:"user_id"`
}

type review struct {
	Rating    int       `json:"rating"`
	Review    *string   `json:"review"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
}

type ratingResponse struct {
	Success       bool     `json:"success"`
	AverageRating float64  `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
	Reviews       []review `json:"reviews"`
}

func (h *RatingHandler) summary(recipeID string) (*ratingResponse, error) {
	ratings, err := h.ratingStore.ListByRecipe(recipeID)
	if err != nil {
		return nil, err
	}
	avg, count, err := h.ratingStore.Summary(recipeID)
	if err != nil {
		return nil, err
	}

	resp := &ratingResponse{
		Success:       true,
		AverageRating: math.Round(avg*10) / 10,
		ReviewCount:   count,
		Reviews:       make([]review, 0, len(ratings)),
	}
	for _, r := range ratings {
		resp.Reviews = append(resp.Reviews, review{
			Rating:    r.Rating,
			Review:    r.Review,
			Timestamp: r.CreatedAt,
			UserID:    r.UserID,
		})
	}
	return resp, nil
}

// Rate handles POST /recipe-ratings/rate. The rater defaults to the session user.
func (h *RatingHandler) Rate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = auth.UserID(r.Context())
	}
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if _, err := h.ratingStore.Upsert(req.RecipeID, userID, req.Rating, req.Review); err != nil {
		h.logger.Error("save rating", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save rating")
		return
	}

	resp, err := h.summary(req.RecipeID)
	if err != nil {
		h.logger.Error("load ratings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load ratings")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reviews handles GET /recipe-ratings/{recipe_id}/reviews
func (h *RatingHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	resp, err := h.summary(r.PathValue("recipe_id"))
	if err != nil {
		h.logger.Error("load ratings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load ratings")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type similarRecipe struct {
	RecipeID        string  `json:"recipe_id"`
	SimilarityScore float64 `json:"similarity_score"`
}

// Similar handles GET /recipe-ratings/{recipe_id}/similar
func (h *RatingHandler) Similar(w http.ResponseWriter, r *http.Request) {
	sims, err := h.ratingStore.Similar(r.PathValue("recipe_id"), similarLimit)
	if err != nil {
		h.logger.Error("list similar recipes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load similar recipes")
		return
	}

	out := make([]similarRecipe, 0, len(sims))
	for _, s := range sims {
		out = append(out, similarRecipe{RecipeID: s.SimilarRecipeID, SimilarityScore: s.SimilarityScore})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "similar_recipes": out})
}

type addSimilarRequest struct {
	SimilarRecipeID string  `json:"similar_recipe_id" validate:"required"`
	SimilarityScore float64 `json:"similarity_score" validate:"gte=0,lte=1"`
}

// AddSimilar handles POST /recipe-ratings/{recipe_id}/similar
func (h *RatingHandler) AddSimilar(w http.ResponseWriter, r *http.Request) {
	recipeID := r.PathValue("recipe_id")

	var req addSimilarRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SimilarRecipeID == recipeID {
		writeError(w, http.StatusBadRequest, "a recipe cannot be similar to itself")
		return
	}

	if err := h.ratingStore.AddSimilarity(recipeID, req.SimilarRecipeID, req.SimilarityScore); err != nil {
		h.logger.Error("add similarity", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save similarity")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}
