package model

import "time"

type RecipeRating struct {
	ID        int64     `json:"id"`
	RecipeID  string    `json:"recipe_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Review    *string   `json:"review"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RecipeSimilarity struct {
	RecipeID        string  `json:"recipe_id"`
	SimilarRecipeID string  `json:"similar_recipe_id"`
	SimilarityScore float64 `json:"similarity_score"`
}
