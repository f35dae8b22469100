package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/fusionmeals/internal/model"
)

type RatingStore struct {
	db *sql.DB
}

func NewRatingStore(db *sql.DB) *RatingStore {
	return &RatingStore{db: db}
}

func scanRating(scanner interface{ Scan(...any) error }) (*model.RecipeRating, error) {
	var r model.RecipeRating
	var review sql.NullString
	err := scanner.Scan(&r.ID, &r.RecipeID, &r.UserID, &r.Rating, &review, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if review.Valid {
		r.Review = &review.String
	}
	return &r, nil
}

const ratingCols = `id, recipe_id, user_id, rating, review, created_at, updated_at`

// Upsert records a user's rating of a recipe, replacing any earlier one.
func (s *RatingStore) Upsert(recipeID, userID string, rating int, review *string) (*model.RecipeRating, error) {
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO recipe_ratings (recipe_id, user_id, rating, review, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(recipe_id, user_id) DO UPDATE SET
		   rating = excluded.rating, review = excluded.review, updated_at = excluded.updated_at`,
		recipeID, userID, rating, review, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+ratingCols+` FROM recipe_ratings WHERE recipe_id = ? AND user_id = ?`, recipeID, userID)
	r, err := scanRating(row)
	if err != nil {
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return r, nil
}

// ListByRecipe returns ratings newest first.
func (s *RatingStore) ListByRecipe(recipeID string) ([]model.RecipeRating, error) {
	rows, err := s.db.Query(
		`SELECT `+ratingCols+` FROM recipe_ratings WHERE recipe_id = ? ORDER BY updated_at DESC, id DESC`,
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []model.RecipeRating
	for rows.Next() {
		r, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, *r)
	}
	return ratings, rows.Err()
}

// Summary returns the average rating and the number of ratings for a recipe.
func (s *RatingStore) Summary(recipeID string) (float64, int, error) {
	var avg sql.NullFloat64
	var count int
	err := s.db.QueryRow(
		`SELECT AVG(rating), COUNT(*) FROM recipe_ratings WHERE recipe_id = ?`, recipeID,
	).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("rating summary: %w", err)
	}
	return avg.Float64, count, nil
}

// AddSimilarity records or rescores a similarity edge between two recipes.
func (s *RatingStore) AddSimilarity(recipeID, similarID string, score float64) error {
	_, err := s.db.Exec(
		`INSERT INTO recipe_similarities (recipe_id, similar_recipe_id, similarity_score)
		 VALUES (?, ?, ?)
		 ON CONFLICT(recipe_id, similar_recipe_id) DO UPDATE SET similarity_score = excluded.similarity_score`,
		recipeID, similarID, score,
	)
	if err != nil {
		return fmt.Errorf("add similarity: %w", err)
	}
	return nil
}

// Similar returns up to limit similar recipes, highest score first.
func (s *RatingStore) Similar(recipeID string, limit int) ([]model.RecipeSimilarity, error) {
	rows, err := s.db.Query(
		`SELECT recipe_id, similar_recipe_id, similarity_score FROM recipe_similarities
		 WHERE recipe_id = ? ORDER BY similarity_score DESC, id LIMIT ?`,
		recipeID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list similar recipes: %w", err)
	}
	defer rows.Close()

	var sims []model.RecipeSimilarity
	for rows.Next() {
		var sim model.RecipeSimilarity
		if err := rows.Scan(&sim.RecipeID, &sim.SimilarRecipeID, &sim.SimilarityScore); err != nil {
			return nil, fmt.Errorf("scan similarity: %w", err)
		}
		sims = append(sims, sim)
	}
	return sims, rows.Err()
}
