package store

import (
	"math"
	"testing"
)

func setupRatingTestDB(t *testing.T) *RatingStore {
	t.Helper()
	return NewRatingStore(openTestDB(t))
}

func TestRatingUpsertReplacesPrevious(t *testing.T) {
	rs := setupRatingTestDB(t)

	review := "too salty"
	if _, err := rs.Upsert("recipe-1", "u1", 2, &review); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	r, err := rs.Upsert("recipe-1", "u1", 4, nil)
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if r.Rating != 4 {
		t.Errorf("rating = %d, want 4", r.Rating)
	}
	if r.Review != nil {
		t.Errorf("review = %v, want nil", *r.Review)
	}

	ratings, _ := rs.ListByRecipe("recipe-1")
	if len(ratings) != 1 {
		t.Errorf("len = %d, want 1", len(ratings))
	}
}

func TestRatingRejectsOutOfRange(t *testing.T) {
	rs := setupRatingTestDB(t)

	for _, v := range []int{0, 6} {
		if _, err := rs.Upsert("recipe-1", "u1", v, nil); err == nil {
			t.Errorf("Upsert(rating=%d) expected error", v)
		}
	}
}

func TestRatingSummary(t *testing.T) {
	rs := setupRatingTestDB(t)

	avg, count, err := rs.Summary("recipe-1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if avg != 0 || count != 0 {
		t.Errorf("empty summary = (%v, %d), want (0, 0)", avg, count)
	}

	rs.Upsert("recipe-1", "u1", 5, nil)
	rs.Upsert("recipe-1", "u2", 4, nil)
	rs.Upsert("recipe-1", "u3", 4, nil)
	rs.Upsert("recipe-2", "u1", 1, nil)

	avg, count, _ = rs.Summary("recipe-1")
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	if math.Abs(avg-13.0/3.0) > 1e-9 {
		t.Errorf("avg = %v, want %v", avg, 13.0/3.0)
	}
}

func TestRatingSimilarTopN(t *testing.T) {
	rs := setupRatingTestDB(t)

	scores := map[string]float64{"b": 0.2, "c": 0.9, "d": 0.5, "e": 0.7, "f": 0.1, "g": 0.3}
	for id, score := range scores {
		if err := rs.AddSimilarity("a", id, score); err != nil {
			t.Fatalf("add similarity: %v", err)
		}
	}
	// rescoring replaces the old score
	rs.AddSimilarity("a", "f", 0.95)

	sims, err := rs.Similar("a", 5)
	if err != nil {
		t.Fatalf("similar: %v", err)
	}
	if len(sims) != 5 {
		t.Fatalf("len = %d, want 5", len(sims))
	}
	want := []string{"f", "c", "e", "d", "g"}
	for i, w := range want {
		if sims[i].SimilarRecipeID != w {
			t.Errorf("sims[%d] = %q, want %q", i, sims[i].SimilarRecipeID, w)
		}
	}
}
