package cuisine

import "testing"

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(c.Regions) != 10 {
		t.Errorf("len(Regions) = %d, want 10", len(c.Regions))
	}
	if len(c.Techniques) != 8 {
		t.Errorf("len(Techniques) = %d, want 8", len(c.Techniques))
	}
	if len(c.IngredientMap) != 3 {
		t.Fatalf("len(IngredientMap) = %d, want 3", len(c.IngredientMap))
	}

	if got := c.Regions[0]; got.Name != "East Asia" || len(got.Countries) != 4 {
		t.Errorf("Regions[0] = %+v", got)
	}
	if got := c.Regions[4].Countries[3]; got != "France (Southern)" {
		t.Errorf("Mediterranean country = %q, want %q", got, "France (Southern)")
	}
	if got := c.Techniques[7]; got.Name != "Braising" || got.Difficulty != "Beginner" {
		t.Errorf("Techniques[7] = %+v", got)
	}
	spices := c.IngredientMap[0]
	if spices.Category != "Spices" || spices.Ingredients[2].Notes != "Tart, lemony spice used in za'atar and many Lebanese dishes" {
		t.Errorf("spices = %+v", spices)
	}
}

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", "regions: [unclosed"},
		{"empty", ""},
		{"no techniques", "regions:\n  - name: X\ningredient_map:\n  - category: Y\n"},
		{"no ingredient map", "regions:\n  - name: X\ntechniques:\n  - name: Y\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCatalog([]byte(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
