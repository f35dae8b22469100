package cuisine

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type Region struct {
	Name        string   `yaml:"name" json:"name"`
	Countries   []string `yaml:"countries" json:"countries"`
	Description string   `yaml:"description" json:"description"`
}

type Technique struct {
	Name        string `yaml:"name" json:"name"`
	Origin      string `yaml:"origin" json:"origin"`
	Description string `yaml:"description" json:"description"`
	Difficulty  string `yaml:"difficulty" json:"difficulty"`
}

type Ingredient struct {
	Name     string   `yaml:"name" json:"name"`
	Cuisines []string `yaml:"cuisines" json:"cuisines"`
	Notes    string   `yaml:"notes" json:"notes"`
}

type IngredientGroup struct {
	Category    string       `yaml:"category" json:"category"`
	Ingredients []Ingredient `yaml:"ingredients" json:"ingredients"`
}

// Catalog is the static reference data served next to the explorer.
type Catalog struct {
	Regions       []Region          `yaml:"regions"`
	Techniques    []Technique       `yaml:"techniques"`
	IngredientMap []IngredientGroup `yaml:"ingredient_map"`
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog parses catalog YAML. Every section must be non-empty.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse cuisine catalog: %w", err)
	}
	switch {
	case len(c.Regions) == 0:
		return nil, fmt.Errorf("parse cuisine catalog: no regions")
	case len(c.Techniques) == 0:
		return nil, fmt.Errorf("parse cuisine catalog: no techniques")
	case len(c.IngredientMap) == 0:
		return nil, fmt.Errorf("parse cuisine catalog: no ingredient map")
	}
	return &c, nil
}
