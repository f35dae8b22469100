// Package cuisine explores world cuisines through the model and serves a
// static catalog of regions, techniques and signature ingredients.
package cuisine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukerupert/fusionmeals/internal/llm"
)

type Service struct {
	llm    llm.Completions
	logger *slog.Logger
}

func NewService(c llm.Completions, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{llm: c, logger: logger.With("component", "cuisine")}
}

// ExploreRequest narrows the cuisine to explore. Country wins over region.
// The include flags default to true when absent.
type ExploreRequest struct {
	Region            string `json:"region"`
	Country           string `json:"country"`
	DietaryPreference string `json:"dietary_preference"`
	DifficultyLevel   string `json:"difficulty_level"`
	IncludeHistory    *bool  `json:"include_history"`
	IncludeTechniques *bool  `json:"include_techniques"`
}

type ExploreResult struct {
	CuisineInfo          map[string]any   `json:"cuisine_info"`
	RepresentativeDishes []map[string]any `json:"representative_dishes"`
	CulturalContext      map[string]any   `json:"cultural_context,omitempty"`
	Techniques           []map[string]any `json:"techniques,omitempty"`
}

const exploreSystem = `You are a culinary anthropologist with expertise in global cuisines.
Provide detailed, accurate information about the requested cuisine, including its history,
cultural significance, key ingredients, signature dishes, and cooking techniques.
Focus on authenticity and cultural context. Provide information in a structured JSON format.`

const historySection = `Include a detailed history of the cuisine, including:
- Historical origins
- Key cultural influences
- Evolution over time
- Regional variations
`

const techniquesSection = `Include traditional cooking techniques:
- Name and description of each technique
- Cultural significance
- Key dishes that use the technique
- Basic instructions for home cooks to try
`

const exploreShape = `Return the information in the following JSON structure:
{
  "cuisine_info": {
    "name": "",
    "region": "",
    "countries": [""],
    "key_ingredients": [""],
    "flavor_profile": "",
    "historical_overview": "",
    "dietary_characteristics": ""
  },
  "representative_dishes": [{
    "name": "",
    "description": "",
    "key_ingredients": [""],
    "cultural_significance": "",
    "difficulty": "",
    "preparation_time": "",
    "typical_occasions": ""
  }],
  "cultural_context": {
    "dining_customs": "",
    "meal_structure": "",
    "cultural_significance": "",
    "celebrations_and_festivals": [""]
  },
  "techniques": [{
    "name": "",
    "description": "",
    "cultural_significance": "",
    "key_dishes": [""],
    "basic_instructions": ""
  }]
}`

func enabled(b *bool) bool {
	return b == nil || *b
}

// Query describes the cuisine in words, e.g. "cuisine from Thailand with a
// focus on vegan options".
func Query(req ExploreRequest) string {
	parts := []string{"cuisine"}
	switch {
	case req.Country != "":
		parts = append(parts, "from "+req.Country)
	case req.Region != "":
		parts = append(parts, "from the "+req.Region+" region")
	}
	if req.DietaryPreference != "" {
		parts = append(parts, "with a focus on "+req.DietaryPreference+" options")
	}
	if req.DifficultyLevel != "" {
		parts = append(parts, "suitable for "+req.DifficultyLevel+" cooks")
	}
	return strings.Join(parts, " ")
}

// ExplorePrompt builds the user prompt for Explore.
func ExplorePrompt(req ExploreRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please provide comprehensive information about %s.\n\n", Query(req))
	if enabled(req.IncludeHistory) {
		b.WriteString(historySection + "\n")
	}
	if enabled(req.IncludeTechniques) {
		b.WriteString(techniquesSection + "\n")
	}
	b.WriteString(exploreShape)
	return b.String()
}

// Explore asks the model to describe a cuisine.
func (s *Service) Explore(ctx context.Context, req ExploreRequest) (*ExploreResult, error) {
	if s.llm == nil {
		return nil, llm.ErrNotConfigured
	}
	raw, err := s.llm.Generate(ctx, llm.Prompt{
		System:      exploreSystem,
		User:        ExplorePrompt(req),
		JSON:        true,
		Model:       "gpt-4-turbo",
		Temperature: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("explore cuisine: %w", err)
	}

	var res ExploreResult
	if err := llm.DecodeObject(raw, &res, "cuisine_info", "representative_dishes"); err != nil {
		return nil, fmt.Errorf("explore cuisine: %w", err)
	}
	if !enabled(req.IncludeTechniques) {
		res.Techniques = nil
	}
	return &res, nil
}
