// Package recipe builds prompts for the recipe features (fusion recipes,
// recipe of the day, substitutions, scaling, sharing and analysis) and
// post-processes the model replies.
package recipe

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/dukerupert/fusionmeals/internal/llm"
)

type Service struct {
	llm    llm.Completions
	images llm.Images
	logger *slog.Logger
	pick   func(n int) int
}

// NewService returns a recipe service. images may be nil, in which case no
// pictures are generated.
func NewService(c llm.Completions, images llm.Images, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		llm:    c,
		images: images,
		logger: logger.With("component", "recipe"),
		pick:   rand.IntN,
	}
}

func (s *Service) completions() (llm.Completions, error) {
	if s.llm == nil {
		return nil, llm.ErrNotConfigured
	}
	return s.llm, nil
}

// image asks for a picture and returns nil on any failure.
func (s *Service) image(ctx context.Context, req llm.ImageRequest) *string {
	if s.images == nil {
		return nil
	}
	url, err := s.images.GenerateImage(ctx, req)
	if err != nil {
		s.logger.Warn("image generation failed", "error", err)
		return nil
	}
	return &url
}

// formatRecipe pretty-prints recipe text that is a JSON object and reports
// whether it was one.
func formatRecipe(text string) (string, map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return text, nil, false
	}
	pretty, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return text, obj, true
	}
	return string(pretty), obj, true
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
