package recipe

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/fusionmeals/internal/llm"
)

type SharingRequest struct {
	RecipeText       string `json:"recipe_text" validate:"required"`
	Platform         string `json:"platform" validate:"required"`
	AdditionalNotes  string `json:"additional_notes"`
	IncludeTags      *bool  `json:"include_tags"`
	HighlightFeature string `json:"highlight_feature"`
}

type SharingResult struct {
	OriginalRecipe           string           `json:"original_recipe"`
	SharingContent           map[string]any   `json:"sharing_content"`
	SuggestedImagePrompts    []string         `json:"suggested_image_prompts"`
	SuggestedTags            []string         `json:"suggested_tags"`
	ScheduledTimeSuggestions []map[string]any `json:"scheduled_time_suggestions"`
}

var platformGuidance = map[string]string{
	"twitter":   "280 character limit. Conversational, witty, use emojis sparingly. Use line breaks for readability.",
	"instagram": "Strong visual focus, use emojis, descriptive and evocative language, 5-10 relevant hashtags.",
	"facebook":  "Medium length, conversational, personal tone, 1-2 questions to engage audience.",
	"email":     "More detailed, personal, include a subject line, greeting, and closing. Focus on why the recipient would enjoy it.",
}

const defaultGuidance = "Keep it engaging and authentic."

const sharingTemplate = `As a social media and food content expert, create compelling sharing content for this recipe:

RECIPE:
%s

TARGET PLATFORM: %s
PLATFORM GUIDANCE: %s
%s
Please generate:

1. SHARING CONTENT: the exact text to post (with a subject line for email), what makes the recipe special, and a call to action.
2. IMAGE DESCRIPTION PROMPTS: 3 detailed prompts for appealing images of this dish, with lighting, angles and props.
3. %s
4. BEST TIME TO POST: 3 optimal posting times with day of week, time and rationale.

Format your response as a JSON object with this structure:
{
  "sharing_content": {
    "main_text": "The actual post text",
    "subject_line": "Subject for email only",
    "call_to_action": "Try this dish tonight and let me know what you think!",
    "short_version": "Shorter version for limited space"
  },
  "suggested_image_prompts": ["prompt 1", "prompt 2", "prompt 3"],
  "suggested_tags": ["#HomemadeCooking", "#RecipeShare"],
  "scheduled_time_suggestions": [
    {"day": "Sunday", "time": "10:00 AM", "rationale": "People are planning their weekly meals"}
  ]
}

Make sure the content is authentic, engaging, and optimized specifically for %s.`

// SharingPrompt builds the social sharing prompt.
func SharingPrompt(req SharingRequest) string {
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	recipe, _, _ := formatRecipe(strings.TrimSpace(req.RecipeText))

	guidance, ok := platformGuidance[platform]
	if !ok {
		guidance = defaultGuidance
	}

	var extra strings.Builder
	if req.AdditionalNotes != "" {
		fmt.Fprintf(&extra, "ADDITIONAL NOTES: %s\n", req.AdditionalNotes)
	}
	if req.HighlightFeature != "" {
		fmt.Fprintf(&extra, "HIGHLIGHT THIS FEATURE: %s\n", req.HighlightFeature)
	}

	tags := "SUGGESTED HASHTAGS/TAGS: 8-10 relevant tags mixing popular and niche ones, including food, dietary and seasonal tags."
	if req.IncludeTags != nil && !*req.IncludeTags {
		tags = "SUGGESTED HASHTAGS/TAGS: return an empty list."
	}

	return fmt.Sprintf(sharingTemplate, recipe, platform, guidance, extra.String(), tags, platform)
}

// RecipeTitle returns the TITLE field of a JSON recipe, or "Recipe".
func RecipeTitle(text string) string {
	_, obj, ok := formatRecipe(strings.TrimSpace(text))
	if !ok {
		return "Recipe"
	}
	if title, ok := obj["TITLE"].(string); ok && title != "" {
		return title
	}
	return "Recipe"
}

// Share generates social sharing content for a recipe.
func (s *Service) Share(ctx context.Context, req SharingRequest) (*SharingResult, error) {
	c, err := s.completions()
	if err != nil {
		return nil, err
	}
	raw, err := c.Generate(ctx, llm.Prompt{
		User:        SharingPrompt(req),
		JSON:        true,
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("generate sharing content: %w", err)
	}

	var out struct {
		SharingContent           map[string]any   `json:"sharing_content"`
		SuggestedImagePrompts    []string         `json:"suggested_image_prompts"`
		SuggestedTags            []string         `json:"suggested_tags"`
		ScheduledTimeSuggestions []map[string]any `json:"scheduled_time_suggestions"`
	}
	if err := llm.DecodeObject(raw, &out); err != nil {
		return nil, err
	}

	res := &SharingResult{
		OriginalRecipe:           strings.TrimSpace(req.RecipeText),
		SharingContent:           out.SharingContent,
		SuggestedImagePrompts:    out.SuggestedImagePrompts,
		SuggestedTags:            out.SuggestedTags,
		ScheduledTimeSuggestions: out.ScheduledTimeSuggestions,
	}
	if res.SharingContent == nil {
		res.SharingContent = map[string]any{}
	}
	if res.SuggestedImagePrompts == nil {
		res.SuggestedImagePrompts = []string{}
	}
	if res.SuggestedTags == nil {
		res.SuggestedTags = []string{}
	}
	if res.ScheduledTimeSuggestions == nil {
		res.ScheduledTimeSuggestions = []map[string]any{}
	}
	return res, nil
}

// EmailBody renders a recipe as a plain-text email.
func EmailBody(recipeText, note string) string {
	recipe, _, _ := formatRecipe(strings.TrimSpace(recipeText))
	var b strings.Builder
	if note != "" {
		b.WriteString(note)
		b.WriteString("\n\n")
	}
	b.WriteString(recipe)
	b.WriteString("\n\nShared from Fusion Meals\n")
	return b.String()
}
