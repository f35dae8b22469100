package grocery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dukerupert/fusionmeals/internal/llm"
	"github.com/dukerupert/fusionmeals/internal/model"
)

// Categorizer turns free-text ingredient lists into categorized grocery lists.
type Categorizer struct {
	llm    llm.Completions
	logger *slog.Logger
}

// NewCategorizer returns a categorizer. A nil completions client disables the
// model fallback; the heuristic fallback still runs.
func NewCategorizer(c llm.Completions, logger *slog.Logger) *Categorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Categorizer{llm: c, logger: logger}
}

// Categorize parses text directly. Only a failed direct parse falls back to
// the language model and then to a heuristic sectioner; an input with no
// extractable items still yields the placeholder list.
func (c *Categorizer) Categorize(ctx context.Context, text string) (*model.GroceryList, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	list, err := ParseDirect(text)
	if err == nil {
		return list, nil
	}
	return c.fallback(ctx, text, err)
}

func (c *Categorizer) fallback(ctx context.Context, text string, cause error) (*model.GroceryList, error) {
	c.logger.Info("direct parse failed, using fallback", "error", cause)

	list, err := c.categorizeWithModel(ctx, text)
	if err == nil {
		return list, nil
	}
	c.logger.Warn("model categorization failed, using heuristic", "error", err)

	list = heuristicParse(text)
	if len(list.Items) == 0 {
		return nil, &CategorizationError{Err: err}
	}
	return list, nil
}

type categorizedItem struct {
	model.GroceryItem
	original string
}

// ParseDirect is the deterministic parse: tokenize, recategorize by keyword,
// dedup by lowercased name and fill every missing required category with a
// placeholder.
func ParseDirect(text string) (*model.GroceryList, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	var extracted []categorizedItem
	label := ""
	for _, tok := range Tokenize(normalizeHeaders(text)) {
		switch tok.Kind {
		case KindHeader:
			label = sectionLabel(tok.Text)
		case KindItem:
			if label == "" {
				continue
			}
			name, qty, ok := ParseItemLine(tok.Text)
			if !ok {
				continue
			}
			extracted = append(extracted, categorizedItem{
				GroceryItem: model.GroceryItem{Name: name, Quantity: qty},
				original:    label,
			})
		}
	}
	var order []string
	byCategory := make(map[string][]model.GroceryItem)
	seen := make(map[string]bool)
	for _, it := range extracted {
		key := strings.ToLower(it.Name)
		if seen[key] {
			continue
		}
		seen[key] = true

		cat := Categorize(it.Name, it.original)
		if _, ok := byCategory[cat]; !ok {
			order = append(order, cat)
		}
		it.Category = cat
		byCategory[cat] = append(byCategory[cat], it.GroceryItem)
	}

	for _, cat := range RequiredCategories {
		if _, ok := byCategory[cat]; ok {
			continue
		}
		order = append(order, cat)
		byCategory[cat] = []model.GroceryItem{{Name: placeholderName(cat), Quantity: "", Category: cat}}
	}

	items := make([]model.GroceryItem, 0, len(extracted)+len(RequiredCategories))
	for _, cat := range order {
		items = append(items, byCategory[cat]...)
	}
	return &model.GroceryList{Items: items, EstimatedTotal: float64(len(items))}, nil
}

const categorizeSystem = "You are a JSON-only response assistant specializing in grocery lists. " +
	"You MUST ALWAYS include these categories in your response: Produce, Meat & Seafood, Dairy & Eggs, " +
	"Pantry, Spices & Seasonings, and Beverages. For categories that exist in the input, use EXACTLY the " +
	"items listed in those categories without modification. Only add reasonable items for categories " +
	"that are completely missing from the input."

const categorizeUser = `Convert these recipe ingredients into a structured grocery list.

The input is a markdown grocery list organized into sections. Each section starts with a category
name (like "Produce" or "Dairy & Eggs") followed by items with their quantities.

Input ingredients:
%s

Rules:
1. Process every section and keep its exact category name.
2. Assign every item to its section's category.
3. Keep quantities exactly as given.
4. Strip markdown headers, bullets and other formatting from item names.
5. Combine duplicate items within a category.
6. Include all of: Produce, Meat & Seafood, Dairy & Eggs, Pantry, Spices & Seasonings, Beverages.
7. Only invent items for categories that are completely missing.

Reply with ONLY a raw JSON object, no code fences and no commentary:
{"items": [{"name": "item name without quantity", "quantity": "exact quantity", "category": "category"}], "estimated_total": number}`

type modelList struct {
	Items          []model.GroceryItem `json:"items"`
	EstimatedTotal json.RawMessage     `json:"estimated_total"`
}

func (c *Categorizer) categorizeWithModel(ctx context.Context, text string) (*model.GroceryList, error) {
	if c.llm == nil {
		return nil, llm.ErrNotConfigured
	}
	raw, err := c.llm.Generate(ctx, llm.Prompt{
		System:      categorizeSystem,
		User:        fmt.Sprintf(categorizeUser, text),
		JSON:        true,
		Model:       "gpt-4",
		Temperature: 0.2,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, err
	}

	var out modelList
	if err := llm.DecodeObject(raw, &out, "items", "estimated_total"); err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, &llm.UpstreamFormatError{Reason: "empty item list", Raw: raw}
	}
	total, err := parseTotal(out.EstimatedTotal)
	if err != nil {
		return nil, &llm.UpstreamFormatError{Reason: "estimated_total", Raw: raw, Err: err}
	}
	return &model.GroceryList{Items: out.Items, EstimatedTotal: total}, nil
}

// parseTotal accepts a JSON number or a numeric string.
func parseTotal(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errors.New("not a number")
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
