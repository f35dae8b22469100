package grocery

import (
	"strings"

	"github.com/dukerupert/fusionmeals/internal/model"
)

// heuristicParse is the last resort when both the direct parse and the
// model fail. Sections are paragraphs, or header blocks when the text has
// no blank lines. Items keep their section label; nothing is recategorized
// and no total is estimated.
func heuristicParse(text string) *model.GroceryList {
	sections := strings.Split(text, "\n\n")
	if len(sections) == 1 {
		sections = innerSectionSplit.Split(text, -1)
	}

	list := &model.GroceryList{Items: []model.GroceryItem{}}
	for _, section := range sections {
		lines := strings.Split(strings.TrimSpace(section), "\n")
		label := strings.NewReplacer(":", "", "##", "", "#", "").Replace(strings.TrimSpace(lines[0]))
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		for _, line := range lines[1:] {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if name, qty, ok := heuristicItem(line); ok {
				list.Items = append(list.Items, model.GroceryItem{Name: name, Quantity: qty, Category: label})
			}
		}
	}
	return list
}

func heuristicItem(line string) (name, quantity string, ok bool) {
	if before, after, found := strings.Cut(line, " - "); found {
		return strings.TrimSpace(strings.ReplaceAll(before, "-", "")), strings.TrimSpace(after), true
	}
	if strings.HasPrefix(line, "-") {
		line = strings.TrimSpace(line[1:])
		if before, after, found := strings.Cut(line, " - "); found {
			return strings.TrimSpace(before), strings.TrimSpace(after), true
		}
	}
	if i := strings.LastIndexByte(line, '-'); i >= 0 {
		n := strings.TrimSpace(strings.ReplaceAll(line[:i], "-", ""))
		q := strings.TrimSpace(line[i+1:])
		if n != "" && q != "" {
			return n, q, true
		}
	}
	name = strings.TrimSpace(strings.ReplaceAll(line, "-", ""))
	if name == "" {
		return "", "", false
	}
	return name, "1", true
}
