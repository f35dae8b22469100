package grocery

import (
	"regexp"
	"strings"
)

// Kind tags a tokenized line.
type Kind int

const (
	KindHeader Kind = iota
	KindItem
)

// Token is one meaningful line of a grocery list.
type Token struct {
	Kind Kind
	Text string
}

var (
	sectionSplit      = regexp.MustCompile(`\n##\s+|\n#\s+|^##\s+`)
	innerSectionSplit = regexp.MustCompile(`\n##\s+|\n#\s+`)
)

// normalizeHeaders prefixes "## " when the first line names a required
// category but carries no header marker.
func normalizeHeaders(text string) string {
	if strings.HasPrefix(text, "##") {
		return text
	}
	nl := strings.IndexByte(text, '\n')
	if nl <= 0 {
		return text
	}
	first := strings.TrimSpace(text[:nl])
	for _, c := range RequiredCategories {
		if strings.Contains(first, c) {
			return "## " + text
		}
	}
	return text
}

// Tokenize splits normalized text into header and item tokens. Every
// non-empty section contributes one header (its first line) followed by its
// item lines; blank lines and stray "#" lines are dropped.
func Tokenize(text string) []Token {
	var tokens []Token
	for _, section := range sectionSplit.Split(text, -1) {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		lines := strings.Split(section, "\n")
		tokens = append(tokens, Token{Kind: KindHeader, Text: strings.TrimSpace(lines[0])})
		for _, line := range lines[1:] {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			tokens = append(tokens, Token{Kind: KindItem, Text: line})
		}
	}
	return tokens
}

// ParseItemLine splits an item line into name and quantity:
//
//	"- Milk - 1 gallon"  -> ("Milk", "1 gallon")
//	"Flour-2 cups"       -> ("Flour", "2 cups")   split at the last hyphen
//	"Salt"               -> ("Salt", "1")
//
// A last-hyphen split is only accepted when both halves are non-empty.
func ParseItemLine(line string) (name, quantity string, ok bool) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "-") {
		line = strings.TrimSpace(line[1:])
	}

	if before, after, found := strings.Cut(line, " - "); found {
		return strings.TrimSpace(before), strings.TrimSpace(after), true
	}

	if i := strings.LastIndexByte(line, '-'); i >= 0 {
		n := strings.TrimSpace(line[:i])
		q := strings.TrimSpace(line[i+1:])
		if n != "" && q != "" {
			return n, q, true
		}
	}

	if line == "" {
		return "", "", false
	}
	return line, "1", true
}

// sectionLabel turns a header line into a category label.
func sectionLabel(header string) string {
	return strings.TrimSpace(strings.ReplaceAll(header, ":", ""))
}
