package pantry

import "strings"

// Units lists the accepted pantry quantity units.
var Units = []string{
	"g", "kg", "ml", "l", "count", "tbsp", "tsp", "cup", "oz", "lb",
	"pinch", "bunch", "package", "can", "bottle", "box", "other",
}

// DefaultUnit is used when a caller omits the unit.
const DefaultUnit = "count"

var unitSet = func() map[string]bool {
	m := make(map[string]bool, len(Units))
	for _, u := range Units {
		m[u] = true
	}
	return m
}()

// NormalizeUnit lowercases and trims u, substituting DefaultUnit for blank input.
// ok is false when the result is not a known unit.
func NormalizeUnit(u string) (unit string, ok bool) {
	unit = strings.ToLower(strings.TrimSpace(u))
	if unit == "" {
		return DefaultUnit, true
	}
	return unit, unitSet[unit]
}
