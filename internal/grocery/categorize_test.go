package grocery

import "testing"

func TestCategorize(t *testing.T) {
	tests := []struct {
		input    string
		original string
		want     string
	}{
		{"Tofu", "Produce", MeatSeafood},
		{"Silken tofu", "Pantry", MeatSeafood},
		{"Paneer cubes", "Meat & Seafood", DairyEggs},
		{"Greek yogurt", "Pantry", DairyEggs},
		{"Salmon fillet", "Pantry", MeatSeafood},
		{"Basmati rice", "Produce", Pantry},
		{"Eggplant", "Other", Produce},
		{"Green tea", "Pantry", Beverages},
		{"Mystery item", "Frozen", "Frozen"},
	}
	for _, tt := range tests {
		got := Categorize(tt.input, tt.original)
		if got != tt.want {
			t.Errorf("Categorize(%q, %q) = %q, want %q", tt.input, tt.original, got, tt.want)
		}
	}
}

// Priority order is a contract: earlier tables win on overlapping keywords.
func TestCategorizePriorityArtifacts(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Cream of tartar", DairyEggs},
		{"Peanut butter", DairyEggs},
		{"Ground cumin", MeatSeafood},
		{"Black pepper", Produce},
		{"Coconut water", Pantry},
	}
	for _, tt := range tests {
		got := Categorize(tt.input, "Other")
		if got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{placeholderName(MeatSeafood), true},
		{"No spices & seasonings items needed", true},
		{"Noodles", false},
		{"No-knead bread", false},
	}
	for _, tt := range tests {
		if got := IsPlaceholder(tt.name); got != tt.want {
			t.Errorf("IsPlaceholder(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
