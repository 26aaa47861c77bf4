package clipper

import (
	"math"
	"testing"
)

func TestParseIngredientLine(t *testing.T) {
	tests := []struct {
		line string
		name string
		qty  float64
		unit string
	}{
		{"200 g flour", "flour", 200, "g"},
		{"1,5 dl milk", "milk", 1.5, "dl"},
		{"0.5 l water", "water", 0.5, "l"},
		{"1 1/2 cups sugar", "sugar", 1.5, "cup"},
		{"1/2 tsp baking soda", "baking soda", 0.5, "tsp"},
		{"½ tsp salt", "salt", 0.5, "tsp"},
		{"1½ kg potatoes", "potatoes", 1.5, "kg"},
		{"2-3 eggs", "eggs", 2, ""},
		{"3 eggs", "eggs", 3, ""},
		{"- 100 ml cream", "cream", 100, "ml"},
		{"• 2 EK olive oil", "olive oil", 2, "ek"},
		{"2 cups of milk", "milk", 2, "cup"},
		{"250g butter", "butter", 250, "g"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			ing, ok := ParseIngredientLine(tt.line)
			if !ok {
				t.Fatalf("Expected %q to parse", tt.line)
			}
			if ing.Name != tt.name {
				t.Errorf("Expected name %q, got %q", tt.name, ing.Name)
			}
			if math.Abs(ing.Quantity-tt.qty) > 1e-9 {
				t.Errorf("Expected quantity %v, got %v", tt.qty, ing.Quantity)
			}
			if ing.Unit != tt.unit {
				t.Errorf("Expected unit %q, got %q", tt.unit, ing.Unit)
			}
		})
	}
}

func TestParseIngredientLine_Rejects(t *testing.T) {
	for _, line := range []string{"", "salt to taste", "a pinch of pepper", "0 g sugar", "12"} {
		t.Run(line, func(t *testing.T) {
			if ing, ok := ParseIngredientLine(line); ok {
				t.Errorf("Expected %q to be rejected, got %+v", line, ing)
			}
		})
	}
}
