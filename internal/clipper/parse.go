package clipper

import (
	"strconv"
	"strings"
	"unicode"

	"chefmate/internal/recipe"
)

// knownUnits are matched case-insensitively right after the quantity.
var knownUnits = map[string]string{
	"db": "db", "g": "g", "dkg": "dkg", "kg": "kg", "cs": "cs", "ek": "ek",
	"tk": "tk", "mk": "mk", "l": "l", "dl": "dl", "ml": "ml", "cl": "cl",
	"mg": "mg", "gr": "g", "gram": "g", "grams": "g",
	"tsp": "tsp", "teaspoon": "tsp", "teaspoons": "tsp",
	"tbsp": "tbsp", "tablespoon": "tbsp", "tablespoons": "tbsp",
	"cup": "cup", "cups": "cup", "oz": "oz", "lb": "lb", "lbs": "lb",
	"pinch": "pinch", "clove": "clove", "cloves": "clove",
	"pc": "db", "pcs": "db", "piece": "db", "pieces": "db",
	"can": "can", "cans": "can", "bunch": "bunch",
}

var vulgarFractions = map[rune]float64{
	'½': 0.5, '⅓': 1.0 / 3, '⅔': 2.0 / 3, '¼': 0.25, '¾': 0.75,
	'⅕': 0.2, '⅖': 0.4, '⅗': 0.6, '⅘': 0.8, '⅙': 1.0 / 6, '⅚': 5.0 / 6,
	'⅛': 0.125, '⅜': 0.375, '⅝': 0.625, '⅞': 0.875,
}

// ParseIngredientLine reads "<quantity> [unit] <name>" lines such as
// "200 g flour", "1,5 dl milk", "1 1/2 cups sugar" or "½ tsp salt". Ranges
// ("2-3 eggs") take the lower bound. ok is false when the line does not start
// with a quantity or has no name left after it.
func ParseIngredientLine(line string) (ing recipe.Ingredient, ok bool) {
	s := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•·"))
	qty, rest, ok := parseQuantity(s)
	if !ok || qty <= 0 {
		return recipe.Ingredient{}, false
	}

	rest = strings.TrimSpace(rest)
	unit := ""
	word, after, _ := strings.Cut(rest, " ")
	if u, known := knownUnits[strings.ToLower(strings.TrimSuffix(word, "."))]; known && strings.TrimSpace(after) != "" {
		unit = u
		rest = strings.TrimSpace(after)
	}
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "of "))
	if rest == "" {
		return recipe.Ingredient{}, false
	}
	return recipe.Ingredient{Name: rest, Quantity: qty, Unit: unit}, true
}

// parseQuantity consumes a leading number, fraction or mixed number.
func parseQuantity(s string) (float64, string, bool) {
	total, rest, ok := parseNumber(s)
	if !ok {
		return 0, s, false
	}

	// Mixed numbers: "1 1/2", "1 ½", "1½".
	trimmed := strings.TrimLeft(rest, " ")
	if frac, after, fok := parseFraction(trimmed); fok && frac < 1 {
		total += frac
		rest = after
	}

	// Ranges: keep the lower bound and drop the upper one.
	trimmed = strings.TrimLeft(rest, " ")
	if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "–") {
		_, sep := firstRune(trimmed)
		if _, after, rok := parseNumber(strings.TrimLeft(trimmed[sep:], " ")); rok {
			rest = after
		}
	}
	return total, rest, true
}

// parseNumber reads a decimal (dot or comma), a simple fraction or a unicode
// vulgar fraction.
func parseNumber(s string) (float64, string, bool) {
	if v, rest, ok := parseFraction(s); ok {
		return v, rest, true
	}

	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.' || s[end] == ',') {
		end++
	}
	if end == 0 {
		return 0, s, false
	}
	num := strings.TrimRight(strings.ReplaceAll(s[:end], ",", "."), ".")
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, s, false
	}
	rest := s[end:]

	// "1½"
	if r, size := firstRune(rest); size > 0 {
		if frac, ok := vulgarFractions[r]; ok {
			v += frac
			rest = rest[size:]
		}
	}
	return v, rest, true
}

func parseFraction(s string) (float64, string, bool) {
	if r, size := firstRune(s); size > 0 {
		if frac, ok := vulgarFractions[r]; ok {
			return frac, s[size:], true
		}
	}

	i := 0
	for i < len(s) && unicode.IsDigit(rune(s[i])) {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != '/' {
		return 0, s, false
	}
	j := i + 1
	for j < len(s) && unicode.IsDigit(rune(s[j])) {
		j++
	}
	if j == i+1 {
		return 0, s, false
	}
	num, _ := strconv.ParseFloat(s[:i], 64)
	den, _ := strconv.ParseFloat(s[i+1:j], 64)
	if den == 0 {
		return 0, s, false
	}
	return num / den, s[j:], true
}

func firstRune(s string) (rune, int) {
	for _, r := range s {
		return r, len(string(r))
	}
	return 0, 0
}
