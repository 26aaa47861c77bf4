package clipper

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ldRecipe is the subset of a schema.org Recipe the clipper reads.
type ldRecipe struct {
	Name         string
	Yield        int
	Category     string
	Ingredients  []string
	Instructions []string
}

// findRecipeJSONLD scans every ld+json script in doc and returns the first
// object typed Recipe, looking inside @graph containers and top-level arrays.
func findRecipeJSONLD(doc *goquery.Document) (ldRecipe, bool) {
	var (
		found ldRecipe
		ok    bool
	)
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &data); err != nil {
			return true
		}
		if obj := findRecipeObject(data); obj != nil {
			found, ok = decodeRecipe(obj), true
			return false
		}
		return true
	})
	return found, ok
}

func findRecipeObject(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, el := range t {
			if obj := findRecipeObject(el); obj != nil {
				return obj
			}
		}
	case map[string]any:
		if isRecipeType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			return findRecipeObject(graph)
		}
	}
	return nil
}

func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, "Recipe")
	case []any:
		for _, el := range t {
			if s, ok := el.(string); ok && strings.EqualFold(s, "Recipe") {
				return true
			}
		}
	}
	return false
}

func decodeRecipe(obj map[string]any) ldRecipe {
	r := ldRecipe{
		Name:     strings.TrimSpace(firstString(obj["name"])),
		Yield:    parseYield(obj["recipeYield"]),
		Category: strings.TrimSpace(firstString(obj["recipeCategory"])),
	}
	for _, line := range stringList(obj["recipeIngredient"]) {
		if line = strings.TrimSpace(line); line != "" {
			r.Ingredients = append(r.Ingredients, line)
		}
	}
	r.Instructions = instructionSteps(obj["recipeInstructions"])
	return r
}

// parseYield accepts 4, "4", "4 servings" or ["4", "4 servings"].
func parseYield(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		digits := strings.TrimSpace(t)
		end := 0
		for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
			end++
		}
		n, _ := strconv.Atoi(digits[:end])
		return n
	case []any:
		for _, el := range t {
			if n := parseYield(el); n > 0 {
				return n
			}
		}
	}
	return 0
}

// instructionSteps flattens a plain string, a list of strings, HowToStep
// objects and HowToSection objects into step texts.
func instructionSteps(v any) []string {
	var steps []string
	switch t := v.(type) {
	case string:
		for _, line := range strings.Split(t, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				steps = append(steps, line)
			}
		}
	case []any:
		for _, el := range t {
			steps = append(steps, instructionSteps(el)...)
		}
	case map[string]any:
		if items, ok := t["itemListElement"]; ok {
			return instructionSteps(items)
		}
		if text := strings.TrimSpace(firstString(t["text"])); text != "" {
			steps = append(steps, text)
		} else if name := strings.TrimSpace(firstString(t["name"])); name != "" {
			steps = append(steps, name)
		}
	}
	return steps
}

func firstString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, el := range t {
			if s, ok := el.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
