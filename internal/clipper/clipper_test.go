package clipper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chefmate/internal/database"
	"chefmate/internal/llm"
	"chefmate/internal/metrics"
	"chefmate/internal/recipe"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// --- Mocks ---
type MockTextGenerator struct {
	Response    string
	ShouldError bool
	Prompts     []string
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.ShouldError {
		return llm.ContentResponse{}, fmt.Errorf("mock ai error")
	}
	return llm.ContentResponse{Content: m.Response, Usage: llm.TokenUsage{Model: "mock", PromptTokens: 120, CompletionTokens: 30}}, nil
}

type fakeRecorder struct {
	recorded []metrics.ActionMetric
}

func (f *fakeRecorder) Record(_ context.Context, m metrics.ActionMetric) error {
	f.recorded = append(f.recorded, m)
	return nil
}

const jsonLDPage = `
<html>
	<head>
		<script type="application/ld+json">{"@context": "https://schema.org", "@type": "WebSite", "name": "Site"}</script>
		<script type="application/ld+json">
		{
			"@context": "https://schema.org",
			"@graph": [
				{"@type": "BreadcrumbList"},
				{
					"@type": ["Recipe"],
					"name": "Pancakes",
					"recipeYield": ["4", "4 servings"],
					"recipeCategory": "Breakfast",
					"recipeIngredient": ["200 g flour", "a pinch of salt", "2 eggs"],
					"recipeInstructions": [
						{"@type": "HowToSection", "name": "Batter", "itemListElement": [
							{"@type": "HowToStep", "text": "Mix everything."},
							{"@type": "HowToStep", "text": "Rest for 10 minutes."}
						]},
						"Fry."
					]
				}
			]
		}
		</script>
	</head>
	<body><h1>Pancakes</h1></body>
</html>`

const plainPage = `
<html>
	<head><script>alert('bad');</script></head>
	<body>
		<nav>Home | Recipes</nav>
		<h1>Tasty Soup</h1>
		<div class="ads">Buy stuff!</div>
		<p>Boil 1 l water with 2 carrots.</p>
		<script>more_bad_stuff()</script>
		<footer>Copyright 2024</footer>
	</body>
</html>`

func serve(t *testing.T, html string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	t.Cleanup(ts.Close)
	return ts
}

// --- Tests ---

func TestClip_JSONLD(t *testing.T) {
	ts := serve(t, jsonLDPage)
	gen := &MockTextGenerator{Response: "```json\n{\"ingredients\": [{\"name\": \"salt\", \"quantity\": 1, \"unit\": \"pinch\"}]}\n```"}
	c := NewClipper(gen, zap.NewNop(), time.Second)

	r, err := c.Clip(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if r.Name != "Pancakes" {
		t.Errorf("Expected name Pancakes, got %q", r.Name)
	}
	if r.Servings != 4 {
		t.Errorf("Expected 4 servings, got %d", r.Servings)
	}
	if r.Course != "breakfast" {
		t.Errorf("Expected course breakfast, got %q", r.Course)
	}
	if r.ExternalLink != ts.URL {
		t.Errorf("Expected external link %q, got %q", ts.URL, r.ExternalLink)
	}
	if r.Instructions != "Mix everything.\nRest for 10 minutes.\nFry." {
		t.Errorf("Unexpected instructions %q", r.Instructions)
	}

	want := []recipe.Ingredient{
		{Name: "flour", Quantity: 200, Unit: "g"},
		{Name: "salt", Quantity: 1, Unit: "pinch"},
		{Name: "eggs", Quantity: 2},
	}
	if len(r.Ingredients) != len(want) {
		t.Fatalf("Expected %d ingredients, got %d", len(want), len(r.Ingredients))
	}
	for i, ing := range want {
		if r.Ingredients[i] != ing {
			t.Errorf("Ingredient %d: expected %+v, got %+v", i, ing, r.Ingredients[i])
		}
	}

	if len(gen.Prompts) != 1 {
		t.Fatalf("Expected one model call, got %d", len(gen.Prompts))
	}
	if !strings.Contains(gen.Prompts[0], "- a pinch of salt") {
		t.Error("Expected the unparsed line in the prompt")
	}
	if strings.Contains(gen.Prompts[0], "200 g flour") {
		t.Error("Expected parsed lines to stay out of the prompt")
	}
}

func TestClip_JSONLDWithoutGenerator(t *testing.T) {
	ts := serve(t, jsonLDPage)
	c := NewClipper(nil, nil, 0)

	r, err := c.Clip(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got := r.Ingredients[1]
	if got.Name != "a pinch of salt" || got.Quantity != 1 || got.Unit != "" {
		t.Errorf("Expected raw line with quantity 1, got %+v", got)
	}
}

func TestClip_GeneratorFailureKeepsRawLines(t *testing.T) {
	ts := serve(t, jsonLDPage)
	c := NewClipper(&MockTextGenerator{ShouldError: true}, zap.NewNop(), time.Second)

	r, err := c.Clip(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.Ingredients[1].Name != "a pinch of salt" {
		t.Errorf("Expected raw line, got %+v", r.Ingredients[1])
	}
}

func TestClip_NoJSONLD(t *testing.T) {
	ts := serve(t, plainPage)

	t.Run("without generator", func(t *testing.T) {
		c := NewClipper(nil, zap.NewNop(), time.Second)
		_, err := c.Clip(context.Background(), ts.URL)
		if !errors.Is(err, ErrNoRecipe) {
			t.Errorf("Expected ErrNoRecipe, got %v", err)
		}
	})

	t.Run("with generator", func(t *testing.T) {
		gen := &MockTextGenerator{Response: `{
			"name": "Tasty Soup",
			"course": "Soup",
			"servings": 2,
			"ingredients": [{"name": "water", "quantity": 1, "unit": "l"}, {"name": "carrots", "quantity": 2, "unit": ""}, {"name": "", "quantity": 3}],
			"instructions": ["Boil."]
		}`}
		c := NewClipper(gen, zap.NewNop(), time.Second)

		r, err := c.Clip(context.Background(), ts.URL)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if r.Name != "Tasty Soup" || r.Course != "soup" || r.Servings != 2 {
			t.Errorf("Unexpected recipe %+v", r)
		}
		if len(r.Ingredients) != 2 {
			t.Errorf("Expected 2 ingredients, got %d", len(r.Ingredients))
		}
		if r.ExternalLink != ts.URL {
			t.Errorf("Expected external link %q, got %q", ts.URL, r.ExternalLink)
		}

		prompt := gen.Prompts[0]
		if strings.Contains(prompt, "alert('bad')") || strings.Contains(prompt, "Buy stuff!") {
			t.Error("Expected noise to be stripped from the prompt")
		}
		if !strings.Contains(prompt, "Boil 1 l water with 2 carrots.") {
			t.Error("Expected page text in the prompt")
		}
	})

	t.Run("model finds nothing", func(t *testing.T) {
		c := NewClipper(&MockTextGenerator{Response: `{"name": ""}`}, zap.NewNop(), time.Second)
		_, err := c.Clip(context.Background(), ts.URL)
		if !errors.Is(err, ErrNoRecipe) {
			t.Errorf("Expected ErrNoRecipe, got %v", err)
		}
	})
}

func TestClip_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	c := NewClipper(nil, zap.NewNop(), time.Second)
	if _, err := c.Clip(context.Background(), ts.URL); err == nil {
		t.Error("Expected an error for a 404 page")
	}
}

func TestCleanText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(plainPage))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	text := cleanText(doc)
	for _, noise := range []string{"alert('bad')", "Buy stuff!", "more_bad_stuff", "Copyright", "Home | Recipes"} {
		if strings.Contains(text, noise) {
			t.Errorf("Expected %q to be removed", noise)
		}
	}
	if !strings.Contains(text, "Tasty Soup Boil 1 l water with 2 carrots.") {
		t.Errorf("Expected body text to be kept, got %q", text)
	}
}

func TestClipRecordsModelUsage(t *testing.T) {
	t.Run("ingredient structuring", func(t *testing.T) {
		rec := &fakeRecorder{}
		c := NewClipper(&MockTextGenerator{Response: `{"ingredients": [{"name": "salt", "quantity": 1, "unit": "pinch"}]}`}, zap.NewNop(), time.Second)
		c.SetRecorder(rec)

		if _, err := c.Clip(context.Background(), serve(t, jsonLDPage).URL); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(rec.recorded) != 1 {
			t.Fatalf("Expected one metric, got %d", len(rec.recorded))
		}
		m := rec.recorded[0]
		if m.Action != ActionClipIngredients || m.Items != 1 || !m.Success {
			t.Errorf("Unexpected metric %+v", m)
		}
		if m.Model != "mock" || m.PromptTokens != 120 || m.CompletionTokens != 30 {
			t.Errorf("Expected mock usage 120/30, got %+v", m)
		}
	})

	t.Run("failed call", func(t *testing.T) {
		rec := &fakeRecorder{}
		c := NewClipper(&MockTextGenerator{ShouldError: true}, zap.NewNop(), time.Second)
		c.SetRecorder(rec)

		if _, err := c.Clip(context.Background(), serve(t, plainPage).URL); err == nil {
			t.Fatal("Expected an error")
		}
		if len(rec.recorded) != 1 || rec.recorded[0].Action != ActionClipRecipe || rec.recorded[0].Success {
			t.Errorf("Expected one failed clip_recipe metric, got %+v", rec.recorded)
		}
	})

	t.Run("deterministic page", func(t *testing.T) {
		rec := &fakeRecorder{}
		c := NewClipper(nil, zap.NewNop(), time.Second)
		c.SetRecorder(rec)

		if _, err := c.Clip(context.Background(), serve(t, jsonLDPage).URL); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(rec.recorded) != 0 {
			t.Errorf("Expected no metric without a model call, got %+v", rec.recorded)
		}
	})

	t.Run("daily usage", func(t *testing.T) {
		db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"), nil)
		if err != nil {
			t.Fatalf("NewDB failed: %v", err)
		}
		defer db.Close()
		store := metrics.NewStore(db.SQL)

		gen := &MockTextGenerator{Response: `{"name": "Tasty Soup", "servings": 2, "ingredients": [{"name": "water", "quantity": 1, "unit": "l"}]}`}
		c := NewClipper(gen, zap.NewNop(), time.Second)
		c.SetRecorder(store)
		if _, err := c.Clip(context.Background(), serve(t, plainPage).URL); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		usage, err := store.GetDailyUsage(context.Background(), 1)
		if err != nil {
			t.Fatalf("GetDailyUsage failed: %v", err)
		}
		if len(usage) != 1 || usage[0].Actions != 1 || usage[0].PromptTokens != 120 || usage[0].CompletionTokens != 30 {
			t.Errorf("Expected the model call in today's usage, got %+v", usage)
		}
	})
}
