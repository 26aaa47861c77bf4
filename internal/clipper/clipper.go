package clipper

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"

	"chefmate/internal/llm"
	"chefmate/internal/metrics"
	"chefmate/internal/recipe"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

//go:embed ingredients_prompt.md
var ingredientsPrompt string

//go:embed recipe_prompt.md
var recipePrompt string

// ErrNoRecipe is returned when a page holds no recipe the clipper can read.
var ErrNoRecipe = errors.New("no recipe found on page")

const maxPageText = 20000

// Metric actions recorded for model calls.
const (
	ActionClipRecipe      = "clip_recipe"
	ActionClipIngredients = "clip_ingredients"
)

// Recorder stores usage metrics of model calls.
type Recorder interface {
	Record(ctx context.Context, m metrics.ActionMetric) error
}

// Clipper turns recipe web pages into recipe drafts.
type Clipper struct {
	textGen  llm.TextGenerator
	recorder Recorder
	logger   *zap.Logger
	client   *http.Client
}

// NewClipper creates a new Clipper instance. textGen may be nil.
func NewClipper(textGen llm.TextGenerator, logger *zap.Logger, timeout time.Duration) *Clipper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Clipper{
		textGen: textGen,
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
	}
}

// SetRecorder makes the clipper record every model call in r.
func (c *Clipper) SetRecorder(r Recorder) {
	c.recorder = r
}

// extractedIngredient is the structured ingredient shape the model returns.
type extractedIngredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// extractedRecipe represents the data structured by the model when a page
// carries no JSON-LD.
type extractedRecipe struct {
	Name         string                `json:"name"`
	Course       string                `json:"course"`
	Servings     int                   `json:"servings"`
	Ingredients  []extractedIngredient `json:"ingredients"`
	Instructions []string              `json:"instructions"`
}

// Clip fetches url and builds an unsaved recipe from it. The returned recipe
// has no id and links back to url.
func (c *Clipper) Clip(ctx context.Context, url string) (recipe.Recipe, error) {
	doc, err := c.fetchDocument(ctx, url)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	if ld, ok := findRecipeJSONLD(doc); ok && ld.Name != "" {
		c.logger.Debug("clipping from json-ld", zap.String("url", url), zap.Int("ingredients", len(ld.Ingredients)))
		r := recipe.Recipe{
			Name:         ld.Name,
			Course:       ld.Category,
			Servings:     ld.Yield,
			Ingredients:  c.parseIngredients(ctx, ld.Ingredients),
			Instructions: strings.Join(ld.Instructions, "\n"),
			ExternalLink: url,
		}
		return normalize(r), nil
	}

	if c.textGen == nil {
		return recipe.Recipe{}, ErrNoRecipe
	}

	c.logger.Debug("no json-ld recipe, extracting with model", zap.String("url", url))
	r, err := c.extractRecipe(ctx, cleanText(doc))
	if err != nil {
		return recipe.Recipe{}, err
	}
	r.ExternalLink = url
	return normalize(r), nil
}

// parseIngredients parses each line deterministically and hands the rest to
// the text generator in one call. Lines nobody can structure are kept whole
// with quantity 1 and no unit.
func (c *Clipper) parseIngredients(ctx context.Context, lines []string) []recipe.Ingredient {
	out := make([]recipe.Ingredient, len(lines))
	var pending []int
	for i, line := range lines {
		if ing, ok := ParseIngredientLine(line); ok {
			out[i] = ing
			continue
		}
		out[i] = recipe.Ingredient{Name: strings.TrimSpace(line), Quantity: 1}
		pending = append(pending, i)
	}
	if len(pending) == 0 || c.textGen == nil {
		return out
	}

	unparsed := make([]string, len(pending))
	for j, i := range pending {
		unparsed[j] = lines[i]
	}
	structured, err := c.structureIngredients(ctx, unparsed)
	if err != nil {
		c.logger.Warn("ingredient structuring failed, keeping raw lines", zap.Error(err), zap.Int("lines", len(unparsed)))
		return out
	}
	for j, i := range pending {
		ing := structured[j]
		if strings.TrimSpace(ing.Name) == "" {
			continue
		}
		if ing.Quantity <= 0 {
			ing.Quantity = 1
		}
		out[i] = recipe.Ingredient{Name: strings.TrimSpace(ing.Name), Quantity: ing.Quantity, Unit: strings.TrimSpace(ing.Unit)}
	}
	return out
}

func (c *Clipper) structureIngredients(ctx context.Context, lines []string) ([]extractedIngredient, error) {
	prompt, err := render("ingredients", ingredientsPrompt, lines)
	if err != nil {
		return nil, err
	}

	resp, err := c.generate(ctx, ActionClipIngredients, prompt, len(lines))
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	var parsed struct {
		Ingredients []extractedIngredient `json:"ingredients"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSON(resp.Content)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	if len(parsed.Ingredients) != len(lines) {
		return nil, fmt.Errorf("expected %d ingredients from AI, got %d", len(lines), len(parsed.Ingredients))
	}
	return parsed.Ingredients, nil
}

func (c *Clipper) extractRecipe(ctx context.Context, content string) (recipe.Recipe, error) {
	if len(content) > maxPageText {
		content = content[:maxPageText]
	}
	prompt, err := render("recipe", recipePrompt, content)
	if err != nil {
		return recipe.Recipe{}, err
	}

	resp, err := c.generate(ctx, ActionClipRecipe, prompt, 0)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted extractedRecipe
	if err := json.Unmarshal([]byte(llm.CleanJSON(resp.Content)), &extracted); err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to parse AI response: %w", err)
	}
	if strings.TrimSpace(extracted.Name) == "" {
		return recipe.Recipe{}, ErrNoRecipe
	}

	r := recipe.Recipe{
		Name:         strings.TrimSpace(extracted.Name),
		Course:       extracted.Course,
		Servings:     extracted.Servings,
		Instructions: strings.Join(extracted.Instructions, "\n"),
	}
	for _, ing := range extracted.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			continue
		}
		if ing.Quantity <= 0 {
			ing.Quantity = 1
		}
		r.Ingredients = append(r.Ingredients, recipe.Ingredient{
			Name:     strings.TrimSpace(ing.Name),
			Quantity: ing.Quantity,
			Unit:     strings.TrimSpace(ing.Unit),
		})
	}
	return r, nil
}

func (c *Clipper) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "chefmate/1.0 (+recipe clipper)")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// generate runs one model call and records its latency and token usage.
func (c *Clipper) generate(ctx context.Context, action, prompt string, items int) (llm.ContentResponse, error) {
	start := time.Now()
	resp, err := c.textGen.GenerateContent(ctx, prompt)
	latency := time.Since(start)

	u := resp.Usage
	c.logger.Debug("model call",
		zap.String("action", action),
		zap.String("model", u.Model),
		zap.Int("prompt_tokens", u.PromptTokens),
		zap.Int("completion_tokens", u.CompletionTokens),
		zap.Duration("latency", latency),
	)
	if c.recorder != nil {
		m := metrics.ActionMetric{
			Action:           action,
			Items:            items,
			Success:          err == nil,
			Latency:          latency,
			Model:            u.Model,
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
		}
		if rerr := c.recorder.Record(context.WithoutCancel(ctx), m); rerr != nil {
			c.logger.Warn("failed to record metric", zap.String("action", action), zap.Error(rerr))
		}
	}
	return resp, err
}

// cleanText strips noise from the page and returns its body text with
// whitespace collapsed.
func cleanText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer, aside, iframe, form, ads, .ads, #ads").Remove()
	return strings.Join(strings.Fields(doc.Find("body").Text()), " ")
}

func normalize(r recipe.Recipe) recipe.Recipe {
	if r.Servings < 1 {
		r.Servings = 1
	}
	if strings.TrimSpace(r.Course) == "" {
		r.Course = recipe.DefaultCourse
	}
	r.Course = strings.ToLower(strings.TrimSpace(r.Course))
	return r
}

func render(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
