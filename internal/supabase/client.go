package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chefmate/internal/config"
	"chefmate/internal/recipe"
	"chefmate/internal/shopping"

	"github.com/golang-jwt/jwt/v5"
	"github.com/supabase-community/postgrest-go"
	"go.uber.org/zap"
)

const (
	recipesTable = "recipes"
	itemsTable   = "shopping_items"
)

var newestFirst = &postgrest.OrderOpts{Ascending: false}

// Client talks to the PostgREST API of a Supabase project. It implements
// recipe.Store and shopping.Store; ids and created_at are assigned by the
// database.
type Client struct {
	restURL   string
	anonKey   string
	jwtSecret []byte
	timeout   time.Duration
	transport http.RoundTripper
	logger    *zap.Logger
	now       func() time.Time
}

var (
	_ recipe.Store   = (*Client)(nil)
	_ shopping.Store = (*Client)(nil)
)

// NewClient creates a new Supabase client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		restURL:   strings.TrimRight(cfg.SupabaseURL, "/") + "/rest/v1",
		anonKey:   cfg.SupabaseAnonKey,
		timeout:   cfg.HTTPTimeout,
		transport: http.DefaultTransport,
		logger:    logger,
		now:       time.Now,
	}
	if cfg.SupabaseJWTSecret != "" {
		c.jwtSecret = []byte(cfg.SupabaseJWTSecret)
	}
	return c
}

// APIError is a failed PostgREST call. Status is zero when no response was
// received.
type APIError struct {
	Status int
	Err    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("postgrest error: status %d: %v", e.Status, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// ListRecipes fetches all recipes, newest first.
func (c *Client) ListRecipes(ctx context.Context) ([]recipe.Row, error) {
	var rows []recipe.Row
	err := c.run(ctx, recipesTable, &rows, func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder {
		return q.Select("*", "", false).Order("created_at", newestFirst)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return rows, nil
}

// InsertRecipe inserts d and returns the stored row.
func (c *Client) InsertRecipe(ctx context.Context, d recipe.Draft) (recipe.Row, error) {
	var rows []recipe.Row
	err := c.run(ctx, recipesTable, &rows, func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder {
		return q.Insert([]recipe.Draft{d}, false, "", "representation", "")
	})
	if err != nil {
		return recipe.Row{}, fmt.Errorf("failed to insert recipe: %w", err)
	}
	if len(rows) == 0 {
		return recipe.Row{}, fmt.Errorf("failed to insert recipe: no row returned")
	}
	return rows[0], nil
}

// UpdateRecipe replaces the writable fields of id. A missing id yields nil.
func (c *Client) UpdateRecipe(ctx context.Context, id string, d recipe.Draft) (*recipe.Row, error) {
	var rows []recipe.Row
	err := c.run(ctx, recipesTable, &rows, func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder {
		return q.Update(d, "representation", "").Eq("id", id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// DeleteRecipe deletes id. Deleting a missing id succeeds.
func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	err := c.run(ctx, recipesTable, nil, func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder {
		return q.Delete("minimal", "").Eq("id", id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete recipe %s: %w", id, err)
	}
	return nil
}

// ListItems fetches all shopping items, newest first.
func (c *Client) ListItems(ctx context.Context) ([]shopping.Row, error) {
	var rows []shopping.Row
	err := c.run(ctx, itemsTable, &rows, func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder {
		return q.Select("*", "", false).Order("created_at", newestFirst)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping items: %w", err)
	}
	return rows, nil
}

// InsertItems inserts rows in one request.
func (c *Client) InsertItems(ctx context.Context, in []shopping.NewRow) ([]shopping.Row, error) {
	if len(in) == 0 {
		return []shopping.Row{}, nil
	}
	var rows []shopping.Row
	err := c.run(ctx, itemsTable, &rows, func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder {
		return q.Insert(in, false, "", "representation", "")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert shopping items: %w", err)
	}
	return rows, nil
}

// UpdateItem patches id. A missing id yields nil.
func (c *Client) UpdateItem(ctx context.Context, id string, p shopping.Patch) (*shopping.Row, error) {
	var rows []shopping.Row
	err := c.run(ctx, itemsTable, &rows, func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder {
		return q.Update(p, "representation", "").Eq("id", id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update shopping item %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// DeleteItem deletes id.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	err := c.run(ctx, itemsTable, nil, func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder {
		return q.Delete("minimal", "").Eq("id", id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete shopping item %s: %w", id, err)
	}
	return nil
}

// DeleteCompleted deletes every completed item.
func (c *Client) DeleteCompleted(ctx context.Context) error {
	err := c.run(ctx, itemsTable, nil, func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder {
		return q.Delete("minimal", "").Eq("completed", "true")
	})
	if err != nil {
		return fmt.Errorf("failed to delete completed shopping items: %w", err)
	}
	return nil
}

// DeleteItems deletes every id in ids.
func (c *Client) DeleteItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := c.run(ctx, itemsTable, nil, func(q *postgrest.QueryBuilder) *postgrest.FilterBuilder {
		return q.Delete("minimal", "").In("id", ids)
	})
	if err != nil {
		return fmt.Errorf("failed to delete shopping items: %w", err)
	}
	return nil
}

// run builds one query against table and decodes the returned rows into out
// when out is not nil. Each call gets its own postgrest client so the request
// carries ctx and a fresh bearer token.
func (c *Client) run(ctx context.Context, table string, out any, build func(*postgrest.QueryBuilder) *postgrest.FilterBuilder) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	token, err := c.bearerToken()
	if err != nil {
		return fmt.Errorf("failed to create access token: %w", err)
	}

	rt := &callTransport{ctx: ctx, base: c.transport}
	client := postgrest.NewClient(c.restURL, "", map[string]string{"apikey": c.anonKey})
	if client.ClientError != nil {
		return fmt.Errorf("invalid supabase url %s: %w", c.restURL, client.ClientError)
	}
	client.SetAuthToken(token)
	client.Transport.Parent = rt

	start := time.Now()
	body, _, err := build(client.From(table)).Execute()
	c.logger.Debug("postgrest request",
		zap.String("table", table),
		zap.String("method", rt.method),
		zap.Int("status", rt.status),
		zap.Duration("latency", time.Since(start)))
	if err != nil {
		return &APIError{Status: rt.status, Err: err}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// callTransport sends one request under ctx and remembers its status.
type callTransport struct {
	ctx    context.Context
	base   http.RoundTripper
	method string
	status int
}

func (t *callTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.method = req.Method
	resp, err := t.base.RoundTrip(req.WithContext(t.ctx))
	if err != nil {
		return nil, err
	}
	t.status = resp.StatusCode
	return resp, nil
}

// bearerToken signs a short-lived service-role token when a JWT secret is
// configured and falls back to the anon key otherwise.
func (c *Client) bearerToken() (string, error) {
	if len(c.jwtSecret) == 0 {
		return c.anonKey, nil
	}
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":  "supabase",
		"role": "service_role",
		"iat":  now.Unix(),
		"exp":  now.Add(5 * time.Minute).Unix(),
	})
	return token.SignedString(c.jwtSecret)
}
