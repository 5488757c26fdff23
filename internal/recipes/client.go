package recipes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the TheMealDB HTTP API. All lookups are anonymous; the
// free tier needs no credential.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a recipe API client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", "recipes"),
	}
}

// mealEnvelope is the API's response wrapper. The meals field is JSON
// null when nothing matched, which decodes to a nil slice.
type mealEnvelope struct {
	Meals []map[string]any `json:"meals"`
}

// SearchByName returns full recipes whose title matches the query.
func (c *Client) SearchByName(ctx context.Context, query string) ([]Recipe, error) {
	meals, err := c.fetch(ctx, "search.php", url.Values{"s": {query}})
	if err != nil {
		return nil, err
	}

	recipes := make([]Recipe, 0, len(meals))
	for _, meal := range meals {
		recipes = append(recipes, parseRecipe(meal))
	}
	return recipes, nil
}

// LookupByID returns the recipe with the given id, or nil when the id is
// unknown.
func (c *Client) LookupByID(ctx context.Context, id string) (*Recipe, error) {
	meals, err := c.fetch(ctx, "lookup.php", url.Values{"i": {id}})
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, nil
	}

	recipe := parseRecipe(meals[0])
	return &recipe, nil
}

// FilterByIngredient returns recipe summaries that use the ingredient.
// The filter endpoint only reports id, title, and thumbnail.
func (c *Client) FilterByIngredient(ctx context.Context, ingredient string) ([]Summary, error) {
	meals, err := c.fetch(ctx, "filter.php", url.Values{"i": {ingredient}})
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(meals))
	for _, meal := range meals {
		summaries = append(summaries, Summary{
			ID:           mealString(meal, "idMeal"),
			Title:        mealString(meal, "strMeal"),
			ThumbnailURL: mealString(meal, "strMealThumb"),
		})
	}
	return summaries, nil
}

// Random returns a single random recipe.
func (c *Client) Random(ctx context.Context) (*Recipe, error) {
	meals, err := c.fetch(ctx, "random.php", nil)
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, fmt.Errorf("recipe API returned no random meal")
	}

	recipe := parseRecipe(meals[0])
	return &recipe, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) ([]map[string]any, error) {
	reqURL := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe request: %w", err)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recipe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recipe API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe response: %w", err)
	}

	var envelope mealEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode recipe response: %w", err)
	}

	c.logger.DebugContext(ctx, "Recipe API request completed",
		"endpoint", endpoint,
		"results", len(envelope.Meals),
		"duration_ms", time.Since(startTime).Milliseconds())

	return envelope.Meals, nil
}

// parseRecipe flattens the API's strIngredientN/strMeasureN columns into
// an ingredient list. Blank and null slots end the useful data but the
// API sometimes leaves gaps, so all twenty slots are scanned.
func parseRecipe(meal map[string]any) Recipe {
	recipe := Recipe{
		ID:           mealString(meal, "idMeal"),
		Title:        mealString(meal, "strMeal"),
		Category:     mealString(meal, "strCategory"),
		Area:         mealString(meal, "strArea"),
		Instructions: mealString(meal, "strInstructions"),
		ThumbnailURL: mealString(meal, "strMealThumb"),
		Tags:         mealString(meal, "strTags"),
		YoutubeURL:   mealString(meal, "strYoutube"),
	}

	for i := 1; i <= 20; i++ {
		name := strings.TrimSpace(mealString(meal, fmt.Sprintf("strIngredient%d", i)))
		if name == "" {
			continue
		}
		measure := strings.TrimSpace(mealString(meal, fmt.Sprintf("strMeasure%d", i)))
		recipe.Ingredients = append(recipe.Ingredients, Ingredient{
			Name:    name,
			Measure: measure,
		})
	}

	return recipe
}

func mealString(meal map[string]any, key string) string {
	if v, ok := meal[key].(string); ok {
		return v
	}
	return ""
}
