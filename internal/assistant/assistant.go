package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/platepal/platepal/internal/database"
)

// Assistant exposes the task-specific AI operations used by the app's
// screens. Each call assembles one system message (task framing plus
// preference context) and one user message, sends them through the
// selected transport, and shapes the reply for the caller.
type Assistant struct {
	transport Transport
	store     database.Store
	logger    *slog.Logger
}

// New creates an Assistant using the given transport and local store.
func New(transport Transport, store database.Store, logger *slog.Logger) *Assistant {
	return &Assistant{
		transport: transport,
		store:     store,
		logger:    logger.With("component", "assistant"),
	}
}

// Chat sends a free-form cooking question and returns the model's reply.
func (a *Assistant) Chat(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty chat message", ErrInvalidRequest)
	}

	system := a.systemPrompt(ctx, chatSystemPrompt)
	return a.complete(ctx, system, text, DefaultChatTemperature)
}

// RecommendRecipes asks for recipe suggestions based on dishes the user
// has liked, returning the model's free-text rationale.
func (a *Assistant) RecommendRecipes(ctx context.Context, likedTitles []string) (string, error) {
	var user string
	if len(likedTitles) > 0 {
		user = "I recently enjoyed these recipes: " + strings.Join(likedTitles, ", ") + ". What should I cook next?"
	} else {
		user = "What should I cook next?"
	}

	system := a.systemPrompt(ctx, recommendSystemPrompt)
	return a.complete(ctx, system, user, DefaultChatTemperature)
}

// AnalyzeNutrition estimates the per-serving nutrition breakdown for a
// recipe. The ingredient list, when available, sharpens the estimate.
func (a *Assistant) AnalyzeNutrition(ctx context.Context, recipeTitle string, ingredients []string) (*NutritionInfo, error) {
	recipeTitle = strings.TrimSpace(recipeTitle)
	if recipeTitle == "" {
		return nil, fmt.Errorf("%w: empty recipe title", ErrInvalidRequest)
	}

	user := "Recipe: " + recipeTitle
	if len(ingredients) > 0 {
		user += "\nIngredients: " + strings.Join(ingredients, ", ")
	}

	system := a.systemPrompt(ctx, nutritionSystemPrompt)
	reply, err := a.complete(ctx, system, user, StructuredTemperature)
	if err != nil {
		return nil, err
	}

	obj, err := parseObject(reply)
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to parse nutrition reply", "error", err)
		return nil, err
	}

	return &NutritionInfo{
		Calories: stringField(obj, "calories"),
		Protein:  stringField(obj, "protein"),
		Carbs:    stringField(obj, "carbs"),
		Fat:      stringField(obj, "fat"),
		Fiber:    stringField(obj, "fiber"),
		Sugar:    stringField(obj, "sugar"),
	}, nil
}

// CookingSteps returns step-by-step instructions for a recipe, tuned to
// the user's skill level from preferences.
func (a *Assistant) CookingSteps(ctx context.Context, recipeTitle string) ([]string, error) {
	recipeTitle = strings.TrimSpace(recipeTitle)
	if recipeTitle == "" {
		return nil, fmt.Errorf("%w: empty recipe title", ErrInvalidRequest)
	}

	system := a.systemPrompt(ctx, stepsSystemPrompt)
	reply, err := a.complete(ctx, system, "Recipe: "+recipeTitle, StructuredTemperature)
	if err != nil {
		return nil, err
	}

	steps, err := parseStringList(reply)
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to parse steps reply", "error", err)
		return nil, err
	}
	return steps, nil
}

// SuggestSubstitutions returns substitution candidates for an
// ingredient. Entries matching a stored allergy are removed after
// parsing, so malformed replies are still reported as such.
func (a *Assistant) SuggestSubstitutions(ctx context.Context, ingredient string) ([]string, error) {
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		return nil, fmt.Errorf("%w: empty ingredient", ErrInvalidRequest)
	}

	system := a.systemPrompt(ctx, substitutionSystemPrompt)
	reply, err := a.complete(ctx, system, "Ingredient: "+ingredient, StructuredTemperature)
	if err != nil {
		return nil, err
	}

	subs, err := parseStringList(reply)
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to parse substitutions reply", "error", err)
		return nil, err
	}

	prefs, err := a.store.GetPreferences(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "Failed to load preferences for allergen filter", "error", err)
		return subs, nil
	}

	filtered := filterAllergens(subs, prefs.AllergyList())
	if removed := len(subs) - len(filtered); removed > 0 {
		a.logger.InfoContext(ctx, "Filtered allergen-matching substitutions", "removed", removed)
	}
	return filtered, nil
}

func (a *Assistant) complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	messages := []ChatMessage{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}

	reply, err := a.transport.Complete(ctx, messages, temperature)
	if err != nil {
		return "", err
	}
	return reply, nil
}

// systemPrompt appends the flattened preference context to the task's
// base prompt. Preference loading is best-effort: a storage error is
// logged and the base prompt is used alone.
func (a *Assistant) systemPrompt(ctx context.Context, base string) string {
	prefs, err := a.store.GetPreferences(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "Failed to load preferences for prompt", "error", err)
		return base
	}

	prefContext := formatPreferenceContext(prefs)
	if prefContext == "" {
		return base
	}
	return base + "\n\n" + prefContext
}

// formatPreferenceContext flattens stored preferences into plain
// natural-language lines for prompt injection. Empty fields contribute
// nothing.
func formatPreferenceContext(prefs *database.Preferences) string {
	if prefs == nil {
		return ""
	}

	var lines []string
	if restrictions := prefs.RestrictionList(); len(restrictions) > 0 {
		lines = append(lines, "Dietary restrictions: "+strings.Join(restrictions, ", "))
	}
	if allergies := prefs.AllergyList(); len(allergies) > 0 {
		lines = append(lines, "Allergies (never suggest these): "+strings.Join(allergies, ", "))
	}
	if prefs.SkillLevel != "" {
		lines = append(lines, "Cooking skill level: "+prefs.SkillLevel)
	}
	if prefs.SpiceLevel != "" {
		lines = append(lines, "Preferred spice level: "+prefs.SpiceLevel)
	}
	if cuisines := prefs.CuisineList(); len(cuisines) > 0 {
		lines = append(lines, "Favorite cuisines: "+strings.Join(cuisines, ", "))
	}

	if len(lines) == 0 {
		return ""
	}
	return "About the user:\n" + strings.Join(lines, "\n")
}
