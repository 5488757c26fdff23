// Package main contains the PlatePal command line client: AI assistant
// tasks, recipe lookups, favorites, the shopping list, and preferences.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/platepal/platepal/internal/assistant"
	"github.com/platepal/platepal/internal/config"
	"github.com/platepal/platepal/internal/database"
	"github.com/platepal/platepal/internal/logger"
	"github.com/platepal/platepal/internal/recipes"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: platepal [-config path] <command> [args]

AI assistant:
  chat <message>             Ask the cooking assistant a question
  recommend [title ...]      Recommend recipes based on liked titles
  nutrition <title>          Estimate nutrition for a recipe
  steps <title>              Generate step-by-step cooking instructions
  substitute <ingredient>    Suggest ingredient substitutions

Recipes:
  search <query>             Search recipes by name
  recipe <id>                Show a recipe by id
  ingredient <name>          List recipes using an ingredient
  random                     Show a random recipe

Favorites:
  favorites                  List saved favorites
  favorite <id>              Save a recipe to favorites
  unfavorite <id>            Remove a recipe from favorites

Shopping list:
  shopping                   Show the shopping list
  buy <ingredient> [qty]     Add an item to the shopping list
  check <item-id>            Toggle an item's checked state
  clear-checked              Remove all checked items

Settings:
  prefs                      Show stored preferences
  set-prefs                  Update preferences (see set-prefs -h)
  set-key <api-key>          Store the direct-mode provider API key`)
}

// run dispatches the subcommand and returns the process exit code.
func run(ctx context.Context) int {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	cli := &cli{
		cfg:     cfg,
		log:     log,
		store:   store,
		recipes: recipes.NewClient(cfg.Recipes.BaseURL, cfg.Recipes.Timeout, log),
	}
	cli.assistant = assistant.New(assistant.NewTransport(cfg, store, log), store, log)

	if err := cli.dispatch(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

type cli struct {
	cfg       *config.Config
	log       *slog.Logger
	store     database.Store
	assistant *assistant.Assistant
	recipes   *recipes.Client
}

func (c *cli) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "chat":
		return c.chat(ctx, args)
	case "recommend":
		return c.recommend(ctx, args)
	case "nutrition":
		return c.nutrition(ctx, args)
	case "steps":
		return c.steps(ctx, args)
	case "substitute":
		return c.substitute(ctx, args)
	case "search":
		return c.search(ctx, args)
	case "recipe":
		return c.recipe(ctx, args)
	case "ingredient":
		return c.byIngredient(ctx, args)
	case "random":
		return c.random(ctx)
	case "favorites":
		return c.favorites(ctx)
	case "favorite":
		return c.favorite(ctx, args)
	case "unfavorite":
		return c.unfavorite(ctx, args)
	case "shopping":
		return c.shopping(ctx)
	case "buy":
		return c.buy(ctx, args)
	case "check":
		return c.check(ctx, args)
	case "clear-checked":
		return c.store.ClearCheckedShoppingItems(ctx)
	case "prefs":
		return c.showPrefs(ctx)
	case "set-prefs":
		return c.setPrefs(ctx, args)
	case "set-key":
		return c.setKey(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func requireArg(args []string, name string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("missing required argument: %s", name)
	}
	return args[0], nil
}

func (c *cli) chat(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing required argument: message")
	}
	reply, err := c.assistant.Chat(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}

func (c *cli) recommend(ctx context.Context, args []string) error {
	titles := args
	if len(titles) == 0 {
		// Fall back to the favorites list as the liked-recipe signal.
		favs, err := c.store.ListFavorites(ctx)
		if err != nil {
			return err
		}
		for _, fav := range favs {
			titles = append(titles, fav.Title)
		}
	}

	reply, err := c.assistant.RecommendRecipes(ctx, titles)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}

func (c *cli) nutrition(ctx context.Context, args []string) error {
	title, err := requireArg(args, "title")
	if err != nil {
		return err
	}

	info, err := c.assistant.AnalyzeNutrition(ctx, title, nil)
	if err != nil {
		return err
	}

	fmt.Printf("Nutrition estimate for %s (per serving):\n", title)
	fmt.Println("  Calories:", info.Calories)
	fmt.Println("  Protein: ", info.Protein)
	fmt.Println("  Carbs:   ", info.Carbs)
	fmt.Println("  Fat:     ", info.Fat)
	fmt.Println("  Fiber:   ", info.Fiber)
	fmt.Println("  Sugar:   ", info.Sugar)
	return nil
}

func (c *cli) steps(ctx context.Context, args []string) error {
	title, err := requireArg(args, "title")
	if err != nil {
		return err
	}

	steps, err := c.assistant.CookingSteps(ctx, title)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		fmt.Println("No steps returned.")
		return nil
	}
	for i, step := range steps {
		fmt.Printf("%d. %s\n", i+1, step)
	}
	return nil
}

func (c *cli) substitute(ctx context.Context, args []string) error {
	ingredient, err := requireArg(args, "ingredient")
	if err != nil {
		return err
	}

	subs, err := c.assistant.SuggestSubstitutions(ctx, ingredient)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Println("No substitutions found.")
		return nil
	}
	for _, sub := range subs {
		fmt.Println("-", sub)
	}
	return nil
}

func (c *cli) search(ctx context.Context, args []string) error {
	if _, err := requireArg(args, "query"); err != nil {
		return err
	}

	results, err := c.recipes.SearchByName(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No recipes found.")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%s  %s (%s, %s)\n", r.ID, r.Title, r.Category, r.Area)
	}
	return nil
}

func (c *cli) recipe(ctx context.Context, args []string) error {
	id, err := requireArg(args, "id")
	if err != nil {
		return err
	}

	recipe, err := c.recipes.LookupByID(ctx, id)
	if err != nil {
		return err
	}
	if recipe == nil {
		fmt.Println("Recipe not found.")
		return nil
	}
	printRecipe(recipe)
	return nil
}

func (c *cli) byIngredient(ctx context.Context, args []string) error {
	name, err := requireArg(args, "ingredient")
	if err != nil {
		return err
	}

	summaries, err := c.recipes.FilterByIngredient(ctx, name)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No recipes found.")
		return nil
	}
	for _, s := range summaries {
		fmt.Printf("%s  %s\n", s.ID, s.Title)
	}
	return nil
}

func (c *cli) random(ctx context.Context) error {
	recipe, err := c.recipes.Random(ctx)
	if err != nil {
		return err
	}
	printRecipe(recipe)
	return nil
}

func printRecipe(r *recipes.Recipe) {
	fmt.Printf("%s (%s, %s)\n", r.Title, r.Category, r.Area)
	fmt.Println("\nIngredients:")
	for _, ing := range r.Ingredients {
		if ing.Measure != "" {
			fmt.Printf("  - %s: %s\n", ing.Name, ing.Measure)
		} else {
			fmt.Printf("  - %s\n", ing.Name)
		}
	}
	fmt.Println("\nInstructions:")
	fmt.Println(r.Instructions)
	if r.YoutubeURL != "" {
		fmt.Println("\nVideo:", r.YoutubeURL)
	}
}

func (c *cli) favorites(ctx context.Context) error {
	favs, err := c.store.ListFavorites(ctx)
	if err != nil {
		return err
	}
	if len(favs) == 0 {
		fmt.Println("No favorites saved.")
		return nil
	}
	for _, fav := range favs {
		fmt.Printf("%s  %s\n", fav.RecipeID, fav.Title)
	}
	return nil
}

func (c *cli) favorite(ctx context.Context, args []string) error {
	id, err := requireArg(args, "id")
	if err != nil {
		return err
	}

	recipe, err := c.recipes.LookupByID(ctx, id)
	if err != nil {
		return err
	}
	if recipe == nil {
		return fmt.Errorf("recipe %s not found", id)
	}

	err = c.store.AddFavorite(ctx, &database.Favorite{
		RecipeID:     recipe.ID,
		Title:        recipe.Title,
		ThumbnailURL: recipe.ThumbnailURL,
	})
	if err != nil {
		return err
	}
	fmt.Println("Saved:", recipe.Title)
	return nil
}

func (c *cli) unfavorite(ctx context.Context, args []string) error {
	id, err := requireArg(args, "id")
	if err != nil {
		return err
	}
	if err := c.store.RemoveFavorite(ctx, id); err != nil {
		return err
	}
	fmt.Println("Removed.")
	return nil
}

func (c *cli) shopping(ctx context.Context) error {
	items, err := c.store.ListShoppingItems(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("Shopping list is empty.")
		return nil
	}
	for _, item := range items {
		mark := " "
		if item.Checked {
			mark = "x"
		}
		line := item.Ingredient
		if item.Quantity != "" {
			line += " (" + item.Quantity + ")"
		}
		fmt.Printf("%3d [%s] %s\n", item.ID, mark, line)
	}
	return nil
}

func (c *cli) buy(ctx context.Context, args []string) error {
	ingredient, err := requireArg(args, "ingredient")
	if err != nil {
		return err
	}
	quantity := ""
	if len(args) > 1 {
		quantity = strings.Join(args[1:], " ")
	}

	err = c.store.AddShoppingItem(ctx, &database.ShoppingItem{
		Ingredient: ingredient,
		Quantity:   quantity,
	})
	if err != nil {
		return err
	}
	fmt.Println("Added:", ingredient)
	return nil
}

func (c *cli) check(ctx context.Context, args []string) error {
	raw, err := requireArg(args, "item-id")
	if err != nil {
		return err
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid item id %q", raw)
	}
	return c.store.ToggleShoppingItem(ctx, uint(id))
}

func (c *cli) showPrefs(ctx context.Context) error {
	prefs, err := c.store.GetPreferences(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Dietary restrictions:", valueOrNone(prefs.DietaryRestrictions))
	fmt.Println("Allergies:           ", valueOrNone(prefs.Allergies))
	fmt.Println("Skill level:         ", valueOrNone(prefs.SkillLevel))
	fmt.Println("Spice level:         ", valueOrNone(prefs.SpiceLevel))
	fmt.Println("Favorite cuisines:   ", valueOrNone(prefs.FavoriteCuisines))
	return nil
}

func valueOrNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

// setPrefs updates only the fields whose flags were provided, preserving
// the rest of the stored row.
func (c *cli) setPrefs(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-prefs", flag.ContinueOnError)
	restrictions := fs.String("restrictions", "", "Comma-separated dietary restrictions")
	allergies := fs.String("allergies", "", "Comma-separated allergies")
	skill := fs.String("skill", "", "Cooking skill level (beginner, intermediate, advanced)")
	spice := fs.String("spice", "", "Preferred spice level (mild, medium, hot)")
	cuisines := fs.String("cuisines", "", "Comma-separated favorite cuisines")
	if err := fs.Parse(args); err != nil {
		return err
	}

	prefs, err := c.store.GetPreferences(ctx)
	if err != nil {
		return err
	}

	changed := false
	fs.Visit(func(f *flag.Flag) {
		changed = true
		switch f.Name {
		case "restrictions":
			prefs.DietaryRestrictions = *restrictions
		case "allergies":
			prefs.Allergies = *allergies
		case "skill":
			prefs.SkillLevel = *skill
		case "spice":
			prefs.SpiceLevel = *spice
		case "cuisines":
			prefs.FavoriteCuisines = *cuisines
		}
	})
	if !changed {
		return fmt.Errorf("no preference flags provided, see set-prefs -h")
	}

	if err := c.store.SavePreferences(ctx, prefs); err != nil {
		return err
	}
	fmt.Println("Preferences saved.")
	return nil
}

func (c *cli) setKey(ctx context.Context, args []string) error {
	key, err := requireArg(args, "api-key")
	if err != nil {
		return err
	}
	if err := c.store.SetCredential(ctx, database.CredentialProviderKey, key); err != nil {
		return err
	}
	fmt.Println("API key saved.")
	return nil
}
