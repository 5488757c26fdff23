package database

import (
	"strings"
	"time"
)

// Preferences stores the user's cooking preferences as a single row.
// List-valued fields are stored as comma-separated text and exposed
// through the Split helpers.
type Preferences struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	DietaryRestrictions string `db:"dietary_restrictions"`
	Allergies           string `db:"allergies"`
	SkillLevel          string `db:"skill_level"`
	SpiceLevel          string `db:"spice_level"`
	FavoriteCuisines    string `db:"favorite_cuisines"`
}

// AllergyList returns the individual allergy entries, trimmed, with
// empties removed.
func (p *Preferences) AllergyList() []string {
	return splitList(p.Allergies)
}

// RestrictionList returns the individual dietary restriction entries.
func (p *Preferences) RestrictionList() []string {
	return splitList(p.DietaryRestrictions)
}

// CuisineList returns the individual favorite cuisine entries.
func (p *Preferences) CuisineList() []string {
	return splitList(p.FavoriteCuisines)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Favorite represents a recipe the user has saved for later.
type Favorite struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	RecipeID     string `db:"recipe_id"`
	Title        string `db:"title"`
	ThumbnailURL string `db:"thumbnail_url"`
}

// ShoppingItem represents a single entry on the shopping list.
type ShoppingItem struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Ingredient string `db:"ingredient"`
	Quantity   string `db:"quantity"`
	Checked    bool   `db:"checked"`
}

// CredentialProviderKey is the credentials table entry name under which
// the direct-mode provider API key is stored.
const CredentialProviderKey = "provider_api_key"
