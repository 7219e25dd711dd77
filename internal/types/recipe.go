package types

import "time"

// VisibleOn is a recipe's visibility bucket, controlling which feed it
// appears in.
type VisibleOn string

const (
	VisibleWelcome VisibleOn = "welcome"
	VisibleHome    VisibleOn = "home"
	VisibleBoth    VisibleOn = "both"
)

// Valid reports whether v is one of the three known buckets.
func (v VisibleOn) Valid() bool {
	return v == VisibleWelcome || v == VisibleHome || v == VisibleBoth
}

// Review is a named rating left on a recipe.
type Review struct {
	Reviewer string `json:"reviewer"`
	Rating   int    `json:"rating"`
}

// Recipe is the client-side projection of a recipe.
//
// Liked and Rating are viewer-relative: they reflect what the current
// viewer sees, not a property shared between two viewers' caches.
type Recipe struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Ingredients []string  `json:"ingredients"`
	Steps       []string  `json:"steps"`
	Category    string    `json:"category"`
	Region      string    `json:"region"`
	MinPrice    string    `json:"minPrice"`
	CookTime    string    `json:"cookTime"`
	PrepTime    string    `json:"prepTime"`
	UserID      string    `json:"userId"`
	VisibleOn   VisibleOn `json:"visibleOn"`
	CreatedAt   time.Time `json:"createdAt"`
	Rating      float64   `json:"rating"`
	Liked       bool      `json:"liked"`
	Reviews     []Review  `json:"reviews,omitempty"`
}

// Clone returns a deep copy so store reads never alias store memory.
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = append([]string(nil), r.Ingredients...)
	out.Steps = append([]string(nil), r.Steps...)
	out.Reviews = append([]Review(nil), r.Reviews...)
	return out
}

// CloneRecipes deep-copies a recipe slice.
func CloneRecipes(in []Recipe) []Recipe {
	if in == nil {
		return nil
	}
	out := make([]Recipe, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
