// Package store holds the in-memory client state: the recipe collection
// and the authenticated user's profile cache. Stores are plain injected
// objects, never package-level singletons, and all reads return copies
// so rendering code can read at any time without blocking a mutation.
package store

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/reciperealm/reciperealm-v2/client/internal/types"
)

// RecipeFetcher is the slice of the API client the collection store
// needs.
type RecipeFetcher interface {
	FetchRecipes(ctx context.Context, authenticated bool) ([]types.Recipe, error)
}

// RecipeStore holds every recipe the current viewer may see, merged
// from the fixed seed catalog and the last successful server fetch.
type RecipeStore struct {
	mu sync.RWMutex

	fetcher RecipeFetcher
	logger  *slog.Logger

	viewer      string
	seed        []types.Recipe
	recipes     []types.Recipe
	recommended []types.Recipe
	lastErr     error
}

// NewRecipeStore creates a store preloaded with the seed catalog.
func NewRecipeStore(fetcher RecipeFetcher, seed []types.Recipe, logger *slog.Logger) *RecipeStore {
	return &RecipeStore{
		fetcher: fetcher,
		logger:  logger,
		seed:    types.CloneRecipes(seed),
		recipes: types.CloneRecipes(seed),
	}
}

// SetViewer records whose viewer-relative state the collection holds,
// empty for anonymous. When the identity changes the collection resets
// to the pristine seed catalog, dropping the previous viewer's liked
// and rating overlays so they never show up in the next viewer's list.
// A call with the current identity is a no-op.
func (s *RecipeStore) SetViewer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.viewer {
		return
	}
	s.viewer = id
	s.recipes = types.CloneRecipes(s.seed)
	s.lastErr = nil
}

// FetchAll refreshes the collection from the server. The fetched set
// replaces the server-derived subset while the seed entries are always
// kept; on an id tie the seed entry wins structurally, but the
// viewer-relative fields (liked, rating) follow the server projection
// when one arrived, or the current in-store entry otherwise, so a
// refetch never silently undoes a like. On failure the store falls
// back to the seed set alone and records the error, so the list is
// never undefined.
func (s *RecipeStore) FetchAll(ctx context.Context, authenticated bool) ([]types.Recipe, error) {
	fetched, err := s.fetcher.FetchRecipes(ctx, authenticated)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.Warn("recipe fetch failed, falling back to seed catalog", "error", err)
		s.recipes = types.CloneRecipes(s.seed)
		s.lastErr = err
		return nil, err
	}

	fetchedByID := make(map[string]*types.Recipe, len(fetched))
	for i := range fetched {
		fetchedByID[fetched[i].ID] = &fetched[i]
	}
	currentByID := make(map[string]*types.Recipe, len(s.recipes))
	for i := range s.recipes {
		currentByID[s.recipes[i].ID] = &s.recipes[i]
	}

	merged := types.CloneRecipes(s.seed)
	seen := make(map[string]struct{}, len(merged))
	for i := range merged {
		seen[merged[i].ID] = struct{}{}
		if f, ok := fetchedByID[merged[i].ID]; ok {
			merged[i].Liked = f.Liked
			merged[i].Rating = f.Rating
		} else if cur, ok := currentByID[merged[i].ID]; ok {
			merged[i].Liked = cur.Liked
			merged[i].Rating = cur.Rating
		}
	}
	for _, r := range fetched {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		merged = append(merged, r)
	}

	s.recipes = merged
	s.lastErr = nil
	return types.CloneRecipes(merged), nil
}

// LastError returns the error recorded by the most recent failed fetch,
// or nil after a successful one.
func (s *RecipeStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// All returns a copy of the full collection.
func (s *RecipeStore) All() []types.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.CloneRecipes(s.recipes)
}

// Get returns the recipe with the given id.
func (s *RecipeStore) Get(id string) (types.Recipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.recipes {
		if s.recipes[i].ID == id {
			return s.recipes[i].Clone(), true
		}
	}
	return types.Recipe{}, false
}

// FilterByVisibility projects the recipes of one feed. Recipes marked
// "both" appear in either bucket.
func (s *RecipeStore) FilterByVisibility(bucket types.VisibleOn) []types.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Recipe
	for i := range s.recipes {
		v := s.recipes[i].VisibleOn
		if v == bucket || v == types.VisibleBoth {
			out = append(out, s.recipes[i].Clone())
		}
	}
	return out
}

// FilterByCategory projects the recipes of one category. The query may
// be the canonical key ("westAfrican"), the human label ("West
// African") or a numeric category id; when none of those mappings
// match, entries are compared by normalized lowercase.
func (s *RecipeStore) FilterByCategory(query string) []types.Recipe {
	key := ResolveCategory(query)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Recipe
	for i := range s.recipes {
		if categoriesEqual(s.recipes[i].Category, key) {
			out = append(out, s.recipes[i].Clone())
		}
	}
	return out
}

// FilterByRegion projects the recipes of one region, case-insensitive.
func (s *RecipeStore) FilterByRegion(region string) []types.Recipe {
	want := strings.ToLower(region)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Recipe
	for i := range s.recipes {
		if strings.ToLower(s.recipes[i].Region) == want {
			out = append(out, s.recipes[i].Clone())
		}
	}
	return out
}

// FilterBySearch projects recipes whose title, description or
// ingredients contain the term, case-insensitive.
func (s *RecipeStore) FilterBySearch(term string) []types.Recipe {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return s.All()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Recipe
	for i := range s.recipes {
		r := &s.recipes[i]
		if strings.Contains(strings.ToLower(r.Title), needle) ||
			strings.Contains(strings.ToLower(r.Description), needle) ||
			ingredientsContain(r.Ingredients, needle) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// SetRecommended derives the recommended subset: recipes of the given
// region that are visible on the welcome feed.
func (s *RecipeStore) SetRecommended(region string) {
	want := strings.ToLower(region)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommended = s.recommended[:0]
	for i := range s.recipes {
		r := &s.recipes[i]
		if strings.ToLower(r.Region) == want &&
			(r.VisibleOn == types.VisibleWelcome || r.VisibleOn == types.VisibleBoth) {
			s.recommended = append(s.recommended, r.Clone())
		}
	}
}

// Recommended returns a copy of the recommended subset.
func (s *RecipeStore) Recommended() []types.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.CloneRecipes(s.recommended)
}

// ApplyLike sets the liked flag on the matching entry in the collection
// and the recommended subset. Used for optimistic and confirmed writes;
// no network.
func (s *RecipeStore) ApplyLike(id string, liked bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.recipes {
		if s.recipes[i].ID == id {
			s.recipes[i].Liked = liked
			found = true
		}
	}
	for i := range s.recommended {
		if s.recommended[i].ID == id {
			s.recommended[i].Liked = liked
		}
	}
	return found
}

// ApplyRating sets the rating on the matching entry in the collection
// and the recommended subset.
func (s *RecipeStore) ApplyRating(id string, rating float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.recipes {
		if s.recipes[i].ID == id {
			s.recipes[i].Rating = rating
			found = true
		}
	}
	for i := range s.recommended {
		if s.recommended[i].ID == id {
			s.recommended[i].Rating = rating
		}
	}
	return found
}

// Replace swaps in a new projection for an existing id, in place.
// Entries are never duplicated; an unknown id is ignored.
func (s *RecipeStore) Replace(recipe types.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recipes {
		if s.recipes[i].ID == recipe.ID {
			s.recipes[i] = recipe.Clone()
		}
	}
	for i := range s.recommended {
		if s.recommended[i].ID == recipe.ID {
			s.recommended[i] = recipe.Clone()
		}
	}
}

// Add appends a newly published recipe.
func (s *RecipeStore) Add(recipe types.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recipes {
		if s.recipes[i].ID == recipe.ID {
			s.recipes[i] = recipe.Clone()
			return
		}
	}
	s.recipes = append(s.recipes, recipe.Clone())
}

// Remove purges the recipe from the collection and every derived
// subset.
func (s *RecipeStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes = deleteByID(s.recipes, id)
	s.recommended = deleteByID(s.recommended, id)
}

// Len returns the collection size.
func (s *RecipeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recipes)
}

func deleteByID(list []types.Recipe, id string) []types.Recipe {
	out := list[:0]
	for i := range list {
		if list[i].ID != id {
			out = append(out, list[i])
		}
	}
	return out
}

func ingredientsContain(ingredients []string, needle string) bool {
	for _, ing := range ingredients {
		if strings.Contains(strings.ToLower(ing), needle) {
			return true
		}
	}
	return false
}

// categoryLabels maps canonical category keys to their human labels.
var categoryLabels = map[string]string{
	"west":           "West",
	"east":           "East",
	"centre":         "Centre",
	"littoral":       "Littoral",
	"northWest":      "North West",
	"southWest":      "South West",
	"westAfrican":    "West African",
	"eastAfrican":    "East African",
	"centralAfrican": "Central African",
	"southAfrican":   "South African",
	"northAfrican":   "North African",
	"international":  "International",
	"snacks":         "Snacks",
	"breakfasts":     "Breakfasts",
	"desserts":       "Desserts",
	"drinks":         "Drinks",
}

// categoryIDs maps the server's numeric category ids to canonical keys.
var categoryIDs = map[string]string{
	"17": "international",
	"18": "snacks",
	"19": "breakfasts",
	"20": "desserts",
	"21": "drinks",
}

// ResolveCategory maps a category query to its canonical key. It
// accepts the key itself, the human label, or the numeric id; anything
// else is returned unchanged for the lowercase fallback comparison.
func ResolveCategory(query string) string {
	q := strings.TrimSpace(query)
	if _, ok := categoryLabels[q]; ok {
		return q
	}
	for key, label := range categoryLabels {
		if strings.EqualFold(label, q) {
			return key
		}
	}
	if key, ok := categoryIDs[q]; ok {
		return key
	}
	return q
}

// CategoryKeys returns the canonical keys, sorted, for UI pickers.
func CategoryKeys() []string {
	keys := make([]string, 0, len(categoryLabels))
	for k := range categoryLabels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CategoryLabel returns the human label for a canonical key, or the key
// itself when unknown.
func CategoryLabel(key string) string {
	if label, ok := categoryLabels[key]; ok {
		return label
	}
	return key
}

func categoriesEqual(have, want string) bool {
	if have == want {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(have), strings.TrimSpace(want))
}
