package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/reciperealm/reciperealm-v2/client/internal/errors"
	"github.com/reciperealm/reciperealm-v2/client/internal/types"
)

// ProfileFetcher is the slice of the API client the profile cache
// needs.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context) (types.UserProfile, error)
}

// ProfileStore caches the authenticated user's profile: owned recipes,
// liked recipes, and the stats derived from them. Its lifecycle is
// independent of the collection store but it references the same
// recipe ids.
type ProfileStore struct {
	mu sync.RWMutex

	fetcher ProfileFetcher
	logger  *slog.Logger

	profile *types.UserProfile
}

// NewProfileStore creates an empty profile cache.
func NewProfileStore(fetcher ProfileFetcher, logger *slog.Logger) *ProfileStore {
	return &ProfileStore{fetcher: fetcher, logger: logger}
}

// Load fetches the profile from the server. A failed load leaves the
// previously cached profile untouched: stale-but-present beats empty.
func (s *ProfileStore) Load(ctx context.Context) (types.UserProfile, error) {
	profile, err := s.fetcher.FetchProfile(ctx)
	if err != nil {
		s.logger.Warn("profile load failed, keeping cached profile", "error", err)
		return types.UserProfile{}, err
	}
	profile.RecomputeStats()

	s.mu.Lock()
	s.profile = &profile
	s.mu.Unlock()
	return profile.Clone(), nil
}

// Current returns a copy of the cached profile, if any.
func (s *ProfileStore) Current() (types.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return types.UserProfile{}, false
	}
	return s.profile.Clone(), true
}

// Set replaces the cached profile, recomputing stats. Used when a
// persisted session is restored before the first network load.
func (s *ProfileStore) Set(profile types.UserProfile) {
	profile.RecomputeStats()
	s.mu.Lock()
	s.profile = &profile
	s.mu.Unlock()
}

// Clear drops the cached profile on logout or session invalidation.
func (s *ProfileStore) Clear() {
	s.mu.Lock()
	s.profile = nil
	s.mu.Unlock()
}

// SetLikedRecipes replaces the liked list and recomputes the like
// counter. Used for optimistic and confirmed updates.
func (s *ProfileStore) SetLikedRecipes(list []types.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return errors.ErrUnauthorized
	}
	s.profile.LikedRecipes = types.CloneRecipes(list)
	s.profile.RecomputeStats()
	return nil
}

// LikedRecipes returns a copy of the liked list.
func (s *ProfileStore) LikedRecipes() []types.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	return types.CloneRecipes(s.profile.LikedRecipes)
}

// OwnedRecipes returns a copy of the owned list.
func (s *ProfileStore) OwnedRecipes() []types.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	return types.CloneRecipes(s.profile.Recipes)
}

// AddOwnedRecipe appends a newly published recipe and bumps the
// counters.
func (s *ProfileStore) AddOwnedRecipe(recipe types.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return errors.ErrUnauthorized
	}
	s.profile.Recipes = append(s.profile.Recipes, recipe.Clone())
	s.profile.RecomputeStats()
	return nil
}

// RemoveOwnedRecipe drops a deleted recipe from the owned list and
// decrements the counter.
func (s *ProfileStore) RemoveOwnedRecipe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return
	}
	s.profile.Recipes = deleteByID(s.profile.Recipes, id)
	s.profile.RecomputeStats()
}

// RemoveLikedRecipe drops a recipe from the liked list and decrements
// the counter.
func (s *ProfileStore) RemoveLikedRecipe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return
	}
	s.profile.LikedRecipes = deleteByID(s.profile.LikedRecipes, id)
	s.profile.RecomputeStats()
}

// ApplyRating updates the rating of the matching entries in both the
// owned and liked lists.
func (s *ProfileStore) ApplyRating(id string, rating float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return
	}
	for i := range s.profile.Recipes {
		if s.profile.Recipes[i].ID == id {
			s.profile.Recipes[i].Rating = rating
		}
	}
	for i := range s.profile.LikedRecipes {
		if s.profile.LikedRecipes[i].ID == id {
			s.profile.LikedRecipes[i].Rating = rating
		}
	}
	s.profile.RecomputeStats()
}

// Stats returns the derived counters of the cached profile.
func (s *ProfileStore) Stats() (types.Stats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return types.Stats{}, false
	}
	return s.profile.Stats, true
}
