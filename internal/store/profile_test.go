package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reciperealm/reciperealm-v2/client/internal/errors"
	"github.com/reciperealm/reciperealm-v2/client/internal/logger"
	"github.com/reciperealm/reciperealm-v2/client/internal/types"
)

type stubProfileFetcher struct {
	profile types.UserProfile
	err     error
}

func (f *stubProfileFetcher) FetchProfile(ctx context.Context) (types.UserProfile, error) {
	if f.err != nil {
		return types.UserProfile{}, f.err
	}
	return f.profile.Clone(), nil
}

func sampleProfile() types.UserProfile {
	return types.UserProfile{
		ID:   "u1",
		Name: "Ada",
		Recipes: []types.Recipe{
			{ID: "r1", Title: "Ndole", Rating: 4},
			{ID: "r2", Title: "Eru", Rating: 2},
		},
		LikedRecipes: []types.Recipe{
			{ID: "r3", Title: "Jollof", Liked: true},
		},
	}
}

func TestLoadRecomputesStats(t *testing.T) {
	fetcher := &stubProfileFetcher{profile: sampleProfile()}
	s := NewProfileStore(fetcher, logger.Discard())

	p, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, p.Stats.Recipes)
	assert.Equal(t, 1, p.Stats.Likes)
	assert.InDelta(t, 3.0, p.Stats.AvgRating, 0.001)
}

func TestLoadFailureKeepsCachedProfile(t *testing.T) {
	fetcher := &stubProfileFetcher{profile: sampleProfile()}
	s := NewProfileStore(fetcher, logger.Discard())

	_, err := s.Load(context.Background())
	require.NoError(t, err)

	fetcher.err = errors.Unavailable("api down")
	_, err = s.Load(context.Background())
	require.Error(t, err)

	cached, ok := s.Current()
	assert.True(t, ok, "a failed load must not clear the cache")
	assert.Equal(t, "Ada", cached.Name)
}

func TestSetLikedRecipesWithoutProfile(t *testing.T) {
	s := NewProfileStore(&stubProfileFetcher{}, logger.Discard())
	err := s.SetLikedRecipes([]types.Recipe{{ID: "r1"}})
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestLikeCounterFollowsLikedList(t *testing.T) {
	s := NewProfileStore(&stubProfileFetcher{}, logger.Discard())
	s.Set(sampleProfile())

	require.NoError(t, s.SetLikedRecipes([]types.Recipe{{ID: "r3"}, {ID: "r4"}}))
	stats, _ := s.Stats()
	assert.Equal(t, 2, stats.Likes)

	s.RemoveLikedRecipe("r4")
	stats, _ = s.Stats()
	assert.Equal(t, 1, stats.Likes)
}

func TestRemoveOwnedRecipeUpdatesStats(t *testing.T) {
	s := NewProfileStore(&stubProfileFetcher{}, logger.Discard())
	s.Set(sampleProfile())

	s.RemoveOwnedRecipe("r2")
	stats, _ := s.Stats()
	assert.Equal(t, 1, stats.Recipes)
	assert.InDelta(t, 4.0, stats.AvgRating, 0.001)
}

func TestApplyRatingTouchesBothLists(t *testing.T) {
	s := NewProfileStore(&stubProfileFetcher{}, logger.Discard())
	profile := sampleProfile()
	profile.LikedRecipes = append(profile.LikedRecipes, types.Recipe{ID: "r1", Liked: true})
	s.Set(profile)

	s.ApplyRating("r1", 5)

	for _, r := range s.OwnedRecipes() {
		if r.ID == "r1" {
			assert.Equal(t, 5.0, r.Rating)
		}
	}
	for _, r := range s.LikedRecipes() {
		if r.ID == "r1" {
			assert.Equal(t, 5.0, r.Rating)
		}
	}
}

func TestClear(t *testing.T) {
	s := NewProfileStore(&stubProfileFetcher{}, logger.Discard())
	s.Set(sampleProfile())
	s.Clear()

	_, ok := s.Current()
	assert.False(t, ok)
	assert.Nil(t, s.LikedRecipes())
}
