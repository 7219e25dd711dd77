package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reciperealm/reciperealm-v2/client/internal/errors"
	"github.com/reciperealm/reciperealm-v2/client/internal/types"
)

func TestDecodeRecipeStringifiedLists(t *testing.T) {
	payload := []byte(`{
		"id": 42,
		"title": "Ndole",
		"description": "Bitterleaf stew",
		"ingredients": "[\"bitterleaf\",\"peanuts\"]",
		"steps": "[\"wash\",\"boil\"]",
		"category": {"id": 3, "name": "westAfrican"},
		"min_price": 1500,
		"user_id": "7",
		"visible_on": "home",
		"created_at": "2025-03-01T10:00:00Z"
	}`)

	r, err := DecodeRecipe(payload, Options{})
	require.NoError(t, err)

	assert.Equal(t, "42", r.ID)
	assert.Equal(t, []string{"bitterleaf", "peanuts"}, r.Ingredients)
	assert.Equal(t, []string{"wash", "boil"}, r.Steps)
	assert.Equal(t, "westAfrican", r.Category)
	assert.Equal(t, "1500", r.MinPrice)
	assert.Equal(t, types.VisibleHome, r.VisibleOn)
	assert.Equal(t, 2025, r.CreatedAt.Year())
}

func TestDecodeRecipePlainArrays(t *testing.T) {
	payload := []byte(`{
		"id": "a1",
		"title": "Eru",
		"ingredients": ["eru leaves", "waterleaf"],
		"steps": ["chop", "simmer"],
		"category_id": "18",
		"region": {"name": "southWest"}
	}`)

	r, err := DecodeRecipe(payload, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"eru leaves", "waterleaf"}, r.Ingredients)
	assert.Equal(t, "18", r.Category)
	assert.Equal(t, "southWest", r.Region)
	// No visibility supplied defaults to both feeds.
	assert.Equal(t, types.VisibleBoth, r.VisibleOn)
}

func TestDecodeRecipeMissingID(t *testing.T) {
	_, err := DecodeRecipe([]byte(`{"title": "nameless"}`), Options{})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestDecodeRecipeBadCreatedAt(t *testing.T) {
	_, err := DecodeRecipe([]byte(`{"id": "1", "created_at": "yesterday"}`), Options{})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestDecodeRecipeRatingsListWinsOverScalar(t *testing.T) {
	payload := []byte(`{
		"id": "1",
		"rating": 2.0,
		"ratings": [{"score": 4}, {"score": 5}]
	}`)

	r, err := DecodeRecipe(payload, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 4.5, r.Rating, 0.001)
}

func TestDecodeRecipeLikedFromFavoritedBy(t *testing.T) {
	payload := []byte(`{
		"id": "1",
		"liked": false,
		"favoritedBy": [{"user_id": "u9"}]
	}`)

	r, err := DecodeRecipe(payload, Options{ViewerID: "u9"})
	require.NoError(t, err)
	assert.True(t, r.Liked, "favoritedBy list should override the liked flag for the viewer")

	r, err = DecodeRecipe(payload, Options{ViewerID: "someone-else"})
	require.NoError(t, err)
	assert.False(t, r.Liked)
}

func TestDecodeRecipeLikedFlagWithoutViewer(t *testing.T) {
	r, err := DecodeRecipe([]byte(`{"id": "1", "liked": true}`), Options{})
	require.NoError(t, err)
	assert.True(t, r.Liked)
}

func TestResolveImage(t *testing.T) {
	base := "http://api.test"

	assert.Equal(t, DefaultImage, ResolveImage("", base))
	assert.Equal(t, "https://cdn.test/x.png", ResolveImage("https://cdn.test/x.png", base))
	assert.Equal(t, "/default-recipe.png", ResolveImage("/default-recipe.png", base))
	assert.Equal(t, "http://api.test/storage/uploads/x.png", ResolveImage("uploads/x.png", base))
}

func TestDecodeProfileRecomputesStats(t *testing.T) {
	payload := []byte(`{
		"id": "u1",
		"name": "Ada",
		"stats": {"recipes": 99, "likes": 99, "avgRating": 9.9},
		"recipes": [
			{"id": "r1", "ratings": [{"score": 4}]},
			{"id": "r2", "ratings": [{"score": 2}]}
		],
		"likedRecipes": [{"id": "r3", "liked": false}]
	}`)

	p, err := DecodeProfile(payload, Options{})
	require.NoError(t, err)

	// Server-side counters are ignored in favor of the embedded lists.
	assert.Equal(t, 2, p.Stats.Recipes)
	assert.Equal(t, 1, p.Stats.Likes)
	assert.InDelta(t, 3.0, p.Stats.AvgRating, 0.001)
	assert.True(t, p.LikedRecipes[0].Liked, "entries in likedRecipes are liked by definition")
}

func TestParseRating(t *testing.T) {
	v, ok := ParseRating(4.0)
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)

	v, ok = ParseRating("3.5")
	assert.True(t, ok)
	assert.Equal(t, 3.5, v)

	_, ok = ParseRating(nil)
	assert.False(t, ok)
}
