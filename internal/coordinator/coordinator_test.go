package coordinator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/reciperealm/reciperealm-v2/client/internal/errors"
	"github.com/reciperealm/reciperealm-v2/client/internal/localdata"
	"github.com/reciperealm/reciperealm-v2/client/internal/logger"
	"github.com/reciperealm/reciperealm-v2/client/internal/mocks"
	"github.com/reciperealm/reciperealm-v2/client/internal/session"
	"github.com/reciperealm/reciperealm-v2/client/internal/store"
	"github.com/reciperealm/reciperealm-v2/client/internal/types"
)

type fixture struct {
	api     *mocks.MockAPI
	local   *localdata.Store
	sess    *session.Session
	recipes *store.RecipeStore
	profile *store.ProfileStore
	coord   *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	local, err := localdata.Open("", logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	api := new(mocks.MockAPI)
	sess := session.New(local, logger.Discard())
	seed := []types.Recipe{
		{ID: "r1", Title: "Ndole", Region: "cameroon", VisibleOn: types.VisibleBoth, Rating: 3},
		{ID: "r2", Title: "Eru", Region: "cameroon", VisibleOn: types.VisibleWelcome},
	}
	recipes := store.NewRecipeStore(api, seed, logger.Discard())
	profile := store.NewProfileStore(api, logger.Discard())

	return &fixture{
		api:     api,
		local:   local,
		sess:    sess,
		recipes: recipes,
		profile: profile,
		coord:   New(api, recipes, profile, local, sess, logger.Discard()),
	}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	p := types.UserProfile{ID: "u1", Name: "Ada", Recipes: []types.Recipe{{ID: "own1", Title: "My Dish", UserID: "u1"}}}
	require.NoError(t, f.sess.Establish("tok", p))
	f.profile.Set(p)
}

func TestToggleLikeAnonymousStaysLocal(t *testing.T) {
	f := newFixture(t)

	liked, err := f.coord.ToggleLike(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, f.local.IsLiked("r1"))

	got, _ := f.recipes.Get("r1")
	assert.True(t, got.Liked)

	liked, err = f.coord.ToggleLike(context.Background(), "r1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.False(t, f.local.IsLiked("r1"))

	f.api.AssertNotCalled(t, "ToggleLike", mock.Anything, mock.Anything)
}

func TestToggleLikeAuthenticatedConfirmed(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	confirmed := types.Recipe{ID: "r1", Title: "Ndole", Region: "cameroon", VisibleOn: types.VisibleBoth, Liked: true, Rating: 3.5}
	f.api.On("ToggleLike", mock.Anything, "r1").Return(types.LikeResult{Liked: true, Recipe: &confirmed}, nil)
	f.api.On("FetchProfile", mock.Anything).Return(types.UserProfile{
		ID:           "u1",
		LikedRecipes: []types.Recipe{confirmed},
	}, nil)
	f.api.On("FetchRecipes", mock.Anything, true).Return([]types.Recipe{confirmed}, nil)

	liked, err := f.coord.ToggleLike(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, liked)

	got, _ := f.recipes.Get("r1")
	assert.True(t, got.Liked)
	assert.Equal(t, 3.5, got.Rating, "server projection replaces the optimistic one")

	stats, ok := f.profile.Stats()
	require.True(t, ok)
	assert.Equal(t, 1, stats.Likes)
	assert.Len(t, f.profile.LikedRecipes(), stats.Likes)

	f.api.AssertExpectations(t)
}

func TestToggleLikeAuthenticatedRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	statsBefore, ok := f.profile.Stats()
	require.True(t, ok)

	owned := []types.Recipe{{ID: "own1", Title: "My Dish", UserID: "u1"}}
	likedR1 := types.Recipe{ID: "r1", Title: "Ndole", Region: "cameroon", VisibleOn: types.VisibleBoth, Liked: true, Rating: 3}
	unlikedR1 := likedR1
	unlikedR1.Liked = false

	f.api.On("ToggleLike", mock.Anything, "r1").Return(types.LikeResult{Liked: true, Recipe: &likedR1}, nil).Once()
	f.api.On("FetchProfile", mock.Anything).Return(types.UserProfile{ID: "u1", Recipes: owned, LikedRecipes: []types.Recipe{likedR1}}, nil).Once()
	f.api.On("FetchRecipes", mock.Anything, true).Return([]types.Recipe{likedR1}, nil).Once()

	liked, err := f.coord.ToggleLike(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, liked)

	f.api.On("ToggleLike", mock.Anything, "r1").Return(types.LikeResult{Liked: false, Recipe: &unlikedR1}, nil).Once()
	f.api.On("FetchProfile", mock.Anything).Return(types.UserProfile{ID: "u1", Recipes: owned}, nil).Once()
	f.api.On("FetchRecipes", mock.Anything, true).Return([]types.Recipe{unlikedR1}, nil).Once()

	liked, err = f.coord.ToggleLike(context.Background(), "r1")
	require.NoError(t, err)
	assert.False(t, liked)

	got, _ := f.recipes.Get("r1")
	assert.False(t, got.Liked, "like then unlike lands back where it started")
	assert.Empty(t, f.profile.LikedRecipes())

	statsAfter, ok := f.profile.Stats()
	require.True(t, ok)
	assert.Equal(t, statsBefore.Likes, statsAfter.Likes)
	f.api.AssertExpectations(t)
}

func TestRateThenLikeSequence(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	rated := types.Recipe{ID: "r2", Title: "Eru", Region: "cameroon", VisibleOn: types.VisibleWelcome, Rating: 5}
	likedRated := rated
	likedRated.Liked = true

	f.api.On("SetRating", mock.Anything, "r2", 5).Return(5.0, nil).Once()
	f.api.On("FetchProfile", mock.Anything).Return(types.UserProfile{ID: "u1"}, nil).Once()
	f.api.On("FetchRecipes", mock.Anything, true).Return([]types.Recipe{rated}, nil).Once()

	confirmed, err := f.coord.SetRating(context.Background(), "r2", 5)
	require.NoError(t, err)
	assert.Equal(t, 5.0, confirmed)

	f.api.On("ToggleLike", mock.Anything, "r2").Return(types.LikeResult{Liked: true, Recipe: &likedRated}, nil).Once()
	f.api.On("FetchProfile", mock.Anything).Return(types.UserProfile{ID: "u1", LikedRecipes: []types.Recipe{likedRated}}, nil).Once()
	f.api.On("FetchRecipes", mock.Anything, true).Return([]types.Recipe{likedRated}, nil).Once()

	liked, err := f.coord.ToggleLike(context.Background(), "r2")
	require.NoError(t, err)
	assert.True(t, liked)

	got, _ := f.recipes.Get("r2")
	assert.True(t, got.Liked)
	assert.Equal(t, 5.0, got.Rating, "the rating survives the subsequent like")

	stats, ok := f.profile.Stats()
	require.True(t, ok)
	assert.Equal(t, 1, stats.Likes)
	f.api.AssertExpectations(t)
}

func TestAnonymousLikeInvisibleAfterLogin(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.ToggleLike(context.Background(), "r1")
	require.NoError(t, err)

	f.login(t)
	f.api.On("FetchRecipes", mock.Anything, true).Return([]types.Recipe{}, nil)
	_, err = f.recipes.FetchAll(context.Background(), true)
	require.NoError(t, err)

	got, _ := f.recipes.Get("r1")
	assert.False(t, got.Liked, "the account view must not inherit anonymous likes")
	assert.False(t, f.coord.IsLiked("r1"))
	assert.True(t, f.local.IsLiked("r1"), "the anonymous map itself stays intact for later")
}

func TestToggleLikeRepairsMissingProfile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sess.Establish("tok", types.UserProfile{ID: "u1"}))
	// Profile cache deliberately left empty: an authenticated viewer
	// without one is an inconsistency the toggle should repair.

	confirmed := types.Recipe{ID: "r1", Title: "Ndole", Region: "cameroon", VisibleOn: types.VisibleBoth, Liked: true, Rating: 3}
	f.api.On("ToggleLike", mock.Anything, "r1").Return(types.LikeResult{Liked: true, Recipe: &confirmed}, nil)
	f.api.On("FetchProfile", mock.Anything).Return(types.UserProfile{ID: "u1", LikedRecipes: []types.Recipe{confirmed}}, nil)
	f.api.On("FetchRecipes", mock.Anything, true).Return([]types.Recipe{confirmed}, nil)

	liked, err := f.coord.ToggleLike(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, liked)

	_, ok := f.profile.Current()
	assert.True(t, ok, "the missing profile is reloaded from the server")
	assert.Len(t, f.profile.LikedRecipes(), 1)
}

func TestToggleLikeFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	f.api.On("ToggleLike", mock.Anything, "r1").Return(types.LikeResult{}, errors.Unavailable("api down"))
	f.api.On("FetchProfile", mock.Anything).Return(types.UserProfile{ID: "u1"}, nil)

	liked, err := f.coord.ToggleLike(context.Background(), "r1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
	assert.False(t, liked, "returned state matches the pre-toggle value")

	got, _ := f.recipes.Get("r1")
	assert.False(t, got.Liked, "optimistic flip must be reverted")
}

func TestToggleLikeUnknownRecipeFailsFast(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	_, err := f.coord.ToggleLike(context.Background(), "ghost")
	assert.True(t, errors.Is(err, errors.ErrNotFoundInState))
	f.api.AssertNotCalled(t, "ToggleLike", mock.Anything, mock.Anything)
}

func TestToggleLikeBusyRecipeRejected(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.coord.begin("r1"))
	defer f.coord.end("r1")

	_, err := f.coord.ToggleLike(context.Background(), "r1")
	assert.True(t, errors.Is(err, errors.ErrBusy))

	// A different recipe is unaffected.
	liked, err := f.coord.ToggleLike(context.Background(), "r2")
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestSetRatingOutOfRange(t *testing.T) {
	f := newFixture(t)

	for _, bad := range []int{0, -1, 6} {
		_, err := f.coord.SetRating(context.Background(), "r1", bad)
		assert.True(t, errors.Is(err, errors.ErrValidation))
	}

	got, _ := f.recipes.Get("r1")
	assert.Equal(t, 3.0, got.Rating, "rejected ratings must not mutate state")
	f.api.AssertNotCalled(t, "SetRating", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetRatingAnonymousPersistsLocally(t *testing.T) {
	f := newFixture(t)

	confirmed, err := f.coord.SetRating(context.Background(), "r1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, confirmed)
	assert.Equal(t, 4, f.local.Rating("r1"))

	got, _ := f.recipes.Get("r1")
	assert.Equal(t, 4.0, got.Rating)
	f.api.AssertNotCalled(t, "SetRating", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetRatingServerEchoWins(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	// The server aggregates across raters, so the echo can differ from
	// the submitted value.
	f.api.On("SetRating", mock.Anything, "r1", 5).Return(4.5, nil)
	f.api.On("FetchProfile", mock.Anything).Return(types.UserProfile{ID: "u1"}, nil)
	f.api.On("FetchRecipes", mock.Anything, true).Return([]types.Recipe{}, nil)

	confirmed, err := f.coord.SetRating(context.Background(), "r1", 5)
	require.NoError(t, err)
	assert.Equal(t, 4.5, confirmed)

	got, _ := f.recipes.Get("r1")
	assert.Equal(t, 4.5, got.Rating)
}

func TestSetRatingConfirmedRefreshes(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	f.api.On("SetRating", mock.Anything, "r1", 4).Return(4.0, nil)
	f.api.On("FetchProfile", mock.Anything).Return(types.UserProfile{ID: "u1"}, nil)
	f.api.On("FetchRecipes", mock.Anything, true).Return([]types.Recipe{}, nil)

	confirmed, err := f.coord.SetRating(context.Background(), "r1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, confirmed)

	// A confirmed rating reloads the same server state a confirmed like
	// does.
	f.api.AssertCalled(t, "FetchProfile", mock.Anything)
	f.api.AssertCalled(t, "FetchRecipes", mock.Anything, true)

	got, _ := f.recipes.Get("r1")
	assert.Equal(t, 4.0, got.Rating)
}

func TestSetRatingFailureReverts(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	f.api.On("SetRating", mock.Anything, "r1", 5).Return(0.0, errors.Unavailable("api down"))

	_, err := f.coord.SetRating(context.Background(), "r1", 5)
	require.Error(t, err)

	got, _ := f.recipes.Get("r1")
	assert.Equal(t, 3.0, got.Rating, "rating rolls back to the pre-request value")
}

func TestDeleteRequiresAuth(t *testing.T) {
	f := newFixture(t)
	err := f.coord.Delete(context.Background(), "r1", TabCollection)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestDeleteConfirmedPurgesEverywhere(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	f.api.On("DeleteRecipe", mock.Anything, "r1").Return(nil)

	require.NoError(t, f.coord.Delete(context.Background(), "r1", TabCollection))
	_, ok := f.recipes.Get("r1")
	assert.False(t, ok)
}

func TestDeleteFailureRefetches(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	f.api.On("DeleteRecipe", mock.Anything, "own1").Return(errors.Forbidden("not yours"))
	f.api.On("FetchProfile", mock.Anything).Return(types.UserProfile{
		ID:      "u1",
		Recipes: []types.Recipe{{ID: "own1", Title: "My Dish", UserID: "u1"}},
	}, nil)
	f.api.On("FetchRecipes", mock.Anything, true).Return([]types.Recipe{}, nil)

	err := f.coord.Delete(context.Background(), "own1", TabProfile)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	// The refetched profile brings the optimistically removed recipe
	// back.
	assert.Len(t, f.profile.OwnedRecipes(), 1)
	f.api.AssertExpectations(t)
}

func TestPublishValidatesBeforeNetwork(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	_, err := f.coord.Publish(context.Background(), types.PublishRequest{Title: "No Fields"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	var derr *errors.Error
	require.True(t, errors.As(err, &derr))
	details, ok := derr.Details.(map[string][]string)
	require.True(t, ok)
	assert.Contains(t, details, "ingredients")

	f.api.AssertNotCalled(t, "CreateRecipe", mock.Anything, mock.Anything)
}

func TestPublishAppendsToBothStores(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	req := types.PublishRequest{
		Title:       "Chakalaka",
		Description: "Spicy relish",
		Ingredients: []string{"beans", "peppers"},
		Steps:       []string{"fry", "simmer"},
		CategoryID:  "17",
		RegionID:    "south-africa",
		MinPrice:    "500",
		CookTime:    "30 min",
		PrepTime:    "10 min",
		VisibleOn:   types.VisibleBoth,
	}
	created := types.Recipe{ID: "new1", Title: "Chakalaka", UserID: "u1", VisibleOn: types.VisibleBoth}
	f.api.On("CreateRecipe", mock.Anything, req).Return(created, nil)

	got, err := f.coord.Publish(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "new1", got.ID)

	_, ok := f.recipes.Get("new1")
	assert.True(t, ok)

	stats, _ := f.profile.Stats()
	assert.Equal(t, 2, stats.Recipes)
}

func TestAnonymousStateIsolatedFromAccount(t *testing.T) {
	f := newFixture(t)

	// Anonymous viewer likes a recipe.
	_, err := f.coord.ToggleLike(context.Background(), "r1")
	require.NoError(t, err)
	require.NoError(t, f.local.SetRating("r2", 5))

	// Logging in abandons the anonymous maps without merging them.
	f.login(t)
	assert.Empty(t, f.profile.LikedRecipes())

	// Logging out brings them back into effect.
	require.NoError(t, f.sess.Invalidate())
	f.profile.Clear()
	assert.True(t, f.coord.IsLiked("r1"))
	assert.Equal(t, 5, f.coord.Rating("r2"))
}
