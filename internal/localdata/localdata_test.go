package localdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reciperealm/reciperealm-v2/client/internal/errors"
	"github.com/reciperealm/reciperealm-v2/client/internal/logger"
	"github.com/reciperealm/reciperealm-v2/client/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestToggleLikedRoundTrip(t *testing.T) {
	s := openTestStore(t)

	assert.False(t, s.IsLiked("r1"))

	liked, err := s.ToggleLiked("r1")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, s.IsLiked("r1"))

	liked, err = s.ToggleLiked("r1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.False(t, s.IsLiked("r1"), "double toggle leaves no trace")
}

func TestRatingBounds(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SetRating("r1", 4))
	assert.Equal(t, 4, s.Rating("r1"))

	err := s.SetRating("r1", 6)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Equal(t, 4, s.Rating("r1"), "rejected write must not clobber the stored value")

	err = s.SetRating("r1", 0)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestRatingUnsetIsZero(t *testing.T) {
	s := openTestStore(t)
	assert.Equal(t, 0, s.Rating("never-rated"))
}

func TestClearInteractionsLeavesSession(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ToggleLiked("r1")
	require.NoError(t, err)
	require.NoError(t, s.SetRating("r2", 3))
	require.NoError(t, s.SetToken("tok"))

	require.NoError(t, s.ClearInteractions())

	assert.False(t, s.IsLiked("r1"))
	assert.Equal(t, 0, s.Rating("r2"))
	assert.Equal(t, "tok", s.Token(), "clearing interactions must not touch the session")
}

func TestSessionRoundTrip(t *testing.T) {
	s := openTestStore(t)

	profile := types.UserProfile{ID: "u1", Name: "Ada"}
	require.NoError(t, s.SetToken("tok"))
	require.NoError(t, s.SetProfile(profile))

	got, ok := s.Profile()
	require.True(t, ok)
	assert.Equal(t, "Ada", got.Name)

	require.NoError(t, s.ClearSession())
	assert.Empty(t, s.Token())
	_, ok = s.Profile()
	assert.False(t, ok)
}

func TestClearSessionLeavesAnonymousState(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ToggleLiked("r1")
	require.NoError(t, err)
	require.NoError(t, s.SetToken("tok"))

	require.NoError(t, s.ClearSession())
	assert.True(t, s.IsLiked("r1"), "logout must not wipe anonymous likes")
}
