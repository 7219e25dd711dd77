package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reciperealm/reciperealm-v2/client/internal/errors"
	"github.com/reciperealm/reciperealm-v2/client/internal/logger"
	"github.com/reciperealm/reciperealm-v2/client/internal/types"
)

type fakeSession struct {
	token       string
	viewerID    string
	invalidated bool
}

func (s *fakeSession) Token() string    { return s.token }
func (s *fakeSession) ViewerID() string { return s.viewerID }
func (s *fakeSession) Invalidate() error {
	s.invalidated = true
	s.token = ""
	return nil
}

func newTestClient(handler http.Handler, sess *fakeSession) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return New(srv.URL, sess, logger.Discard()), srv
}

func TestFetchRecipesWrappedEnvelope(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("public"))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"message":"ok","recipes":[{"id":"1","title":"Ndole"}]}`))
	})
	c, srv := newTestClient(handler, &fakeSession{})
	defer srv.Close()

	got, err := c.FetchRecipes(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ndole", got[0].Title)
}

func TestFetchRecipesBareArray(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":"1","title":"Eru"}]`))
	})
	c, srv := newTestClient(handler, &fakeSession{token: "tok"})
	defer srv.Close()

	got, err := c.FetchRecipes(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Eru", got[0].Title)
}

func TestUnauthorizedResponseInvalidatesSession(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthenticated."}`))
	})
	sess := &fakeSession{token: "expired"}
	c, srv := newTestClient(handler, sess)
	defer srv.Close()

	_, err := c.FetchProfile(context.Background())
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
	assert.True(t, sess.invalidated, "a rejected token must invalidate the session")
}

func TestValidationErrorCarriesFieldMap(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"The given data was invalid.","errors":{"title":["The title field is required."]}}`))
	})
	c, srv := newTestClient(handler, &fakeSession{token: "tok"})
	defer srv.Close()

	_, err := c.CreateRecipe(context.Background(), types.PublishRequest{})
	require.Error(t, err)

	var derr *errors.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, errors.CodeValidation, derr.Code)
	details, ok := derr.Details.(map[string][]string)
	require.True(t, ok)
	assert.Contains(t, details, "title")
}

func TestToggleLikeParsesResult(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/r1/like", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"liked":true,"recipe":{"id":"r1","title":"Ndole","liked":false}}`))
	})
	c, srv := newTestClient(handler, &fakeSession{token: "tok"})
	defer srv.Close()

	res, err := c.ToggleLike(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, res.Liked)
	require.NotNil(t, res.Recipe)
	assert.True(t, res.Recipe.Liked, "the liked flag overrides the embedded recipe's flag")
}

func TestSetRatingStringEcho(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rating":"4"}`))
	})
	c, srv := newTestClient(handler, &fakeSession{token: "tok"})
	defer srv.Close()

	got, err := c.SetRating(context.Background(), "r1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)
}

func TestSetRatingMissingEchoFallsBack(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	})
	c, srv := newTestClient(handler, &fakeSession{token: "tok"})
	defer srv.Close()

	got, err := c.SetRating(context.Background(), "r1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)
}

func TestAuthRequestWithoutToken(t *testing.T) {
	c := New("http://unreachable.invalid", &fakeSession{}, logger.Discard())
	_, err := c.FetchProfile(context.Background())
	assert.True(t, errors.Is(err, errors.ErrUnauthorized), "no token must fail before any network call")
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	c := New("http://127.0.0.1:1", &fakeSession{token: "tok"}, logger.Discard())
	_, err := c.FetchProfile(context.Background())
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}

func TestLoginReturnsTokenAndProfile(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login", r.URL.Path)
		w.Write([]byte(`{"token":"tok","user":{"id":"u1","name":"Ada"}}`))
	})
	c, srv := newTestClient(handler, &fakeSession{})
	defer srv.Close()

	token, profile, err := c.Login(context.Background(), types.Credentials{Email: "a@b.c", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "Ada", profile.Name)
}
