// Package client is the typed HTTP client for the recipe API. Every
// response body flows through the dto decoders so shape tolerance is
// not re-implemented per call site.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/reciperealm/reciperealm-v2/client/internal/dto"
	"github.com/reciperealm/reciperealm-v2/client/internal/errors"
	"github.com/reciperealm/reciperealm-v2/client/internal/types"
)

// TokenProvider supplies the bearer token and reacts to its rejection.
// A 401 from the server invalidates the local session; the current view
// keeps rendering from whatever state it already has.
type TokenProvider interface {
	Token() string
	ViewerID() string
	Invalidate() error
}

// Client talks to the remote recipe store.
type Client struct {
	baseURL string
	http    *http.Client
	session TokenProvider
	logger  *slog.Logger
}

// New creates a client for the API at baseURL.
func New(baseURL string, session TokenProvider, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: session,
		logger:  logger,
	}
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) opts() dto.Options {
	return dto.Options{BaseURL: c.baseURL, ViewerID: c.session.ViewerID()}
}

// do issues a request and maps failure statuses onto domain errors.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, auth bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Internal("bad request").WithCause(err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth {
		token := c.session.Token()
		if token == "" {
			return nil, errors.Unauthorized("no authentication token, please log in")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Unavailable("request failed").WithCause(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Unavailable("reading response failed").WithCause(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}
	return nil, c.statusError(resp.StatusCode, data, auth)
}

func (c *Client) statusError(status int, body []byte, auth bool) error {
	var payload struct {
		Message string              `json:"message"`
		Error   string              `json:"error"`
		Errors  map[string][]string `json:"errors"`
	}
	_ = json.Unmarshal(body, &payload)
	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch status {
	case http.StatusUnauthorized:
		if auth {
			// The token the server just rejected is useless; drop the
			// persisted session so the next action starts clean.
			if err := c.session.Invalidate(); err != nil {
				c.logger.Warn("session invalidation failed", "error", err)
			}
		}
		return errors.Unauthorized(msg)
	case http.StatusForbidden:
		return errors.Forbidden(msg)
	case http.StatusNotFound:
		return errors.NotFound(msg)
	case http.StatusUnprocessableEntity:
		e := errors.Validation(msg)
		if len(payload.Errors) > 0 {
			e = e.WithDetails(payload.Errors)
		}
		return e
	default:
		return errors.Unavailable(fmt.Sprintf("%s (status %d)", msg, status))
	}
}

// recipesEnvelope tolerates both a bare array and the wrapped
// {message, recipes} list shape.
type recipesEnvelope struct {
	Recipes []dto.RecipeDTO
}

func (e *recipesEnvelope) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &e.Recipes)
	}
	var wrapped struct {
		Recipes []dto.RecipeDTO `json:"recipes"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	e.Recipes = wrapped.Recipes
	return nil
}

// FetchRecipes lists the recipes visible to the viewer. Unauthenticated
// fetches ask for the public feed and send no token.
func (c *Client) FetchRecipes(ctx context.Context, authenticated bool) ([]types.Recipe, error) {
	path := "/recipes"
	if !authenticated {
		path = "/recipes?public=true"
	}
	data, err := c.do(ctx, http.MethodGet, path, nil, "", authenticated)
	if err != nil {
		return nil, err
	}

	var env recipesEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Validation("malformed recipe list").WithCause(err)
	}
	return dto.DecodeRecipes(env.Recipes, c.opts())
}

// FetchUserRecipes lists the recipes owned by a specific user.
func (c *Client) FetchUserRecipes(ctx context.Context, userID string) ([]types.Recipe, error) {
	data, err := c.do(ctx, http.MethodGet, "/users/"+userID+"/recipes", nil, "", true)
	if err != nil {
		return nil, err
	}
	var env recipesEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Validation("malformed recipe list").WithCause(err)
	}
	return dto.DecodeRecipes(env.Recipes, c.opts())
}

// FetchProfile fetches the authenticated user's profile with embedded
// owned and liked recipe lists.
func (c *Client) FetchProfile(ctx context.Context) (types.UserProfile, error) {
	data, err := c.do(ctx, http.MethodGet, "/profile", nil, "", true)
	if err != nil {
		return types.UserProfile{}, err
	}
	return decodeProfileBody(data, c.opts())
}

// Me revalidates the persisted session against the server.
func (c *Client) Me(ctx context.Context) (types.UserProfile, error) {
	data, err := c.do(ctx, http.MethodGet, "/me", nil, "", true)
	if err != nil {
		return types.UserProfile{}, err
	}
	return decodeProfileBody(data, c.opts())
}

// ToggleLike flips the viewer's like on a recipe. The server answers
// with the authoritative liked flag and, usually, the recipe
// projection.
func (c *Client) ToggleLike(ctx context.Context, id string) (types.LikeResult, error) {
	data, err := c.do(ctx, http.MethodPost, "/recipes/"+id+"/like", strings.NewReader("{}"), "application/json", true)
	if err != nil {
		return types.LikeResult{}, err
	}

	var resp struct {
		Liked  *bool           `json:"liked"`
		Recipe json.RawMessage `json:"recipe"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return types.LikeResult{}, errors.Validation("malformed like response").WithCause(err)
	}
	if resp.Liked == nil {
		return types.LikeResult{}, errors.Validation("like response missing liked flag")
	}

	result := types.LikeResult{Liked: *resp.Liked}
	if len(resp.Recipe) > 0 && string(resp.Recipe) != "null" {
		recipe, err := dto.DecodeRecipe(resp.Recipe, c.opts())
		if err != nil {
			return types.LikeResult{}, err
		}
		recipe.Liked = *resp.Liked
		result.Recipe = &recipe
	}
	return result, nil
}

// SetRating submits a rating and returns the server-confirmed value,
// which may differ from the submitted one.
func (c *Client) SetRating(ctx context.Context, id string, rating int) (float64, error) {
	body, _ := json.Marshal(map[string]int{"rating": rating})
	data, err := c.do(ctx, http.MethodPost, "/recipes/"+id+"/rate", bytes.NewReader(body), "application/json", true)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Rating any `json:"rating"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, errors.Validation("malformed rating response").WithCause(err)
	}
	confirmed, ok := dto.ParseRating(resp.Rating)
	if !ok {
		// Some deployments ack without echoing; fall back to the
		// submitted value.
		return float64(rating), nil
	}
	return confirmed, nil
}

// CreateRecipe publishes a recipe via a multipart form, mirroring the
// browser upload path.
func (c *Client) CreateRecipe(ctx context.Context, req types.PublishRequest) (types.Recipe, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	ingredients, _ := json.Marshal(req.Ingredients)
	steps, _ := json.Marshal(req.Steps)
	fields := map[string]string{
		"title":       req.Title,
		"description": req.Description,
		"ingredients": string(ingredients),
		"steps":       string(steps),
		"category_id": req.CategoryID,
		"region_id":   req.RegionID,
		"min_price":   req.MinPrice,
		"cook_time":   req.CookTime,
		"prep_time":   req.PrepTime,
		"visible_on":  string(req.VisibleOn),
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return types.Recipe{}, errors.Internal("building form failed").WithCause(err)
		}
	}
	if len(req.Image) > 0 {
		part, err := w.CreateFormFile("image_path", req.ImageName)
		if err != nil {
			return types.Recipe{}, errors.Internal("building form failed").WithCause(err)
		}
		if _, err := part.Write(req.Image); err != nil {
			return types.Recipe{}, errors.Internal("building form failed").WithCause(err)
		}
	}
	if err := w.Close(); err != nil {
		return types.Recipe{}, errors.Internal("building form failed").WithCause(err)
	}

	data, err := c.do(ctx, http.MethodPost, "/recipes", &buf, w.FormDataContentType(), true)
	if err != nil {
		return types.Recipe{}, err
	}

	var resp struct {
		Recipe json.RawMessage `json:"recipe"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return types.Recipe{}, errors.Validation("malformed create response").WithCause(err)
	}
	if len(resp.Recipe) == 0 || string(resp.Recipe) == "null" {
		return types.Recipe{}, errors.Validation("create response missing recipe")
	}
	return dto.DecodeRecipe(resp.Recipe, c.opts())
}

// DeleteRecipe removes a recipe the viewer owns.
func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/recipes/"+id, nil, "", true)
	return err
}

type authResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// Login exchanges credentials for a bearer token and the user profile.
func (c *Client) Login(ctx context.Context, creds types.Credentials) (string, types.UserProfile, error) {
	return c.authRequest(ctx, "/login", creds)
}

// Register creates an account and returns a fresh session.
func (c *Client) Register(ctx context.Context, reg types.Registration) (string, types.UserProfile, error) {
	return c.authRequest(ctx, "/register", reg)
}

func (c *Client) authRequest(ctx context.Context, path string, payload any) (string, types.UserProfile, error) {
	body, _ := json.Marshal(payload)
	data, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json", false)
	if err != nil {
		return "", types.UserProfile{}, err
	}

	var resp authResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", types.UserProfile{}, errors.Validation("malformed auth response").WithCause(err)
	}
	if resp.Token == "" {
		return "", types.UserProfile{}, errors.Validation("auth response missing token")
	}

	var profile types.UserProfile
	if len(resp.User) > 0 && string(resp.User) != "null" {
		profile, err = dto.DecodeProfile(resp.User, dto.Options{BaseURL: c.baseURL})
		if err != nil {
			return "", types.UserProfile{}, err
		}
	}
	return resp.Token, profile, nil
}

// Logout revokes the token server-side. The caller is responsible for
// invalidating the local session regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/logout", nil, "", true)
	return err
}

func decodeProfileBody(data []byte, opts dto.Options) (types.UserProfile, error) {
	// The profile may arrive bare or wrapped in a data envelope.
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Data) > 0 && string(wrapped.Data) != "null" {
		data = wrapped.Data
	}
	return dto.DecodeProfile(data, opts)
}
