// Package coordinator drives recipe interactions: it applies optimistic
// updates to the in-memory stores, talks to the API, and reconciles or
// rolls back based on the outcome.
package coordinator

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/reciperealm/reciperealm-v2/client/internal/errors"
	"github.com/reciperealm/reciperealm-v2/client/internal/localdata"
	"github.com/reciperealm/reciperealm-v2/client/internal/session"
	"github.com/reciperealm/reciperealm-v2/client/internal/store"
	"github.com/reciperealm/reciperealm-v2/client/internal/types"
)

// API is the remote surface the coordinator needs. internal/client
// implements it; tests substitute a mock.
type API interface {
	store.RecipeFetcher
	store.ProfileFetcher
	ToggleLike(ctx context.Context, id string) (types.LikeResult, error)
	SetRating(ctx context.Context, id string, rating int) (float64, error)
	CreateRecipe(ctx context.Context, req types.PublishRequest) (types.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error
}

// Tab identifies which view a delete was issued from, which decides
// where the optimistic removal happens.
type Tab string

const (
	TabCollection Tab = "collection"
	TabProfile    Tab = "profile"
)

// Coordinator sequences interactions against the stores and the API.
// Each recipe admits at most one outstanding request at a time; a
// second request for the same id is rejected with a busy error instead
// of racing the first.
type Coordinator struct {
	api      API
	recipes  *store.RecipeStore
	profile  *store.ProfileStore
	local    *localdata.Store
	session  *session.Session
	validate *validator.Validate
	logger   *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New wires a coordinator over the given stores. The collection is
// subscribed to identity changes so one viewer's likes and ratings
// never carry over into another viewer's list.
func New(api API, recipes *store.RecipeStore, profile *store.ProfileStore, local *localdata.Store, sess *session.Session, logger *slog.Logger) *Coordinator {
	sess.OnIdentityChange(recipes.SetViewer)
	recipes.SetViewer(sess.ViewerID())
	return &Coordinator{
		api:      api,
		recipes:  recipes,
		profile:  profile,
		local:    local,
		session:  sess,
		validate: validator.New(),
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// begin marks id as having an outstanding request.
func (c *Coordinator) begin(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[id]; busy {
		return errors.Busy("another request for recipe " + id + " is in flight")
	}
	c.inFlight[id] = struct{}{}
	return nil
}

func (c *Coordinator) end(id string) {
	c.mu.Lock()
	delete(c.inFlight, id)
	c.mu.Unlock()
}

// lookup finds the recipe in local state, checking the collection
// first, then the profile's liked and owned lists.
func (c *Coordinator) lookup(id string) (types.Recipe, bool) {
	if r, ok := c.recipes.Get(id); ok {
		return r, true
	}
	for _, r := range c.profile.LikedRecipes() {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	for _, r := range c.profile.OwnedRecipes() {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return types.Recipe{}, false
}

// ToggleLike flips the viewer's like on a recipe. Authenticated toggles
// update the stores optimistically, confirm with the server, and roll
// back on failure; anonymous toggles live entirely in the local cache.
func (c *Coordinator) ToggleLike(ctx context.Context, id string) (bool, error) {
	if err := c.begin(id); err != nil {
		return false, err
	}
	defer c.end(id)

	current, ok := c.lookup(id)
	if !ok {
		return false, errors.NotFoundInState("recipe " + id + " is not in local state")
	}

	if !c.session.Authenticated() {
		liked, err := c.local.ToggleLiked(id)
		if err != nil {
			return false, err
		}
		c.recipes.ApplyLike(id, liked)
		return liked, nil
	}

	target := !current.Liked
	likedBefore := c.profile.LikedRecipes()

	// Optimistic flip in both the collection and the profile's liked
	// list, so every view agrees while the request is out.
	c.recipes.ApplyLike(id, target)
	if target {
		entry := current.Clone()
		entry.Liked = true
		if err := c.profile.SetLikedRecipes(append(c.profile.LikedRecipes(), entry)); err != nil {
			// An authenticated viewer without a cached profile is an
			// inconsistency; repair it from the server rather than
			// carrying on with a half-updated view.
			c.logger.Warn("authenticated toggle without cached profile", "recipe_id", id)
			if _, lerr := c.profile.Load(ctx); lerr != nil {
				c.logger.Warn("profile repair failed", "recipe_id", id, "error", lerr)
			}
		}
	} else {
		c.profile.RemoveLikedRecipe(id)
	}

	result, err := c.api.ToggleLike(ctx, id)
	if err != nil {
		c.rollbackLike(ctx, id, current, likedBefore)
		return current.Liked, err
	}

	// The server's answer is authoritative, even when it disagrees with
	// the optimistic flip.
	if result.Recipe != nil {
		c.recipes.Replace(*result.Recipe)
	} else {
		c.recipes.ApplyLike(id, result.Liked)
	}
	c.reconcile(ctx, id)
	return result.Liked, nil
}

// rollbackLike restores pre-toggle state and refreshes the profile so
// the liked list matches the server again.
func (c *Coordinator) rollbackLike(ctx context.Context, id string, before types.Recipe, likedBefore []types.Recipe) {
	c.recipes.Replace(before)
	if err := c.profile.SetLikedRecipes(likedBefore); err != nil {
		c.logger.Warn("no cached profile during like rollback", "recipe_id", id)
	}
	if _, err := c.profile.Load(ctx); err != nil {
		c.logger.Warn("profile refresh after failed like", "recipe_id", id, "error", err)
	}
}

// reconcile pulls fresh server state after a confirmed interaction so
// derived data (stats, liked lists, aggregate ratings) catches up.
func (c *Coordinator) reconcile(ctx context.Context, id string) {
	if _, err := c.profile.Load(ctx); err != nil {
		c.logger.Warn("profile refresh after interaction", "recipe_id", id, "error", err)
	}
	if _, err := c.recipes.FetchAll(ctx, true); err != nil {
		c.logger.Warn("collection refresh after interaction", "recipe_id", id, "error", err)
	}
}

// SetRating records a 1-5 star rating. The server echo is authoritative
// for authenticated users; anonymous ratings persist locally only.
func (c *Coordinator) SetRating(ctx context.Context, id string, rating int) (float64, error) {
	if rating < 1 || rating > 5 {
		return 0, errors.Validationf("rating %d out of range 1-5", rating)
	}
	if err := c.begin(id); err != nil {
		return 0, err
	}
	defer c.end(id)

	current, ok := c.lookup(id)
	if !ok {
		return 0, errors.NotFoundInState("recipe " + id + " is not in local state")
	}

	if !c.session.Authenticated() {
		if err := c.local.SetRating(id, rating); err != nil {
			return 0, err
		}
		c.recipes.ApplyRating(id, float64(rating))
		return float64(rating), nil
	}

	c.recipes.ApplyRating(id, float64(rating))
	c.profile.ApplyRating(id, float64(rating))

	confirmed, err := c.api.SetRating(ctx, id, rating)
	if err != nil {
		c.recipes.ApplyRating(id, current.Rating)
		c.profile.ApplyRating(id, current.Rating)
		return 0, err
	}
	if confirmed != float64(rating) {
		c.recipes.ApplyRating(id, confirmed)
		c.profile.ApplyRating(id, confirmed)
	}
	c.reconcile(ctx, id)
	return confirmed, nil
}

// Delete removes a recipe the viewer owns. The removal is optimistic in
// the view it was issued from; on failure both the profile and the
// collection are refetched since partial rollback of a delete is not
// worth reasoning about.
func (c *Coordinator) Delete(ctx context.Context, id string, from Tab) error {
	if !c.session.Authenticated() {
		return errors.Unauthorized("log in to delete recipes")
	}
	if err := c.begin(id); err != nil {
		return err
	}
	defer c.end(id)

	if _, ok := c.lookup(id); !ok {
		return errors.NotFoundInState("recipe " + id + " is not in local state")
	}

	switch from {
	case TabProfile:
		c.profile.RemoveOwnedRecipe(id)
		c.profile.RemoveLikedRecipe(id)
	default:
		c.recipes.Remove(id)
	}

	if err := c.api.DeleteRecipe(ctx, id); err != nil {
		if _, lerr := c.profile.Load(ctx); lerr != nil {
			c.logger.Warn("profile refresh after failed delete", "recipe_id", id, "error", lerr)
		}
		if _, ferr := c.recipes.FetchAll(ctx, true); ferr != nil {
			c.logger.Warn("collection refresh after failed delete", "recipe_id", id, "error", ferr)
		}
		return err
	}

	// Confirmed: purge the remaining views too.
	c.recipes.Remove(id)
	c.profile.RemoveOwnedRecipe(id)
	c.profile.RemoveLikedRecipe(id)
	return nil
}

// Publish validates and creates a recipe, then threads it into the
// collection and the owner's profile.
func (c *Coordinator) Publish(ctx context.Context, req types.PublishRequest) (types.Recipe, error) {
	if !c.session.Authenticated() {
		return types.Recipe{}, errors.Unauthorized("log in to publish recipes")
	}
	if err := c.validate.Struct(req); err != nil {
		return types.Recipe{}, validationDetails(err)
	}

	created, err := c.api.CreateRecipe(ctx, req)
	if err != nil {
		return types.Recipe{}, err
	}

	c.recipes.Add(created)
	if err := c.profile.AddOwnedRecipe(created); err != nil {
		c.logger.Debug("no cached profile for published recipe", "recipe_id", created.ID)
	}
	return created, nil
}

// Refresh reloads the collection and, when authenticated, the profile.
func (c *Coordinator) Refresh(ctx context.Context) error {
	authed := c.session.Authenticated()
	if _, err := c.recipes.FetchAll(ctx, authed); err != nil {
		return err
	}
	if authed {
		if _, err := c.profile.Load(ctx); err != nil {
			return err
		}
	}
	return nil
}

// IsLiked reports the viewer's like state for a recipe, consulting the
// anonymous cache when there is no session.
func (c *Coordinator) IsLiked(id string) bool {
	if !c.session.Authenticated() {
		return c.local.IsLiked(id)
	}
	if r, ok := c.lookup(id); ok {
		return r.Liked
	}
	return false
}

// Rating returns the viewer's locally recorded rating for a recipe, or
// zero if none. Only meaningful for anonymous viewers; the server owns
// authenticated ratings.
func (c *Coordinator) Rating(id string) int {
	return c.local.Rating(id)
}

// validationDetails converts validator output into a domain error with
// a per-field details map, shaped like the server's 422 responses.
func validationDetails(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Validation("invalid recipe").WithCause(err)
	}
	details := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		details[field] = append(details[field], "failed "+fe.Tag()+" validation")
	}
	return errors.Validation("invalid recipe").WithDetails(details)
}
