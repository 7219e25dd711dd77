// Package dto decodes the wire shapes of the recipe API into typed
// client projections.
//
// The API is loose about shapes: ingredients and steps may arrive as a
// JSON array or as a JSON-encoded string holding one, ids and prices may
// be numbers or strings, and category/region may be a raw id or a nested
// object carrying a name. All call sites (list fetch, like, rating,
// publish, profile) decode through this package so the tolerance lives
// in exactly one place.
package dto

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/reciperealm/reciperealm-v2/client/internal/errors"
	"github.com/reciperealm/reciperealm-v2/client/internal/types"
)

// DefaultImage is used when a recipe carries no image reference.
const DefaultImage = "/default-recipe.png"

// FlexString accepts a JSON string or number and yields a string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// StringList accepts a JSON array of strings or a JSON-encoded string
// containing one.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var arr []string
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		*l = arr
		return nil
	}
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}
	if strings.TrimSpace(encoded) == "" {
		*l = []string{}
		return nil
	}
	var arr []string
	if err := json.Unmarshal([]byte(encoded), &arr); err != nil {
		return err
	}
	*l = arr
	return nil
}

// NameOrID accepts a nested object carrying a name, a raw id, or a
// plain string.
type NameOrID string

// UnmarshalJSON implements json.Unmarshaler.
func (n *NameOrID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*n = ""
		return nil
	}
	if data[0] == '{' {
		var obj struct {
			Name string      `json:"name"`
			ID   json.Number `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.Name != "" {
			*n = NameOrID(obj.Name)
		} else {
			*n = NameOrID(obj.ID.String())
		}
		return nil
	}
	var f FlexString
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	*n = NameOrID(f)
	return nil
}

// RecipeDTO is the wire shape of a recipe as the server sends it.
type RecipeDTO struct {
	ID          FlexString `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Ingredients StringList `json:"ingredients"`
	Steps       StringList `json:"steps"`
	Category    NameOrID   `json:"category"`
	CategoryID  FlexString `json:"category_id"`
	Region      NameOrID   `json:"region"`
	RegionID    FlexString `json:"region_id"`
	MinPrice    FlexString `json:"min_price"`
	CookTime    string     `json:"cook_time"`
	PrepTime    string     `json:"prep_time"`
	Image       string     `json:"image"`
	ImagePath   string     `json:"image_path"`
	UserID      FlexString `json:"user_id"`
	VisibleOn   string     `json:"visible_on"`
	CreatedAt   string     `json:"created_at"`
	Rating      float64    `json:"rating"`
	Liked       *bool      `json:"liked"`
	Ratings     []struct {
		Rating float64    `json:"rating"`
		Score  float64    `json:"score"`
		UserID FlexString `json:"user_id"`
	} `json:"ratings"`
	FavoritedBy []struct {
		ID     FlexString `json:"id"`
		UserID FlexString `json:"user_id"`
	} `json:"favoritedBy"`
	Reviews []struct {
		Reviewer string `json:"reviewer"`
		Rating   int    `json:"rating"`
	} `json:"reviews"`
}

// Options adjust decoding to the viewer.
type Options struct {
	// BaseURL is prepended to relative image paths.
	BaseURL string
	// ViewerID, when set, derives Liked from the favoritedBy list.
	ViewerID string
}

// Recipe converts the wire shape into a client projection.
func (d *RecipeDTO) Recipe(opts Options) (types.Recipe, error) {
	if d.ID == "" {
		return types.Recipe{}, errors.Validation("recipe payload has no id")
	}

	r := types.Recipe{
		ID:          string(d.ID),
		Title:       d.Title,
		Description: d.Description,
		Ingredients: d.Ingredients,
		Steps:       d.Steps,
		MinPrice:    string(d.MinPrice),
		CookTime:    d.CookTime,
		PrepTime:    d.PrepTime,
		UserID:      string(d.UserID),
		Image:       ResolveImage(firstNonEmpty(d.Image, d.ImagePath), opts.BaseURL),
	}
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Steps == nil {
		r.Steps = []string{}
	}
	if r.MinPrice == "" {
		r.MinPrice = "0"
	}

	r.Category = firstNonEmpty(string(d.Category), string(d.CategoryID))
	r.Region = firstNonEmpty(string(d.Region), string(d.RegionID), "unknown")

	r.VisibleOn = types.VisibleOn(d.VisibleOn)
	if !r.VisibleOn.Valid() {
		r.VisibleOn = types.VisibleBoth
	}

	if d.CreatedAt != "" {
		ts, err := time.Parse(time.RFC3339, d.CreatedAt)
		if err != nil {
			return types.Recipe{}, errors.Validationf("recipe %s: bad created_at %q", r.ID, d.CreatedAt)
		}
		r.CreatedAt = ts
	}

	// Prefer the per-rating list over the server scalar, which may be
	// stale.
	if len(d.Ratings) > 0 {
		var sum float64
		for _, e := range d.Ratings {
			if e.Rating != 0 {
				sum += e.Rating
			} else {
				sum += e.Score
			}
		}
		r.Rating = sum / float64(len(d.Ratings))
	} else {
		r.Rating = d.Rating
	}

	switch {
	case opts.ViewerID != "" && d.FavoritedBy != nil:
		for _, f := range d.FavoritedBy {
			if string(f.UserID) == opts.ViewerID || string(f.ID) == opts.ViewerID {
				r.Liked = true
				break
			}
		}
	case d.Liked != nil:
		r.Liked = *d.Liked
	}

	for _, rev := range d.Reviews {
		r.Reviews = append(r.Reviews, types.Review{Reviewer: rev.Reviewer, Rating: rev.Rating})
	}

	return r, nil
}

// DecodeRecipe decodes a single raw recipe payload.
func DecodeRecipe(data []byte, opts Options) (types.Recipe, error) {
	var d RecipeDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return types.Recipe{}, errors.Validation("malformed recipe payload").WithCause(err)
	}
	return d.Recipe(opts)
}

// DecodeRecipes decodes a list of wire recipes, failing on the first
// malformed entry.
func DecodeRecipes(dtos []RecipeDTO, opts Options) ([]types.Recipe, error) {
	out := make([]types.Recipe, 0, len(dtos))
	for i := range dtos {
		r, err := dtos[i].Recipe(opts)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// UserDTO is the wire shape of the profile resource.
type UserDTO struct {
	ID           FlexString  `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Bio          string      `json:"bio"`
	Location     string      `json:"location"`
	ProfileImage string      `json:"profileImage"`
	JoinDate     string      `json:"joinDate"`
	Stats        *statsDTO   `json:"stats"`
	Recipes      []RecipeDTO `json:"recipes"`
	LikedRecipes []RecipeDTO `json:"likedRecipes"`
}

type statsDTO struct {
	Recipes   json.Number `json:"recipes"`
	Likes     json.Number `json:"likes"`
	AvgRating json.Number `json:"avgRating"`
}

// Profile converts the wire user into a typed profile. Stats are
// recomputed from the embedded arrays; the server-supplied scalars are
// ignored because they may lag the arrays.
func (d *UserDTO) Profile(opts Options) (types.UserProfile, error) {
	if d.ID == "" {
		return types.UserProfile{}, errors.Validation("user payload has no id")
	}
	if opts.ViewerID == "" {
		opts.ViewerID = string(d.ID)
	}

	owned, err := DecodeRecipes(d.Recipes, opts)
	if err != nil {
		return types.UserProfile{}, err
	}
	liked, err := DecodeRecipes(d.LikedRecipes, opts)
	if err != nil {
		return types.UserProfile{}, err
	}
	for i := range liked {
		liked[i].Liked = true
	}

	p := types.UserProfile{
		ID:           string(d.ID),
		Name:         d.Name,
		Email:        d.Email,
		Bio:          d.Bio,
		Location:     d.Location,
		ProfileImage: d.ProfileImage,
		JoinDate:     d.JoinDate,
		Recipes:      owned,
		LikedRecipes: liked,
	}
	p.RecomputeStats()
	return p, nil
}

// DecodeProfile decodes a raw profile payload.
func DecodeProfile(data []byte, opts Options) (types.UserProfile, error) {
	var d UserDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return types.UserProfile{}, errors.Validation("malformed user payload").WithCause(err)
	}
	return d.Profile(opts)
}

// ResolveImage turns a server image reference into something the UI can
// load directly. Absolute URLs and rooted paths pass through, relative
// storage paths get the backend prefix, empty means the default image.
func ResolveImage(ref, baseURL string) string {
	switch {
	case ref == "":
		return DefaultImage
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "/"):
		return ref
	default:
		return strings.TrimSuffix(baseURL, "/") + "/storage/" + ref
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ParseRating parses a rating that may arrive as number or string.
func ParseRating(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
