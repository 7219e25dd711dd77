package devserver

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecipeHandler struct {
	db        *gorm.DB
	auth      *AuthService
	uploadDir string
}

func NewRecipeHandler(db *gorm.DB, auth *AuthService, uploadDir string) *RecipeHandler {
	return &RecipeHandler{db: db, auth: auth, uploadDir: uploadDir}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.Engine, limiter *RateLimiter) {
	authed := AuthRequired(h.auth)
	write := []gin.HandlerFunc{authed}
	if limiter != nil {
		write = append(write, limiter.Middleware())
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", append(write, h.CreateRecipe)...)
		recipes.DELETE("/:id", append(write, h.DeleteRecipe)...)
		recipes.POST("/:id/like", append(write, h.ToggleLike)...)
		recipes.POST("/:id/rate", append(write, h.RateRecipe)...)
	}
	router.GET("/users/:id/recipes", authed, h.ListUserRecipes)
}

// ListRecipes returns the recipes visible to the caller. Unauthenticated
// callers (or ?public=true) see the welcome feed; authenticated callers
// see their own recipes plus everyone's home-visible ones.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	query := h.db.Model(&Recipe{})

	viewerID := h.optionalViewer(c)
	if viewerID == uuid.Nil || c.Query("public") == "true" {
		query = query.Where("visible_on IN ?", []string{"welcome", "both"})
	} else {
		query = query.Where("user_id = ? OR visible_on IN ?", viewerID, []string{"home", "both"})
	}

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if region := c.Query("region"); region != "" {
		query = query.Where("region = ?", region)
	}
	if search := c.Query("q"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var recipes []Recipe
	if err := query.Order("created_at DESC").Find(&recipes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Recipes retrieved successfully",
		"recipes": h.recipesJSON(recipes, viewerID),
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	var recipe Recipe
	if err := h.db.First(&recipe, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": h.recipeJSON(recipe, h.optionalViewer(c))})
}

// ListUserRecipes returns the recipes owned by a user.
func (h *RecipeHandler) ListUserRecipes(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var recipes []Recipe
	if err := h.db.Where("user_id = ?", ownerID).Order("created_at DESC").Find(&recipes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	viewerID, _ := currentUserID(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "Recipes retrieved successfully",
		"recipes": h.recipesJSON(recipes, viewerID),
	})
}

// CreateRecipe accepts a multipart form, validates it field by field,
// and answers a 422 with a per-field error map on bad input.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, exists := currentUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	fieldErrors := map[string][]string{}
	required := func(name string) string {
		v := strings.TrimSpace(c.PostForm(name))
		if v == "" {
			fieldErrors[name] = append(fieldErrors[name], "The "+name+" field is required.")
		}
		return v
	}

	title := required("title")
	description := required("description")
	minPrice := required("min_price")
	cookTime := required("cook_time")
	prepTime := required("prep_time")
	category := required("category_id")
	region := required("region_id")

	visibleOn := c.DefaultPostForm("visible_on", "both")
	switch visibleOn {
	case "home", "welcome", "both":
	default:
		fieldErrors["visible_on"] = append(fieldErrors["visible_on"], "The selected visible_on is invalid.")
	}

	ingredients := parseListField(c.PostForm("ingredients"))
	if len(ingredients) == 0 {
		fieldErrors["ingredients"] = append(fieldErrors["ingredients"], "The ingredients field is required.")
	}
	steps := parseListField(c.PostForm("steps"))
	if len(steps) == 0 {
		fieldErrors["steps"] = append(fieldErrors["steps"], "The steps field is required.")
	}

	if len(fieldErrors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid.",
			"errors":  fieldErrors,
		})
		return
	}

	recipe := Recipe{
		Title:       title,
		Description: description,
		Ingredients: ingredients,
		Steps:       steps,
		Category:    category,
		Region:      region,
		MinPrice:    minPrice,
		CookTime:    cookTime,
		PrepTime:    prepTime,
		VisibleOn:   visibleOn,
		UserID:      userID,
	}

	if file, err := c.FormFile("image_path"); err == nil {
		name := uuid.New().String() + filepath.Ext(file.Filename)
		if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, name)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
			return
		}
		recipe.ImagePath = "uploads/" + name
	}

	if err := h.db.Create(&recipe).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipe"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Recipe created successfully",
		"recipe":  h.recipeJSON(recipe, userID),
	})
}

// DeleteRecipe removes a recipe. Only the owner may delete.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, _ := currentUserID(c)

	var recipe Recipe
	if err := h.db.First(&recipe, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}
	if recipe.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own recipes"})
		return
	}

	if err := h.db.Delete(&recipe).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete recipe"})
		return
	}
	h.db.Where("recipe_id = ?", recipe.ID).Delete(&RecipeFavorite{})
	h.db.Where("recipe_id = ?", recipe.ID).Delete(&RecipeRating{})

	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}

// ToggleLike flips the caller's favorite row for a recipe and returns
// the resulting state together with the refreshed recipe.
func (h *RecipeHandler) ToggleLike(c *gin.Context) {
	userID, _ := currentUserID(c)

	var recipe Recipe
	if err := h.db.First(&recipe, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	var fav RecipeFavorite
	err := h.db.Where("recipe_id = ? AND user_id = ?", recipe.ID, userID).First(&fav).Error
	liked := false
	switch {
	case err == nil:
		if err := h.db.Delete(&fav).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update like"})
			return
		}
	case err == gorm.ErrRecordNotFound:
		fav = RecipeFavorite{RecipeID: recipe.ID, UserID: userID}
		if err := h.db.Create(&fav).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update like"})
			return
		}
		liked = true
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update like"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"liked":  liked,
		"recipe": h.recipeJSON(recipe, userID),
	})
}

// RateRecipe upserts the caller's 1-5 rating and echoes the stored
// score.
func (h *RecipeHandler) RateRecipe(c *gin.Context) {
	userID, _ := currentUserID(c)

	var recipe Recipe
	if err := h.db.First(&recipe, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return
	}

	var body struct {
		Rating int `json:"rating"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Rating < 1 || body.Rating > 5 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "The given data was invalid.",
			"errors":  gin.H{"rating": []string{"The rating must be between 1 and 5."}},
		})
		return
	}

	var rating RecipeRating
	err := h.db.Where("recipe_id = ? AND user_id = ?", recipe.ID, userID).First(&rating).Error
	switch {
	case err == nil:
		rating.Score = body.Rating
		err = h.db.Save(&rating).Error
	case err == gorm.ErrRecordNotFound:
		rating = RecipeRating{RecipeID: recipe.ID, UserID: userID, Score: body.Rating}
		err = h.db.Create(&rating).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save rating"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rating": rating.Score})
}

// optionalViewer resolves the bearer token when present without
// requiring one.
func (h *RecipeHandler) optionalViewer(c *gin.Context) uuid.UUID {
	if id, ok := currentUserID(c); ok {
		return id
	}
	header := c.GetHeader("Authorization")
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return uuid.Nil
	}
	claims, err := h.auth.ValidateToken(parts[1])
	if err != nil {
		return uuid.Nil
	}
	return claims.UserID
}

func (h *RecipeHandler) recipesJSON(recipes []Recipe, viewerID uuid.UUID) []gin.H {
	out := make([]gin.H, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, h.recipeJSON(r, viewerID))
	}
	return out
}

// recipeJSON projects a recipe the way the production API does,
// including the favorite and rating joins the client derives state
// from.
func (h *RecipeHandler) recipeJSON(r Recipe, viewerID uuid.UUID) gin.H {
	var favorites []RecipeFavorite
	h.db.Where("recipe_id = ?", r.ID).Find(&favorites)
	var ratings []RecipeRating
	h.db.Where("recipe_id = ?", r.ID).Find(&ratings)

	favoritedBy := make([]gin.H, 0, len(favorites))
	liked := false
	for _, f := range favorites {
		favoritedBy = append(favoritedBy, gin.H{"id": f.ID.String(), "user_id": f.UserID.String()})
		if f.UserID == viewerID {
			liked = true
		}
	}

	ratingList := make([]gin.H, 0, len(ratings))
	var sum float64
	for _, rt := range ratings {
		ratingList = append(ratingList, gin.H{"score": rt.Score, "user_id": rt.UserID.String()})
		sum += float64(rt.Score)
	}
	var avg float64
	if len(ratings) > 0 {
		avg = sum / float64(len(ratings))
	}

	return gin.H{
		"id":          r.ID.String(),
		"title":       r.Title,
		"description": r.Description,
		"ingredients": []string(r.Ingredients),
		"steps":       []string(r.Steps),
		"category":    r.Category,
		"region":      r.Region,
		"min_price":   r.MinPrice,
		"cook_time":   r.CookTime,
		"prep_time":   r.PrepTime,
		"image_path":  r.ImagePath,
		"user_id":     r.UserID.String(),
		"visible_on":  r.VisibleOn,
		"created_at":  r.CreatedAt.UTC().Format(time.RFC3339),
		"rating":      avg,
		"liked":       liked,
		"ratings":     ratingList,
		"favoritedBy": favoritedBy,
	}
}

// parseListField accepts a JSON array string or a newline-separated
// plain string, matching what the web form submits.
func parseListField(raw string) JSONStringArray {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			return cleanList(list)
		}
	}
	return cleanList(strings.Split(raw, "\n"))
}

func cleanList(in []string) JSONStringArray {
	out := make(JSONStringArray, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
