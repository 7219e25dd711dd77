package devserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	db      *gorm.DB
	auth    *AuthService
	recipes *RecipeHandler
}

func NewProfileHandler(db *gorm.DB, auth *AuthService, recipes *RecipeHandler) *ProfileHandler {
	return &ProfileHandler{db: db, auth: auth, recipes: recipes}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.Engine) {
	authed := AuthRequired(h.auth)
	router.GET("/profile", authed, h.GetProfile)
	router.GET("/me", authed, h.Me)
}

// GetProfile returns the caller's profile with embedded owned and liked
// recipe lists and stats derived from them.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, _ := currentUserID(c)

	var user User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, userJSONWithRecipes(h.db, h.recipes, user))
}

// Me is a lightweight session check that returns the same profile
// resource.
func (h *ProfileHandler) Me(c *gin.Context) {
	h.GetProfile(c)
}

// userJSON projects a user without recipe lists, used by the auth
// responses.
func userJSON(db *gorm.DB, user User, viewerID uuid.UUID) gin.H {
	return gin.H{
		"id":           user.ID.String(),
		"name":         user.Name,
		"email":        user.Email,
		"bio":          user.Bio,
		"location":     user.Location,
		"profileImage": user.ProfileImage,
		"joinDate":     user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// userJSONWithRecipes projects the full profile resource.
func userJSONWithRecipes(db *gorm.DB, recipes *RecipeHandler, user User) gin.H {
	out := userJSON(db, user, user.ID)

	var owned []Recipe
	db.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&owned)
	out["recipes"] = recipes.recipesJSON(owned, user.ID)

	var favs []RecipeFavorite
	db.Where("user_id = ?", user.ID).Find(&favs)
	likedIDs := make([]uuid.UUID, 0, len(favs))
	for _, f := range favs {
		likedIDs = append(likedIDs, f.RecipeID)
	}
	var liked []Recipe
	if len(likedIDs) > 0 {
		db.Where("id IN ?", likedIDs).Find(&liked)
	}
	out["likedRecipes"] = recipes.recipesJSON(liked, user.ID)

	// Stats derived from the same lists, so the two can never disagree.
	var sum float64
	var count int
	for _, r := range owned {
		var ratings []RecipeRating
		db.Where("recipe_id = ?", r.ID).Find(&ratings)
		for _, rt := range ratings {
			sum += float64(rt.Score)
			count++
		}
	}
	var avg float64
	if count > 0 {
		avg = sum / float64(count)
	}
	out["stats"] = gin.H{
		"recipes":   len(owned),
		"likes":     len(liked),
		"avgRating": avg,
	}
	return out
}
