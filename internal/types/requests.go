package types

// PublishRequest is the client-side form for creating a recipe. The
// validate tags mirror the server's rules so obviously bad input never
// leaves the client.
type PublishRequest struct {
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description" validate:"required"`
	Ingredients []string  `json:"ingredients" validate:"required,min=1,dive,required"`
	Steps       []string  `json:"steps" validate:"required,min=1,dive,required"`
	CategoryID  string    `json:"category_id" validate:"required"`
	RegionID    string    `json:"region_id" validate:"required"`
	MinPrice    string    `json:"min_price" validate:"required"`
	CookTime    string    `json:"cook_time" validate:"required"`
	PrepTime    string    `json:"prep_time" validate:"required"`
	VisibleOn   VisibleOn `json:"visible_on" validate:"required,oneof=home welcome both"`

	// Optional image upload; the file content is sent as a multipart
	// part, the stored URL comes back in the created recipe.
	ImageName string `json:"-"`
	Image     []byte `json:"-"`
}

// LikeResult is the server's answer to a like toggle.
type LikeResult struct {
	Liked  bool
	Recipe *Recipe
}

// Credentials is a login request.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Registration is a register request.
type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}
