package types

// Stats are the derived aggregate counters of a profile. They are never
// set directly; every reconciliation recomputes them from the recipe
// arrays.
type Stats struct {
	Recipes   int     `json:"recipes"`
	Likes     int     `json:"likes"`
	AvgRating float64 `json:"avgRating"`
}

// UserProfile is the authenticated user's view of ownership and likes.
type UserProfile struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Bio          string   `json:"bio"`
	Location     string   `json:"location"`
	ProfileImage string   `json:"profileImage"`
	JoinDate     string   `json:"joinDate"`
	Stats        Stats    `json:"stats"`
	Recipes      []Recipe `json:"recipes"`
	LikedRecipes []Recipe `json:"likedRecipes"`
}

// Clone deep-copies the profile.
func (p UserProfile) Clone() UserProfile {
	out := p
	out.Recipes = CloneRecipes(p.Recipes)
	out.LikedRecipes = CloneRecipes(p.LikedRecipes)
	return out
}

// RecomputeStats rebuilds the aggregate counters from the recipe
// arrays. AvgRating averages the owned recipes' ratings.
func (p *UserProfile) RecomputeStats() {
	p.Stats.Recipes = len(p.Recipes)
	p.Stats.Likes = len(p.LikedRecipes)
	if len(p.Recipes) == 0 {
		p.Stats.AvgRating = 0
		return
	}
	var sum float64
	for _, r := range p.Recipes {
		sum += r.Rating
	}
	p.Stats.AvgRating = sum / float64(len(p.Recipes))
}

// HasLiked reports whether id is present in the liked list.
func (p *UserProfile) HasLiked(id string) bool {
	for _, r := range p.LikedRecipes {
		if r.ID == id {
			return true
		}
	}
	return false
}
