// Package seed holds the fixed recipe catalog that is always present in
// the collection store, whether or not the server is reachable.
package seed

import (
	"time"

	"github.com/reciperealm/reciperealm-v2/client/internal/types"
)

// Catalog returns a fresh copy of the seed recipes. Callers own the
// returned slice; the catalog itself is never mutated.
func Catalog() []types.Recipe {
	return types.CloneRecipes(catalog)
}

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

var catalog = []types.Recipe{
	{
		ID:          "1",
		Title:       "Ndole",
		Description: "A bitterleaf stew with peanuts and meat.",
		Image:       "/images/Ndole-1.webp",
		Rating:      5,
		Category:    "west",
		Region:      "centre",
		VisibleOn:   types.VisibleBoth,
		CreatedAt:   date(2024, time.May, 1, 12),
		Ingredients: []string{"bitterleaf", "peanuts", "beef", "onions", "palm oil"},
		Steps:       []string{"Wash bitterleaf thoroughly.", "Boil beef with onions.", "Grind peanuts and add to stew.", "Simmer with palm oil."},
		MinPrice:    "1000",
		CookTime:    "60 min",
		PrepTime:    "30 min",
		UserID:      "1",
	},
	{
		ID:          "2",
		Title:       "Eru",
		Description: "A flavorful mix of green leaves and water fufu.",
		Image:       "/images/Eru.jpeg",
		Rating:      4,
		Category:    "southWest",
		Region:      "southwest",
		VisibleOn:   types.VisibleWelcome,
		CreatedAt:   date(2024, time.May, 3, 8),
		Ingredients: []string{"eru leaves", "waterleaf", "palm oil", "crayfish", "cow skin"},
		Steps:       []string{"Boil eru and waterleaf.", "Add palm oil and crayfish.", "Simmer with cow skin.", "Serve with water fufu."},
		MinPrice:    "800",
		CookTime:    "45 min",
		PrepTime:    "20 min",
		UserID:      "2",
	},
	{
		ID:          "3",
		Title:       "Jollof Rice",
		Description: "Classic West African rice cooked in spicy tomato sauce.",
		Image:       "/images/jolof-rice.jpeg",
		Rating:      4,
		Category:    "westAfrican",
		Region:      "westAfrican",
		VisibleOn:   types.VisibleBoth,
		CreatedAt:   date(2024, time.May, 28, 9),
		Ingredients: []string{"rice", "tomatoes", "peppers", "onions", "chicken"},
		Steps:       []string{"Blend tomatoes and peppers.", "Fry onions and paste.", "Add rice and stock.", "Cook until tender."},
		MinPrice:    "700",
		CookTime:    "40 min",
		PrepTime:    "15 min",
		UserID:      "2",
	},
	{
		ID:          "4",
		Title:       "Fufu & Light Soup",
		Description: "Ghanaian fufu served with spicy light soup.",
		Image:       "/images/Fufu-and-light-soup.jpeg",
		Rating:      3,
		Category:    "westAfrican",
		Region:      "westAfrican",
		VisibleOn:   types.VisibleBoth,
		CreatedAt:   date(2024, time.May, 10, 14),
		Ingredients: []string{"cassava", "plantain", "tomatoes", "goat meat", "ginger"},
		Steps:       []string{"Boil cassava and plantain.", "Pound into fufu.", "Cook tomatoes and goat meat.", "Add spices and simmer."},
		MinPrice:    "900",
		CookTime:    "50 min",
		PrepTime:    "25 min",
		UserID:      "1",
	},
	{
		ID:          "5",
		Title:       "Spaghetti Bolognese",
		Description: "Italian classic with rich meat sauce.",
		Image:       "/images/spaghetti-bolognese.jpeg",
		Rating:      5,
		Category:    "international",
		Region:      "international",
		VisibleOn:   types.VisibleBoth,
		CreatedAt:   date(2024, time.May, 11, 15),
		Ingredients: []string{"spaghetti", "ground beef", "tomatoes", "onions", "parmesan"},
		Steps:       []string{"Boil spaghetti.", "Cook beef with onions.", "Add tomato sauce.", "Serve with parmesan."},
		MinPrice:    "1200",
		CookTime:    "30 min",
		PrepTime:    "15 min",
		UserID:      "2",
	},
	{
		ID:          "6",
		Title:       "Puff Puff",
		Description: "A local breakfast with a beautiful texture.",
		Image:       "/images/puff-puff.jpeg",
		Rating:      4,
		Category:    "snacks",
		Region:      "centre",
		VisibleOn:   types.VisibleBoth,
		CreatedAt:   date(2024, time.May, 13, 11),
		Ingredients: []string{"flour", "sugar", "yeast", "water", "oil"},
		Steps:       []string{"Mix flour, sugar, and yeast.", "Add water to form dough.", "Fry in hot oil.", "Drain and serve."},
		MinPrice:    "200",
		CookTime:    "20 min",
		PrepTime:    "10 min",
		UserID:      "2",
	},
	{
		ID:          "7",
		Title:       "Achu Soup",
		Description: "Yellow soup served with pounded cocoyam.",
		Image:       "/images/achu.jpg",
		Rating:      5,
		Category:    "northWest",
		Region:      "northwest",
		VisibleOn:   types.VisibleBoth,
		CreatedAt:   date(2024, time.May, 15, 13),
		Ingredients: []string{"cocoyam", "palm oil", "limestone", "beef", "spices"},
		Steps:       []string{"Pound cocoyam.", "Boil beef with spices.", "Mix limestone and palm oil.", "Combine and serve."},
		MinPrice:    "1000",
		CookTime:    "60 min",
		PrepTime:    "30 min",
		UserID:      "1",
	},
	{
		ID:          "8",
		Title:       "Mbongo Tchobi",
		Description: "Black sauce made from burnt spices and fish.",
		Image:       "/images/mbongo.jpg",
		Rating:      5,
		Category:    "littoral",
		Region:      "littoral",
		VisibleOn:   types.VisibleBoth,
		CreatedAt:   date(2024, time.May, 16, 10),
		Ingredients: []string{"fish", "mbongo spice", "tomatoes", "onions", "palm oil"},
		Steps:       []string{"Burn mbongo spice.", "Fry onions and tomatoes.", "Add fish and palm oil.", "Simmer and serve."},
		MinPrice:    "900",
		CookTime:    "40 min",
		PrepTime:    "20 min",
		UserID:      "1",
	},
	{
		ID:          "9",
		Title:       "Chakalaka",
		Description: "Spicy vegetable relish from South Africa.",
		Image:       "/images/chakalaka.jpeg",
		Rating:      4,
		Category:    "southAfrican",
		Region:      "southAfrican",
		VisibleOn:   types.VisibleBoth,
		CreatedAt:   date(2024, time.May, 21, 11),
		Ingredients: []string{"beans", "peppers", "carrots", "tomatoes", "spices"},
		Steps:       []string{"Chop vegetables.", "Fry peppers and carrots.", "Add beans and spices.", "Simmer and serve."},
		MinPrice:    "400",
		CookTime:    "25 min",
		PrepTime:    "15 min",
		UserID:      "2",
	},
	{
		ID:          "10",
		Title:       "Tiramisu",
		Description: "Classic Italian dessert with coffee and mascarpone.",
		Image:       "/images/tiramisu.jpg",
		Rating:      5,
		Category:    "desserts",
		Region:      "international",
		VisibleOn:   types.VisibleBoth,
		CreatedAt:   date(2024, time.May, 27, 20),
		Ingredients: []string{"mascarpone", "coffee", "ladyfingers", "cocoa", "sugar"},
		Steps:       []string{"Dip ladyfingers in coffee.", "Layer with mascarpone.", "Chill overnight.", "Dust with cocoa."},
		MinPrice:    "1500",
		CookTime:    "0 min",
		PrepTime:    "30 min",
		UserID:      "2",
	},
}
