// realmctl is a command line front end over the recipe interaction
// layer: it browses the catalog, toggles likes, rates, publishes and
// deletes recipes against a running API server, caching state locally
// the way the web client does.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/reciperealm/reciperealm-v2/client/config"
	"github.com/reciperealm/reciperealm-v2/client/internal/client"
	"github.com/reciperealm/reciperealm-v2/client/internal/coordinator"
	"github.com/reciperealm/reciperealm-v2/client/internal/localdata"
	"github.com/reciperealm/reciperealm-v2/client/internal/logger"
	"github.com/reciperealm/reciperealm-v2/client/internal/seed"
	"github.com/reciperealm/reciperealm-v2/client/internal/session"
	"github.com/reciperealm/reciperealm-v2/client/internal/store"
	"github.com/reciperealm/reciperealm-v2/client/internal/types"
)

const usage = `usage: realmctl <command> [flags]

commands:
  list      list recipes (-tab welcome|home, -category, -region, -search)
  show      show one recipe by id
  like      toggle a like on a recipe
  rate      rate a recipe 1-5
  publish   publish a recipe
  delete    delete an owned recipe (-from collection|profile)
  login     log in (-email, -password)
  register  create an account (-name, -email, -password)
  logout    log out and drop the local session
  profile   show the cached profile
  whoami    revalidate the session against the server
  user-recipes  list another user's recipes by user id
  clear     clear anonymous likes and ratings
`

type app struct {
	cfg     config.Config
	session *session.Session
	local   *localdata.Store
	recipes *store.RecipeStore
	profile *store.ProfileStore
	coord   *coordinator.Coordinator
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	log := logger.New(logger.Config{
		Environment: cfg.Log.Environment,
		Level:       logger.ParseLevel(cfg.Log.Level),
	})

	local, err := localdata.Open(cfg.Client.DataDir, log)
	if err != nil {
		fatal(err)
	}
	defer local.Close()

	sess := session.New(local, log)
	api := client.New(cfg.Client.APIURL, sess, log)
	recipes := store.NewRecipeStore(api, seed.Catalog(), log)
	profile := store.NewProfileStore(api, log)
	if restored, ok := sess.Restore(); ok {
		profile.Set(restored)
	}

	a := &app{
		cfg:     cfg,
		session: sess,
		local:   local,
		recipes: recipes,
		profile: profile,
		coord:   coordinator.New(api, recipes, profile, local, sess, log),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.run(ctx, api, os.Args[1], os.Args[2:]); err != nil {
		fatal(err)
	}
}

func (a *app) run(ctx context.Context, api *client.Client, cmd string, args []string) error {
	switch cmd {
	case "list":
		return a.cmdList(ctx, args)
	case "show":
		return a.cmdShow(ctx, args)
	case "like":
		return a.cmdLike(ctx, args)
	case "rate":
		return a.cmdRate(ctx, args)
	case "publish":
		return a.cmdPublish(ctx, args)
	case "delete":
		return a.cmdDelete(ctx, args)
	case "login":
		return a.cmdLogin(ctx, api, args)
	case "register":
		return a.cmdRegister(ctx, api, args)
	case "logout":
		return a.cmdLogout(ctx, api)
	case "profile":
		return a.cmdProfile(ctx)
	case "whoami":
		return a.cmdWhoami(ctx, api)
	case "user-recipes":
		return a.cmdUserRecipes(ctx, api, args)
	case "clear":
		return a.local.ClearInteractions()
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) cmdList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	tab := fs.String("tab", "", "visibility tab: welcome or home")
	category := fs.String("category", "", "filter by category")
	region := fs.String("region", "", "filter by region")
	search := fs.String("search", "", "filter by text")
	fs.Parse(args)

	if _, err := a.recipes.FetchAll(ctx, a.session.Authenticated()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: using cached catalog: %v\n", err)
	}

	list := a.recipes.All()
	switch *tab {
	case "welcome":
		list = a.recipes.FilterByVisibility(types.VisibleWelcome)
	case "home":
		list = a.recipes.FilterByVisibility(types.VisibleHome)
	}
	if *category != "" {
		list = a.recipes.FilterByCategory(*category)
	}
	if *region != "" {
		list = a.recipes.FilterByRegion(*region)
	}
	if *search != "" {
		list = a.recipes.FilterBySearch(*search)
	}

	for _, r := range list {
		printRecipeLine(r, a.coord)
	}
	return nil
}

func (a *app) cmdShow(ctx context.Context, args []string) error {
	id, err := oneArg(args, "show <recipe-id>")
	if err != nil {
		return err
	}
	if _, err := a.recipes.FetchAll(ctx, a.session.Authenticated()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: using cached catalog: %v\n", err)
	}
	r, ok := a.recipes.Get(id)
	if !ok {
		return fmt.Errorf("recipe %s not found", id)
	}
	fmt.Printf("%s\n%s\n\nCategory: %s  Region: %s  Rating: %.1f\n", r.Title, r.Description, r.Category, r.Region, r.Rating)
	fmt.Println("\nIngredients:")
	for _, i := range r.Ingredients {
		fmt.Println("  -", i)
	}
	fmt.Println("\nSteps:")
	for n, s := range r.Steps {
		fmt.Printf("  %d. %s\n", n+1, s)
	}
	return nil
}

func (a *app) cmdLike(ctx context.Context, args []string) error {
	id, err := oneArg(args, "like <recipe-id>")
	if err != nil {
		return err
	}
	if _, err := a.recipes.FetchAll(ctx, a.session.Authenticated()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: using cached catalog: %v\n", err)
	}
	liked, err := a.coord.ToggleLike(ctx, id)
	if err != nil {
		return err
	}
	if liked {
		fmt.Println("liked", id)
	} else {
		fmt.Println("unliked", id)
	}
	return nil
}

func (a *app) cmdRate(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: realmctl rate <recipe-id> <1-5>")
	}
	stars, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("rating must be a number: %w", err)
	}
	if _, err := a.recipes.FetchAll(ctx, a.session.Authenticated()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: using cached catalog: %v\n", err)
	}
	confirmed, err := a.coord.SetRating(ctx, args[0], stars)
	if err != nil {
		return err
	}
	fmt.Printf("rated %s: %.1f\n", args[0], confirmed)
	return nil
}

func (a *app) cmdPublish(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	title := fs.String("title", "", "recipe title")
	description := fs.String("description", "", "recipe description")
	ingredients := fs.String("ingredients", "", "comma-separated ingredients")
	steps := fs.String("steps", "", "comma-separated steps")
	category := fs.String("category", "", "category id")
	region := fs.String("region", "", "region id")
	minPrice := fs.String("min-price", "0", "minimum price")
	cookTime := fs.String("cook-time", "", "cook time")
	prepTime := fs.String("prep-time", "", "prep time")
	visibleOn := fs.String("visible-on", "both", "visibility: home, welcome or both")
	image := fs.String("image", "", "path to an image file")
	fs.Parse(args)

	req := types.PublishRequest{
		Title:       *title,
		Description: *description,
		Ingredients: splitList(*ingredients),
		Steps:       splitList(*steps),
		CategoryID:  *category,
		RegionID:    *region,
		MinPrice:    *minPrice,
		CookTime:    *cookTime,
		PrepTime:    *prepTime,
		VisibleOn:   types.VisibleOn(*visibleOn),
	}
	if *image != "" {
		data, err := os.ReadFile(*image)
		if err != nil {
			return fmt.Errorf("reading image: %w", err)
		}
		req.Image = data
		req.ImageName = *image
	}

	created, err := a.coord.Publish(ctx, req)
	if err != nil {
		return err
	}
	fmt.Println("published", created.ID)
	return nil
}

func (a *app) cmdDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	from := fs.String("from", "collection", "view the delete is issued from: collection or profile")
	fs.Parse(args)
	id, err := oneArg(fs.Args(), "delete <recipe-id>")
	if err != nil {
		return err
	}
	if _, err := a.recipes.FetchAll(ctx, true); err != nil {
		fmt.Fprintf(os.Stderr, "warning: using cached catalog: %v\n", err)
	}
	tab := coordinator.TabCollection
	if *from == "profile" {
		tab = coordinator.TabProfile
	}
	if err := a.coord.Delete(ctx, id, tab); err != nil {
		return err
	}
	fmt.Println("deleted", id)
	return nil
}

func (a *app) cmdLogin(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	token, profile, err := api.Login(ctx, types.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	if err := a.session.Establish(token, profile); err != nil {
		return err
	}
	a.profile.Set(profile)
	fmt.Println("logged in as", profile.Name)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	token, profile, err := api.Register(ctx, types.Registration{Name: *name, Email: *email, Password: *password})
	if err != nil {
		return err
	}
	if err := a.session.Establish(token, profile); err != nil {
		return err
	}
	a.profile.Set(profile)
	fmt.Println("registered as", profile.Name)
	return nil
}

func (a *app) cmdLogout(ctx context.Context, api *client.Client) error {
	if a.session.Authenticated() {
		if err := api.Logout(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: server logout failed: %v\n", err)
		}
	}
	if err := a.session.Invalidate(); err != nil {
		return err
	}
	a.profile.Clear()
	fmt.Println("logged out")
	return nil
}

func (a *app) cmdProfile(ctx context.Context) error {
	if !a.session.Authenticated() {
		return fmt.Errorf("not logged in")
	}
	p, err := a.profile.Load(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\nRecipes: %d  Likes: %d  Avg rating: %.1f\n", p.Name, p.Email, p.Stats.Recipes, p.Stats.Likes, p.Stats.AvgRating)
	for _, r := range p.Recipes {
		fmt.Println("  own  ", r.ID, r.Title)
	}
	for _, r := range p.LikedRecipes {
		fmt.Println("  liked", r.ID, r.Title)
	}
	return nil
}

func (a *app) cmdWhoami(ctx context.Context, api *client.Client) error {
	if !a.session.Authenticated() {
		fmt.Println("anonymous")
		return nil
	}
	me, err := api.Me(ctx)
	if err != nil {
		return err
	}
	if err := a.session.UpdateProfile(me); err != nil {
		return err
	}
	fmt.Printf("%s <%s>\n", me.Name, me.Email)
	return nil
}

func (a *app) cmdUserRecipes(ctx context.Context, api *client.Client, args []string) error {
	id, err := oneArg(args, "user-recipes <user-id>")
	if err != nil {
		return err
	}
	list, err := api.FetchUserRecipes(ctx, id)
	if err != nil {
		return err
	}
	for _, r := range list {
		printRecipeLine(r, a.coord)
	}
	return nil
}

func printRecipeLine(r types.Recipe, coord *coordinator.Coordinator) {
	mark := " "
	if coord.IsLiked(r.ID) {
		mark = "*"
	}
	fmt.Printf("%s %-6s %-30s %-15s %.1f\n", mark, r.ID, r.Title, r.Region, r.Rating)
}

func oneArg(args []string, usage string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: realmctl %s", usage)
	}
	return args[0], nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "realmctl:", err)
	os.Exit(1)
}
