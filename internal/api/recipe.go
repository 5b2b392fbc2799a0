package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipes     service.IRecipeService
	memberships service.IMembershipService
	shopping    service.IShoppingListService
	links       service.IShortLinkService
	validator   middleware.TokenValidator
	requireAuth []gin.HandlerFunc
	createLimit gin.HandlerFunc
	baseURL     string
	pageSize    int
}

type RecipeHandlerConfig struct {
	Recipes      service.IRecipeService
	Memberships  service.IMembershipService
	ShoppingList service.IShoppingListService
	ShortLinks   service.IShortLinkService
	Validator    middleware.TokenValidator
	RequireAuth  []gin.HandlerFunc
	// CreateLimit guards recipe creation; nil disables it.
	CreateLimit gin.HandlerFunc
	BaseURL     string
	PageSize    int
}

func NewRecipeHandler(cfg RecipeHandlerConfig) *RecipeHandler {
	return &RecipeHandler{
		recipes:     cfg.Recipes,
		memberships: cfg.Memberships,
		shopping:    cfg.ShoppingList,
		links:       cfg.ShortLinks,
		validator:   cfg.Validator,
		requireAuth: cfg.RequireAuth,
		createLimit: cfg.CreateLimit,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		pageSize:    cfg.PageSize,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	optional := middleware.OptionalAuth(h.validator)
	authed := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, h.requireAuth...), handlers...)
	}
	create := []gin.HandlerFunc{h.CreateRecipe}
	if h.createLimit != nil {
		create = []gin.HandlerFunc{h.createLimit, h.CreateRecipe}
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.POST("", authed(create...)...)
		recipes.GET("/download_shopping_cart", authed(h.DownloadShoppingCart)...)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.PATCH("/:id", authed(h.UpdateRecipe)...)
		recipes.DELETE("/:id", authed(h.DeleteRecipe)...)
		recipes.GET("/:id/get-link", h.GetLink)
		recipes.POST("/:id/favorite", authed(h.addTo(models.SetFavorite))...)
		recipes.DELETE("/:id/favorite", authed(h.removeFrom(models.SetFavorite))...)
		recipes.POST("/:id/shopping_cart", authed(h.addTo(models.SetShoppingCart))...)
		recipes.DELETE("/:id/shopping_cart", authed(h.removeFrom(models.SetShoppingCart))...)
	}
}

// RegisterShortLinkRoutes mounts the public short link redirect.
func (h *RecipeHandler) RegisterShortLinkRoutes(router *gin.RouterGroup) {
	router.GET("/s/:code", h.ResolveShortLink)
	router.GET("/s/:code/", h.ResolveShortLink)
}

func (h *RecipeHandler) respondRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	reps, err := h.recipes.Represent(c.Request.Context(), middleware.Viewer(c), *recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, reps[0])
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	viewer := middleware.Viewer(c)

	var filter service.RecipeFilter
	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			badRequest(c, "author must be a user id")
			return
		}
		filter.AuthorID = &id
	}
	filter.TagSlugs = c.QueryArray("tags")
	if viewer != nil {
		if c.Query("is_favorited") == "1" {
			filter.FavoritedBy = viewer
		}
		if c.Query("is_in_shopping_cart") == "1" {
			filter.InCartOf = viewer
		}
	}

	page := pageFromQuery(c, h.pageSize)
	recipes, total, err := h.recipes.ListRecipes(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	reps, err := h.recipes.Represent(c.Request.Context(), viewer, recipes...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, h.baseURL, page, total, reps))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var in service.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	userID, _ := middleware.UserID(c)
	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), userID, &in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	var in service.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	userID, _ := middleware.UserID(c)
	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), userID, id, &in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)
	if err := h.recipes.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) addTo(kind models.SetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c)
		if !ok {
			return
		}
		userID, _ := middleware.UserID(c)
		summary, err := h.memberships.AddToSet(c.Request.Context(), kind, userID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, summary)
	}
}

func (h *RecipeHandler) removeFrom(kind models.SetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c)
		if !ok {
			return
		}
		userID, _ := middleware.UserID(c)
		if err := h.memberships.RemoveFromSet(c.Request.Context(), kind, userID, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	list, err := h.shopping.BuildShoppingList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	name := c.GetString("username")
	if name == "" {
		name = userID.String()
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="shopping_list_%s.txt"`, name))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(list.Text()))
}

func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	code, err := h.links.ShortLinkFor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ShortLinkResponse{ShortLink: h.baseURL + "/s/" + code + "/"})
}

func (h *RecipeHandler) ResolveShortLink(c *gin.Context) {
	id, err := h.links.ResolveShortLink(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, h.baseURL+"/recipes/"+id.String()+"/")
}
