package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Deps are the collaborators the HTTP surface needs. Redis may be nil.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Images service.ImageStore
}

// HealthCheck reports whether the database answers.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.HealthCheck(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// RegisterRoutes wires services to handlers and mounts every route.
func RegisterRoutes(router *gin.Engine, deps Deps) {
	cfg := deps.Config

	links := service.NewShortLinkService(deps.DB, deps.Redis)
	authService := service.NewAuthService(deps.DB, cfg.JWTSecret, cfg.TokenTTL)
	recipes := service.NewRecipeService(deps.DB, deps.Images, links)

	requireAuth := []gin.HandlerFunc{
		middleware.AuthMiddleware(authService),
		middleware.RequireAccount(deps.DB),
	}
	var createLimit gin.HandlerFunc
	if cfg.RecipeCreateLimit > 0 {
		createLimit = middleware.NewRecipeCreationRateLimiter(deps.Redis, cfg.RecipeCreateLimit).RateLimitMiddleware()
	}

	userHandler := NewUserHandler(
		authService,
		service.NewUserService(deps.DB, deps.Images),
		service.NewSubscriptionService(deps.DB, deps.Images),
		requireAuth, cfg.BaseURL, cfg.PageSize,
	)
	catalogHandler := NewCatalogHandler(service.NewCatalogService(deps.DB))
	recipeHandler := NewRecipeHandler(RecipeHandlerConfig{
		Recipes:      recipes,
		Memberships:  service.NewMembershipService(deps.DB, deps.Images),
		ShoppingList: service.NewShoppingListService(deps.DB),
		ShortLinks:   links,
		Validator:    authService,
		RequireAuth:  requireAuth,
		CreateLimit:  createLimit,
		BaseURL:      cfg.BaseURL,
		PageSize:     cfg.PageSize,
	})

	router.GET("/health", HealthCheck(deps.DB))

	apiGroup := router.Group("/api")
	userHandler.RegisterRoutes(apiGroup)
	catalogHandler.RegisterRoutes(apiGroup)
	recipeHandler.RegisterRoutes(apiGroup)
	recipeHandler.RegisterShortLinkRoutes(router.Group(""))
}
