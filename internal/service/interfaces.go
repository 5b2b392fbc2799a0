package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, in *RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	SetPassword(ctx context.Context, userID uuid.UUID, in *SetPasswordInput) error
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IUserService defines the interface for user operations
type IUserService interface {
	GetUser(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*UserRepresentation, error)
	ListUsers(ctx context.Context, viewer *uuid.UUID, page Page) ([]UserRepresentation, int64, error)
	SetAvatar(ctx context.Context, userID uuid.UUID, dataURI string) (string, error)
	DeleteAvatar(ctx context.Context, userID uuid.UUID) error
}

// ICatalogService defines the interface for ingredient and tag lookups
type ICatalogService interface {
	ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uuid.UUID, in *RecipeInput) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, callerID, recipeID uuid.UUID, in *RecipeInput) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, callerID, recipeID uuid.UUID) error
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	ListRecipes(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error)
	Represent(ctx context.Context, viewer *uuid.UUID, recipes ...models.Recipe) ([]RecipeRepresentation, error)
}

// IMembershipService defines the interface for favorite and cart sets
type IMembershipService interface {
	AddToSet(ctx context.Context, kind models.SetKind, userID, recipeID uuid.UUID) (*RecipeSummary, error)
	RemoveFromSet(ctx context.Context, kind models.SetKind, userID, recipeID uuid.UUID) error
	InSet(ctx context.Context, kind models.SetKind, userID, recipeID uuid.UUID) (bool, error)
}

// ISubscriptionService defines the interface for author subscriptions
type ISubscriptionService interface {
	Subscribe(ctx context.Context, followerID, authorID uuid.UUID, recipesLimit int) (*SubscribedAuthor, error)
	Unsubscribe(ctx context.Context, followerID, authorID uuid.UUID) error
	IsSubscribed(ctx context.Context, followerID, authorID uuid.UUID) (bool, error)
	ListFollowedAuthors(ctx context.Context, followerID uuid.UUID, recipesLimit int, page Page) ([]SubscribedAuthor, int64, error)
}

// IShoppingListService defines the interface for shopping list generation
type IShoppingListService interface {
	BuildShoppingList(ctx context.Context, userID uuid.UUID) (*ShoppingList, error)
}

// IShortLinkService defines the interface for recipe short links
type IShortLinkService interface {
	ResolveShortLink(ctx context.Context, code string) (uuid.UUID, error)
	ShortLinkFor(ctx context.Context, recipeID uuid.UUID) (string, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ ICatalogService      = (*CatalogService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IMembershipService   = (*MembershipService)(nil)
	_ ISubscriptionService = (*SubscriptionService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
	_ IShortLinkService    = (*ShortLinkService)(nil)
)
