package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	applog "github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
)

// IngredientLine is one requested (ingredient, amount) pair.
type IngredientLine struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"min=1,max=32000"`
}

// RecipeInput is the body of a recipe create or update. Image is a base64
// data URI; it may be left empty on update to keep the current image.
type RecipeInput struct {
	Ingredients []IngredientLine `json:"ingredients" validate:"required,min=1,dive"`
	Tags        []uint           `json:"tags" validate:"required,min=1"`
	CookingTime int              `json:"cooking_time" validate:"min=1,max=32000"`
	Name        string           `json:"name" validate:"required,max=256"`
	Text        string           `json:"text" validate:"required"`
	Image       string           `json:"image"`
}

// RecipeFilter narrows ListRecipes. Nil or empty fields do not filter.
type RecipeFilter struct {
	AuthorID    *uuid.UUID
	TagSlugs    []string
	FavoritedBy *uuid.UUID
	InCartOf    *uuid.UUID
}

// RecipeService handles recipe operations
type RecipeService struct {
	db       *gorm.DB
	images   ImageStore
	links    *ShortLinkService
	validate *validator.Validate
	present  *presenter
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images ImageStore, links *ShortLinkService) *RecipeService {
	return &RecipeService{
		db:       db,
		images:   images,
		links:    links,
		validate: newValidator(),
		present:  &presenter{db: db, images: images},
	}
}

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// firstFieldError converts a validator failure into a ValidationError for the
// first offending field.
func firstFieldError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "this field is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			msg = "must not be empty"
		} else {
			msg = "must be at least " + fe.Param()
		}
	case "max":
		msg = "must be at most " + fe.Param()
	case "email":
		msg = "must be a valid email address"
	default:
		msg = "is invalid (" + fe.Tag() + ")"
	}
	return invalid(field, msg)
}

// validateRecipe checks field rules, then that every referenced ingredient
// and tag exists, then that none is repeated. It performs no writes.
func (s *RecipeService) validateRecipe(ctx context.Context, in *RecipeInput, requireImage bool) error {
	if err := s.validate.Struct(in); err != nil {
		return firstFieldError(err)
	}
	if requireImage && in.Image == "" {
		return invalid("image", "this field is required")
	}

	ingredientIDs := make([]uint, len(in.Ingredients))
	for i, line := range in.Ingredients {
		ingredientIDs[i] = line.ID
	}
	uniqueIngredients := distinct(ingredientIDs)
	uniqueTags := distinct(in.Tags)

	db := s.db.WithContext(ctx)
	var found int64
	if err := db.Model(&models.Ingredient{}).Where("id IN ?", uniqueIngredients).Count(&found).Error; err != nil {
		return fmt.Errorf("check ingredients: %w", err)
	}
	if found != int64(len(uniqueIngredients)) {
		return invalid("ingredients", "unknown ingredient id")
	}
	if err := db.Model(&models.Tag{}).Where("id IN ?", uniqueTags).Count(&found).Error; err != nil {
		return fmt.Errorf("check tags: %w", err)
	}
	if found != int64(len(uniqueTags)) {
		return invalid("tags", "unknown tag id")
	}

	if len(uniqueIngredients) != len(ingredientIDs) {
		return invalid("ingredients", "ingredients must not repeat")
	}
	if len(uniqueTags) != len(in.Tags) {
		return invalid("tags", "tags must not repeat")
	}
	return nil
}

func distinct(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *RecipeService) saveImage(ctx context.Context, dataURI string) (string, error) {
	img, err := DecodeImage("image", dataURI)
	if err != nil {
		return "", err
	}
	return s.images.Save(ctx, "recipes", img)
}

// replaceContents swaps the recipe's ingredient lines and tag set for the
// requested ones.
func replaceContents(tx *gorm.DB, recipe *models.Recipe, in *RecipeInput) error {
	if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("delete ingredient lines: %w", err)
	}
	lines := make([]models.RecipeIngredient, len(in.Ingredients))
	for i, line := range in.Ingredients {
		lines[i] = models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: line.ID, Amount: line.Amount}
	}
	if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
		return fmt.Errorf("insert ingredient lines: %w", err)
	}

	var tags []models.Tag
	if err := tx.Where("id IN ?", in.Tags).Find(&tags).Error; err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
		return fmt.Errorf("replace tags: %w", err)
	}
	return nil
}

// CreateRecipe validates the input and stores the recipe, its lines, its tags
// and a fresh short link in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, in *RecipeInput) (*models.Recipe, error) {
	if err := s.validateRecipe(ctx, in, true); err != nil {
		return nil, err
	}
	imageKey, err := s.saveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		Image:       imageKey,
		CookingTime: in.CookingTime,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		if err := replaceContents(tx, &recipe, in); err != nil {
			return err
		}
		_, err := s.links.create(tx, recipe.ID)
		return err
	})
	if err != nil {
		discardImage(ctx, s.images, imageKey)
		return nil, err
	}

	metrics.RecipeWritesTotal.WithLabelValues("create").Inc()
	applog.Info(ctx, "recipe created", "recipe_id", recipe.ID, "author_id", authorID)
	return s.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe replaces a recipe's fields, lines and tags. Only the author
// may update; the author itself never changes.
func (s *RecipeService) UpdateRecipe(ctx context.Context, callerID, recipeID uuid.UUID, in *RecipeInput) (*models.Recipe, error) {
	recipe, err := s.ownedRecipe(ctx, callerID, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.validateRecipe(ctx, in, false); err != nil {
		return nil, err
	}

	oldImage := recipe.Image
	newImage := ""
	if in.Image != "" {
		if newImage, err = s.saveImage(ctx, in.Image); err != nil {
			return nil, err
		}
	}

	updates := map[string]any{
		"name":         in.Name,
		"text":         in.Text,
		"cooking_time": in.CookingTime,
	}
	if newImage != "" {
		updates["image"] = newImage
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(recipe).Omit(clause.Associations).Updates(updates).Error; err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}
		return replaceContents(tx, recipe, in)
	})
	if err != nil {
		discardImage(ctx, s.images, newImage)
		return nil, err
	}
	if newImage != "" {
		discardImage(ctx, s.images, oldImage)
	}

	metrics.RecipeWritesTotal.WithLabelValues("update").Inc()
	return s.GetRecipe(ctx, recipe.ID)
}

// DeleteRecipe removes a recipe together with everything that references it.
func (s *RecipeService) DeleteRecipe(ctx context.Context, callerID, recipeID uuid.UUID) error {
	recipe, err := s.ownedRecipe(ctx, callerID, recipeID)
	if err != nil {
		return err
	}

	var code string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link models.ShortLink
		if err := tx.Where("recipe_id = ?", recipe.ID).Limit(1).Find(&link).Error; err != nil {
			return err
		}
		code = link.Code

		deps := []any{
			&models.RecipeIngredient{},
			&models.Favorite{},
			&models.ShoppingCartItem{},
			&models.ShortLink{},
		}
		for _, dep := range deps {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(dep).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}

	s.links.forget(ctx, code)
	discardImage(ctx, s.images, recipe.Image)
	metrics.RecipeWritesTotal.WithLabelValues("delete").Inc()
	applog.Info(ctx, "recipe deleted", "recipe_id", recipe.ID)
	return nil
}

func (s *RecipeService) ownedRecipe(ctx context.Context, callerID, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, notFound(err)
	}
	if recipe.AuthorID != callerID {
		return nil, ErrForbidden
	}
	return &recipe, nil
}

func withRecipeDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

// GetRecipe retrieves a recipe by ID with its author, tags and lines.
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withRecipeDetails(s.db.WithContext(ctx)).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &recipe, nil
}

// ListRecipes returns one page of recipes, newest first, and the total count.
func (s *RecipeService) ListRecipes(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Recipe{})
	if filter.AuthorID != nil {
		q = q.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		tagged := db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		q = q.Where("recipes.id IN (?)", tagged)
	}
	if filter.FavoritedBy != nil {
		q = q.Where("recipes.id IN (?)", db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", *filter.FavoritedBy))
	}
	if filter.InCartOf != nil {
		q = q.Where("recipes.id IN (?)", db.Model(&models.ShoppingCartItem{}).Select("recipe_id").Where("user_id = ?", *filter.InCartOf))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := withRecipeDetails(q).
		Order("recipes.created_at DESC").Order("recipes.id").
		Offset(page.Offset()).Limit(page.Size).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, total, nil
}

// Represent renders recipes relative to viewer; a nil viewer is anonymous.
func (s *RecipeService) Represent(ctx context.Context, viewer *uuid.UUID, recipes ...models.Recipe) ([]RecipeRepresentation, error) {
	return s.present.recipes(ctx, viewer, recipes)
}
