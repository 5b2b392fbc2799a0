package testhelpers

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// PNGDataURI is a 1x1 transparent PNG encoded as a data URI.
const PNGDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "not-a-real-hash",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

func CreateTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag %s: %v", name, err)
	}
	return tag
}

// RecipeLine is an (ingredient, amount) pair for CreateRecipe.
type RecipeLine struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe directly, bypassing validation. createdAt
// orders recipes in listings.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, createdAt time.Time, tags []*models.Tag, lines ...RecipeLine) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		CreatedAt:   createdAt,
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Mix and serve.",
		Image:       "recipes/" + name + ".png",
		CookingTime: 10,
	}
	if err := db.Omit("Author", "Ingredients", "Tags").Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}
	for _, line := range lines {
		ri := &models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: line.Ingredient.ID, Amount: line.Amount}
		if err := db.Omit("Ingredient").Create(ri).Error; err != nil {
			t.Fatalf("failed to create recipe line: %v", err)
		}
	}
	if len(tags) > 0 {
		if err := db.Model(recipe).Association("Tags").Append(tags); err != nil {
			t.Fatalf("failed to tag recipe: %v", err)
		}
	}
	return recipe
}
