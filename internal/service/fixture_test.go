package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

type fixture struct {
	db            *gorm.DB
	images        *LocalImageStore
	mediaRoot     string
	links         *ShortLinkService
	recipes       *RecipeService
	memberships   *MembershipService
	subscriptions *SubscriptionService
	shopping      *ShoppingListService
	users         *UserService
	catalog       *CatalogService

	salt   *models.Ingredient
	flour  *models.Ingredient
	butter *models.Ingredient
	lunch  *models.Tag
	dinner *models.Tag
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	root := t.TempDir()
	images, err := NewLocalImageStore(root, "http://testserver")
	require.NoError(t, err)

	links := NewShortLinkService(db, nil)
	return &fixture{
		db:            db,
		images:        images,
		mediaRoot:     root,
		links:         links,
		recipes:       NewRecipeService(db, images, links),
		memberships:   NewMembershipService(db, images),
		subscriptions: NewSubscriptionService(db, images),
		shopping:      NewShoppingListService(db),
		users:         NewUserService(db, images),
		catalog:       NewCatalogService(db),

		salt:   testhelpers.CreateIngredient(t, db, "Salt", "g"),
		flour:  testhelpers.CreateIngredient(t, db, "Flour", "g"),
		butter: testhelpers.CreateIngredient(t, db, "Butter", "tbsp"),
		lunch:  testhelpers.CreateTag(t, db, "Lunch", "lunch"),
		dinner: testhelpers.CreateTag(t, db, "Dinner", "dinner"),
	}
}

// input builds a valid create body using the fixture's catalog.
func (f *fixture) input() *RecipeInput {
	return &RecipeInput{
		Ingredients: []IngredientLine{
			{ID: f.salt.ID, Amount: 5},
			{ID: f.flour.ID, Amount: 200},
		},
		Tags:        []uint{f.lunch.ID},
		CookingTime: 15,
		Name:        "Flatbread",
		Text:        "Knead and bake.",
		Image:       testhelpers.PNGDataURI,
	}
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

// sequence returns a generator yielding codes in order, then fresh ones.
func sequence(codes ...string) CodeGenerator {
	i := 0
	return func() (string, error) {
		if i < len(codes) {
			i++
			return codes[i-1], nil
		}
		return GenerateShortCode()
	}
}
