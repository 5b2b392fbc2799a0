package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

// TestPostgresRecipeFlow runs the write paths that depend on savepoints and
// unique-violation translation against a real PostgreSQL server.
func TestPostgresRecipeFlow(t *testing.T) {
	db := testhelpers.SetupPostgresDB(t)
	ctx := context.Background()

	root := t.TempDir()
	images, err := NewLocalImageStore(root, "http://testserver")
	require.NoError(t, err)
	links := NewShortLinkService(db, nil)
	recipes := NewRecipeService(db, images, links)
	catalog := NewCatalogService(db)

	_, err = catalog.LoadIngredients(ctx, []models.Ingredient{
		{Name: "Salt", MeasurementUnit: "g"},
		{Name: "salted butter", MeasurementUnit: "g"},
		{Name: "Flour", MeasurementUnit: "g"},
	})
	require.NoError(t, err)
	found, err := catalog.ListIngredients(ctx, "SAL")
	require.NoError(t, err)
	require.Len(t, found, 2)

	tag := testhelpers.CreateTag(t, db, "Lunch", "lunch")
	author := testhelpers.CreateUser(t, db, "pgchef")
	in := &RecipeInput{
		Ingredients: []IngredientLine{{ID: found[0].ID, Amount: 3}},
		Tags:        []uint{tag.ID},
		CookingTime: 10,
		Name:        "Salted bread",
		Text:        "Mix and bake.",
		Image:       testhelpers.PNGDataURI,
	}

	links.generate = sequence("PGPGPGPGPG")
	first, err := recipes.CreateRecipe(ctx, author.ID, in)
	require.NoError(t, err)

	links.generate = sequence("PGPGPGPGPG", "QQQQQQQQQQ")
	second, err := recipes.CreateRecipe(ctx, author.ID, in)
	require.NoError(t, err)
	code, err := links.ShortLinkFor(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "QQQQQQQQQQ", code)

	memberships := NewMembershipService(db, images)
	_, err = memberships.AddToSet(ctx, models.SetShoppingCart, author.ID, first.ID)
	require.NoError(t, err)
	_, err = memberships.AddToSet(ctx, models.SetShoppingCart, author.ID, first.ID)
	assert.True(t, errors.Is(err, ErrConflict))
	_, err = memberships.AddToSet(ctx, models.SetShoppingCart, author.ID, second.ID)
	require.NoError(t, err)

	list, err := NewShoppingListService(db).BuildShoppingList(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Salt: 6 g\n", list.Text())
}
