package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestListIngredients(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	catalog := NewCatalogService(db)
	ctx := context.Background()

	testhelpers.CreateIngredient(t, db, "Sugar", "g")
	testhelpers.CreateIngredient(t, db, "salt", "g")
	testhelpers.CreateIngredient(t, db, "Sea salt", "g")
	testhelpers.CreateIngredient(t, db, "100% juice", "ml")

	all, err := catalog.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	found, err := catalog.ListIngredients(ctx, "S")
	require.NoError(t, err)
	var names []string
	for _, in := range found {
		names = append(names, in.Name)
	}
	assert.ElementsMatch(t, []string{"Sugar", "salt", "Sea salt"}, names)

	found, err = catalog.ListIngredients(ctx, "SAL")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "salt", found[0].Name)

	found, err = catalog.ListIngredients(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCatalogLookups(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	catalog := NewCatalogService(db)
	ctx := context.Background()

	salt := testhelpers.CreateIngredient(t, db, "Salt", "g")
	lunch := testhelpers.CreateTag(t, db, "Lunch", "lunch")

	got, err := catalog.GetIngredient(ctx, salt.ID)
	require.NoError(t, err)
	assert.Equal(t, "g", got.MeasurementUnit)
	_, err = catalog.GetIngredient(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	tag, err := catalog.GetTag(ctx, lunch.ID)
	require.NoError(t, err)
	assert.Equal(t, "lunch", tag.Slug)
	_, err = catalog.GetTag(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	tags, err := catalog.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestLoadCatalog(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	catalog := NewCatalogService(db)
	ctx := context.Background()

	ingredients := []models.Ingredient{
		{Name: "Salt", MeasurementUnit: "g"},
		{Name: "Salt", MeasurementUnit: "pinch"},
	}
	added, err := catalog.LoadIngredients(ctx, ingredients)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = catalog.LoadIngredients(ctx, ingredients)
	require.NoError(t, err)
	assert.Zero(t, added)

	_, err = catalog.LoadIngredients(ctx, []models.Ingredient{{Name: "Pepper"}})
	assert.Error(t, err)

	tags := []models.Tag{{Name: "Breakfast", Slug: "breakfast"}, {Name: "Dinner", Slug: "dinner"}}
	added, err = catalog.LoadTags(ctx, tags)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	added, err = catalog.LoadTags(ctx, tags)
	require.NoError(t, err)
	assert.Zero(t, added)
}
