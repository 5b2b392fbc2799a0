package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSetKind(t *testing.T) {
	user, recipe := uuid.New(), uuid.New()

	assert.True(t, SetFavorite.Valid())
	assert.True(t, SetShoppingCart.Valid())
	assert.False(t, SetKind("wishlist").Valid())

	assert.IsType(t, &Favorite{}, SetFavorite.Model())
	assert.IsType(t, &ShoppingCartItem{}, SetShoppingCart.Model())

	assert.Equal(t, &Favorite{UserID: user, RecipeID: recipe}, SetFavorite.NewRecord(user, recipe))
	assert.Equal(t, &ShoppingCartItem{UserID: user, RecipeID: recipe}, SetShoppingCart.NewRecord(user, recipe))
}

func TestBeforeCreateAssignsIDs(t *testing.T) {
	u := &User{}
	assert.NoError(t, u.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, u.ID)

	fixed := uuid.New()
	r := &Recipe{ID: fixed}
	assert.NoError(t, r.BeforeCreate(nil))
	assert.Equal(t, fixed, r.ID)
}
