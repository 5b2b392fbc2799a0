package models

import (
	"time"

	"github.com/google/uuid"
)

// SetKind selects one of the per-user recipe collections.
type SetKind string

const (
	SetFavorite     SetKind = "favorite"
	SetShoppingCart SetKind = "shopping_cart"
)

// Valid reports whether k names a known collection.
func (k SetKind) Valid() bool {
	return k == SetFavorite || k == SetShoppingCart
}

// Model returns an empty record of the table backing k, for use with
// gorm's Model/Delete.
func (k SetKind) Model() any {
	if k == SetShoppingCart {
		return &ShoppingCartItem{}
	}
	return &Favorite{}
}

// NewRecord builds the record marking recipeID as a member of userID's set.
func (k SetKind) NewRecord(userID, recipeID uuid.UUID) any {
	if k == SetShoppingCart {
		return &ShoppingCartItem{UserID: userID, RecipeID: recipeID}
	}
	return &Favorite{UserID: userID, RecipeID: recipeID}
}

type Favorite struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_recipe;index"`
}

type ShoppingCartItem struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_recipe"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_recipe;index"`
}
