package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
)

// ShoppingListItem is the summed amount of one ingredient across the cart.
type ShoppingListItem struct {
	IngredientID    uint
	Name            string
	MeasurementUnit string
	Amount          int
}

// ShoppingList holds items in the order their ingredient was first seen.
type ShoppingList struct {
	Items []ShoppingListItem
}

// Text renders one "<name>: <amount> <unit>" line per item.
func (l *ShoppingList) Text() string {
	var b strings.Builder
	for _, item := range l.Items {
		fmt.Fprintf(&b, "%s: %d %s\n", item.Name, item.Amount, item.MeasurementUnit)
	}
	return b.String()
}

// AggregateShoppingList sums ingredient amounts across recipes, keyed by
// ingredient id. Recipes and their lines are visited in slice order.
func AggregateShoppingList(recipes []models.Recipe) *ShoppingList {
	list := &ShoppingList{}
	index := make(map[uint]int)
	for _, recipe := range recipes {
		for _, line := range recipe.Ingredients {
			if i, ok := index[line.IngredientID]; ok {
				list.Items[i].Amount += line.Amount
				continue
			}
			index[line.IngredientID] = len(list.Items)
			list.Items = append(list.Items, ShoppingListItem{
				IngredientID:    line.IngredientID,
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			})
		}
	}
	return list
}

type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// BuildShoppingList aggregates every recipe in the user's cart, in the
// order the recipes were added.
func (s *ShoppingListService) BuildShoppingList(ctx context.Context, userID uuid.UUID) (*ShoppingList, error) {
	db := s.db.WithContext(ctx)

	var recipeIDs []uuid.UUID
	err := db.Model(&models.ShoppingCartItem{}).
		Where("user_id = ?", userID).
		Order("id").
		Pluck("recipe_id", &recipeIDs).Error
	if err != nil {
		return nil, fmt.Errorf("load shopping cart: %w", err)
	}
	if len(recipeIDs) == 0 {
		metrics.ShoppingListItems.Observe(0)
		return &ShoppingList{}, nil
	}

	var recipes []models.Recipe
	err = db.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient").
		Where("id IN ?", recipeIDs).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("load cart recipes: %w", err)
	}

	byID := make(map[uuid.UUID]models.Recipe, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
	}
	ordered := make([]models.Recipe, 0, len(recipes))
	for _, id := range recipeIDs {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}

	list := AggregateShoppingList(ordered)
	metrics.ShoppingListItems.Observe(float64(len(list.Items)))
	return list, nil
}
