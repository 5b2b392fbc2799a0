package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// UserRepresentation is a user as seen by a (possibly anonymous) viewer.
type UserRepresentation struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
	Avatar       *string   `json:"avatar"`
}

// IngredientAmount is a materialized recipe line.
type IngredientAmount struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeRepresentation struct {
	ID               uuid.UUID          `json:"id"`
	Tags             []models.Tag       `json:"tags"`
	Author           UserRepresentation `json:"author"`
	Ingredients      []IngredientAmount `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
}

// RecipeSummary is the short form used by membership and subscription responses.
type RecipeSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// SubscribedAuthor is a followed author with a preview of their recipes.
type SubscribedAuthor struct {
	UserRepresentation
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}

// presenter turns models into viewer-relative representations. Flags are
// resolved with one query per flag for the whole batch.
type presenter struct {
	db     *gorm.DB
	images ImageStore
}

func (p *presenter) summary(r *models.Recipe) RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       p.images.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}

func (p *presenter) user(u *models.User, subscribed bool) UserRepresentation {
	rep := UserRepresentation{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
	if u.Avatar != "" {
		url := p.images.URL(u.Avatar)
		rep.Avatar = &url
	}
	return rep
}

func (p *presenter) users(ctx context.Context, viewer *uuid.UUID, users []models.User) ([]UserRepresentation, error) {
	ids := make([]uuid.UUID, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	subscribed, err := p.subscribedTo(ctx, viewer, ids)
	if err != nil {
		return nil, err
	}
	out := make([]UserRepresentation, len(users))
	for i := range users {
		out[i] = p.user(&users[i], subscribed[users[i].ID])
	}
	return out, nil
}

func (p *presenter) recipes(ctx context.Context, viewer *uuid.UUID, recipes []models.Recipe) ([]RecipeRepresentation, error) {
	recipeIDs := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, len(recipes))
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		authorIDs[i] = recipes[i].AuthorID
	}

	favorited, err := p.members(ctx, models.SetFavorite, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := p.members(ctx, models.SetShoppingCart, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := p.subscribedTo(ctx, viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]RecipeRepresentation, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		lines := make([]IngredientAmount, len(r.Ingredients))
		for j, line := range r.Ingredients {
			lines[j] = IngredientAmount{
				ID:              line.IngredientID,
				Name:            line.Ingredient.Name,
				MeasurementUnit: line.Ingredient.MeasurementUnit,
				Amount:          line.Amount,
			}
		}
		tags := r.Tags
		if tags == nil {
			tags = []models.Tag{}
		}
		out[i] = RecipeRepresentation{
			ID:               r.ID,
			Tags:             tags,
			Author:           p.user(&r.Author, subscribed[r.AuthorID]),
			Ingredients:      lines,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            p.images.URL(r.Image),
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
	}
	return out, nil
}

func (p *presenter) members(ctx context.Context, kind models.SetKind, viewer *uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool)
	if viewer == nil || len(recipeIDs) == 0 {
		return set, nil
	}
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).Model(kind.Model()).
		Where("user_id = ? AND recipe_id IN ?", *viewer, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (p *presenter) subscribedTo(ctx context.Context, viewer *uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool)
	if viewer == nil || len(authorIDs) == 0 {
		return set, nil
	}
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("follower_id = ? AND author_id IN ?", *viewer, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
