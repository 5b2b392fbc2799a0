package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// SubscriptionService manages the follower -> author graph.
type SubscriptionService struct {
	db      *gorm.DB
	present *presenter
}

func NewSubscriptionService(db *gorm.DB, images ImageStore) *SubscriptionService {
	return &SubscriptionService{db: db, present: &presenter{db: db, images: images}}
}

// Subscribe makes followerID follow authorID. recipesLimit bounds the recipe
// preview in the result; zero or less means all recipes.
func (s *SubscriptionService) Subscribe(ctx context.Context, followerID, authorID uuid.UUID, recipesLimit int) (*SubscribedAuthor, error) {
	db := s.db.WithContext(ctx)

	var author models.User
	if err := db.First(&author, "id = ?", authorID).Error; err != nil {
		return nil, notFound(err)
	}
	if followerID == authorID {
		return nil, fmt.Errorf("%w: cannot subscribe to yourself", ErrConflict)
	}

	subscribed, err := s.IsSubscribed(ctx, followerID, authorID)
	if err != nil {
		return nil, err
	}
	if subscribed {
		return nil, fmt.Errorf("%w: already subscribed", ErrConflict)
	}

	sub := models.Subscription{FollowerID: followerID, AuthorID: authorID}
	if err := db.Omit("Author").Create(&sub).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: already subscribed", ErrConflict)
		}
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	return s.followedAuthor(ctx, &author, recipesLimit)
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, followerID, authorID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return fmt.Errorf("unsubscribe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: not subscribed", ErrNotFound)
	}
	return nil
}

func (s *SubscriptionService) IsSubscribed(ctx context.Context, followerID, authorID uuid.UUID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListFollowedAuthors returns one page of the authors followerID follows, in
// subscription order, with their newest recipes and recipe counts.
func (s *SubscriptionService) ListFollowedAuthors(ctx context.Context, followerID uuid.UUID, recipesLimit int, page Page) ([]SubscribedAuthor, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("follower_id = ?", followerID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count subscriptions: %w", err)
	}

	var subs []models.Subscription
	if err := q.Preload("Author").Order("id").Offset(page.Offset()).Limit(page.Size).Find(&subs).Error; err != nil {
		return nil, 0, fmt.Errorf("list subscriptions: %w", err)
	}

	out := make([]SubscribedAuthor, 0, len(subs))
	for i := range subs {
		author, err := s.followedAuthor(ctx, &subs[i].Author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *author)
	}
	return out, total, nil
}

func (s *SubscriptionService) followedAuthor(ctx context.Context, author *models.User, recipesLimit int) (*SubscribedAuthor, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count recipes: %w", err)
	}

	q := db.Where("author_id = ?", author.ID).Order("created_at DESC").Order("id")
	if recipesLimit > 0 {
		q = q.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list author recipes: %w", err)
	}

	summaries := make([]RecipeSummary, len(recipes))
	for i := range recipes {
		summaries[i] = s.present.summary(&recipes[i])
	}
	return &SubscribedAuthor{
		UserRepresentation: s.present.user(author, true),
		Recipes:            summaries,
		RecipesCount:       count,
	}, nil
}
