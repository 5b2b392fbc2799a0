package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// MembershipService manages the per-user favorite and shopping cart sets.
type MembershipService struct {
	db      *gorm.DB
	present *presenter
}

func NewMembershipService(db *gorm.DB, images ImageStore) *MembershipService {
	return &MembershipService{db: db, present: &presenter{db: db, images: images}}
}

// AddToSet puts recipeID in the user's kind set. Adding a recipe twice is
// ErrConflict.
func (s *MembershipService) AddToSet(ctx context.Context, kind models.SetKind, userID, recipeID uuid.UUID) (*RecipeSummary, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown set %q", kind)
	}
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, notFound(err)
	}

	var n int64
	if err := db.Model(kind.Model()).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("check %s: %w", kind, err)
	}
	if n > 0 {
		return nil, fmt.Errorf("%w: recipe already in %s", ErrConflict, kind)
	}

	if err := db.Create(kind.NewRecord(userID, recipeID)).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: recipe already in %s", ErrConflict, kind)
		}
		return nil, fmt.Errorf("add to %s: %w", kind, err)
	}

	summary := s.present.summary(&recipe)
	return &summary, nil
}

// RemoveFromSet takes recipeID out of the user's kind set, or returns
// ErrNotFound when it was not there.
func (s *MembershipService) RemoveFromSet(ctx context.Context, kind models.SetKind, userID, recipeID uuid.UUID) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown set %q", kind)
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(kind.Model())
	if res.Error != nil {
		return fmt.Errorf("remove from %s: %w", kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: recipe not in %s", ErrNotFound, kind)
	}
	return nil
}

func (s *MembershipService) InSet(ctx context.Context, kind models.SetKind, userID, recipeID uuid.UUID) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("unknown set %q", kind)
	}
	var n int64
	err := s.db.WithContext(ctx).Model(kind.Model()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
