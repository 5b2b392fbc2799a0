package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

type UserService struct {
	db      *gorm.DB
	images  ImageStore
	present *presenter
}

func NewUserService(db *gorm.DB, images ImageStore) *UserService {
	return &UserService{db: db, images: images, present: &presenter{db: db, images: images}}
}

// GetUser returns a user as seen by viewer; a nil viewer is anonymous.
func (s *UserService) GetUser(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*UserRepresentation, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	reps, err := s.present.users(ctx, viewer, []models.User{user})
	if err != nil {
		return nil, err
	}
	return &reps[0], nil
}

func (s *UserService) ListUsers(ctx context.Context, viewer *uuid.UUID, page Page) ([]UserRepresentation, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{}).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var users []models.User
	if err := q.Order("created_at").Order("id").Offset(page.Offset()).Limit(page.Size).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	reps, err := s.present.users(ctx, viewer, users)
	if err != nil {
		return nil, 0, err
	}
	return reps, total, nil
}

// SetAvatar stores a base64 data URI image as the user's avatar and returns
// its URL.
func (s *UserService) SetAvatar(ctx context.Context, userID uuid.UUID, dataURI string) (string, error) {
	if dataURI == "" {
		return "", invalid("avatar", "this field is required")
	}
	img, err := DecodeImage("avatar", dataURI)
	if err != nil {
		return "", err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return "", notFound(err)
	}

	old := user.Avatar
	key, err := s.images.Save(ctx, "avatars", img)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("avatar", key).Error; err != nil {
		discardImage(ctx, s.images, key)
		return "", fmt.Errorf("update avatar: %w", err)
	}
	discardImage(ctx, s.images, old)
	return s.images.URL(key), nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return notFound(err)
	}
	if user.Avatar == "" {
		return nil
	}
	old := user.Avatar
	if err := s.db.WithContext(ctx).Model(&user).Update("avatar", "").Error; err != nil {
		return fmt.Errorf("delete avatar: %w", err)
	}
	discardImage(ctx, s.images, old)
	return nil
}
