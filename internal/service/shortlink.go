package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	applog "github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
)

const (
	shortCodeCharset     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	shortLinkCachePrefix = "shortlink:"
	shortLinkCacheTTL    = 24 * time.Hour
)

// CodeGenerator produces candidate short codes.
type CodeGenerator func() (string, error)

// GenerateShortCode returns a random alphanumeric code of
// models.ShortLinkCodeLength characters.
func GenerateShortCode() (string, error) {
	result := make([]byte, models.ShortLinkCodeLength)
	for i := range result {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(shortCodeCharset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = shortCodeCharset[num.Int64()]
	}
	return string(result), nil
}

// ShortLinkService owns recipe short links. The Redis cache is optional.
type ShortLinkService struct {
	db       *gorm.DB
	cache    *redis.Client
	generate CodeGenerator
}

func NewShortLinkService(db *gorm.DB, cache *redis.Client) *ShortLinkService {
	return &ShortLinkService{db: db, cache: cache, generate: GenerateShortCode}
}

// create inserts the short link for a new recipe inside tx, drawing new codes
// until one is free. Each attempt runs in a savepoint so a unique violation
// does not abort the outer transaction. Only cancellation of the
// transaction's context stops the loop.
func (s *ShortLinkService) create(tx *gorm.DB, recipeID uuid.UUID) (*models.ShortLink, error) {
	ctx := tx.Statement.Context
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("insert short link: %w", err)
		}
		code, err := s.generate()
		if err != nil {
			return nil, err
		}
		link := models.ShortLink{RecipeID: recipeID, Code: code}
		err = tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(&link).Error
		})
		if err == nil {
			return &link, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("insert short link: %w", ctxErr)
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("insert short link: %w", err)
		}
		metrics.ShortLinkCollisionsTotal.Inc()
		applog.Debug(ctx, "short code collision", "attempt", attempt)
	}
}

// ResolveShortLink returns the recipe a code points to.
func (s *ShortLinkService) ResolveShortLink(ctx context.Context, code string) (uuid.UUID, error) {
	if len(code) != models.ShortLinkCodeLength {
		return uuid.Nil, ErrNotFound
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, shortLinkCachePrefix+code).Result()
		switch {
		case err == nil:
			if id, perr := uuid.Parse(cached); perr == nil {
				return id, nil
			}
		case !errors.Is(err, redis.Nil):
			applog.Warn(ctx, "short link cache read failed", "error", err)
		}
	}

	var link models.ShortLink
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&link).Error; err != nil {
		return uuid.Nil, notFound(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, shortLinkCachePrefix+code, link.RecipeID.String(), shortLinkCacheTTL).Err(); err != nil {
			applog.Warn(ctx, "short link cache write failed", "error", err)
		}
	}
	return link.RecipeID, nil
}

// ShortLinkFor returns the code registered for a recipe.
func (s *ShortLinkService) ShortLinkFor(ctx context.Context, recipeID uuid.UUID) (string, error) {
	var link models.ShortLink
	if err := s.db.WithContext(ctx).Where("recipe_id = ?", recipeID).First(&link).Error; err != nil {
		return "", notFound(err)
	}
	return link.Code, nil
}

func (s *ShortLinkService) forget(ctx context.Context, code string) {
	if s.cache == nil || code == "" {
		return
	}
	if err := s.cache.Del(ctx, shortLinkCachePrefix+code).Err(); err != nil {
		applog.Warn(ctx, "short link cache delete failed", "error", err)
	}
}
