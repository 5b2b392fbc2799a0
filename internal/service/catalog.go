package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// CatalogService serves the ingredient and tag reference data.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListIngredients returns ingredients whose name starts with namePrefix,
// ignoring case. An empty prefix lists everything.
func (s *CatalogService) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	q := s.db.WithContext(ctx).Order("name").Order("id")
	if namePrefix != "" {
		pattern := likeEscaper.Replace(strings.ToLower(namePrefix)) + "%"
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ingredient, nil
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

// LoadIngredients inserts the ingredients not already present, matching on
// name and unit, and returns how many were added.
func (s *CatalogService) LoadIngredients(ctx context.Context, ingredients []models.Ingredient) (int, error) {
	added := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, in := range ingredients {
			item := models.Ingredient{Name: strings.TrimSpace(in.Name), MeasurementUnit: strings.TrimSpace(in.MeasurementUnit)}
			if item.Name == "" || item.MeasurementUnit == "" {
				return fmt.Errorf("ingredient %q: name and measurement unit are required", in.Name)
			}
			var n int64
			err := tx.Model(&models.Ingredient{}).
				Where("name = ? AND measurement_unit = ?", item.Name, item.MeasurementUnit).
				Count(&n).Error
			if err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("load ingredients: %w", err)
	}
	return added, nil
}

// LoadTags inserts the tags whose slug is not already present and returns how
// many were added.
func (s *CatalogService) LoadTags(ctx context.Context, tags []models.Tag) (int, error) {
	added := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, in := range tags {
			item := models.Tag{Name: strings.TrimSpace(in.Name), Slug: strings.TrimSpace(in.Slug)}
			if item.Name == "" || item.Slug == "" {
				return fmt.Errorf("tag %q: name and slug are required", in.Name)
			}
			var n int64
			if err := tx.Model(&models.Tag{}).Where("slug = ?", item.Slug).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("load tags: %w", err)
	}
	return added, nil
}
