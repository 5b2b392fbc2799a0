package models

import (
	"time"

	"github.com/google/uuid"
)

const ShortLinkCodeLength = 10

type ShortLink struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Code      string    `gorm:"size:10;not null;uniqueIndex"`
}
