package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is a directed follower -> author edge. Self edges are
// rejected by the service layer.
type Subscription struct {
	ID         uint      `gorm:"primaryKey"`
	CreatedAt  time.Time
	FollowerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscription_pair"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_subscription_pair;index"`
	Author     User      `gorm:"foreignKey:AuthorID"`
}
