package domain

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a catalog entry for a place that can be favorited or planned.
// PlaceID is unique across the catalog.
type Activity struct {
	ID        uuid.UUID
	Name      string
	PlaceID   string
	Type      string
	Available bool
	CreatedAt time.Time
}

// Favorite is a user's bookmark of a catalog activity.
type Favorite struct {
	ID         uuid.UUID
	UserID     string
	ActivityID uuid.UUID
	Activity   Activity
	CreatedAt  time.Time
}
