package store

import (
	"context"
	"errors"

	"nutridash/internal/core"
)

// ErrNotFound reports that the requested user has no profile row.
// Surfaced upstream as a denied-access state, never a crash.
var ErrNotFound = errors.New("store: not found")

// ProfileUpdate is a partial write to a profile row. AvatarURL is a
// pointer so the retry-without-image save path can leave the stored
// avatar untouched.
type ProfileUpdate struct {
	Name         string
	Age          int
	WeightKg     float64
	HeightCm     float64
	GoalCalories float64
	GoalProtein  float64
	AvatarURL    *string
}

// Ports for the external data store. Rows come back as loose
// core.RawRecord maps, exactly as the remote store shapes them; all
// typing happens in the normalizer.
type (
	ProfileStore interface {
		// GetProfile returns the profile row for userID, or ErrNotFound.
		GetProfile(ctx context.Context, userID string) (core.RawRecord, error)

		// UpdateProfile applies a partial update to the profile row.
		UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) error

		// ListUsers returns every profile row (leaderboard input).
		ListUsers(ctx context.Context) ([]core.RawRecord, error)
	}

	MealStore interface {
		// ListMeals returns up to limit meal rows for userID, ordered
		// descending by date.
		ListMeals(ctx context.Context, userID string, limit int) ([]core.RawRecord, error)

		// ListAllMeals returns meal rows across every user
		// (leaderboard input: user id, date, calories).
		ListAllMeals(ctx context.Context) ([]core.RawRecord, error)
	}
)
