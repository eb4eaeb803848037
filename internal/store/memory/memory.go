package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"nutridash/internal/core"
	"nutridash/internal/store"
)

// Store is a seedable in-memory implementation of the store ports,
// used in development and tests.
type Store struct {
	mu       sync.Mutex
	profiles map[string]core.RawRecord
	meals    []core.RawRecord
}

func New() *Store {
	return &Store{profiles: make(map[string]core.RawRecord)}
}

// SeedProfile installs or replaces a profile row. The row's user id
// field decides the key.
func (s *Store) SeedProfile(r core.RawRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[r.Text(core.FieldUserID)] = r
}

// SeedMeal appends a meal row.
func (s *Store) SeedMeal(r core.RawRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meals = append(s.meals, r)
}

// GetProfile implements store.ProfileStore.
func (s *Store) GetProfile(_ context.Context, userID string) (core.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r, nil
}

// UpdateProfile implements store.ProfileStore.
func (s *Store) UpdateProfile(_ context.Context, userID string, u store.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.profiles[userID]
	if !ok {
		return store.ErrNotFound
	}
	updated := core.RawRecord{}
	for k, v := range r {
		updated[k] = v
	}
	updated[core.FieldName] = u.Name
	updated[core.FieldAge] = u.Age
	updated[core.FieldWeightKg] = u.WeightKg
	updated[core.FieldHeightCm] = u.HeightCm
	updated[core.FieldCalorieGoal] = u.GoalCalories
	updated[core.FieldProteinGoal] = u.GoalProtein
	if u.AvatarURL != nil {
		updated[core.FieldAvatarURL] = *u.AvatarURL
	}
	s.profiles[userID] = updated
	return nil
}

// ListUsers implements store.ProfileStore.
func (s *Store) ListUsers(_ context.Context) ([]core.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RawRecord, 0, len(s.profiles))
	for _, r := range s.profiles {
		out = append(out, r)
	}
	// Map order is random; keep the board input deterministic.
	sort.Slice(out, func(i, j int) bool {
		return out[i].Text(core.FieldUserID) < out[j].Text(core.FieldUserID)
	})
	return out, nil
}

// ListMeals implements store.MealStore.
func (s *Store) ListMeals(_ context.Context, userID string, limit int) ([]core.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.RawRecord
	for _, m := range s.meals {
		if m.Text(core.FieldUserID) == userID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.Compare(out[i].Text(core.FieldDate), out[j].Text(core.FieldDate)) > 0
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListAllMeals implements store.MealStore.
func (s *Store) ListAllMeals(_ context.Context) ([]core.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RawRecord(nil), s.meals...), nil
}
