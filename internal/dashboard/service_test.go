package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"nutridash/internal/core"
	"nutridash/internal/store"
	"nutridash/internal/store/memory"
)

func seedStore() *memory.Store {
	s := memory.New()
	s.SeedProfile(core.RawRecord{
		"user_id":      "1",
		"name":         "Alex",
		"calorie_goal": 2000.0,
		"protein_goal": 150.0,
	})
	s.SeedProfile(core.RawRecord{
		"user_id":      "2",
		"name":         "Bruna",
		"calorie_goal": 2500.0,
	})
	s.SeedMeal(core.RawRecord{
		"id": "m1", "user_id": "1", "date": "2025-11-06T19:45:00",
		"name": "Salmon & Asparagus", "calories": 520.0, "protein": 40.0, "carbs": 10.0, "fat": 32.0,
	})
	s.SeedMeal(core.RawRecord{
		"id": "m2", "user_id": "1", "date": "2025-11-05T08:30:00",
		"name": "Oatmeal with Berries", "calories": 350.0, "protein": 12.0, "carbs": 55.0, "fat": 6.0,
	})
	s.SeedMeal(core.RawRecord{
		"id": "m3", "user_id": "1", "date": "2025-10-01T12:00:00",
		"name": "Old Lunch", "calories": 900.0,
	})
	s.SeedMeal(core.RawRecord{
		"id": "m4", "user_id": "2", "date": "2025-11-05T13:00:00",
		"name": "Feijoada", "calories": 750.0,
	})
	return s
}

func TestSessionRefresh(t *testing.T) {
	mem := seedStore()
	svc := NewService(mem, mem, core.Monthly, nil)

	snap, err := svc.Session("1").Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if snap.Profile.Name != "Alex" || snap.Profile.GoalCalories != 2000 {
		t.Fatalf("unexpected profile: %+v", snap.Profile)
	}
	if snap.Profile.AvatarURL == "" {
		t.Fatal("missing avatar should be replaced by the generated fallback")
	}

	// Period comes from the most recent meal, November 2025.
	if snap.Period.Key != "2025-11" || snap.Period.Days != 30 {
		t.Fatalf("unexpected period: %+v", snap.Period)
	}

	// Only the two November meals count; the October one is filtered.
	if len(snap.Meals) != 2 {
		t.Fatalf("expected 2 meals, got %d", len(snap.Meals))
	}
	if snap.Totals.Calories != 870 || snap.Totals.Protein != 52 {
		t.Fatalf("unexpected totals: %+v", snap.Totals)
	}

	if snap.Goals.Calories != 60000 || snap.Goals.Protein != 4500 {
		t.Fatalf("unexpected goals: %+v", snap.Goals)
	}
	if snap.RemainingCalories != 59130 {
		t.Fatalf("RemainingCalories = %v, expected 59130", snap.RemainingCalories)
	}

	if len(snap.Leaderboard) != 2 {
		t.Fatalf("expected 2 board entries, got %d", len(snap.Leaderboard))
	}
	var viewer *core.LeaderboardEntry
	for i := range snap.Leaderboard {
		if snap.Leaderboard[i].IsCurrentUser {
			viewer = &snap.Leaderboard[i]
		}
	}
	if viewer == nil || viewer.Name != "Alex" {
		t.Fatalf("viewer row missing from board: %+v", snap.Leaderboard)
	}
	// 870 consumed against 60000: round(870/60000*1000) = 15.
	if viewer.Score != 15 {
		t.Fatalf("viewer score = %d, expected 15", viewer.Score)
	}
}

func TestSessionRefreshDeniedWithoutProfile(t *testing.T) {
	mem := memory.New()
	svc := NewService(mem, mem, core.Monthly, nil)

	_, err := svc.Session("ghost").Refresh(context.Background())
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

// failingMealStore serves per-user reads but fails the cross-user
// scan, which should degrade the board rather than the refresh.
type failingMealStore struct {
	inner store.MealStore
}

func (f *failingMealStore) ListMeals(ctx context.Context, userID string, limit int) ([]core.RawRecord, error) {
	return f.inner.ListMeals(ctx, userID, limit)
}

func (f *failingMealStore) ListAllMeals(context.Context) ([]core.RawRecord, error) {
	return nil, errors.New("scan unavailable")
}

func TestSessionRefreshEmptyBoardOnLeaderboardFailure(t *testing.T) {
	mem := seedStore()
	svc := NewService(mem, &failingMealStore{inner: mem}, core.Monthly, nil)

	snap, err := svc.Session("1").Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh should survive a board failure: %v", err)
	}
	if len(snap.Leaderboard) != 0 {
		t.Fatalf("expected empty board, got %+v", snap.Leaderboard)
	}
	if len(snap.Meals) != 2 {
		t.Fatalf("own meals must still be served: %+v", snap.Meals)
	}
}

func TestHandleMealInserted(t *testing.T) {
	mem := seedStore()
	svc := NewService(mem, mem, core.Monthly, nil)

	if _, err := svc.Session("1").Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	push := core.RawRecord{
		"id": "m9", "user_id": "1", "date": "2025-11-07T12:00:00",
		"name": "Grilled Chicken Salad", "calories": 450.0, "protein": 45.0,
	}
	svc.HandleMealInserted("1", push)

	snap := svc.Session("1").Snapshot()
	if len(snap.Meals) != 3 || snap.Meals[0].ID != "m9" {
		t.Fatalf("pushed meal should be prepended: %+v", snap.Meals)
	}
	if snap.Totals.Calories != 1320 {
		t.Fatalf("Totals.Calories = %v, expected 1320", snap.Totals.Calories)
	}

	// Replaying the same insert changes nothing.
	svc.HandleMealInserted("1", push)
	if got := svc.Session("1").Snapshot(); len(got.Meals) != 3 {
		t.Fatalf("duplicate push must be idempotent: %d meals", len(got.Meals))
	}

	// A record outside the active period is dropped.
	svc.HandleMealInserted("1", core.RawRecord{
		"id": "m10", "user_id": "1", "date": "2025-12-01T08:00:00", "calories": 300.0,
	})
	if got := svc.Session("1").Snapshot(); len(got.Meals) != 3 {
		t.Fatalf("out-of-period push must be dropped: %d meals", len(got.Meals))
	}
}

func TestHandleMealInsertedWithoutSession(t *testing.T) {
	mem := seedStore()
	svc := NewService(mem, mem, core.Monthly, nil)

	// No session for user 2 yet; the push is dropped, not queued.
	svc.HandleMealInserted("2", core.RawRecord{
		"id": "m9", "user_id": "2", "date": "2025-11-07", "calories": 450.0,
	})

	snap, err := svc.Session("2").Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	for _, m := range snap.Meals {
		if m.ID == "m9" {
			t.Fatal("dropped push must not appear after a later refresh")
		}
	}
}

func TestMergeBeforeRefreshIsIgnored(t *testing.T) {
	mem := seedStore()
	svc := NewService(mem, mem, core.Monthly, nil)

	// Touch the session without refreshing it.
	sess := svc.Session("1")
	svc.HandleMealInserted("1", core.RawRecord{
		"id": "m9", "user_id": "1", "date": "2025-11-07", "calories": 450.0,
	})
	if sess.Snapshot().Totals.Calories != 0 {
		t.Fatal("merge before the first refresh should be a no-op")
	}
}

func TestSaveProfile(t *testing.T) {
	mem := seedStore()
	svc := NewService(mem, mem, core.Monthly, nil)
	sess := svc.Session("1")

	saved, err := sess.SaveProfile(context.Background(), core.UserProfile{
		ID: "1", Name: "Alex S.", Age: 29, GoalCalories: 2200, GoalProtein: 160,
		AvatarURL: "https://example.com/a.png",
	})
	if err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}
	if !saved {
		t.Fatal("avatar should have been saved on the first attempt")
	}

	snap, err := sess.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if snap.Profile.Name != "Alex S." || snap.Profile.GoalCalories != 2200 {
		t.Fatalf("profile edits not persisted: %+v", snap.Profile)
	}
	if snap.Profile.AvatarURL != "https://example.com/a.png" {
		t.Fatalf("avatar not persisted: %q", snap.Profile.AvatarURL)
	}
}

// oversizedAvatarStore rejects updates carrying an avatar, mimicking a
// store that bounces oversized image payloads.
type oversizedAvatarStore struct {
	*memory.Store
}

func (o *oversizedAvatarStore) UpdateProfile(ctx context.Context, userID string, u store.ProfileUpdate) error {
	if u.AvatarURL != nil {
		return errors.New("value too large")
	}
	return o.Store.UpdateProfile(ctx, userID, u)
}

func TestSaveProfileRetriesWithoutAvatar(t *testing.T) {
	mem := seedStore()
	svc := NewService(&oversizedAvatarStore{Store: mem}, mem, core.Monthly, nil)

	saved, err := svc.Session("1").SaveProfile(context.Background(), core.UserProfile{
		ID: "1", Name: "Alex S.", GoalCalories: 2200, AvatarURL: "data:image/png;base64,xxxx",
	})
	if err != nil {
		t.Fatalf("retry without avatar should succeed: %v", err)
	}
	if saved {
		t.Fatal("avatar cannot have been saved when the full write failed")
	}
}

func sessionCount(svc *Service) int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return len(svc.sessions)
}

func TestDeniedRequestsDoNotRetainSessions(t *testing.T) {
	mem := memory.New()
	svc := NewService(mem, mem, core.Monthly, nil)

	for i := 0; i < 1000; i++ {
		_, err := svc.Session(fmt.Sprintf("ghost-%d", i)).Refresh(context.Background())
		if !errors.Is(err, ErrAccessDenied) {
			t.Fatalf("expected ErrAccessDenied, got %v", err)
		}
	}
	if n := sessionCount(svc); n != 0 {
		t.Fatalf("sessions retained after denied requests: %d", n)
	}
}

func TestSessionRegisteredOnlyAfterRefresh(t *testing.T) {
	mem := seedStore()
	svc := NewService(mem, mem, core.Monthly, nil)

	sess := svc.Session("1")
	if n := sessionCount(svc); n != 0 {
		t.Fatalf("unrefreshed session must not be registered, got %d", n)
	}

	if _, err := sess.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if n := sessionCount(svc); n != 1 {
		t.Fatalf("refreshed session must be registered, got %d", n)
	}
	if svc.Session("1") != sess {
		t.Fatal("registered session should be reused")
	}
}

func TestIdleSessionsEvicted(t *testing.T) {
	mem := seedStore()
	svc := NewService(mem, mem, core.Monthly, nil)
	current := time.Date(2025, time.November, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }

	first := svc.Session("1")
	if _, err := first.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// Another viewer arrives after the TTL; registering them sweeps
	// the idle session out.
	current = current.Add(sessionIdleTTL + time.Minute)
	if _, err := svc.Session("2").Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if n := sessionCount(svc); n != 1 {
		t.Fatalf("expected only the fresh session, got %d", n)
	}
	if svc.Session("1") == first {
		t.Fatal("evicted session should not be reused")
	}
}

func TestActiveSessionsSurviveSweep(t *testing.T) {
	mem := seedStore()
	svc := NewService(mem, mem, core.Monthly, nil)
	current := time.Date(2025, time.November, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }

	first := svc.Session("1")
	if _, err := first.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// A merge inside the TTL window counts as activity.
	current = current.Add(sessionIdleTTL - time.Minute)
	svc.HandleMealInserted("1", core.RawRecord{
		"id": "m9", "user_id": "1", "date": "2025-11-07", "calories": 100.0,
	})

	current = current.Add(30 * time.Minute)
	if _, err := svc.Session("2").Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if svc.Session("1") != first {
		t.Fatal("recently active session must survive the sweep")
	}
}
