package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"nutridash/internal/core"
	"nutridash/internal/log"
	"nutridash/internal/store"
)

// PeriodView is the resolved reporting period as presented to
// clients.
type PeriodView struct {
	Key     string `json:"key"`
	Display string `json:"display"`
	Days    int    `json:"days"`
}

// Snapshot is one fully assembled dashboard view.
type Snapshot struct {
	Profile           core.UserProfile        `json:"profile"`
	Period            PeriodView              `json:"period"`
	Meals             []core.MealEntry        `json:"meals"`
	Totals            core.MacroTotals        `json:"totals"`
	Goals             core.PeriodGoals        `json:"goals"`
	RemainingCalories float64                 `json:"remaining_calories"`
	Leaderboard       []core.LeaderboardEntry `json:"leaderboard"`
}

// Session is the per-viewer state container: the active period, the
// meal collection for it, and the last computed goals and board.
// Refresh replaces everything wholesale; MergeEntry prepends pushed
// records incrementally.
type Session struct {
	svc      *Service
	viewerID string

	mu          sync.Mutex
	period      core.Period
	set         *core.MealSet
	profile     core.UserProfile
	goals       core.PeriodGoals
	leaderboard []core.LeaderboardEntry
	refreshed   bool
	active      time.Time
}

func newSession(svc *Service, viewerID string) *Session {
	return &Session{
		svc:      svc,
		viewerID: viewerID,
		set:      core.NewMealSet(),
		active:   svc.now(),
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.active = now
	s.mu.Unlock()
}

func (s *Session) lastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Refresh runs the full fetch pipeline: profile, then meals, then —
// with the period derived from the meals — the leaderboard inputs.
// Profile absence and store failures surface as ErrAccessDenied; a
// leaderboard fetch failure degrades to an empty board. The first
// successful refresh registers the session with the service so pushed
// records can reach it.
func (s *Session) Refresh(ctx context.Context) (*Snapshot, error) {
	profileRow, err := s.svc.profiles.GetProfile(ctx, s.viewerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: no profile for id %s", ErrAccessDenied, s.viewerID)
		}
		return nil, fmt.Errorf("%w: fetch profile: %v", ErrAccessDenied, err)
	}
	profile := core.ProfileFromRecord(s.viewerID, profileRow)
	if profile.AvatarURL == "" {
		profile.AvatarURL = core.AvatarFallbackURL(profile.Name)
	}

	mealRows, err := s.svc.meals.ListMeals(ctx, s.viewerID, mealFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch meals: %v", ErrAccessDenied, err)
	}

	period := core.ResolvePeriod(s.svc.mode, mealRows, s.svc.now())
	entries, _ := core.AggregateMeals(mealRows, period.Key())
	goals := core.ProjectGoals(profile.GoalCalories, profile.GoalProtein, period.Days)

	board := s.fetchLeaderboard(ctx, period)

	s.mu.Lock()
	s.period = period
	s.profile = profile
	s.goals = goals
	s.leaderboard = board
	s.set.ReplaceAll(period.Key(), entries)
	s.refreshed = true
	s.active = s.svc.now()
	s.mu.Unlock()

	s.svc.register(s)

	return s.Snapshot(), nil
}

// fetchLeaderboard pulls the cross-user inputs concurrently and
// ranks them. Any failure yields an empty board — a recoverable,
// non-fatal condition, not an error screen.
func (s *Session) fetchLeaderboard(ctx context.Context, period core.Period) []core.LeaderboardEntry {
	var (
		userRows []core.RawRecord
		mealRows []core.RawRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		userRows, err = s.svc.profiles.ListUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		mealRows, err = s.svc.meals.ListAllMeals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.svc.logger.Warn("Leaderboard inputs unavailable, serving empty board",
			"error", err,
			log.FieldPeriod, period.Key())
		return []core.LeaderboardEntry{}
	}

	users := make([]core.LeaderboardUser, 0, len(userRows))
	for _, r := range userRows {
		users = append(users, core.LeaderboardUser{
			ID:        r.Text(core.FieldUserID),
			Name:      r.Text(core.FieldName),
			DailyGoal: r.Number(core.FieldCalorieGoal),
			AvatarURL: r.Text(core.FieldAvatarURL),
		})
	}
	return core.RankLeaderboard(users, mealRows, period.Key(), period.Days, s.viewerID)
}

// MergeEntry merges one pushed entry into the collection. Reports
// whether the view changed.
func (s *Session) MergeEntry(e core.MealEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refreshed {
		return false
	}
	s.active = s.svc.now()
	return s.set.MergeOne(e)
}

// Snapshot assembles the current view from held state.
func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := s.set.Totals()
	board := s.leaderboard
	if board == nil {
		board = []core.LeaderboardEntry{}
	}
	meals := s.set.Entries()
	if meals == nil {
		meals = []core.MealEntry{}
	}
	return &Snapshot{
		Profile: s.profile,
		Period: PeriodView{
			Key:     s.period.Key(),
			Display: s.period.Display(),
			Days:    s.period.Days,
		},
		Meals:             meals,
		Totals:            totals,
		Goals:             s.goals,
		RemainingCalories: core.RemainingCalories(s.goals, totals),
		Leaderboard:       board,
	}
}

// SaveProfile applies the viewer's profile edits using the two-stage
// write: first the full update including the avatar, then — if that
// fails, typically on an oversized image value — a retry without the
// avatar field. Reports whether the avatar made it through.
func (s *Session) SaveProfile(ctx context.Context, p core.UserProfile) (avatarSaved bool, err error) {
	avatar := p.AvatarURL
	full := store.ProfileUpdate{
		Name:         p.Name,
		Age:          p.Age,
		WeightKg:     p.WeightKg,
		HeightCm:     p.HeightCm,
		GoalCalories: p.GoalCalories,
		GoalProtein:  p.GoalProtein,
		AvatarURL:    &avatar,
	}

	if err := s.svc.profiles.UpdateProfile(ctx, s.viewerID, full); err == nil {
		s.setProfile(p)
		return true, nil
	} else if errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("%w: no profile for id %s", ErrAccessDenied, s.viewerID)
	} else {
		s.svc.logger.Warn("Full profile save failed, retrying without avatar",
			log.FieldUserID, s.viewerID,
			"error", err)
	}

	retry := full
	retry.AvatarURL = nil
	if err := s.svc.profiles.UpdateProfile(ctx, s.viewerID, retry); err != nil {
		return false, fmt.Errorf("save profile: %w", err)
	}

	saved := p
	saved.AvatarURL = ""
	s.setProfile(saved)
	return false, nil
}

func (s *Session) setProfile(p core.UserProfile) {
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
}
