package core

import (
	"math"
	"sort"
	"strings"
)

// scoreScale is the gamified score ceiling for a user exactly on
// goal: score = consumption/goal * 1000. One scale is used for the
// whole deployment regardless of period mode.
const scoreScale = 1000

// defaultDailyGoal stands in for users whose calorie goal is missing
// or zero so they still appear on the board.
const defaultDailyGoal = 2000

// LeaderboardUser is the slice of a profile the ranker needs.
type LeaderboardUser struct {
	ID        string
	Name      string
	DailyGoal float64
	AvatarURL string
}

// LeaderboardEntry is one ranked row. Recomputed wholesale on every
// refresh, never mutated in place.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	Name          string `json:"name"`
	Score         int    `json:"score"`
	IsCurrentUser bool   `json:"is_current_user"`
	AvatarURL     string `json:"avatar_url"`
}

// RankLeaderboard scores every user's period consumption against
// their period goal and returns the board ordered by score, ranks
// dense and 1-based. meals spans all users; rows are matched to the
// period by the same date-prefix rule the aggregator uses. Ties keep
// input order (stable sort).
func RankLeaderboard(users []LeaderboardUser, meals []RawRecord, periodKey string, days int, viewerID string) []LeaderboardEntry {
	if days < 1 {
		days = 1
	}

	periodCalories := make(map[string]float64)
	for _, m := range meals {
		date := m.Text(FieldDate)
		if date == "" || !strings.HasPrefix(date, periodKey) {
			continue
		}
		uid := m.Text(FieldUserID)
		periodCalories[uid] += m.Number(FieldCalories)
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		dailyGoal := u.DailyGoal
		if dailyGoal <= 0 {
			dailyGoal = defaultDailyGoal
		}
		periodGoal := dailyGoal * float64(days)

		score := 0
		if periodGoal > 0 {
			score = int(math.Round(periodCalories[u.ID] / periodGoal * scoreScale))
		}

		name := u.Name
		if name == "" {
			name = "user"
		}
		avatar := u.AvatarURL
		if avatar == "" {
			avatar = AvatarFallbackURL(name)
		}
		entries = append(entries, LeaderboardEntry{
			Name:          name,
			Score:         score,
			IsCurrentUser: u.ID == viewerID,
			AvatarURL:     avatar,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
