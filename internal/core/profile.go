package core

import "net/url"

// Defaults applied when the external profile row is absent or
// partial.
const (
	defaultGoalCalories = 2000
	defaultGoalProtein  = 120
)

// UserProfile is the dashboard owner's profile. Mutated only through
// an explicit save; reads overlay store fields onto defaults.
type UserProfile struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Age          int     `json:"age"`
	WeightKg     float64 `json:"weight_kg"`
	HeightCm     float64 `json:"height_cm"`
	GoalCalories float64 `json:"goal_calories"`
	GoalProtein  float64 `json:"goal_protein"`
	AvatarURL    string  `json:"avatar_url"`
}

// DefaultProfile returns the baseline profile for a user id.
func DefaultProfile(id string) UserProfile {
	return UserProfile{
		ID:           id,
		GoalCalories: defaultGoalCalories,
		GoalProtein:  defaultGoalProtein,
	}
}

// ProfileFromRecord overlays whatever fields the raw store row
// carries onto the defaults. Missing or malformed fields keep their
// default; the avatar may legitimately be absent.
func ProfileFromRecord(id string, r RawRecord) UserProfile {
	p := DefaultProfile(id)
	if name := r.Text(FieldName); name != "" {
		p.Name = name
	}
	if age := r.Number(FieldAge); age > 0 {
		p.Age = int(age)
	}
	if w := r.Number(FieldWeightKg); w > 0 {
		p.WeightKg = w
	}
	if h := r.Number(FieldHeightCm); h > 0 {
		p.HeightCm = h
	}
	if cals := r.Number(FieldCalorieGoal); cals > 0 {
		p.GoalCalories = cals
	}
	if prot := r.Number(FieldProteinGoal); prot > 0 {
		p.GoalProtein = prot
	}
	if avatar := r.Text(FieldAvatarURL); avatar != "" {
		p.AvatarURL = avatar
	}
	return p
}

// AvatarFallbackURL builds a generated-avatar reference for profiles
// without a stored image.
func AvatarFallbackURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random"
}
