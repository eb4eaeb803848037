package core

import (
	"strings"
	"testing"
)

func TestProfileFromRecord(t *testing.T) {
	r := RawRecord{
		"Name":         "Alex Silva",
		"AGE":          28,
		"weight_kg":    74.5,
		"height_cm":    178.0,
		"calorie_goal": 2500.0,
		"protein_goal": 180.0,
	}
	p := ProfileFromRecord("1", r)
	if p.ID != "1" || p.Name != "Alex Silva" || p.Age != 28 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.GoalCalories != 2500 || p.GoalProtein != 180 {
		t.Fatalf("unexpected goals: %+v", p)
	}
	if p.AvatarURL != "" {
		t.Fatalf("absent avatar should stay empty, got %q", p.AvatarURL)
	}
}

func TestProfileFromRecordDefaults(t *testing.T) {
	p := ProfileFromRecord("7", RawRecord{"name": "Minimal"})
	if p.GoalCalories != 2000 {
		t.Fatalf("GoalCalories = %v, expected default 2000", p.GoalCalories)
	}
	if p.GoalProtein != 120 {
		t.Fatalf("GoalProtein = %v, expected default 120", p.GoalProtein)
	}

	// Malformed numerics keep the defaults too.
	p = ProfileFromRecord("7", RawRecord{"calorie_goal": "plenty", "age": -3})
	if p.GoalCalories != 2000 || p.Age != 0 {
		t.Fatalf("malformed fields should keep defaults: %+v", p)
	}
}

func TestAvatarFallbackURL(t *testing.T) {
	u := AvatarFallbackURL("Alex Silva")
	if !strings.HasPrefix(u, "https://ui-avatars.com/api/?name=") {
		t.Fatalf("unexpected avatar url: %q", u)
	}
	if strings.Contains(u, " ") {
		t.Fatalf("name must be escaped: %q", u)
	}
}
