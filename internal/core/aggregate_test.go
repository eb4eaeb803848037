package core

import "testing"

func mealRow(id, date string, cals, prot, carbs, fat float64) RawRecord {
	return RawRecord{
		"id":       id,
		"date":     date,
		"name":     "meal " + id,
		"calories": cals,
		"protein":  prot,
		"carbs":    carbs,
		"fat":      fat,
	}
}

func TestAggregateMealsFiltersByPeriodPrefix(t *testing.T) {
	rows := []RawRecord{
		mealRow("a", "2025-11-06T19:45:00", 520, 40, 10, 32),
		mealRow("b", "2025-11-05T08:30:00", 350, 12, 55, 6),
		mealRow("c", "2025-10-31T22:00:00", 900, 30, 80, 40), // previous month
		mealRow("d", "", 100, 1, 1, 1),                       // dateless, always excluded
	}

	entries, totals := AggregateMeals(rows, "2025-11")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if totals.Calories != 870 || totals.Protein != 52 || totals.Carbs != 65 || totals.Fat != 38 {
		t.Fatalf("unexpected totals: %+v", totals)
	}

	// Daily key narrows further.
	entries, totals = AggregateMeals(rows, "2025-11-05")
	if len(entries) != 1 || entries[0].ID != "b" {
		t.Fatalf("daily filter: expected only b, got %+v", entries)
	}
	if totals.Calories != 350 {
		t.Fatalf("daily totals: %+v", totals)
	}
}

func TestAggregateMealsEmptyMatch(t *testing.T) {
	entries, totals := AggregateMeals([]RawRecord{mealRow("a", "2025-10-01", 500, 0, 0, 0)}, "2025-11")
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
	if (totals != MacroTotals{}) {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

// Totals over a partition must equal totals over the whole: summing
// two disjoint halves gives the same result as one pass.
func TestAggregateMealsPartition(t *testing.T) {
	rows := []RawRecord{
		mealRow("a", "2025-11-01", 100, 10, 20, 5),
		mealRow("b", "2025-11-02", 200, 20, 30, 10),
		mealRow("c", "2025-11-03", 300, 30, 40, 15),
		mealRow("d", "2025-11-04", 400, 40, 50, 20),
	}
	_, whole := AggregateMeals(rows, "2025-11")
	_, first := AggregateMeals(rows[:2], "2025-11")
	_, second := AggregateMeals(rows[2:], "2025-11")

	sum := MacroTotals{
		Calories: first.Calories + second.Calories,
		Protein:  first.Protein + second.Protein,
		Carbs:    first.Carbs + second.Carbs,
		Fat:      first.Fat + second.Fat,
	}
	if whole != sum {
		t.Fatalf("partition mismatch: whole=%+v sum=%+v", whole, sum)
	}
}

func TestMealSetMergeOne(t *testing.T) {
	s := NewMealSet()
	s.ReplaceAll("2025-11", []MealEntry{
		{ID: "a", Date: "2025-11-05", Calories: 350},
	})

	pushed := MealEntry{ID: "b", Date: "2025-11-06", Calories: 520}
	if !s.MergeOne(pushed) {
		t.Fatal("first merge should be applied")
	}
	if s.MergeOne(pushed) {
		t.Fatal("duplicate id should be dropped")
	}
	if s.MergeOne(MealEntry{ID: "c", Date: "2025-12-01", Calories: 100}) {
		t.Fatal("entry outside the active period should be dropped")
	}

	entries := s.Entries()
	if len(entries) != 2 || entries[0].ID != "b" {
		t.Fatalf("pushed entry should be prepended: %+v", entries)
	}
	if got := s.Totals().Calories; got != 870 {
		t.Fatalf("Totals.Calories = %v, expected 870", got)
	}
}

func TestMealSetReplaceAllResets(t *testing.T) {
	s := NewMealSet()
	s.ReplaceAll("2025-11", []MealEntry{{ID: "a", Date: "2025-11-05", Calories: 350}})
	s.ReplaceAll("2025-12", []MealEntry{{ID: "x", Date: "2025-12-01", Calories: 100}})

	if s.PeriodKey() != "2025-12" {
		t.Fatalf("PeriodKey = %q, expected 2025-12", s.PeriodKey())
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, expected 1", s.Len())
	}
	if got := s.Totals().Calories; got != 100 {
		t.Fatalf("Totals.Calories = %v, expected 100", got)
	}
	// The old period's id must be reusable after a replace.
	if !s.MergeOne(MealEntry{ID: "a", Date: "2025-12-02", Calories: 50}) {
		t.Fatal("id from the replaced collection should merge cleanly")
	}
}
