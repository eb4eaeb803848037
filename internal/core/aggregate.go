package core

import (
	"strings"
	"sync"
)

// MacroTotals is the consumed sum for one period.
type MacroTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (t *MacroTotals) add(e MealEntry) {
	t.Calories += e.Calories
	t.Protein += e.Protein
	t.Carbs += e.Carbs
	t.Fat += e.Fat
}

// AggregateMeals filters raw rows to those whose date begins with the
// period key, normalizes each, and sums the macro fields. Inclusion
// is all-or-nothing per row; an empty match yields zero totals.
func AggregateMeals(records []RawRecord, periodKey string) ([]MealEntry, MacroTotals) {
	var (
		entries []MealEntry
		totals  MacroTotals
	)
	for _, r := range records {
		date := r.Text(FieldDate)
		if date == "" || !strings.HasPrefix(date, periodKey) {
			continue
		}
		e := NormalizeMeal(r)
		entries = append(entries, e)
		totals.add(e)
	}
	return entries, totals
}

// MealSet is the in-memory ordered collection for the active period,
// newest first. Replaced wholesale on each refresh, prepended
// incrementally by the live merger.
type MealSet struct {
	mu      sync.Mutex
	key     string
	entries []MealEntry
	ids     map[string]struct{}
	totals  MacroTotals
}

func NewMealSet() *MealSet {
	return &MealSet{ids: make(map[string]struct{})}
}

// ReplaceAll installs a freshly aggregated collection for periodKey,
// discarding whatever was held before.
func (s *MealSet) ReplaceAll(periodKey string, entries []MealEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = periodKey
	s.entries = append([]MealEntry(nil), entries...)
	s.ids = make(map[string]struct{}, len(entries))
	s.totals = MacroTotals{}
	for _, e := range entries {
		s.ids[e.ID] = struct{}{}
		s.totals.add(e)
	}
}

// MergeOne prepends a pushed entry. The insert is idempotent by id,
// and entries dated outside the active period are dropped so a late
// notification cannot pollute the current view. Reports whether the
// entry was added.
func (s *MealSet) MergeOne(e MealEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key != "" && !strings.HasPrefix(e.Date, s.key) {
		return false
	}
	if _, dup := s.ids[e.ID]; dup {
		return false
	}
	s.entries = append([]MealEntry{e}, s.entries...)
	s.ids[e.ID] = struct{}{}
	s.totals.add(e)
	return true
}

// Entries returns a copy of the collection, newest first.
func (s *MealSet) Entries() []MealEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MealEntry(nil), s.entries...)
}

// Totals returns the running macro sums.
func (s *MealSet) Totals() MacroTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// PeriodKey returns the key the set is currently scoped to.
func (s *MealSet) PeriodKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Len returns the number of held entries.
func (s *MealSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
