package core

import "math"

// Energy constants for macro-goal derivation: 4 kcal per gram of
// protein or carbohydrate, 9 kcal per gram of fat, with 30% of the
// calorie target reserved for fat.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
	fatEnergyShare     = 0.30
)

// PeriodGoals are the nutrition targets scaled to the active period.
// Derived on every refresh, never persisted.
type PeriodGoals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// ProjectGoals derives period targets from the user's daily calorie
// and protein goals. Calorie and protein targets scale linearly with
// the day count; fat takes a 30% energy share and carbohydrates the
// remainder. Carb and fat targets are rounded to whole grams and are
// never negative.
func ProjectGoals(dailyCalories, dailyProtein float64, days int) PeriodGoals {
	if days < 1 {
		days = 1
	}
	calories := dailyCalories * float64(days)
	protein := dailyProtein * float64(days)

	fatCalories := calories * fatEnergyShare
	fat := math.Round(fatCalories / kcalPerGramFat)
	remaining := calories - protein*kcalPerGramProtein - fatCalories
	carbs := math.Round(remaining / kcalPerGramCarbs)

	if fat < 0 {
		fat = 0
	}
	if carbs < 0 {
		carbs = 0
	}
	return PeriodGoals{
		Calories: calories,
		Protein:  protein,
		Carbs:    carbs,
		Fat:      fat,
	}
}

// RemainingCalories is the calorie headroom left in the period,
// floored at zero.
func RemainingCalories(goals PeriodGoals, totals MacroTotals) float64 {
	return math.Max(0, goals.Calories-totals.Calories)
}
