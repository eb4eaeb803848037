package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawRecord is a row as delivered by the external store: a loose
// string-keyed mapping with no guarantee on key casing, field
// presence or value types. Read-only input; never owned by the core.
type RawRecord map[string]any

// Canonical field names for the two logical tables. All lookups go
// through Field, which tolerates any key casing, so these constants
// are the only field literals in the codebase.
const (
	FieldID          = "id"
	FieldUserID      = "user_id"
	FieldDate        = "date"
	FieldName        = "name"
	FieldDescription = "description"
	FieldCalories    = "calories"
	FieldProtein     = "protein"
	FieldCarbs       = "carbs"
	FieldFat         = "fat"

	FieldAge         = "age"
	FieldWeightKg    = "weight_kg"
	FieldHeightCm    = "height_cm"
	FieldCalorieGoal = "calorie_goal"
	FieldProteinGoal = "protein_goal"
	FieldAvatarURL   = "avatar_url"
)

// Field looks a value up by name: exact match first, then a
// case-insensitive scan over all keys. Returns ok=false when no key
// matches in either pass.
func (r RawRecord) Field(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	if v, ok := r[key]; ok {
		return v, true
	}
	lower := strings.ToLower(key)
	for k, v := range r {
		if strings.ToLower(k) == lower {
			return v, true
		}
	}
	return nil, false
}

// Text returns the field as a trimmed string, "" when absent or nil.
func (r RawRecord) Text(key string) string {
	v, ok := r.Field(key)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	case float64:
		// Integral floats (the common case for numeric ids decoded
		// from JSON) must not render as "1.23457e+08".
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// Number coerces the field to a float64. Anything that does not parse
// as a number degrades to 0, per the normalizer failure semantics.
func (r RawRecord) Number(key string) float64 {
	v, ok := r.Field(key)
	if !ok || v == nil {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		f, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(t)), 64)
		if err != nil {
			return 0
		}
		return f
	}
}
