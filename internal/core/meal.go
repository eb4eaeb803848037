package core

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// UnnamedMeal is the label used when neither the name nor the
// description of a record yields anything usable.
const UnnamedMeal = "unnamed meal"

// emptyNameSentinel is what the meal bot writes when it could not
// determine a name. Treated the same as an absent name.
const emptyNameSentinel = "EMPTY"

// maxLabelRunes caps how long a description may be before it stops
// being a usable label.
const maxLabelRunes = 100

// MealEntry is the canonical meal record. Immutable once created.
type MealEntry struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"` // raw date string, used for period filtering
	Time     string  `json:"time"` // short display: "HH:MM", "DD/MM" or "recent"
	Label    string  `json:"label"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// NormalizeMeal converts one raw store row into a MealEntry. It never
// fails: every absent or malformed field degrades to a default (zero,
// fallback label, generated id).
func NormalizeMeal(r RawRecord) MealEntry {
	id := r.Text(FieldID)
	if id == "" {
		id = uuid.NewString()
	}
	date := r.Text(FieldDate)
	return MealEntry{
		ID:       id,
		Date:     date,
		Time:     displayTime(date),
		Label:    resolveLabel(r.Text(FieldName), r.Text(FieldDescription)),
		Calories: r.Number(FieldCalories),
		Protein:  r.Number(FieldProtein),
		Carbs:    r.Number(FieldCarbs),
		Fat:      r.Number(FieldFat),
	}
}

// resolveLabel picks the meal label: the explicit name unless it is
// the EMPTY sentinel, then the description (possibly fenced or
// embedded JSON), then the unnamed-meal fallback.
func resolveLabel(name, description string) string {
	if name != "" && name != emptyNameSentinel {
		return name
	}
	desc := stripCodeFence(description)
	if desc == "" {
		return UnnamedMeal
	}
	if label, ok := labelFromJSON(desc); ok {
		return label
	}
	if utf8.RuneCountInString(desc) > maxLabelRunes {
		return UnnamedMeal
	}
	return desc
}

// stripCodeFence removes a markdown ```json fence around the
// description, whether the fence shares a line with the payload or
// not.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(strings.TrimSpace(s), "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// labelFromJSON flattens an embedded JSON description into a short
// label. An object with a "components" array joins each component's
// name; a bare array joins each element's "name" or "item" field.
func labelFromJSON(s string) (string, bool) {
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return "", false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return "", false
	}
	switch t := v.(type) {
	case map[string]any:
		comps, ok := t["components"].([]any)
		if !ok {
			return "", false
		}
		return joinNames(comps, "name")
	case []any:
		return joinNames(t, "name", "item")
	}
	return "", false
}

func joinNames(elems []any, keys ...string) (string, bool) {
	var names []string
	for _, e := range elems {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		for _, key := range keys {
			if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
				names = append(names, strings.TrimSpace(s))
				break
			}
		}
	}
	if len(names) == 0 {
		return "", false
	}
	return strings.Join(names, ", "), true
}

// displayTime derives a short human time from the raw date string,
// preferring a clock time when one is present. Always non-empty.
func displayTime(date string) string {
	if i := strings.IndexByte(date, 'T'); i >= 0 {
		if rest := date[i+1:]; rest != "" {
			if len(rest) >= 5 {
				return rest[:5]
			}
			return rest
		}
	}
	if strings.Contains(date, " ") && strings.Contains(date, ":") {
		parts := strings.SplitN(date, " ", 2)
		if len(parts) == 2 && parts[1] != "" {
			if len(parts[1]) >= 5 {
				return parts[1][:5]
			}
			return parts[1]
		}
	}
	if parts := strings.Split(date, "-"); len(parts) == 3 && parts[1] != "" && parts[2] != "" {
		return parts[2] + "/" + parts[1]
	}
	return "recent"
}
