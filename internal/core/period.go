package core

import (
	"fmt"
	"strconv"
	"time"
)

// PeriodMode selects the reporting granularity. One mode is
// configured per deployment; goals and leaderboard scores scale with
// it consistently.
type PeriodMode string

const (
	Daily   PeriodMode = "daily"
	Monthly PeriodMode = "monthly"
)

// IsValid reports whether the mode is a known one.
func (m PeriodMode) IsValid() bool {
	return m == Daily || m == Monthly
}

// Period is the resolved day or month being reported against.
type Period struct {
	Mode  PeriodMode
	Year  int
	Month int // 1-12
	Day   int // 0 in monthly mode
	Days  int // day count used for goal scaling; 1 in daily mode
}

// Key is the canonical prefix all record dates of the period share:
// "YYYY-MM" in monthly mode, "YYYY-MM-DD" in daily mode.
func (p Period) Key() string {
	if p.Mode == Daily {
		return fmt.Sprintf("%04d-%02d-%02d", p.Year, p.Month, p.Day)
	}
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Display is the human form: "MM/YYYY" or "DD/MM/YYYY".
func (p Period) Display() string {
	if p.Mode == Daily {
		return fmt.Sprintf("%02d/%02d/%04d", p.Day, p.Month, p.Year)
	}
	return fmt.Sprintf("%02d/%04d", p.Month, p.Year)
}

// ResolvePeriod decides the active reporting period from the most
// recent record (records are ordered descending by date) or from
// today when the list is empty or the leading date is unusable.
func ResolvePeriod(mode PeriodMode, records []RawRecord, today time.Time) Period {
	if len(records) > 0 {
		if p, ok := periodFromDate(mode, records[0].Text(FieldDate)); ok {
			return p
		}
	}
	return periodFromTime(mode, today)
}

// periodFromDate truncates a "YYYY-MM-DD..." date string to the
// period for the configured mode.
func periodFromDate(mode PeriodMode, date string) (Period, bool) {
	if len(date) < 7 || date[4] != '-' {
		return Period{}, false
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year < 1 {
		return Period{}, false
	}
	month, err := strconv.Atoi(date[5:7])
	if err != nil || month < 1 || month > 12 {
		return Period{}, false
	}
	p := Period{Mode: mode, Year: year, Month: month, Days: 1}
	if mode == Daily {
		if len(date) < 10 || date[7] != '-' {
			return Period{}, false
		}
		day, err := strconv.Atoi(date[8:10])
		if err != nil || day < 1 || day > 31 {
			return Period{}, false
		}
		p.Day = day
		return p, true
	}
	p.Days = DaysInMonth(year, month)
	return p, true
}

func periodFromTime(mode PeriodMode, t time.Time) Period {
	p := Period{Mode: mode, Year: t.Year(), Month: int(t.Month()), Days: 1}
	if mode == Daily {
		p.Day = t.Day()
		return p
	}
	p.Days = DaysInMonth(p.Year, p.Month)
	return p
}

// DaysInMonth returns the number of calendar days in year/month,
// leap years included.
func DaysInMonth(year, month int) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
