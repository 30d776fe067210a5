package reconcile

import (
	"slices"

	"class_info_hub/internal/domain/timetable"
)

// SettingsEqual compares period count and the active-day set. Order of ActiveDays does
// not matter and neither input is modified.
func SettingsEqual(a, b *timetable.TimetableSettings) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.NumberOfPeriods != b.NumberOfPeriods {
		return false
	}
	return slices.Equal(sortedDays(a.ActiveDays), sortedDays(b.ActiveDays))
}

func sortedDays(days []timetable.Weekday) []timetable.Weekday {
	out := slices.Clone(days)
	slices.Sort(out)
	return out
}
