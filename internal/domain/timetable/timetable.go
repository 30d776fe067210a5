// Package timetable holds the class timetable entities and the rule that merges the weekly
// template with per-date overrides into the schedule shown for a day.
package timetable

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout of every date key in the store ("2024-05-01").
const DateLayout = "2006-01-02"

// Item type discriminants stored on announcement documents.
const (
	ItemTypeAnnouncement = "announcement"
	ItemTypeGeneral      = "general"
)

// Weekday is a lower-case English weekday identifier ("monday" ... "sunday").
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// WeekdayOf maps a time.Weekday to its identifier.
func WeekdayOf(d time.Weekday) Weekday {
	return Weekday(strings.ToLower(d.String()))
}

// Valid reports whether d is one of the seven weekday identifiers.
func (d Weekday) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// ErrInvalidDate wraps every date key that is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses a YYYY-MM-DD key.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, date, err)
	}
	return t, nil
}

// TimetableSettings is the per-class timetable shape.
type TimetableSettings struct {
	NumberOfPeriods int       `json:"numberOfPeriods"`
	ActiveDays      []Weekday `json:"activeDays"`
	UpdatedAt       time.Time `json:"updatedAt,omitzero"`
}

// IsActive reports whether classes are held on the given weekday.
func (s TimetableSettings) IsActive(day Weekday) bool {
	for _, d := range s.ActiveDays {
		if d == day {
			return true
		}
	}
	return false
}

// FixedTimeSlot is the subject a class has every week on a given day and period.
type FixedTimeSlot struct {
	Day       Weekday   `json:"day"`
	Period    int       `json:"period"`
	SubjectID *string   `json:"subjectId"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// DailyAnnouncement overrides a fixed slot on one date.
type DailyAnnouncement struct {
	Date              string          `json:"date"`
	Period            int             `json:"period"`
	SubjectIDOverride SubjectOverride `json:"subjectIdOverride,omitzero"`
	Text              string          `json:"text,omitempty"`
	ShowOnCalendar    bool            `json:"showOnCalendar,omitempty"`
	IsManuallyCleared bool            `json:"isManuallyCleared,omitempty"`
	UpdatedAt         time.Time       `json:"updatedAt,omitzero"`
	ItemType          string          `json:"itemType"`
}

// Cleared returns the announcement a user produces by emptying the slot.
// The manual-clear flag keeps the template subject from coming back.
func Cleared(date string, period int, now time.Time) DailyAnnouncement {
	return DailyAnnouncement{
		Date:              date,
		Period:            period,
		SubjectIDOverride: NoSubject(),
		IsManuallyCleared: true,
		UpdatedAt:         now,
		ItemType:          ItemTypeAnnouncement,
	}
}

// DailyGeneralAnnouncement is the free-form markdown note for a whole day.
type DailyGeneralAnnouncement struct {
	Date                     string     `json:"date"`
	Content                  string     `json:"content"`
	AISummary                *string    `json:"aiSummary,omitempty"`
	AISummaryLastGeneratedAt *time.Time `json:"aiSummaryLastGeneratedAt,omitempty"`
	UpdatedAt                time.Time  `json:"updatedAt,omitzero"`
	ItemType                 string     `json:"itemType"`
}

// HasSummary reports whether a non-empty AI summary is stored.
func (g DailyGeneralAnnouncement) HasSummary() bool {
	return g.AISummary != nil && strings.TrimSpace(*g.AISummary) != ""
}

// Subject is referenced by id from slots and announcements.
type Subject struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	TeacherName *string `json:"teacherName"`
}
