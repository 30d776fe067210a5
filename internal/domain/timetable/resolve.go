package timetable

// EffectiveSlot is what a class actually has in one period on one date.
type EffectiveSlot struct {
	Date           string  `json:"date"`
	Period         int     `json:"period"`
	SubjectID      *string `json:"subjectId"`
	SubjectName    string  `json:"subjectName,omitempty"`
	Text           string  `json:"text"`
	ShowOnCalendar bool    `json:"showOnCalendar"`
	Cleared        bool    `json:"isManuallyCleared"`
}

// IsEmpty reports a slot with neither subject nor text.
func (s EffectiveSlot) IsEmpty() bool {
	return s.SubjectID == nil && s.Text == ""
}

// Resolve merges the weekly template with the date's override. Either argument may be nil.
//
// A manually cleared override wins over everything; any other override resolves its
// subject through SubjectOverride.Apply; without an override the template stands.
func Resolve(date string, period int, fixed *FixedTimeSlot, ann *DailyAnnouncement) EffectiveSlot {
	slot := EffectiveSlot{Date: date, Period: period}

	var template *string
	if fixed != nil {
		template = fixed.SubjectID
	}

	switch {
	case ann != nil && ann.IsManuallyCleared:
		slot.Cleared = true
	case ann != nil:
		slot.SubjectID = ann.SubjectIDOverride.Apply(template)
		slot.Text = ann.Text
		slot.ShowOnCalendar = ann.ShowOnCalendar
	default:
		slot.SubjectID = template
	}
	return slot
}

// ResolveDay resolves periods 1..NumberOfPeriods for date. Days outside the active set
// have no slots.
func ResolveDay(date string, settings TimetableSettings, fixed []FixedTimeSlot, anns []DailyAnnouncement) ([]EffectiveSlot, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	day := WeekdayOf(d.Weekday())
	if !settings.IsActive(day) {
		return []EffectiveSlot{}, nil
	}

	byPeriod := make(map[int]*FixedTimeSlot, len(fixed))
	for i := range fixed {
		if fixed[i].Day == day {
			byPeriod[fixed[i].Period] = &fixed[i]
		}
	}
	annByPeriod := make(map[int]*DailyAnnouncement, len(anns))
	for i := range anns {
		if anns[i].Date == date {
			annByPeriod[anns[i].Period] = &anns[i]
		}
	}

	slots := make([]EffectiveSlot, 0, settings.NumberOfPeriods)
	for p := 1; p <= settings.NumberOfPeriods; p++ {
		slots = append(slots, Resolve(date, p, byPeriod[p], annByPeriod[p]))
	}
	return slots, nil
}

// AttachSubjectNames fills SubjectName from the subject catalogue. Unknown ids keep an empty name.
func AttachSubjectNames(slots []EffectiveSlot, subjects []Subject) {
	names := make(map[string]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}
	for i := range slots {
		if slots[i].SubjectID != nil {
			slots[i].SubjectName = names[*slots[i].SubjectID]
		}
	}
}
