// internal/app/schedule_service.go
package app

import (
	"context"
	"errors"
	"fmt"

	"class_info_hub/internal/domain/timetable"
	idb "class_info_hub/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// DayView is everything shown for one class on one date.
type DayView struct {
	ClassID string                              `json:"classId"`
	Date    string                              `json:"date"`
	Weekday timetable.Weekday                   `json:"weekday"`
	Slots   []timetable.EffectiveSlot           `json:"slots"`
	General *timetable.DailyGeneralAnnouncement `json:"general,omitempty"`
}

// ScheduleService builds the effective schedule of a date.
type ScheduleService struct {
	ttRepo  timetable.Repository
	annRepo timetable.AnnouncementRepository
	logger  *logrus.Entry
}

func NewScheduleService(tr timetable.Repository, ar timetable.AnnouncementRepository, logger *logrus.Entry) *ScheduleService {
	return &ScheduleService{ttRepo: tr, annRepo: ar, logger: logger}
}

// EffectiveDay resolves the template and the date's overrides into a DayView. A class
// without settings has no slots.
func (s *ScheduleService) EffectiveDay(ctx context.Context, classID, date string) (*DayView, error) {
	d, err := timetable.ParseDate(date)
	if err != nil {
		return nil, err
	}
	view := &DayView{ClassID: classID, Date: date, Weekday: timetable.WeekdayOf(d.Weekday()), Slots: []timetable.EffectiveSlot{}}

	settings, err := s.ttRepo.GetSettings(ctx, classID)
	switch {
	case errors.Is(err, idb.ErrSettingsNotFound):
		s.logger.WithField("class_id", classID).Debug("No timetable settings, schedule is empty")
		settings = nil
	case err != nil:
		return nil, fmt.Errorf("failed to load settings for class %s: %w", classID, err)
	}

	if settings != nil {
		fixed, err := s.ttRepo.ListFixedSlots(ctx, classID)
		if err != nil {
			return nil, fmt.Errorf("failed to load fixed slots for class %s: %w", classID, err)
		}
		anns, err := s.annRepo.ListDailyAnnouncements(ctx, classID, date)
		if err != nil {
			return nil, fmt.Errorf("failed to load announcements for class %s on %s: %w", classID, date, err)
		}
		view.Slots, err = timetable.ResolveDay(date, *settings, fixed, anns)
		if err != nil {
			return nil, err
		}
		subjects, err := s.ttRepo.ListSubjects(ctx, classID)
		if err != nil {
			return nil, fmt.Errorf("failed to load subjects for class %s: %w", classID, err)
		}
		timetable.AttachSubjectNames(view.Slots, subjects)
	}

	general, err := s.annRepo.GetGeneralAnnouncement(ctx, classID, date)
	switch {
	case errors.Is(err, idb.ErrGeneralAnnouncementNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load general announcement for class %s on %s: %w", classID, date, err)
	default:
		view.General = general
	}
	return view, nil
}
