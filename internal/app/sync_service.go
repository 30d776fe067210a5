// internal/app/sync_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"class_info_hub/internal/domain/reconcile"
	"class_info_hub/internal/domain/timetable"
	idb "class_info_hub/internal/infra/database"

	"github.com/sirupsen/logrus"
)

var ErrInvalidSettings = fmt.Errorf("invalid timetable settings")
var ErrInvalidPeriod = fmt.Errorf("invalid period")

// SnapshotCache holds the last remote snapshot per key as JSON.
type SnapshotCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
}

// SyncService writes local edits only when they differ from the remote snapshot. Equal
// state skips the write, so a snapshot pushed back after our own write does not trigger
// another one.
type SyncService struct {
	ttRepo  timetable.Repository
	annRepo timetable.AnnouncementRepository
	cache   SnapshotCache // optional
	logger  *logrus.Entry
	now     func() time.Time
}

func NewSyncService(tr timetable.Repository, ar timetable.AnnouncementRepository, cache SnapshotCache, logger *logrus.Entry) *SyncService {
	return &SyncService{ttRepo: tr, annRepo: ar, cache: cache, logger: logger, now: time.Now}
}

func settingsKey(classID string) string    { return classID + ":settings" }
func fixedKey(classID string) string       { return classID + ":fixed" }
func dailyKey(classID, date string) string { return classID + ":daily:" + date }

// SaveSettings stores local when it differs from the remote settings. It reports whether
// a write happened.
func (s *SyncService) SaveSettings(ctx context.Context, classID string, local *timetable.TimetableSettings) (bool, error) {
	if local == nil || local.NumberOfPeriods < 0 {
		return false, ErrInvalidSettings
	}
	for _, d := range local.ActiveDays {
		if !d.Valid() {
			return false, fmt.Errorf("%w: unknown weekday %q", ErrInvalidSettings, d)
		}
	}

	remote, err := s.remoteSettings(ctx, classID)
	if err != nil {
		return false, err
	}
	if reconcile.SettingsEqual(local, remote) {
		s.logger.WithField("class_id", classID).Debug("Settings unchanged, skipping write")
		return false, nil
	}

	toSave := *local
	toSave.UpdatedAt = s.now()
	if err := s.ttRepo.SaveSettings(ctx, classID, &toSave); err != nil {
		return false, fmt.Errorf("failed to save settings for class %s: %w", classID, err)
	}
	s.invalidate(ctx, settingsKey(classID))
	s.logger.WithField("class_id", classID).Info("Timetable settings saved")
	return true, nil
}

// SaveFixedSlots replaces the weekly template when it differs from the remote one.
func (s *SyncService) SaveFixedSlots(ctx context.Context, classID string, local []timetable.FixedTimeSlot) (bool, error) {
	if local == nil {
		local = []timetable.FixedTimeSlot{}
	}
	for _, slot := range local {
		if slot.Period < 1 {
			return false, fmt.Errorf("%w: %d", ErrInvalidPeriod, slot.Period)
		}
		if !slot.Day.Valid() {
			return false, fmt.Errorf("%w: unknown weekday %q", ErrInvalidSettings, slot.Day)
		}
	}

	var remote []timetable.FixedTimeSlot
	if !s.load(ctx, fixedKey(classID), &remote) || remote == nil {
		var err error
		remote, err = s.ttRepo.ListFixedSlots(ctx, classID)
		if err != nil {
			return false, fmt.Errorf("failed to load fixed slots for class %s: %w", classID, err)
		}
		s.store(ctx, fixedKey(classID), remote)
	}
	if reconcile.CollectionEqual(local, remote) {
		s.logger.WithField("class_id", classID).Debug("Fixed slots unchanged, skipping write")
		return false, nil
	}

	now := s.now()
	toSave := make([]timetable.FixedTimeSlot, len(local))
	for i, slot := range local {
		slot.UpdatedAt = now
		toSave[i] = slot
	}
	if err := s.ttRepo.ReplaceFixedSlots(ctx, classID, toSave); err != nil {
		return false, fmt.Errorf("failed to replace fixed slots for class %s: %w", classID, err)
	}
	s.invalidate(ctx, fixedKey(classID))
	s.logger.WithFields(logrus.Fields{"class_id": classID, "slots": len(toSave)}).Info("Fixed slots replaced")
	return true, nil
}

// SaveDailyAnnouncements replaces the announcements of date when the local ones differ from the
// remote ones and returns the remote state after reconciliation.
func (s *SyncService) SaveDailyAnnouncements(ctx context.Context, classID, date string, local []timetable.DailyAnnouncement) ([]timetable.DailyAnnouncement, bool, error) {
	normalized, err := normalizeDay(date, local)
	if err != nil {
		return nil, false, err
	}
	remote, err := s.remoteDaily(ctx, classID, date)
	if err != nil {
		return nil, false, err
	}
	return s.saveDay(ctx, classID, date, normalized, remote)
}

// SaveAnnouncementDays reconciles several dates at once, keyed by date. Dates absent from local
// are left alone. It reports which dates were written.
func (s *SyncService) SaveAnnouncementDays(ctx context.Context, classID string, local map[string][]timetable.DailyAnnouncement) (map[string]bool, error) {
	normalized := make(map[string][]timetable.DailyAnnouncement, len(local))
	remote := make(map[string][]timetable.DailyAnnouncement, len(local))
	for date, anns := range local {
		day, err := normalizeDay(date, anns)
		if err != nil {
			return nil, err
		}
		normalized[date] = day
		if remote[date], err = s.remoteDaily(ctx, classID, date); err != nil {
			return nil, err
		}
	}

	changed := make(map[string]bool, len(normalized))
	if reconcile.GroupedCollectionEqual(normalized, remote) && !anyOverrideKindChanged(normalized, remote) {
		for date := range normalized {
			changed[date] = false
		}
		s.logger.WithFields(logrus.Fields{"class_id": classID, "dates": len(normalized)}).Debug("Announcement days unchanged, skipping write")
		return changed, nil
	}

	for date, day := range normalized {
		_, wrote, err := s.saveDay(ctx, classID, date, day, remote[date])
		if err != nil {
			return nil, err
		}
		changed[date] = wrote
	}
	return changed, nil
}

func normalizeDay(date string, local []timetable.DailyAnnouncement) ([]timetable.DailyAnnouncement, error) {
	if _, err := timetable.ParseDate(date); err != nil {
		return nil, err
	}
	normalized := make([]timetable.DailyAnnouncement, 0, len(local))
	for _, a := range local {
		if a.Period < 1 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidPeriod, a.Period)
		}
		a.Date = date
		a.ItemType = timetable.ItemTypeAnnouncement
		normalized = append(normalized, a)
	}
	return normalized, nil
}

func (s *SyncService) saveDay(ctx context.Context, classID, date string, normalized, remote []timetable.DailyAnnouncement) ([]timetable.DailyAnnouncement, bool, error) {
	// Default filling makes Inherit and None compare equal; the stored kind still decides
	// whether the template subject shows, so a kind change alone is a change.
	if reconcile.CollectionEqual(normalized, remote) && !overrideKindChanged(normalized, remote) {
		s.logger.WithFields(logrus.Fields{"class_id": classID, "date": date}).Debug("Announcements unchanged, skipping write")
		return remote, false, nil
	}

	now := s.now()
	for i := range normalized {
		normalized[i].UpdatedAt = now
	}
	if err := s.annRepo.ReplaceDailyAnnouncements(ctx, classID, date, normalized); err != nil {
		return nil, false, fmt.Errorf("failed to replace announcements for class %s on %s: %w", classID, date, err)
	}
	s.invalidate(ctx, dailyKey(classID, date))
	s.logger.WithFields(logrus.Fields{"class_id": classID, "date": date, "announcements": len(normalized)}).Info("Daily announcements replaced")
	return normalized, true, nil
}

// overrideKindChanged reports a period whose subject override kind differs between local and
// remote. A period missing on either side counts as a change.
func overrideKindChanged(local, remote []timetable.DailyAnnouncement) bool {
	if len(local) != len(remote) {
		return true
	}
	kinds := make(map[int]timetable.OverrideKind, len(remote))
	for _, a := range remote {
		kinds[a.Period] = a.SubjectIDOverride.Kind
	}
	for _, a := range local {
		kind, ok := kinds[a.Period]
		if !ok || kind != a.SubjectIDOverride.Kind {
			return true
		}
	}
	return false
}

func anyOverrideKindChanged(local, remote map[string][]timetable.DailyAnnouncement) bool {
	for date, day := range local {
		if overrideKindChanged(day, remote[date]) {
			return true
		}
	}
	return false
}

// ClearSlot empties one period of date. The template subject does not come back.
func (s *SyncService) ClearSlot(ctx context.Context, classID, date string, period int) error {
	if _, err := timetable.ParseDate(date); err != nil {
		return err
	}
	if period < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPeriod, period)
	}
	ann := timetable.Cleared(date, period, s.now())
	if err := s.annRepo.UpsertDailyAnnouncement(ctx, classID, &ann); err != nil {
		return fmt.Errorf("failed to clear period %d for class %s on %s: %w", period, classID, date, err)
	}
	s.invalidate(ctx, dailyKey(classID, date))
	s.logger.WithFields(logrus.Fields{"class_id": classID, "date": date, "period": period}).Info("Slot cleared")
	return nil
}

func (s *SyncService) remoteSettings(ctx context.Context, classID string) (*timetable.TimetableSettings, error) {
	var cached timetable.TimetableSettings
	if s.load(ctx, settingsKey(classID), &cached) {
		return &cached, nil
	}
	remote, err := s.ttRepo.GetSettings(ctx, classID)
	if errors.Is(err, idb.ErrSettingsNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings for class %s: %w", classID, err)
	}
	s.store(ctx, settingsKey(classID), remote)
	return remote, nil
}

func (s *SyncService) remoteDaily(ctx context.Context, classID, date string) ([]timetable.DailyAnnouncement, error) {
	var cached []timetable.DailyAnnouncement
	if s.load(ctx, dailyKey(classID, date), &cached) && cached != nil {
		return cached, nil
	}
	remote, err := s.annRepo.ListDailyAnnouncements(ctx, classID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load announcements for class %s on %s: %w", classID, date, err)
	}
	if remote == nil {
		remote = []timetable.DailyAnnouncement{}
	}
	s.store(ctx, dailyKey(classID, date), remote)
	return remote, nil
}

// load, store and invalidate never fail the caller: the repositories are the source of truth.
// Writes invalidate rather than store, so two racing writers cannot leave the cache holding
// the loser's snapshot.
func (s *SyncService) load(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Snapshot cache read failed")
		return false
	}
	return ok
}

func (s *SyncService) store(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, v); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Snapshot cache write failed")
	}
}

func (s *SyncService) invalidate(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Snapshot cache delete failed")
	}
}
