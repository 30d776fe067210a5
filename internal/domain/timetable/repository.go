package timetable

import (
	"context"
	"time"
)

// Repository defines the class-scoped timetable collections.
type Repository interface {
	GetSettings(ctx context.Context, classID string) (*TimetableSettings, error)
	SaveSettings(ctx context.Context, classID string, s *TimetableSettings) error

	ListFixedSlots(ctx context.Context, classID string) ([]FixedTimeSlot, error)
	// ReplaceFixedSlots swaps the whole weekly template in one transaction.
	ReplaceFixedSlots(ctx context.Context, classID string, slots []FixedTimeSlot) error

	ListSubjects(ctx context.Context, classID string) ([]Subject, error)
	CreateSubject(ctx context.Context, classID string, s *Subject) error
}

// AnnouncementRepository stores the per-date overrides and general announcements.
type AnnouncementRepository interface {
	ListDailyAnnouncements(ctx context.Context, classID, date string) ([]DailyAnnouncement, error)
	// ReplaceDailyAnnouncements swaps every announcement of the date in one transaction.
	ReplaceDailyAnnouncements(ctx context.Context, classID, date string, anns []DailyAnnouncement) error
	UpsertDailyAnnouncement(ctx context.Context, classID string, ann *DailyAnnouncement) error

	GetGeneralAnnouncement(ctx context.Context, classID, date string) (*DailyGeneralAnnouncement, error)
	SaveGeneralAnnouncement(ctx context.Context, classID string, g *DailyGeneralAnnouncement) error
	// SetAISummary replaces both summary fields in a single write.
	SetAISummary(ctx context.Context, classID, date, summary string, generatedAt time.Time) error
	// ClearAISummary nulls both summary fields. Clearing an absent summary is not an error.
	ClearAISummary(ctx context.Context, classID, date string) error
}
