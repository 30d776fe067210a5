package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"class_info_hub/internal/domain/timetable"
)

// Stored values of daily_announcements.subject_override_kind.
const (
	overrideKindInherit  = "inherit"
	overrideKindNone     = "none"
	overrideKindSpecific = "specific"
)

type PostgresAnnouncementRepository struct {
	db *sql.DB
}

func NewPostgresAnnouncementRepository(db *sql.DB) *PostgresAnnouncementRepository {
	return &PostgresAnnouncementRepository{db: db}
}

// --- DailyAnnouncement ---

func (r *PostgresAnnouncementRepository) ListDailyAnnouncements(ctx context.Context, classID, date string) ([]timetable.DailyAnnouncement, error) {
	query := `SELECT to_char(date, 'YYYY-MM-DD'), period, subject_override_kind, subject_id_override,
                      text, show_on_calendar, is_manually_cleared, updated_at
               FROM daily_announcements
               WHERE class_id = $1 AND date = $2 ORDER BY period`
	rows, err := r.db.QueryContext(ctx, query, classID, date)
	if err != nil {
		return nil, fmt.Errorf("error listing daily announcements: %w", err)
	}
	defer rows.Close()

	anns := make([]timetable.DailyAnnouncement, 0)
	for rows.Next() {
		var a timetable.DailyAnnouncement
		var kind string
		var subjectID sql.NullString
		if err := rows.Scan(&a.Date, &a.Period, &kind, &subjectID, &a.Text, &a.ShowOnCalendar, &a.IsManuallyCleared, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning daily announcement: %w", err)
		}
		a.SubjectIDOverride, err = overrideFromColumns(kind, subjectID)
		if err != nil {
			return nil, err
		}
		a.ItemType = timetable.ItemTypeAnnouncement
		anns = append(anns, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily announcements: %w", err)
	}
	return anns, nil
}

func (r *PostgresAnnouncementRepository) ReplaceDailyAnnouncements(ctx context.Context, classID, date string, anns []timetable.DailyAnnouncement) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for daily announcements: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	if _, err := txn.ExecContext(ctx, `DELETE FROM daily_announcements WHERE class_id = $1 AND date = $2`, classID, date); err != nil {
		return fmt.Errorf("error clearing daily announcements: %w", err)
	}

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO daily_announcements
                                         (class_id, date, period, subject_override_kind, subject_id_override, text, show_on_calendar, is_manually_cleared, updated_at)
                                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for daily announcements: %w", err)
	}
	defer stmt.Close()

	for _, a := range anns {
		kind, subjectID := overrideColumns(a.SubjectIDOverride)
		if _, err := stmt.ExecContext(ctx, classID, date, a.Period, kind, subjectID, a.Text, a.ShowOnCalendar, a.IsManuallyCleared); err != nil {
			return fmt.Errorf("error inserting daily announcement (%s, %d): %w", date, a.Period, err)
		}
	}
	return txn.Commit()
}

func (r *PostgresAnnouncementRepository) UpsertDailyAnnouncement(ctx context.Context, classID string, a *timetable.DailyAnnouncement) error {
	query := `INSERT INTO daily_announcements
                  (class_id, date, period, subject_override_kind, subject_id_override, text, show_on_calendar, is_manually_cleared, updated_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
               ON CONFLICT (class_id, date, period) DO UPDATE
               SET subject_override_kind = EXCLUDED.subject_override_kind,
                   subject_id_override = EXCLUDED.subject_id_override,
                   text = EXCLUDED.text,
                   show_on_calendar = EXCLUDED.show_on_calendar,
                   is_manually_cleared = EXCLUDED.is_manually_cleared,
                   updated_at = NOW()
               RETURNING updated_at`
	kind, subjectID := overrideColumns(a.SubjectIDOverride)
	err := r.db.QueryRowContext(ctx, query, classID, a.Date, a.Period, kind, subjectID, a.Text, a.ShowOnCalendar, a.IsManuallyCleared).Scan(&a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting daily announcement: %w", err)
	}
	return nil
}

// --- DailyGeneralAnnouncement ---

func (r *PostgresAnnouncementRepository) GetGeneralAnnouncement(ctx context.Context, classID, date string) (*timetable.DailyGeneralAnnouncement, error) {
	query := `SELECT to_char(date, 'YYYY-MM-DD'), content, ai_summary, ai_summary_last_generated_at, updated_at
               FROM daily_general_announcements WHERE class_id = $1 AND date = $2`
	g := &timetable.DailyGeneralAnnouncement{ItemType: timetable.ItemTypeGeneral}
	var aiSummary sql.NullString
	var generatedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, classID, date).Scan(&g.Date, &g.Content, &aiSummary, &generatedAt, &g.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrGeneralAnnouncementNotFound
		}
		return nil, fmt.Errorf("error getting general announcement: %w", err)
	}
	g.AISummary = nullStringPtr(aiSummary)
	if generatedAt.Valid {
		t := generatedAt.Time
		g.AISummaryLastGeneratedAt = &t
	}
	return g, nil
}

// SaveGeneralAnnouncement writes the content only; the summary fields belong to SetAISummary.
func (r *PostgresAnnouncementRepository) SaveGeneralAnnouncement(ctx context.Context, classID string, g *timetable.DailyGeneralAnnouncement) error {
	query := `INSERT INTO daily_general_announcements (class_id, date, content, updated_at)
               VALUES ($1, $2, $3, NOW())
               ON CONFLICT (class_id, date) DO UPDATE
               SET content = EXCLUDED.content, updated_at = NOW()
               RETURNING updated_at`
	if err := r.db.QueryRowContext(ctx, query, classID, g.Date, g.Content).Scan(&g.UpdatedAt); err != nil {
		return fmt.Errorf("error saving general announcement: %w", err)
	}
	return nil
}

func (r *PostgresAnnouncementRepository) SetAISummary(ctx context.Context, classID, date, summary string, generatedAt time.Time) error {
	query := `UPDATE daily_general_announcements
               SET ai_summary = $3, ai_summary_last_generated_at = $4
               WHERE class_id = $1 AND date = $2`
	res, err := r.db.ExecContext(ctx, query, classID, date, summary, generatedAt)
	if err != nil {
		return fmt.Errorf("error setting AI summary: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for AI summary: %w", err)
	}
	if n == 0 {
		return ErrGeneralAnnouncementNotFound
	}
	return nil
}

func (r *PostgresAnnouncementRepository) ClearAISummary(ctx context.Context, classID, date string) error {
	query := `UPDATE daily_general_announcements
               SET ai_summary = NULL, ai_summary_last_generated_at = NULL
               WHERE class_id = $1 AND date = $2`
	if _, err := r.db.ExecContext(ctx, query, classID, date); err != nil {
		return fmt.Errorf("error clearing AI summary: %w", err)
	}
	return nil
}

func overrideColumns(o timetable.SubjectOverride) (string, sql.NullString) {
	switch o.Kind {
	case timetable.OverrideNone:
		return overrideKindNone, sql.NullString{}
	case timetable.OverrideSpecific:
		return overrideKindSpecific, sql.NullString{String: o.SubjectID, Valid: true}
	default:
		return overrideKindInherit, sql.NullString{}
	}
}

func overrideFromColumns(kind string, subjectID sql.NullString) (timetable.SubjectOverride, error) {
	switch kind {
	case overrideKindInherit:
		return timetable.InheritSubject(), nil
	case overrideKindNone:
		return timetable.NoSubject(), nil
	case overrideKindSpecific:
		if !subjectID.Valid {
			return timetable.SubjectOverride{}, fmt.Errorf("specific subject override without subject id")
		}
		return timetable.SpecificSubject(subjectID.String), nil
	default:
		return timetable.SubjectOverride{}, fmt.Errorf("unknown subject override kind %q", kind)
	}
}
