package database

import (
	"context"
	"database/sql"
	"fmt"

	"class_info_hub/internal/domain/timetable"

	"github.com/lib/pq" // For pq.Array
)

type PostgresTimetableRepository struct {
	db *sql.DB
}

func NewPostgresTimetableRepository(db *sql.DB) *PostgresTimetableRepository {
	return &PostgresTimetableRepository{db: db}
}

// --- TimetableSettings ---

func (r *PostgresTimetableRepository) GetSettings(ctx context.Context, classID string) (*timetable.TimetableSettings, error) {
	query := `SELECT number_of_periods, active_days, updated_at FROM timetable_settings WHERE class_id = $1`
	var days []string
	s := &timetable.TimetableSettings{}
	err := r.db.QueryRowContext(ctx, query, classID).Scan(&s.NumberOfPeriods, pq.Array(&days), &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("error getting timetable settings: %w", err)
	}
	s.ActiveDays = make([]timetable.Weekday, 0, len(days))
	for _, d := range days {
		s.ActiveDays = append(s.ActiveDays, timetable.Weekday(d))
	}
	return s, nil
}

func (r *PostgresTimetableRepository) SaveSettings(ctx context.Context, classID string, s *timetable.TimetableSettings) error {
	query := `INSERT INTO timetable_settings (class_id, number_of_periods, active_days, updated_at)
               VALUES ($1, $2, $3, NOW())
               ON CONFLICT (class_id) DO UPDATE
               SET number_of_periods = EXCLUDED.number_of_periods, active_days = EXCLUDED.active_days, updated_at = NOW()
               RETURNING updated_at`
	days := make([]string, 0, len(s.ActiveDays))
	for _, d := range s.ActiveDays {
		days = append(days, string(d))
	}
	if err := r.db.QueryRowContext(ctx, query, classID, s.NumberOfPeriods, pq.Array(days)).Scan(&s.UpdatedAt); err != nil {
		return fmt.Errorf("error saving timetable settings: %w", err)
	}
	return nil
}

// --- FixedTimeSlot ---

func (r *PostgresTimetableRepository) ListFixedSlots(ctx context.Context, classID string) ([]timetable.FixedTimeSlot, error) {
	query := `SELECT day, period, subject_id, updated_at
               FROM fixed_time_slots
               WHERE class_id = $1 ORDER BY day, period`
	rows, err := r.db.QueryContext(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("error listing fixed slots: %w", err)
	}
	defer rows.Close()

	slots := make([]timetable.FixedTimeSlot, 0)
	for rows.Next() {
		var slot timetable.FixedTimeSlot
		var subjectID sql.NullString
		if err := rows.Scan(&slot.Day, &slot.Period, &subjectID, &slot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning fixed slot: %w", err)
		}
		slot.SubjectID = nullStringPtr(subjectID)
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fixed slots: %w", err)
	}
	return slots, nil
}

func (r *PostgresTimetableRepository) ReplaceFixedSlots(ctx context.Context, classID string, slots []timetable.FixedTimeSlot) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for fixed slots: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	if _, err := txn.ExecContext(ctx, `DELETE FROM fixed_time_slots WHERE class_id = $1`, classID); err != nil {
		return fmt.Errorf("error clearing fixed slots: %w", err)
	}

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO fixed_time_slots (class_id, day, period, subject_id, updated_at)
                                         VALUES ($1, $2, $3, $4, NOW())`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for fixed slots: %w", err)
	}
	defer stmt.Close()

	for _, slot := range slots {
		if _, err := stmt.ExecContext(ctx, classID, string(slot.Day), slot.Period, ptrNullString(slot.SubjectID)); err != nil {
			return fmt.Errorf("error inserting fixed slot (%s, %d): %w", slot.Day, slot.Period, err)
		}
	}
	return txn.Commit()
}

// --- Subject ---

func (r *PostgresTimetableRepository) ListSubjects(ctx context.Context, classID string) ([]timetable.Subject, error) {
	query := `SELECT id, name, teacher_name FROM subjects WHERE class_id = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("error listing subjects: %w", err)
	}
	defer rows.Close()

	subjects := make([]timetable.Subject, 0)
	for rows.Next() {
		var s timetable.Subject
		var teacherName sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &teacherName); err != nil {
			return nil, fmt.Errorf("error scanning subject: %w", err)
		}
		s.TeacherName = nullStringPtr(teacherName)
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subjects: %w", err)
	}
	return subjects, nil
}

func (r *PostgresTimetableRepository) CreateSubject(ctx context.Context, classID string, s *timetable.Subject) error {
	query := `INSERT INTO subjects (id, class_id, name, teacher_name) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, s.ID, classID, s.Name, ptrNullString(s.TeacherName)); err != nil {
		return fmt.Errorf("error creating subject: %w", err)
	}
	return nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func ptrNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
