package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"class_info_hub/internal/domain/timetable"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestPostgresTimetableRepository_GetSettings(t *testing.T) {
	ctx := context.Background()
	updated := time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery("SELECT number_of_periods, active_days, updated_at FROM timetable_settings").
			WithArgs("c1").
			WillReturnRows(sqlmock.NewRows([]string{"number_of_periods", "active_days", "updated_at"}).
				AddRow(6, "{monday,friday}", updated))

		s, err := NewPostgresTimetableRepository(db).GetSettings(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, 6, s.NumberOfPeriods)
		assert.Equal(t, []timetable.Weekday{timetable.Monday, timetable.Friday}, s.ActiveDays)
		assert.Equal(t, updated, s.UpdatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery("SELECT number_of_periods").WithArgs("c1").WillReturnError(sql.ErrNoRows)

		_, err := NewPostgresTimetableRepository(db).GetSettings(ctx, "c1")
		assert.ErrorIs(t, err, ErrSettingsNotFound)
	})
}

func TestPostgresTimetableRepository_SaveSettings(t *testing.T) {
	db, mock := newMock(t)
	updated := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO timetable_settings").
		WithArgs("c1", 5, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updated))

	s := &timetable.TimetableSettings{NumberOfPeriods: 5, ActiveDays: []timetable.Weekday{timetable.Monday}}
	require.NoError(t, NewPostgresTimetableRepository(db).SaveSettings(context.Background(), "c1", s))
	assert.Equal(t, updated, s.UpdatedAt)
}

func TestPostgresTimetableRepository_ReplaceFixedSlots(t *testing.T) {
	db, mock := newMock(t)
	math := "math"

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM fixed_time_slots").WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare("INSERT INTO fixed_time_slots")
	prep.ExpectExec().WithArgs("c1", "monday", 1, "math").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("c1", "monday", 2, nil).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewPostgresTimetableRepository(db).ReplaceFixedSlots(context.Background(), "c1", []timetable.FixedTimeSlot{
		{Day: timetable.Monday, Period: 1, SubjectID: &math},
		{Day: timetable.Monday, Period: 2},
	})
	assert.NoError(t, err)
}

func TestPostgresTimetableRepository_ListSubjects(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT id, name, teacher_name FROM subjects").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "teacher_name"}).
			AddRow("s1", "Math", "Ms. Ito").
			AddRow("s2", "Art", nil))

	subjects, err := NewPostgresTimetableRepository(db).ListSubjects(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	require.NotNil(t, subjects[0].TeacherName)
	assert.Equal(t, "Ms. Ito", *subjects[0].TeacherName)
	assert.Nil(t, subjects[1].TeacherName)
}

func TestPostgresAnnouncementRepository_ListDailyAnnouncements(t *testing.T) {
	db, mock := newMock(t)
	updated := time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)
	cols := []string{"date", "period", "subject_override_kind", "subject_id_override", "text", "show_on_calendar", "is_manually_cleared", "updated_at"}
	mock.ExpectQuery("FROM daily_announcements").
		WithArgs("c1", "2024-05-01").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("2024-05-01", 1, "inherit", nil, "quiz", true, false, updated).
			AddRow("2024-05-01", 2, "none", nil, "", false, false, updated).
			AddRow("2024-05-01", 3, "specific", "eng", "", false, false, updated).
			AddRow("2024-05-01", 4, "none", nil, "", false, true, updated))

	anns, err := NewPostgresAnnouncementRepository(db).ListDailyAnnouncements(context.Background(), "c1", "2024-05-01")
	require.NoError(t, err)
	require.Len(t, anns, 4)

	assert.Equal(t, timetable.InheritSubject(), anns[0].SubjectIDOverride)
	assert.Equal(t, "quiz", anns[0].Text)
	assert.True(t, anns[0].ShowOnCalendar)
	assert.Equal(t, timetable.NoSubject(), anns[1].SubjectIDOverride)
	assert.Equal(t, timetable.SpecificSubject("eng"), anns[2].SubjectIDOverride)
	assert.True(t, anns[3].IsManuallyCleared)
	for _, a := range anns {
		assert.Equal(t, timetable.ItemTypeAnnouncement, a.ItemType)
	}
}

func TestPostgresAnnouncementRepository_ListDailyAnnouncements_BadKind(t *testing.T) {
	db, mock := newMock(t)
	cols := []string{"date", "period", "subject_override_kind", "subject_id_override", "text", "show_on_calendar", "is_manually_cleared", "updated_at"}
	mock.ExpectQuery("FROM daily_announcements").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("2024-05-01", 1, "specific", nil, "", false, false, time.Now()))

	_, err := NewPostgresAnnouncementRepository(db).ListDailyAnnouncements(context.Background(), "c1", "2024-05-01")
	assert.Error(t, err)
}

func TestPostgresAnnouncementRepository_ReplaceDailyAnnouncements(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM daily_announcements").WithArgs("c1", "2024-05-01").WillReturnResult(sqlmock.NewResult(0, 1))
	prep := mock.ExpectPrepare("INSERT INTO daily_announcements")
	prep.ExpectExec().WithArgs("c1", "2024-05-01", 1, "specific", "eng", "quiz", false, false).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("c1", "2024-05-01", 2, "none", nil, "", false, true).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewPostgresAnnouncementRepository(db).ReplaceDailyAnnouncements(context.Background(), "c1", "2024-05-01", []timetable.DailyAnnouncement{
		{Date: "2024-05-01", Period: 1, SubjectIDOverride: timetable.SpecificSubject("eng"), Text: "quiz"},
		{Date: "2024-05-01", Period: 2, SubjectIDOverride: timetable.NoSubject(), IsManuallyCleared: true},
	})
	assert.NoError(t, err)
}

func TestPostgresAnnouncementRepository_ReplaceDailyAnnouncements_RollsBack(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM daily_announcements").WillReturnResult(sqlmock.NewResult(0, 1))
	prep := mock.ExpectPrepare("INSERT INTO daily_announcements")
	prep.ExpectExec().WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := NewPostgresAnnouncementRepository(db).ReplaceDailyAnnouncements(context.Background(), "c1", "2024-05-01", []timetable.DailyAnnouncement{
		{Date: "2024-05-01", Period: 1},
	})
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestPostgresAnnouncementRepository_GetGeneralAnnouncement(t *testing.T) {
	ctx := context.Background()
	cols := []string{"date", "content", "ai_summary", "ai_summary_last_generated_at", "updated_at"}
	generated := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	t.Run("with summary", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery("FROM daily_general_announcements").
			WithArgs("c1", "2024-05-01").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("2024-05-01", "Sports day", "- a\n- b", generated, generated))

		g, err := NewPostgresAnnouncementRepository(db).GetGeneralAnnouncement(ctx, "c1", "2024-05-01")
		require.NoError(t, err)
		assert.True(t, g.HasSummary())
		assert.Equal(t, "- a\n- b", *g.AISummary)
		assert.Equal(t, generated, *g.AISummaryLastGeneratedAt)
		assert.Equal(t, timetable.ItemTypeGeneral, g.ItemType)
	})

	t.Run("without summary", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery("FROM daily_general_announcements").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("2024-05-01", "Sports day", nil, nil, generated))

		g, err := NewPostgresAnnouncementRepository(db).GetGeneralAnnouncement(ctx, "c1", "2024-05-01")
		require.NoError(t, err)
		assert.False(t, g.HasSummary())
		assert.Nil(t, g.AISummaryLastGeneratedAt)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery("FROM daily_general_announcements").WillReturnError(sql.ErrNoRows)

		_, err := NewPostgresAnnouncementRepository(db).GetGeneralAnnouncement(ctx, "c1", "2024-05-01")
		assert.ErrorIs(t, err, ErrGeneralAnnouncementNotFound)
	})
}

func TestPostgresAnnouncementRepository_SetAISummary(t *testing.T) {
	ctx := context.Background()
	generated := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	t.Run("updates both fields", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec("UPDATE daily_general_announcements").
			WithArgs("c1", "2024-05-01", "- a\n- b", generated).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgresAnnouncementRepository(db).SetAISummary(ctx, "c1", "2024-05-01", "- a\n- b", generated))
	})

	t.Run("missing record", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec("UPDATE daily_general_announcements").WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPostgresAnnouncementRepository(db).SetAISummary(ctx, "c1", "2024-05-01", "- a", generated)
		assert.ErrorIs(t, err, ErrGeneralAnnouncementNotFound)
	})
}

func TestPostgresAnnouncementRepository_ClearAISummary_Idempotent(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("SET ai_summary = NULL").WithArgs("c1", "2024-05-01").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, NewPostgresAnnouncementRepository(db).ClearAISummary(context.Background(), "c1", "2024-05-01"))
}
