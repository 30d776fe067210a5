package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"class_info_hub/internal/domain/timetable"
	"class_info_hub/internal/infra/logger"
)

func TestFormatDigest(t *testing.T) {
	view := &DayView{
		Date:    "2024-05-01",
		Weekday: timetable.Wednesday,
		Slots: []timetable.EffectiveSlot{
			{Period: 1, SubjectID: strPtr("eng"), SubjectName: "English", Text: "quiz"},
			{Period: 2, SubjectID: strPtr("bio")},
			{Period: 3, Cleared: true},
		},
		General: &timetable.DailyGeneralAnnouncement{Content: "Long text", AISummary: strPtr("- a\n- b")},
	}

	want := "📅 2024-05-01 (Wednesday)\n\n" +
		"1. English: quiz\n" +
		"2. bio\n" +
		"3. —\n\n" +
		"📝 Summary:\n- a\n- b"
	assert.Equal(t, want, FormatDigest(view))

	view.General.AISummary = nil
	assert.Contains(t, FormatDigest(view), "📝 Announcement:\nLong text")
}

func TestDigestService_SendDailyDigest(t *testing.T) {
	tr, ar := newMemTimetableRepo(), newMemAnnouncementRepo()
	seedClass(tr, ar)
	tg := &recordingTelegram{}
	schedule := NewScheduleService(tr, ar, logger.Discard())
	svc := NewDigestService(schedule, tg, map[string]int64{"c1": -100, "empty": -200}, logger.Discard())
	svc.now = fixedNow

	require.NoError(t, svc.SendDailyDigest(context.Background()))

	// "empty" has no settings and no announcement.
	require.Len(t, tg.sent, 1)
	assert.Equal(t, int64(-100), tg.sent[0].chatID)
	assert.Contains(t, tg.sent[0].text, "1. English: quiz")
	assert.True(t, tg.sent[0].opts.DisableWebPagePreview)
}

func TestDigestService_SendDailyDigest_JoinsFailures(t *testing.T) {
	tr, ar := newMemTimetableRepo(), newMemAnnouncementRepo()
	seedClass(tr, ar)
	tr.settings["c2"] = tr.settings["c1"]
	tg := &recordingTelegram{err: errors.New("chat not found")}
	svc := NewDigestService(NewScheduleService(tr, ar, logger.Discard()), tg, map[string]int64{"c1": 1, "c2": 2}, logger.Discard())
	svc.now = fixedNow

	err := svc.SendDailyDigest(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat 1")
	assert.Contains(t, err.Error(), "chat 2")
}
