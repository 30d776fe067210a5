package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"class_info_hub/internal/app"
	"class_info_hub/internal/domain/summary"
	"class_info_hub/internal/domain/timetable"
	"class_info_hub/internal/infra/logger"
)

type stubSchedule struct {
	view *app.DayView
	err  error
}

func (s stubSchedule) EffectiveDay(_ context.Context, classID, date string) (*app.DayView, error) {
	if s.err != nil {
		return nil, s.err
	}
	if _, err := timetable.ParseDate(date); err != nil {
		return nil, err
	}
	v := *s.view
	v.ClassID, v.Date = classID, date
	return &v, nil
}

type stubSync struct {
	changed     bool
	err         error
	gotSettings *timetable.TimetableSettings
	gotAnns     []timetable.DailyAnnouncement
	gotDays     map[string][]timetable.DailyAnnouncement
	cleared     int
}

func (s *stubSync) SaveSettings(_ context.Context, _ string, local *timetable.TimetableSettings) (bool, error) {
	s.gotSettings = local
	return s.changed, s.err
}

func (s *stubSync) SaveFixedSlots(_ context.Context, _ string, _ []timetable.FixedTimeSlot) (bool, error) {
	return s.changed, s.err
}

func (s *stubSync) SaveDailyAnnouncements(_ context.Context, _, _ string, local []timetable.DailyAnnouncement) ([]timetable.DailyAnnouncement, bool, error) {
	s.gotAnns = local
	return local, s.changed, s.err
}

func (s *stubSync) SaveAnnouncementDays(_ context.Context, _ string, local map[string][]timetable.DailyAnnouncement) (map[string]bool, error) {
	s.gotDays = local
	if s.err != nil {
		return nil, s.err
	}
	changed := make(map[string]bool, len(local))
	for date := range local {
		changed[date] = s.changed
	}
	return changed, nil
}

func (s *stubSync) ClearSlot(_ context.Context, _, _ string, period int) error {
	s.cleared = period
	return s.err
}

type stubSummary struct {
	text   string
	err    error
	userID string
}

func (s *stubSummary) RequestSummaryGeneration(_ context.Context, _, _, userID string) (string, error) {
	s.userID = userID
	return s.text, s.err
}

func (s *stubSummary) RequestSummaryDeletion(_ context.Context, _, _, userID string) error {
	s.userID = userID
	return s.err
}

type stubHealth struct{ err error }

func (h stubHealth) Check(context.Context) error { return h.err }

func newTestRouter(sync *stubSync, sm *stubSummary, health stubHealth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	view := &app.DayView{Slots: []timetable.EffectiveSlot{{Period: 1, Text: "quiz"}}}
	h := NewHandlers(stubSchedule{view: view}, sync, sm, health, logger.Discard())
	return NewRouter(h, logger.Discard())
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(userIDHeader, "teacher-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(newTestRouter(&stubSync{}, &stubSummary{}, stubHealth{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	_, err := uuid.Parse(w.Header().Get(requestIDHeader))
	assert.NoError(t, err)

	w = do(newTestRouter(&stubSync{}, &stubSummary{}, stubHealth{err: errors.New("down")}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetSchedule(t *testing.T) {
	r := newTestRouter(&stubSync{}, &stubSummary{}, stubHealth{})

	w := do(r, http.MethodGet, "/api/classes/c1/schedule/2024-05-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	var view app.DayView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "c1", view.ClassID)
	assert.Equal(t, "quiz", view.Slots[0].Text)

	w = do(r, http.MethodGet, "/api/classes/c1/schedule/tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPutSettings(t *testing.T) {
	sync := &stubSync{changed: true}
	r := newTestRouter(sync, &stubSummary{}, stubHealth{})

	w := do(r, http.MethodPut, "/api/classes/c1/settings", `{"numberOfPeriods":6,"activeDays":["monday","friday"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"changed":true}`, w.Body.String())
	assert.Equal(t, 6, sync.gotSettings.NumberOfPeriods)

	for _, body := range []string{
		`{"activeDays":["monday"]}`,
		`{"numberOfPeriods":6,"activeDays":["someday"]}`,
		`{"numberOfPeriods":-1,"activeDays":[]}`,
		`not json`,
	} {
		w = do(r, http.MethodPut, "/api/classes/c1/settings", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestPutAnnouncements(t *testing.T) {
	sync := &stubSync{}
	r := newTestRouter(sync, &stubSummary{}, stubHealth{})

	body := `{"announcements":[{"period":1,"subjectIdOverride":null},{"period":2,"subjectIdOverride":"eng","text":"quiz"},{"period":3}]}`
	w := do(r, http.MethodPut, "/api/classes/c1/announcements/2024-05-01", body)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, sync.gotAnns, 3)
	assert.Equal(t, timetable.NoSubject(), sync.gotAnns[0].SubjectIDOverride)
	assert.Equal(t, timetable.SpecificSubject("eng"), sync.gotAnns[1].SubjectIDOverride)
	assert.Equal(t, timetable.InheritSubject(), sync.gotAnns[2].SubjectIDOverride)

	sync.err = app.ErrInvalidPeriod
	w = do(r, http.MethodPut, "/api/classes/c1/announcements/2024-05-01", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	sync.err = errors.New("db down")
	w = do(r, http.MethodPut, "/api/classes/c1/announcements/2024-05-01", body)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestPutAnnouncementDays(t *testing.T) {
	sync := &stubSync{changed: true}
	r := newTestRouter(sync, &stubSummary{}, stubHealth{})

	body := `{"days":{"2024-05-01":[{"period":1,"text":"quiz"}],"2024-05-02":[{"period":2,"subjectIdOverride":null}]}}`
	w := do(r, http.MethodPut, "/api/classes/c1/announcements", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"changed":{"2024-05-01":true,"2024-05-02":true}}`, w.Body.String())

	require.Len(t, sync.gotDays, 2)
	assert.Equal(t, timetable.NoSubject(), sync.gotDays["2024-05-02"][0].SubjectIDOverride)

	w = do(r, http.MethodPut, "/api/classes/c1/announcements", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	sync.err = timetable.ErrInvalidDate
	w = do(r, http.MethodPut, "/api/classes/c1/announcements", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClearSlot(t *testing.T) {
	sync := &stubSync{}
	r := newTestRouter(sync, &stubSummary{}, stubHealth{})

	w := do(r, http.MethodPost, "/api/classes/c1/announcements/2024-05-01/periods/3/clear", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 3, sync.cleared)

	w = do(r, http.MethodPost, "/api/classes/c1/announcements/2024-05-01/periods/three/clear", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateSummary(t *testing.T) {
	tests := []struct {
		name     string
		stub     *stubSummary
		wantCode int
		wantBody string
	}{
		{name: "ok", stub: &stubSummary{text: "- a\n- b"}, wantCode: http.StatusOK, wantBody: `{"summary":"- a\n- b"}`},
		{name: "no-op", stub: &stubSummary{}, wantCode: http.StatusNoContent},
		{
			name:     "not configured",
			stub:     &stubSummary{err: &summary.ConfigurationError{Message: "GEMINI_API_KEY is not configured"}},
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"error":"GEMINI_API_KEY is not configured","kind":"configuration"}`,
		},
		{
			name:     "offline",
			stub:     &stubSummary{err: &summary.OfflineError{Op: "summarize", Cause: errors.New("dial tcp: refused")}},
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"error":"` + summary.OfflineMessage + `","kind":"offline"}`,
		},
		{
			name:     "generation",
			stub:     &stubSummary{err: &summary.GenerationError{Op: "summarize", Cause: errors.New("bad json")}},
			wantCode: http.StatusBadGateway,
			wantBody: `{"error":"` + summary.GenerationMessage + `","kind":"generation"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubSync{}, tt.stub, stubHealth{})
			w := do(r, http.MethodPost, "/api/classes/c1/general/2024-05-01/summary", "")
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
			assert.Equal(t, "teacher-1", tt.stub.userID)
		})
	}
}

func TestDeleteSummary(t *testing.T) {
	w := do(newTestRouter(&stubSync{}, &stubSummary{}, stubHealth{}), http.MethodDelete, "/api/classes/c1/general/2024-05-01/summary", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	stub := &stubSummary{err: &summary.OfflineError{Op: "clear summary", Cause: errors.New("x")}}
	w = do(newTestRouter(&stubSync{}, stub, stubHealth{}), http.MethodDelete, "/api/classes/c1/general/2024-05-01/summary", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
