package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"class_info_hub/internal/domain/summary"
	"class_info_hub/internal/domain/timetable"
	idb "class_info_hub/internal/infra/database"

	"gopkg.in/telebot.v3"
)

type memTimetableRepo struct {
	mu          sync.Mutex
	settings    map[string]*timetable.TimetableSettings
	fixed       map[string][]timetable.FixedTimeSlot
	subjects    map[string][]timetable.Subject
	settingsErr error
	saves       int
	fixedSaves  int
}

func newMemTimetableRepo() *memTimetableRepo {
	return &memTimetableRepo{
		settings: map[string]*timetable.TimetableSettings{},
		fixed:    map[string][]timetable.FixedTimeSlot{},
		subjects: map[string][]timetable.Subject{},
	}
}

func (r *memTimetableRepo) GetSettings(_ context.Context, classID string) (*timetable.TimetableSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settingsErr != nil {
		return nil, r.settingsErr
	}
	s, ok := r.settings[classID]
	if !ok {
		return nil, idb.ErrSettingsNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memTimetableRepo) SaveSettings(_ context.Context, classID string, s *timetable.TimetableSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.settings[classID] = &cp
	r.saves++
	return nil
}

func (r *memTimetableRepo) ListFixedSlots(_ context.Context, classID string) ([]timetable.FixedTimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]timetable.FixedTimeSlot{}, r.fixed[classID]...), nil
}

func (r *memTimetableRepo) ReplaceFixedSlots(_ context.Context, classID string, slots []timetable.FixedTimeSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fixed[classID] = append([]timetable.FixedTimeSlot{}, slots...)
	r.fixedSaves++
	return nil
}

func (r *memTimetableRepo) ListSubjects(_ context.Context, classID string) ([]timetable.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]timetable.Subject{}, r.subjects[classID]...), nil
}

func (r *memTimetableRepo) CreateSubject(_ context.Context, classID string, s *timetable.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects[classID] = append(r.subjects[classID], *s)
	return nil
}

type memAnnouncementRepo struct {
	mu        sync.Mutex
	daily     map[string][]timetable.DailyAnnouncement // classID/date
	general   map[string]*timetable.DailyGeneralAnnouncement
	err       error
	replaces  int
	summaries int
	lists     int
	honorCtx  bool // fail writes on a cancelled context, like database/sql does
}

func newMemAnnouncementRepo() *memAnnouncementRepo {
	return &memAnnouncementRepo{
		daily:   map[string][]timetable.DailyAnnouncement{},
		general: map[string]*timetable.DailyGeneralAnnouncement{},
	}
}

func memKey(classID, date string) string { return classID + "/" + date }

func (r *memAnnouncementRepo) ListDailyAnnouncements(_ context.Context, classID, date string) ([]timetable.DailyAnnouncement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.err != nil {
		return nil, r.err
	}
	return append([]timetable.DailyAnnouncement{}, r.daily[memKey(classID, date)]...), nil
}

func (r *memAnnouncementRepo) ReplaceDailyAnnouncements(_ context.Context, classID, date string, anns []timetable.DailyAnnouncement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.daily[memKey(classID, date)] = append([]timetable.DailyAnnouncement{}, anns...)
	r.replaces++
	return nil
}

func (r *memAnnouncementRepo) UpsertDailyAnnouncement(_ context.Context, classID string, a *timetable.DailyAnnouncement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	key := memKey(classID, a.Date)
	for i, existing := range r.daily[key] {
		if existing.Period == a.Period {
			r.daily[key][i] = *a
			return nil
		}
	}
	r.daily[key] = append(r.daily[key], *a)
	return nil
}

func (r *memAnnouncementRepo) GetGeneralAnnouncement(_ context.Context, classID, date string) (*timetable.DailyGeneralAnnouncement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	g, ok := r.general[memKey(classID, date)]
	if !ok {
		return nil, idb.ErrGeneralAnnouncementNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *memAnnouncementRepo) SaveGeneralAnnouncement(_ context.Context, classID string, g *timetable.DailyGeneralAnnouncement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *g
	r.general[memKey(classID, g.Date)] = &cp
	return nil
}

func (r *memAnnouncementRepo) SetAISummary(ctx context.Context, classID, date, text string, generatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	g, ok := r.general[memKey(classID, date)]
	if !ok {
		return idb.ErrGeneralAnnouncementNotFound
	}
	g.AISummary = &text
	g.AISummaryLastGeneratedAt = &generatedAt
	r.summaries++
	return nil
}

func (r *memAnnouncementRepo) ClearAISummary(ctx context.Context, classID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	if g, ok := r.general[memKey(classID, date)]; ok {
		g.AISummary = nil
		g.AISummaryLastGeneratedAt = nil
	}
	return nil
}

type stubSummarizer struct {
	resp     summary.Response
	err      error
	calls    int
	last     summary.Request
	honorCtx bool
}

func (s *stubSummarizer) Summarize(ctx context.Context, req summary.Request) (summary.Response, error) {
	s.calls++
	s.last = req
	if s.honorCtx && ctx.Err() != nil {
		return summary.Response{}, ctx.Err()
	}
	return s.resp, s.err
}

type stubAIConfig struct{ err error }

func (c stubAIConfig) AIConfigured() error { return c.err }

// memCache stores JSON like the Redis cache does.
type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	hits    int
	deletes int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) Set(_ context.Context, key string, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deletes++
	return nil
}

type sentMessage struct {
	chatID int64
	text   string
	opts   *telebot.SendOptions
}

type recordingTelegram struct {
	sent []sentMessage
	err  error
}

func (r *recordingTelegram) SendMessage(chatID int64, text string, opts *telebot.SendOptions) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentMessage{chatID: chatID, text: text, opts: opts})
	return nil
}

func strPtr(s string) *string { return &s }

func fixedNow() time.Time { return time.Date(2024, 5, 1, 7, 30, 0, 0, time.UTC) }
