package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"class_info_hub/internal/app"
	"class_info_hub/internal/domain/summary"
	"class_info_hub/internal/domain/timetable"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ScheduleReader builds the view of one class day.
type ScheduleReader interface {
	EffectiveDay(ctx context.Context, classID, date string) (*app.DayView, error)
}

// Syncer writes local edits that differ from the remote state.
type Syncer interface {
	SaveSettings(ctx context.Context, classID string, local *timetable.TimetableSettings) (bool, error)
	SaveFixedSlots(ctx context.Context, classID string, local []timetable.FixedTimeSlot) (bool, error)
	SaveDailyAnnouncements(ctx context.Context, classID, date string, local []timetable.DailyAnnouncement) ([]timetable.DailyAnnouncement, bool, error)
	SaveAnnouncementDays(ctx context.Context, classID string, local map[string][]timetable.DailyAnnouncement) (map[string]bool, error)
	ClearSlot(ctx context.Context, classID, date string, period int) error
}

// HealthChecker reports whether the store is reachable.
type HealthChecker interface {
	Check(ctx context.Context) error
}

type Handlers struct {
	schedule ScheduleReader
	sync     Syncer
	summary  app.SummaryService
	health   HealthChecker
	logger   *logrus.Entry
}

func NewHandlers(schedule ScheduleReader, sync Syncer, summaryService app.SummaryService, health HealthChecker, logger *logrus.Entry) *Handlers {
	return &Handlers{schedule: schedule, sync: sync, summary: summaryService, health: health, logger: logger}
}

type settingsRequest struct {
	NumberOfPeriods *int                `json:"numberOfPeriods" binding:"required,min=0,max=20"`
	ActiveDays      []timetable.Weekday `json:"activeDays" binding:"required,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
}

type fixedSlotsRequest struct {
	Slots []timetable.FixedTimeSlot `json:"slots" binding:"required"`
}

type announcementsRequest struct {
	Announcements []timetable.DailyAnnouncement `json:"announcements" binding:"required"`
}

// announcementDaysRequest carries several dates, e.g. an offline week of edits.
type announcementDaysRequest struct {
	Days map[string][]timetable.DailyAnnouncement `json:"days" binding:"required"`
}

func (h *Handlers) Health(c *gin.Context) {
	if err := h.health.Check(c.Request.Context()); err != nil {
		requestLogger(c, h.logger).WithError(err).Error("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) GetSchedule(c *gin.Context) {
	view, err := h.schedule.EffectiveDay(c.Request.Context(), c.Param("classID"), c.Param("date"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handlers) PutSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	changed, err := h.sync.SaveSettings(c.Request.Context(), c.Param("classID"), &timetable.TimetableSettings{
		NumberOfPeriods: *req.NumberOfPeriods,
		ActiveDays:      req.ActiveDays,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (h *Handlers) PutFixedSlots(c *gin.Context) {
	var req fixedSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	changed, err := h.sync.SaveFixedSlots(c.Request.Context(), c.Param("classID"), req.Slots)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (h *Handlers) PutAnnouncements(c *gin.Context) {
	var req announcementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	remote, changed, err := h.sync.SaveDailyAnnouncements(c.Request.Context(), c.Param("classID"), c.Param("date"), req.Announcements)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": remote, "changed": changed})
}

func (h *Handlers) PutAnnouncementDays(c *gin.Context) {
	var req announcementDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	changed, err := h.sync.SaveAnnouncementDays(c.Request.Context(), c.Param("classID"), req.Days)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (h *Handlers) ClearSlot(c *gin.Context) {
	period, err := strconv.Atoi(c.Param("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period"})
		return
	}
	if err := h.sync.ClearSlot(c.Request.Context(), c.Param("classID"), c.Param("date"), period); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GenerateSummary answers 200 with the summary, or 204 when there was nothing to do.
func (h *Handlers) GenerateSummary(c *gin.Context) {
	text, err := h.summary.RequestSummaryGeneration(c.Request.Context(), c.Param("classID"), c.Param("date"), c.GetHeader(userIDHeader))
	if err != nil {
		writeSummaryError(c, err)
		return
	}
	if text == "" {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": text})
}

func (h *Handlers) DeleteSummary(c *gin.Context) {
	if err := h.summary.RequestSummaryDeletion(c.Request.Context(), c.Param("classID"), c.Param("date"), c.GetHeader(userIDHeader)); err != nil {
		writeSummaryError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeSummaryError maps the three summary error kinds. Only user-facing text is sent.
func writeSummaryError(c *gin.Context, err error) {
	var cfgErr *summary.ConfigurationError
	var offErr *summary.OfflineError
	switch {
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": cfgErr.Error(), "kind": "configuration"})
	case errors.As(err, &offErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": summary.OfflineMessage, "kind": "offline"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": summary.GenerationMessage, "kind": "generation"})
	}
}

func (h *Handlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidSettings), errors.Is(err, app.ErrInvalidPeriod), errors.Is(err, timetable.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		requestLogger(c, h.logger).WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
