// internal/app/summary_service.go
package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"class_info_hub/internal/domain/summary"
	"class_info_hub/internal/domain/timetable"
	idb "class_info_hub/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// SummaryService generates and deletes the AI summary of a day's general announcement.
//
// Only *summary.ConfigurationError, *summary.OfflineError and *summary.GenerationError
// are ever returned. A blank classID or date is logged and ignored: generation returns ""
// with a nil error, deletion returns nil. Callers can then skip a validation branch.
type SummaryService interface {
	RequestSummaryGeneration(ctx context.Context, classID, date, userID string) (string, error)
	RequestSummaryDeletion(ctx context.Context, classID, date, userID string) error
}

// SummaryServiceImpl implements the SummaryService interface.
type SummaryServiceImpl struct {
	annRepo    timetable.AnnouncementRepository
	summarizer summary.Summarizer
	aiConfig   summary.ConfigProvider
	logger     *logrus.Entry
	now        func() time.Time
}

func NewSummaryServiceImpl(
	ar timetable.AnnouncementRepository,
	sm summary.Summarizer,
	cfg summary.ConfigProvider,
	logger *logrus.Entry,
) *SummaryServiceImpl {
	return &SummaryServiceImpl{
		annRepo:    ar,
		summarizer: sm,
		aiConfig:   cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// RequestSummaryGeneration summarizes the general announcement of (classID, date) and
// stores the result, replacing any previous summary.
func (s *SummaryServiceImpl) RequestSummaryGeneration(ctx context.Context, classID, date, userID string) (string, error) {
	log := s.logger.WithFields(logrus.Fields{"op": "generate_summary", "class_id": classID, "date": date, "user_id": userID})

	if strings.TrimSpace(classID) == "" || strings.TrimSpace(date) == "" {
		log.Warn("Missing class ID or date, skipping summary generation")
		return "", nil
	}
	// The AI call and the write finish even when the caller goes away.
	ctx = context.WithoutCancel(ctx)

	// Checked on every call: the key may have been added or revoked since the last one.
	if err := s.aiConfig.AIConfigured(); err != nil {
		log.WithError(err).Warn("AI backend is not configured")
		return "", err
	}

	general, err := s.annRepo.GetGeneralAnnouncement(ctx, classID, date)
	if err != nil {
		if errors.Is(err, idb.ErrGeneralAnnouncementNotFound) {
			err = &summary.GenerationError{Op: "read general announcement", Cause: summary.ErrNothingToSummarize}
		}
		return "", s.fail(log, "read general announcement", err)
	}
	if strings.TrimSpace(general.Content) == "" {
		return "", s.fail(log, "read general announcement", &summary.GenerationError{Op: "read general announcement", Cause: summary.ErrNothingToSummarize})
	}

	resp, err := s.summarizer.Summarize(ctx, summary.Request{AnnouncementText: general.Content})
	if err != nil {
		return "", s.fail(log, "summarize", err)
	}
	text := strings.TrimSpace(resp.Summary)
	if text == "" {
		return "", s.fail(log, "summarize", &summary.GenerationError{Op: "summarize", Cause: summary.ErrEmptySummary})
	}

	generatedAt := s.now()
	if err := s.annRepo.SetAISummary(ctx, classID, date, text, generatedAt); err != nil {
		return "", s.fail(log, "store summary", err)
	}

	log.WithField("summary_length", len(text)).Info("AI summary generated")
	return text, nil
}

// RequestSummaryDeletion removes the stored summary. Deleting an absent summary succeeds.
func (s *SummaryServiceImpl) RequestSummaryDeletion(ctx context.Context, classID, date, userID string) error {
	log := s.logger.WithFields(logrus.Fields{"op": "delete_summary", "class_id": classID, "date": date, "user_id": userID})

	if strings.TrimSpace(classID) == "" || strings.TrimSpace(date) == "" {
		log.Warn("Missing class ID or date, skipping summary deletion")
		return nil
	}
	ctx = context.WithoutCancel(ctx)

	if err := s.annRepo.ClearAISummary(ctx, classID, date); err != nil {
		return s.fail(log, "clear summary", err)
	}
	log.Info("AI summary deleted")
	return nil
}

// fail classifies err and logs the full detail; only the classified error leaves the service.
func (s *SummaryServiceImpl) fail(log *logrus.Entry, op string, err error) error {
	classified := summary.Classify(op, err)
	log.WithField("detail", summary.Detail(classified)).WithError(classified).Error("Summary operation failed")
	return classified
}
