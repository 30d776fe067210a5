// internal/app/digest_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	domainTelegram "class_info_hub/internal/domain/telegram"
	"class_info_hub/internal/domain/timetable"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// DigestService posts each class's schedule of the day to its Telegram chat.
type DigestService struct {
	schedule       *ScheduleService
	telegramClient domainTelegram.Client
	chats          map[string]int64 // classID -> chat ID
	logger         *logrus.Entry
	now            func() time.Time
}

func NewDigestService(schedule *ScheduleService, tc domainTelegram.Client, chats map[string]int64, logger *logrus.Entry) *DigestService {
	return &DigestService{schedule: schedule, telegramClient: tc, chats: chats, logger: logger, now: time.Now}
}

// SendDailyDigest sends today's digest to every configured chat. A failing class does not
// stop the others; all failures are returned joined.
func (s *DigestService) SendDailyDigest(ctx context.Context) error {
	date := s.now().Format(timetable.DateLayout)
	classIDs := make([]string, 0, len(s.chats))
	for classID := range s.chats {
		classIDs = append(classIDs, classID)
	}
	sort.Strings(classIDs)

	var errs []error
	sent := 0
	for _, classID := range classIDs {
		ok, err := s.SendDigest(ctx, classID, date, s.chats[classID])
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{"class_id": classID, "date": date}).Error("Failed to send digest")
			errs = append(errs, err)
			continue
		}
		if ok {
			sent++
		}
	}
	s.logger.WithFields(logrus.Fields{"date": date, "sent": sent, "failed": len(errs)}).Info("Daily digest run finished")
	return errors.Join(errs...)
}

// SendDigest sends the digest of (classID, date) to chatID. Nothing is sent for a day
// without slots or general announcement; the boolean reports whether a message went out.
func (s *DigestService) SendDigest(ctx context.Context, classID, date string, chatID int64) (bool, error) {
	view, err := s.schedule.EffectiveDay(ctx, classID, date)
	if err != nil {
		return false, fmt.Errorf("failed to build day view for class %s: %w", classID, err)
	}
	if len(view.Slots) == 0 && view.General == nil {
		s.logger.WithFields(logrus.Fields{"class_id": classID, "date": date}).Debug("Nothing scheduled, digest skipped")
		return false, nil
	}

	if err := s.telegramClient.SendMessage(chatID, FormatDigest(view), &telebot.SendOptions{DisableWebPagePreview: true}); err != nil {
		return false, fmt.Errorf("failed to send digest to chat %d: %w", chatID, err)
	}
	return true, nil
}

// FormatDigest renders a DayView as plain text. The AI summary replaces the full general
// announcement when one is stored.
func FormatDigest(view *DayView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s (%s)\n", view.Date, capitalize(string(view.Weekday)))

	if len(view.Slots) > 0 {
		b.WriteString("\n")
		for _, slot := range view.Slots {
			fmt.Fprintf(&b, "%d. %s", slot.Period, slotLabel(slot))
			if slot.Text != "" {
				fmt.Fprintf(&b, ": %s", slot.Text)
			}
			b.WriteString("\n")
		}
	}

	if g := view.General; g != nil {
		switch {
		case g.HasSummary():
			fmt.Fprintf(&b, "\n📝 Summary:\n%s\n", strings.TrimSpace(*g.AISummary))
		case strings.TrimSpace(g.Content) != "":
			fmt.Fprintf(&b, "\n📝 Announcement:\n%s\n", strings.TrimSpace(g.Content))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func slotLabel(slot timetable.EffectiveSlot) string {
	switch {
	case slot.SubjectName != "":
		return slot.SubjectName
	case slot.SubjectID != nil:
		return *slot.SubjectID
	default:
		return "—"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
