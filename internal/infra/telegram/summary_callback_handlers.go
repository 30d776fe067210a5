// internal/infra/telegram/summary_callback_handlers.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"class_info_hub/internal/app"
	"class_info_hub/internal/domain/summary"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	actionRegenerate = "sum_regen"
	actionDelete     = "sum_del"
)

// RegisterSummaryCallbackHandlers handles the inline Regenerate / Delete buttons.
func RegisterSummaryCallbackHandlers(ctx context.Context, b *telebot.Bot, summaryService app.SummaryService, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		data := c.Callback().Data
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "summary_callback",
			"sender_id": c.Sender().ID,
			"data":      data,
		})

		action, classID, date, ok := parseSummaryCallback(data)
		if !ok {
			c.Bot().OnError(fmt.Errorf("unhandled callback data by summary_callback_handler: %s", data), c)
			return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
		}
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized callback")
			return c.Respond(&telebot.CallbackResponse{Text: unauthorizedMessage, ShowAlert: true})
		}

		switch action {
		case actionRegenerate:
			if err := c.Respond(&telebot.CallbackResponse{Text: "Generating..."}); err != nil {
				handlerLogger.WithError(err).Warn("Failed to answer callback")
			}
			return sendGeneratedSummary(ctx, c, summaryService, classID, date, handlerLogger)
		default:
			if err := summaryService.RequestSummaryDeletion(ctx, classID, date, senderID(c)); err != nil {
				return c.Respond(&telebot.CallbackResponse{Text: userMessage(err), ShowAlert: true})
			}
			return c.Respond(&telebot.CallbackResponse{Text: "Summary deleted."})
		}
	})
}

func sendGeneratedSummary(ctx context.Context, c telebot.Context, summaryService app.SummaryService, classID, date string, log *logrus.Entry) error {
	text, err := summaryService.RequestSummaryGeneration(ctx, classID, date, senderID(c))
	if err != nil {
		return c.Send(userMessage(err))
	}
	if text == "" {
		log.Warn("Summary generation skipped")
		return c.Send("Nothing to do: class ID or date missing.")
	}
	return c.Send(fmt.Sprintf("AI summary for %s on %s:\n\n%s", classID, date, text), summaryMarkup(classID, date))
}

// summaryMarkup offers to regenerate or delete the summary of (classID, date).
func summaryMarkup(classID, date string) *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{
		InlineKeyboard: [][]telebot.InlineButton{{
			{Text: "🔄 Regenerate summary", Data: summaryCallbackData(actionRegenerate, classID, date)},
			{Text: "🗑 Delete summary", Data: summaryCallbackData(actionDelete, classID, date)},
		}},
	}
}

func summaryCallbackData(action, classID, date string) string {
	return action + "|" + classID + "|" + date
}

func parseSummaryCallback(data string) (action, classID, date string, ok bool) {
	parts := strings.Split(data, "|") // sum_regen|classID|2024-05-01
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	switch parts[0] {
	case actionRegenerate, actionDelete:
		return parts[0], parts[1], parts[2], true
	}
	return "", "", "", false
}

// userMessage is the text shown for a summary error. Configuration messages are shown
// as is; the other kinds carry their fixed user-facing text.
func userMessage(err error) string {
	var cfgErr *summary.ConfigurationError
	if errors.As(err, &cfgErr) {
		return "⚙️ " + cfgErr.Error()
	}
	var offErr *summary.OfflineError
	if errors.As(err, &offErr) {
		return "📡 " + summary.OfflineMessage
	}
	return "⚠️ " + summary.GenerationMessage
}
