// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"class_info_hub/internal/app"
	"class_info_hub/internal/domain/timetable"
	"class_info_hub/internal/infra/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// DayViewer builds the view of one class day.
type DayViewer interface {
	EffectiveDay(ctx context.Context, classID, date string) (*app.DayView, error)
}

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	cfg *config.AppConfig, // For AdminTelegramID
	schedule DayViewer,
	baseLogger *logrus.Entry, // For contextual logging
) {
	commandsLogger := baseLogger.WithField("handler_group", "commands")

	b.Handle("/start", func(c telebot.Context) error {
		logCtx := commandsLogger.WithField("command", "/start").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing /start command")

		if c.Sender().ID == cfg.AdminTelegramID {
			return c.Send(fmt.Sprintf("Hello, %s! You are the administrator. Use /help to see the commands.", c.Sender().FirstName))
		}
		return c.Send("Hello! I post the class schedule and announcements. Use /today <classID> to see today's schedule.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		logCtx := commandsLogger.WithField("command", "/help").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing /help command")
		return c.Send(helpText(c.Sender().ID == cfg.AdminTelegramID), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	b.Handle("/today", func(c telebot.Context) error {
		logCtx := commandsLogger.WithField("command", "/today").WithField("sender_id", c.Sender().ID)

		args := c.Args()
		if len(args) < 1 || len(args) > 2 {
			return c.Send("Usage: /today <classID> [YYYY-MM-DD]")
		}
		classID := args[0]
		date := time.Now().Format(timetable.DateLayout)
		if len(args) == 2 {
			date = args[1]
		}
		logCtx = logCtx.WithFields(logrus.Fields{"class_id": classID, "date": date})

		view, err := schedule.EffectiveDay(ctx, classID, date)
		if err != nil {
			logCtx.WithError(err).Error("Failed to build schedule")
			return c.Send("Could not load the schedule. Please try again later.")
		}
		if len(view.Slots) == 0 && view.General == nil {
			return c.Send(fmt.Sprintf("No classes for %s on %s.", classID, date))
		}
		return c.Send(app.FormatDigest(view))
	})
}

func helpText(isAdmin bool) string {
	var help strings.Builder
	help.WriteString("Available commands:\n\n")
	help.WriteString("`/today <classID> [YYYY-MM-DD]`\n - Show the schedule of a day.\n\n")
	if isAdmin {
		help.WriteString("`/announce <classID> <YYYY-MM-DD> <text>`\n - Set the general announcement of a day.\n\n")
		help.WriteString("`/gen_summary <classID> <YYYY-MM-DD>`\n - Generate the AI summary of the general announcement.\n\n")
		help.WriteString("`/del_summary <classID> <YYYY-MM-DD>`\n - Delete the AI summary.\n\n")
		help.WriteString("`/add_subject <classID> <subjectID> <name> [teacher]`\n - Add a subject.\n\n")
	}
	help.WriteString("`/help`\n - Show this message.")
	return help.String()
}
