package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"class_info_hub/internal/app"
	"class_info_hub/internal/domain/timetable"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const unauthorizedMessage = "Error: you are not allowed to run this command."

// RegisterAdminHandlers registers the admin-only commands.
func RegisterAdminHandlers(
	ctx context.Context,
	b *telebot.Bot,
	adminService *app.AdminService,
	summaryService app.SummaryService,
	adminTelegramID int64,
	baseLogger *logrus.Entry,
) {
	b.Handle("/gen_summary", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/gen_summary",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedMessage)
		}

		classID, date, err := parseClassDateArgs(c.Args())
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send("Usage: /gen_summary <classID> <YYYY-MM-DD>")
		}
		return sendGeneratedSummary(ctx, c, summaryService, classID, date, handlerLogger)
	})

	b.Handle("/del_summary", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/del_summary",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedMessage)
		}

		classID, date, err := parseClassDateArgs(c.Args())
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send("Usage: /del_summary <classID> <YYYY-MM-DD>")
		}
		if err := summaryService.RequestSummaryDeletion(ctx, classID, date, senderID(c)); err != nil {
			return c.Send(userMessage(err))
		}
		return c.Send(fmt.Sprintf("AI summary for %s on %s deleted.", classID, date))
	})

	b.Handle("/announce", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/announce",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedMessage)
		}

		// Expected format: /announce <classID> <date> <text...>
		args := c.Args()
		if len(args) < 3 {
			return c.Send("Usage: /announce <classID> <YYYY-MM-DD> <text>")
		}
		classID, date := args[0], args[1]
		content := strings.Join(args[2:], " ")

		g, err := adminService.SetGeneralAnnouncement(ctx, c.Sender().ID, classID, date, content)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, app.ErrAdminNotAuthorized):
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send(unauthorizedMessage)
			case errors.Is(err, app.ErrEmptyAnnouncement):
				return c.Send("Error: the announcement text is empty.")
			default:
				logWithError.Error("Failed to save general announcement")
				return c.Send(fmt.Sprintf("Could not save the announcement: %s", err.Error()))
			}
		}
		handlerLogger.WithFields(logrus.Fields{"class_id": classID, "date": g.Date}).Info("General announcement saved")
		return c.Send(fmt.Sprintf("Announcement for %s on %s saved.", classID, g.Date), summaryMarkup(classID, g.Date))
	})

	b.Handle("/add_subject", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/add_subject",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedMessage)
		}

		// Expected format: /add_subject <classID> <subjectID> <name> [teacher]
		args := c.Args()
		if len(args) < 3 || len(args) > 4 {
			return c.Send("Usage: /add_subject <classID> <subjectID> <name> [teacher]")
		}
		var teacherName string
		if len(args) == 4 {
			teacherName = args[3]
		}

		subject, err := adminService.AddSubject(ctx, c.Sender().ID, args[0], args[1], args[2], teacherName)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, app.ErrAdminNotAuthorized):
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send(unauthorizedMessage)
			case errors.Is(err, app.ErrSubjectAlreadyExists):
				return c.Send(fmt.Sprintf("Error: subject %s already exists.", args[1]))
			default:
				logWithError.Error("Failed to add subject")
				return c.Send(fmt.Sprintf("Could not add the subject: %s", err.Error()))
			}
		}
		handlerLogger.WithField("subject_id", subject.ID).Info("Subject added")
		return c.Send(fmt.Sprintf("Subject %s (%s) added.", subject.Name, subject.ID))
	})
}

// parseClassDateArgs reads "<classID> <YYYY-MM-DD>".
func parseClassDateArgs(args []string) (string, string, error) {
	if len(args) != 2 {
		return "", "", fmt.Errorf("expected 2 arguments, got %d", len(args))
	}
	if _, err := timetable.ParseDate(args[1]); err != nil {
		return "", "", err
	}
	return args[0], args[1], nil
}

func senderID(c telebot.Context) string {
	return strconv.FormatInt(c.Sender().ID, 10)
}
