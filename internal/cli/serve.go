package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"class_info_hub/internal/app"
	idb "class_info_hub/internal/infra/database"
	"class_info_hub/internal/infra/httpapi"
	"class_info_hub/internal/infra/logger"
	"class_info_hub/internal/infra/scheduler"
	"class_info_hub/internal/infra/telegram"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the Telegram bot and the digest scheduler",
	Long: `Run the HTTP API until SIGINT or SIGTERM.

The Telegram bot and the daily digest start only when TELEGRAM_TOKEN is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, err := newContainer(ctx)
		if err != nil {
			return err
		}
		defer c.Close()
		return runServe(ctx, c)
	},
}

func runServe(ctx context.Context, c *container) error {
	mainLogger := logger.Component("main")
	if c.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if c.cfg.BotEnabled() {
		bot, err := newBot(c.cfg.TelegramToken)
		if err != nil {
			return err
		}
		botLogger := logger.Component("telegram")
		telegram.RegisterBotCommands(ctx, bot, c.cfg, c.schedule, botLogger)
		telegram.RegisterAdminHandlers(ctx, bot, c.admin, c.summary, c.cfg.AdminTelegramID, botLogger)
		telegram.RegisterSummaryCallbackHandlers(ctx, bot, c.summary, c.cfg.AdminTelegramID, botLogger)
		go bot.Start()
		defer bot.Stop()
		mainLogger.Info("Telegram bot started")

		if len(c.cfg.DigestChats) > 0 {
			digest := app.NewDigestService(c.schedule, telegram.NewTelebotAdapter(bot), c.cfg.DigestChats, logger.Component("digest"))
			digestScheduler := scheduler.NewDigestScheduler(digest, logger.Component("scheduler"), c.cfg.CronSpecDigest)
			if err := digestScheduler.Start(); err != nil {
				return err
			}
			defer digestScheduler.Stop()
		}
	} else {
		mainLogger.Info("TELEGRAM_TOKEN not set, bot and digest disabled")
	}

	apiLogger := logger.Component("http")
	handlers := httpapi.NewHandlers(c.schedule, c.sync, c.summary, idb.NewHealthChecker(c.db), apiLogger)
	server := httpapi.NewServer(c.cfg.HTTPAddr, httpapi.NewRouter(handlers, apiLogger), apiLogger)

	mainLogger.Info("Application setup complete")
	if err := server.Run(ctx); err != nil {
		return err
	}
	mainLogger.Info("Application shut down gracefully")
	return nil
}

func newBot(token string) (*telebot.Bot, error) {
	botLogger := logger.Component("telebot")
	pref := telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := botLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID).WithField("chat_id", c.Chat().ID)
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("could not create Telegram bot: %w", err)
	}
	return bot, nil
}

// newSendOnlyBot creates a bot for one-off sends. It is never started.
func newSendOnlyBot(token string) (*telebot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}
	bot, err := telebot.NewBot(telebot.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("could not create Telegram bot: %w", err)
	}
	return bot, nil
}
