package cli

import (
	"fmt"
	"time"

	"class_info_hub/internal/app"
	"class_info_hub/internal/domain/timetable"
	"class_info_hub/internal/infra/logger"
	"class_info_hub/internal/infra/telegram"

	"github.com/spf13/cobra"
)

var (
	digestClassID string
	digestDate    string
	digestDryRun  bool
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Send or preview the daily schedule digest",
}

var digestSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send the digest to the configured class chats now",
	Long: `Send the digest of every class in DIGEST_CHATS, or of one class with --class.

Use --dry-run to print the digest instead of sending it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		c, err := newContainer(ctx)
		if err != nil {
			return err
		}
		defer c.Close()

		date := digestDate
		if date == "" {
			date = time.Now().Format(timetable.DateLayout)
		}
		chats := c.cfg.DigestChats
		if digestClassID != "" {
			chatID, ok := chats[digestClassID]
			if !ok && !digestDryRun {
				return fmt.Errorf("class %s has no chat in DIGEST_CHATS", digestClassID)
			}
			chats = map[string]int64{digestClassID: chatID}
		}

		if digestDryRun {
			for classID := range chats {
				view, err := c.schedule.EffectiveDay(ctx, classID, date)
				if err != nil {
					return err
				}
				printSection(out, classID)
				fmt.Fprintln(out, app.FormatDigest(view))
			}
			return nil
		}

		bot, err := newSendOnlyBot(c.cfg.TelegramToken)
		if err != nil {
			return err
		}
		digest := app.NewDigestService(c.schedule, telegram.NewTelebotAdapter(bot), chats, logger.Component("digest"))
		sent := 0
		for classID, chatID := range chats {
			ok, err := digest.SendDigest(ctx, classID, date, chatID)
			if err != nil {
				printError(out, fmt.Sprintf("%s: %v", classID, err))
				continue
			}
			if ok {
				sent++
			}
		}
		printSuccess(out, fmt.Sprintf("Sent %d digest(s) for %s.", sent, date))
		return nil
	},
}

func init() {
	digestSendCmd.Flags().StringVar(&digestClassID, "class", "", "only this class")
	digestSendCmd.Flags().StringVar(&digestDate, "date", "", "date to send (YYYY-MM-DD, default today)")
	digestSendCmd.Flags().BoolVar(&digestDryRun, "dry-run", false, "print instead of sending")
	digestCmd.AddCommand(digestSendCmd)
}
