package cli

import (
	"context"
	"fmt"
	"io"

	"class_info_hub/internal/app"

	"github.com/spf13/cobra"
)

var summaryUserID string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Generate or delete the AI summary of a general announcement",
}

var summaryGenerateCmd = &cobra.Command{
	Use:   "generate <classID> <YYYY-MM-DD>",
	Short: "Generate and store the AI summary of a day's general announcement",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()
		return runSummaryGenerate(cmd.Context(), cmd.OutOrStdout(), c.summary, args[0], args[1])
	},
}

var summaryDeleteCmd = &cobra.Command{
	Use:   "delete <classID> <YYYY-MM-DD>",
	Short: "Delete the stored AI summary of a day",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()
		return runSummaryDelete(cmd.Context(), cmd.OutOrStdout(), c.summary, args[0], args[1])
	},
}

func init() {
	summaryCmd.PersistentFlags().StringVar(&summaryUserID, "user", "cli", "user ID recorded in the logs")
	summaryCmd.AddCommand(summaryGenerateCmd, summaryDeleteCmd)
}

func runSummaryGenerate(ctx context.Context, out io.Writer, svc app.SummaryService, classID, date string) error {
	text, err := svc.RequestSummaryGeneration(ctx, classID, date, summaryUserID)
	if err != nil {
		printError(out, err.Error())
		return err
	}
	if text == "" {
		printWarning(out, "Nothing to do: class ID or date missing.")
		return nil
	}
	printSection(out, fmt.Sprintf("AI summary for %s on %s", classID, date))
	fmt.Fprintln(out, text)
	return nil
}

func runSummaryDelete(ctx context.Context, out io.Writer, svc app.SummaryService, classID, date string) error {
	if err := svc.RequestSummaryDeletion(ctx, classID, date, summaryUserID); err != nil {
		printError(out, err.Error())
		return err
	}
	printSuccess(out, fmt.Sprintf("AI summary for %s on %s deleted.", classID, date))
	return nil
}
