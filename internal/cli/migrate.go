package cli

import (
	"fmt"

	"class_info_hub/internal/infra/config"
	idb "class_info_hub/internal/infra/database"
	"class_info_hub/internal/infra/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status|version]",
	Short:     "Run the database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status", "version"},
	RunE: func(cmd *cobra.Command, args []string) error {
		command := "up"
		if len(args) == 1 {
			command = args[0]
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.Init(cfg)

		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := idb.Migrate(cmd.Context(), db, command); err != nil {
			printError(cmd.OutOrStdout(), err.Error())
			return err
		}
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("migrate %s done", command))
		return nil
	},
}
