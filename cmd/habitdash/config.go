package habitdash

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/saadjs/habitdash/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage habitdash local configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a configuration value (api_url, freshness, timeout, refetch_on_invalidate, log_level)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := config.SetStored(sqldb, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
			return nil
		})
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a persisted configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			removed, err := config.UnsetStored(sqldb, args[0])
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was not set\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show effective configuration and where each value was saved",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			cfg, err := loadConfig(sqldb)
			if err != nil {
				return err
			}
			stored, err := config.ListStored(sqldb)
			if err != nil {
				return err
			}
			effective := map[string]string{
				config.KeyAPIURL:    cfg.APIURL,
				config.KeyFreshness: cfg.Freshness.String(),
				config.KeyTimeout:   cfg.Timeout.String(),
				config.KeyRefetch:   strconv.FormatBool(cfg.RefetchOnInvalidate),
				config.KeyLogLevel:  cfg.LogLevel,
			}
			fmt.Fprintln(cmd.OutOrStdout(), "KEY\tVALUE\tSTORED")
			for _, k := range config.StoredKeys() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", k, effective[k], stored[k])
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configUnsetCmd, configGetCmd)
}
