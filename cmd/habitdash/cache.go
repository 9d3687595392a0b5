package habitdash

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/habitdash/internal/store"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local resource cache",
}

var cacheLimit int

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached resources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := store.ListCache(sqldb, cacheLimit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "KEY\tBYTES\tFETCHED_AT\tSTALE")
			for _, it := range items {
				fetched := ""
				if !it.FetchedAt.IsZero() {
					fetched = it.FetchedAt.Local().Format(time.DateTime)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%t\n", it.Key, it.Bytes, fetched, it.Stale)
			}
			return nil
		})
	},
}

var (
	cachePurgeKey string
	cachePurgeAll bool
)

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached resources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			n, err := store.PurgeCache(sqldb, cachePurgeKey, cachePurgeAll)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cache entr(ies)\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd, cachePurgeCmd)

	cacheListCmd.Flags().IntVar(&cacheLimit, "limit", 100, "Max rows")
	cachePurgeCmd.Flags().StringVar(&cachePurgeKey, "key", "", "Cache key or key prefix (e.g. stats)")
	cachePurgeCmd.Flags().BoolVar(&cachePurgeAll, "all", false, "Delete every cached resource")
}
