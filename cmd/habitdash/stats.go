package habitdash

import (
	"context"
	"fmt"

	"github.com/saadjs/habitdash/internal/client"
	"github.com/saadjs/habitdash/internal/service"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show habit completion statistics",
}

var statsDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show today's completion",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			s, err := c.Stores.Stats.Daily.Fetch(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed: %d/%d\n", s.CompletedToday, s.TotalHabits)
			fmt.Fprintf(cmd.OutOrStdout(), "Percent: %.0f%%\n", s.Percent)
			return nil
		})
	},
}

var statsWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Show the last seven days",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			days, err := c.Stores.Stats.Weekly.Fetch(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "DAY\tPERCENT")
			for _, d := range days {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.0f%%\n", d.Day, d.Percent)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Average: %d%%\n", service.WeeklyAverage(days))
			return nil
		})
	},
}

var statsMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Show the last four weeks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			weeks, err := c.Stores.Stats.Monthly.Fetch(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "WEEK\tPERCENT")
			for _, w := range weeks {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.0f%%\n", w.Week, w.Percent)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Average: %d%%\n", service.MonthlyAverage(weeks))
			return nil
		})
	},
}

var statsStreakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show current and longest streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			s, err := c.Stores.Stats.Streak.Fetch(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current streak: %d day(s)\n", s.CurrentStreak)
			fmt.Fprintf(cmd.OutOrStdout(), "Longest streak: %d day(s)\n", s.MaxStreak)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsDailyCmd, statsWeeklyCmd, statsMonthlyCmd, statsStreakCmd)
}
