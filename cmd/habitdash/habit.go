package habitdash

import (
	"context"
	"fmt"
	"strings"

	"github.com/saadjs/habitdash/internal/client"
	"github.com/saadjs/habitdash/internal/model"
	"github.com/spf13/cobra"
)

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Manage habits",
}

var habitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits with today's status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			habits, err := c.Stores.Habits.Fetch(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDONE\tFREQUENCY\tTITLE")
			for _, h := range habits {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t[%s]\t%s\t%s\n", h.ID, checkMark(h.TodayStatus), h.Frequency, h.Title)
			}
			return nil
		})
	},
}

var (
	habitTitle       string
	habitDescription string
	habitFrequency   string
)

var habitAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a habit",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := model.NewHabit{
			Title:       habitTitle,
			Description: habitDescription,
			Frequency:   model.Frequency(strings.ToLower(strings.TrimSpace(habitFrequency))),
		}
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			h, err := c.Stores.Habits.Create(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created habit %s (%s)\n", h.ID, h.Title)
			return nil
		})
	},
}

var habitDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a habit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			if err := c.Stores.Habits.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted habit %s\n", args[0])
			return nil
		})
	},
}

var habitToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Toggle today's completion for a habit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			res, err := c.Stores.Habits.Toggle(ctx, args[0])
			if err != nil {
				return err
			}
			if res.Habit != nil {
				state := "not done"
				if res.Habit.TodayStatus {
					state = "done"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s today\n", res.Habit.Title, state)
			}
			if res.Stats != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Today: %d/%d (%.0f%%)\n", res.Stats.CompletedToday, res.Stats.TotalHabits, res.Stats.Percent)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(habitCmd)
	habitCmd.AddCommand(habitListCmd, habitAddCmd, habitDeleteCmd, habitToggleCmd)

	habitAddCmd.Flags().StringVar(&habitTitle, "title", "", "Habit title")
	habitAddCmd.Flags().StringVar(&habitDescription, "description", "", "Optional description")
	habitAddCmd.Flags().StringVar(&habitFrequency, "frequency", "daily", "daily|weekly|monthly")
}
