package habitdash

import (
	"context"
	"fmt"
	"strings"

	"github.com/saadjs/habitdash/internal/client"
	"github.com/saadjs/habitdash/internal/model"
	"github.com/saadjs/habitdash/internal/service"
	"github.com/spf13/cobra"
)

var dietCmd = &cobra.Command{
	Use:   "diet",
	Short: "Manage meals and the daily calorie goal",
}

var dietListDate string

var dietListCmd = &cobra.Command{
	Use:   "list",
	Short: "List meals for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			day, err := parseDateKey(dietListDate, c.Today())
			if err != nil {
				return err
			}
			resp, err := c.Stores.Diets.Fetch(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tPERIOD\tTYPE\tKCAL\tGRAMS\tFOODS\tDESCRIPTION")
			for _, d := range resp.Diets {
				if d.DateKey != day {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%.0f\t%.0f\t%d\t%s\n", d.ID, d.Period, d.Type, d.Calories, d.Grams, len(d.Foods), d.Description)
				for _, f := range d.Foods {
					fmt.Fprintf(cmd.OutOrStdout(), "  food %s\t%.0fg\t%.0f kcal\tP %.1fg\tC %.1fg\t%s\n", f.ID, f.Grams, f.Calories, f.Protein, f.Carbs, f.Description)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Total: %.0f kcal\n", service.DietCalories(resp.Diets, day))
			if resp.Goal > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Goal: %.0f kcal (reached: %t)\n", resp.Goal, resp.GoalReached)
			}
			return nil
		})
	},
}

var (
	dietType        string
	dietPeriod      string
	dietDescription string
	dietDate        string
)

var dietAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a meal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			day, err := parseDateKey(dietDate, c.Today())
			if err != nil {
				return err
			}
			created, err := c.Stores.Diets.Create(ctx, model.NewDiet{
				Type:        model.DietType(strings.ToLower(strings.TrimSpace(dietType))),
				Period:      model.Period(strings.ToLower(strings.TrimSpace(dietPeriod))),
				Description: dietDescription,
				DateKey:     day,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created diet %s (%s %s on %s)\n", created.ID, created.Type, created.Period, created.DateKey)
			return nil
		})
	},
}

var dietUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a meal's type, period, description or date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			resp, err := c.Stores.Diets.Fetch(ctx)
			if err != nil {
				return err
			}
			var current *model.Diet
			for i := range resp.Diets {
				if resp.Diets[i].ID == args[0] {
					current = &resp.Diets[i]
					break
				}
			}
			if current == nil {
				return fmt.Errorf("diet %s not found", args[0])
			}
			in := model.NewDiet{
				Type:        current.Type,
				Period:      current.Period,
				Description: current.Description,
				DateKey:     current.DateKey,
			}
			flags := cmd.Flags()
			if flags.Changed("type") {
				in.Type = model.DietType(strings.ToLower(strings.TrimSpace(dietType)))
			}
			if flags.Changed("period") {
				in.Period = model.Period(strings.ToLower(strings.TrimSpace(dietPeriod)))
			}
			if flags.Changed("description") {
				in.Description = dietDescription
			}
			if flags.Changed("date") {
				if in.DateKey, err = parseDateKey(dietDate, current.DateKey); err != nil {
					return err
				}
			}
			updated, err := c.Stores.Diets.Edit(ctx, args[0], in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated diet %s\n", updated.ID)
			return nil
		})
	},
}

var dietDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			if err := c.Stores.Diets.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted diet %s\n", args[0])
			return nil
		})
	},
}

var dietGoalCmd = &cobra.Command{
	Use:   "goal <kcal>",
	Short: "Set the daily calorie goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goal, err := parseAmountArg("goal", args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			p, err := c.Stores.Diets.SetGoal(ctx, goal)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Daily goal set to %.0f kcal (weekly %.0f kcal)\n", goal, service.DietWeeklyGoal(goal))
			if p.Date != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Today: %.0f/%.0f kcal (%.0f%%)\n", p.Calories, p.Goal, p.Percentage)
			}
			return nil
		})
	},
}

var dietProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show today's calorie progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			p, err := c.Stores.Diets.Progress.Fetch(ctx)
			if err != nil {
				return err
			}
			if p.Goal == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Goal: not set")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Date: %s\n", p.Date)
			fmt.Fprintf(cmd.OutOrStdout(), "Calories: %.0f/%.0f kcal (%.0f%%)\n", p.Calories, p.Goal, p.Percentage)
			fmt.Fprintf(cmd.OutOrStdout(), "Achieved: %t\n", p.Achieved)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dietCmd)
	dietCmd.AddCommand(dietListCmd, dietAddCmd, dietUpdateCmd, dietDeleteCmd, dietGoalCmd, dietProgressCmd)

	dietListCmd.Flags().StringVar(&dietListDate, "date", "", "Date YYYY-MM-DD (default today)")

	for _, c := range []*cobra.Command{dietAddCmd, dietUpdateCmd} {
		c.Flags().StringVar(&dietType, "type", "", "bulking|cutting")
		c.Flags().StringVar(&dietPeriod, "period", "", "morning|midday|night")
		c.Flags().StringVar(&dietDescription, "description", "", "Meal description")
		c.Flags().StringVar(&dietDate, "date", "", "Date YYYY-MM-DD (default today)")
	}
}
