package habitdash

import (
	"context"
	"fmt"

	"github.com/saadjs/habitdash/internal/client"
	"github.com/saadjs/habitdash/internal/model"
	"github.com/saadjs/habitdash/internal/service"
	"github.com/saadjs/habitdash/internal/store"
	"github.com/spf13/cobra"
)

var waterCmd = &cobra.Command{
	Use:   "water",
	Short: "Track water intake against the daily goal",
}

var waterHistory bool

var waterShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show today's water progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			resp, err := c.Stores.Water.Fetch(ctx)
			if err != nil {
				return err
			}
			if resp.Today == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Water: not tracked (record a status first)")
			} else {
				printWater(cmd, *resp.Today)
			}
			if waterHistory {
				fmt.Fprintln(cmd.OutOrStdout(), "DATE\tWATER_ML\tGOAL_ML\tACHIEVED")
				for _, p := range resp.History {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.0f\t%.0f\t%t\n", p.Date, p.Water, p.Goal, p.Achieved)
				}
			}
			return nil
		})
	},
}

var waterUnit string

var waterSetCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Set today's total",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ml, err := waterAmount(args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			resp, err := c.Stores.Water.Fetch(ctx)
			if err != nil {
				return err
			}
			if resp.Today == nil || resp.Today.ID == "" {
				return store.ErrNoWaterToday
			}
			p, err := c.Stores.Water.Update(ctx, resp.Today.ID, ml)
			if err != nil {
				return err
			}
			printWater(cmd, p)
			return nil
		})
	},
}

var waterAddCmd = &cobra.Command{
	Use:   "add <amount>",
	Short: "Add to today's total",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ml, err := waterAmount(args[0])
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			p, err := c.Stores.Water.Add(ctx, ml)
			if err != nil {
				return err
			}
			printWater(cmd, p)
			return nil
		})
	},
}

func waterAmount(arg string) (float64, error) {
	v, err := parseAmountArg("amount", arg)
	if err != nil {
		return 0, err
	}
	return service.ToMilliliters(v, waterUnit)
}

func printWater(cmd *cobra.Command, p model.WaterProgress) {
	fmt.Fprintf(cmd.OutOrStdout(), "Water: %.0f/%.0f ml (%.0f%%)\n", p.Water, p.Goal, service.WaterPercent(&p))
	if p.Achieved {
		fmt.Fprintln(cmd.OutOrStdout(), "Goal reached")
	}
}

func init() {
	rootCmd.AddCommand(waterCmd)
	waterCmd.AddCommand(waterShowCmd, waterSetCmd, waterAddCmd)

	waterShowCmd.Flags().BoolVar(&waterHistory, "history", false, "Include previous days")
	for _, c := range []*cobra.Command{waterSetCmd, waterAddCmd} {
		c.Flags().StringVar(&waterUnit, "unit", "ml", "ml|l|cup|fl-oz")
	}
}
