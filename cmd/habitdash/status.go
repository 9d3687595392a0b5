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

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Manage physical status records (weight, height, BMI, BMR)",
}

var statusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List physical status records",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			items, err := c.Stores.Status.Fetch(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tWEIGHT_KG\tHEIGHT_M\tAGE\tGENERE\tBMI\tCLASS\tBMR")
			for _, s := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.1f\t%.2f\t%d\t%s\t%.1f\t%s\t%.0f\n",
					s.ID, s.Weight, s.Height, s.Age, s.Genere, s.IMC, service.ClassifyBMI(s.IMC), s.TMB)
			}
			return nil
		})
	},
}

var (
	statusWeight     float64
	statusWeightUnit string
	statusHeight     float64
	statusHeightUnit string
	statusAge        int
	statusGenere     string
)

var statusAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a physical status; BMI and BMR are computed locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		weight, err := service.ToKilograms(statusWeight, statusWeightUnit)
		if err != nil {
			return err
		}
		height, err := service.ToMeters(statusHeight, statusHeightUnit)
		if err != nil {
			return err
		}
		in := store.StatusInput{Weight: weight, Height: height, Age: statusAge, Genere: model.Genere(statusGenere)}
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			s, err := c.Stores.Status.Create(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded status %s: BMI %.1f (%s), BMR %.0f kcal\n", s.ID, s.IMC, service.ClassifyBMI(s.IMC), s.TMB)
			return nil
		})
	},
}

var statusDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a physical status record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			if err := c.Stores.Status.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted status %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.AddCommand(statusListCmd, statusAddCmd, statusDeleteCmd)

	statusAddCmd.Flags().Float64Var(&statusWeight, "weight", 0, "Body weight")
	statusAddCmd.Flags().StringVar(&statusWeightUnit, "weight-unit", "kg", "kg|g|lb")
	statusAddCmd.Flags().Float64Var(&statusHeight, "height", 0, "Height")
	statusAddCmd.Flags().StringVar(&statusHeightUnit, "height-unit", "m", "m|cm|in|ft")
	statusAddCmd.Flags().IntVar(&statusAge, "age", 0, "Age in years")
	statusAddCmd.Flags().StringVar(&statusGenere, "genere", "", "masculine|feminine")
}
