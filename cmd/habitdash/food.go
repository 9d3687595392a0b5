package habitdash

import (
	"context"
	"fmt"

	"github.com/saadjs/habitdash/internal/client"
	"github.com/saadjs/habitdash/internal/model"
	"github.com/spf13/cobra"
)

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Manage foods inside a meal",
}

var (
	foodDescription string
	foodGrams       float64
	foodCalories    float64
	foodProtein     float64
	foodCarbs       float64
)

var foodAddCmd = &cobra.Command{
	Use:   "add <diet-id>",
	Short: "Add a food to a meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := model.NewFood{
			Description: foodDescription,
			Grams:       foodGrams,
			Calories:    foodCalories,
			Protein:     foodProtein,
			Carbs:       foodCarbs,
		}
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			if err := c.Stores.Diets.AddFood(ctx, args[0], in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to diet %s\n", in.Description, args[0])
			return nil
		})
	},
}

var foodUpdateCmd = &cobra.Command{
	Use:   "update <diet-id> <food-id>",
	Short: "Change a food's portion in grams",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			if err := c.Stores.Diets.UpdateFood(ctx, args[0], args[1], foodGrams); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated food %s to %.0fg\n", args[1], foodGrams)
			return nil
		})
	},
}

var foodDeleteCmd = &cobra.Command{
	Use:   "delete <diet-id> <food-id>",
	Short: "Remove a food from a meal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			if err := c.Stores.Diets.DeleteFood(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted food %s\n", args[1])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(foodCmd)
	foodCmd.AddCommand(foodAddCmd, foodUpdateCmd, foodDeleteCmd)

	foodAddCmd.Flags().StringVar(&foodDescription, "description", "", "Food description")
	foodAddCmd.Flags().Float64Var(&foodGrams, "grams", 0, "Portion in grams")
	foodAddCmd.Flags().Float64Var(&foodCalories, "calories", 0, "Calories for the portion")
	foodAddCmd.Flags().Float64Var(&foodProtein, "protein", 0, "Protein grams for the portion")
	foodAddCmd.Flags().Float64Var(&foodCarbs, "carbs", 0, "Carb grams for the portion")

	foodUpdateCmd.Flags().Float64Var(&foodGrams, "grams", 0, "New portion in grams")
}
