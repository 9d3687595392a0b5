package habitdash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/saadjs/habitdash/internal/client"
	"github.com/saadjs/habitdash/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var dashboardFormat string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show today's habits, diet, water and body panels",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(dashboardFormat))
		switch format {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("invalid --format %q (use text, json or yaml)", dashboardFormat)
		}
		return withSession(cmd, func(ctx context.Context, c *client.Client) error {
			d, loadErr := c.LoadDashboard(ctx)
			if errors.Is(loadErr, store.ErrNotAuthenticated) {
				return loadErr
			}
			switch format {
			case "json":
				b, err := json.MarshalIndent(d, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal dashboard json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(d); err != nil {
					return fmt.Errorf("marshal dashboard yaml: %w", err)
				}
				if err := enc.Close(); err != nil {
					return fmt.Errorf("marshal dashboard yaml: %w", err)
				}
			default:
				renderDashboard(cmd.OutOrStdout(), d, c.Stores.Stats.Weekly.Peek().Data)
			}
			if loadErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: some panels show cached data: %v\n", loadErr)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringVar(&dashboardFormat, "format", "text", "Output format: text|json|yaml")
}
