package habitdash

import (
	"context"
	"fmt"
	"time"

	"github.com/saadjs/habitdash/internal/client"
	"github.com/spf13/cobra"
)

var (
	authName     string
	authEmail    string
	authPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		if authEmail == "" {
			return fmt.Errorf("--email is required")
		}
		password, err := readSecret(cmd, authPassword, "Password: ")
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			if err := c.Login(ctx, authEmail, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", c.Session.Identity().Email)
			return nil
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		if authName == "" || authEmail == "" {
			return fmt.Errorf("--name and --email are required")
		}
		password, err := readSecret(cmd, authPassword, "Password: ")
		if err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			if err := c.Register(ctx, authName, authEmail, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", c.Session.Identity().Email)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session and cached data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			if !c.Session.Authenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err := c.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.Client) error {
			id := c.Session.Identity()
			if id == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ID: %s\n", id.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Name: %s\n", id.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "Email: %s\n", id.Email)
			if exp, ok := c.Session.ExpiresAt(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Session expires: %s\n", exp.Local().Format(time.RFC3339))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&authPassword, "password", "", "Account password (read from stdin when omitted)")

	registerCmd.Flags().StringVar(&authName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&authPassword, "password", "", "Account password (read from stdin when omitted)")
}
