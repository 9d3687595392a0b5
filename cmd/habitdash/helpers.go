package habitdash

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/habitdash/internal/app"
	"github.com/saadjs/habitdash/internal/client"
	"github.com/saadjs/habitdash/internal/config"
	"github.com/saadjs/habitdash/internal/db"
	"github.com/saadjs/habitdash/internal/store"
	"github.com/spf13/cobra"
)

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.OpenMigrated(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()
	return run(sqldb)
}

// loadConfig resolves every config layer, with the persistent flags last.
func loadConfig(sqldb *sql.DB) (config.Config, error) {
	stored, err := config.ListStored(sqldb)
	if err != nil {
		return config.Config{}, err
	}
	file := configPath
	if file == "" && os.Getenv(config.EnvConfigFile) == "" {
		if file, err = app.DefaultConfigFile(); err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Resolve(config.Sources{
		File:   file,
		DotEnv: ".env",
		Stored: stored,
	})
	if err != nil {
		return config.Config{}, err
	}
	if apiURL != "" {
		if err := cfg.Set(config.KeyAPIURL, apiURL); err != nil {
			return config.Config{}, fmt.Errorf("--api-url: %w", err)
		}
	}
	if logLevel != "" {
		if err := cfg.Set(config.KeyLogLevel, logLevel); err != nil {
			return config.Config{}, fmt.Errorf("--log-level: %w", err)
		}
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))
}

func withClient(cmd *cobra.Command, run func(context.Context, *client.Client) error) error {
	return withDB(func(sqldb *sql.DB) error {
		cfg, err := loadConfig(sqldb)
		if err != nil {
			return err
		}
		c := client.New(client.Config{
			BaseURL:             cfg.APIURL,
			Timeout:             cfg.Timeout,
			FreshFor:            cfg.Freshness,
			UserAgent:           userAgent(),
			DB:                  sqldb,
			Logger:              newLogger(cmd, cfg.LogLevel),
			RefetchOnInvalidate: cfg.RefetchOnInvalidate,
		})
		if err := c.Start(); err != nil {
			return err
		}
		defer c.Close()

		err = run(commandContext(cmd), c)
		if errors.Is(err, store.ErrNotAuthenticated) {
			return fmt.Errorf("%w: run `habitdash login` first", err)
		}
		return err
	})
}

// withSession is withClient for commands that need a logged-in user. Reads
// without a session are inert in the stores, so the check happens here.
func withSession(cmd *cobra.Command, run func(context.Context, *client.Client) error) error {
	return withClient(cmd, func(ctx context.Context, c *client.Client) error {
		if !c.Session.Authenticated() {
			return store.ErrNotAuthenticated
		}
		return run(ctx, c)
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func parseAmountArg(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

// parseDateKey validates a YYYY-MM-DD flag, defaulting to fallback.
func parseDateKey(date, fallback string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
	}
	return t.Format("2006-01-02"), nil
}

// readSecret returns flagValue when set, otherwise the first line of stdin.
func readSecret(cmd *cobra.Command, flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", fmt.Errorf("password is required")
	}
	return line, nil
}

func checkMark(done bool) string {
	if done {
		return "x"
	}
	return " "
}
