package habitdash

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/saadjs/habitdash/cmd/habitdash.version=...".
var (
	version = "dev"
	commit  = ""
	date    = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version/build metadata",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersion(cmd *cobra.Command) {
	rev, when := commit, date
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if rev == "" {
					rev = s.Value
				}
			case "vcs.time":
				if when == "" {
					when = s.Value
				}
			}
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "habitdash %s\n", version)
	if rev != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", rev)
	}
	if when != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", when)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func userAgent() string {
	return "habitdash/" + version
}
