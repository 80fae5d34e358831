package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lorrc/presence-stats/internal/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	root := buildRoot(os.Stdout, config.Load)

	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GlobalFlags holds persistent flags shared by every command
type GlobalFlags struct {
	EnvFile string
}

// StatsFlags holds flags for the stats command
type StatsFlags struct {
	Users  []string
	Start  string
	End    string
	Pretty bool
}

// buildRoot creates the root command. loadConfig is called lazily by the
// commands that need a store.
func buildRoot(out io.Writer, loadConfig func() (*config.Config, error)) *cobra.Command {
	globalFlags := &GlobalFlags{}
	statsFlags := &StatsFlags{}

	load := func() (*config.Config, error) {
		if globalFlags.EnvFile != "" {
			if err := godotenv.Overload(globalFlags.EnvFile); err != nil {
				return nil, fmt.Errorf("failed to read env file: %w", err)
			}
		}
		return loadConfig()
	}

	root := &cobra.Command{
		Use:   "presencectl",
		Short: "Presence statistics from recorded status changes",
		Long: `presencectl computes how many users were available over a time window,
reading status changes from the configured store (STORE_DRIVER).

Examples:
  presencectl stats --users=<id>,<id> --start=2024-01-01 --end=2024-01-08
  STORE_DRIVER=sqlite SQLITE_PATH=./presence.db presencectl stats --users=<id> --pretty`,
		SilenceUsage: true,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&globalFlags.EnvFile, "env-file", "", "path to a .env file loaded before the environment")

	root.AddCommand(
		createStatsCommand(load, statsFlags),
		createVersionCommand(),
	)

	return root
}
