package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	httpAdapter "github.com/lorrc/presence-stats/internal/adapters/primary/http"
	"github.com/lorrc/presence-stats/internal/adapters/primary/validation"
	"github.com/lorrc/presence-stats/internal/adapters/secondary/store"
	"github.com/lorrc/presence-stats/internal/config"
	"github.com/lorrc/presence-stats/internal/core/ports"
	"github.com/lorrc/presence-stats/internal/core/services"
	"github.com/lorrc/presence-stats/internal/infrastructure/logging"
)

// createStatsCommand creates the stats subcommand
func createStatsCommand(load func() (*config.Config, error), flags *StatsFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Compute presence statistics for a set of users",
		Long: `Compute the availability timeline and its totals for the given users.
Dates without an offset are read in STATS_TIMEZONE. An omitted start defaults
to STATS_EPOCH_FLOOR and an omitted end to now.

Examples:
  presencectl stats --users=<id>,<id>
  presencectl stats --users=<id> --start="2024-01-01 08:00" --end=2024-01-02 --pretty`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runStats(cmd.Context(), cmd.OutOrStdout(), cfg, *flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.Users, "users", nil, "user ids, comma separated or repeated")
	cmd.Flags().StringVar(&flags.Start, "start", "", "window start (optional)")
	cmd.Flags().StringVar(&flags.End, "end", "", "window end (optional)")
	cmd.Flags().BoolVar(&flags.Pretty, "pretty", false, "indent the JSON output")

	return cmd
}

func runStats(ctx context.Context, out io.Writer, cfg *config.Config, flags StatsFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	calendar, err := cfg.Calendar()
	if err != nil {
		return err
	}
	epochFloor, err := cfg.EpochFloor()
	if err != nil {
		return err
	}

	params := ports.GetStatsParams{}
	if params.UserIDs, err = validation.ParseUserIDs(flags.Users...); err != nil {
		return err
	}
	if flags.Start != "" {
		start, err := validation.ParseDate(flags.Start, calendar.Location)
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		params.Start = &start
	}
	if flags.End != "" {
		end, err := validation.ParseDate(flags.End, calendar.Location)
		if err != nil {
			return fmt.Errorf("--end: %w", err)
		}
		params.End = &end
	}

	// Logs only reach the optional log file; stdout carries the JSON result.
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = "text"
	logCfg.Output = io.Discard
	logCfg.File = logging.FileConfig{Path: cfg.Logging.File}
	if cfg.App.Name != "" {
		logCfg.ServiceName = cfg.App.Name
	}
	if cfg.App.Environment != "" {
		logCfg.Environment = cfg.App.Environment
	}
	logger, closer := logging.NewLogger(logCfg)
	defer func() { _ = closer.Close() }()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := services.NewStatisticsService(st.StatusRecords, services.NewUserLookupService(st.Users), services.StatisticsOptions{
		Calendar:   calendar,
		EpochFloor: epochFloor,
		TxManager:  st.TxManager,
		Logger:     logger.With(slog.String("command", "stats")),
	})

	stats, err := svc.GetStats(ctx, params)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	if flags.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(httpAdapter.ToStatisticsResponse(stats))
}

// createVersionCommand creates the version subcommand
func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "presencectl", version)
		},
	}
}
