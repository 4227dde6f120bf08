package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/hollowbrook/cashcast/internal/config"
	"github.com/hollowbrook/cashcast/internal/model"
	"github.com/hollowbrook/cashcast/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDBPath  string
	flagQuiet   bool
	flagStart   string
	flagEnd     string
	flagHorizon int
)

var rootCmd = &cobra.Command{
	Use:   "cashcast",
	Short: "Personal cash-flow forecasting CLI",
	Long:  "Project your balance forward: scheduled inflows, commitments, key spend events, and spend-history bands.",
	RunE:  runOverview,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Budget database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().StringVar(&flagStart, "start", "", "Horizon start date YYYY-MM-DD (default today)")
	rootCmd.PersistentFlags().StringVar(&flagEnd, "end", "", "Horizon end date YYYY-MM-DD (default start + horizon)")
	rootCmd.PersistentFlags().IntVarP(&flagHorizon, "horizon", "n", 0, "Horizon length in days (default from config)")
}

// openStore loads config and opens the budget database, honoring the --db
// flag over config and env resolution.
func openStore() (config.Config, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}

	dbPath := flagDBPath
	if dbPath == "" {
		dbPath, err = config.DBPath(cfg)
		if err != nil {
			return cfg, nil, err
		}
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("opening %s: %w", dbPath, err)
	}
	return cfg, s, nil
}

// today resolves the current date in the configured timezone.
func today(cfg config.Config) time.Time {
	loc := time.Local
	if cfg.General.Timezone != "" {
		if l, err := time.LoadLocation(cfg.General.Timezone); err == nil {
			loc = l
		}
	}
	now := time.Now().In(loc)
	return model.Date(now.Year(), now.Month(), now.Day())
}

// horizonRange resolves --start/--end/--horizon into a concrete date range.
func horizonRange(cfg config.Config) (start, end time.Time, err error) {
	start = today(cfg)
	if flagStart != "" {
		start, err = model.ParseDate(flagStart)
		if err != nil {
			return start, end, fmt.Errorf("invalid --start date; use YYYY-MM-DD")
		}
	}

	days := flagHorizon
	if days < 1 {
		days = cfg.General.HorizonDays
	}
	if days < 1 {
		days = 120
	}
	end = start.AddDate(0, 0, days)
	if flagEnd != "" {
		end, err = model.ParseDate(flagEnd)
		if err != nil {
			return start, end, fmt.Errorf("invalid --end date; use YYYY-MM-DD")
		}
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("end date %s is before start %s", end.Format(model.ISODate), start.Format(model.ISODate))
	}
	return start, end, nil
}

// printWarnings surfaces source data-quality warnings on stderr.
func printWarnings(warnings []model.SourceWarning) {
	if flagQuiet {
		return
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "  warning: %s #%d has unrecognized %s %q, using default\n",
			w.SourceType, w.SourceID, w.Field, w.Value)
	}
}
