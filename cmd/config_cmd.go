// Package cmd implements the cashcast CLI commands.
package cmd

import (
	"fmt"

	"github.com/hollowbrook/cashcast/internal/cli"
	"github.com/hollowbrook/cashcast/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	fmt.Printf("  Config file: %s\n", path)
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	dbPath, _ := config.DBPath(cfg)
	fmt.Println("  [General]")
	fmt.Printf("    Database:     %s\n", dbPath)
	if cfg.General.Timezone != "" {
		fmt.Printf("    Timezone:     %s\n", cfg.General.Timezone)
	} else {
		fmt.Println("    Timezone:     local")
	}
	fmt.Printf("    Horizon days: %d\n", cfg.General.HorizonDays)
	fmt.Println()

	fmt.Println("  [Forecast]")
	fmt.Printf("    Buffer floor:       %s\n", cli.FormatCents(cfg.Forecast.BufferFloorCents))
	fmt.Printf("    Stats window:       %dd\n", cfg.Forecast.StatsWindowDays)
	fmt.Printf("    Band k:             %.2f\n", cfg.Forecast.BandK)
	fmt.Printf("    Monte Carlo iters:  %d (max %d)\n", cfg.Forecast.MonteCarloIters, cfg.Forecast.MonteCarloMaxIters)
	fmt.Printf("    Tight threshold:    %s\n", cli.FormatCents(cfg.Forecast.TightThresholdCents))
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Snapshot cron: %s\n", cfg.Daemon.SnapshotCron)
	if config.APIToken(cfg) != "" {
		fmt.Println("    API token:     configured")
	} else {
		fmt.Println("    API token:     not set (API is unauthenticated)")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `cashcast setup` to reconfigure.")
	return nil
}
