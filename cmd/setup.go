package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hollowbrook/cashcast/internal/cli"
	"github.com/hollowbrook/cashcast/internal/config"
	"github.com/hollowbrook/cashcast/internal/store"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)

	// Load existing config or defaults
	cfg, _ := config.Load()

	fmt.Println()
	fmt.Println("  Welcome to cashcast!")
	fmt.Println()

	// 1. Database path
	dbPath, _ := config.DBPath(cfg)
	fmt.Println("  1. Budget database path")
	fmt.Printf("     Current: %s\n", dbPath)
	fmt.Print("     > ")
	dbAnswer, _ := reader.ReadString('\n')
	dbAnswer = strings.TrimSpace(dbAnswer)
	if dbAnswer != "" {
		cfg.General.DBPath = dbAnswer
	}
	fmt.Println()

	// 2. Forecast horizon
	fmt.Println("  2. Default forecast horizon")
	fmt.Println("     (1) 30 days")
	fmt.Println("     (2) 60 days")
	fmt.Println("     (3) 120 days [default]")
	fmt.Print("     > ")
	choice, _ := reader.ReadString('\n')
	switch strings.TrimSpace(choice) {
	case "1":
		cfg.General.HorizonDays = 30
	case "2":
		cfg.General.HorizonDays = 60
	default:
		cfg.General.HorizonDays = 120
	}
	fmt.Println()

	// 3. Buffer floor
	fmt.Println("  3. Buffer floor (dollars to keep untouched)")
	fmt.Printf("     Current: %s\n", cli.FormatCents(cfg.Forecast.BufferFloorCents))
	fmt.Print("     > ")
	floorAnswer, _ := reader.ReadString('\n')
	floorAnswer = strings.TrimSpace(floorAnswer)
	if floorAnswer != "" {
		if v, err := strconv.ParseFloat(strings.TrimPrefix(floorAnswer, "$"), 64); err == nil && v >= 0 {
			cfg.Forecast.BufferFloorCents = int64(v * 100)
		} else {
			fmt.Println("     (not a number, keeping current value)")
		}
	}
	fmt.Println()

	// 4. Theme
	fmt.Println("  4. Color theme")
	fmt.Println("     (1) Flexoki Dark [default]")
	fmt.Println("     (2) Catppuccin Mocha")
	fmt.Println("     (3) Tokyo Night")
	fmt.Println("     (4) Terminal (ANSI 16)")
	fmt.Print("     > ")
	themeChoice, _ := reader.ReadString('\n')
	switch strings.TrimSpace(themeChoice) {
	case "2":
		cfg.Appearance.Theme = "catppuccin-mocha"
	case "3":
		cfg.Appearance.Theme = "tokyo-night"
	case "4":
		cfg.Appearance.Theme = "terminal"
	default:
		cfg.Appearance.Theme = "flexoki-dark"
	}

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	// Create the database and schema so the first forecast works
	dbPath, err := config.DBPath(cfg)
	if err != nil {
		return err
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("initializing %s: %w", dbPath, err)
	}
	_ = s.Close()

	path, _ := config.ConfigPath()
	fmt.Println()
	fmt.Printf("  Saved to %s\n", path)
	fmt.Printf("  Database ready at %s\n", dbPath)
	fmt.Println("  Run `cashcast setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
