// Package cmd implements the sss command-line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shipsearch/sss/internal/config"
	"github.com/shipsearch/sss/internal/style"
	"github.com/shipsearch/sss/internal/ui"
)

// Command group IDs for help output.
const (
	GroupSearch = "search"
	GroupDiag   = "diag"
	GroupUtil   = "util"
)

// configPath is the --config flag, shared by every command that reads
// the search configuration.
var configPath string

var rootCmd = &cobra.Command{
	Use:   "sss",
	Short: "sss - search for spaceships in 2D cellular automata",
	Long: `sss drives a constraint-solving engine through an open-ended
spaceship search. It grows the grid when a search space is exhausted,
tightens the live-cell bound as results come in, records every pattern
found as RLE, and checkpoints the run so it can resume where it
stopped.

A search is described by sss.toml in the working directory (write one
with 'sss init') plus command-line overrides.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupSearch, Title: "Searching:"},
		&cobra.Group{ID: GroupDiag, Title: "Diagnostics:"},
		&cobra.Group{ID: GroupUtil, Title: "Utilities:"},
	)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.FileName, "Config file to read")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		initTheme()
	}
}

// initTheme applies the configured color scheme before any command
// output. Config problems are deliberately ignored here; the command
// itself will surface them with context.
func initTheme() {
	cfg, _, _ := config.Load(configPath)
	ui.InitTheme(cfg.Theme)
	ui.ApplyThemeMode()
}

// loadConfig reads the configuration every command starts from. A
// missing file at the default path means defaults; a missing file the
// user pointed --config at is an error.
func loadConfig() (config.Config, error) {
	cfg, found, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if !found && configPath != config.FileName {
		return cfg, fmt.Errorf("config file %s not found", configPath)
	}
	return cfg, nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := IsSilentExit(err); ok {
			return code
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", style.ErrorPrefix, err)
		return 1
	}
	return 0
}
