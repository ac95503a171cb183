package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shipsearch/sss/internal/config"
	"github.com/shipsearch/sss/internal/style"
)

var initForce bool

// starterConfig is the commented config 'sss init' writes. Values
// shown commented out are the defaults.
const starterConfig = `# sss search configuration.
# Uncommented values are required reading; commented ones show defaults.

# Engine backend to drive.
engine = "replay"

# Backend-specific settings, e.g. for the replay backend:
#[engine_opts]
#script = "story.json"

# Where the checkpoint, run lock, and run log live.
#state_dir = "."

# Where result patterns go. Empty derives
# spaceships/p<period>/h<dx>v<dy> from the search below.
#results_dir = ""

# Engine steps per burst, and bursts between checkpoint saves.
#step_budget = 4194304
#checkpoint_every = 8

# CLI color scheme: "auto", "dark", or "light".
#theme = "auto"

[search]
# Ship translation (dx, dy) every period generations.
period = 3
dx = 0
dy = 1

# The grid starts at this height and grows as heights are exhausted;
# width stays under max_width.
height = 1
#max_width = 1024

# Rule in B/S notation, and the symmetry class to impose.
rule = "B3/S23"
symmetry = "C1"

# Only accept ships with at most this many live cells (-1: unbounded).
# Each ship found tightens the bound below its cell count.
max_cells = -1

# Engine search policy.
#prefer_empty = true
#non_empty_front = true
#reduce_max = true
`

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: GroupUtil,
	Short:   "Write a starter sss.toml",
	Long: `Write a commented sss.toml describing a default search to the current
directory. Edit it, then run 'sss search'.

Examples:
  sss init             # Write sss.toml (refuses to overwrite)
  sss init --force     # Replace an existing sss.toml`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(config.FileName); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
	}
	if err := os.WriteFile(config.FileName, []byte(starterConfig), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", config.FileName, err)
	}
	fmt.Printf("%s Wrote %s; edit it and run 'sss search'\n", style.SuccessPrefix, config.FileName)
	return nil
}
