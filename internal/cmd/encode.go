package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shipsearch/sss/internal/engine"
	"github.com/shipsearch/sss/internal/rle"
	"github.com/shipsearch/sss/internal/style"
)

var (
	encodeRule   string
	encodeOutput string
	encodeDecode bool
)

var encodeCmd = &cobra.Command{
	Use:     "encode [file]",
	GroupID: GroupUtil,
	Short:   "Convert patterns between plaintext grids and RLE",
	Long: `Convert a pattern between the plaintext grid form used in progress
output ('.' dead, 'o' alive, '?' undecided) and the RLE form result
files use. Reads the named file, or stdin when the file is '-' or
omitted.

Examples:
  sss encode ship.txt                  # Grid to RLE on stdout
  sss encode ship.txt -o ship.rle      # Grid to RLE into a file
  sss encode --rule B36/S23 ship.txt   # Set the rule in the RLE header
  sss encode -d 16P3H0V1.rle           # RLE back to a plaintext grid
  sss encode -d spaceships/p3/h0v1/16P3H0V1.rle`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEncode,
}

func init() {
	f := encodeCmd.Flags()
	f.StringVar(&encodeRule, "rule", "", "Rule for the RLE header (default from config)")
	f.StringVarP(&encodeOutput, "output", "o", "", "Write to file instead of stdout")
	f.BoolVarP(&encodeDecode, "decode", "d", false, "Decode RLE to a plaintext grid instead")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	input, err := readPattern(args)
	if err != nil {
		return err
	}

	var out string
	if encodeDecode {
		g, _, err := rle.Decode(input)
		if err != nil {
			return fmt.Errorf("decoding RLE: %w", err)
		}
		out = g.String() + "\n"
	} else {
		rule := encodeRule
		if rule == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rule = cfg.Search.Rule
		}
		lines := strings.Split(strings.TrimRight(input, "\n"), "\n")
		g, err := engine.ParseGrid(lines)
		if err != nil {
			return fmt.Errorf("parsing grid: %w", err)
		}
		out = rle.Encode(g, rule)
	}

	if encodeOutput != "" {
		if err := os.WriteFile(encodeOutput, []byte(out), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", encodeOutput, err)
		}
		fmt.Printf("%s Wrote %s\n", style.SuccessPrefix, encodeOutput)
		return nil
	}
	fmt.Print(out)
	return nil
}

// readPattern reads the input pattern from the file argument or stdin.
func readPattern(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}
