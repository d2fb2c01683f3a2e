/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/rkgkit/pkg/frames"
	"github.com/ssargent/rkgkit/pkg/rkg"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode [in.rkg] [frames.csv]",
	Short: "Decode a ghost file into a frame file",
	Long: `Decode a ghost file into a frame file.

Without arguments the ghost file and ghost frame file from the config are used.
When the input sections end early the recovered frames are still written.

Examples:
  rkgkit decode
  rkgkit decode ghost.rkg inputs.csv`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		in, out := cfg.Files.GhostRKG, cfg.Files.GhostCSV
		if len(args) > 0 {
			in = args[0]
		}
		if len(args) > 1 {
			out = args[1]
		}

		data, err := os.ReadFile(in)
		if err != nil {
			return err
		}

		n, truncated, err := decodeGhost(data, out)
		if err != nil {
			return err
		}

		if truncated {
			cmd.Printf("Warning: input sections of %s disagree in length; kept the %d frames they share\n", in, n)
		}
		cmd.Printf("Decoded %d frames from %s into %s\n", n, in, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

// decodeGhost writes the frames of a ghost file to out. A truncated
// input section is reported rather than treated as a failure.
func decodeGhost(data []byte, out string) (int, bool, error) {
	file, err := rkg.ParseFile(data)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse ghost: %w", err)
	}

	inputs, err := file.Frames()
	truncated := errors.Is(err, rkg.ErrTruncatedStream)
	if err != nil && !truncated {
		return 0, false, fmt.Errorf("failed to decode ghost: %w", err)
	}

	if err := frames.NewSequence(inputs).SaveFile(out); err != nil {
		return 0, false, fmt.Errorf("failed to write frames: %w", err)
	}
	return len(inputs), truncated, nil
}
