/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/rkgkit/pkg/rkg"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <in.rkg>",
	Short: "Show the header and input sections of a ghost file",
	Long: `Show the metadata, tuple counts, run summaries and checksum of a ghost file.

Example:
  rkgkit inspect ghost.rkg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		return inspectGhost(cmd.OutOrStdout(), data)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func inspectGhost(w io.Writer, data []byte) error {
	file, err := rkg.ParseFile(data)
	if err != nil {
		return fmt.Errorf("failed to parse ghost: %w", err)
	}

	h := file.Header
	fmt.Fprintf(w, "Track:        %d\n", h.TrackID)
	fmt.Fprintf(w, "Vehicle:      %d\n", h.VehicleID)
	fmt.Fprintf(w, "Character:    %d\n", h.CharacterID)
	fmt.Fprintf(w, "Drift:        %d\n", h.DriftID)
	fmt.Fprintf(w, "Input length: %d bytes\n", h.InputLength)
	fmt.Fprintf(w, "Checksum:     %08x (ok)\n", file.Checksum())

	for _, ch := range rkg.Channels {
		runs := rkg.RunLengths(ch, file.Streams.Stream(ch))
		total, longest := 0, 0
		for _, n := range runs {
			total += n
			if n > longest {
				longest = n
			}
		}
		fmt.Fprintf(w, "%-10s    %d tuples, %d frames, longest run %d\n", ch.String()+":", h.Tuples(ch), total, longest)
	}

	inputs, err := file.Frames()
	if err != nil {
		fmt.Fprintf(w, "Frames:       %d (%v)\n", len(inputs), err)
		return nil
	}
	fmt.Fprintf(w, "Frames:       %d\n", len(inputs))
	return nil
}
