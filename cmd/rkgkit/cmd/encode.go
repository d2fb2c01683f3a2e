/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/ssargent/rkgkit/pkg/frames"
	"github.com/ssargent/rkgkit/pkg/rkg"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode [frames.csv] [out.rkg]",
	Short: "Encode a frame file into a ghost file",
	Long: `Encode a frame file into a ghost file.

Without arguments the player frame file and ghost file from the config are used.

Examples:
  rkgkit encode
  rkgkit encode inputs.csv ghost.rkg --track 8 --vehicle 1 --character 22 --drift 1
  rkgkit encode inputs.csv ghost.rkg --backup 3`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		in, out := cfg.Files.PlayerCSV, cfg.Files.PlayerRKG
		if len(args) > 0 {
			in = args[0]
		}
		if len(args) > 1 {
			out = args[1]
		}

		var meta rkg.Metadata
		meta.TrackID, _ = cmd.Flags().GetInt("track")
		meta.VehicleID, _ = cmd.Flags().GetInt("vehicle")
		meta.CharacterID, _ = cmd.Flags().GetInt("character")
		meta.DriftID, _ = cmd.Flags().GetInt("drift")

		seq, err := frames.LoadFile(in)
		if err != nil {
			return err
		}

		if backup, _ := cmd.Flags().GetInt("backup"); backup > 0 {
			path := frames.BackupPath(cfg.Files.BackupCSV, backup)
			if err := seq.SaveFile(path); err != nil {
				return fmt.Errorf("failed to write backup: %w", err)
			}
			cmd.Printf("Backup written to %s\n", path)
		}

		h, err := encodeSequence(seq, out, meta)
		if err != nil {
			return err
		}

		cmd.Printf("Encoded %d frames from %s into %s\n", seq.Len(), in, out)
		cmd.Printf("Tuples: face=%d direction=%d trick=%d\n", h.FaceTuples, h.DirectionTuples, h.TrickTuples)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().Int("track", 0, "Track id (0-63)")
	encodeCmd.Flags().Int("vehicle", 0, "Vehicle id (0-63)")
	encodeCmd.Flags().Int("character", 0, "Character id (0-63)")
	encodeCmd.Flags().Int("drift", 0, "Drift type (0 manual, 1 automatic)")
	encodeCmd.Flags().Int("backup", 0, "Also save the frames to numbered backup slot N (0 disables)")
}

// encodeSequence writes seq to out as a ghost file and returns its header
func encodeSequence(seq *frames.Sequence, out string, meta rkg.Metadata) (rkg.Header, error) {
	file, err := rkg.CreateFile(seq, meta)
	if err != nil {
		return rkg.Header{}, fmt.Errorf("failed to encode ghost: %w", err)
	}

	parsed, err := rkg.ParseFile(file)
	if err != nil {
		return rkg.Header{}, err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0750); err != nil {
		return rkg.Header{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(out, file, 0644); err != nil {
		return rkg.Header{}, fmt.Errorf("failed to write ghost: %w", err)
	}
	return parsed.Header, nil
}
