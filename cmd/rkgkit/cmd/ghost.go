/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"github.com/ssargent/rkgkit/pkg/api"
	"github.com/ssargent/rkgkit/pkg/rkg"
)

// ghostCmd groups the archive commands
var ghostCmd = &cobra.Command{
	Use:   "ghost",
	Short: "Manage the local ghost archive",
	Long: `Store, fetch, list and delete ghost files in the local archive.

Examples:
  rkgkit ghost put ghost.rkg
  rkgkit ghost get 2Gf6cQY5TnUQmyzSyD6mXv6cGgm out.rkg
  rkgkit ghost list
  rkgkit ghost delete 2Gf6cQY5TnUQmyzSyD6mXv6cGgm`,
}

var ghostPutCmd = &cobra.Command{
	Use:   "put <in.rkg>",
	Short: "Archive a ghost file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		return withArchive(cmd, func(archive api.GhostArchive) error {
			id, err := putGhost(archive, data)
			if err != nil {
				return err
			}
			cmd.Printf("Stored %s as %s\n", args[0], id)
			return nil
		})
	},
}

var ghostGetCmd = &cobra.Command{
	Use:   "get <id> <out.rkg>",
	Short: "Write an archived ghost to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid ghost id %q: %w", args[0], err)
		}
		return withArchive(cmd, func(archive api.GhostArchive) error {
			data, err := archive.Read(&id)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], data, 0644); err != nil {
				return fmt.Errorf("failed to write ghost: %w", err)
			}
			cmd.Printf("Wrote %s to %s\n", id, args[1])
			return nil
		})
	},
}

var ghostDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a ghost from the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid ghost id %q: %w", args[0], err)
		}
		return withArchive(cmd, func(archive api.GhostArchive) error {
			if err := archive.Delete(&id); err != nil {
				return err
			}
			cmd.Printf("Deleted %s\n", id)
			return nil
		})
	},
}

var ghostListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived ghosts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(cmd, func(archive api.GhostArchive) error {
			ids, err := archive.List()
			if err != nil {
				return err
			}
			for _, id := range ids {
				cmd.Printf("%s  %s\n", id, id.Time().Format("2006-01-02 15:04:05"))
			}
			cmd.Printf("%d ghost(s)\n", len(ids))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(ghostCmd)
	ghostCmd.AddCommand(ghostPutCmd, ghostGetCmd, ghostDeleteCmd, ghostListCmd)
	ghostCmd.PersistentFlags().StringP("data-dir", "d", "", "Data directory for the ghost archive (overrides config)")
}

// withArchive opens the configured archive for the duration of fn
func withArchive(cmd *cobra.Command, fn func(api.GhostArchive) error) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}

	if container == nil {
		return fmt.Errorf("dependency container not initialized")
	}
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	archive, err := container.GetStoreFactory().OpenArchive(cfg.DataDir)
	if err != nil {
		return err
	}
	defer archive.Close()

	return fn(archive)
}

// putGhost validates data as a ghost file before archiving it
func putGhost(archive api.GhostArchive, data []byte) (*ksuid.KSUID, error) {
	if _, err := rkg.ParseFile(data); err != nil {
		return nil, fmt.Errorf("not a valid ghost: %w", err)
	}
	return archive.Create(data)
}
