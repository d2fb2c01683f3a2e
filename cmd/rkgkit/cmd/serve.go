/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/rkgkit/pkg/api"
	"github.com/ssargent/rkgkit/pkg/config"
)

var errNoAPIKey = errors.New("no API key configured (run 'rkgkit init' first)")

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the rkgkit REST API server.

The server encodes uploaded frame files, archives the resulting ghosts and
decodes ghost files. Every request under /api/v1 needs the configured API key
in the X-API-Key header.

Examples:
  rkgkit serve
  rkgkit serve --port 9000 --bind 0.0.0.0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyServeFlags(cmd, cfg)

		serverConfig, err := serverConfigFrom(cfg)
		if err != nil {
			return err
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

		cmd.Printf("🚀 Starting rkgkit server on %s:%d\n", cfg.Bind, cfg.Port)
		cmd.Printf("📁 Data directory: %s\n", cfg.DataDir)

		starter := container.GetServerFactory().CreateServerStarter()
		return starter.StartServer(archive, serverConfig)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().String("bind", "", "Address to bind server to (overrides config)")
	serveCmd.Flags().StringP("data-dir", "d", "", "Data directory for the ghost archive (overrides config)")
}

// applyServeFlags overrides config values with flags that were set
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("bind") {
		cfg.Bind, _ = cmd.Flags().GetString("bind")
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
}

func serverConfigFrom(cfg *config.Config) (api.ServerConfig, error) {
	if cfg.Security.APIKey == "" || cfg.Security.APIKey == "auto" {
		return api.ServerConfig{}, errNoAPIKey
	}
	return api.ServerConfig{
		Port:   cfg.Port,
		Bind:   cfg.Bind,
		APIKey: cfg.Security.APIKey,
		Debug:  cfg.Logging.Level == "debug",
	}, nil
}
