/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/rkgkit/pkg/config"
	"github.com/ssargent/rkgkit/pkg/di"
)

var container *di.Container

// SetContainer injects the dependency container used by the commands
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rkgkit",
	Short: "rkgkit - ghost replay codec",
	Long: `rkgkit converts per-frame controller inputs into RKG ghost files and back.

Frame files hold one frame per line:
  accelerate,brake,item,stickX,stickY,trick

Ghost files can also be archived locally and served over a REST API.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
}

// loadConfig reads the config named by --config, falling back to the
// defaults when no file exists.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if !config.ConfigExists(configPath) {
		return config.DefaultConfig(), configPath, nil
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, configPath, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, configPath, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return cfg, configPath, nil
}
