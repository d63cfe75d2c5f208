// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/autobrr/ipt/internal/buildinfo"
	"github.com/autobrr/ipt/internal/config"
)

func main() {
	config.InitDefaultLogger(buildinfo.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

type globalFlags struct {
	configDir string
	logPath   string
}

func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	var rootCmd = &cobra.Command{
		Use:   "ipt",
		Short: "Search IPTorrents and resolve search urls",
		Long: `ipt - search IPTorrents with your session cookies, list releases
ordered by availability and rewrite search urls into download urls.`,
		SilenceUsage: true,
	}

	rootCmd.Version = buildinfo.Version

	rootCmd.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "config directory path (default is OS-specific: ~/.config/ipt/ or %APPDATA%\\ipt\\). Can also be a direct path to a .toml file")
	rootCmd.PersistentFlags().StringVar(&flags.logPath, "log-path", "", "log file path (default is stderr)")

	rootCmd.AddCommand(RunSearchCommand(flags))
	rootCmd.AddCommand(RunResolveCommand(flags))
	rootCmd.AddCommand(RunRecognizeCommand(flags))
	rootCmd.AddCommand(RunCategoriesCommand())
	rootCmd.AddCommand(RunServeCommand(flags))
	rootCmd.AddCommand(RunVersionCommand(buildinfo.Version))
	rootCmd.AddCommand(RunGenerateConfigCommand(flags))

	return rootCmd
}

func RunVersionCommand(version string) *cobra.Command {
	var command = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of ipt",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	return command
}

func RunGenerateConfigCommand(flags *globalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "generate-config",
		Short: "Generate a default configuration file",
		Long: `Generate a default configuration file.

If no --config-dir is specified, uses the OS-specific default location:
- Linux/macOS: ~/.config/ipt/config.toml
- Windows: %APPDATA%\ipt\config.toml

You can specify either a directory path or a direct file path:
- Directory: ipt generate-config --config-dir /path/to/config/
- File: ipt generate-config --config-dir /path/to/myconfig.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := generatedConfigPath(flags.configDir)

			if _, err := os.Stat(configPath); err == nil {
				cmd.Printf("Configuration file already exists at: %s\n", configPath)
				cmd.Println("Skipping generation to avoid overwriting existing configuration.")
				return nil
			}

			if err := config.WriteDefaultConfig(configPath); err != nil {
				return fmt.Errorf("failed to create configuration file: %w", err)
			}

			cmd.Printf("Configuration file created successfully at: %s\n", configPath)
			return nil
		},
	}

	return command
}

func generatedConfigPath(configDir string) string {
	if configDir == "" {
		return filepath.Join(config.GetDefaultConfigDir(), "config.toml")
	}
	if strings.HasSuffix(strings.ToLower(configDir), ".toml") {
		return configDir
	}
	if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
		return configDir
	}
	return filepath.Join(configDir, "config.toml")
}
