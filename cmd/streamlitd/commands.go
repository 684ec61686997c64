// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/AleutianAI/StreamlitLike/pkg/logging"
	"github.com/AleutianAI/StreamlitLike/services/webapp"
	"github.com/AleutianAI/StreamlitLike/services/webapp/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// rootFlags are shared by every subcommand that loads configuration.
type rootFlags struct {
	configPath string
	envFile    string
	port       int
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "streamlitd",
		Short:         "Serve the StreamlitLike web application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "",
		"YAML config file (default: $"+config.ConfigPathEnv+")")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env",
		"dotenv file loaded before reading STREAMLIT_* variables; missing files are ignored")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
	serveCmd.Flags().IntVarP(&flags.port, "port", "p", 0, "override the configured port")

	checkCmd := &cobra.Command{
		Use:   "check-config",
		Short: "Validate the effective configuration and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config <path>",
		Short: "Write the default configuration to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err == nil {
				return fmt.Errorf("%s already exists", args[0])
			}
			if err := config.WriteDefault(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", args[0])
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "streamlitd %s\n", webapp.Version)
		},
	}

	rootCmd.AddCommand(serveCmd, checkCmd, initCmd, versionCmd)
	return rootCmd
}

func loadConfig(flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath, flags.envFile)
	if err != nil {
		return config.Config{}, err
	}
	if flags.port != 0 {
		cfg.Port = flags.port
		if err := config.Validate(cfg); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func runServe(ctx context.Context, flags *rootFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Log.Level),
		LogDir:  cfg.Log.Dir,
		Service: "streamlitd",
		JSON:    cfg.Log.JSON,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	if path := logger.FilePath(); path != "" {
		logger.Info("Logging to file", "path", path)
	}
	logger.Debug("Session settings",
		"idle_timeout", cfg.Session.IdleTimeout,
		"sweep_interval", cfg.Session.SweepInterval,
		"max_sessions", cfg.Session.MaxSessions,
	)
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RPS == 0 {
		logger.Warn("Per-session rate limiting is disabled")
	}
	if cfg.Session.MaxSessions == 0 {
		logger.Warn("Session count is unlimited")
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := webapp.New(cfg, &webapp.Options{Logger: logger.Slog()})
	if err != nil {
		return fmt.Errorf("failed to create webapp: %w", err)
	}

	logger.Info("Starting streamlitd",
		"port", cfg.Port,
		"trace_exporter", cfg.Telemetry.TraceExporter,
		"metric_exporter", cfg.Telemetry.MetricExporter,
	)
	return svc.Run(ctx)
}
