package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/splogdes/fuznet/pkg/metrics"
	"github.com/splogdes/fuznet/pkg/orchestrator"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Args:  cobra.NoArgs,
	Short: "Generate a random netlist",
	Long:  `Drives a fresh netlist through the stochastic command loop and emits structural Verilog plus a JSON snapshot.`,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().BoolP("animate", "a", false, "emit a dot snapshot after every iteration")
	generateCmd.Flags().StringP("config", "c", "", "settings file (overrides config.yaml's library.settings_path)")
	generateCmd.Flags().StringP("output", "o", "out", "output path prefix")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	animate, _ := cmd.Flags().GetBool("animate")
	settingsPath, _ := cmd.Flags().GetString("config")
	prefix, _ := cmd.Flags().GetString("output")

	cfg, err := loadConfig("config.yaml")
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	lib, err := openLibrary(cfg, libPath)
	if err != nil {
		return fmt.Errorf("failed to load cell library: %w", err)
	}
	runSettings, err := openSettings(cfg, settingsPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	for _, w := range runSettings.Warnings {
		logger.Warn(w)
	}

	reg := metrics.NewRegistry()
	if cfg.Metrics.ListenAddr != "" {
		stop, err := serveMetrics(cfg.Metrics.ListenAddr, reg, logger)
		if err != nil {
			return fmt.Errorf("failed to start metrics listener: %w", err)
		}
		defer stop()
	}

	orch := orchestrator.New(orchestrator.Config{
		Library:  lib,
		Settings: runSettings,
		Seed:     seed,
		Logger:   logger,
		Metrics:  reg,
	})

	summary, err := orch.Run(prefix, orchestrator.RunOptions{
		Animate:   animate,
		JSONStats: jsonOut,
	})
	if err != nil {
		return fmt.Errorf("generate run failed: %w", err)
	}

	if !summary.Verification.Clean {
		return fmt.Errorf("generated netlist failed verification: %v", summary.Verification.Details)
	}

	logger.Info("generate completed",
		"iterations", summary.Iterations,
		"verilog", summary.VerilogPath,
		"json", summary.JSONPath)
	return nil
}
