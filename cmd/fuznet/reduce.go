package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/splogdes/fuznet/pkg/netlist"
	"github.com/splogdes/fuznet/pkg/reducer"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce",
	Args:  cobra.NoArgs,
	Short: "Run one delta-debugging reduction step",
	Long:  `Reads the persisted reduction state, attempts one simplification, and writes the updated state back out. Meant to be invoked repeatedly by an outer harness that feeds --last-success back from the previous call's exit code.`,
	RunE:  runReduce,
}

func init() {
	reduceCmd.Flags().StringP("input", "i", "", "state document to read (required)")
	reduceCmd.Flags().String("hash-file", "", "fingerprint ledger file (required)")
	reduceCmd.Flags().StringP("output", "o", "", "state document to write (defaults to --input)")
	reduceCmd.Flags().IntP("keep-only", "r", -1, "slice the graph to this single ext_out net id on the first call")
	reduceCmd.Flags().Bool("last-success", false, "whether the previous reduce invocation's candidate was accepted")

	reduceCmd.MarkFlagRequired("input")
	reduceCmd.MarkFlagRequired("hash-file")
}

func runReduce(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	hashFile, _ := cmd.Flags().GetString("hash-file")
	outputPath, _ := cmd.Flags().GetString("output")
	keepOnly, _ := cmd.Flags().GetInt("keep-only")
	lastSuccess, _ := cmd.Flags().GetBool("last-success")

	if outputPath == "" {
		outputPath = inputPath
	}

	cfg, err := loadConfig("config.yaml")
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	lib, err := openLibrary(cfg, libPath)
	if err != nil {
		return fmt.Errorf("failed to load cell library: %w", err)
	}

	opts := reducer.Options{
		InputPath:      inputPath,
		OutputPath:     outputPath,
		HashLedgerPath: hashFile,
		LastSuccess:    lastSuccess,
	}
	if keepOnly >= 0 {
		id := netlist.Id(keepOnly)
		opts.OutputID = &id
	}

	result, err := reducer.Reduce(lib, rand.New(rand.NewSource(seed)), opts)
	if err != nil {
		return fmt.Errorf("reduce failed: %w", err)
	}

	logger.Info("reduce step completed", "result", result.String())
	// reduce's exit code carries the outcome (§6: 0 SUCCESS, 2
	// ALREADY_SEEN, 3 NEW_HASH_ADDED), not just success/failure, so it
	// bypasses cobra's error-means-exit-1 convention.
	os.Exit(result.ExitCode())
	return nil
}
