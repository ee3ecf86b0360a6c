package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	libPath string
	seed    int64
	verbose bool
	jsonOut bool
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "fuznet",
	Short:   "Stochastic netlist fuzzer for digital-hardware toolchains",
	Long:    `fuznet generates and shrinks random structural netlists against a cell library, for fuzzing synthesis and simulation toolchains.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&libPath, "lib", "l", "", "cell library file")
	rootCmd.PersistentFlags().Int64VarP(&seed, "seed", "s", 1, "RNG seed")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug-level) logging")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "structured JSON logging; generate also writes <prefix>_stats.json")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(reduceCmd)
}

// Commands are defined in separate files:
// - generateCmd in generate.go
// - reduceCmd in reduce.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
