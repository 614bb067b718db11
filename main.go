package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arkenfold/qbfsolver/internal/config"
	"github.com/arkenfold/qbfsolver/internal/report"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "qbfsolver",
		Short: "A CDCL/DPLL solver for quantified Boolean formulas in QDIMACS",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file (spec §6.2)")

	root.AddCommand(newSolveCmd())
	root.AddCommand(newBenchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solve [instance.qdimacs]",
		Short: "Solve a single QBF instance and print its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg.RunBenchmark = false
			cfg.InstancePath = args[0]
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := newLogger(cfg.LogLevel)
			result, err := runInstance(cfg, cfg.InstancePath, log)
			if err != nil {
				return err
			}

			report.WriteInstanceResult(os.Stdout, result)
			os.Exit(result.Status.ExitCode())
			return nil
		},
	}
}

func newBenchCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "bench [directory]",
		Short: "Solve every instance found under a directory and report a CSV summary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg.RunBenchmark = true
			if len(args) == 1 {
				cfg.BenchmarkPath = args[0]
			}
			if out != "" {
				cfg.OutputFileName = out
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := newLogger(cfg.LogLevel)
			return runBenchmark(cfg, log)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "CSV output file (defaults to stdout)")
	return cmd
}
