package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arkenfold/qbfsolver/internal/bench"
	"github.com/arkenfold/qbfsolver/internal/config"
	"github.com/arkenfold/qbfsolver/internal/qbf"
	"github.com/arkenfold/qbfsolver/internal/qdimacs"
	"github.com/arkenfold/qbfsolver/internal/report"
)

// runInstance parses, preprocesses, and solves a single QDIMACS file,
// reading the resulting counters back off the Solver rather than
// re-deriving them (spec §6.4).
func runInstance(cfg config.Config, path string, log hclog.Logger) (report.InstanceResult, error) {
	start := time.Now()

	store := qbf.NewStore()
	if err := qdimacs.ParseFile(path, store); err != nil {
		return report.InstanceResult{}, err
	}

	opts := cfg.Options()
	name := filepath.Base(path)

	if !qbf.NewPreprocessor(store, opts).Run() {
		return report.InstanceResult{
			Name:    name,
			Status:  qbf.StatusUNSAT,
			Elapsed: time.Since(start),
		}, nil
	}

	reg := prometheus.NewRegistry()
	metrics := qbf.NewMetrics(reg, name)
	s := qbf.NewSolver(store, opts, log.Named("solver").With("instance", name), metrics)
	status := s.Solve()

	return report.InstanceResult{
		Name:          name,
		Status:        status,
		Elapsed:       time.Since(start),
		Decisions:     s.TotalDecisions,
		Propagations:  s.TotalPropagations,
		Conflicts:     s.TotalConflicts,
		LearntClauses: int64(store.NumLearnts()),
		Restarts:      s.TotalRestarts,
	}, nil
}

// runBenchmark solves every instance found under cfg.BenchmarkPath and
// writes the accumulated rows as CSV to cfg.OutputFileName (stdout if
// unset).
func runBenchmark(cfg config.Config, log hclog.Logger) error {
	instances, err := bench.ListInstances(cfg.BenchmarkPath)
	if err != nil {
		return fmt.Errorf("listing benchmark instances: %w", err)
	}
	log.Info("benchmark starting", "instances", len(instances), "path", cfg.BenchmarkPath)

	results := make([]report.InstanceResult, 0, len(instances))
	for _, path := range instances {
		r, err := runInstance(cfg, path, log)
		if err != nil {
			log.Error("instance failed", "instance", path, "error", err)
			continue
		}
		log.Info("instance solved", "instance", r.Name, "status", r.Status.String(), "elapsed_ms", r.Elapsed.Milliseconds())
		results = append(results, r)
	}

	out := os.Stdout
	if cfg.OutputFileName != "" {
		f, err := os.Create(cfg.OutputFileName)
		if err != nil {
			return fmt.Errorf("creating output file %q: %w", cfg.OutputFileName, err)
		}
		defer f.Close()
		out = f
	}

	return report.WriteBenchmarkCSV(out, results)
}
