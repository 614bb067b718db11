package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arkenfold/qbfsolver/internal/config"
	"github.com/arkenfold/qbfsolver/internal/qbf"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	cfg.InstancePath = "some-instance.qdimacs"
	require.NoError(t, cfg.Validate())
}

func TestDefaultOptionsMatchesQBFDefaults(t *testing.T) {
	cfg := config.Default()
	got := cfg.Options()
	if got.RestartBase != qbf.DefaultOptions.RestartBase {
		t.Errorf("RestartBase = %d, want %d", got.RestartBase, qbf.DefaultOptions.RestartBase)
	}
	if got.PreResolutionConfig.MaxClauseLength != qbf.InfiniteClauseLength {
		t.Errorf("MaxClauseLength = %d, want the infinity sentinel", got.PreResolutionConfig.MaxClauseLength)
	}
}

func TestValidateRejectsUnknownSolverType(t *testing.T) {
	cfg := config.Default()
	cfg.InstancePath = "x.qdimacs"
	cfg.SolverType = "bogus"
	require.Error(t, cfg.Validate())
}

func TestValidateClearsRestartsForDPLL(t *testing.T) {
	cfg := config.Default()
	cfg.InstancePath = "x.qdimacs"
	cfg.SolverType = "dpll"
	cfg.Restarts = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %s, want nil", err)
	}
	if cfg.Restarts {
		t.Errorf("Restarts = true after Validate(), want false for solver_type=dpll")
	}
}

func TestValidateRequiresBenchmarkPathInBenchmarkMode(t *testing.T) {
	cfg := config.Default()
	cfg.RunBenchmark = true
	if err := cfg.Validate(); err == nil {
		t.Errorf("Validate() = nil, want an error for run_benchmark without benchmark_path")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "solver_type: cdcl\nnot_a_real_key: true\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %s", err)
	}

	if _, err := config.Load(path); err == nil {
		t.Errorf("Load() = nil, want an error for an unrecognized key")
	}
}

func TestLoadParsesInfinityClauseLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `instance_path: x.qdimacs
pre_resolution: true
pre_resolution_config:
  max_clause_length: infinity
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %s", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() = %s, want nil", err)
	}
	if cfg.PreResolutionConfig.MaxClauseLength != qbf.InfiniteClauseLength {
		t.Errorf("MaxClauseLength = %d, want the infinity sentinel", cfg.PreResolutionConfig.MaxClauseLength)
	}
}

func TestLoadParsesIntegerClauseLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `instance_path: x.qdimacs
pre_resolution: true
pre_resolution_config:
  max_clause_length: 12
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %s", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() = %s, want nil", err)
	}
	if cfg.PreResolutionConfig.MaxClauseLength != 12 {
		t.Errorf("MaxClauseLength = %d, want 12", cfg.PreResolutionConfig.MaxClauseLength)
	}
}
