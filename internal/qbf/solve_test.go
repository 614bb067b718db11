package qbf_test

import (
	"path/filepath"
	"testing"

	"github.com/arkenfold/qbfsolver/internal/qbf"
	"github.com/arkenfold/qbfsolver/internal/qdimacs"
)

// solveFixture parses testdata/name under the given options and returns the
// resulting Status, running the Preprocessor first exactly as runner.go's
// runInstance does.
func solveFixture(t *testing.T, name string, opts qbf.Options) qbf.Status {
	t.Helper()

	store := qbf.NewStore()
	path := filepath.Join("..", "..", "testdata", name)
	if err := qdimacs.ParseFile(path, store); err != nil {
		t.Fatalf("parsing %s: %s", path, err)
	}

	if !qbf.NewPreprocessor(store, opts).Run() {
		return qbf.StatusUNSAT
	}

	s := qbf.NewSolver(store, opts, nil, nil)
	return s.Solve()
}

// TestConcreteScenarios verifies the seven worked examples of spec §8's
// testable-properties table, under every algorithm/heuristic combination.
func TestConcreteScenarios(t *testing.T) {
	cases := []struct {
		name string
		file string
		want qbf.Status
	}{
		{"universal satisfied by existential", "scenario1_sat_universal_satisfied.qdimacs", qbf.StatusSAT},
		{"universal defeats existential", "scenario2_unsat_universal_defeats_existential.qdimacs", qbf.StatusUNSAT},
		{"direct contradiction", "scenario3_unsat_direct_contradiction.qdimacs", qbf.StatusUNSAT},
		{"all existential unsat", "scenario4_unsat_all_existential.qdimacs", qbf.StatusUNSAT},
		{"alternating prefix unsat", "scenario5_unsat_alternating_prefix.qdimacs", qbf.StatusUNSAT},
		{"empty clause set is sat", "scenario6_sat_empty_clause_set.qdimacs", qbf.StatusSAT},
		{"single empty clause is unsat", "scenario7_unsat_empty_clause.qdimacs", qbf.StatusUNSAT},
	}

	algorithms := []qbf.Algorithm{qbf.CDCL, qbf.DPLL}
	selections := []qbf.LiteralSelection{qbf.Ordered, qbf.VSS}

	for _, tc := range cases {
		for _, alg := range algorithms {
			for _, sel := range selections {
				name := tc.name + "/" + alg.String() + "/" + sel.String()
				t.Run(name, func(t *testing.T) {
					opts := qbf.DefaultOptions
					opts.Algorithm = alg
					opts.LiteralSelection = sel

					got := solveFixture(t, tc.file, opts)
					if got != tc.want {
						t.Errorf("got %s, want %s", got, tc.want)
					}
				})
			}
		}
	}
}

// TestAlgorithmsAgree checks the round-trip property that DPLL and CDCL
// always return the same verdict for the same instance (spec §8,
// "Round-trip / equivalence").
func TestAlgorithmsAgree(t *testing.T) {
	files := []string{
		"scenario1_sat_universal_satisfied.qdimacs",
		"scenario2_unsat_universal_defeats_existential.qdimacs",
		"scenario4_unsat_all_existential.qdimacs",
		"scenario5_unsat_alternating_prefix.qdimacs",
	}

	for _, f := range files {
		t.Run(f, func(t *testing.T) {
			cdclOpts := qbf.DefaultOptions
			cdclOpts.Algorithm = qbf.CDCL
			dpllOpts := qbf.DefaultOptions
			dpllOpts.Algorithm = qbf.DPLL

			gotCDCL := solveFixture(t, f, cdclOpts)
			gotDPLL := solveFixture(t, f, dpllOpts)
			if gotCDCL != gotDPLL {
				t.Errorf("CDCL said %s, DPLL said %s", gotCDCL, gotDPLL)
			}
		})
	}
}

// TestPreprocessingDoesNotChangeVerdict checks that enabling any subset of
// the preprocessing simplifications never changes the verdict (spec §8).
func TestPreprocessingDoesNotChangeVerdict(t *testing.T) {
	files := []struct {
		name string
		want qbf.Status
	}{
		{"scenario1_sat_universal_satisfied.qdimacs", qbf.StatusSAT},
		{"scenario2_unsat_universal_defeats_existential.qdimacs", qbf.StatusUNSAT},
		{"scenario5_unsat_alternating_prefix.qdimacs", qbf.StatusUNSAT},
	}

	combos := []qbf.Options{
		qbf.DefaultOptions,
		withPreprocess(qbf.DefaultOptions, false, false, false, false),
		withPreprocess(qbf.DefaultOptions, true, false, false, true),
		withPreprocess(qbf.DefaultOptions, false, true, false, true),
		withPreprocess(qbf.DefaultOptions, true, true, true, true),
	}

	for _, f := range files {
		for i, opts := range combos {
			t.Run(f.name, func(t *testing.T) {
				got := solveFixture(t, f.name, opts)
				if got != f.want {
					t.Errorf("combo %d: got %s, want %s", i, got, f.want)
				}
			})
		}
	}
}

func withPreprocess(opts qbf.Options, universal, pure, preres, restarts bool) qbf.Options {
	opts.UniversalReduction = universal
	opts.PureLiteralDeletion = pure
	opts.PreResolution = preres
	opts.Restarts = restarts
	return opts
}
