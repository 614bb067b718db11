// Package report formats solve outcomes for both of the CLI's modes (spec
// §6.4): a human-readable summary for a single instance, and a CSV table of
// one row per instance for a benchmark run.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/arkenfold/qbfsolver/internal/qbf"
)

// InstanceResult is the outcome of solving one instance, built from a
// Solver's own counters rather than re-derived, so the single-instance
// summary and the benchmark row always agree with what the solver itself
// recorded.
type InstanceResult struct {
	Name          string
	Status        qbf.Status
	Elapsed       time.Duration
	Decisions     int64
	Propagations  int64
	Conflicts     int64
	LearntClauses int64
	Restarts      int64
}

// WriteInstanceResult prints the single-instance summary: the verdict on
// its own line (so scripts can grep for SATISFIABLE/UNSATISFIABLE/UNKNOWN
// without parsing anything else), followed by commented stat lines in the
// teacher's DIMACS-style "c " prefix convention.
func WriteInstanceResult(w io.Writer, r InstanceResult) {
	fmt.Fprintln(w, r.Status.String())
	fmt.Fprintf(w, "c time (sec):    %f\n", r.Elapsed.Seconds())
	fmt.Fprintf(w, "c decisions:     %d\n", r.Decisions)
	fmt.Fprintf(w, "c propagations:  %d\n", r.Propagations)
	fmt.Fprintf(w, "c conflicts:     %d\n", r.Conflicts)
	fmt.Fprintf(w, "c learnt clauses: %d\n", r.LearntClauses)
	fmt.Fprintf(w, "c restarts:      %d\n", r.Restarts)
}

// WriteBenchmarkCSV writes a header row followed by one row per result,
// matching spec §6's benchmark-mode column list: instance identifier,
// result, elapsed milliseconds, decisions, propagations, conflicts,
// learned-clause count, restarts.
func WriteBenchmarkCSV(w io.Writer, results []InstanceResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"instance", "result", "elapsed_ms",
		"decisions", "propagations", "conflicts",
		"learnt_clauses", "restarts",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.Name,
			r.Status.String(),
			strconv.FormatInt(r.Elapsed.Milliseconds(), 10),
			strconv.FormatInt(r.Decisions, 10),
			strconv.FormatInt(r.Propagations, 10),
			strconv.FormatInt(r.Conflicts, 10),
			strconv.FormatInt(r.LearntClauses, 10),
			strconv.FormatInt(r.Restarts, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}
