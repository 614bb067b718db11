package qdimacs_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arkenfold/qbfsolver/internal/qbf"
	"github.com/arkenfold/qbfsolver/internal/qdimacs"
)

func TestParseBasicInstance(t *testing.T) {
	input := `c a comment line, ignored
p cnf 2 2
a 1 0
e 2 0
1 2 0
-1 2 0
`
	store := qbf.NewStore()
	if err := qdimacs.Parse(strings.NewReader(input), store); err != nil {
		t.Fatalf("Parse: %s", err)
	}

	if got := store.NumVariables(); got != 2 {
		t.Errorf("NumVariables() = %d, want 2", got)
	}
	if got := store.NumConstraints(); got != 2 {
		t.Errorf("NumConstraints() = %d, want 2", got)
	}
	if got := store.VarKind(0); got != qbf.Universal {
		t.Errorf("VarKind(0) = %s, want universal", got)
	}
	if got := store.VarKind(1); got != qbf.Existential {
		t.Errorf("VarKind(1) = %s, want existential", got)
	}
}

func TestParseImplicitExistentialVariable(t *testing.T) {
	// x2 never appears in a quantifier line, so it must be treated as an
	// implicitly existential variable in the innermost block.
	input := `p cnf 2 1
a 1 0
1 2 0
`
	store := qbf.NewStore()
	if err := qdimacs.Parse(strings.NewReader(input), store); err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if got := store.VarKind(1); got != qbf.Existential {
		t.Errorf("VarKind(1) = %s, want existential", got)
	}
}

func TestParseMergesAdjacentSameKindBlocks(t *testing.T) {
	input := `p cnf 2 1
e 1 0
e 2 0
1 2 0
`
	store := qbf.NewStore()
	if err := qdimacs.Parse(strings.NewReader(input), store); err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if store.VarBlock(0) != store.VarBlock(1) {
		t.Errorf("adjacent same-kind quantifier lines were not merged into one block")
	}
}

func TestParseEmptyClauseMarksUnsat(t *testing.T) {
	input := `p cnf 1 1
e 1 0
0
`
	store := qbf.NewStore()
	if err := qdimacs.Parse(strings.NewReader(input), store); err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if !store.Unsat() {
		t.Errorf("store.Unsat() = false, want true after an empty clause")
	}
}

func TestParseMalformedHeaderIsAnError(t *testing.T) {
	input := "p cnf not-a-number 2\n"
	store := qbf.NewStore()
	if err := qdimacs.Parse(strings.NewReader(input), store); err == nil {
		t.Errorf("Parse succeeded on a malformed header, want an error")
	}
}

func TestParseQuantifierBlockKindSequence(t *testing.T) {
	// An e/a/e alternating prefix must produce exactly that sequence of
	// block kinds, regardless of how many variables each block holds.
	input := `p cnf 4 1
e 1 2 0
a 3 0
e 4 0
1 2 3 4 0
`
	store := qbf.NewStore()
	if err := qdimacs.Parse(strings.NewReader(input), store); err != nil {
		t.Fatalf("Parse: %s", err)
	}

	got := make([]qbf.QuantifierKind, store.Prefix.NumBlocks())
	for i := range got {
		got[i] = store.Prefix.Block(i).Kind
	}
	want := []qbf.QuantifierKind{qbf.Existential, qbf.Universal, qbf.Existential}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("block kind sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMissingHeaderIsAnError(t *testing.T) {
	store := qbf.NewStore()
	if err := qdimacs.Parse(strings.NewReader(""), store); err == nil {
		t.Errorf("Parse succeeded on an empty input, want an error")
	}
}
