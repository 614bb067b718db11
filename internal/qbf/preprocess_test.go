package qbf

import "testing"

// addBlock declares n fresh variables of the given kind in a new quantifier
// block, so tests can build small instances directly against the Store API
// without going through the QDIMACS parser.
func addBlock(s *Store, kind QuantifierKind, n int) []int {
	block := s.Prefix.AppendBlock(kind)
	vars := make([]int, n)
	for i := range vars {
		vars[i] = s.AddVariable(kind, block)
	}
	return vars
}

func TestUniversalReductionDropsDeepUniversalLiteral(t *testing.T) {
	s := NewStore()
	e := addBlock(s, Existential, 2) // block 0
	a := addBlock(s, Universal, 1)   // block 1, deeper than every existential

	// (x0 v x1 v a0): the universal literal cannot help the existential
	// player pick x0/x1, since it is quantified after both of them.
	if err := s.AddClause([]Literal{PosLit(e[0]), PosLit(e[1]), PosLit(a[0])}); err != nil {
		t.Fatalf("AddClause: %s", err)
	}

	pre := NewPreprocessor(s, Options{Preprocess: true, UniversalReduction: true})
	if !pre.Run() {
		t.Fatalf("Run() reported unsat, want still satisfiable")
	}

	if got := s.Constraints()[0].Len(); got != 2 {
		t.Errorf("clause length after reduction = %d, want 2 (universal literal dropped)", got)
	}
}

func TestUniversalReductionKeepsShallowUniversalLiteral(t *testing.T) {
	s := NewStore()
	a := addBlock(s, Universal, 1)   // block 0
	e := addBlock(s, Existential, 1) // block 1

	// (a0 v x0): the universal literal is quantified *before* the
	// existential one, so it must be kept.
	if err := s.AddClause([]Literal{PosLit(a[0]), PosLit(e[0])}); err != nil {
		t.Fatalf("AddClause: %s", err)
	}

	pre := NewPreprocessor(s, Options{Preprocess: true, UniversalReduction: true})
	if !pre.Run() {
		t.Fatalf("Run() reported unsat, want still satisfiable")
	}

	if got := s.Constraints()[0].Len(); got != 2 {
		t.Errorf("clause length after reduction = %d, want 2 (literal kept)", got)
	}
}

func TestPureLiteralEliminationAssignsExistentialToSatisfy(t *testing.T) {
	s := NewStore()
	e := addBlock(s, Existential, 2) // block 0

	// x0 appears only positively across both clauses: pure, so it should be
	// fixed to true.
	if err := s.AddClause([]Literal{PosLit(e[0]), PosLit(e[1])}); err != nil {
		t.Fatalf("AddClause: %s", err)
	}
	if err := s.AddClause([]Literal{PosLit(e[0]), NegLit(e[1])}); err != nil {
		t.Fatalf("AddClause: %s", err)
	}

	pre := NewPreprocessor(s, Options{Preprocess: true, PureLiteralDeletion: true})
	if !pre.Run() {
		t.Fatalf("Run() reported unsat, want still satisfiable")
	}

	if s.VarValue(e[0]) != True {
		t.Errorf("VarValue(x0) = %s, want True (pure existential literal)", s.VarValue(e[0]))
	}
}

func TestPreResolutionAddsResolvent(t *testing.T) {
	s := NewStore()
	vars := addBlock(s, Existential, 3) // v, x, y, all in one block
	v, x, y := vars[0], vars[1], vars[2]

	// (v v x), (-v v y): resolving on v derives (x v y).
	if err := s.AddClause([]Literal{PosLit(v), PosLit(x)}); err != nil {
		t.Fatalf("AddClause: %s", err)
	}
	if err := s.AddClause([]Literal{NegLit(v), PosLit(y)}); err != nil {
		t.Fatalf("AddClause: %s", err)
	}

	opts := Options{
		Preprocess:    true,
		PreResolution: true,
		PreResolutionConfig: PreResolutionConfig{
			MaxRatio:        1.0,
			MaxClauseLength: InfiniteClauseLength,
			Iterations:      1,
		},
	}
	pre := NewPreprocessor(s, opts)
	if !pre.Run() {
		t.Fatalf("Run() reported unsat, want still satisfiable")
	}

	if got := s.NumConstraints(); got != 3 {
		t.Fatalf("NumConstraints() = %d, want 3 (2 original + 1 resolvent)", got)
	}

	found := false
	for _, c := range s.Constraints() {
		if c.Len() != 2 {
			continue
		}
		has := map[Literal]bool{}
		for _, l := range c.Literals() {
			has[l] = true
		}
		if has[PosLit(x)] && has[PosLit(y)] {
			found = true
		}
	}
	if !found {
		t.Errorf("resolvent (x v y) not found among constraints after resolve()")
	}
}

func TestPreResolutionStopsPassAtMaxRatio(t *testing.T) {
	s := NewStore()
	vars := addBlock(s, Existential, 5) // v, x1, x2, y1, y2
	v, x1, x2, y1, y2 := vars[0], vars[1], vars[2], vars[3], vars[4]

	// Four original clauses on pivot v give 2x2 = 4 candidate resolvent
	// pairs. With max_ratio = 0.5 the cumulative ratio (added / original)
	// reaches 0.5 after the second resolvent, so the pass must stop there
	// rather than deriving all 4.
	if err := s.AddClause([]Literal{PosLit(v), PosLit(x1)}); err != nil {
		t.Fatalf("AddClause: %s", err)
	}
	if err := s.AddClause([]Literal{PosLit(v), PosLit(x2)}); err != nil {
		t.Fatalf("AddClause: %s", err)
	}
	if err := s.AddClause([]Literal{NegLit(v), PosLit(y1)}); err != nil {
		t.Fatalf("AddClause: %s", err)
	}
	if err := s.AddClause([]Literal{NegLit(v), PosLit(y2)}); err != nil {
		t.Fatalf("AddClause: %s", err)
	}

	opts := Options{
		Preprocess:    true,
		PreResolution: true,
		PreResolutionConfig: PreResolutionConfig{
			MaxRatio:        0.5,
			MaxClauseLength: InfiniteClauseLength,
			Iterations:      1,
		},
	}
	pre := NewPreprocessor(s, opts)
	if !pre.Run() {
		t.Fatalf("Run() reported unsat, want still satisfiable")
	}

	if got := s.NumConstraints(); got != 6 {
		t.Errorf("NumConstraints() = %d, want 6 (4 original + 2 resolvents before the max_ratio cutoff)", got)
	}
}

func TestPureLiteralEliminationAssignsUniversalToFalsify(t *testing.T) {
	s := NewStore()
	a := addBlock(s, Universal, 1)   // block 0
	e := addBlock(s, Existential, 1) // block 1

	// a0 occurs only positively across the single clause it appears in;
	// false is the value that falsifies every occurrence, the universal
	// player's best choice, so pure-literal elimination assigns it false.
	if err := s.AddClause([]Literal{PosLit(a[0]), PosLit(e[0])}); err != nil {
		t.Fatalf("AddClause: %s", err)
	}

	pre := NewPreprocessor(s, Options{Preprocess: true, PureLiteralDeletion: true})
	if !pre.Run() {
		t.Fatalf("Run() reported unsat, want still satisfiable")
	}

	if s.VarValue(a[0]) != False {
		t.Errorf("VarValue(a0) = %s, want False (pure universal literal)", s.VarValue(a[0]))
	}
}
