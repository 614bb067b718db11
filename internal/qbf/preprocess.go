package qbf

import "sort"

// Preprocessor runs a configurable pipeline of satisfiability-preserving
// simplifications over a Store before search begins (spec §4.4). It must
// only be invoked at decision level 0, before any decision has been made.
type Preprocessor struct {
	store *Store
	opts  Options
}

func NewPreprocessor(store *Store, opts Options) *Preprocessor {
	return &Preprocessor{store: store, opts: opts}
}

// Run applies every enabled simplification to a fixpoint and reports
// whether the formula is still possibly satisfiable (false means it was
// proven unsatisfiable during preprocessing).
func (p *Preprocessor) Run() bool {
	if !p.opts.Preprocess {
		return true
	}

	for {
		changed := false

		if p.opts.UniversalReduction {
			changed = p.reduceAllClauses() || changed
			if p.store.Propagate() != nil {
				p.store.MarkUnsat()
			}
		}
		if p.store.Unsat() {
			return false
		}

		if p.opts.PureLiteralDeletion {
			changed = p.eliminatePureLiterals() || changed
		}
		if p.store.Unsat() {
			return false
		}

		if !changed {
			break
		}
	}

	if p.opts.PreResolution {
		if !p.resolve() {
			return false
		}
	}

	return true
}

// reduceAllClauses applies Universal Reduction (the same rule analyze.go
// applies to learned clauses) to every original clause still live in the
// store, dropping trailing universal literals that no remaining existential
// literal in the clause can depend on. A clause that reduces to empty
// proves the formula unsatisfiable; one that reduces to all-universal
// literals is likewise unsatisfiable (spec §4.4, "Universal Reduction").
func (p *Preprocessor) reduceAllClauses() bool {
	changed := false
	s := p.store

	j := 0
	for _, c := range s.constraints {
		before := c.Len()
		keep, ok := p.reduceClause(c)
		if !ok {
			s.MarkUnsat()
			return true
		}
		if c.Len() != before {
			changed = true
		}
		if !keep {
			continue
		}
		s.constraints[j] = c
		j++
	}
	s.constraints = s.constraints[:j]

	return changed
}

// reduceClause applies Universal Reduction to c's literal slice. Because c
// may already have two watched literals registered (Universal Reduction
// runs on clauses already added to the store), reduceClause first unwatches
// the old pair, mutates the slice, then either re-watches the surviving
// pair (length >= 2), enqueues the sole survivor as a root-level unit and
// reports the clause should be dropped (length == 1), or reports unsat
// (length == 0, handled by the caller via the ok return).
//
// It returns (keep, ok): ok is false if the clause has no existential
// literal left (unsat); keep is false if the clause should be removed from
// the constraint list (either because it became a unit, which Store.Enqueue
// already recorded, or because it reduced to empty).
func (p *Preprocessor) reduceClause(c *Clause) (keep, ok bool) {
	s := p.store

	if c.Len() >= 2 {
		s.Unwatch(c, c.literals[0].Opposite())
		s.Unwatch(c, c.literals[1].Opposite())
	}

	reduced, ok := universalReduce(s, c.literals)
	if !ok {
		return false, false
	}
	c.literals = reduced

	switch len(c.literals) {
	case 0:
		return false, false
	case 1:
		s.Enqueue(c.literals[0], nil)
		return false, true
	default:
		s.Watch(c, c.literals[0].Opposite(), c.literals[1])
		s.Watch(c, c.literals[1].Opposite(), c.literals[0])
		return true, true
	}
}

// eliminatePureLiterals assigns every pure variable (one whose only
// occurrences across the live clause set share a single polarity) to the
// value that satisfies every clause it appears in, for existential
// variables, or to the falsifying polarity, for universal variables (a
// universal variable that never appears with both polarities can never
// help the adversary, so fixing it to falsify its clauses loses nothing;
// spec §4.4, "Pure-Literal Elimination"). It iterates to a fixpoint since
// fixing one variable can make another pure.
func (p *Preprocessor) eliminatePureLiterals() bool {
	s := p.store
	anyChanged := false

	for {
		seenPos := make([]bool, s.NumVariables())
		seenNeg := make([]bool, s.NumVariables())

		for _, c := range s.constraints {
			for _, l := range c.Literals() {
				if s.LitValue(l) != Unknown {
					continue
				}
				if l.IsPositive() {
					seenPos[l.VarID()] = true
				} else {
					seenNeg[l.VarID()] = true
				}
			}
		}

		changed := false
		for v := 0; v < s.NumVariables(); v++ {
			if s.VarValue(v) != Unknown {
				continue
			}
			pos, neg := seenPos[v], seenNeg[v]
			if pos == neg {
				continue // not pure (occurs both ways, or not at all)
			}

			var toAssign Literal
			switch s.VarKind(v) {
			case Existential:
				// Satisfy every clause the variable occurs in.
				if pos {
					toAssign = PosLit(v)
				} else {
					toAssign = NegLit(v)
				}
			default: // Universal
				// Falsify the variable's occurrences: it never helps the
				// adversary to assign it the polarity it appears as.
				if pos {
					toAssign = NegLit(v)
				} else {
					toAssign = PosLit(v)
				}
			}

			s.Enqueue(toAssign, nil)
			changed = true
		}

		if !changed {
			break
		}
		anyChanged = true

		if s.Propagate() != nil {
			s.MarkUnsat()
			return true
		}
		if !p.opts.UniversalReduction {
			continue
		}
		if p.reduceAllClauses() {
			anyChanged = true
		}
		if s.Propagate() != nil {
			s.MarkUnsat()
		}
		if s.Unsat() {
			return true
		}
	}

	return anyChanged
}

// resolve performs bounded Q-resolution: it repeatedly resolves pairs of
// clauses on a shared existential variable when doing so is safe (the
// resolvent is not blocked by an opposite-polarity universal literal
// appearing in both parents at a block deeper than the pivot) and produces
// a resolvent within the configured size bounds, adding useful resolvents
// to the clause database. It is a heuristic simplification, not a decision
// procedure: it runs for at most PreResolutionConfig.Iterations rounds and
// reports false only if it derives the empty clause (proving unsat).
//
// Within a single pass, min_ratio/max_ratio bound one cumulative quantity:
// (resolvents added so far this pass) / (clause count at the start of the
// pass). The pass stops picking new pivot variables the moment that ratio
// reaches max_ratio (spec.md:114); it never resumes mid-pivot once stopped.
func (p *Preprocessor) resolve() bool {
	cfg := p.opts.PreResolutionConfig
	s := p.store

	for iter := 0; iter < cfg.Iterations; iter++ {
		originalCount := float64(max1(len(s.constraints)))
		added := 0

		byVar := make(map[int][]*Clause)
		for _, c := range s.constraints {
			if cfg.RepeatAbove > 0 && c.Len() > cfg.RepeatAbove {
				continue
			}
			for _, l := range c.Literals() {
				if s.LitKind(l) == Existential {
					byVar[l.VarID()] = append(byVar[l.VarID()], c)
				}
			}
		}

		// Variables are resolved in a fixed order so a pass's outcome (and
		// where it stops once max_ratio is reached) is reproducible for
		// identical inputs (spec.md:122).
		vars := make([]int, 0, len(byVar))
		for v := range byVar {
			vars = append(vars, v)
		}
		sort.Ints(vars)

		var newClauses [][]Literal
		ratioExceeded := false

	pivots:
		for _, v := range vars {
			var pos, neg []*Clause
			for _, c := range byVar[v] {
				for _, l := range c.Literals() {
					if l.VarID() != v {
						continue
					}
					if l.IsPositive() {
						pos = append(pos, c)
					} else {
						neg = append(neg, c)
					}
				}
			}

			for _, cp := range pos {
				for _, cn := range neg {
					resolvent, blocked := qresolve(s, cp, cn, v)
					if blocked {
						continue
					}
					if cfg.MaxClauseLength != InfiniteClauseLength && len(resolvent) > cfg.MaxClauseLength {
						continue
					}

					newClauses = append(newClauses, resolvent)
					added++

					ratio := float64(added) / originalCount
					if cfg.MaxRatio > 0 && ratio >= cfg.MaxRatio {
						ratioExceeded = true
						break pivots
					}
				}
			}
		}

		if len(newClauses) == 0 {
			break
		}

		for _, lits := range newClauses {
			if len(lits) == 0 {
				s.MarkUnsat()
				return false
			}
			if err := s.AddClause(lits); err != nil {
				continue
			}
			if s.Unsat() {
				return false
			}
		}

		if ratioExceeded {
			break
		}
	}

	return true
}

// qresolve resolves clauses cp (containing pivot positively) and cn
// (containing it negatively) on variable pivot, returning the deduplicated,
// sorted union of their remaining literals. blocked is true when a
// universal literal appears with opposite polarity in both parents at a
// block index deeper than pivot's, in which case resolving would produce an
// unsound (non-implied) clause and the resolvent is discarded (the
// "blocked resolvent" check of Q-resolution).
func qresolve(s *Store, cp, cn *Clause, pivot int) (lits []Literal, blocked bool) {
	pivotBlock := s.VarBlock(pivot)

	seen := map[Literal]bool{}
	merge := func(c *Clause) bool {
		for _, l := range c.Literals() {
			if l.VarID() == pivot {
				continue
			}
			if s.LitKind(l) == Universal && s.LitBlock(l) > pivotBlock {
				if seen[l.Opposite()] {
					return false
				}
			}
			if !seen[l] {
				seen[l] = true
				lits = append(lits, l)
			}
		}
		return true
	}

	if !merge(cp) {
		return nil, true
	}
	if !merge(cn) {
		return nil, true
	}

	for l := range seen {
		if seen[l.Opposite()] {
			return nil, true // tautology: would be trivially satisfied anyway
		}
	}

	sort.Slice(lits, func(i, j int) bool { return lits[i] < lits[j] })
	return lits, false
}
