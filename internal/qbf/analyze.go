package qbf

// analyze performs First-UIP conflict analysis starting from the
// conflicting clause confl, then applies Universal Reduction to the
// resulting learned clause before returning it (spec §4.3, step 3): any
// universal literal whose quantifier block lies deeper than every
// existential literal remaining in the clause contributes nothing (the
// universal player can always falsify it after every relevant existential
// choice has been made) and is dropped. If the reduced clause contains no
// existential literal at all, it can never be satisfied by any existential
// assignment and the formula is unsatisfiable: analyze reports this via the
// third return value.
//
// It returns the learned clause's literals (with the asserting literal in
// slot 0), the decision level to backjump to, and true — or (nil, 0, false)
// if the formula was just proven unsatisfiable.
func (s *Solver) analyze(confl *Clause) ([]Literal, int, bool) {
	nImplicationPoints := 0

	s.tmpLearnt = append(s.tmpLearnt[:0], -1) // slot 0 reserved for the FUIP

	nextTrailIdx := s.store.TrailLen() - 1
	l := Literal(-1) // sentinel: "explain the conflict itself", not an assignment
	s.seenVar.Clear()
	backtrackLevel := 0

	for {
		if confl != nil && confl.Learnt() {
			s.bumpClause(confl)
		}

		for _, q := range s.explain(confl, l) {
			v := q.VarID()
			if s.seenVar.Contains(v) {
				continue
			}
			s.seenVar.Add(v)
			s.bumpVar(v)

			if s.store.AssignLevel(v) == s.store.DecisionLevel() {
				nImplicationPoints++
				continue
			}

			s.tmpLearnt = append(s.tmpLearnt, q.Opposite())
			if lvl := s.store.AssignLevel(v); lvl > backtrackLevel {
				backtrackLevel = lvl
			}
		}

		for {
			l = s.store.TrailLitAt(nextTrailIdx)
			nextTrailIdx--
			v := l.VarID()
			confl = s.store.AssignReason(v)
			if s.seenVar.Contains(v) {
				break
			}
		}

		nImplicationPoints--
		if nImplicationPoints <= 0 {
			break
		}
	}
	s.tmpLearnt[0] = l.Opposite()

	learnt, ok := universalReduce(s.store, s.tmpLearnt)
	if !ok {
		return nil, 0, false
	}

	if len(learnt) == 1 {
		return learnt, 0, true
	}

	// Universal Reduction may have dropped the literal that was previously
	// the deepest, so the asserting literal and the backjump level must be
	// recomputed from the surviving literals: the asserting literal is
	// whichever remaining literal sits at the highest decision level, and
	// the backjump level is the second-highest level among the rest.
	assertIdx, assertLevel, second := 0, -1, 0
	for i, q := range learnt {
		if lvl := s.store.AssignLevel(q.VarID()); lvl > assertLevel {
			assertIdx, second, assertLevel = i, assertLevel, lvl
		} else if lvl > second {
			second = lvl
		}
	}
	learnt[0], learnt[assertIdx] = learnt[assertIdx], learnt[0]

	return learnt, second, true
}

// explain returns the negated reason literals for l (the sentinel literal
// -1 meaning "the conflicting clause itself"), delegating to the clause's
// own explain* accessors.
func (s *Solver) explain(c *Clause, l Literal) []Literal {
	if l == -1 {
		return c.explainConflict(s.store)
	}
	return c.explainAssign(s.store)
}

func (s *Solver) bumpVar(v int) {
	s.heuristic.Bump(s.store, v, s.store.VarBlock(v), s.store.VarValue(v))
}

func (s *Solver) bumpClause(c *Clause) {
	s.store.bumpClauseActivityBy(c, s.clauseInc)
	if c.Activity() > activityCeiling {
		s.clauseInc *= activityRescale
		s.store.rescaleLearntActivities()
	}
}

// universalReduce drops every universal literal in lits whose quantifier
// block index is deeper than every existential literal remaining, in
// place, and reports whether the result still contains at least one
// existential literal (false means the clause is unsatisfiable regardless
// of any existential assignment). Used both by analyze (on learned
// clauses) and by the Preprocessor (on original clauses).
func universalReduce(s *Store, lits []Literal) ([]Literal, bool) {
	maxExistBlock := -1
	hasExistential := false
	for _, l := range lits {
		if s.LitKind(l) == Existential {
			hasExistential = true
			if b := s.LitBlock(l); b > maxExistBlock {
				maxExistBlock = b
			}
		}
	}
	if !hasExistential {
		return lits[:0], false
	}

	k := 0
	for _, l := range lits {
		if s.LitKind(l) == Universal && s.LitBlock(l) > maxExistBlock {
			continue // dropped: no existential deep enough to depend on it
		}
		lits[k] = l
		k++
	}
	return lits[:k], true
}
