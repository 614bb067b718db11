package qbf

import "strings"

// Clause is an ordered sequence of distinct literals with no variable
// occurring twice and no pair of complementary literals (those are
// tautologies and are dropped at ingest). By convention the clause's two
// watched literals sit at positions 0 and 1 of literals.
type Clause struct {
	literals []Literal

	activity float64
	lbd      int

	learnt  bool
	deleted bool
}

// NewClause builds a new clause from tmpLiterals, registering its watches
// with store. For original (non-learned) clauses, tmpLiterals is simplified
// in place against the current (root-level) assignment: duplicate literals
// are dropped, tautologies (a literal and its negation both present) cause
// the clause to be discarded as trivially true, and literals already false
// at the root are removed. Learned clauses are assumed already minimal and
// are taken as-is.
//
// It returns (nil, true) if the clause was trivially satisfied and never
// needs to be stored, (nil, false) if the clause reduced to empty (proving
// unsat), (nil, ok) if it reduced to a unit (the unit literal is enqueued
// directly and ok is the result of Store.Enqueue, false only when the
// literal is already false), and (c, true) with a non-nil c when an actual
// multi-literal clause was created.
func NewClause(s *Store, tmpLiterals []Literal, learnt bool) (*Clause, bool) {
	size := len(tmpLiterals)

	if !learnt {
		seen := map[Literal]struct{}{}
		for i := size - 1; i >= 0; i-- {
			if _, ok := seen[tmpLiterals[i].Opposite()]; ok {
				return nil, true // tautology
			}
			if _, ok := seen[tmpLiterals[i]]; ok {
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
				continue
			}
			seen[tmpLiterals[i]] = struct{}{}

			switch s.LitValue(tmpLiterals[i]) {
			case True:
				return nil, true // clause already satisfied at the root
			case False:
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			}
		}
		tmpLiterals = tmpLiterals[:size]
	}

	switch size {
	case 0:
		return nil, false
	case 1:
		return nil, s.Enqueue(tmpLiterals[0], nil)
	default:
		c := &Clause{learnt: learnt}
		c.literals = allocLiterals(size)
		c.literals = append(c.literals, tmpLiterals...)

		if learnt {
			// Move the literal with the highest decision level into slot 1
			// so the second watch tracks the most recently assigned literal,
			// which is where backjumping will re-propagate from.
			maxLevel, wl := -1, -1
			for i, l := range c.literals {
				if lvl := s.AssignLevel(l.VarID()); lvl > maxLevel {
					maxLevel, wl = lvl, i
				}
			}
			c.literals[wl], c.literals[1] = c.literals[1], c.literals[wl]
		}

		s.Watch(c, c.literals[0].Opposite(), c.literals[1])
		s.Watch(c, c.literals[1].Opposite(), c.literals[0])

		return c, true
	}
}

// Literals returns the clause's current literal sequence. Callers must treat
// it as read-only.
func (c *Clause) Literals() []Literal { return c.literals }

// Len returns the number of literals currently in the clause.
func (c *Clause) Len() int { return len(c.literals) }

// Learnt reports whether the clause was derived by conflict analysis.
func (c *Clause) Learnt() bool { return c.learnt }

// Activity returns the learned-clause activity score.
func (c *Clause) Activity() float64 { return c.activity }

// LBD returns the clause's stored literal block distance. Conflict analysis
// does not compute it, so it is 0 for every clause.
func (c *Clause) LBD() int { return c.lbd }

// locked reports whether the clause is currently the antecedent of an
// assignment still on the trail, which makes it unsafe to delete.
func (c *Clause) locked(s *Store) bool {
	return s.AssignReason(c.literals[0].VarID()) == c
}

// Delete unwatches and frees the clause. It must only be called on clauses
// no longer locked (see locked).
func (c *Clause) Delete(s *Store) {
	if len(c.literals) >= 2 {
		s.Unwatch(c, c.literals[0].Opposite())
		s.Unwatch(c, c.literals[1].Opposite())
	}
	c.deleted = true
	freeLiterals(c.literals)
	c.literals = nil
}

// satisfiesExistential reports whether literal l, in its current
// assignment, satisfies the clause for the existential player: it must be
// assigned True and bound by an existential quantifier. A universal literal
// assigned True does not satisfy the clause (see spec §4.2).
func (s *Store) satisfiesExistential(l Literal) bool {
	return s.LitValue(l) == True && s.LitKind(l) == Existential
}

// Simplify removes literals already false at the root level and reports
// whether the clause is now satisfied (and can therefore be dropped
// entirely). It is only safe to call at decision level 0.
func (c *Clause) Simplify(s *Store) bool {
	k := 0
	for _, l := range c.literals {
		switch s.LitValue(l) {
		case True:
			if s.LitKind(l) == Existential {
				return true
			}
			c.literals[k] = l
			k++
		case False:
			// drop
		default:
			c.literals[k] = l
			k++
		}
	}
	c.literals = c.literals[:k]
	return false
}

// watchCandidate ranks how useful literal l would be as a replacement watch,
// per the QBF-aware preference order in spec §4.2: an existential literal
// that is True is best (it satisfies the clause outright), then any
// unassigned existential, then any unassigned universal. Everything else
// (false literals, true universal literals) cannot serve as a watch.
//
// Lower is better; priorityNone means "not usable".
type candidatePriority int

const (
	priorityExistentialTrue candidatePriority = iota
	priorityExistentialUnassigned
	priorityUniversalUnassigned
	priorityNone
)

func (s *Store) watchCandidate(l Literal) candidatePriority {
	v := s.LitValue(l)
	k := s.LitKind(l)
	switch {
	case v == True && k == Existential:
		return priorityExistentialTrue
	case v == Unknown && k == Existential:
		return priorityExistentialUnassigned
	case v == Unknown && k == Universal:
		return priorityUniversalUnassigned
	default:
		return priorityNone
	}
}

// Propagate is invoked when literal l (one of the clause's two watches'
// negation) has just become true; it first swaps the two watches if needed
// so that c.literals[1] == l.Opposite() (the watch just falsified). It attempts to
// relocate the watch; it returns true if the clause remains satisfiable
// without further action (watch moved, or the clause is satisfied), and
// false if the clause is now a conflict. In the unit case, it enqueues the
// forced literal and returns true; the caller distinguishes "no conflict"
// from "conflict" by the return value alone, matching the BCP loop's
// contract in Store-using code.
func (c *Clause) Propagate(s *Store, l Literal) bool {
	opp := l.Opposite()
	if c.literals[0] == opp {
		c.literals[0], c.literals[1] = c.literals[1], c.literals[0]
	}

	if s.satisfiesExistential(c.literals[0]) {
		s.Watch(c, l, c.literals[0])
		return true
	}

	bestIdx := -1
	bestPriority := priorityNone
	for i := 2; i < len(c.literals); i++ {
		p := s.watchCandidate(c.literals[i])
		if p < bestPriority {
			bestIdx, bestPriority = i, p
			if p == priorityExistentialTrue {
				break
			}
		}
	}

	if bestIdx != -1 {
		c.literals[1], c.literals[bestIdx] = c.literals[bestIdx], c.literals[1]
		s.Watch(c, c.literals[1].Opposite(), c.literals[0])
		return true
	}

	// No usable replacement watch was found: literals[1:] are all either
	// false, or true-but-universal (neither helps the existential player).
	// The clause's fate now rests entirely on literals[0].
	s.Watch(c, l, c.literals[0])

	switch v := s.LitValue(c.literals[0]); {
	case v == True && s.LitKind(c.literals[0]) == Existential:
		return true // satisfied
	case v == Unknown && s.LitKind(c.literals[0]) == Existential:
		return s.Enqueue(c.literals[0], c) // ordinary unit propagation
	default:
		// Either literals[0] is false, or it is an unassigned/true
		// universal with no existential anywhere in the clause able to
		// satisfy it: the existential player cannot win this clause.
		return false
	}
}

// explainConflict returns the negation of every literal in the clause, used
// when the clause itself is the conflicting clause during analysis. The
// caller (Solver.analyze) is responsible for bumping the clause's activity
// if it is learned.
func (c *Clause) explainConflict(s *Store) []Literal {
	buf := s.borrowReasonBuf()
	for _, l := range c.literals {
		buf = append(buf, l.Opposite())
	}
	s.storeReasonBuf(buf)
	return buf
}

// explainAssign returns the negation of every literal but the first, used
// when the clause is the antecedent of literals[0]'s assignment.
func (c *Clause) explainAssign(s *Store) []Literal {
	buf := s.borrowReasonBuf()
	for _, l := range c.literals[1:] {
		buf = append(buf, l.Opposite())
	}
	s.storeReasonBuf(buf)
	return buf
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "()"
	}
	sb := strings.Builder{}
	sb.WriteByte('(')
	for i, l := range c.literals {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(l.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
