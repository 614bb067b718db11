package qbf

import "fmt"

// watcher is one entry in a literal's watch list: a clause that must be
// reconsidered whenever that literal becomes true.
type watcher struct {
	clause *Clause
	// guard is another literal of the clause. If it is already true and
	// existential, the clause does not need to be reconsidered at all (a
	// true universal guard does not count); this lets Propagate
	// skip loading the clause's full literal slice in the common case.
	guard Literal
}

// Store is the Formula Store: it owns the clause database (originals and
// learned), the per-literal watch lists, the variable table (assignment,
// decision level, antecedent, quantifier kind/block, activity), the
// quantifier prefix, and the trail of assignments. Search Engine and
// Propagator both operate on a Store; neither owns clause or variable state
// of its own.
type Store struct {
	Prefix Prefix

	constraints []*Clause
	learnts     []*Clause

	watchers [][]watcher

	assigns    []LBool
	assignLvl  []int
	assignRsn  []*Clause
	quantKind  []QuantifierKind
	quantBlock []int
	activity   []float64

	trail    []Literal
	trailLim []int

	// unsat is set once a root-level conflict has been observed; once true
	// the store can never become satisfiable again.
	unsat bool

	// scratch buffer reused by Clause.explain* to avoid allocating on every
	// conflict-analysis step.
	tmpReason []Literal

	// Propagator state. BCP is implemented as Store methods (propagate.go)
	// rather than as a separate type because the watched-literal scheme
	// needs direct, zero-indirection access to the assignment and watcher
	// tables on every step; the Propagator component of the design is this
	// queue plus the methods in propagate.go operating on the fields above.
	propQueue   *litQueue
	tmpWatchers []watcher
}

// NewStore returns an empty Store ready to receive variables and clauses.
func NewStore() *Store {
	return &Store{
		propQueue: newLitQueue(128),
	}
}

// NumVariables returns the number of variables declared so far.
func (s *Store) NumVariables() int {
	return len(s.quantKind)
}

// AddVariable declares a new variable with the given quantifier kind and
// block index, returning its ID (0-based).
func (s *Store) AddVariable(kind QuantifierKind, block int) int {
	id := len(s.quantKind)

	s.watchers = append(s.watchers, nil, nil)
	s.assigns = append(s.assigns, Unknown, Unknown)
	s.assignLvl = append(s.assignLvl, -1)
	s.assignRsn = append(s.assignRsn, nil)
	s.quantKind = append(s.quantKind, kind)
	s.quantBlock = append(s.quantBlock, block)
	s.activity = append(s.activity, 0)

	s.Prefix.AddVar(block, id)

	return id
}

// VarKind returns the quantifier kind of variable v.
func (s *Store) VarKind(v int) QuantifierKind { return s.quantKind[v] }

// VarBlock returns the quantifier block index of variable v.
func (s *Store) VarBlock(v int) int { return s.quantBlock[v] }

// LitKind returns the quantifier kind of l's variable.
func (s *Store) LitKind(l Literal) QuantifierKind { return s.quantKind[l.VarID()] }

// LitBlock returns the quantifier block index of l's variable.
func (s *Store) LitBlock(l Literal) int { return s.quantBlock[l.VarID()] }

// VarValue returns the current assignment of variable v, as the value of its
// positive literal.
func (s *Store) VarValue(v int) LBool { return s.assigns[PosLit(v)] }

// LitValue returns the current assignment of literal l.
func (s *Store) LitValue(l Literal) LBool { return s.assigns[l] }

// AssignLevel returns the decision level at which variable v was assigned,
// or -1 if it is unassigned.
func (s *Store) AssignLevel(v int) int { return s.assignLvl[v] }

// AssignReason returns the antecedent clause that forced variable v's
// assignment via propagation, or nil if v was assigned by decision (or is
// unassigned).
func (s *Store) AssignReason(v int) *Clause { return s.assignRsn[v] }

// DecisionLevel returns the current decision level (0 at the root).
func (s *Store) DecisionLevel() int { return len(s.trailLim) }

// Unsat reports whether a root-level conflict has been recorded.
func (s *Store) Unsat() bool { return s.unsat }

// MarkUnsat records a root-level conflict.
func (s *Store) MarkUnsat() { s.unsat = true }

// NumAssigns returns the number of literals currently on the trail.
func (s *Store) NumAssigns() int { return len(s.trail) }

// NumConstraints returns the number of original (non-learned) clauses.
func (s *Store) NumConstraints() int { return len(s.constraints) }

// NumLearnts returns the number of learned clauses currently live.
func (s *Store) NumLearnts() int { return len(s.learnts) }

// Constraints returns the slice of original clauses. The caller must not
// retain a mutable reference across calls that mutate the store.
func (s *Store) Constraints() []*Clause { return s.constraints }

// Learnts returns the slice of learned clauses.
func (s *Store) Learnts() []*Clause { return s.learnts }

// Watch registers clause c to be reconsidered when literal watch becomes
// true; guard is the clause's other watched literal.
func (s *Store) Watch(c *Clause, watch, guard Literal) {
	s.watchers[watch] = append(s.watchers[watch], watcher{clause: c, guard: guard})
}

// Unwatch removes clause c from the watch list of literal watch.
func (s *Store) Unwatch(c *Clause, watch Literal) {
	ws := s.watchers[watch]
	j := 0
	for i := range ws {
		if ws[i].clause != c {
			ws[j] = ws[i]
			j++
		}
	}
	s.watchers[watch] = ws[:j]
}

// AddClause adds an original clause to the store. Adding an empty clause is
// legal: it is the canonical representation of `false` and marks the store
// unsat. Adding a clause that mentions a variable outside the declared
// variable table is a caller error and is not checked here; the parser
// layer is responsible for never producing one (see internal/qdimacs).
func (s *Store) AddClause(lits []Literal) error {
	if s.DecisionLevel() != 0 {
		return fmt.Errorf("qbf: clauses can only be added at decision level 0")
	}
	c, ok := NewClause(s, lits, false)
	if c != nil {
		s.constraints = append(s.constraints, c)
	}
	if !ok {
		s.unsat = true
	}
	return nil
}

// addLearntClause is used by conflict analysis to record a new learned
// clause, enqueueing its asserting (first) literal.
func (s *Store) addLearntClause(lits []Literal) *Clause {
	c, _ := NewClause(s, lits, true)
	s.Enqueue(lits[0], c)
	if c != nil {
		s.learnts = append(s.learnts, c)
	}
	return c
}

// Enqueue records that literal l has just become true because of the given
// antecedent clause (nil for a decision), appending it to the trail. It
// returns false if l was already assigned to the opposite value (a
// conflict), true otherwise (including if l was already assigned true).
func (s *Store) Enqueue(l Literal, reason *Clause) bool {
	switch s.assigns[l] {
	case False:
		return false
	case True:
		return true
	default:
		v := l.VarID()
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		s.assignLvl[v] = s.DecisionLevel()
		s.assignRsn[v] = reason
		s.trail = append(s.trail, l)
		s.propQueue.Push(l)
		return true
	}
}

// PushDecisionLevel starts a new decision level.
func (s *Store) PushDecisionLevel() {
	s.trailLim = append(s.trailLim, len(s.trail))
}

// TrailAt returns the trail entries from index i to the end.
func (s *Store) TrailAt(i int) []Literal { return s.trail[i:] }

// TrailLen returns the current length of the trail.
func (s *Store) TrailLen() int { return len(s.trail) }

// TrailLitAt returns the trail entry at index i.
func (s *Store) TrailLitAt(i int) Literal { return s.trail[i] }

// UndoOne pops and unassigns the most recent trail entry, returning it.
func (s *Store) UndoOne() Literal {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()
	s.assigns[l] = Unknown
	s.assigns[l.Opposite()] = Unknown
	s.assignRsn[v] = nil
	s.assignLvl[v] = -1
	s.trail = s.trail[:len(s.trail)-1]
	return l
}

// PopDecisionLevel removes the most recently pushed decision-level marker and
// returns the trail length it pointed at.
func (s *Store) PopDecisionLevel() int {
	n := len(s.trailLim) - 1
	lim := s.trailLim[n]
	s.trailLim = s.trailLim[:n]
	return lim
}

// TrailLimAt returns the trail length recorded at the start of decision
// level i+1 (i.e. the number of assignments made at or below level i).
func (s *Store) TrailLimAt(i int) int { return s.trailLim[i] }

func (s *Store) borrowReasonBuf() []Literal { return s.tmpReason[:0] }

func (s *Store) storeReasonBuf(buf []Literal) { s.tmpReason = buf }
