package qbf

import (
	"time"

	"github.com/hashicorp/go-hclog"
)

// Solver is the Search Engine: it drives a Store through the decide /
// propagate / analyze / backtrack state machine described in the design
// notes, using either CDCL (non-chronological backjumping, clause learning,
// restarts) or DPLL (chronological backtracking, no learning) depending on
// Options.Algorithm.
type Solver struct {
	store     *Store
	heuristic decisionHeuristic

	opts Options
	log  hclog.Logger

	clauseInc float64

	// DPLL mode only: the polarity already tried at each decision level, so
	// that undoing a decision can retry the opposite polarity exactly once
	// before giving up on the branch entirely.
	triedOpposite []bool

	seenVar    *ResetSet
	tmpLearnt  []Literal
	restartGen *lubyGenerator

	startTime time.Time

	// Model holds the satisfying assignment found by the most recent
	// successful Solve call, one bool per variable (true == positive
	// literal). It is nil until a SAT result has been produced.
	Model []bool

	metrics *Metrics

	// Stats, kept independently of metrics so callers without Prometheus
	// wired in still get basic counters back.
	TotalConflicts    int64
	TotalDecisions    int64
	TotalRestarts     int64
	TotalPropagations int64
}

// NewSolver wraps store, which must already have every variable and clause
// of the instance declared (the Preprocessor, if any, runs before this
// call). metrics may be nil to disable Prometheus instrumentation.
func NewSolver(store *Store, opts Options, log hclog.Logger, metrics *Metrics) *Solver {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if opts.Algorithm == DPLL {
		opts.Restarts = false
	}

	s := &Solver{
		store:     store,
		opts:      opts,
		log:       log,
		clauseInc: 1,
		seenVar:   &ResetSet{},
		metrics:   metrics,
	}

	if opts.LiteralSelection == VSS {
		s.heuristic = newVSSHeuristic(&store.Prefix, opts.VariableDecay, opts.PhaseSaving)
	} else {
		s.heuristic = newOrderedHeuristic(&store.Prefix)
	}
	for v := 0; v < store.NumVariables(); v++ {
		s.heuristic.NewVar(store.VarBlock(v))
		s.seenVar.Expand()
	}
	if opts.Restarts {
		s.restartGen = newLubyGenerator(opts.RestartBase)
	}

	return s
}

func (s *Solver) shouldStop() bool {
	if s.opts.MaxConflicts >= 0 && s.TotalConflicts >= s.opts.MaxConflicts {
		return true
	}
	if s.opts.Timeout > 0 && time.Since(s.startTime) >= s.opts.Timeout {
		return true
	}
	return false
}

// Solve runs the Search Engine to completion (or until a configured stop
// condition is hit) and returns the resulting Status.
func (s *Solver) Solve() Status {
	s.startTime = time.Now()
	if s.metrics != nil {
		defer func() {
			s.metrics.SolveDuration.Observe(time.Since(s.startTime).Seconds())
		}()
	}

	if s.store.Unsat() {
		return StatusUNSAT
	}

	if s.opts.Algorithm == DPLL {
		status := s.searchDPLL()
		s.cancelUntil(0)
		return status
	}

	numLearnts := s.store.NumConstraints() / max1(s.opts.InitialLearntsRatio)
	status := StatusUnknown

	for status == StatusUnknown {
		budget := -1
		if s.opts.Restarts {
			budget = int(s.restartGen.Next() * float64(s.opts.RestartBase))
			if s.metrics != nil {
				s.metrics.Restarts.Inc()
			}
		}
		status = s.searchCDCL(budget, numLearnts)
		numLearnts += numLearnts/20 + 1

		if s.shouldStop() {
			break
		}
	}

	s.cancelUntil(0)
	return status
}

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// searchCDCL runs one restart "round": propagate/decide until either a
// solution is found, the formula is refuted, the conflict budget for this
// round is exhausted (triggering a restart, if budget >= 0), or a global
// stop condition fires. Restarts only ever backtrack to level 0 and never
// discard learned clauses or activities, per the design notes.
func (s *Solver) searchCDCL(budget, numLearnts int) Status {
	if s.store.Unsat() {
		return StatusUNSAT
	}

	s.TotalRestarts++
	conflicts := 0

	for !s.shouldStop() {
		conflict := s.store.Propagate()
		s.TotalPropagations++
		if s.metrics != nil {
			s.metrics.Propagations.Inc()
		}

		if conflict != nil {
			s.TotalConflicts++
			conflicts++
			if s.metrics != nil {
				s.metrics.Conflicts.Inc()
			}

			if s.store.DecisionLevel() == 0 {
				s.store.MarkUnsat()
				return StatusUNSAT
			}

			learnt, backtrackLevel, ok := s.analyze(conflict)
			if !ok {
				// The learned clause reduced to empty (or all-universal)
				// under Universal Reduction: the formula is unsatisfiable
				// regardless of any remaining decisions.
				s.store.MarkUnsat()
				return StatusUNSAT
			}

			s.cancelUntil(backtrackLevel)
			s.record(learnt)

			s.decayClauseActivity()
			s.decayVarActivity()
			continue
		}

		if s.store.DecisionLevel() == 0 {
			s.store.Simplify()
		}

		if s.store.NumLearnts()-s.store.NumAssigns() >= numLearnts {
			s.store.ReduceDB(s.clauseInc)
		}

		if s.store.NumAssigns() == s.store.NumVariables() {
			s.saveModel()
			s.cancelUntil(0)
			return StatusSAT
		}

		if budget >= 0 && conflicts > budget {
			s.cancelUntil(0)
			return StatusUnknown
		}

		s.decide()
	}

	return StatusUnknown
}

// searchDPLL runs chronological DPLL search to completion: on conflict it
// undoes the most recent decision; if that decision's opposite polarity has
// not yet been tried at this level, it tries it, otherwise it keeps
// undoing further back. No clauses are learned and activities are unused.
func (s *Solver) searchDPLL() Status {
	for !s.shouldStop() {
		conflict := s.store.Propagate()
		s.TotalPropagations++
		if s.metrics != nil {
			s.metrics.Propagations.Inc()
		}

		if conflict != nil {
			s.TotalConflicts++
			if s.metrics != nil {
				s.metrics.Conflicts.Inc()
			}

			for {
				if s.store.DecisionLevel() == 0 {
					s.store.MarkUnsat()
					return StatusUNSAT
				}
				lastDecision := s.undoDecisionLevel()
				if !s.triedOpposite[s.store.DecisionLevel()] {
					s.triedOpposite[s.store.DecisionLevel()] = true
					s.store.PushDecisionLevel()
					s.store.Enqueue(lastDecision.Opposite(), nil)
					break
				}
				s.triedOpposite = s.triedOpposite[:s.store.DecisionLevel()]
			}
			continue
		}

		if s.store.NumAssigns() == s.store.NumVariables() {
			s.saveModel()
			return StatusSAT
		}

		s.decide()
	}

	return StatusUnknown
}

// decide picks the next decision literal from the heuristic and opens a new
// decision level for it.
func (s *Solver) decide() {
	l := s.heuristic.Select(s.store)
	s.TotalDecisions++
	s.store.PushDecisionLevel()
	if s.opts.Algorithm == DPLL {
		s.triedOpposite = append(s.triedOpposite, false)
	}
	s.store.Enqueue(l, nil)
	if s.metrics != nil {
		s.metrics.Decisions.Inc()
	}
}

// undoDecisionLevel undoes every assignment back through (and including)
// the decision literal of the current level, popping that level, and
// returns the decision literal that was undone.
func (s *Solver) undoDecisionLevel() Literal {
	lim := s.store.PopDecisionLevel()
	var decisionLit Literal
	for s.store.TrailLen() > lim {
		l := s.undoOne()
		decisionLit = l
	}
	return decisionLit
}

func (s *Solver) undoOne() Literal {
	v := s.store.TrailLitAt(s.store.TrailLen() - 1).VarID()
	had := s.store.VarValue(v)
	l := s.store.UndoOne()
	s.heuristic.Unassign(s.store, v, s.store.VarBlock(v), had)
	return l
}

func (s *Solver) cancel() {
	lim := s.store.PopDecisionLevel()
	for s.store.TrailLen() > lim {
		s.undoOne()
	}
}

func (s *Solver) cancelUntil(level int) {
	for s.store.DecisionLevel() > level {
		s.cancel()
	}
	if s.opts.Algorithm == DPLL && len(s.triedOpposite) > level {
		s.triedOpposite = s.triedOpposite[:level]
	}
}

func (s *Solver) record(lits []Literal) {
	c := s.store.addLearntClause(lits)
	if c != nil {
		s.bumpClause(c)
	}
	if s.metrics != nil {
		s.metrics.LearntClauses.Set(float64(s.store.NumLearnts()))
	}
}

func (s *Solver) saveModel() {
	model := make([]bool, s.store.NumVariables())
	for v := range model {
		model[v] = s.store.VarValue(v) == True
	}
	s.Model = model
}

// decayClauseActivity grows the bump increment by dividing it by ClauseDecay
// (in (0,1]), so older bumps are worth relatively less without rewriting
// every clause's activity on each conflict.
func (s *Solver) decayClauseActivity() { s.clauseInc /= s.opts.ClauseDecay }
func (s *Solver) decayVarActivity()    { s.heuristic.Decay(s.store) }
