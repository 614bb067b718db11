package qbf

import (
	"log"

	"github.com/rhartert/yagh"
)

// LiteralSelection selects which of the two decision-literal policies the
// Solver uses.
type LiteralSelection int

const (
	// Ordered picks the lowest-indexed unassigned variable in the outermost
	// non-empty quantifier block, True first.
	Ordered LiteralSelection = iota
	// VSS (Variable State Sum) picks the highest-activity unassigned
	// variable within the outermost non-empty quantifier block, breaking
	// ties toward the polarity seen most recently in a conflict.
	VSS
)

func (s LiteralSelection) String() string {
	if s == VSS {
		return "vss"
	}
	return "ordered"
}

// decisionHeuristic is the interface the Search Engine drives to obtain its
// next decision literal. Both policies share the same prefix discipline:
// the returned variable always belongs to the outermost quantifier block
// that still has an unassigned variable (see spec §4.3, "Quantifier prefix
// discipline").
type decisionHeuristic interface {
	// NewVar is called once per variable, in declaration order, so the
	// heuristic can size its internal structures.
	NewVar(block int)
	// Select returns the next decision literal. It must only be called
	// when at least one variable is unassigned.
	Select(s *Store) Literal
	// Bump records that v (declared in the given quantifier block) appeared
	// on the conflict side of the implication graph during the most recent
	// conflict, with the given polarity. Activity itself is stored on s,
	// which owns the variable table; Bump updates it there (if the policy
	// uses activity) as well as the heuristic's own selection structures
	// (e.g. heap position).
	Bump(s *Store, v, block int, polarity LBool)
	// Decay periodically shrinks the relative weight of older bumps.
	Decay(s *Store)
	// Unassign returns v (declared in the given quantifier block) to the
	// pool of candidates, recording the value it held (for phase saving)
	// before being unassigned.
	Unassign(s *Store, v, block int, had LBool)
}

// --- Ordered ----------------------------------------------------------

type orderedHeuristic struct {
	prefix *Prefix
}

func newOrderedHeuristic(prefix *Prefix) *orderedHeuristic {
	return &orderedHeuristic{prefix: prefix}
}

func (h *orderedHeuristic) NewVar(int)                         {}
func (h *orderedHeuristic) Bump(*Store, int, int, LBool)       {}
func (h *orderedHeuristic) Decay(*Store)                       {}
func (h *orderedHeuristic) Unassign(*Store, int, int, LBool)   {}

func (h *orderedHeuristic) Select(s *Store) Literal {
	for b := 0; b < h.prefix.NumBlocks(); b++ {
		block := h.prefix.Block(b)
		best := -1
		for _, v := range block.Vars {
			if s.VarValue(v) == Unknown && (best == -1 || v < best) {
				best = v
			}
		}
		if best != -1 {
			return PosLit(best)
		}
	}
	log.Panic("qbf: Select called with no unassigned variables")
	return 0
}

// --- VSS (activity-based) ----------------------------------------------

// vssHeuristic maintains one max-priority heap of unassigned variables per
// quantifier block (see design notes: "Prefix-aware decision. Rather than
// filtering the activity heap at each selection, maintain one heap per
// quantifier block"). Selection draws from the outermost block whose heap
// still yields an unassigned variable.
type vssHeuristic struct {
	prefix *Prefix

	heaps     []*yagh.IntMap[float64]
	heapSizes []int

	scoreInc float64
	decay    float64

	phases      []LBool
	recentPol   []LBool
	phaseSaving bool
}

func newVSSHeuristic(prefix *Prefix, decay float64, phaseSaving bool) *vssHeuristic {
	return &vssHeuristic{
		prefix:      prefix,
		scoreInc:    1,
		decay:       decay,
		phaseSaving: phaseSaving,
	}
}

func (h *vssHeuristic) blockHeap(block int) *yagh.IntMap[float64] {
	for len(h.heaps) <= block {
		h.heaps = append(h.heaps, yagh.New[float64](0))
		h.heapSizes = append(h.heapSizes, 0)
	}
	return h.heaps[block]
}

func (h *vssHeuristic) NewVar(block int) {
	h.phases = append(h.phases, Unknown)
	h.recentPol = append(h.recentPol, Unknown)

	v := len(h.phases) - 1
	heap := h.blockHeap(block)
	heap.GrowBy(1)
	heap.Put(v, 0)
	h.heapSizes[block]++
}

func (h *vssHeuristic) Bump(s *Store, v, block int, polarity LBool) {
	s.bumpVarActivityBy(v, h.scoreInc)
	h.recentPol[v] = polarity

	if heap := h.blockHeap(block); heap.Contains(v) {
		heap.Put(v, -s.varActivity(v))
	}

	if s.varActivity(v) > activityCeiling {
		h.rescale(s)
	}
}

func (h *vssHeuristic) rescale(s *Store) {
	h.scoreInc *= activityRescale
	s.rescaleVarActivities()
	// yagh.IntMap exposes no bulk rescale; priorities are refreshed lazily
	// the next time each variable is bumped or reinserted, which is safe
	// because only relative order matters for selection.
}

func (h *vssHeuristic) Decay(s *Store) {
	// decay is in (0, 1], so dividing by it grows the increment over time
	// (spec.md: "keep a logical bump factor that grows geometrically and
	// rescale periodically"), making older bumps worth relatively less
	// without ever touching the scores themselves until a rescale is due.
	h.scoreInc /= h.decay
	if h.scoreInc > activityCeiling {
		h.rescale(s)
	}
}

func (h *vssHeuristic) Unassign(s *Store, v, block int, had LBool) {
	if h.phaseSaving {
		h.phases[v] = had
	}
	h.blockHeap(block).Put(v, -s.varActivity(v))
}

func (h *vssHeuristic) Select(s *Store) Literal {
	for b := 0; b < len(h.heaps); b++ {
		heap := h.heaps[b]
		for {
			entry, ok := heap.Pop()
			if !ok {
				break // this block is exhausted, try the next
			}
			v := entry.Elem
			if s.VarValue(v) != Unknown {
				continue // stale entry; will be reinserted on Unassign
			}
			return h.literalFor(v)
		}
	}
	log.Panic("qbf: Select called with no unassigned variables")
	return 0
}

func (h *vssHeuristic) literalFor(v int) Literal {
	switch h.phaseFor(v) {
	case True:
		return PosLit(v)
	case False:
		return NegLit(v)
	default:
		return PosLit(v)
	}
}

func (h *vssHeuristic) phaseFor(v int) LBool {
	if h.phaseSaving && h.phases[v] != Unknown {
		return h.phases[v]
	}
	return h.recentPol[v]
}
