//go:build qbfclausepool

package qbf

import (
	"math/bits"
	"sync"
)

// Pools of literal slices bucketed by capacity, so that pool i holds slices
// with capacity in [2^(i+1), 2^(i+2)-1]; the last pool holds anything larger.
// Reusing deleted clauses' backing arrays cuts allocator pressure during
// learned-clause churn, at the cost of needing freeLiterals to be called
// exactly once per allocLiterals call (see Clause.Delete).

const nPools = 6
const lastBucketCap = 1 << (nPools + 1)

var pools [nPools]sync.Pool

func init() {
	for i := 0; i < nPools; i++ {
		capa := 1 << (i + 1)
		pools[i].New = func() any {
			s := make([]Literal, 0, capa)
			return &s
		}
	}
}

func poolFor(capacity int) int {
	if capacity >= lastBucketCap {
		return nPools - 1
	}
	id := bits.Len(uint(capacity)) - 2
	if capacity < (1 << id) {
		id--
	}
	if id < 0 {
		id = 0
	}
	return id
}

func allocLiterals(capacity int) []Literal {
	ref := pools[poolFor(capacity)].Get().(*[]Literal)
	s := (*ref)[:0]
	if cap(s) < capacity {
		s = make([]Literal, 0, capacity)
	}
	return s
}

// freeLiterals returns s's backing array to the pool matching its capacity.
// It must only be called once the clause owning s is definitely no longer
// referenced (see Clause.Delete).
func freeLiterals(s []Literal) {
	s = s[:0]
	pools[poolFor(cap(s))].Put(&s)
}
