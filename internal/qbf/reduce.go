package qbf

import "sort"

// ReduceDB deletes the lowest-activity half of the learned clause database,
// excluding clauses currently locked (serving as the antecedent of a trail
// entry) and excluding unit/binary learned clauses, which are cheap to keep
// and disproportionately useful. clauseInc is the caller's current
// clause-activity increment, used to compute the deletion threshold for the
// clauses not in the unconditionally-scanned lowest half.
func (s *Store) ReduceDB(clauseInc float64) {
	if len(s.learnts) == 0 {
		return
	}

	sort.Slice(s.learnts, func(i, j int) bool {
		return s.learnts[i].activity < s.learnts[j].activity
	})

	threshold := clauseInc / float64(len(s.learnts))

	j := 0
	half := len(s.learnts) / 2
	for i := 0; i < half; i++ {
		c := s.learnts[i]
		if c.locked(s) || c.Len() <= 2 {
			s.learnts[j] = c
			j++
		} else {
			c.Delete(s)
		}
	}
	for i := half; i < len(s.learnts); i++ {
		c := s.learnts[i]
		if !c.locked(s) && c.Len() > 2 && c.activity < threshold {
			c.Delete(s)
		} else {
			s.learnts[j] = c
			j++
		}
	}

	s.learnts = s.learnts[:j]
}
