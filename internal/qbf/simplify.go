package qbf

// Simplify removes clauses that are already satisfied at the root level
// (decision level 0) from both the original and learned databases. It must
// only be called at decision level 0 with an empty propagation queue. It
// returns false (and marks the store unsat) if propagating first reveals a
// root-level conflict.
func (s *Store) Simplify() bool {
	if s.unsat || s.Propagate() != nil {
		s.unsat = true
		return false
	}

	s.simplifyInPlace(&s.learnts)
	s.simplifyInPlace(&s.constraints)

	return true
}

func (s *Store) simplifyInPlace(clausesPtr *[]*Clause) {
	clauses := *clausesPtr
	j := 0
	for _, c := range clauses {
		if c.Simplify(s) {
			c.Delete(s)
		} else {
			clauses[j] = c
			j++
		}
	}
	*clausesPtr = clauses[:j]
}
