package qbf

// Propagate drains the pending-literal queue, relocating watches and
// enqueueing newly implied literals (FIFO, so the first clause to force a
// literal is its canonical antecedent) until either the queue empties (no
// conflict) or a clause is found to conflict, in which case it is returned
// and the queue is cleared. This is the Propagator component: Boolean
// constraint propagation over the two-watched-literal scheme with
// QBF-aware semantics (see Clause.Propagate and Store.satisfiesExistential).
//
// Each iteration of the inner loop either relocates a watch, satisfies a
// clause, assigns a previously unassigned variable, or terminates with a
// conflict, so with n variables a single call performs O(n) assignments.
func (s *Store) Propagate() *Clause {
	for s.propQueue.Size() > 0 {
		l := s.propQueue.Pop()

		s.tmpWatchers = append(s.tmpWatchers[:0], s.watchers[l]...)
		s.watchers[l] = s.watchers[l][:0]

		for i, w := range s.tmpWatchers {
			if s.LitValue(w.guard) == True && s.LitKind(w.guard) == Existential {
				s.watchers[l] = append(s.watchers[l], w)
				continue
			}

			if w.clause.Propagate(s, l) {
				continue
			}

			s.watchers[l] = append(s.watchers[l], s.tmpWatchers[i+1:]...)
			s.propQueue.Clear()
			return w.clause
		}
	}

	return nil
}
