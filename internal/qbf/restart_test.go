package qbf

import "testing"

func TestLubySequence(t *testing.T) {
	// The Luby sequence's first terms, by its defining recurrence.
	want := []int64{1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8}

	for i, w := range want {
		got := luby(int64(i + 1))
		if got != w {
			t.Errorf("luby(%d) = %d, want %d", i+1, got, w)
		}
	}
}

func TestLubyGeneratorNext(t *testing.T) {
	// Next returns the raw Luby term; the caller (Solver.Solve) multiplies
	// it by Options.RestartBase to get the actual conflict budget.
	g := newLubyGenerator(100)
	want := []float64{1, 1, 2, 1, 1, 2, 4}
	for i, w := range want {
		if got := g.Next(); got != w {
			t.Errorf("Next() call %d = %v, want %v", i+1, got, w)
		}
	}
}

func TestLubyGeneratorDefaultsNonPositiveBase(t *testing.T) {
	g := newLubyGenerator(0)
	if g.base != 100 {
		t.Errorf("base = %d, want 100 default", g.base)
	}
}
