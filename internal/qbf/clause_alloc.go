//go:build !qbfclausepool

package qbf

// allocLiterals and freeLiterals are the default (non-pooled) clause literal
// slice allocator. See clause_allocpool.go for the pooled alternative,
// selected with the qbfclausepool build tag for workloads that churn through
// many short-lived learned clauses.

func allocLiterals(capacity int) []Literal {
	return make([]Literal, 0, capacity)
}

func freeLiterals(_ []Literal) {}
