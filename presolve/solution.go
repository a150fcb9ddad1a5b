package presolve

// Solution is a primal/dual point of a model together with its basis.
//
// A solver fills it for the reduced model; Postsolve returns one sized to
// the original model. Duals follow the caller's objective sense: for a
// maximization a binding upper-bounded row has a positive dual.
type Solution struct {
	// Status indicates the outcome of the solve.
	Status ModelStatus

	// ColValues holds one value per column. Postsolve requires it.
	ColValues []float64

	// ColDuals holds the reduced cost of each column. Optional on input.
	ColDuals []float64

	// RowValues holds the activity of each row. Optional on input.
	RowValues []float64

	// RowDuals holds the dual value of each row. Optional on input; zero
	// duals are assumed when missing.
	RowDuals []float64

	// ColBasis and RowBasis hold basis statuses. Optional on input; they
	// are guessed from the values when missing.
	ColBasis []BasisStatus
	RowBasis []BasisStatus

	// Objective is the objective value including the offset.
	Objective float64

	// PrimalInfeasibility sums how far columns and rows lie outside their
	// bounds. Set by Postsolve.
	PrimalInfeasibility float64

	// DualInfeasibility sums the reduced costs and row duals whose sign is
	// wrong for the side their value sits on. Set by Postsolve.
	DualInfeasibility float64
}

// IsOptimal returns true if the solution is optimal.
func (s *Solution) IsOptimal() bool {
	return s.Status == ModelStatusOptimal
}

// IsInfeasible returns true if the model was found infeasible, or
// unbounded-or-infeasible.
func (s *Solution) IsInfeasible() bool {
	return s.Status == ModelStatusInfeasible ||
		s.Status == ModelStatusUnboundedOrInfeasible
}

// IsUnbounded returns true if the model was found unbounded, or
// unbounded-or-infeasible.
func (s *Solution) IsUnbounded() bool {
	return s.Status == ModelStatusUnbounded ||
		s.Status == ModelStatusUnboundedOrInfeasible
}

// HasSolution returns true if the solution carries values.
func (s *Solution) HasSolution() bool {
	return s.Status.HasSolution()
}

// Value returns the value of column j, or 0 if j is out of range.
func (s *Solution) Value(j int) float64 {
	return valueAt(s.ColValues, j)
}

// ReducedCost returns the reduced cost of column j, or 0 if unknown.
func (s *Solution) ReducedCost(j int) float64 {
	return valueAt(s.ColDuals, j)
}

// Activity returns the activity of row i, or 0 if unknown.
func (s *Solution) Activity(i int) float64 {
	return valueAt(s.RowValues, i)
}

// Dual returns the dual value of row i, or 0 if unknown.
func (s *Solution) Dual(i int) float64 {
	return valueAt(s.RowDuals, i)
}

// BasicCount returns how many columns and rows are basic. A valid basis
// of a model with m rows has exactly m.
func (s *Solution) BasicCount() int {
	n := 0
	for _, b := range s.ColBasis {
		if b == BasisStatusBasic {
			n++
		}
	}
	for _, b := range s.RowBasis {
		if b == BasisStatusBasic {
			n++
		}
	}
	return n
}

func valueAt(v []float64, k int) float64 {
	if k < 0 || k >= len(v) {
		return 0
	}
	return v[k]
}
