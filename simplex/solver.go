// Package simplex is a small dense linear programming solver. It converts a
// model to standard form and runs gonum's simplex method on it, then
// recovers row duals, reduced costs and a basis for the original model.
//
// It is meant for testing presolve and for small problems: the constraint
// matrix is held densely, integrality is ignored (the LP relaxation is
// solved) and linearly dependent equality rows make the solve fail.
//
// # Example
//
//	s := simplex.NewSolver()
//	solution, err := s.Solve(&model)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(solution.Status, solution.ColValues)
package simplex

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/bartolsthoorn/gopresolve/presolve"
)

// DefaultTolerance is the default primal and dual tolerance.
const DefaultTolerance = 1e-9

// ErrNoModel is returned by Run when no model has been passed.
var ErrNoModel = errors.New("simplex: no model loaded")

// Solver holds one linear program and solves it on demand.
//
//	s := simplex.NewSolver()
//	err := s.PassModel(...)
//	solution, err := s.Run()
type Solver struct {
	// Tolerance classifies values against their bounds and stops the
	// simplex iterations.
	Tolerance float64

	numCol, numRow     int
	colCost            []float64
	colLower, colUpper []float64
	rowLower, rowUpper []float64
	aStart, aIndex     []int
	aValue             []float64
	maximize           bool
	offset             float64
	loaded             bool
}

// NewSolver creates a solver with the default tolerance.
func NewSolver() *Solver {
	return &Solver{Tolerance: DefaultTolerance}
}

// Clear removes the loaded model.
func (s *Solver) Clear() {
	*s = Solver{Tolerance: s.Tolerance}
}

// NumCol returns the number of columns (variables) in the model.
func (s *Solver) NumCol() int { return s.numCol }

// NumRow returns the number of rows (constraints) in the model.
func (s *Solver) NumRow() int { return s.numRow }

// NumNonzero returns the number of non-zero entries in the constraint matrix.
func (s *Solver) NumNonzero() int { return len(s.aValue) }

// PassModel loads a complete model. The constraint matrix is given in
// compressed sparse column form: aStart has numCol+1 offsets into aIndex
// (row indices) and aValue. Values whose magnitude is at least
// presolve.Infinity are treated as infinite.
func (s *Solver) PassModel(
	numCol, numRow int,
	colCost, colLower, colUpper []float64,
	rowLower, rowUpper []float64,
	aStart, aIndex []int, aValue []float64,
	maximize bool,
	offset float64,
) error {
	switch {
	case numCol < 0 || numRow < 0:
		return fmt.Errorf("simplex: PassModel: negative dimensions %dx%d", numRow, numCol)
	case len(colCost) != numCol || len(colLower) != numCol || len(colUpper) != numCol:
		return fmt.Errorf("simplex: PassModel: column data must have %d entries", numCol)
	case len(rowLower) != numRow || len(rowUpper) != numRow:
		return fmt.Errorf("simplex: PassModel: row data must have %d entries", numRow)
	case len(aStart) != numCol+1:
		return fmt.Errorf("simplex: PassModel: aStart must have %d entries", numCol+1)
	case len(aIndex) != len(aValue) || aStart[numCol] != len(aIndex):
		return errors.New("simplex: PassModel: aIndex and aValue must match aStart")
	}
	for j := 0; j < numCol; j++ {
		if aStart[j] > aStart[j+1] {
			return errors.New("simplex: PassModel: aStart must be non-decreasing")
		}
	}
	for _, i := range aIndex {
		if i < 0 || i >= numRow {
			return fmt.Errorf("simplex: PassModel: row index %d out of range", i)
		}
	}

	s.numCol, s.numRow = numCol, numRow
	s.colCost = append([]float64(nil), colCost...)
	s.colLower = normalized(colLower)
	s.colUpper = normalized(colUpper)
	s.rowLower = normalized(rowLower)
	s.rowUpper = normalized(rowUpper)
	s.aStart = append([]int(nil), aStart...)
	s.aIndex = append([]int(nil), aIndex...)
	s.aValue = append([]float64(nil), aValue...)
	s.maximize = maximize
	s.offset = offset
	s.loaded = true
	return nil
}

// Solve loads m and solves it. It implements presolve.Solver.
func (s *Solver) Solve(m *presolve.Model) (*presolve.Solution, error) {
	numCol, numRow := m.NumVars(), m.NumConstraints()
	colCost, err := expand(numCol, m.ColCosts, 0)
	if err != nil {
		return nil, fmt.Errorf("simplex: ColCosts: %w", err)
	}
	colLower, err := expand(numCol, m.ColLower, math.Inf(-1))
	if err != nil {
		return nil, fmt.Errorf("simplex: ColLower: %w", err)
	}
	colUpper, err := expand(numCol, m.ColUpper, math.Inf(1))
	if err != nil {
		return nil, fmt.Errorf("simplex: ColUpper: %w", err)
	}
	rowLower, err := expand(numRow, m.RowLower, math.Inf(-1))
	if err != nil {
		return nil, fmt.Errorf("simplex: RowLower: %w", err)
	}
	rowUpper, err := expand(numRow, m.RowUpper, math.Inf(1))
	if err != nil {
		return nil, fmt.Errorf("simplex: RowUpper: %w", err)
	}
	aStart, aIndex, aValue, err := toCSC(m.ConstMatrix, numCol)
	if err != nil {
		return nil, err
	}

	if err := s.PassModel(numCol, numRow, colCost, colLower, colUpper, rowLower, rowUpper,
		aStart, aIndex, aValue, m.Maximize, m.Offset); err != nil {
		return nil, err
	}
	return s.Run()
}

// Run solves the loaded model. Infeasible and unbounded models are reported
// through the solution status; errors are reserved for numerical failures.
func (s *Solver) Run() (*presolve.Solution, error) {
	if !s.loaded {
		return nil, ErrNoModel
	}
	cost := append([]float64(nil), s.colCost...)
	if s.maximize {
		floats.Scale(-1, cost)
	}

	sf, err := newStdForm(s, cost)
	if err == nil {
		err = sf.solve(s.Tolerance)
	}
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return &presolve.Solution{Status: presolve.ModelStatusInfeasible}, nil
	case errors.Is(err, lp.ErrUnbounded):
		return &presolve.Solution{Status: presolve.ModelStatusUnbounded}, nil
	case err != nil:
		return nil, fmt.Errorf("simplex: Run: %w", err)
	}

	x := sf.primal()
	y := sf.rowDuals(s.numRow)
	acts := make([]float64, s.numRow)
	d := append([]float64(nil), cost...)
	for j := 0; j < s.numCol; j++ {
		for p := s.aStart[j]; p < s.aStart[j+1]; p++ {
			i, a := s.aIndex[p], s.aValue[p]
			acts[i] += a * x[j]
			d[j] -= a * y[i]
		}
	}

	sol := &presolve.Solution{
		Status:    presolve.ModelStatusOptimal,
		ColValues: x,
		ColDuals:  d,
		RowValues: acts,
		RowDuals:  y,
		ColBasis:  make([]presolve.BasisStatus, s.numCol),
		RowBasis:  make([]presolve.BasisStatus, s.numRow),
	}
	for j := range x {
		sol.ColBasis[j] = classify(x[j], s.colLower[j], s.colUpper[j], d[j], s.Tolerance)
	}
	for i := range acts {
		sol.RowBasis[i] = classify(acts[i], s.rowLower[i], s.rowUpper[i], y[i], s.Tolerance)
	}
	sol.Objective = s.offset
	if s.numCol > 0 {
		sol.Objective += floats.Dot(s.colCost, x)
	}
	if s.maximize {
		floats.Scale(-1, sol.ColDuals)
		floats.Scale(-1, sol.RowDuals)
	}
	return sol, nil
}

// classify assigns a basis status to a value from where it sits relative to
// its bounds. Values on both bounds pick the side the dual points to.
func classify(v, lo, up, dual, tol float64) presolve.BasisStatus {
	atLo := !math.IsInf(lo, 0) && math.Abs(v-lo) <= tol*(1+math.Abs(lo))
	atUp := !math.IsInf(up, 0) && math.Abs(v-up) <= tol*(1+math.Abs(up))
	switch {
	case atLo && atUp:
		if dual < 0 {
			return presolve.BasisStatusUpper
		}
		return presolve.BasisStatusLower
	case atLo:
		return presolve.BasisStatusLower
	case atUp:
		return presolve.BasisStatusUpper
	case math.IsInf(lo, 0) && math.IsInf(up, 0) && v == 0:
		return presolve.BasisStatusFree
	}
	return presolve.BasisStatusBasic
}

func normalized(v []float64) []float64 {
	out := make([]float64, len(v))
	for k, x := range v {
		switch {
		case x >= presolve.Infinity:
			out[k] = math.Inf(1)
		case x <= -presolve.Infinity:
			out[k] = math.Inf(-1)
		default:
			out[k] = x
		}
	}
	return out
}

func expand(n int, v []float64, fill float64) ([]float64, error) {
	switch len(v) {
	case n:
		return append([]float64(nil), v...), nil
	case 0:
		out := make([]float64, n)
		for k := range out {
			out[k] = fill
		}
		return out, nil
	}
	return nil, fmt.Errorf("length %d, want %d", len(v), n)
}

// toCSC converts nonzeros to compressed sparse column form. Later
// duplicates replace earlier ones.
func toCSC(nz []presolve.Nonzero, numCol int) (start, index []int, value []float64, err error) {
	sorted := append([]presolve.Nonzero(nil), nz...)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Col != sorted[b].Col {
			return sorted[a].Col < sorted[b].Col
		}
		return sorted[a].Row < sorted[b].Row
	})
	start = make([]int, numCol+1)
	for k, n := range sorted {
		if n.Row < 0 || n.Col < 0 || n.Col >= numCol {
			return nil, nil, nil, fmt.Errorf("simplex: nonzero (%d, %d) out of range", n.Row, n.Col)
		}
		if k > 0 && sorted[k-1].Row == n.Row && sorted[k-1].Col == n.Col {
			value[len(value)-1] = n.Val
			continue
		}
		start[n.Col+1]++
		index = append(index, n.Row)
		value = append(value, n.Val)
	}
	for j := 0; j < numCol; j++ {
		start[j+1] += start[j]
	}
	return start, index, value, nil
}
