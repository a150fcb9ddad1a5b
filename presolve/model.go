package presolve

import (
	"errors"
	"math"
)

// Model is a linear program, optionally with integer columns:
//
//	Minimize (or Maximize): ColCosts · x + Offset
//	Subject to:             RowLower ≤ A·x ≤ RowUpper
//	And:                    ColLower ≤ x ≤ ColUpper
//
// Where A is the constraint matrix specified by ConstMatrix. Values whose
// magnitude is at least Infinity are treated as infinite.
type Model struct {
	// Maximize indicates whether to maximize (true) or minimize (false).
	Maximize bool

	// Offset is a constant added to the objective function.
	Offset float64

	// ColCosts are the objective function coefficients for each variable.
	ColCosts []float64

	// ColLower are the lower bounds for each variable.
	// If empty or shorter than the number of variables, defaults to -∞.
	ColLower []float64

	// ColUpper are the upper bounds for each variable.
	// If empty or shorter than the number of variables, defaults to +∞.
	ColUpper []float64

	// RowLower are the lower bounds for each constraint.
	// Use NegInf() for no lower bound.
	RowLower []float64

	// RowUpper are the upper bounds for each constraint.
	// Use Inf() for no upper bound.
	RowUpper []float64

	// ConstMatrix defines the constraint matrix as a list of non-zero entries.
	// Each entry specifies (row, column, value).
	ConstMatrix []Nonzero

	// VarTypes specifies the type of each variable (continuous, integer, etc.).
	// If empty, all variables are treated as continuous. Semi-continuous and
	// semi-integer columns are never touched by presolve.
	VarTypes []VariableType
}

// AddDenseRow appends the row lower <= coeffs·x <= upper. Zero
// coefficients are skipped.
//
//	model.AddDenseRow(1.0, []float64{1.0, 2.0, 0.0, 3.0}, 10.0)
//	// 1.0 <= x0 + 2*x1 + 3*x3 <= 10.0
func (m *Model) AddDenseRow(lower float64, coeffs []float64, upper float64) {
	row := m.appendRow(lower, upper)
	for col, val := range coeffs {
		m.addEntry(row, col, val)
	}
}

// AddSparseRow appends the row lower <= sum vals[k]*x[cols[k]] <= upper.
//
//	model.AddSparseRow(1.0, []int{0, 1, 3}, []float64{1.0, 2.0, 3.0}, 10.0)
//	// 1.0 <= x0 + 2*x1 + 3*x3 <= 10.0
func (m *Model) AddSparseRow(lower float64, cols []int, vals []float64, upper float64) {
	row := m.appendRow(lower, upper)
	for k, col := range cols {
		m.addEntry(row, col, vals[k])
	}
}

// AddEqRow appends the row coeffs·x = rhs.
func (m *Model) AddEqRow(coeffs []float64, rhs float64) {
	m.AddDenseRow(rhs, coeffs, rhs)
}

// AddLeRow appends the row coeffs·x <= rhs.
func (m *Model) AddLeRow(coeffs []float64, rhs float64) {
	m.AddDenseRow(math.Inf(-1), coeffs, rhs)
}

// AddGeRow appends the row coeffs·x >= rhs.
func (m *Model) AddGeRow(coeffs []float64, rhs float64) {
	m.AddDenseRow(rhs, coeffs, math.Inf(1))
}

func (m *Model) appendRow(lower, upper float64) int {
	m.RowLower = append(m.RowLower, lower)
	m.RowUpper = append(m.RowUpper, upper)
	return len(m.RowLower) - 1
}

func (m *Model) addEntry(row, col int, val float64) {
	if val != 0 {
		m.ConstMatrix = append(m.ConstMatrix, Nonzero{Row: row, Col: col, Val: val})
	}
}

// NumVars returns the number of columns: the longest column vector or one
// past the largest column index in ConstMatrix.
func (m *Model) NumVars() int {
	_, maxCol := maxRowCol(m.ConstMatrix)
	return max(maxCol+1, len(m.ColCosts), len(m.ColLower), len(m.ColUpper), len(m.VarTypes))
}

// NumConstraints returns the number of rows: the longest row bound vector
// or one past the largest row index in ConstMatrix.
func (m *Model) NumConstraints() int {
	maxRow, _ := maxRowCol(m.ConstMatrix)
	return max(maxRow+1, len(m.RowLower), len(m.RowUpper))
}

// Solver solves a linear program and reports a primal solution, and where
// it can, duals and a basis. simplex.Solver is one implementation.
type Solver interface {
	Solve(m *Model) (*Solution, error)
}

// Solve presolves the model, hands the reduced model to s and maps the
// answer back. When the restored solution is not within the accept
// tolerance the original model is solved again by s.
//
// A model that presolve proves infeasible or unbounded yields a Solution
// carrying that status rather than an error.
//
//	solution, err := model.Solve(simplex.NewSolver(),
//		presolve.WithPasses(10),
//		presolve.WithTolerance(1e-8),
//	)
func (m *Model) Solve(s Solver, opts ...Option) (*Solution, error) {
	p, err := Presolve(m, opts...)
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) && (errors.Is(err, ErrInfeasible) || errors.Is(err, ErrUnbounded)) {
			return &Solution{Status: pe.Status}, nil
		}
		return nil, err
	}

	if p.Model.NumVars() == 0 && p.Model.NumConstraints() == 0 {
		sol, err := p.Postsolve(&Solution{Status: ModelStatusModelEmpty})
		if err != nil {
			return nil, err
		}
		return p.cleanup(s, m, sol)
	}

	reduced, err := s.Solve(p.Model)
	if err != nil {
		return nil, &Error{Op: "Solve", Status: ModelStatusSolveError, Msg: err.Error(), Err: err}
	}
	if !reduced.HasSolution() {
		return &Solution{Status: reduced.Status}, nil
	}
	sol, err := p.Postsolve(reduced)
	if err != nil {
		return nil, err
	}
	return p.cleanup(s, m, sol)
}

// cleanup re-solves the original model when sol is not accepted.
func (p *Presolved) cleanup(s Solver, m *Model, sol *Solution) (*Solution, error) {
	if p.Accept(sol) {
		return sol, nil
	}
	if log := p.cfg.logger; log.enable(LogSummary) {
		log.log("postsolve: primal infeasibility %g, dual infeasibility %g; solving the original model\n",
			sol.PrimalInfeasibility, sol.DualInfeasibility)
	}
	fresh, err := s.Solve(m)
	if err != nil {
		return nil, &Error{Op: "Solve", Status: ModelStatusSolveError, Msg: err.Error(), Err: err}
	}
	return fresh, nil
}
